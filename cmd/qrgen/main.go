package main

import (
	"fmt"
	"os"

	qrcode "github.com/skip2/go-qrcode"
	svgqr "github.com/wamuir/svg-qr-code"
)

const (
	waitlistURL = "https://leovoiceagent-landing.netlify.app/waitlist"
	pngSize     = 500
	pngPath     = "leo-waitlist-qr.png"
	svgPath     = "leo-waitlist-qr.svg"
)

// qrgen renders the waitlist signup URL as printable QR codes, one PNG
// for flyers and one SVG for the site itself.
func main() {
	if err := qrcode.WriteFile(waitlistURL, qrcode.High, pngSize, pngPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", pngPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%dx%d)\n", pngPath, pngSize, pngSize)

	qr, err := svgqr.New(waitlistURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build SVG QR: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(svgPath, []byte(qr.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", svgPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", svgPath)
}
