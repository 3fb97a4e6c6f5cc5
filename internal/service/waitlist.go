package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"leasing-portal/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// WaitlistService validates waitlist signups and forwards them to the
// automation webhook. Validation failures never reach the network.
type WaitlistService struct {
	http       *resty.Client
	webhookURL string
	log        *zap.Logger
}

// NewWaitlistService creates a WaitlistService
func NewWaitlistService(cfg *config.WaitlistConfig, log *zap.Logger) *WaitlistService {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WaitlistService{
		http:       client,
		webhookURL: cfg.WebhookURL,
		log:        log,
	}
}

// ValidateSignup checks the submission, returning the first field error
func ValidateSignup(name, email string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// Submit validates the signup and posts it to the webhook. Only the HTTP
// status of the webhook response is consumed.
func (s *WaitlistService) Submit(name, email string) error {
	if verr := ValidateSignup(name, email); verr != nil {
		return verr
	}
	if s.webhookURL == "" {
		return fmt.Errorf("waitlist webhook is not configured")
	}

	resp, err := s.http.R().
		SetBody(map[string]string{
			"name":  strings.TrimSpace(name),
			"email": strings.TrimSpace(email),
		}).
		Post(s.webhookURL)
	if err != nil {
		s.log.Error("Failed to submit waitlist signup", zap.Error(err))
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		s.log.Error("Waitlist webhook rejected signup", zap.Int("status", resp.StatusCode()))
		return fmt.Errorf("waitlist webhook returned status %d", resp.StatusCode())
	}
	return nil
}
