package service

import (
	"encoding/json"
	"fmt"
	"time"

	"leasing-portal/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// BookingAttendee is the person the voice agent is booking a tour for
type BookingAttendee struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// BookingCall identifies the originating voice call
type BookingCall struct {
	CallID string `json:"call_id,omitempty"`
}

// BookingArgs are the scheduling parameters the voice agent supplies
type BookingArgs struct {
	EventTypeID      *int64                 `json:"eventTypeId,omitempty"`
	EventTypeSlug    string                 `json:"eventTypeSlug,omitempty"`
	Username         string                 `json:"username,omitempty"`
	TeamSlug         string                 `json:"teamSlug,omitempty"`
	OrganizationSlug string                 `json:"organizationSlug,omitempty"`
	Attendee         *BookingAttendee       `json:"attendee,omitempty"`
	StartIsoUTC      string                 `json:"startIsoUtc,omitempty"`
	LengthInMinutes  *int                   `json:"lengthInMinutes,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// BookingRequest is the body the voice-agent orchestrator posts
type BookingRequest struct {
	Name string       `json:"name,omitempty"`
	Call *BookingCall `json:"call,omitempty"`
	Args BookingArgs  `json:"args"`
}

// BookingResult is the flat envelope returned to the orchestrator. It is
// always delivered with HTTP 200; failures set OK false and Error.
type BookingResult struct {
	OK              bool        `json:"ok"`
	Status          int         `json:"status,omitempty"`
	Error           string      `json:"error,omitempty"`
	BookingID       interface{} `json:"booking_id,omitempty"`
	BookingUID      interface{} `json:"booking_uid,omitempty"`
	MeetingURL      interface{} `json:"meeting_url,omitempty"`
	StartTime       interface{} `json:"start_time,omitempty"`
	EndTime         interface{} `json:"end_time,omitempty"`
	DurationMinutes interface{} `json:"duration_minutes,omitempty"`
	AttendeeName    interface{} `json:"attendee_name,omitempty"`
	AttendeeEmail   interface{} `json:"attendee_email,omitempty"`
	HostName        interface{} `json:"host_name,omitempty"`
	HostEmail       interface{} `json:"host_email,omitempty"`
	EventTypeName   interface{} `json:"event_type_name,omitempty"`
	EventTypeID     interface{} `json:"event_type_id,omitempty"`
	Message         string      `json:"message,omitempty"`
	Raw             interface{} `json:"raw,omitempty"`
}

// BookingClient forwards tour bookings to the Cal.com v2 API
type BookingClient struct {
	http       *resty.Client
	apiKey     string
	apiVersion string
	log        *zap.Logger
}

// NewBookingClient creates a Cal.com client from configuration
func NewBookingClient(cfg *config.BookingConfig, log *zap.Logger) *BookingClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &BookingClient{
		http:       client,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		log:        log,
	}
}

// Book forwards the booking to Cal.com and normalizes the response. It
// never returns an error: every failure mode comes back as OK=false so the
// caller always has a parseable JSON body.
func (c *BookingClient) Book(req BookingRequest) *BookingResult {
	if c.apiKey == "" {
		return &BookingResult{
			OK:    false,
			Error: "CAL_COM_API_KEY environment variable is not set in Netlify",
		}
	}

	payload := c.buildPayload(req)

	resp, err := c.http.R().
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("cal-api-version", c.apiVersion).
		SetBody(payload).
		Post("/v2/bookings")
	if err != nil {
		c.log.Error("Cal.com request failed", zap.Error(err))
		return &BookingResult{OK: false, Error: err.Error()}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		body = map[string]interface{}{"raw": string(resp.Body())}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		// Cal.com reports the failure reason in the JSON body; surface it
		message := "Booking failed"
		if m, ok := body["message"]; ok && m != nil {
			message = fmt.Sprintf("%v", m)
		} else if e, ok := body["error"]; ok && e != nil {
			message = fmt.Sprintf("%v", e)
		}
		c.log.Warn("Cal.com rejected booking",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", message))
		return &BookingResult{OK: false, Status: resp.StatusCode(), Error: message}
	}

	// Cal.com wraps the booking under {status, data}
	data := asMap(body["data"])
	if data == nil {
		data = body
	}

	attendee := firstEntry(data, "attendees")
	host := firstEntry(data, "hosts")
	eventType := asMap(data["eventType"])

	result := &BookingResult{
		OK:              true,
		Status:          resp.StatusCode(),
		BookingID:       data["id"],
		BookingUID:      data["uid"],
		MeetingURL:      meetingURL(data),
		StartTime:       data["start"],
		EndTime:         data["end"],
		DurationMinutes: data["duration"],
		AttendeeName:    attendee["name"],
		AttendeeEmail:   attendee["email"],
		HostName:        host["name"],
		HostEmail:       host["email"],
		EventTypeID:     data["eventTypeId"],
		Message:         confirmationMessage(data["start"]),
		Raw: map[string]interface{}{
			"ok":         true,
			"status":     resp.StatusCode(),
			"bookingUid": data["uid"],
			"bookingId":  data["id"],
			"start":      data["start"],
			"end":        data["end"],
			"duration":   data["duration"],
			"meetingUrl": meetingURL(data),
			"attendee":   attendee,
			"raw":        data,
		},
	}
	if eventType != nil {
		result.EventTypeName = eventType["slug"]
	}
	return result
}

// buildPayload shapes the orchestrator's arguments into the Cal.com body,
// dropping unset fields and correlating the booking back to the voice call
func (c *BookingClient) buildPayload(req BookingRequest) map[string]interface{} {
	args := req.Args

	metadata := map[string]interface{}{}
	for k, v := range args.Metadata {
		metadata[k] = v
	}
	if req.Call != nil && req.Call.CallID != "" {
		metadata["retell_call_id"] = req.Call.CallID
	}

	payload := map[string]interface{}{
		"start":    args.StartIsoUTC,
		"metadata": metadata,
	}
	if args.Attendee != nil {
		payload["attendee"] = args.Attendee
	}
	if args.LengthInMinutes != nil {
		payload["lengthInMinutes"] = *args.LengthInMinutes
	}
	if args.EventTypeID != nil {
		payload["eventTypeId"] = *args.EventTypeID
	}
	if args.EventTypeSlug != "" {
		payload["eventTypeSlug"] = args.EventTypeSlug
	}
	if args.Username != "" {
		payload["username"] = args.Username
	}
	if args.TeamSlug != "" {
		payload["teamSlug"] = args.TeamSlug
	}
	if args.OrganizationSlug != "" {
		payload["organizationSlug"] = args.OrganizationSlug
	}
	return payload
}

// confirmationMessage synthesizes the sentence the voice agent reads back
func confirmationMessage(start interface{}) string {
	startStr, _ := start.(string)
	t, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return "Great! I've scheduled your tour. You'll receive a confirmation email with the meeting link."
	}
	local := t.Local()
	return fmt.Sprintf(
		"Great! I've scheduled your tour for %s at %s. You'll receive a confirmation email with the meeting link.",
		local.Format("1/2/2006"), local.Format("3:04:05 PM"))
}

func meetingURL(data map[string]interface{}) interface{} {
	if url, ok := data["meetingUrl"]; ok && url != nil {
		return url
	}
	return data["location"]
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func firstEntry(data map[string]interface{}, key string) map[string]interface{} {
	list, _ := data[key].([]interface{})
	if len(list) == 0 {
		return map[string]interface{}{}
	}
	entry := asMap(list[0])
	if entry == nil {
		return map[string]interface{}{}
	}
	return entry
}
