package handler

import (
	"errors"
	"net/http"

	"leasing-portal/internal/service"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WaitlistHandler accepts waitlist signups from the landing page
type WaitlistHandler struct {
	svc *service.WaitlistService
}

// NewWaitlistHandler creates a WaitlistHandler
func NewWaitlistHandler(svc *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{svc: svc}
}

// Submit validates a signup and forwards it to the automation webhook.
// Validation failures return the field so the form can show the message
// inline.
func (h *WaitlistHandler) Submit(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse waitlist request", zap.Error(err))
		prometheus.RecordWaitlistOutcome("invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	if err := h.svc.Submit(req.Name, req.Email); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			prometheus.RecordWaitlistOutcome("invalid")
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"field":   verr.Field,
				"error":   verr.Message,
			})
		}
		log.Error("Failed to forward waitlist signup", zap.Error(err))
		prometheus.RecordWaitlistOutcome("error")
		return c.JSON(http.StatusBadGateway, echo.Map{
			"success": false,
			"error":   "failed to submit signup, please try again",
		})
	}

	log.Info("Waitlist signup accepted", zap.String("email", req.Email))
	prometheus.RecordWaitlistOutcome("accepted")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
