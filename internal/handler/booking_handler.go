package handler

import (
	"net/http"

	"leasing-portal/internal/service"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BookingHandler proxies tour bookings from the voice-agent orchestrator to
// Cal.com. The orchestrator cannot handle non-200 responses, so every
// failure is delivered as HTTP 200 with {ok:false, error}.
type BookingHandler struct {
	client *service.BookingClient
}

// NewBookingHandler creates a BookingHandler
func NewBookingHandler(client *service.BookingClient) *BookingHandler {
	return &BookingHandler{client: client}
}

// BookingCORSSkipper exempts the booking endpoint from the global CORS
// middleware. The endpoint answers its own preflight with 200 and sets its
// own headers; the global middleware would short-circuit OPTIONS with 204
// before the handler runs.
func BookingCORSSkipper(c echo.Context) bool {
	return c.Path() == "/api/book-with-cal"
}

func setCORSHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// BookWithCal handles every method on the booking endpoint: OPTIONS
// pre-flight gets 200, anything but POST gets 405, POST is forwarded
func (h *BookingHandler) BookWithCal(c echo.Context) error {
	log := logger.FromContext(c)
	setCORSHeaders(c)

	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusOK)
	case http.MethodPost:
		// handled below
	default:
		return c.JSON(http.StatusMethodNotAllowed, echo.Map{"error": "Method not allowed"})
	}

	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse booking request", zap.Error(err))
		prometheus.RecordBookingOutcome("error")
		return c.JSON(http.StatusOK, echo.Map{"ok": false, "error": err.Error()})
	}

	result := h.client.Book(req)
	switch {
	case result.OK:
		prometheus.RecordBookingOutcome("booked")
		log.Info("Tour booked",
			zap.Any("booking_id", result.BookingID),
			zap.Any("start_time", result.StartTime))
	case result.Status != 0:
		prometheus.RecordBookingOutcome("rejected")
	default:
		prometheus.RecordBookingOutcome("error")
	}

	return c.JSON(http.StatusOK, result)
}
