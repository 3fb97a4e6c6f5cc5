package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leasing-portal/internal/service"
	"leasing-portal/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWaitlistContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("logger", zap.NewNop())
	return c, rec
}

func TestWaitlistSubmit_Accepted(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	h := NewWaitlistHandler(service.NewWaitlistService(&config.WaitlistConfig{WebhookURL: webhook.URL}, zap.NewNop()))
	c, rec := newWaitlistContext(`{"name":"Jordan","email":"jordan@example.com"}`)

	require.NoError(t, h.Submit(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestWaitlistSubmit_ValidationFailureNamesTheField(t *testing.T) {
	requests := 0
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer webhook.Close()

	h := NewWaitlistHandler(service.NewWaitlistService(&config.WaitlistConfig{WebhookURL: webhook.URL}, zap.NewNop()))
	c, rec := newWaitlistContext(`{"name":"Jordan","email":"not-an-email"}`)

	require.NoError(t, h.Submit(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, requests)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "email", body["field"])
	assert.Equal(t, "Please enter a valid email address", body["error"])
}

func TestWaitlistSubmit_WebhookFailureIsBadGateway(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer webhook.Close()

	h := NewWaitlistHandler(service.NewWaitlistService(&config.WaitlistConfig{WebhookURL: webhook.URL}, zap.NewNop()))
	c, rec := newWaitlistContext(`{"name":"Jordan","email":"jordan@example.com"}`)

	require.NoError(t, h.Submit(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}
