package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newROIContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/roi/calculate", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("logger", zap.NewNop())
	return c, rec
}

func TestCalculateROI_EmptyBodyUsesDefaults(t *testing.T) {
	c, rec := newROIContext("")

	require.NoError(t, CalculateROI(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Inputs  map[string]float64 `json:"inputs"`
		Results map[string]float64 `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 20.0, body.Inputs["total_calls"])
	assert.Equal(t, 60.0, body.Inputs["after_hours_percent"])
	assert.InDelta(t, 360, body.Results["monthly_missed_calls"], 0.001)
	assert.InDelta(t, 226800, body.Results["lifetime_loss"], 0.001)
}

func TestCalculateROI_PartialBodyOverridesOnlySuppliedFields(t *testing.T) {
	c, rec := newROIContext(`{"total_calls":40}`)

	require.NoError(t, CalculateROI(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Inputs  map[string]float64 `json:"inputs"`
		Results map[string]float64 `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 40.0, body.Inputs["total_calls"])
	assert.Equal(t, 60.0, body.Inputs["after_hours_percent"])
	assert.InDelta(t, 720, body.Results["monthly_missed_calls"], 0.001)
}

func TestCalculateROI_MalformedBody(t *testing.T) {
	c, rec := newROIContext(`{"total_calls":`)

	require.NoError(t, CalculateROI(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
