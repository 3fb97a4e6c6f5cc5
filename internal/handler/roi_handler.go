package handler

import (
	"net/http"

	"leasing-portal/internal/service"
	"leasing-portal/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CalculateROI runs the revenue-leakage calculator over the posted
// assumptions. An empty body uses the calculator's defaults.
func CalculateROI(c echo.Context) error {
	log := logger.FromContext(c)

	inputs := service.DefaultROIInputs()
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&inputs); err != nil {
			log.Error("Failed to parse ROI inputs", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"inputs":  inputs,
		"results": service.CalculateRevenueLeakage(inputs),
	})
}
