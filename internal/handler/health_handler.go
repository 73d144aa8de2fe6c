package handler

import (
	"net/http"

	"fieldsales-service/pkg/database"

	"github.com/labstack/echo/v4"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK

	if conn := database.GetDB(); conn == nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	} else if sqlDB, err := conn.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	return c.JSON(code, echo.Map{
		"status":  status,
		"service": "fieldsales-service",
	})
}
