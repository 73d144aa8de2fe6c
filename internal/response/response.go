// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"net/http"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Success writes {"success": true, ...fields} with the given status.
func Success(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		if k == "success" {
			continue
		}
		body[k] = v
	}
	return c.JSON(status, body)
}

// OK writes a 200 envelope carrying data plus any extra keys.
func OK(c echo.Context, data interface{}, extra echo.Map) error {
	fields := echo.Map{"data": data}
	for k, v := range extra {
		fields[k] = v
	}
	return Success(c, http.StatusOK, fields)
}

// Created writes a 201 envelope.
func Created(c echo.Context, fields echo.Map) error {
	return Success(c, http.StatusCreated, fields)
}

// Fail writes {"success": false, "error": msg} with an explicit status.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"error":   msg,
	})
}

// Error maps err onto its status code. Internal failures are logged with their
// cause and answered with fallback instead of the error text.
func Error(c echo.Context, err error, fallback string) error {
	status := apperr.HTTPStatus(err)
	if apperr.IsInternal(err) {
		if fallback == "" {
			fallback = "Internal server error"
		}
		logger.FromContext(c).Error(fallback, zap.Error(err))
		return Fail(c, status, fallback)
	}
	logger.FromContext(c).Warn("Request rejected",
		zap.String("kind", string(apperr.KindOf(err))),
		zap.String("error", apperr.Message(err)))
	return Fail(c, status, apperr.Message(err))
}
