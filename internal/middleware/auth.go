package middleware

import (
	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/response"
	"fieldsales-service/pkg/logger"
	"fieldsales-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware authenticates the bearer token and stores the Principal in the context.
// Rejected requests never reach the handler.
func AuthMiddleware(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			principal, err := authenticator.Authenticate(c.Request().Header.Get("Authorization"))
			if err != nil {
				prometheus.RecordAuthError(string(apperr.KindOf(err)))
				log.Warn("Authentication failed", zap.Error(err))
				return response.Fail(c, apperr.HTTPStatus(err), apperr.Message(err))
			}

			c.Set(auth.ContextKey, principal)
			c.Set("logger", log.With(
				zap.String("client_id", principal.TenantID),
				zap.String("username", principal.SubjectID),
			))

			return next(c)
		}
	}
}
