package handler

import (
	"net/http"
	"strings"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/repository"
	"fieldsales-service/internal/response"
	"fieldsales-service/internal/validate"
	"fieldsales-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetUserAreas returns the area codes assigned to a user of the caller's tenant
func GetUserAreas(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	userID := strings.TrimSpace(c.QueryParam("user_id"))
	if userID == "" {
		return response.Error(c, apperr.New(apperr.MissingField, "user_id is required"), "")
	}

	if _, err := repository.FindUser(db(c), p.TenantID, userID); err != nil {
		return response.Error(c, err, "Failed to retrieve user areas")
	}
	areas, err := repository.UserAreaCodes(db(c), p.TenantID, userID)
	if err != nil {
		return response.Error(c, err, "Failed to retrieve user areas")
	}

	return response.Success(c, http.StatusOK, echo.Map{
		"user_id":     userID,
		"total_areas": len(areas),
		"areas":       areas,
	})
}

// ReplaceUserAreas swaps the whole area assignment of a user
func ReplaceUserAreas(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "user_id"); err != nil {
		return response.Error(c, err, "")
	}
	codes, err := areaCodes(payload["area_codes"])
	if err != nil {
		return response.Error(c, err, "")
	}

	userID := payload.String("user_id")
	res, err := repository.ReplaceUserAreas(c.Request().Context(), db(c), p.TenantID, userID, codes)
	if err != nil {
		return response.Error(c, err, "Failed to update user areas")
	}

	log.Info("User areas replaced",
		zap.String("user_id", userID),
		zap.Int64("removed", res.Removed),
		zap.Int("added", res.Added))
	return response.Success(c, http.StatusOK, echo.Map{
		"message": "User areas updated successfully",
		"data": echo.Map{
			"user_id":       userID,
			"areas_removed": res.Removed,
			"areas_added":   res.Added,
			"current_areas": res.Current,
		},
	})
}

func areaCodes(v interface{}) ([]string, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, apperr.New(apperr.InvalidFormat, "area_codes must be an array")
	}
	codes := make([]string, 0, len(raw))
	for _, r := range raw {
		codes = append(codes, validate.Payload{"code": r}.String("code"))
	}
	return codes, nil
}
