package handler

import (
	"net/http"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/lifecycle"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/report"
	"fieldsales-service/internal/repository"
	"fieldsales-service/internal/response"
	"fieldsales-service/internal/validate"
	"fieldsales-service/pkg/database"
	"fieldsales-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveShopLocation creates or moves the location of a firm. One row is kept per firm.
func SaveShopLocation(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "firm_name", "latitude", "longitude"); err != nil {
		return response.Error(c, err, "")
	}
	lat, lng, err := validate.Coordinates(payload["latitude"], payload["longitude"])
	if err != nil {
		return response.Error(c, err, "")
	}

	firm, err := repository.FindFirmByName(db(c), p.TenantID, payload.String("firm_name"))
	if err != nil {
		return response.Error(c, err, "Database operation failed")
	}

	var shop model.ShopLocation
	created := false
	err = db(c).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(repository.TenantScope(p.TenantID)).
			Where("firm_code = ?", firm.Code).
			Order("id").
			Limit(1).
			Find(&shop)
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}

		if res.RowsAffected == 0 {
			created = true
			shop = model.ShopLocation{
				FirmCode:  firm.Code,
				ClientID:  p.TenantID,
				Latitude:  lat,
				Longitude: lng,
				CreatedBy: p.SubjectID,
				CreatedAt: now().UTC(),
			}
			shop.Status = lifecycle.ShopLocations.Initial
			return apperr.FromDB(tx.Create(&shop).Error, "")
		}

		shop.Latitude = lat
		shop.Longitude = lng
		if p.SubjectID != "" {
			shop.CreatedBy = p.SubjectID
		}
		return apperr.FromDB(tx.Save(&shop).Error, "")
	})
	if err != nil {
		return response.Error(c, err, "Database operation failed")
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	log.Info("Shop location saved", zap.String("firm_code", firm.Code), zap.Bool("created", created))
	return response.Success(c, status, echo.Map{"data": shopLocationView(shop)})
}

func shopLocationView(s model.ShopLocation) echo.Map {
	return echo.Map{
		"id":         s.ID,
		"firm":       s.FirmCode,
		"latitude":   s.Latitude,
		"longitude":  s.Longitude,
		"client_id":  s.ClientID,
		"created_at": isoTime(s.CreatedAt),
		"status":     s.Status,
		"created_by": s.CreatedBy,
	}
}

// ListFirms returns the firms visible to the caller with their latest coordinates
func ListFirms(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	firms, err := repository.FirmsWithLocation(db(c), p)
	if err != nil {
		return response.Error(c, err, "Database error")
	}
	if len(firms) == 0 {
		return response.Success(c, http.StatusOK, echo.Map{
			"firms":   []echo.Map{},
			"message": "No firms found",
		})
	}

	data := make([]echo.Map, 0, len(firms))
	for _, f := range firms {
		data = append(data, echo.Map{
			"id":        f.Code,
			"firm_name": f.Name,
			"area":      f.Area,
			"latitude":  nullDecimal(f.Latitude),
			"longitude": nullDecimal(f.Longitude),
		})
	}
	return response.Success(c, http.StatusOK, echo.Map{"firms": data})
}

// ListShopLocations returns the shop location report, optionally limited to a date range
func ListShopLocations(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	dates, err := report.ParseDateRange(c.QueryParam("start_date"), c.QueryParam("end_date"), location)
	if err != nil {
		return response.Error(c, err, "")
	}

	rows := []report.ShopLocationRow{}
	if err := report.Run(c.Request().Context(), database.GetDB(), report.ShopLocations(report.Filter{Principal: p, Range: dates}), &rows); err != nil {
		return response.Error(c, err, "Database error")
	}
	if len(rows) == 0 {
		return response.Success(c, http.StatusOK, echo.Map{
			"data":    []echo.Map{},
			"message": "No shop locations found",
			"count":   0,
		})
	}

	data := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		data = append(data, echo.Map{
			"id":               r.ID,
			"firm_code":        r.FirmCode,
			"storeName":        r.FirmName,
			"storeLocation":    r.FirmPlace,
			"latitude":         nullDecimal(r.Latitude),
			"longitude":        nullDecimal(r.Longitude),
			"status":           stringOr(r.Status, model.VerificationPending),
			"taskDoneBy":       stringOr(r.CreatedBy, "Unknown"),
			"lastCapturedTime": isoTime(r.CreatedAt),
			"client_id":        r.ClientID,
		})
	}
	return response.Success(c, http.StatusOK, echo.Map{
		"data":    data,
		"count":   len(data),
		"message": "Shop locations retrieved successfully",
	})
}

// UpdateShopLocationStatus moves the locations of a firm through the verification workflow
func UpdateShopLocationStatus(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "status", "shop_id"); err != nil {
		return response.Error(c, err, "")
	}

	shopID := payload.String("shop_id")
	_, res, err := lifecycle.Transition[model.ShopLocation](c.Request().Context(), database.GetDB(), lifecycle.Request{
		Workflow:  lifecycle.ShopLocations,
		TenantID:  p.TenantID,
		KeyColumn: "firm_code",
		Key:       shopID,
		Status:    payload.String("status"),
		Actor:     p.SubjectID,
		At:        now(),
		NotFound:  "Shop not found or unauthorized",
	})
	if err != nil {
		return response.Error(c, err, "Database error")
	}

	log.Info("Shop location status changed", zap.String("shop_id", shopID), zap.Int("changed", res.Changed))
	return response.Success(c, http.StatusOK, echo.Map{"updated_count": res.Matched})
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
