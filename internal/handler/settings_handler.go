package handler

import (
	"encoding/json"
	"net/http"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/repository"
	"fieldsales-service/internal/response"
	"fieldsales-service/internal/validate"
	"fieldsales-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// loadSettings returns the tenant's options, creating the default row on first use.
func loadSettings(db *gorm.DB, tenantID string) (*model.SettingsOptions, error) {
	opts := model.SettingsOptions{}
	err := db.Scopes(repository.TenantScope(tenantID)).
		Attrs(model.SettingsOptions{ClientID: tenantID, ProtectedPriceUsers: datatypes.JSON("[]")}).
		FirstOrCreate(&opts).Error
	if err == nil {
		return &opts, nil
	}
	// Lost a create race against another request; the row exists now.
	if apperr.Is(apperr.FromDB(err, ""), apperr.ConstraintViolation) {
		if err := db.Scopes(repository.TenantScope(tenantID)).First(&opts).Error; err == nil {
			return &opts, nil
		}
	}
	return nil, apperr.FromDB(err, "")
}

// GetSettings returns the tenant's app options with the price codes and roles they refer to
func GetSettings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	opts, err := loadSettings(db(c), p.TenantID)
	if err != nil {
		return response.Error(c, err, "Failed to load settings")
	}

	var priceCodes []model.AccPriceCode
	if err := repository.Tenant(db(c), p).Order("code").Find(&priceCodes).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to load settings")
	}
	codes := make([]echo.Map, 0, len(priceCodes))
	for _, pc := range priceCodes {
		codes = append(codes, echo.Map{"code": pc.Code, "name": pc.Name})
	}

	roles := []string{}
	err = repository.Tenant(db(c), p).
		Model(&model.AccUser{}).
		Where("role IS NOT NULL AND role <> ''").
		Distinct().
		Order("role").
		Pluck("role", &roles).Error
	if err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to load settings")
	}

	return response.Success(c, http.StatusOK, echo.Map{
		"client_id":             p.TenantID,
		"order_rate_editable":   opts.OrderRateEditable,
		"default_price_code":    opts.DefaultPriceCode,
		"protected_price_users": opts.ProtectedPriceUsers,
		"read_price_category":   opts.ReadPriceCategory,
		"price_codes":           codes,
		"roles":                 roles,
	})
}

// SaveSettings updates the options named in the body and leaves the rest unchanged
func SaveSettings(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	opts, err := loadSettings(db(c), p.TenantID)
	if err != nil {
		return response.Error(c, err, "Failed to save settings")
	}
	if err := applySettings(opts, payload); err != nil {
		return response.Error(c, err, "")
	}
	if err := db(c).Save(opts).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to save settings")
	}

	log.Info("Settings saved", zap.Bool("order_rate_editable", opts.OrderRateEditable))
	return response.Success(c, http.StatusOK, echo.Map{
		"client_id": p.TenantID,
		"message":   "Settings saved successfully",
	})
}

func applySettings(opts *model.SettingsOptions, payload validate.Payload) error {
	if _, ok := payload["order_rate_editable"]; ok {
		v, valid := payload.Bool("order_rate_editable")
		if !valid {
			return apperr.New(apperr.InvalidFormat, "Invalid order_rate_editable")
		}
		opts.OrderRateEditable = v
	}
	if _, ok := payload["read_price_category"]; ok {
		v, valid := payload.Bool("read_price_category")
		if !valid {
			return apperr.New(apperr.InvalidFormat, "Invalid read_price_category")
		}
		opts.ReadPriceCategory = v
	}
	if _, ok := payload["default_price_code"]; ok {
		opts.DefaultPriceCode = payload.OptionalString("default_price_code")
	}
	if raw, ok := payload["protected_price_users"]; ok {
		if raw == nil {
			raw = []interface{}{}
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return apperr.Wrap(err, apperr.InvalidFormat, "Invalid protected_price_users")
		}
		opts.ProtectedPriceUsers = datatypes.JSON(b)
	}
	return nil
}
