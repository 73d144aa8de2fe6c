package handler

import (
	"net/http"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/repository"
	"fieldsales-service/internal/response"
	"fieldsales-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListDebtors returns the tenant's account master with running balances
func ListDebtors(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	var accounts []model.AccMaster
	if err := repository.Tenant(db(c), p).Order("name").Find(&accounts).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve debtors")
	}

	data := make([]echo.Map, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, echo.Map{
			"code":              a.Code,
			"name":              a.Name,
			"place":             a.Place,
			"area":              a.Area,
			"phone":             a.Phone2,
			"super_code":        a.SuperCode,
			"remarkcolumntitle": a.RemarkColumnTitle,
			"balance":           a.Balance(),
			"client_id":         a.ClientID,
		})
	}

	log.Info("Debtors retrieved", zap.Int("count", len(data)))
	return response.OK(c, data, nil)
}

// ListUsers returns the logins of the tenant without credentials
func ListUsers(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	var users []model.AccUser
	if err := repository.Tenant(db(c), p).Order("id").Find(&users).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve users")
	}

	data := make([]echo.Map, 0, len(users))
	for _, u := range users {
		data = append(data, echo.Map{
			"id":        u.ID,
			"role":      u.Role,
			"client_id": u.ClientID,
		})
	}
	return response.Success(c, http.StatusOK, echo.Map{
		"client_id": p.TenantID,
		"users":     data,
	})
}

// ListAreas returns the distinct areas used by the tenant's firms
func ListAreas(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	areas, err := repository.DistinctAreas(db(c), p.TenantID)
	if err != nil {
		return response.Error(c, err, "Failed to retrieve areas")
	}
	return response.Success(c, http.StatusOK, echo.Map{
		"client_id": p.TenantID,
		"areas":     areas,
	})
}

// ListProducts returns the tenant's active products with their batches and photos
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	var products []model.AccProduct
	err = repository.Tenant(db(c), p).
		Where("defected = ?", model.ProductActive).
		Order("name").
		Find(&products).Error
	if err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve products")
	}

	var batches []model.AccProductBatch
	if err := repository.Tenant(db(c), p).Order("id").Find(&batches).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve products")
	}
	var photos []model.AccProductPhoto
	if err := repository.Tenant(db(c), p).Order("id").Find(&photos).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve products")
	}

	byProduct := make(map[string][]model.AccProductBatch)
	for _, b := range batches {
		byProduct[b.ProductCode] = append(byProduct[b.ProductCode], b)
	}
	photosByProduct := make(map[string][]model.AccProductPhoto)
	for _, ph := range photos {
		photosByProduct[ph.Code] = append(photosByProduct[ph.Code], ph)
	}

	for i := range products {
		products[i].Batches = byProduct[products[i].Code]
		if products[i].Batches == nil {
			products[i].Batches = []model.AccProductBatch{}
		}
		products[i].Photos = photosByProduct[products[i].Code]
		if products[i].Photos == nil {
			products[i].Photos = []model.AccProductPhoto{}
		}
	}

	log.Info("Products retrieved", zap.Int("count", len(products)))
	return response.Success(c, http.StatusOK, echo.Map{
		"total":    len(products),
		"products": products,
	})
}
