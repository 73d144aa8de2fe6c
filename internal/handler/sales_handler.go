package handler

import (
	"net/http"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/lifecycle"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/repository"
	"fieldsales-service/internal/response"
	"fieldsales-service/internal/validate"
	"fieldsales-service/pkg/database"
	"fieldsales-service/pkg/logger"
	"fieldsales-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateSales stores a sale under one sales id. Quantities must be whole numbers.
func CreateSales(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	items, err := parseOrder(p, payload, true, "device_id")
	if err != nil {
		return response.Error(c, err, "")
	}

	salesID := groupCode("SAL-")
	rows := make([]model.Sale, 0, len(items))
	created := make([]echo.Map, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.Sale{
			SalesID:     salesID,
			PaymentType: payload.String("payment_type"),
			Remark:      payload.OptionalString("remark"),
			OrderLine:   it.line,
		})
		created = append(created, createdItem(it.line))
	}

	defer prometheus.TrackDBOperation("insert")(now())
	err = db(c).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to create sales")
	}
	prometheus.RecordCreated("sales", len(rows))

	log.Info("Sales created", zap.String("sales_id", salesID), zap.Int("items", len(rows)))
	return response.Created(c, echo.Map{
		"message":  "Sales created successfully",
		"sales_id": salesID,
		"items":    created,
	})
}

// ListPendingSales returns sales still waiting to be picked up
func ListPendingSales(c echo.Context) error {
	return listSales(c, true)
}

// ListAllSales returns every sale of the tenant
func ListAllSales(c echo.Context) error {
	return listSales(c, false)
}

func listSales(c echo.Context, pendingOnly bool) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	q := repository.Tenant(db(c), p)
	if pendingOnly {
		q = q.Where("status = ?", lifecycle.Sales.Initial)
	}

	var sales []model.Sale
	if err := q.Order("id DESC").Find(&sales).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve sales")
	}

	g := newGrouper()
	for _, s := range sales {
		s := s
		g.add(s.SalesID, func() echo.Map {
			h := lineHeader(s.OrderLine)
			h["sales_id"] = s.SalesID
			h["payment_type"] = s.PaymentType
			h["remark"] = s.Remark
			return h
		}, lineItem(s.OrderLine))
	}
	groups := g.list()

	return response.Success(c, http.StatusOK, echo.Map{
		"total_sales": len(groups),
		"sales":       groups,
	})
}

// ChangeSalesStatus moves every row of a sale to the requested status
func ChangeSalesStatus(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "sales_id", "status"); err != nil {
		return response.Error(c, err, "")
	}

	salesID := payload.String("sales_id")
	_, res, err := lifecycle.Transition[model.Sale](c.Request().Context(), database.GetDB(), lifecycle.Request{
		Workflow:  lifecycle.Sales,
		TenantID:  p.TenantID,
		KeyColumn: "sales_id",
		Key:       salesID,
		Status:    payload.String("status"),
		Actor:     p.SubjectID,
		At:        now(),
		NotFound:  "Sales not found",
	})
	if err != nil {
		return response.Error(c, err, "Failed to update sales status")
	}

	log.Info("Sales status changed", zap.String("sales_id", salesID), zap.Int("changed", res.Changed))
	return response.Success(c, http.StatusOK, echo.Map{
		"message":             "Sales status updated successfully",
		"sales_id":            salesID,
		"total_items_updated": res.Matched,
		"status":              payload.String("status"),
	})
}
