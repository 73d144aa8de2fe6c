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

// CreateSalesReturn stores returned items under one return id. Each item may carry its own remark.
func CreateSalesReturn(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	items, err := parseOrder(p, payload, false)
	if err != nil {
		return response.Error(c, err, "")
	}

	orderID := groupCode("SR-")
	rows := make([]model.SalesReturn, 0, len(items))
	created := make([]echo.Map, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.SalesReturn{
			OrderID:       orderID,
			ProductRemark: it.remark,
			OrderLine:     it.line,
		})
		item := createdItem(it.line)
		item["remark"] = it.remark
		created = append(created, item)
	}

	defer prometheus.TrackDBOperation("insert")(now())
	err = db(c).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to create sales return")
	}
	prometheus.RecordCreated("sales_return", len(rows))

	log.Info("Sales return created", zap.String("order_id", orderID), zap.Int("items", len(rows)))
	return response.Created(c, echo.Map{
		"message":  "Sales return created successfully",
		"order_id": orderID,
		"items":    created,
	})
}

// ListSalesReturns returns pending sales returns grouped by return id
func ListSalesReturns(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	var returns []model.SalesReturn
	err = repository.Tenant(db(c), p).
		Where("status = ?", lifecycle.SalesReturns.Initial).
		Order("id DESC").
		Find(&returns).Error
	if err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve sales returns")
	}

	g := newGrouper()
	for _, r := range returns {
		r := r
		item := lineItem(r.OrderLine)
		item["remark"] = r.ProductRemark
		g.add(r.OrderID, func() echo.Map {
			h := lineHeader(r.OrderLine)
			h["order_id"] = r.OrderID
			return h
		}, item)
	}
	groups := g.list()

	return response.Success(c, http.StatusOK, echo.Map{
		"total":   len(groups),
		"returns": groups,
	})
}

// ChangeSalesReturnStatus moves every row of a sales return to the requested status
func ChangeSalesReturnStatus(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "order_id", "status"); err != nil {
		return response.Error(c, err, "")
	}

	orderID := payload.String("order_id")
	_, res, err := lifecycle.Transition[model.SalesReturn](c.Request().Context(), database.GetDB(), lifecycle.Request{
		Workflow:  lifecycle.SalesReturns,
		TenantID:  p.TenantID,
		KeyColumn: "order_id",
		Key:       orderID,
		Status:    payload.String("status"),
		Actor:     p.SubjectID,
		At:        now(),
		NotFound:  "Sales return not found",
	})
	if err != nil {
		return response.Error(c, err, "Failed to update sales return status")
	}

	log.Info("Sales return status changed", zap.String("order_id", orderID), zap.Int("changed", res.Changed))
	return response.Success(c, http.StatusOK, echo.Map{
		"message":             "Sales return status updated successfully",
		"order_id":            orderID,
		"total_items_updated": res.Matched,
		"status":              payload.String("status"),
	})
}
