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

// CreateItemOrder stores every item of an order under one order id
func CreateItemOrder(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	items, err := parseOrder(p, payload, false, "device_id")
	if err != nil {
		return response.Error(c, err, "")
	}

	orderID := groupCode("ORD-")
	rows := make([]model.ItemOrder, 0, len(items))
	created := make([]echo.Map, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.ItemOrder{
			OrderID:     orderID,
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
		return response.Error(c, apperr.FromDB(err, ""), "Failed to create order")
	}
	prometheus.RecordCreated("item_order", len(rows))

	log.Info("Item order created", zap.String("order_id", orderID), zap.Int("items", len(rows)))
	return response.Created(c, echo.Map{
		"message":  "Order created successfully",
		"order_id": orderID,
		"items":    created,
	})
}

// ListItemOrders returns the tenant's orders grouped by order id, optionally filtered by status
func ListItemOrders(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	q := repository.Tenant(db(c), p)
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []model.ItemOrder
	if err := q.Order("id DESC").Find(&orders).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve orders")
	}

	g := newGrouper()
	for _, o := range orders {
		o := o
		g.add(o.OrderID, func() echo.Map {
			h := lineHeader(o.OrderLine)
			h["order_id"] = o.OrderID
			h["payment_type"] = o.PaymentType
			h["remark"] = o.Remark
			return h
		}, lineItem(o.OrderLine))
	}
	groups := g.list()

	return response.Success(c, http.StatusOK, echo.Map{
		"total":  len(groups),
		"orders": groups,
	})
}

// ChangeItemOrderStatus moves every line of an order to a new status
func ChangeItemOrderStatus(c echo.Context) error {
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
	_, res, err := lifecycle.Transition[model.ItemOrder](c.Request().Context(), database.GetDB(), lifecycle.Request{
		Workflow:  lifecycle.ItemOrders,
		TenantID:  p.TenantID,
		KeyColumn: "order_id",
		Key:       orderID,
		Status:    payload.String("status"),
		Actor:     p.SubjectID,
		At:        now(),
		NotFound:  "Order not found",
	})
	if err != nil {
		return response.Error(c, err, "Failed to update order status")
	}

	log.Info("Order status changed", zap.String("order_id", orderID), zap.Int("changed", res.Changed))
	return response.Success(c, http.StatusOK, echo.Map{
		"message":             "Order status updated successfully",
		"order_id":            orderID,
		"total_items_updated": res.Matched,
		"status":              payload.String("status"),
	})
}
