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
)

// CreateCollection records a payment collected from a customer
func CreateCollection(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "code", "name", "amount", "type"); err != nil {
		return response.Error(c, err, "")
	}
	amount, err := validate.Decimal("amount", payload["amount"])
	if err != nil {
		return response.Error(c, err, "")
	}

	collection := model.Collection{
		Code:      payload.String("code"),
		Name:      payload.String("name"),
		Place:     payload.OptionalString("place"),
		Phone:     payload.OptionalString("phone"),
		Amount:    amount,
		Type:      payload.String("type"),
		ClientID:  p.TenantID,
		ChequeNo:  payload.OptionalString("cheque_no"),
		RefNo:     payload.OptionalString("ref_no"),
		Remark:    payload.OptionalString("remark"),
		CreatedBy: p.SubjectID,
		CreatedAt: now().UTC(),
	}
	collection.Status = lifecycle.Collections.Initial

	defer prometheus.TrackDBOperation("insert")(now())
	if err := db(c).Create(&collection).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to add collection")
	}
	prometheus.RecordCreated("collection", 1)

	log.Info("Collection created", zap.Uint("id", collection.ID), zap.String("code", collection.Code))
	return response.Created(c, echo.Map{
		"message": "Collection added",
		"id":      collection.ID,
	})
}

// ListCollections returns every collection of the tenant, newest first
func ListCollections(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	var collections []model.Collection
	err = repository.Tenant(db(c), p).
		Order("created_at DESC").Order("id DESC").
		Find(&collections).Error
	if err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Failed to retrieve collections")
	}

	data := make([]echo.Map, 0, len(collections))
	for _, col := range collections {
		createdDate, createdTime := splitDateTime(col.CreatedAt)
		uploadedDate, uploadedTime := splitOptional(col.StatusChangedAt)
		data = append(data, echo.Map{
			"id":                col.ID,
			"code":              col.Code,
			"name":              col.Name,
			"place":             col.Place,
			"phone":             col.Phone,
			"amount":            col.Amount,
			"type":              col.Type,
			"cheque_no":         col.ChequeNo,
			"ref_no":            col.RefNo,
			"remark":            col.Remark,
			"status":            col.Status,
			"created_by":        col.CreatedBy,
			"created_date":      createdDate,
			"created_time":      createdTime,
			"uploaded_username": col.StatusChangedBy,
			"uploaded_date":     uploadedDate,
			"uploaded_time":     uploadedTime,
		})
	}

	return response.OK(c, data, nil)
}

// CompleteCollection moves a collection to a new status
func CompleteCollection(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "id", "status"); err != nil {
		return response.Error(c, err, "")
	}
	id, err := parseID("id", payload["id"])
	if err != nil {
		return response.Error(c, err, "")
	}

	rows, res, err := lifecycle.Transition[model.Collection](c.Request().Context(), database.GetDB(), lifecycle.Request{
		Workflow:  lifecycle.Collections,
		TenantID:  p.TenantID,
		KeyColumn: "id",
		Key:       id,
		Status:    payload.String("status"),
		Actor:     p.SubjectID,
		At:        now(),
		NotFound:  "Collection not found",
	})
	if err != nil {
		return response.Error(c, err, "Failed to update status")
	}

	log.Info("Collection status changed", zap.Uint("id", id), zap.String("status", rows[0].Status), zap.Int("changed", res.Changed))
	return response.Success(c, http.StatusOK, echo.Map{
		"message": "Status updated",
		"status":  rows[0].Status,
	})
}
