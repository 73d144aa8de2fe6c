package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/lifecycle"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/report"
	"fieldsales-service/internal/repository"
	"fieldsales-service/internal/response"
	"fieldsales-service/internal/validate"
	"fieldsales-service/pkg/database"
	"fieldsales-service/pkg/logger"
	"fieldsales-service/pkg/storage"
	"fieldsales-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// punchInForm is the validated multipart punch-in request
type punchInForm struct {
	firmCode        string
	latitude        decimal.Decimal
	longitude       decimal.Decimal
	currentLocation string
	shopLocation    string
	punchinStatus   string
	address         string
	notes           string
	image           *multipart.FileHeader
}

func parsePunchInForm(c echo.Context) (*punchInForm, error) {
	f := &punchInForm{
		firmCode:        strings.TrimSpace(c.FormValue("customerCode")),
		currentLocation: strings.TrimSpace(c.FormValue("current_location")),
		shopLocation:    strings.TrimSpace(c.FormValue("shop_location")),
		punchinStatus:   strings.TrimSpace(c.FormValue("punchin_status")),
		address:         strings.TrimSpace(c.FormValue("address")),
		notes:           strings.TrimSpace(c.FormValue("notes")),
	}
	lat := strings.TrimSpace(c.FormValue("latitude"))
	lng := strings.TrimSpace(c.FormValue("longitude"))

	if f.firmCode == "" {
		return nil, apperr.New(apperr.MissingField, "firm_code is required")
	}
	if lat == "" || lng == "" {
		return nil, apperr.New(apperr.MissingField, "Location coordinates are required")
	}
	image, err := c.FormFile("image")
	if err != nil {
		return nil, apperr.New(apperr.MissingField, "Image file is required for punch-in")
	}
	f.image = image

	for _, field := range [][2]string{
		{"current_location", f.currentLocation},
		{"shop_location", f.shopLocation},
		{"punchin_status", f.punchinStatus},
	} {
		if field[1] == "" {
			return nil, apperr.New(apperr.MissingField, field[0]+" is required")
		}
	}

	if image.Size > maxUploadBytes {
		return nil, apperr.New(apperr.InvalidRange,
			fmt.Sprintf("Image size must be less than %dMB", maxUploadBytes/(1024*1024)))
	}
	if !imageTypes[strings.ToLower(image.Header.Get("Content-Type"))] {
		return nil, apperr.New(apperr.InvalidFormat, "Only JPG, JPEG, and PNG images are allowed")
	}

	if f.latitude, f.longitude, err = validate.Coordinates(lat, lng); err != nil {
		return nil, err
	}
	return f, nil
}

func readImage(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.InvalidFormat, "Image file could not be read")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.InvalidFormat, "Image file could not be read")
	}
	if int64(len(data)) > maxUploadBytes {
		return nil, apperr.New(apperr.InvalidRange,
			fmt.Sprintf("Image size must be less than %dMB", maxUploadBytes/(1024*1024)))
	}
	return data, nil
}

// PunchIn opens a visit for the caller at a firm. Only one open visit per local day is allowed.
func PunchIn(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := auth.RequireSubject(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	form, err := parsePunchInForm(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	firm, err := repository.FindFirmByCode(db(c), p.TenantID, form.firmCode)
	if err != nil {
		return response.Error(c, err, "Database error")
	}
	if objectStore == nil {
		return response.Error(c, apperr.New(apperr.Unexpected, "Image storage is not configured"), "Failed to upload image")
	}
	data, err := readImage(form.image)
	if err != nil {
		return response.Error(c, err, "")
	}

	at := now().UTC()
	dayStart, dayEnd := dayBounds(at)

	var rec model.PunchIn
	var uploaded string
	err = db(c).Transaction(func(tx *gorm.DB) error {
		if err := repository.LockSubject(tx, p.TenantID, p.SubjectID); err != nil {
			return apperr.FromDB(err, "")
		}

		var open int64
		if err := tx.Model(&model.PunchIn{}).
			Scopes(repository.TenantScope(p.TenantID)).
			Where("created_by = ? AND punchout_time IS NULL", p.SubjectID).
			Where("punchin_time >= ? AND punchin_time < ?", dayStart, dayEnd).
			Count(&open).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if open > 0 {
			return apperr.New(apperr.Conflict, "You already have an active punch-in. Please punch out first.")
		}

		ext := filepath.Ext(form.image.Filename)
		key := storage.PunchPhotoKey(p.TenantID, firm.Name, p.SubjectID, at.In(location), ext)
		if err := objectStore.Put(c.Request().Context(), key, data, form.image.Header.Get("Content-Type")); err != nil {
			prometheus.RecordUpload("failure")
			return apperr.Wrap(err, apperr.Unexpected, "Failed to upload image")
		}
		prometheus.RecordUpload("success")
		uploaded = key

		rec = model.PunchIn{
			FirmCode:        firm.Code,
			ClientID:        p.TenantID,
			Latitude:        decimal.NewNullDecimal(form.latitude),
			Longitude:       decimal.NewNullDecimal(form.longitude),
			CurrentLocation: form.currentLocation,
			ShopLocation:    form.shopLocation,
			PunchinStatus:   form.punchinStatus,
			PunchinTime:     at,
			CreatedBy:       p.SubjectID,
			Photo:           key,
			Address:         form.address,
			Notes:           form.notes,
			CreatedAt:       at,
			UpdatedAt:       at,
		}
		rec.Status = lifecycle.PunchIns.Initial
		return apperr.FromDB(tx.Create(&rec).Error, "")
	})
	if err != nil {
		if uploaded != "" {
			// The row was rolled back, so nothing references the photo.
			if derr := objectStore.Delete(c.Request().Context(), uploaded); derr != nil {
				log.Warn("Failed to remove orphaned punch-in photo", zap.String("key", uploaded), zap.Error(derr))
			}
		}
		return response.Error(c, err, "Failed to record punch-in")
	}
	prometheus.RecordPunch("in")

	log.Info("Punch-in recorded", zap.Uint("punchin_id", rec.ID), zap.String("firm_code", firm.Code))
	return response.Success(c, http.StatusCreated, echo.Map{
		"message": "Punch-in recorded successfully",
		"data": echo.Map{
			"punchin_id":       rec.ID,
			"firm_name":        firm.Name,
			"firm_code":        firm.Code,
			"punchin_time":     isoTime(rec.PunchinTime),
			"latitude":         form.latitude,
			"longitude":        form.longitude,
			"current_location": rec.CurrentLocation,
			"shop_location":    rec.ShopLocation,
			"punchin_status":   rec.PunchinStatus,
			"photo_url":        photoURL(rec.Photo),
			"address":          rec.Address,
			"status":           rec.Status,
			"created_by":       rec.CreatedBy,
		},
	})
}

// punchOutNotes reads the optional notes from either a JSON or a form body
func punchOutNotes(c echo.Context) (string, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		payload, err := bindPayload(c)
		if err != nil {
			return "", err
		}
		return payload.String("notes"), nil
	}
	return strings.TrimSpace(c.FormValue("notes")), nil
}

// PunchOut closes an open visit of the caller
func PunchOut(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := auth.RequireSubject(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	id, err := parseID("punch-in id", c.Param("id"))
	if err != nil {
		return response.Error(c, err, "")
	}
	notes, err := punchOutNotes(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	var rec model.PunchIn
	err = db(c).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(repository.TenantScope(p.TenantID)).
			Where("id = ? AND punchout_time IS NULL", id).
			First(&rec).Error
		if err != nil {
			return apperr.FromDB(err, "No active punch-in found with the provided ID")
		}
		if rec.CreatedBy != p.SubjectID {
			return apperr.New(apperr.TenantMismatch, "You can only punch out your own punch-in")
		}

		out := now().UTC()
		rec.PunchoutTime = &out
		rec.UpdatedAt = out
		if notes != "" {
			rec.Notes += "\nPunch-out notes: " + notes
		}
		return apperr.FromDB(tx.Save(&rec).Error, "")
	})
	if err != nil {
		return response.Error(c, err, "Failed to record punch-out")
	}
	prometheus.RecordPunch("out")

	hours := round2(rec.WorkHours(now()))
	log.Info("Punch-out recorded", zap.Uint("punchin_id", rec.ID), zap.Float64("hours", hours))
	return response.Success(c, http.StatusOK, echo.Map{
		"message": "Punch-out recorded successfully",
		"data": echo.Map{
			"punchin_id":          rec.ID,
			"firm_name":           firmName(c, p.TenantID, rec.FirmCode),
			"punchin_time":        isoTime(rec.PunchinTime),
			"punchout_time":       isoOptional(rec.PunchoutTime),
			"work_duration_hours": hours,
			"status":              rec.Status,
		},
	})
}

// ActivePunchIn reports the caller's open visit of today, or whether one was completed today.
func ActivePunchIn(c echo.Context) error {
	p, err := auth.RequireSubject(c)
	if err != nil {
		return response.Error(c, err, "")
	}

	at := now()
	dayStart, dayEnd := dayBounds(at)
	today := func() *gorm.DB {
		return db(c).Scopes(repository.TenantScope(p.TenantID)).
			Where("created_by = ?", p.SubjectID).
			Where("punchin_time >= ? AND punchin_time < ?", dayStart, dayEnd)
	}

	var open []model.PunchIn
	if err := today().Where("punchout_time IS NULL").Order("punchin_time DESC").Limit(1).Find(&open).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Database error")
	}
	if len(open) > 0 {
		rec := open[0]
		elapsed := at.Sub(rec.PunchinTime)
		return response.Success(c, http.StatusOK, echo.Map{
			"is_punched_in": true,
			"data": echo.Map{
				"punchin_id":         rec.ID,
				"firm_name":          firmName(c, p.TenantID, rec.FirmCode),
				"firm_code":          rec.FirmCode,
				"punchin_time":       isoTime(rec.PunchinTime),
				"current_work_hours": round2(elapsed.Hours()),
				"seconds":            int64(elapsed / time.Second),
				"photo_url":          photoURL(rec.Photo),
				"address":            rec.Address,
				"status":             rec.Status,
			},
		})
	}

	var done []model.PunchIn
	if err := today().Where("punchout_time IS NOT NULL").Order("punchout_time DESC").Limit(1).Find(&done).Error; err != nil {
		return response.Error(c, apperr.FromDB(err, ""), "Database error")
	}
	var data interface{}
	if len(done) > 0 {
		rec := done[0]
		data = echo.Map{
			"punchin_id":       rec.ID,
			"firm_name":        firmName(c, p.TenantID, rec.FirmCode),
			"firm_code":        rec.FirmCode,
			"punchin_time":     isoTime(rec.PunchinTime),
			"punchout_time":    isoOptional(rec.PunchoutTime),
			"total_work_hours": round2(rec.WorkHours(at)),
			"status":           rec.Status,
		}
	}
	return response.Success(c, http.StatusOK, echo.Map{
		"is_punched_in":   false,
		"completed_today": len(done) > 0,
		"data":            data,
	})
}

// ListPunchIns returns the punch-in report. Non-admins only see their own visits.
func ListPunchIns(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	dates, err := report.ParseDateRange(c.QueryParam("start_date"), c.QueryParam("end_date"), location)
	if err != nil {
		return response.Error(c, err, "")
	}

	rows := []report.PunchInRow{}
	if err := report.Run(c.Request().Context(), database.GetDB(), report.PunchIns(report.Filter{Principal: p, Range: dates}), &rows); err != nil {
		return response.Error(c, err, "Database error")
	}

	data := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		// Open visits have no duration yet.
		var hours interface{}
		if r.PunchoutTime != nil {
			hours = round2(r.PunchoutTime.Sub(r.PunchinTime).Hours())
		}
		data = append(data, echo.Map{
			"id":                  r.ID,
			"firm_code":           r.FirmCode,
			"firm_name":           r.FirmName,
			"firm_location":       r.FirmPlace,
			"latitude":            nullDecimal(r.Latitude),
			"longitude":           nullDecimal(r.Longitude),
			"punchin_time":        isoTime(r.PunchinTime),
			"punchout_time":       isoOptional(r.PunchoutTime),
			"work_duration_hours": hours,
			"photo_url":           photoURL(stringOr(r.Photo, "")),
			"address":             stringOr(r.Address, ""),
			"notes":               stringOr(r.Notes, ""),
			"status":              stringOr(r.Status, model.VerificationPending),
			"created_by":          stringOr(r.CreatedBy, "Unknown"),
			"client_id":           r.ClientID,
			"is_active":           r.PunchoutTime == nil,
			"created_at":          isoOptional(r.CreatedAt),
			"updated_at":          isoOptional(r.UpdatedAt),
		})
	}

	message := "Punch-in records retrieved successfully"
	if len(data) == 0 {
		message = "No punch-in records found"
	}
	return response.Success(c, http.StatusOK, echo.Map{
		"data":          data,
		"count":         len(data),
		"message":       message,
		"user_role":     p.Role,
		"is_admin_view": p.IsAdmin(),
	})
}

// UpdatePunchInVerification moves one punch-in of a firm through the verification workflow
func UpdatePunchInVerification(c echo.Context) error {
	log := logger.FromContext(c)

	p, err := principal(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	payload, err := bindPayload(c)
	if err != nil {
		return response.Error(c, err, "")
	}
	if err := validate.Required(payload, "shop_id", "status", "id"); err != nil {
		return response.Error(c, err, "")
	}
	id, err := parseID("id", payload["id"])
	if err != nil {
		return response.Error(c, err, "")
	}

	extra := map[string]interface{}{"firm_code": payload.String("shop_id")}
	if createdBy := payload.String("createdBy"); createdBy != "" {
		extra["created_by"] = createdBy
	}

	_, res, err := lifecycle.Transition[model.PunchIn](c.Request().Context(), database.GetDB(), lifecycle.Request{
		Workflow:  lifecycle.PunchIns,
		TenantID:  p.TenantID,
		KeyColumn: "id",
		Key:       id,
		Extra:     extra,
		Status:    payload.String("status"),
		Actor:     p.SubjectID,
		At:        now(),
		NotFound:  "Punch-in not found or unauthorized",
	})
	if err != nil {
		return response.Error(c, err, "Database error")
	}

	log.Info("Punch-in verification changed", zap.Uint("punchin_id", id), zap.Int("changed", res.Changed))
	return response.Success(c, http.StatusOK, echo.Map{"updated_count": res.Matched})
}

// firmName resolves a firm code for display, falling back to a placeholder.
func firmName(c echo.Context, tenantID, code string) string {
	firm, err := repository.FindFirmByCode(db(c), tenantID, code)
	if err != nil {
		return "Unknown Store"
	}
	return firm.Name
}

// photoURL resolves a stored object key. Rows without a photo yield null.
func photoURL(key string) interface{} {
	if key == "" {
		return nil
	}
	if objectStore == nil {
		return storage.PublicURL("", key)
	}
	return objectStore.URL(key)
}
