package handler_test

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"fieldsales-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func punchInRequest(t *testing.T, token string, fields map[string]string, imageType string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="shop.jpg"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/punch/punchin", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func punchFields() map[string]string {
	return map[string]string{
		"customerCode":     "F1",
		"latitude":         "9.9312",
		"longitude":        "76.2673",
		"current_location": "MG Road",
		"shop_location":    "MG Road",
		"punchin_status":   "visit",
		"address":          "MG Road, Kochi",
		"notes":            "arrived",
	}
}

func seedPunchTenant(t *testing.T, s *testServer) {
	t.Helper()
	require.NoError(t, s.db.Create(&[]model.AccMaster{
		{Code: "F1", ClientID: "T1", Name: "Kerala Traders", Place: "Kochi", Area: "North"},
		{Code: "F2", ClientID: "T1", Name: "Metro Stores", Place: "Kochi", Area: "South"},
	}).Error)
	require.NoError(t, s.db.Create(&[]model.AccUser{
		{ID: "alice", ClientID: "T1", Role: "salesman"},
		{ID: "bob", ClientID: "T1", Role: "salesman"},
	}).Error)
}

func TestPunchInValidation(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	alice := s.token(t, "T1", "alice", "salesman")
	img := []byte("\xff\xd8\xff fake jpeg")

	tests := []struct {
		name   string
		mutate func(map[string]string)
		ctype  string
		image  []byte
		status int
		err    string
	}{
		{name: "firm", mutate: func(f map[string]string) { delete(f, "customerCode") }, ctype: "image/jpeg", image: img, status: 400, err: "firm_code is required"},
		{name: "coordinates", mutate: func(f map[string]string) { delete(f, "latitude") }, ctype: "image/jpeg", image: img, status: 400, err: "Location coordinates are required"},
		{name: "image", mutate: func(map[string]string) {}, status: 400, err: "Image file is required for punch-in"},
		{name: "punchin status", mutate: func(f map[string]string) { delete(f, "punchin_status") }, ctype: "image/jpeg", image: img, status: 400, err: "punchin_status is required"},
		{name: "content type", mutate: func(map[string]string) {}, ctype: "image/gif", image: img, status: 400, err: "Only JPG, JPEG, and PNG images are allowed"},
		{name: "range", mutate: func(f map[string]string) { f["latitude"] = "95" }, ctype: "image/jpeg", image: img, status: 400, err: "Invalid coordinate values"},
		{name: "unknown firm", mutate: func(f map[string]string) { f["customerCode"] = "NOPE" }, ctype: "image/png", image: img, status: 404, err: "Invalid firm code for this client"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := punchFields()
			tt.mutate(fields)
			code, resp := s.serve(t, punchInRequest(t, alice, fields, tt.ctype, tt.image))
			require.Equal(t, tt.status, code)
			require.Equal(t, tt.err, resp["error"])
		})
	}

	var n int64
	require.NoError(t, s.db.Model(&model.PunchIn{}).Count(&n).Error)
	require.Zero(t, n)
	require.Empty(t, s.store.objects)
}

func TestPunchInRequiresUsername(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	anonymous := s.token(t, "T1", "", "salesman")

	code, resp := s.serve(t, punchInRequest(t, anonymous, punchFields(), "image/jpeg", []byte("x")))
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid token payload", resp["error"])
}

func TestPunchInOutFlow(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	alice := s.token(t, "T1", "alice", "salesman")
	bob := s.token(t, "T1", "bob", "salesman")
	admin := s.token(t, "T1", "boss", "admin")

	code, resp := s.do(t, http.MethodGet, "/api/punch/punchin/active", alice, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, resp["is_punched_in"])
	require.Equal(t, false, resp["completed_today"])

	code, resp = s.serve(t, punchInRequest(t, alice, punchFields(), "image/jpeg", []byte("jpeg-bytes")))
	require.Equal(t, http.StatusCreated, code, resp)
	require.Equal(t, "Punch-in recorded successfully", resp["message"])
	data := resp["data"].(map[string]interface{})
	require.Equal(t, "Kerala Traders", data["firm_name"])
	require.Equal(t, "pending", data["status"])
	require.Regexp(t, `^https://cdn\.test/punch_images/T1/Kerala_Traders/alice_\d{4}-\d{2}-\d{2}_[0-9a-f]{8}\.jpg$`, data["photo_url"])
	require.Len(t, s.store.objects, 1)
	id := int(data["punchin_id"].(float64))

	// A second open punch-in on the same day is refused.
	fields := punchFields()
	fields["customerCode"] = "F2"
	code, resp = s.serve(t, punchInRequest(t, alice, fields, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["error"], "already have an active punch-in")
	require.Len(t, s.store.objects, 1)

	code, resp = s.do(t, http.MethodGet, "/api/punch/punchin/active", alice, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["is_punched_in"])

	// Another subject of the same tenant cannot close it.
	path := fmt.Sprintf("/api/punch/punchout/%d", id)
	code, _ = s.do(t, http.MethodPost, path, bob, map[string]interface{}{"notes": "not mine"})
	require.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(t, http.MethodPost, path, alice, map[string]interface{}{"notes": "order taken"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Punch-out recorded successfully", resp["message"])

	var stored model.PunchIn
	require.NoError(t, s.db.First(&stored, id).Error)
	require.NotNil(t, stored.PunchoutTime)
	require.Equal(t, "arrived\nPunch-out notes: order taken", stored.Notes)

	code, _ = s.do(t, http.MethodPost, path, alice, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, resp = s.do(t, http.MethodGet, "/api/punch/punchin/active", alice, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, resp["is_punched_in"])
	require.Equal(t, true, resp["completed_today"])
	completed := resp["data"].(map[string]interface{})
	require.Contains(t, completed, "total_work_hours")
	require.NotContains(t, completed, "work_duration_hours")

	// Reports: the subject sees only their own visits, admins see all.
	code, resp = s.do(t, http.MethodGet, "/api/punch/punchins", bob, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 0, resp["count"])
	require.Equal(t, "No punch-in records found", resp["message"])

	code, resp = s.do(t, http.MethodGet, "/api/punch/punchins", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp["count"])
	require.Equal(t, true, resp["is_admin_view"])
	row := resp["data"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, "Kerala Traders", row["firm_name"])
	require.Equal(t, false, row["is_active"])

	code, resp = s.do(t, http.MethodPost, "/api/punch/punchin/verification", admin,
		map[string]interface{}{"id": id, "shop_id": "F1", "status": "verified", "createdBy": "bob"})
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Punch-in not found or unauthorized", resp["error"])

	code, resp = s.do(t, http.MethodPost, "/api/punch/punchin/verification", admin,
		map[string]interface{}{"id": id, "shop_id": "F1", "status": "verified", "createdBy": "alice"})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp["updated_count"])

	code, resp = s.do(t, http.MethodPost, "/api/punch/punchin/verification", admin,
		map[string]interface{}{"id": id, "shop_id": "F1", "status": "verified"})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp["updated_count"])

	code, resp = s.do(t, http.MethodPost, "/api/punch/punchin/verification", admin,
		map[string]interface{}{"id": id, "status": "verified"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "shop_id is required", resp["error"])
}

func TestShopLocations(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	alice := s.token(t, "T1", "alice", "salesman")
	admin := s.token(t, "T1", "boss", "admin")
	other := s.token(t, "T2", "boss", "admin")

	body := map[string]interface{}{"firm_name": "Kerala Traders", "latitude": 9.93, "longitude": 76.26}
	code, resp := s.do(t, http.MethodPost, "/api/punch/shop-location", alice, body)
	require.Equal(t, http.StatusCreated, code)

	body["latitude"] = "10.01"
	code, resp = s.do(t, http.MethodPost, "/api/punch/shop-location", alice, body)
	require.Equal(t, http.StatusOK, code, "second save moves the existing location")

	code, resp = s.do(t, http.MethodPost, "/api/punch/shop-location", other, body)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Invalid firm for this client", resp["error"])

	var n int64
	require.NoError(t, s.db.Model(&model.ShopLocation{}).Count(&n).Error)
	require.EqualValues(t, 1, n)

	code, resp = s.do(t, http.MethodGet, "/api/punch/firms", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp["firms"], 2)

	code, resp = s.do(t, http.MethodGet, "/api/punch/firms", alice, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "No firms found", resp["message"])

	code, resp = s.do(t, http.MethodGet, "/api/punch/shop-locations?start_date=2000-01-01&end_date=2000-01-02", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 0, resp["count"])

	code, resp = s.do(t, http.MethodGet, "/api/punch/shop-locations", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp["count"])
	row := resp["data"].([]interface{})[0].(map[string]interface{})
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	require.ElementsMatch(t, []string{
		"id", "firm_code", "storeName", "storeLocation", "latitude", "longitude",
		"status", "taskDoneBy", "lastCapturedTime", "client_id",
	}, keys)
	require.Equal(t, "Kerala Traders", row["storeName"])
	require.Equal(t, "Kochi", row["storeLocation"])
	require.Equal(t, "alice", row["taskDoneBy"])
	require.Equal(t, "pending", row["status"])

	code, resp = s.do(t, http.MethodPost, "/api/punch/shop-location/status", other, map[string]interface{}{"shop_id": "F1", "status": "verified"})
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Shop not found or unauthorized", resp["error"])

	code, resp = s.do(t, http.MethodPost, "/api/punch/shop-location/status", admin, map[string]interface{}{"shop_id": "F1", "status": "verified"})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp["updated_count"])
}

func TestPunchInReportFallbacks(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	admin := s.token(t, "T1", "boss", "admin")

	open := model.PunchIn{
		FirmCode:        "F2",
		ClientID:        "T1",
		CurrentLocation: "here",
		ShopLocation:    "there",
		PunchinStatus:   "visit",
		PunchinTime:     time.Now().UTC().Add(-time.Hour),
		CreatedBy:       "alice",
	}
	open.Status = model.VerificationPending
	require.NoError(t, s.db.Create(&open).Error)
	require.NoError(t, s.db.Exec("UPDATE punchin SET photo = NULL, address = NULL, notes = NULL WHERE id = ?", open.ID).Error)

	code, resp := s.do(t, http.MethodGet, "/api/punch/punchins", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, resp["count"])
	row := resp["data"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, true, row["is_active"])
	require.Contains(t, row, "work_duration_hours")
	require.Nil(t, row["work_duration_hours"])
	require.Contains(t, row, "photo_url")
	require.Nil(t, row["photo_url"])
	require.Equal(t, "", row["address"])
	require.Equal(t, "", row["notes"])
	require.Equal(t, "alice", row["created_by"])
	require.Equal(t, "Metro Stores", row["firm_name"])
}

func TestPunchInWithoutUserRow(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	carol := s.token(t, "T1", "carol", "salesman")

	code, resp := s.serve(t, punchInRequest(t, carol, punchFields(), "image/jpeg", []byte("jpeg")))
	require.Equal(t, http.StatusCreated, code, resp)

	code, resp = s.serve(t, punchInRequest(t, carol, punchFields(), "image/jpeg", []byte("jpeg")))
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["error"], "already have an active punch-in")
	require.Len(t, s.store.objects, 1)
}

func TestPunchInFailedInsertRemovesPhoto(t *testing.T) {
	s := newServer(t)
	seedPunchTenant(t, s)
	alice := s.token(t, "T1", "alice", "salesman")

	require.NoError(t, s.db.Callback().Create().Before("gorm:create").Register("fail_punchin", func(tx *gorm.DB) {
		if tx.Statement.Table == "punchin" {
			tx.AddError(errors.New("disk full"))
		}
	}))

	code, resp := s.serve(t, punchInRequest(t, alice, punchFields(), "image/jpeg", []byte("jpeg")))
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "Failed to record punch-in", resp["error"])
	require.Empty(t, s.store.objects)
	require.Len(t, s.store.deleted, 1)
}
