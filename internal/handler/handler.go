package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/validate"
	"fieldsales-service/pkg/database"
	"fieldsales-service/pkg/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Options wires the collaborators handlers need besides the database.
type Options struct {
	Location       *time.Location
	Store          storage.ObjectStore
	MaxUploadBytes int64
	Clock          func() time.Time
}

var (
	location             = time.UTC
	objectStore          storage.ObjectStore
	maxUploadBytes int64 = 5 * 1024 * 1024
	now                  = time.Now
)

// Configure installs the handler collaborators. Zero fields keep their defaults.
func Configure(opts Options) {
	if opts.Location != nil {
		location = opts.Location
	}
	if opts.Store != nil {
		objectStore = opts.Store
	}
	if opts.MaxUploadBytes > 0 {
		maxUploadBytes = opts.MaxUploadBytes
	}
	if opts.Clock != nil {
		now = opts.Clock
	}
}

func db(c echo.Context) *gorm.DB {
	return database.GetDB().WithContext(c.Request().Context())
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c)
	if !ok || p.TenantID == "" {
		return auth.Principal{}, apperr.New(apperr.Invalid, "Invalid token")
	}
	return p, nil
}

// bindPayload decodes a JSON object keeping numbers exact. An empty body is an empty payload.
func bindPayload(c echo.Context) (validate.Payload, error) {
	p := validate.Payload{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return nil, apperr.Wrap(err, apperr.InvalidFormat, "Invalid JSON")
	}
	return p, nil
}

// parseID accepts ids given as JSON numbers or numeric strings.
func parseID(field string, v interface{}) (uint, error) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.InvalidFormat, "Invalid "+field)
	}
	return uint(id), nil
}

// splitDateTime renders an instant as local date and time strings.
func splitDateTime(t time.Time) (string, string) {
	local := t.In(location)
	return local.Format("2006-01-02"), local.Format("15:04:05")
}

func splitOptional(t *time.Time) (interface{}, interface{}) {
	if t == nil {
		return nil, nil
	}
	d, tm := splitDateTime(*t)
	return d, tm
}

func isoTime(t time.Time) string {
	return t.In(location).Format(time.RFC3339)
}

func isoOptional(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return isoTime(*t)
}

// dayBounds returns the UTC instants bounding the local calendar day of t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// groupCode returns prefix plus 10 upper-case hex digits.
func groupCode(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + strings.ToUpper(hex[:10])
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func nullDecimal(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}
