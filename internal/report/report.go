// Package report builds the denormalized dashboard queries that join location
// and attendance rows to the account master.
package report

import (
	"context"
	"strings"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/prometheus"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dateLayout   = "2006-01-02"
	unknownStore = "Unknown Store"
	noAddress    = "No address"
)

// DateRange is an inclusive start day and an inclusive end day, stored as the
// half-open instant interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds in loc. The range only applies when
// both bounds are given; otherwise nil is returned.
func ParseDateRange(start, end string, loc *time.Location) (*DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil, nil
	}
	from, err := time.ParseInLocation(dateLayout, start, loc)
	if err != nil {
		return nil, apperr.New(apperr.InvalidFormat, "Invalid start_date, expected YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(dateLayout, end, loc)
	if err != nil {
		return nil, apperr.New(apperr.InvalidFormat, "Invalid end_date, expected YYYY-MM-DD")
	}
	return &DateRange{From: from.UTC(), To: to.AddDate(0, 0, 1).UTC()}, nil
}

// Filter selects the rows of a report.
type Filter struct {
	Principal auth.Principal
	Range     *DateRange
}

// ShopLocationRow is one shop location joined to its firm.
type ShopLocationRow struct {
	ID        uint
	Latitude  decimal.NullDecimal
	Longitude decimal.NullDecimal
	Status    *string
	CreatedBy *string
	CreatedAt time.Time
	ClientID  string
	FirmCode  *string
	FirmName  string
	FirmPlace string
}

// PunchInRow is one punch-in joined to its firm.
type PunchInRow struct {
	ID           uint
	Latitude     decimal.NullDecimal
	Longitude    decimal.NullDecimal
	PunchinTime  time.Time
	PunchoutTime *time.Time
	Photo        *string
	Address      *string
	Notes        *string
	Status       *string
	CreatedBy    *string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
	ClientID     string
	FirmCode     *string
	FirmName     string
	FirmPlace    string
}

// ShopLocations builds the shop location report for the principal.
func ShopLocations(f Filter) sq.SelectBuilder {
	q := sq.Select(
		"s.id", "s.latitude", "s.longitude", "s.status", "s.created_by", "s.created_at", "s.client_id",
		"a.code AS firm_code",
		firmColumns(),
	).
		From("shop_location s").
		LeftJoin("acc_master a ON s.firm_code = a.code AND s.client_id = a.client_id").
		OrderBy("s.created_at DESC", "s.id DESC")
	return scope(q, "s", f)
}

// PunchIns builds the punch-in report for the principal.
func PunchIns(f Filter) sq.SelectBuilder {
	q := sq.Select(
		"p.id", "p.latitude", "p.longitude", "p.punchin_time", "p.punchout_time", "p.photo",
		"p.address", "p.notes", "p.status", "p.created_by", "p.created_at", "p.updated_at", "p.client_id",
		"a.code AS firm_code",
		firmColumns(),
	).
		From("punchin p").
		LeftJoin("acc_master a ON p.firm_code = a.code AND p.client_id = a.client_id").
		OrderBy("p.punchin_time DESC", "p.id DESC")
	return scope(q, "p", f)
}

func firmColumns() string {
	return "COALESCE(a.name, '" + unknownStore + "') AS firm_name, COALESCE(a.place, '" + noAddress + "') AS firm_place"
}

// scope applies the tenant, subject and date filters. Every value is bound.
func scope(q sq.SelectBuilder, alias string, f Filter) sq.SelectBuilder {
	q = q.Where(sq.Eq{alias + ".client_id": f.Principal.TenantID})
	if !f.Principal.IsAdmin() {
		q = q.Where(sq.Eq{alias + ".created_by": f.Principal.SubjectID})
	}
	if f.Range != nil {
		q = q.Where(sq.GtOrEq{alias + ".created_at": f.Range.From}).
			Where(sq.Lt{alias + ".created_at": f.Range.To})
	}
	return q
}

// Run executes a report query and scans the rows into dest.
func Run(ctx context.Context, db *gorm.DB, q sq.SelectBuilder, dest interface{}) error {
	defer prometheus.TrackDBOperation("report")(time.Now())

	query, args, err := q.ToSql()
	if err != nil {
		return apperr.Wrap(err, apperr.Unexpected, "Failed to build report")
	}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(dest).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	return nil
}
