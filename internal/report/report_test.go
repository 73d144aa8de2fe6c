package report_test

import (
	"context"
	"testing"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/dbtest"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	r, err := report.ParseDateRange("2026-01-01", "", loc)
	require.NoError(t, err)
	require.Nil(t, r, "a single bound does not filter")

	r, err = report.ParseDateRange("2026-01-01", "2026-01-31", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 12, 31, 18, 30, 0, 0, time.UTC), r.From)
	require.Equal(t, time.Date(2026, 1, 31, 18, 30, 0, 0, time.UTC), r.To)

	_, err = report.ParseDateRange("01/01/2026", "2026-01-31", loc)
	require.Equal(t, apperr.InvalidFormat, apperr.KindOf(err))
}

func TestScopeBindsEveryValue(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	sql, args, err := report.PunchIns(report.Filter{
		Principal: auth.Principal{TenantID: "T1'; DROP TABLE punchin; --", SubjectID: "alice"},
		Range:     &report.DateRange{From: from, To: to},
	}).ToSql()
	require.NoError(t, err)
	require.NotContains(t, sql, "DROP TABLE")
	require.Contains(t, sql, "p.client_id = ?")
	require.Contains(t, sql, "p.created_by = ?")
	require.Equal(t, []interface{}{"T1'; DROP TABLE punchin; --", "alice", from, to}, args)

	sql, args, err = report.ShopLocations(report.Filter{
		Principal: auth.Principal{TenantID: "T1", SubjectID: "boss", Role: "Admin"},
	}).ToSql()
	require.NoError(t, err)
	require.NotContains(t, sql, "created_by = ?", "admins see every subject")
	require.Equal(t, []interface{}{"T1"}, args)
}

func TestShopLocations(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&model.AccMaster{Code: "F1", ClientID: "T1", Name: "Kerala Traders", Place: "Kochi"}).Error)

	day := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	rows := []model.ShopLocation{
		{FirmCode: "F1", ClientID: "T1", Latitude: decimal.NewFromInt(10), Longitude: decimal.NewFromInt(76), CreatedBy: "alice", CreatedAt: day},
		{FirmCode: "GONE", ClientID: "T1", Latitude: decimal.NewFromInt(11), Longitude: decimal.NewFromInt(77), CreatedBy: "bob", CreatedAt: day.Add(time.Hour)},
		{FirmCode: "F1", ClientID: "T2", Latitude: decimal.NewFromInt(12), Longitude: decimal.NewFromInt(78), CreatedBy: "alice", CreatedAt: day},
	}
	for i := range rows {
		rows[i].Status = model.VerificationPending
	}
	require.NoError(t, db.Create(&rows).Error)

	var out []report.ShopLocationRow
	q := report.ShopLocations(report.Filter{Principal: auth.Principal{TenantID: "T1", Role: "admin"}})
	require.NoError(t, report.Run(context.Background(), db, q, &out))
	require.Len(t, out, 2)

	require.Equal(t, "Unknown Store", out[0].FirmName, "newest first, missing firm falls back")
	require.Equal(t, "No address", out[0].FirmPlace)
	require.Nil(t, out[0].FirmCode)

	require.Equal(t, "Kerala Traders", out[1].FirmName)
	require.Equal(t, "Kochi", out[1].FirmPlace)

	out = nil
	q = report.ShopLocations(report.Filter{Principal: auth.Principal{TenantID: "T1", SubjectID: "alice"}})
	require.NoError(t, report.Run(context.Background(), db, q, &out))
	require.Len(t, out, 1)
	require.Equal(t, "alice", *out[0].CreatedBy)
}
