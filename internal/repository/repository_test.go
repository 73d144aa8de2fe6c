package repository_test

import (
	"context"
	"testing"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/dbtest"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]model.AccUser{
		{ID: "alice", ClientID: "T1", Role: "salesman"},
		{ID: "boss", ClientID: "T1", Role: "Admin"},
		{ID: "alice", ClientID: "T2", Role: "salesman"},
	}).Error)
}

func TestReplaceUserAreas(t *testing.T) {
	db := dbtest.Open(t)
	seedUsers(t, db)
	ctx := context.Background()

	res, err := repository.ReplaceUserAreas(ctx, db, "T1", "alice", []string{" A ", "B", "", "A"})
	require.NoError(t, err)
	require.Equal(t, int64(0), res.Removed)
	require.Equal(t, 2, res.Added)
	require.Equal(t, []string{"A", "B"}, res.Current)

	res, err = repository.ReplaceUserAreas(ctx, db, "T1", "alice", []string{"B", "C"})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Removed)
	require.Equal(t, 2, res.Added)
	require.Equal(t, []string{"B", "C"}, res.Current)

	// The other tenant's user with the same id is untouched.
	other, err := repository.UserAreaCodes(db, "T2", "alice")
	require.NoError(t, err)
	require.Empty(t, other)

	_, err = repository.ReplaceUserAreas(ctx, db, "T2", "boss", []string{"A"})
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
	require.Equal(t, "User not found", apperr.Message(err))
}

func TestReplaceUserAreas_EmptyListClearsAssignment(t *testing.T) {
	db := dbtest.Open(t)
	seedUsers(t, db)
	ctx := context.Background()

	_, err := repository.ReplaceUserAreas(ctx, db, "T1", "alice", []string{"A"})
	require.NoError(t, err)

	res, err := repository.ReplaceUserAreas(ctx, db, "T1", "alice", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Removed)
	require.Equal(t, 0, res.Added)
	require.Empty(t, res.Current)
}

func TestNormalizeAreaCodes(t *testing.T) {
	require.Equal(t, []string{"North", "south"}, repository.NormalizeAreaCodes([]string{"North", " ", "south", "North "}))
	require.Empty(t, repository.NormalizeAreaCodes(nil))
}

func seedFirms(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]model.AccMaster{
		{Code: "F1", ClientID: "T1", Name: "Kerala Traders", Area: "North Zone"},
		{Code: "F2", ClientID: "T1", Name: "Metro Stores", Area: "South"},
		{Code: "F3", ClientID: "T1", Name: "100% Pure", Area: ""},
		{Code: "F1", ClientID: "T2", Name: "Other Tenant Firm", Area: "North Zone"},
	}).Error)
}

func TestFirmsWithLocation(t *testing.T) {
	db := dbtest.Open(t)
	seedUsers(t, db)
	seedFirms(t, db)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, db.Create(&[]model.ShopLocation{
		{FirmCode: "F1", ClientID: "T1", Latitude: decimal.RequireFromString("10.5"), Longitude: decimal.RequireFromString("76.1"), CreatedAt: base},
		{FirmCode: "F1", ClientID: "T1", Latitude: decimal.RequireFromString("11.5"), Longitude: decimal.RequireFromString("77.1"), CreatedAt: base.Add(time.Hour)},
	}).Error)

	t.Run("admin sees every firm of the tenant", func(t *testing.T) {
		firms, err := repository.FirmsWithLocation(db, auth.Principal{TenantID: "T1", SubjectID: "boss", Role: "admin"})
		require.NoError(t, err)
		require.Len(t, firms, 3)

		byCode := map[string]repository.FirmLocation{}
		for _, f := range firms {
			byCode[f.Code] = f
		}
		require.True(t, byCode["F1"].Latitude.Valid)
		require.Equal(t, "11.5", byCode["F1"].Latitude.Decimal.String(), "latest location wins")
		require.False(t, byCode["F2"].Latitude.Valid)
	})

	t.Run("non-admin without areas sees nothing", func(t *testing.T) {
		firms, err := repository.FirmsWithLocation(db, auth.Principal{TenantID: "T1", SubjectID: "alice"})
		require.NoError(t, err)
		require.Empty(t, firms)
	})

	t.Run("non-admin sees firms matching assigned areas", func(t *testing.T) {
		_, err := repository.ReplaceUserAreas(context.Background(), db, "T1", "alice", []string{"north"})
		require.NoError(t, err)

		firms, err := repository.FirmsWithLocation(db, auth.Principal{TenantID: "T1", SubjectID: "alice"})
		require.NoError(t, err)
		require.Len(t, firms, 1)
		require.Equal(t, "F1", firms[0].Code)
		require.Equal(t, "Kerala Traders", firms[0].Name)
	})

	t.Run("like wildcards in area codes are literal", func(t *testing.T) {
		_, err := repository.ReplaceUserAreas(context.Background(), db, "T1", "alice", []string{"%"})
		require.NoError(t, err)

		firms, err := repository.FirmsWithLocation(db, auth.Principal{TenantID: "T1", SubjectID: "alice"})
		require.NoError(t, err)
		require.Len(t, firms, 1)
		require.Equal(t, "F3", firms[0].Code)
	})
}

func TestFindFirm(t *testing.T) {
	db := dbtest.Open(t)
	seedFirms(t, db)

	firm, err := repository.FindFirmByCode(db, "T2", "F1")
	require.NoError(t, err)
	require.Equal(t, "Other Tenant Firm", firm.Name)

	_, err = repository.FindFirmByCode(db, "T2", "F2")
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
	require.Equal(t, "Invalid firm code for this client", apperr.Message(err))

	_, err = repository.FindFirmByName(db, "T2", "Metro Stores")
	require.Equal(t, "Invalid firm for this client", apperr.Message(err))
}

func TestDistinctAreas(t *testing.T) {
	db := dbtest.Open(t)
	seedFirms(t, db)

	areas, err := repository.DistinctAreas(db, "T1")
	require.NoError(t, err)
	require.Equal(t, []string{"North Zone", "South"}, areas)
}

func TestTenantScope_EmptyTenantMatchesNothing(t *testing.T) {
	db := dbtest.Open(t)
	seedFirms(t, db)

	var n int64
	require.NoError(t, db.Model(&model.AccMaster{}).Scopes(repository.TenantScope("")).Count(&n).Error)
	require.Zero(t, n)
}

func TestLockSubject(t *testing.T) {
	db := dbtest.Open(t)

	// A subject without a user row can still take the lock.
	err := db.Transaction(func(tx *gorm.DB) error {
		return repository.LockSubject(tx, "T1", "ghost")
	})
	require.NoError(t, err)

	require.Equal(t, "punchin:T1:alice", repository.SubjectLockKey("T1", "alice"))
	require.NotEqual(t, repository.SubjectLockKey("T1", "alice"), repository.SubjectLockKey("T2", "alice"))
}
