package repository

import (
	"fmt"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FirmLocation is a firm with the coordinates of its most recent shop location
type FirmLocation struct {
	Code      string
	Name      string
	Area      string
	Latitude  decimal.NullDecimal
	Longitude decimal.NullDecimal
}

const latestShopColumn = `(SELECT s.%[1]s FROM shop_location s
	WHERE s.firm_code = acc_master.code AND s.client_id = acc_master.client_id
	ORDER BY s.created_at DESC, s.id DESC LIMIT 1) AS %[1]s`

// FindFirmByCode loads a firm of the tenant by its account code.
func FindFirmByCode(db *gorm.DB, tenantID, code string) (*model.AccMaster, error) {
	var firm model.AccMaster
	if err := db.Scopes(TenantScope(tenantID)).Where("code = ?", code).First(&firm).Error; err != nil {
		return nil, apperr.FromDB(err, "Invalid firm code for this client")
	}
	return &firm, nil
}

// FindFirmByName loads the first firm of the tenant with the given name.
func FindFirmByName(db *gorm.DB, tenantID, name string) (*model.AccMaster, error) {
	var firm model.AccMaster
	if err := db.Scopes(TenantScope(tenantID)).Where("name = ?", name).Order("code").First(&firm).Error; err != nil {
		return nil, apperr.FromDB(err, "Invalid firm for this client")
	}
	return &firm, nil
}

// FirmsWithLocation lists the firms visible to the principal. Admins see every
// firm of the tenant; other roles only firms matching their assigned areas.
func FirmsWithLocation(db *gorm.DB, p auth.Principal) ([]FirmLocation, error) {
	q := db.Model(&model.AccMaster{}).Scopes(TenantScope(p.TenantID))

	if !p.IsAdmin() {
		areas, err := UserAreaCodes(db, p.TenantID, p.SubjectID)
		if err != nil {
			return nil, err
		}
		q = q.Scopes(AreaScope(areas))
	}

	rows := []FirmLocation{}
	err := q.Select("acc_master.code, acc_master.name, acc_master.area, " +
		fmt.Sprintf(latestShopColumn, "latitude") + ", " + fmt.Sprintf(latestShopColumn, "longitude")).
		Order("acc_master.name").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return rows, nil
}

// DistinctAreas returns the non-empty area names of the tenant's firms.
func DistinctAreas(db *gorm.DB, tenantID string) ([]string, error) {
	areas := []string{}
	err := db.Model(&model.AccMaster{}).
		Scopes(TenantScope(tenantID)).
		Where("area IS NOT NULL AND area <> ''").
		Distinct().
		Order("area").
		Pluck("area", &areas).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return areas, nil
}
