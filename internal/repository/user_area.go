package repository

import (
	"context"
	"strings"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AreaReplacement reports the outcome of replacing a user's areas.
type AreaReplacement struct {
	Removed int64
	Added   int
	Current []string
}

// FindUser loads a user of the tenant, failing with NotFound when absent.
func FindUser(db *gorm.DB, tenantID, userID string) (*model.AccUser, error) {
	var user model.AccUser
	err := db.Scopes(TenantScope(tenantID)).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, apperr.FromDB(err, "User not found")
	}
	return &user, nil
}

// UserAreaCodes returns the area codes assigned to a user, in insertion order.
func UserAreaCodes(db *gorm.DB, tenantID, userID string) ([]string, error) {
	codes := []string{}
	err := db.Model(&model.UserArea{}).
		Scopes(TenantScope(tenantID)).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("area_code", &codes).Error
	if err != nil {
		return nil, apperr.FromDB(err, "User areas not found")
	}
	return codes, nil
}

// ReplaceUserAreas swaps the full set of areas of a user in one transaction.
// The user row is locked first so concurrent replacements serialize.
func ReplaceUserAreas(ctx context.Context, db *gorm.DB, tenantID, userID string, codes []string) (*AreaReplacement, error) {
	clean := NormalizeAreaCodes(codes)
	result := &AreaReplacement{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.AccUser
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(TenantScope(tenantID)).
			Where("id = ?", userID).
			First(&user).Error
		if err != nil {
			return apperr.FromDB(err, "User not found")
		}

		del := tx.Scopes(TenantScope(tenantID)).
			Where("user_id = ?", userID).
			Delete(&model.UserArea{})
		if del.Error != nil {
			return apperr.FromDB(del.Error, "")
		}
		result.Removed = del.RowsAffected

		if len(clean) > 0 {
			rows := make([]model.UserArea, 0, len(clean))
			for _, code := range clean {
				rows = append(rows, model.UserArea{UserID: userID, ClientID: tenantID, AreaCode: code})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return apperr.FromDB(err, "")
			}
		}
		result.Added = len(clean)

		current, err := UserAreaCodes(tx, tenantID, userID)
		if err != nil {
			return err
		}
		result.Current = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NormalizeAreaCodes trims codes, drops empties and keeps the first of duplicates.
func NormalizeAreaCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
