// Package repository holds the query scopes every tenant-owned read and write goes through.
package repository

import (
	"strings"

	"fieldsales-service/internal/auth"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantColumn is the column that partitions every business table.
const TenantColumn = "client_id"

// TenantScope narrows a query to rows of one tenant. An empty tenant matches nothing.
func TenantScope(tenantID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == "" {
			return db.Where("1 = 0")
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: TenantColumn},
			Value:  tenantID,
		})
	}
}

// Tenant returns a session of db scoped to the principal's tenant.
func Tenant(db *gorm.DB, p auth.Principal) *gorm.DB {
	return db.Scopes(TenantScope(p.TenantID))
}

// AreaScope narrows firm queries to the given area codes. Matching is a
// case-insensitive substring search on the firm name or area. No codes matches nothing.
func AreaScope(areas []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		var exprs []clause.Expression
		for _, a := range areas {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			pattern := "%" + escapeLike(a) + "%"
			exprs = append(exprs,
				clause.Expr{SQL: "LOWER(name) LIKE ? ESCAPE '\\'", Vars: []interface{}{pattern}},
				clause.Expr{SQL: "LOWER(area) LIKE ? ESCAPE '\\'", Vars: []interface{}{pattern}},
			)
		}
		if len(exprs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(clause.Or(exprs...))
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
