package repository

import (
	"fieldsales-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockSubject serializes transactions acting for one subject of a tenant until tx ends.
// On postgres this is a transaction-level advisory lock, so it holds even when the
// subject has no acc_users row. Other dialects lock the user row if there is one.
func LockSubject(tx *gorm.DB, tenantID, subjectID string) error {
	if tx.Dialector.Name() == "postgres" {
		return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", SubjectLockKey(tenantID, subjectID)).Error
	}

	var users []model.AccUser
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", subjectID).
		Find(&users).Error
}

// SubjectLockKey names the advisory lock of a subject.
func SubjectLockKey(tenantID, subjectID string) string {
	return "punchin:" + tenantID + ":" + subjectID
}
