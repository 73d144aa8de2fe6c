package model

import "time"

// Order lifecycle values shared by collections, item orders, sales and sales returns.
const (
	StatusUploaded  = "uploaded to server"
	StatusCompleted = "completed"
)

// Verification values used by shop locations and punch-ins.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// StatusAudit is embedded by records that stamp who completed them and when.
// Both audit fields stay nil until the first transition into the terminal status.
type StatusAudit struct {
	Status          string     `json:"status" gorm:"type:varchar(30);not null;default:'uploaded to server';index"`
	StatusChangedAt *time.Time `json:"-"`
	StatusChangedBy *string    `json:"status_changed_by" gorm:"type:varchar(100)"`
}

func (a *StatusAudit) GetStatus() string { return a.Status }

func (a *StatusAudit) SetStatus(status string) { a.Status = status }

// Stamp records the actor and time of a terminal transition.
func (a *StatusAudit) Stamp(by string, at time.Time) {
	a.StatusChangedAt = &at
	a.StatusChangedBy = &by
}

// Verification is embedded by records approved through the pending/verified/rejected workflow.
type Verification struct {
	Status string `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
}

func (v *Verification) GetStatus() string { return v.Status }

func (v *Verification) SetStatus(status string) { v.Status = status }
