package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShopLocation is the last known position of a firm, one row per firm and tenant
type ShopLocation struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	FirmCode  string          `json:"firm_code" gorm:"type:varchar(30);not null;index:idx_shop_firm_client"`
	ClientID  string          `json:"client_id" gorm:"type:varchar(64);not null;index:idx_shop_firm_client"`
	Latitude  decimal.Decimal `json:"latitude" gorm:"type:numeric(9,6);not null"`
	Longitude decimal.Decimal `json:"longitude" gorm:"type:numeric(9,6);not null"`
	CreatedBy string          `json:"created_by" gorm:"type:varchar(64)"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	Verification
}

func (ShopLocation) TableName() string { return "shop_location" }

// PunchIn is one visit of a salesperson to a firm.
// PunchoutTime stays nil while the visit is open.
type PunchIn struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	FirmCode        string              `json:"firm_code" gorm:"type:varchar(30);not null;index:idx_punchin_firm_client"`
	ClientID        string              `json:"client_id" gorm:"type:varchar(64);not null;index:idx_punchin_firm_client;index:idx_punchin_client_user"`
	Latitude        decimal.NullDecimal `json:"latitude" gorm:"type:numeric(9,6)"`
	Longitude       decimal.NullDecimal `json:"longitude" gorm:"type:numeric(9,6)"`
	CurrentLocation string              `json:"current_location" gorm:"type:text;not null"`
	ShopLocation    string              `json:"shop_location" gorm:"type:text;not null"`
	PunchinStatus   string              `json:"punchin_status" gorm:"type:varchar(50);not null"`
	PunchinTime     time.Time           `json:"punchin_time" gorm:"not null;index"`
	PunchoutTime    *time.Time          `json:"punchout_time"`
	CreatedBy       string              `json:"created_by" gorm:"type:varchar(64);not null;index:idx_punchin_client_user"`
	Photo           string              `json:"photo" gorm:"type:varchar(500)"`
	Address         string              `json:"address" gorm:"type:text"`
	Notes           string              `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Verification
}

func (PunchIn) TableName() string { return "punchin" }

// WorkHours returns the visit length in hours, measured to now while the visit is open.
func (p PunchIn) WorkHours(now time.Time) float64 {
	end := now
	if p.PunchoutTime != nil {
		end = *p.PunchoutTime
	}
	return end.Sub(p.PunchinTime).Hours()
}
