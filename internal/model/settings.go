package model

import (
	"time"

	"gorm.io/datatypes"
)

// SettingsOptions holds per-tenant switches for the mobile app
type SettingsOptions struct {
	ID                  uint           `json:"-" gorm:"primaryKey"`
	ClientID            string         `json:"client_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	OrderRateEditable   bool           `json:"order_rate_editable" gorm:"default:false"`
	DefaultPriceCode    *string        `json:"default_price_code" gorm:"type:varchar(50)"`
	ProtectedPriceUsers datatypes.JSON `json:"protected_price_users"`
	ReadPriceCategory   bool           `json:"read_price_category" gorm:"default:false"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (SettingsOptions) TableName() string { return "settings_options" }

// AllModels lists every table owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&AccMaster{},
		&AccUser{},
		&AccPriceCode{},
		&AccProduct{},
		&AccProductBatch{},
		&AccProductPhoto{},
		&Collection{},
		&ItemOrder{},
		&Sale{},
		&SalesReturn{},
		&ShopLocation{},
		&PunchIn{},
		&UserArea{},
		&SettingsOptions{},
	}
}
