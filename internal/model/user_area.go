package model

// UserArea assigns an area code to a user of a tenant
type UserArea struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:uniq_user_area"`
	ClientID string `json:"client_id" gorm:"type:varchar(64);not null;index;uniqueIndex:uniq_user_area"`
	AreaCode string `json:"area_code" gorm:"type:varchar(64);not null;uniqueIndex:uniq_user_area"`
}

func (UserArea) TableName() string { return "user_areas" }
