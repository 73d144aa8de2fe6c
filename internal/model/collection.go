package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection is a payment collected from a customer in the field
type Collection struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Code      string          `json:"code" gorm:"type:varchar(50);not null"`
	Name      string          `json:"name" gorm:"type:varchar(200);not null"`
	Place     *string         `json:"place" gorm:"type:varchar(100)"`
	Phone     *string         `json:"phone" gorm:"type:varchar(20)"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Type      string          `json:"type" gorm:"type:varchar(50);not null"`
	ClientID  string          `json:"-" gorm:"type:varchar(100);not null;index"`
	ChequeNo  *string         `json:"cheque_no" gorm:"type:varchar(100)"`
	RefNo     *string         `json:"ref_no" gorm:"type:varchar(100)"`
	Remark    *string         `json:"remark" gorm:"type:text"`
	CreatedBy string          `json:"created_by" gorm:"type:varchar(100)"`
	CreatedAt time.Time       `json:"-"`
	StatusAudit
}

func (Collection) TableName() string { return "collection" }
