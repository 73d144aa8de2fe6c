package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine holds the columns shared by every line of an item order, sale or sales return.
// One request produces several lines sharing a group code.
type OrderLine struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	CustomerName string          `json:"customer_name" gorm:"type:varchar(200)"`
	CustomerCode string          `json:"customer_code" gorm:"type:varchar(100)"`
	Area         string          `json:"area" gorm:"type:varchar(200)"`
	ProductName  string          `json:"product_name" gorm:"type:varchar(200);not null"`
	ItemCode     string          `json:"item_code" gorm:"type:varchar(100)"`
	Barcode      string          `json:"barcode" gorm:"type:varchar(100)"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:numeric(10,2);not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	ClientID     string          `json:"-" gorm:"type:varchar(100);not null;index"`
	Username     string          `json:"username" gorm:"type:varchar(100)"`
	DeviceID     string          `json:"device_id" gorm:"type:varchar(100)"`
	CreatedAt    time.Time       `json:"-"`
	StatusAudit
}

// ItemOrder is one line of a customer order taken in the field
type ItemOrder struct {
	OrderID     string  `json:"order_id" gorm:"type:varchar(50);not null;index"`
	PaymentType string  `json:"payment_type" gorm:"type:varchar(50)"`
	Remark      *string `json:"remark" gorm:"type:text"`
	OrderLine
}

func (ItemOrder) TableName() string { return "item_orders" }

// Sale is one line of a completed sale
type Sale struct {
	SalesID     string  `json:"sales_id" gorm:"type:varchar(50);not null;index"`
	PaymentType string  `json:"payment_type" gorm:"type:varchar(50)"`
	Remark      *string `json:"remark" gorm:"type:text"`
	OrderLine
}

func (Sale) TableName() string { return "sales" }

// SalesReturn is one line of goods returned by a customer
type SalesReturn struct {
	OrderID       string  `json:"order_id" gorm:"type:varchar(50);not null;index"`
	ProductRemark *string `json:"product_remark" gorm:"type:text"`
	OrderLine
}

func (SalesReturn) TableName() string { return "sales_return" }
