package model

import (
	"github.com/shopspring/decimal"
)

// AccMaster is the tenant's account master (customers, suppliers, firms).
// Rows are synced from the accounting package and only read here.
type AccMaster struct {
	Code              string              `json:"code" gorm:"primaryKey;type:varchar(30)"`
	ClientID          string              `json:"client_id" gorm:"primaryKey;type:varchar(100)"`
	Name              string              `json:"name" gorm:"type:varchar(200)"`
	SuperCode         string              `json:"super_code" gorm:"type:varchar(5)"`
	OpeningBalance    decimal.NullDecimal `json:"opening_balance" gorm:"type:numeric(15,2)"`
	Debit             decimal.NullDecimal `json:"debit" gorm:"type:numeric(15,2)"`
	Credit            decimal.NullDecimal `json:"credit" gorm:"type:numeric(15,2)"`
	Place             string              `json:"place" gorm:"type:varchar(100)"`
	Phone             string              `json:"phone" gorm:"type:varchar(60)"`
	Phone2            string              `json:"phone2" gorm:"type:varchar(60)"`
	OpeningDepartment string              `json:"openingdepartment" gorm:"column:openingdepartment;type:varchar(100)"`
	Area              string              `json:"area" gorm:"type:varchar(200)"`
	Address           string              `json:"address" gorm:"type:varchar(200)"`
	City              string              `json:"city" gorm:"type:varchar(100)"`
	GSTIN             string              `json:"gstin" gorm:"column:gstin;type:varchar(30)"`
	RemarkColumnTitle string              `json:"remarkcolumntitle" gorm:"column:remarkcolumntitle;type:varchar(50)"`
}

func (AccMaster) TableName() string { return "acc_master" }

// Balance returns debit minus credit rounded to two places.
func (a AccMaster) Balance() decimal.Decimal {
	return a.Debit.Decimal.Sub(a.Credit.Decimal).Round(2)
}

// AccUser is a login of the tenant. Passwords are checked by the token issuer.
type AccUser struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ClientID    string `json:"client_id" gorm:"primaryKey;type:varchar(64)"`
	Password    string `json:"-" gorm:"column:pass;type:varchar(128)"`
	Role        string `json:"role" gorm:"type:varchar(32)"`
	AccountCode string `json:"accountcode" gorm:"column:accountcode;type:varchar(64)"`
}

func (AccUser) TableName() string { return "acc_users" }

// AccPriceCode names one of the price columns of a product batch.
type AccPriceCode struct {
	Code     string `json:"code" gorm:"primaryKey;type:varchar(2)"`
	ClientID string `json:"-" gorm:"primaryKey;type:varchar(100)"`
	Name     string `json:"name" gorm:"type:varchar(30)"`
}

func (AccPriceCode) TableName() string { return "acc_pricecode" }
