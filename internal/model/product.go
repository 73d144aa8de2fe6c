package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductActive marks products that are offered for sale.
const ProductActive = "O"

// AccProduct represents the product master data
type AccProduct struct {
	Code     string `json:"code" gorm:"primaryKey;type:varchar(30)"`
	ClientID string `json:"client_id" gorm:"primaryKey;type:varchar(100)"`
	Name     string `json:"name" gorm:"type:varchar(200)"`
	Catagory string `json:"catagory" gorm:"column:catagory;type:varchar(30)"`
	TaxCode  string `json:"taxcode" gorm:"column:taxcode;type:varchar(10)"`
	Product  string `json:"product" gorm:"type:varchar(100)"`
	Brand    string `json:"brand" gorm:"type:varchar(100)"`
	Unit     string `json:"unit" gorm:"type:varchar(20)"`
	Defected string `json:"defected" gorm:"type:varchar(5)"`
	Text6    string `json:"text6" gorm:"column:text6;type:varchar(200)"`
	Settings string `json:"settings" gorm:"type:varchar(200)"`

	Batches []AccProductBatch `json:"batches" gorm:"-"`
	Photos  []AccProductPhoto `json:"photos" gorm:"-"`
}

func (AccProduct) TableName() string { return "acc_product" }

// AccProductBatch holds stock and prices of one batch of a product
type AccProductBatch struct {
	ID           uint                `json:"id" gorm:"primaryKey"`
	ProductCode  string              `json:"productcode" gorm:"column:productcode;type:varchar(30);index"`
	SalesPrice   decimal.NullDecimal `json:"salesprice" gorm:"column:salesprice;type:numeric(10,2)"`
	SecondPrice  decimal.NullDecimal `json:"secondprice" gorm:"column:secondprice;type:numeric(10,2)"`
	ThirdPrice   decimal.NullDecimal `json:"thirdprice" gorm:"column:thirdprice;type:numeric(10,2)"`
	FourthPrice  decimal.NullDecimal `json:"fourthprice" gorm:"column:fourthprice;type:numeric(10,2)"`
	NLC1         decimal.NullDecimal `json:"nlc1" gorm:"column:nlc1;type:numeric(10,2)"`
	Quantity     decimal.NullDecimal `json:"quantity" gorm:"type:numeric(10,2)"`
	Barcode      string              `json:"barcode" gorm:"type:varchar(100)"`
	BMRP         decimal.NullDecimal `json:"bmrp" gorm:"column:bmrp;type:numeric(10,2)"`
	Cost         decimal.NullDecimal `json:"cost" gorm:"type:numeric(10,2)"`
	ExpiryDate   *time.Time          `json:"expirydate" gorm:"column:expirydate"`
	Modified     *time.Time          `json:"modified"`
	ModifiedTime string              `json:"modifiedtime" gorm:"column:modifiedtime;type:varchar(20)"`
	Settings     string              `json:"settings" gorm:"type:varchar(200)"`
	ClientID     string              `json:"-" gorm:"type:varchar(100);index"`
}

func (AccProductBatch) TableName() string { return "acc_productbatch" }

// AccProductPhoto links a product to a stored image
type AccProductPhoto struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Code     string `json:"code" gorm:"type:varchar(30);index"`
	URL      string `json:"url" gorm:"column:url;type:varchar(500)"`
	ClientID string `json:"-" gorm:"type:varchar(100);index"`
}

func (AccProductPhoto) TableName() string { return "acc_productphoto" }
