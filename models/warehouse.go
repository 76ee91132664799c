package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WarehouseItem is a part held in stock at the station
type WarehouseItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Brand     string          `json:"brand"`
	Article   string          `gorm:"index" json:"article"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity  int             `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the WarehouseItem model
func (WarehouseItem) TableName() string {
	return "warehouse_items"
}
