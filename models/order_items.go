package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Work statuses for an order work line item
const (
	WorkStatusPending    = "Pending"
	WorkStatusInProgress = "In_Progress"
	WorkStatusDone       = "Done"
)

// workStatusNext maps each work status to its only allowed successor
var workStatusNext = map[string]string{
	WorkStatusPending:    WorkStatusInProgress,
	WorkStatusInProgress: WorkStatusDone,
}

// WorkStatusCanTransitionTo reports whether a work may move from one status
// to another. Works advance Pending -> In_Progress -> Done one step at a
// time and never move backward; Done is terminal.
func WorkStatusCanTransitionTo(from, to string) bool {
	return workStatusNext[from] == to
}

// OrderDefect is a diagnosed fault recorded against an order. Rows are
// append-only; the confirmed flag flips as a side effect of confirming the
// linked work, never by direct edits.
type OrderDefect struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	DiagnosticianID uint      `gorm:"not null" json:"diagnostician_id"`
	Description     string    `gorm:"not null" json:"description"` // "<node>: <type>" snapshot
	Comment         *string   `json:"comment"`
	IsConfirmed     bool      `gorm:"not null;default:false" json:"is_confirmed"`
	DefectTypeID    *uint     `gorm:"index" json:"defect_type_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderDefect model
func (OrderDefect) TableName() string {
	return "order_defects"
}

// OrderWork is a billable labor line item. Name, price and norm hours are
// snapshots taken from the service catalog at creation time; later catalog
// edits do not touch existing rows.
type OrderWork struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OrderID             uint            `gorm:"not null;index" json:"order_id"`
	ServiceID           *uint           `gorm:"index" json:"service_id"`
	ServiceNameSnapshot string          `gorm:"not null" json:"service_name_snapshot"`
	Price               decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	NormHours           float64         `gorm:"not null;default:1" json:"norm_hours"`
	WorkerID            *uint           `gorm:"index" json:"worker_id"`
	Status              string          `gorm:"not null;default:'Pending'" json:"status"`
	IsConfirmed         bool            `gorm:"not null;default:false" json:"is_confirmed"`
	DefectID            *uint           `gorm:"index" json:"defect_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderWork model
func (OrderWork) TableName() string {
	return "order_works"
}

// OrderPart is a physical part line item, snapshotting the warehouse item it
// came from (if any).
type OrderPart struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"not null;index" json:"order_id"`
	WarehouseItemID *uint           `gorm:"index" json:"warehouse_item_id"`
	Name            string          `gorm:"not null" json:"name"`
	Brand           string          `json:"brand"`
	PricePerUnit    decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_per_unit"`
	Quantity        int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	IsConfirmed     bool            `gorm:"not null;default:false" json:"is_confirmed"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderPart model
func (OrderPart) TableName() string {
	return "order_parts"
}

// OrderPhoto is an intake photo stored in S3 and attached to an order
type OrderPhoto struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	S3Key        string    `gorm:"not null" json:"s3_key"`
	PhotoURL     string    `gorm:"-" json:"photo_url,omitempty"` // computed, presigned
	UploadedByID uint      `gorm:"not null" json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderPhoto model
func (OrderPhoto) TableName() string {
	return "order_photos"
}
