package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the order lifecycle status. The string values are stable wire
// names consumed by the frontend.
type OrderStatus string

const (
	StatusDiagnostics    OrderStatus = "Diagnostics"
	StatusPartsSelection OrderStatus = "Parts_Selection"
	StatusApproval       OrderStatus = "Approval"
	StatusInWork         OrderStatus = "In_Work"
	StatusReady          OrderStatus = "Ready"
	StatusClosed         OrderStatus = "Closed"
	StatusCancelled      OrderStatus = "Cancelled"
)

// orderStatusSequence is the forward path an order moves along. Cancelled sits
// outside the sequence and is reachable from any non-terminal status.
var orderStatusSequence = map[OrderStatus]OrderStatus{
	StatusDiagnostics:    StatusPartsSelection,
	StatusPartsSelection: StatusApproval,
	StatusApproval:       StatusInWork,
	StatusInWork:         StatusReady,
	StatusReady:          StatusClosed,
}

// ParseOrderStatus validates a status string coming over the wire
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusDiagnostics, StatusPartsSelection, StatusApproval,
		StatusInWork, StatusReady, StatusClosed, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s OrderStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// CanTransitionTo reports whether target is reachable from s. Forward-only,
// one step at a time; Cancelled is reachable from any non-terminal status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return orderStatusSequence[s] == target
}

// Order represents one repair engagement for a client's car
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ClientID       uint            `gorm:"not null;index" json:"client_id"`
	Client         Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CarID          uint            `gorm:"not null;index" json:"car_id"`
	Car            Car             `gorm:"foreignKey:CarID" json:"car,omitempty"`
	MasterID       *uint           `gorm:"index" json:"master_id"`
	Master         *User           `gorm:"foreignKey:MasterID" json:"master,omitempty"`
	WorkerID       *uint           `gorm:"index" json:"worker_id"` // main worker
	Worker         *User           `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Status         OrderStatus     `gorm:"not null;default:'Diagnostics'" json:"status"`
	Complaint      *string         `json:"complaint"`
	CurrentMileage *int            `json:"current_mileage"`
	Prepayment     decimal.Decimal `gorm:"type:decimal(10,2)" json:"prepayment"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_amount"`
	CancelReason   *string         `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	CompletedAt    *time.Time      `json:"completed_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
