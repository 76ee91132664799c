package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefectNode is a vehicle subsystem grouping defect types (e.g. "Engine")
type DefectNode struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the DefectNode model
func (DefectNode) TableName() string {
	return "defect_nodes"
}

// DefectType is a specific fault under a node, optionally linked to catalog
// services via the defect_type_services join table
type DefectType struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	NodeID      uint       `gorm:"not null;index" json:"node_id"`
	Node        DefectNode `gorm:"foreignKey:NodeID" json:"node,omitempty"`
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for the DefectType model
func (DefectType) TableName() string {
	return "defect_types"
}

// Service is a priced, named labor operation template from the services catalog
type Service struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	BasePrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"base_price"`
	NormHours float64         `gorm:"not null;default:1" json:"norm_hours"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// DefectTypeService links defect types to the services that fix them
type DefectTypeService struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	DefectTypeID uint `gorm:"not null;index:idx_defect_type_service,unique" json:"defect_type_id"`
	ServiceID    uint `gorm:"not null;index:idx_defect_type_service,unique" json:"service_id"`
}

// TableName specifies the table name for the DefectTypeService model
func (DefectTypeService) TableName() string {
	return "defect_type_services"
}
