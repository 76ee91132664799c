package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a customer of the service station
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"not null" json:"full_name"`
	Phone     string         `gorm:"not null" json:"phone"`
	Email     *string        `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// Car represents a client's vehicle
type Car struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ClientID     uint           `gorm:"not null;index" json:"client_id"`
	Client       Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Make         string         `gorm:"not null" json:"make"`
	Model        string         `gorm:"not null" json:"model"`
	Year         int            `json:"year"`
	VIN          string         `gorm:"column:vin;uniqueIndex" json:"vin"`
	LicensePlate string         `json:"license_plate"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Car model
func (Car) TableName() string {
	return "cars"
}
