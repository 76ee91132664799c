package models

import "time"

// AuditLog is an append-only record of who did what. ActorID is nullable for
// events that happen outside an authenticated session (failed logins).
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     *uint     `gorm:"index" json:"actor_id"`
	EventType   string    `gorm:"not null;index" json:"event_type"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// SystemSetting is a single key/value configuration row editable by admins
type SystemSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SystemSetting model
func (SystemSetting) TableName() string {
	return "system_settings"
}
