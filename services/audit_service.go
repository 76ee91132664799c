package services

import (
	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/logging"
	"github.com/d-muravev/service-station-api/models"
)

// AuditInterface is the append-only audit log consumed by controllers.
// Record never returns an error to the caller: an audit outage must not block
// a business operation.
type AuditInterface interface {
	Record(actorID *uint, eventType, description string)
}

// AuditService persists audit events to the audit_logs table
type AuditService struct{}

var auditServiceInstance AuditInterface

// InitAuditService initializes the database-backed audit service
func InitAuditService() AuditInterface {
	auditServiceInstance = &AuditService{}
	return auditServiceInstance
}

// GetAuditService returns the initialized audit service instance
func GetAuditService() AuditInterface {
	return auditServiceInstance
}

// SetAuditService sets the audit service instance (primarily for testing)
func SetAuditService(service AuditInterface) {
	auditServiceInstance = service
}

// Record appends an audit event. Failures are logged and swallowed.
func (s *AuditService) Record(actorID *uint, eventType, description string) {
	entry := models.AuditLog{
		ActorID:     actorID,
		EventType:   eventType,
		Description: description,
	}

	if err := config.GetDB().Create(&entry).Error; err != nil {
		logging.GetSugaredLogger().Errorw("failed to record audit event",
			"event_type", eventType,
			"error", err,
		)
	}
}
