package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded by the services.
const (
	AuditActionEvaluationCreated = "evaluation.created"
	AuditActionActivityCreated   = "activity.created"
	AuditActionActivityUpdated   = "activity.updated"
	AuditActionActivityDeleted   = "activity.deleted"
	AuditActionProfileUpdated    = "profile.updated"
)

// AuditLog captures auditable events triggered by students and counselors.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actorId"`
	ActorRole  string            `gorm:"size:32;not null" json:"actorRole"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entityType"`
	EntityID   *uint             `json:"entityId"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"createdAt"`
}
