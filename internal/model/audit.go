package model

import (
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityTicket       EntityType = "ticket"
	EntitySubscription EntityType = "subscription"
	EntityAdmin        EntityType = "admin"
	EntityPermission   EntityType = "permission"
)

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTicket, EntitySubscription, EntityAdmin, EntityPermission:
		return true
	}
	return false
}

// Audit action labels written by the directory and registry.
const (
	ActionCreateAdmin       = "Create Admin"
	ActionUpdateAdmin       = "Update Admin"
	ActionDeleteAdmin       = "Delete Admin"
	ActionUpdatePermissions = "Update Permissions"
	ActionImportPermissions = "Import Permissions"
	ActionAddPage           = "Add Page"
	ActionRemovePage        = "Remove Page"
)

// AuditLog is an immutable record of an administrative mutation. EntityID is
// not a foreign key: entries outlive the entities they describe.
type AuditLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	Timestamp   time.Time  `gorm:"column:occurred_at;not null;index" json:"timestamp"`
	PerformedBy string     `gorm:"type:varchar(255);not null" json:"performed_by"`
	Action      string     `gorm:"type:varchar(100);not null" json:"action"`
	Details     string     `gorm:"type:text" json:"details"`
	EntityType  EntityType `gorm:"type:varchar(32);not null;index" json:"entity_type"`
	EntityID    string     `gorm:"type:varchar(255);index" json:"entity_id"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
