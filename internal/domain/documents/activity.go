package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity actions recorded after each committed transition.
const (
	ActivitySubmitted     = "document.submitted"
	ActivityRouted        = "document.routed"
	ActivitySigned        = "approval.signed"
	ActivityRevision      = "document.revision_requested"
	ActivityAdminApproved = "document.admin_approved"
	ActivityAdminRejected = "document.admin_rejected"
	ActivityFinalized     = "document.finalized"
	ActivityActivated     = "document.activated"
	ActivityObsoleted     = "document.obsoleted"
)

type ActivityLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index;column:document_id" json:"document_id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null;column:actor_id" json:"actor_id"`
	Action     string         `gorm:"not null;index;column:action" json:"action"`
	FromStatus string         `gorm:"column:from_status" json:"from_status,omitempty"`
	ToStatus   string         `gorm:"column:to_status" json:"to_status,omitempty"`
	Details    datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index;column:created_at" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_log" }
