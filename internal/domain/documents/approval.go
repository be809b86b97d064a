package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approval is one required signature slot on a document.
type Approval struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_approval_doc_order,priority:1;column:document_id" json:"document_id"`
	Level      int            `gorm:"not null;index:idx_approval_doc_order,priority:2;column:level" json:"level"`
	ApproverID uuid.UUID      `gorm:"type:uuid;not null;index;column:approver_id" json:"approver_id"`
	Status     ApprovalStatus `gorm:"not null;column:status" json:"status"`

	SignatureImage *string    `gorm:"type:text;column:signature_image" json:"signature_image,omitempty"`
	SignedAt       *time.Time `gorm:"column:signed_at" json:"signed_at,omitempty"`
	ConfirmedAt    *time.Time `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	ApprovedAt     *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectedAt     *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`

	RevisionCycle int  `gorm:"not null;default:0;column:revision_cycle" json:"revision_cycle"`
	IsDeleted     bool `gorm:"not null;default:false;index;column:is_deleted" json:"is_deleted"`

	CreatedAt time.Time `gorm:"not null;index:idx_approval_doc_order,priority:3;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (Approval) TableName() string { return "document_approval" }

func (a *Approval) Signed() bool {
	return a != nil && a.SignedAt != nil
}

// ActiveApprovals is the one filter every approval read goes through.
// Soft-deleted approvals never take part in ordering or aggregation.
func ActiveApprovals(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// ResetApprovalFields is the patch applied to every active approval when a
// revision rolls the chain back.
func ResetApprovalFields(cycle int) map[string]interface{} {
	return map[string]interface{}{
		"signature_image": nil,
		"signed_at":       nil,
		"status":          string(ApprovalPending),
		"confirmed_at":    nil,
		"approved_at":     nil,
		"rejected_at":     nil,
		"revision_cycle":  cycle,
	}
}
