package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RevisionRequest is the insert-only audit record of one chain reset.
type RevisionRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID    uuid.UUID  `gorm:"type:uuid;not null;index;column:document_id" json:"document_id"`
	RequestedByID uuid.UUID  `gorm:"type:uuid;not null;column:requested_by_id" json:"requested_by_id"`
	Reason        string     `gorm:"type:text;not null;column:reason" json:"reason"`
	ApprovalLevel int        `gorm:"not null;column:approval_level" json:"approval_level"`
	ApprovalID    *uuid.UUID `gorm:"type:uuid;column:approval_id" json:"approval_id,omitempty"`
	RevisionCycle int        `gorm:"not null;column:revision_cycle" json:"revision_cycle"`

	SignatureSnapshot datatypes.JSONType[SignatureSnapshot] `gorm:"column:signature_snapshot" json:"signature_snapshot"`

	CreatedAt time.Time `gorm:"not null;index;column:created_at" json:"created_at"`
}

func (RevisionRequest) TableName() string { return "revision_request" }

// NewRevisionRequest fills the requester columns from the typed requester.
func NewRevisionRequest(documentID uuid.UUID, requester Requester, reason string, cycle int, snap SignatureSnapshot, at time.Time) *RevisionRequest {
	rr := &RevisionRequest{
		ID:                uuid.New(),
		DocumentID:        documentID,
		Reason:            reason,
		RevisionCycle:     cycle,
		SignatureSnapshot: datatypes.NewJSONType(snap),
		CreatedAt:         at.UTC(),
	}
	if requester != nil {
		rr.RequestedByID = requester.ActorID()
		rr.ApprovalLevel = requester.ApprovalLevel()
		if ar, ok := requester.(ApproverRequester); ok {
			id := ar.ApprovalID
			rr.ApprovalID = &id
		}
	}
	return rr
}

// Requester rebuilds the typed requester from the stored columns.
func (r *RevisionRequest) Requester() Requester {
	if r == nil {
		return nil
	}
	if r.ApprovalID != nil && *r.ApprovalID != uuid.Nil {
		return ApproverRequester{UserID: r.RequestedByID, ApprovalID: *r.ApprovalID, Level: r.ApprovalLevel}
	}
	return AdminRequester{AdminID: r.RequestedByID}
}

func (r *RevisionRequest) Snapshot() SignatureSnapshot {
	return r.SignatureSnapshot.Data()
}
