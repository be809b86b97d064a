package documents

import (
	"time"

	"github.com/google/uuid"
)

// SignatureSnapshotVersion is bumped whenever the snapshot layout changes.
const SignatureSnapshotVersion = 1

// SignatureSnapshot captures every signature on a document immediately
// before a revision resets the approval chain.
type SignatureSnapshot struct {
	Version       int                 `json:"version"`
	TakenAt       time.Time           `json:"taken_at"`
	RevisionCycle int                 `json:"revision_cycle"`
	Creator       CreatorSignature    `json:"creator"`
	Approvals     []ApprovalSignature `json:"approvals"`
}

type CreatorSignature struct {
	UserID    uuid.UUID  `json:"user_id"`
	Signature *string    `json:"signature,omitempty"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
}

type ApprovalSignature struct {
	ApprovalID     uuid.UUID      `json:"approval_id"`
	Level          int            `json:"level"`
	ApproverID     uuid.UUID      `json:"approver_id"`
	ApproverName   string         `json:"approver_name"`
	SignatureImage *string        `json:"signature_image,omitempty"`
	SignedAt       *time.Time     `json:"signed_at,omitempty"`
	Status         ApprovalStatus `json:"status"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
}

// NewSignatureSnapshot builds a snapshot from the document and its active
// approvals. names maps approver ids to display names; missing entries stay blank.
func NewSignatureSnapshot(doc *Document, active []*Approval, names map[uuid.UUID]string, takenAt time.Time) SignatureSnapshot {
	snap := SignatureSnapshot{
		Version:   SignatureSnapshotVersion,
		TakenAt:   takenAt.UTC(),
		Approvals: make([]ApprovalSignature, 0, len(active)),
	}
	if doc != nil {
		snap.RevisionCycle = doc.RevisionCycle
		snap.Creator = CreatorSignature{
			UserID:    doc.CreatedByID,
			Signature: copyString(doc.PreparedBySignature),
			SignedAt:  copyTime(doc.PreparedBySignedAt),
		}
	}
	for _, a := range active {
		if a == nil || a.IsDeleted {
			continue
		}
		snap.Approvals = append(snap.Approvals, ApprovalSignature{
			ApprovalID:     a.ID,
			Level:          a.Level,
			ApproverID:     a.ApproverID,
			ApproverName:   names[a.ApproverID],
			SignatureImage: copyString(a.SignatureImage),
			SignedAt:       copyTime(a.SignedAt),
			Status:         a.Status,
			ConfirmedAt:    copyTime(a.ConfirmedAt),
		})
	}
	return snap
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
