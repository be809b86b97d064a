package documents

import "github.com/google/uuid"

// AdministrativeLevel is the approval level recorded for admin rejections.
const AdministrativeLevel = 0

// Requester identifies who asked for a revision.
type Requester interface {
	ActorID() uuid.UUID
	ApprovalLevel() int
	isRequester()
}

// ApproverRequester is an assigned approver rolling the chain back from their slot.
type ApproverRequester struct {
	UserID     uuid.UUID
	ApprovalID uuid.UUID
	Level      int
}

func (r ApproverRequester) ActorID() uuid.UUID { return r.UserID }
func (r ApproverRequester) ApprovalLevel() int { return r.Level }
func (ApproverRequester) isRequester()         {}

// AdminRequester is an administrator rejecting during validation.
type AdminRequester struct {
	AdminID uuid.UUID
}

func (r AdminRequester) ActorID() uuid.UUID { return r.AdminID }
func (AdminRequester) ApprovalLevel() int   { return AdministrativeLevel }
func (AdminRequester) isRequester()         {}
