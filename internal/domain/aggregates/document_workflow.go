package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/domain/workflow"
)

// DocumentWorkflowAggregate owns the document approval lifecycle.
//
// Every write locks the document row first, so operations on one document are
// serialized while different documents proceed in parallel.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeForbidden, CodeInvalidState, CodeOutOfOrder,
// CodeAlreadySigned, CodeAlreadyFinalized, CodeDependencyFailure, CodeConflict,
// CodeRetryable, CodeInternal.
type DocumentWorkflowAggregate interface {
	// Submit records the creator signature (first submission only) and opens review.
	Submit(ctx context.Context, in SubmitInput) (TransitionResult, error)

	// Route moves a document in review onward to approval or administrative validation.
	Route(ctx context.Context, in RouteInput) (TransitionResult, error)

	// Sign signs one approval slot and recomputes the derived approval status.
	Sign(ctx context.Context, in SignInput) (TransitionResult, error)

	// RequestRevision snapshots all signatures, records the request and resets the whole chain.
	RequestRevision(ctx context.Context, in RequestRevisionInput) (TransitionResult, error)

	// AdminValidate approves a document waiting validation or rejects it as an administrative revision.
	AdminValidate(ctx context.Context, in AdminValidateInput) (TransitionResult, error)

	// Finalize stamps a document waiting validation as approved with category and stamp.
	Finalize(ctx context.Context, in FinalizeInput) (TransitionResult, error)

	// Activate releases an approved document for distribution.
	Activate(ctx context.Context, in ActivateInput) (TransitionResult, error)

	// MarkObsolete retires an approved or active document.
	MarkObsolete(ctx context.Context, in MarkObsoleteInput) (TransitionResult, error)
}

type SubmitInput struct {
	DocumentID uuid.UUID
	CreatorID  uuid.UUID
	// Signature is only consulted when the creator has not signed yet.
	Signature workflow.SignatureSource
	At        time.Time
}

type RouteInput struct {
	DocumentID uuid.UUID
	ActorID    uuid.UUID
	Target     documents.DocumentStatus
	At         time.Time
}

type SignInput struct {
	DocumentID uuid.UUID
	ApprovalID uuid.UUID
	SignerID   uuid.UUID
	Signature  workflow.SignatureSource
	At         time.Time
}

type RequestRevisionInput struct {
	DocumentID  uuid.UUID
	ApprovalID  uuid.UUID
	RequesterID uuid.UUID
	Reason      string
	At          time.Time
}

// ValidationAction is the administrator's decision on a document waiting validation.
type ValidationAction string

const (
	ValidationApprove ValidationAction = "APPROVE"
	ValidationReject  ValidationAction = "REJECT"
)

func ParseValidationAction(raw string) (ValidationAction, bool) {
	switch a := ValidationAction(strings.ToUpper(strings.TrimSpace(raw))); a {
	case ValidationApprove, ValidationReject:
		return a, true
	}
	return "", false
}

type AdminValidateInput struct {
	DocumentID uuid.UUID
	AdminID    uuid.UUID
	Action     ValidationAction
	Comments   string
	At         time.Time
}

// FinalizeInput carries references to files already written by the caller.
// The aggregate never performs file IO inside its transaction.
type FinalizeInput struct {
	DocumentID     uuid.UUID
	AdminID        uuid.UUID
	Category       string
	CompanyStamp   string
	FinalPdfURL    *string
	CertificateURL *string
	At             time.Time
}

type ActivateInput struct {
	DocumentID uuid.UUID
	AdminID    uuid.UUID
	At         time.Time
}

type MarkObsoleteInput struct {
	DocumentID uuid.UUID
	AdminID    uuid.UUID
	Reason     string
	At         time.Time
}

// TransitionResult is the committed state after a write.
type TransitionResult struct {
	Document   documents.Document
	Approvals  []documents.Approval
	FromStatus documents.DocumentStatus

	// Approval is the slot acted on by Sign or RequestRevision.
	Approval *documents.Approval
	// Revision is set when the chain was reset.
	Revision *documents.RevisionRequest
	// NextSignerID is the approver whose turn it is now, if any.
	NextSignerID *uuid.UUID
}

func (r TransitionResult) ToStatus() documents.DocumentStatus {
	return r.Document.Status
}

// ApproverIDs lists the distinct approvers of the active chain in signing order.
func (r TransitionResult) ApproverIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(r.Approvals))
	out := make([]uuid.UUID, 0, len(r.Approvals))
	for _, a := range r.Approvals {
		if seen[a.ApproverID] {
			continue
		}
		seen[a.ApproverID] = true
		out = append(out, a.ApproverID)
	}
	return out
}
