package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/data/repos"
	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/domain/workflow"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

type DocumentWorkflowAggregateDeps struct {
	Base BaseDeps

	Documents repos.DocumentRepo
	Approvals repos.ApprovalRepo
	Revisions repos.RevisionRequestRepo
	Directory Directory

	Policy workflow.Policy
	Now    func() time.Time
}

type documentWorkflowAggregate struct {
	deps     DocumentWorkflowAggregateDeps
	resolver SignatureResolver
}

func NewDocumentWorkflowAggregate(deps DocumentWorkflowAggregateDeps) domainagg.DocumentWorkflowAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Policy.RevisionReasonMinLength == 0 {
		deps.Policy = workflow.DefaultPolicy()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &documentWorkflowAggregate{
		deps:     deps,
		resolver: SignatureResolver{Directory: deps.Directory},
	}
}

func (a *documentWorkflowAggregate) Submit(ctx context.Context, in domainagg.SubmitInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.Submit"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.CreatorID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing creator_id", nil)
	}
	at := a.eventTime(in.At)

	err := runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		if doc.CreatedByID != in.CreatorID {
			return domainagg.NewError(domainagg.CodeForbidden, op, "only the document creator can submit", nil)
		}
		if !workflow.Submittable(doc.Status) {
			return invalidState(op, doc.Status, "submit")
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}
		if len(approvals) == 0 {
			return domainagg.NewError(domainagg.CodeValidation, op, "document has no approvers", nil)
		}

		from := doc.Status
		updates := map[string]any{
			"status":          string(documents.StatusInReview),
			"approval_status": string(workflow.DeriveApprovalStatus(approvals)),
			"updated_at":      at,
		}
		if !doc.CreatorSigned() {
			img, err := a.resolver.Resolve(dbc, op, in.CreatorID, in.Signature)
			if err != nil {
				return err
			}
			updates["prepared_by_signature"] = img
			updates["prepared_by_signed_at"] = at
			doc.PreparedBySignature = &img
			doc.PreparedBySignedAt = &at
		}
		if err := a.requireTransition(op, from, documents.StatusInReview); err != nil {
			return err
		}
		if _, err := a.deps.Approvals.UpdateActiveByDocument(dbc, doc.ID, map[string]any{
			"revision_cycle": doc.RevisionCycle,
			"updated_at":     at,
		}); err != nil {
			return err
		}
		for _, ap := range approvals {
			ap.RevisionCycle = doc.RevisionCycle
		}
		if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, updates); err != nil {
			return err
		}
		doc.Status = documents.StatusInReview
		doc.ApprovalStatus = workflow.DeriveApprovalStatus(approvals)
		doc.UpdatedAt = at

		out = buildResult(doc, approvals, from)
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) Route(ctx context.Context, in domainagg.RouteInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.Route"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.ActorID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing actor_id", nil)
	}
	if in.Target != documents.StatusOnApproval && in.Target != documents.StatusWaitingValidation {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("cannot route to %q", in.Target), nil)
	}
	at := a.eventTime(in.At)

	err := runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		if doc.CreatedByID != in.ActorID {
			if err := a.requireAdmin(dbc, op, in.ActorID); err != nil {
				return err
			}
		}
		if !workflow.Signable(doc.Status) || !workflow.CanTransition(doc.Status, in.Target) {
			return invalidState(op, doc.Status, "route to "+string(in.Target))
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}

		from := doc.Status
		if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, map[string]any{
			"status":     string(in.Target),
			"updated_at": at,
		}); err != nil {
			return err
		}
		doc.Status = in.Target
		doc.UpdatedAt = at

		out = buildResult(doc, approvals, from)
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) Sign(ctx context.Context, in domainagg.SignInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.Sign"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.ApprovalID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing approval_id", nil)
	}
	if in.SignerID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing signer_id", nil)
	}
	if in.Signature == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing signature", nil)
	}
	at := a.eventTime(in.At)

	err := runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}
		target := findApproval(approvals, in.ApprovalID)
		if target == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("approval not found: %s", in.ApprovalID), nil)
		}
		if target.ApproverID != in.SignerID {
			return domainagg.NewError(domainagg.CodeForbidden, op, "signer is not the assigned approver", nil)
		}
		if target.Signed() {
			return domainagg.NewError(domainagg.CodeAlreadySigned, op, "approval is already signed", nil)
		}
		if !workflow.Signable(doc.Status) {
			return invalidState(op, doc.Status, "sign")
		}
		if r := workflow.ReadyToSign(doc, approvals, target); !r.OK() {
			return domainagg.NewReasonError(domainagg.CodeOutOfOrder, op, string(r.Reason), blockMessage(r.Reason))
		}

		img, err := a.resolver.Resolve(dbc, op, in.SignerID, in.Signature)
		if err != nil {
			return err
		}
		if err := a.deps.Approvals.UpdateFields(dbc, target.ID, map[string]any{
			"signature_image": img,
			"signed_at":       at,
			"status":          string(documents.ApprovalApproved),
			"approved_at":     at,
			"revision_cycle":  doc.RevisionCycle,
			"updated_at":      at,
		}); err != nil {
			return err
		}
		target.SignatureImage = &img
		target.SignedAt = &at
		target.ApprovedAt = &at
		target.Status = documents.ApprovalApproved
		target.RevisionCycle = doc.RevisionCycle

		from := doc.Status
		updates := map[string]any{"updated_at": at}
		if workflow.Aggregate(approvals).AllApproved {
			if err := a.requireTransition(op, from, documents.StatusApproved); err != nil {
				return err
			}
			updates["status"] = string(documents.StatusApproved)
			updates["approval_status"] = string(documents.ApprovalComplete)
			doc.Status = documents.StatusApproved
			doc.ApprovalStatus = documents.ApprovalComplete
		} else {
			updates["approval_status"] = string(documents.ApprovalInProgress)
			doc.ApprovalStatus = documents.ApprovalInProgress
		}
		if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, updates); err != nil {
			return err
		}
		doc.UpdatedAt = at

		out = buildResult(doc, approvals, from)
		signed := *target
		out.Approval = &signed
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) RequestRevision(ctx context.Context, in domainagg.RequestRevisionInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.RequestRevision"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.ApprovalID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing approval_id", nil)
	}
	if in.RequesterID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing requester_id", nil)
	}
	reason, err := a.deps.Policy.ValidateRevisionReason(in.Reason)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	at := a.eventTime(in.At)

	err = runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}
		target := findApproval(approvals, in.ApprovalID)
		if target == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("approval not found: %s", in.ApprovalID), nil)
		}
		if target.ApproverID != in.RequesterID {
			return domainagg.NewError(domainagg.CodeForbidden, op, "requester is not the assigned approver", nil)
		}
		if !workflow.Signable(doc.Status) {
			return invalidState(op, doc.Status, "request revision")
		}

		requester := documents.ApproverRequester{UserID: in.RequesterID, ApprovalID: target.ID, Level: target.Level}
		from := doc.Status
		rr, err := a.resetChain(dbc, op, doc, approvals, requester, reason, at)
		if err != nil {
			return err
		}

		out = buildResult(doc, approvals, from)
		acted := *target
		out.Approval = &acted
		out.Revision = rr
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) AdminValidate(ctx context.Context, in domainagg.AdminValidateInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.AdminValidate"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.AdminID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing admin_id", nil)
	}
	if in.Action != domainagg.ValidationApprove && in.Action != domainagg.ValidationReject {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown action %q", in.Action), nil)
	}
	at := a.eventTime(in.At)

	err := runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		if err := a.requireAdmin(dbc, op, in.AdminID); err != nil {
			return err
		}
		if doc.Status != documents.StatusWaitingValidation {
			return invalidState(op, doc.Status, "validate")
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}

		from := doc.Status
		switch in.Action {
		case domainagg.ValidationApprove:
			if err := a.requireTransition(op, from, documents.StatusApproved); err != nil {
				return err
			}
			if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, map[string]any{
				"status":          string(documents.StatusApproved),
				"approval_status": string(documents.ApprovalComplete),
				"updated_at":      at,
			}); err != nil {
				return err
			}
			doc.Status = documents.StatusApproved
			doc.ApprovalStatus = documents.ApprovalComplete
			doc.UpdatedAt = at
			out = buildResult(doc, approvals, from)
		case domainagg.ValidationReject:
			reason := workflow.AdminRejectReason(a.deps.Policy, in.Comments)
			rr, err := a.resetChain(dbc, op, doc, approvals, documents.AdminRequester{AdminID: in.AdminID}, reason, at)
			if err != nil {
				return err
			}
			out = buildResult(doc, approvals, from)
			out.Revision = rr
		}
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) Finalize(ctx context.Context, in domainagg.FinalizeInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.Finalize"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.AdminID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing admin_id", nil)
	}
	category, err := a.deps.Policy.ValidateCategory(in.Category)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	stamp, err := workflow.ParseCompanyStamp(in.CompanyStamp, a.deps.Policy.CompanyStampMaxBytes)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	at := a.eventTime(in.At)

	err = runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		if err := a.requireAdmin(dbc, op, in.AdminID); err != nil {
			return err
		}
		if doc.Finalized() {
			return domainagg.NewError(domainagg.CodeAlreadyFinalized, op, "document was already finalized", nil)
		}
		if doc.Status != documents.StatusWaitingValidation {
			return invalidState(op, doc.Status, "finalize")
		}
		if err := a.requireTransition(op, doc.Status, documents.StatusApproved); err != nil {
			return err
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}

		from := doc.Status
		adminID := in.AdminID
		updates := map[string]any{
			"status":             string(documents.StatusApproved),
			"approval_status":    string(documents.ApprovalComplete),
			"validated_category": category,
			"company_stamp":      stamp.DataURI,
			"validated_at":       at,
			"validated_by_id":    adminID,
			"updated_at":         at,
		}
		if in.FinalPdfURL != nil {
			updates["final_pdf_url"] = *in.FinalPdfURL
		}
		if in.CertificateURL != nil {
			updates["certificate_url"] = *in.CertificateURL
		}
		if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, updates); err != nil {
			return err
		}
		doc.Status = documents.StatusApproved
		doc.ApprovalStatus = documents.ApprovalComplete
		doc.ValidatedCategory = &category
		doc.CompanyStamp = &stamp.DataURI
		doc.ValidatedAt = &at
		doc.ValidatedByID = &adminID
		if in.FinalPdfURL != nil {
			doc.FinalPdfURL = in.FinalPdfURL
		}
		if in.CertificateURL != nil {
			doc.CertificateURL = in.CertificateURL
		}
		doc.UpdatedAt = at

		out = buildResult(doc, approvals, from)
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) Activate(ctx context.Context, in domainagg.ActivateInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.Activate"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.AdminID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing admin_id", nil)
	}
	at := a.eventTime(in.At)

	err := runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		if err := a.requireAdmin(dbc, op, in.AdminID); err != nil {
			return err
		}
		if doc.Status != documents.StatusApproved {
			return invalidState(op, doc.Status, "activate")
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}

		from := doc.Status
		if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, map[string]any{
			"status":       string(documents.StatusActive),
			"activated_at": at,
			"updated_at":   at,
		}); err != nil {
			return err
		}
		doc.Status = documents.StatusActive
		doc.ActivatedAt = &at
		doc.UpdatedAt = at

		out = buildResult(doc, approvals, from)
		return nil
	})
	return out, err
}

func (a *documentWorkflowAggregate) MarkObsolete(ctx context.Context, in domainagg.MarkObsoleteInput) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.MarkObsolete"
	var out domainagg.TransitionResult
	if err := a.requireConfigured(op); err != nil {
		return out, err
	}
	if in.DocumentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	if in.AdminID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing admin_id", nil)
	}
	reason, err := a.deps.Policy.ValidateObsoleteReason(in.Reason)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	at := a.eventTime(in.At)

	err = runWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		doc, err := a.lockDocument(dbc, op, in.DocumentID)
		if err != nil {
			return err
		}
		if err := a.requireAdmin(dbc, op, in.AdminID); err != nil {
			return err
		}
		if doc.Status != documents.StatusApproved && doc.Status != documents.StatusActive {
			return invalidState(op, doc.Status, "mark obsolete")
		}
		approvals, err := a.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
		if err != nil {
			return err
		}

		from := doc.Status
		if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, from, map[string]any{
			"status":          string(documents.StatusObsolete),
			"obsoleted_at":    at,
			"obsolete_reason": reason,
			"updated_at":      at,
		}); err != nil {
			return err
		}
		doc.Status = documents.StatusObsolete
		doc.ObsoletedAt = &at
		doc.ObsoleteReason = &reason
		doc.UpdatedAt = at

		out = buildResult(doc, approvals, from)
		return nil
	})
	return out, err
}

// resetChain snapshots every active signature, records the revision request
// and rolls the whole chain back. The creator signature is left untouched.
func (a *documentWorkflowAggregate) resetChain(
	dbc dbctx.Context,
	op string,
	doc *documents.Document,
	approvals []*documents.Approval,
	requester documents.Requester,
	reason string,
	at time.Time,
) (*documents.RevisionRequest, error) {
	if err := a.requireTransition(op, doc.Status, documents.StatusOnRevision); err != nil {
		return nil, err
	}
	names, err := a.approverNames(dbc, op, approvals)
	if err != nil {
		return nil, err
	}
	snap := documents.NewSignatureSnapshot(doc, approvals, names, at)
	rr := documents.NewRevisionRequest(doc.ID, requester, reason, doc.RevisionCycle, snap, at)
	if _, err := a.deps.Revisions.Create(dbc, rr); err != nil {
		return nil, err
	}

	nextCycle := doc.RevisionCycle + 1
	reset := documents.ResetApprovalFields(nextCycle)
	reset["updated_at"] = at
	if _, err := a.deps.Approvals.UpdateActiveByDocument(dbc, doc.ID, reset); err != nil {
		return nil, err
	}
	if err := a.deps.Base.CASGuard.UpdateDocumentFromStatus(dbc, doc.ID, doc.Status, map[string]any{
		"status":          string(documents.StatusOnRevision),
		"approval_status": string(documents.ApprovalNeedsRevision),
		"revision_cycle":  nextCycle,
		"updated_at":      at,
	}); err != nil {
		return nil, err
	}

	for _, ap := range approvals {
		ap.SignatureImage = nil
		ap.SignedAt = nil
		ap.Status = documents.ApprovalPending
		ap.ConfirmedAt = nil
		ap.ApprovedAt = nil
		ap.RejectedAt = nil
		ap.RevisionCycle = nextCycle
	}
	doc.Status = documents.StatusOnRevision
	doc.ApprovalStatus = documents.ApprovalNeedsRevision
	doc.RevisionCycle = nextCycle
	doc.UpdatedAt = at
	return rr, nil
}

func (a *documentWorkflowAggregate) approverNames(dbc dbctx.Context, op string, approvals []*documents.Approval) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(approvals))
	if len(approvals) == 0 || a.deps.Directory == nil {
		return names, nil
	}
	ids := make([]uuid.UUID, 0, len(approvals))
	for _, ap := range approvals {
		ids = append(ids, ap.ApproverID)
	}
	profiles, err := a.deps.Directory.ListProfiles(dbc, ids)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory profile lookup failed", err)
	}
	for _, p := range profiles {
		if p != nil {
			names[p.ID] = p.DisplayName()
		}
	}
	return names, nil
}

func (a *documentWorkflowAggregate) lockDocument(dbc dbctx.Context, op string, id uuid.UUID) (*documents.Document, error) {
	doc, err := a.deps.Documents.LockByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.ID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("document not found: %s", id), nil)
	}
	return doc, nil
}

func (a *documentWorkflowAggregate) requireAdmin(dbc dbctx.Context, op string, userID uuid.UUID) error {
	if a.deps.Directory == nil {
		return domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory not configured", nil)
	}
	u, err := a.deps.Directory.GetUserProfile(dbc, userID)
	if err != nil {
		return domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory profile lookup failed", err)
	}
	if u == nil || !u.Role.IsAdmin() {
		return domainagg.NewError(domainagg.CodeForbidden, op, "administrator role required", nil)
	}
	return nil
}

func (a *documentWorkflowAggregate) requireTransition(op string, from, to documents.DocumentStatus) error {
	if workflow.CanTransition(from, to) {
		return nil
	}
	return domainagg.NewError(domainagg.CodeInvariantViolation, op, fmt.Sprintf("transition %s -> %s not allowed", from, to), nil)
}

func (a *documentWorkflowAggregate) requireConfigured(op string) error {
	if a.deps.Documents == nil || a.deps.Approvals == nil || a.deps.Revisions == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "document workflow repos not configured", nil)
	}
	return nil
}

func (a *documentWorkflowAggregate) eventTime(at time.Time) time.Time {
	if at.IsZero() {
		at = a.deps.Now()
	}
	return at.UTC()
}

func invalidState(op string, status documents.DocumentStatus, action string) error {
	return domainagg.NewReasonError(
		domainagg.CodeInvalidState,
		op,
		strings.ToLower(string(status)),
		fmt.Sprintf("cannot %s a document in status %s", action, status),
	)
}

func blockMessage(reason workflow.BlockReason) string {
	switch reason {
	case workflow.BlockCreatorNotSigned:
		return "the document creator has not signed yet"
	case workflow.BlockPreviousUnsigned:
		return "an earlier approval in the chain is still unsigned"
	default:
		return "approval is not ready to sign"
	}
}

func findApproval(approvals []*documents.Approval, id uuid.UUID) *documents.Approval {
	for _, ap := range approvals {
		if ap != nil && ap.ID == id {
			return ap
		}
	}
	return nil
}

func buildResult(doc *documents.Document, approvals []*documents.Approval, from documents.DocumentStatus) domainagg.TransitionResult {
	ordered := workflow.Ordered(approvals)
	out := domainagg.TransitionResult{
		Document:   *doc,
		FromStatus: from,
		Approvals:  make([]documents.Approval, 0, len(ordered)),
	}
	for _, ap := range ordered {
		out.Approvals = append(out.Approvals, *ap)
	}
	if workflow.Signable(doc.Status) {
		if next := workflow.NextSigner(doc, approvals); next != nil {
			id := next.ApproverID
			out.NextSignerID = &id
		}
	}
	return out
}
