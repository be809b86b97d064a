package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/doccontrol-backend/internal/data/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/data/repos"
	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/domain/workflow"
	"github.com/yungbote/doccontrol-backend/internal/notify"
	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

const workflowActivityLimit = 20

// WorkflowService fronts the document workflow aggregate. It owns everything
// around the transaction: Finalize file writes before it, audit entries and
// notifications after it.
type WorkflowService interface {
	Submit(ctx context.Context, in domainagg.SubmitInput) (domainagg.TransitionResult, error)
	Route(ctx context.Context, in domainagg.RouteInput) (domainagg.TransitionResult, error)
	Sign(ctx context.Context, in domainagg.SignInput) (domainagg.TransitionResult, error)
	RequestRevision(ctx context.Context, in domainagg.RequestRevisionInput) (domainagg.TransitionResult, error)
	AdminValidate(ctx context.Context, in domainagg.AdminValidateInput) (domainagg.TransitionResult, error)
	Finalize(ctx context.Context, req FinalizeRequest) (domainagg.TransitionResult, error)
	Activate(ctx context.Context, in domainagg.ActivateInput) (domainagg.TransitionResult, error)
	MarkObsolete(ctx context.Context, in domainagg.MarkObsoleteInput) (domainagg.TransitionResult, error)

	GetWorkflow(ctx context.Context, documentID uuid.UUID) (*WorkflowView, error)
	ListRevisionRequests(ctx context.Context, documentID uuid.UUID) ([]*documents.RevisionRequest, error)
	ListPendingApprovals(ctx context.Context, approverID uuid.UUID) ([]PendingApproval, error)
}

// FinalizeRequest carries the raw payloads; files are validated, rendered and
// uploaded before the aggregate runs.
type FinalizeRequest struct {
	DocumentID   uuid.UUID
	AdminID      uuid.UUID
	Category     string
	CompanyStamp string
	FinalPDF     string
}

type WorkflowView struct {
	Document     documents.Document     `json:"document"`
	Approvals    []documents.Approval   `json:"approvals"`
	NextSignerID *uuid.UUID             `json:"next_signer_id,omitempty"`
	Activity     []notify.ActivityEntry `json:"activity"`
}

// PendingApproval is an approval its approver can sign right now.
type PendingApproval struct {
	Approval documents.Approval `json:"approval"`
	Document documents.Document `json:"document"`
}

type WorkflowServiceDeps struct {
	Aggregate domainagg.DocumentWorkflowAggregate
	Documents repos.DocumentRepo
	Approvals repos.ApprovalRepo
	Revisions repos.RevisionRequestRepo
	Directory aggregates.Directory

	Files        FileStore
	Certificates CertificateRenderer
	Emitter      notify.Emitter
	Activity     notify.ActivitySink
	Metrics      *observability.Metrics

	Policy workflow.Policy
	Now    func() time.Time
}

type workflowService struct {
	log  *logger.Logger
	deps WorkflowServiceDeps
}

func NewWorkflowService(baseLog *logger.Logger, deps WorkflowServiceDeps) WorkflowService {
	if deps.Emitter == nil {
		deps.Emitter = notify.Nop()
	}
	if deps.Policy.RevisionReasonMinLength == 0 {
		deps.Policy = workflow.DefaultPolicy()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &workflowService{
		log:  baseLog.With("service", "WorkflowService"),
		deps: deps,
	}
}

func (s *workflowService) Submit(ctx context.Context, in domainagg.SubmitInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "Submit", in.DocumentID)
	defer span.End()

	res, err := s.deps.Aggregate.Submit(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	s.record(ctx, documents.ActivitySubmitted, in.CreatorID, res, map[string]any{
		"revision_cycle": res.Document.RevisionCycle,
	})
	s.notifyNextSigner(ctx, res)
	return res, nil
}

func (s *workflowService) Route(ctx context.Context, in domainagg.RouteInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "Route", in.DocumentID)
	defer span.End()

	res, err := s.deps.Aggregate.Route(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	s.record(ctx, documents.ActivityRouted, in.ActorID, res, nil)
	s.notifyNextSigner(ctx, res)
	return res, nil
}

func (s *workflowService) Sign(ctx context.Context, in domainagg.SignInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "Sign", in.DocumentID)
	defer span.End()
	span.SetAttributes(attribute.String("approval.id", in.ApprovalID.String()))

	res, err := s.deps.Aggregate.Sign(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	details := map[string]any{"approval_id": in.ApprovalID.String()}
	if res.Approval != nil {
		details["level"] = res.Approval.Level
	}
	s.record(ctx, documents.ActivitySigned, in.SignerID, res, details)

	if res.Document.Status == documents.StatusApproved {
		s.notifyUsers(ctx, res, notify.EventDocumentApproved, "All approvals are signed", res.Document.CreatedByID)
		return res, nil
	}
	s.notifyNextSigner(ctx, res)
	return res, nil
}

func (s *workflowService) RequestRevision(ctx context.Context, in domainagg.RequestRevisionInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "RequestRevision", in.DocumentID)
	defer span.End()

	res, err := s.deps.Aggregate.RequestRevision(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	s.deps.Metrics.IncWorkflowRevision("approver")
	s.record(ctx, documents.ActivityRevision, in.RequesterID, res, revisionDetails(res))
	s.notifyRevision(ctx, res)
	return res, nil
}

func (s *workflowService) AdminValidate(ctx context.Context, in domainagg.AdminValidateInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "AdminValidate", in.DocumentID)
	defer span.End()
	span.SetAttributes(attribute.String("validation.action", string(in.Action)))

	res, err := s.deps.Aggregate.AdminValidate(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	if res.Revision != nil {
		s.deps.Metrics.IncWorkflowRevision("admin")
		s.record(ctx, documents.ActivityAdminRejected, in.AdminID, res, revisionDetails(res))
		s.notifyRevision(ctx, res)
		return res, nil
	}
	details := map[string]any{}
	if in.Comments != "" {
		details["comments"] = in.Comments
	}
	s.record(ctx, documents.ActivityAdminApproved, in.AdminID, res, details)
	s.notifyUsers(ctx, res, notify.EventDocumentApproved, "Document approved by administrator", res.Document.CreatedByID)
	return res, nil
}

func (s *workflowService) Finalize(ctx context.Context, req FinalizeRequest) (domainagg.TransitionResult, error) {
	const op = "Documents.Workflow.Finalize"
	ctx, span := startSpan(ctx, "Finalize", req.DocumentID)
	defer span.End()

	var out domainagg.TransitionResult
	category, err := s.deps.Policy.ValidateCategory(req.Category)
	if err != nil {
		return out, spanError(span, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err))
	}
	stamp, err := workflow.ParseCompanyStamp(req.CompanyStamp, s.deps.Policy.CompanyStampMaxBytes)
	if err != nil {
		return out, spanError(span, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err))
	}
	pdf, err := workflow.ParseFinalPDF(req.FinalPDF, s.deps.Policy.FinalPDFMaxBytes)
	if err != nil {
		return out, spanError(span, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err))
	}

	doc, admin, err := s.preflightFinalize(ctx, op, req)
	if err != nil {
		return out, spanError(span, err)
	}

	at := s.deps.Now().UTC()
	cert, err := s.renderCertificate(op, doc, admin, category, stamp, at)
	if err != nil {
		return out, spanError(span, err)
	}
	files, err := s.storeArtifacts(ctx, op, doc.ID, at, pdf, cert)
	if err != nil {
		return out, spanError(span, err)
	}

	res, err := s.deps.Aggregate.Finalize(ctx, domainagg.FinalizeInput{
		DocumentID:     req.DocumentID,
		AdminID:        req.AdminID,
		Category:       category,
		CompanyStamp:   stamp.DataURI,
		FinalPdfURL:    files.pdfURL,
		CertificateURL: files.certURL,
		At:             at,
	})
	if err != nil {
		s.discardArtifacts(ctx, files.keys)
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	details := map[string]any{"category": category}
	if files.pdfURL != nil {
		details["final_pdf_url"] = *files.pdfURL
	}
	if files.certURL != nil {
		details["certificate_url"] = *files.certURL
	}
	s.record(ctx, documents.ActivityFinalized, req.AdminID, res, details)
	s.notifyUsers(ctx, res, notify.EventDocumentFinalized, "Document validated and finalized", res.Document.CreatedByID)
	return res, nil
}

func (s *workflowService) Activate(ctx context.Context, in domainagg.ActivateInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "Activate", in.DocumentID)
	defer span.End()

	res, err := s.deps.Aggregate.Activate(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	s.record(ctx, documents.ActivityActivated, in.AdminID, res, nil)
	return res, nil
}

func (s *workflowService) MarkObsolete(ctx context.Context, in domainagg.MarkObsoleteInput) (domainagg.TransitionResult, error) {
	ctx, span := startSpan(ctx, "MarkObsolete", in.DocumentID)
	defer span.End()

	res, err := s.deps.Aggregate.MarkObsolete(ctx, in)
	if err != nil {
		return res, spanError(span, err)
	}
	s.committed(ctx, res)
	details := map[string]any{}
	if res.Document.ObsoleteReason != nil {
		details["reason"] = *res.Document.ObsoleteReason
	}
	s.record(ctx, documents.ActivityObsoleted, in.AdminID, res, details)
	return res, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, documentID uuid.UUID) (*WorkflowView, error) {
	const op = "Documents.Workflow.GetWorkflow"
	dbc := dbctx.Background(ctx)
	doc, err := s.requireDocument(dbc, op, documentID)
	if err != nil {
		return nil, err
	}
	rows, err := s.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	view := &WorkflowView{Document: *doc, Approvals: make([]documents.Approval, 0, len(rows))}
	for _, ap := range workflow.Ordered(rows) {
		view.Approvals = append(view.Approvals, *ap)
	}
	if workflow.Signable(doc.Status) {
		if next := workflow.NextSigner(doc, rows); next != nil {
			id := next.ApproverID
			view.NextSignerID = &id
		}
	}
	if s.deps.Activity != nil {
		activity, err := s.deps.Activity.List(ctx, doc.ID, workflowActivityLimit)
		if err != nil {
			s.log.Warn("activity lookup failed (ignored)", "document_id", doc.ID, "error", err)
		}
		view.Activity = activity
	}
	if view.Activity == nil {
		view.Activity = []notify.ActivityEntry{}
	}
	return view, nil
}

func (s *workflowService) ListRevisionRequests(ctx context.Context, documentID uuid.UUID) ([]*documents.RevisionRequest, error) {
	const op = "Documents.Workflow.ListRevisionRequests"
	dbc := dbctx.Background(ctx)
	if _, err := s.requireDocument(dbc, op, documentID); err != nil {
		return nil, err
	}
	rows, err := s.deps.Revisions.ListByDocument(dbc, documentID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

// ListPendingApprovals is the approver's inbox: unsigned approvals on documents
// still collecting signatures whose predecessors have all signed.
func (s *workflowService) ListPendingApprovals(ctx context.Context, approverID uuid.UUID) ([]PendingApproval, error) {
	const op = "Documents.Workflow.ListPendingApprovals"
	if approverID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing approver_id", nil)
	}
	dbc := dbctx.Background(ctx)
	rows, err := s.deps.Approvals.ListActiveByApprover(dbc, approverID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	docIDs := make([]uuid.UUID, 0, len(rows))
	for _, ap := range rows {
		if ap.SignedAt == nil {
			docIDs = append(docIDs, ap.DocumentID)
		}
	}
	out := []PendingApproval{}
	if len(docIDs) == 0 {
		return out, nil
	}
	docs, err := s.deps.Documents.GetByIDs(dbc, docIDs)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	byID := make(map[uuid.UUID]*documents.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	chains := map[uuid.UUID][]*documents.Approval{}
	for _, ap := range rows {
		doc := byID[ap.DocumentID]
		if ap.SignedAt != nil || doc == nil || !workflow.Signable(doc.Status) {
			continue
		}
		chain, ok := chains[doc.ID]
		if !ok {
			chain, err = s.deps.Approvals.ListActiveByDocument(dbc, doc.ID)
			if err != nil {
				return nil, aggregates.MapError(op, err)
			}
			chains[doc.ID] = chain
		}
		if workflow.ReadyToSign(doc, chain, ap).OK() {
			out = append(out, PendingApproval{Approval: *ap, Document: *doc})
		}
	}
	return out, nil
}

func (s *workflowService) requireDocument(dbc dbctx.Context, op string, id uuid.UUID) (*documents.Document, error) {
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing document_id", nil)
	}
	doc, err := s.deps.Documents.GetByID(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if doc == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("document not found: %s", id), nil)
	}
	return doc, nil
}

// preflightFinalize repeats the aggregate's precondition checks, in the same
// order, so nothing is uploaded for a request the transaction would reject.
// The aggregate re-checks everything under the row lock.
func (s *workflowService) preflightFinalize(ctx context.Context, op string, req FinalizeRequest) (*documents.Document, *documents.User, error) {
	if req.AdminID == uuid.Nil {
		return nil, nil, domainagg.NewError(domainagg.CodeValidation, op, "missing admin_id", nil)
	}
	dbc := dbctx.Background(ctx)
	doc, err := s.requireDocument(dbc, op, req.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	if s.deps.Directory == nil {
		return nil, nil, domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory not configured", nil)
	}
	admin, err := s.deps.Directory.GetUserProfile(dbc, req.AdminID)
	if err != nil {
		return nil, nil, domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory profile lookup failed", err)
	}
	if admin == nil || !admin.Role.IsAdmin() {
		return nil, nil, domainagg.NewError(domainagg.CodeForbidden, op, "administrator role required", nil)
	}
	if doc.Finalized() {
		return nil, nil, domainagg.NewError(domainagg.CodeAlreadyFinalized, op, "document was already finalized", nil)
	}
	if doc.Status != documents.StatusWaitingValidation {
		return nil, nil, domainagg.NewReasonError(
			domainagg.CodeInvalidState,
			op,
			strings.ToLower(string(doc.Status)),
			fmt.Sprintf("cannot finalize a document in status %s", doc.Status),
		)
	}
	return doc, admin, nil
}

func (s *workflowService) renderCertificate(op string, doc *documents.Document, admin *documents.User, category string, stamp workflow.CompanyStamp, at time.Time) ([]byte, error) {
	if s.deps.Certificates == nil {
		return nil, nil
	}
	png, err := s.deps.Certificates.Render(CertificateData{
		DocumentNumber: doc.DocumentNumber,
		Title:          doc.Title,
		Category:       category,
		ValidatorName:  admin.DisplayName(),
		ValidatedAt:    at,
		Stamp:          stamp.Bytes,
	})
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "render validation certificate", err)
	}
	return png, nil
}

type storedArtifacts struct {
	keys    []string
	pdfURL  *string
	certURL *string
}

// storeArtifacts uploads the PDF and the certificate in parallel. If either
// upload fails the other is removed again.
func (s *workflowService) storeArtifacts(ctx context.Context, op string, documentID uuid.UUID, at time.Time, pdf, cert []byte) (storedArtifacts, error) {
	var out storedArtifacts
	if len(pdf) == 0 && len(cert) == 0 {
		return out, nil
	}
	if s.deps.Files == nil {
		return out, domainagg.NewError(domainagg.CodeDependencyFailure, op, "file store not configured", nil)
	}

	pdfKey, certKey := finalPDFKey(documentID, at), certificateKey(documentID, at)
	var pdfURL, certURL string
	var pdfDone, certDone bool
	g, gctx := errgroup.WithContext(ctx)
	if len(pdf) > 0 {
		g.Go(func() error {
			u, err := s.deps.Files.Store(gctx, pdfKey, "application/pdf", pdf)
			if err != nil {
				return fmt.Errorf("store final pdf: %w", err)
			}
			pdfURL, pdfDone = u, true
			return nil
		})
	}
	if len(cert) > 0 {
		g.Go(func() error {
			u, err := s.deps.Files.Store(gctx, certKey, "image/png", cert)
			if err != nil {
				return fmt.Errorf("store certificate: %w", err)
			}
			certURL, certDone = u, true
			return nil
		})
	}
	err := g.Wait()

	if pdfDone {
		out.keys = append(out.keys, pdfKey)
		out.pdfURL = &pdfURL
	}
	if certDone {
		out.keys = append(out.keys, certKey)
		out.certURL = &certURL
	}
	if err != nil {
		s.discardArtifacts(ctx, out.keys)
		return storedArtifacts{}, domainagg.NewError(domainagg.CodeDependencyFailure, op, "file store write failed", err)
	}
	return out, nil
}

func (s *workflowService) discardArtifacts(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.deps.Files.Delete(ctx, key); err != nil {
			s.log.Warn("failed to delete orphaned artifact (ignored)", "key", key, "error", err)
		}
	}
}

func (s *workflowService) committed(ctx context.Context, res domainagg.TransitionResult) {
	s.deps.Metrics.IncWorkflowTransition(string(res.FromStatus), string(res.ToStatus()))
	s.log.Debug("workflow transition committed",
		"document_id", res.Document.ID,
		"from", res.FromStatus,
		"to", res.ToStatus(),
	)
}

func (s *workflowService) record(ctx context.Context, action string, actorID uuid.UUID, res domainagg.TransitionResult, details map[string]any) {
	s.deps.Emitter.RecordActivity(ctx, notify.ActivityEntry{
		DocumentID: res.Document.ID,
		ActorID:    actorID,
		Action:     action,
		FromStatus: res.FromStatus,
		ToStatus:   res.ToStatus(),
		Details:    details,
		At:         res.Document.UpdatedAt,
	})
}

func (s *workflowService) notifyNextSigner(ctx context.Context, res domainagg.TransitionResult) {
	if res.NextSignerID == nil {
		return
	}
	s.notifyUsers(ctx, res, notify.EventSignatureRequested, "Your signature is requested", *res.NextSignerID)
}

// notifyRevision tells the creator and every approver that the chain was reset.
func (s *workflowService) notifyRevision(ctx context.Context, res domainagg.TransitionResult) {
	recipients := append([]uuid.UUID{res.Document.CreatedByID}, res.ApproverIDs()...)
	msg := "Revision requested"
	if res.Revision != nil && res.Revision.Reason != "" {
		msg = res.Revision.Reason
	}
	s.notifyUsers(ctx, res, notify.EventRevisionRequested, msg, recipients...)
}

func (s *workflowService) notifyUsers(ctx context.Context, res domainagg.TransitionResult, event, message string, users ...uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(users))
	for _, userID := range users {
		if userID == uuid.Nil || seen[userID] {
			continue
		}
		seen[userID] = true
		s.deps.Emitter.Notify(ctx, userID, notify.Notification{
			Event:          event,
			DocumentID:     res.Document.ID,
			DocumentNumber: res.Document.DocumentNumber,
			Title:          res.Document.Title,
			Status:         string(res.Document.Status),
			Message:        message,
			At:             res.Document.UpdatedAt,
		})
	}
}

func revisionDetails(res domainagg.TransitionResult) map[string]any {
	details := map[string]any{"revision_cycle": res.Document.RevisionCycle}
	if rr := res.Revision; rr != nil {
		details["revision_request_id"] = rr.ID.String()
		details["reason"] = rr.Reason
		details["approval_level"] = rr.ApprovalLevel
	}
	return details
}

// startSpan detaches cancellation: once a write starts it runs to commit or
// rollback even if the client goes away.
func startSpan(ctx context.Context, name string, documentID uuid.UUID) (context.Context, trace.Span) {
	ctx, span := observability.Tracer().Start(context.WithoutCancel(ctx), "workflow."+name)
	span.SetAttributes(attribute.String("document.id", documentID.String()))
	return ctx, span
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(domainagg.CodeOf(err)))
	return err
}
