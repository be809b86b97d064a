package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/domain/workflow"
	"github.com/yungbote/doccontrol-backend/internal/http/response"
	"github.com/yungbote/doccontrol-backend/internal/platform/ctxutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
	"github.com/yungbote/doccontrol-backend/internal/services"
)

type DocumentHandler struct {
	log      *logger.Logger
	workflow services.WorkflowService
	now      func() time.Time
}

func NewDocumentHandler(log *logger.Logger, workflow services.WorkflowService) *DocumentHandler {
	return &DocumentHandler{
		log:      log.With("handler", "DocumentHandler"),
		workflow: workflow,
		now:      time.Now,
	}
}

// transitionView is the response body of every workflow write.
type transitionView struct {
	Document     documents.Document         `json:"document"`
	Approvals    []documents.Approval       `json:"approvals"`
	FromStatus   documents.DocumentStatus   `json:"from_status"`
	Approval     *documents.Approval        `json:"approval,omitempty"`
	Revision     *documents.RevisionRequest `json:"revision,omitempty"`
	NextSignerID *uuid.UUID                 `json:"next_signer_id,omitempty"`
}

func toTransitionView(res domainagg.TransitionResult) transitionView {
	approvals := res.Approvals
	if approvals == nil {
		approvals = []documents.Approval{}
	}
	return transitionView{
		Document:     res.Document,
		Approvals:    approvals,
		FromStatus:   res.FromStatus,
		Approval:     res.Approval,
		Revision:     res.Revision,
		NextSignerID: res.NextSignerID,
	}
}

// GET /documents/:id/workflow
func (h *DocumentHandler) GetWorkflow(c *gin.Context) {
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.workflow.GetWorkflow(c.Request.Context(), docID)
	if err != nil {
		h.fail(c, "get_workflow", err)
		return
	}
	response.RespondOK(c, gin.H{"workflow": view})
}

// GET /documents/:id/revisions
func (h *DocumentHandler) ListRevisions(c *gin.Context) {
	docID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	revisions, err := h.workflow.ListRevisionRequests(c.Request.Context(), docID)
	if err != nil {
		h.fail(c, "list_revisions", err)
		return
	}
	if revisions == nil {
		revisions = []*documents.RevisionRequest{}
	}
	response.RespondOK(c, gin.H{"revisions": revisions})
}

// GET /approvals/pending
func (h *DocumentHandler) ListPendingApprovals(c *gin.Context) {
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	pending, err := h.workflow.ListPendingApprovals(c.Request.Context(), actorID)
	if err != nil {
		h.fail(c, "list_pending", err)
		return
	}
	if pending == nil {
		pending = []services.PendingApproval{}
	}
	response.RespondOK(c, gin.H{"approvals": pending})
}

// POST /documents/:id/submit
// body: { "signature": "<base64 | data uri | use-profile>" }
// The signature may be omitted when the creator already signed in an earlier cycle.
func (h *DocumentHandler) Submit(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	var req struct {
		Signature string `json:"signature"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	var src workflow.SignatureSource
	if strings.TrimSpace(req.Signature) != "" {
		parsed, err := workflow.ParseSignatureSource(req.Signature)
		if err != nil {
			respondValidation(c, err)
			return
		}
		src = parsed
	}
	h.transition(c, "submit", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.Submit(ctx, domainagg.SubmitInput{
			DocumentID: docID,
			CreatorID:  actorID,
			Signature:  src,
			At:         h.now(),
		})
	})
}

// POST /documents/:id/route
// body: { "target": "ON_APPROVAL" | "WAITING_VALIDATION" }
func (h *DocumentHandler) Route(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	var req struct {
		Target string `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	target, valid := documents.ParseDocumentStatus(req.Target)
	if !valid {
		response.RespondAggregateError(c, domainagg.NewError(domainagg.CodeValidation, "Documents.Workflow.Route", "unknown target status "+strings.TrimSpace(req.Target), nil))
		return
	}
	h.transition(c, "route", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.Route(ctx, domainagg.RouteInput{
			DocumentID: docID,
			ActorID:    actorID,
			Target:     target,
			At:         h.now(),
		})
	})
}

// POST /documents/:id/approvals/:approvalId/sign
// body: { "signature": "<base64 | data uri | use-profile>" }
func (h *DocumentHandler) Sign(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	approvalID, ok := pathUUID(c, "approvalId")
	if !ok {
		return
	}
	var req struct {
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	src, err := workflow.ParseSignatureSource(req.Signature)
	if err != nil {
		respondValidation(c, err)
		return
	}
	h.transition(c, "sign", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.Sign(ctx, domainagg.SignInput{
			DocumentID: docID,
			ApprovalID: approvalID,
			SignerID:   actorID,
			Signature:  src,
			At:         h.now(),
		})
	})
}

// POST /documents/:id/approvals/:approvalId/revision
// body: { "reason": "..." }
func (h *DocumentHandler) RequestRevision(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	approvalID, ok := pathUUID(c, "approvalId")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	h.transition(c, "request_revision", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.RequestRevision(ctx, domainagg.RequestRevisionInput{
			DocumentID:  docID,
			ApprovalID:  approvalID,
			RequesterID: actorID,
			Reason:      req.Reason,
			At:          h.now(),
		})
	})
}

// POST /documents/:id/validate
// body: { "action": "APPROVE" | "REJECT", "comments": "..." }
func (h *DocumentHandler) Validate(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	var req struct {
		Action   string `json:"action"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	action, valid := domainagg.ParseValidationAction(req.Action)
	if !valid {
		response.RespondAggregateError(c, domainagg.NewError(domainagg.CodeValidation, "Documents.Workflow.AdminValidate", "action must be APPROVE or REJECT", nil))
		return
	}
	h.transition(c, "validate", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.AdminValidate(ctx, domainagg.AdminValidateInput{
			DocumentID: docID,
			AdminID:    actorID,
			Action:     action,
			Comments:   req.Comments,
			At:         h.now(),
		})
	})
}

// POST /documents/:id/finalize
// body: { "category": "...", "company_stamp": "<base64 | data uri>", "final_pdf": "<base64>" }
func (h *DocumentHandler) Finalize(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	var req struct {
		Category     string `json:"category"`
		CompanyStamp string `json:"company_stamp"`
		FinalPDF     string `json:"final_pdf"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	h.transition(c, "finalize", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.Finalize(ctx, services.FinalizeRequest{
			DocumentID:   docID,
			AdminID:      actorID,
			Category:     req.Category,
			CompanyStamp: req.CompanyStamp,
			FinalPDF:     req.FinalPDF,
		})
	})
}

// POST /documents/:id/activate
func (h *DocumentHandler) Activate(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	h.transition(c, "activate", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.Activate(ctx, domainagg.ActivateInput{
			DocumentID: docID,
			AdminID:    actorID,
			At:         h.now(),
		})
	})
}

// POST /documents/:id/obsolete
// body: { "reason": "..." }
func (h *DocumentHandler) MarkObsolete(c *gin.Context) {
	docID, actorID, ok := h.docAndActor(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	h.transition(c, "obsolete", func(ctx context.Context) (domainagg.TransitionResult, error) {
		return h.workflow.MarkObsolete(ctx, domainagg.MarkObsoleteInput{
			DocumentID: docID,
			AdminID:    actorID,
			Reason:     req.Reason,
			At:         h.now(),
		})
	})
}

func (h *DocumentHandler) transition(c *gin.Context, action string, run func(ctx context.Context) (domainagg.TransitionResult, error)) {
	res, err := run(c.Request.Context())
	if err != nil {
		h.fail(c, action, err)
		return
	}
	response.RespondOK(c, toTransitionView(res))
}

func (h *DocumentHandler) fail(c *gin.Context, action string, err error) {
	code := domainagg.CodeOf(err)
	if code == "" || code == domainagg.CodeInternal || code == domainagg.CodeDependencyFailure {
		h.log.Error("Workflow request failed", "action", action, "path", c.Request.URL.Path, "error", err)
	} else {
		h.log.Debug("Workflow request rejected", "action", action, "code", code, "error", err)
	}
	_ = c.Error(err)
	response.RespondAggregateError(c, err)
}

func (h *DocumentHandler) docAndActor(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	docID, ok := pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	actorID, ok := requireActor(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return docID, actorID, true
}

func requireActor(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing actor"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondAggregateError(c, domainagg.NewError(domainagg.CodeValidation, "http", "invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// bindOptionalJSON tolerates an empty body, including an empty chunked one.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		respondValidation(c, err)
		return false
	}
	return true
}

func respondValidation(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.RespondError(c, http.StatusRequestEntityTooLarge, string(domainagg.CodeValidation), errors.New("request body too large"))
		return
	}
	response.RespondAggregateError(c, domainagg.NewError(domainagg.CodeValidation, "http", err.Error(), err))
}
