package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

// fakeWorkflow records the last input of each call and returns err when set.
type fakeWorkflow struct {
	err error

	submit   *domainagg.SubmitInput
	route    *domainagg.RouteInput
	sign     *domainagg.SignInput
	revision *domainagg.RequestRevisionInput
	validate *domainagg.AdminValidateInput
	finalize *services.FinalizeRequest
	activate *domainagg.ActivateInput
	obsolete *domainagg.MarkObsoleteInput
	pending  uuid.UUID
}

func (f *fakeWorkflow) result(docID uuid.UUID) (domainagg.TransitionResult, error) {
	if f.err != nil {
		return domainagg.TransitionResult{}, f.err
	}
	return domainagg.TransitionResult{
		Document:   documents.Document{ID: docID, Status: documents.StatusInReview},
		FromStatus: documents.StatusDraft,
	}, nil
}

func (f *fakeWorkflow) Submit(_ context.Context, in domainagg.SubmitInput) (domainagg.TransitionResult, error) {
	f.submit = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) Route(_ context.Context, in domainagg.RouteInput) (domainagg.TransitionResult, error) {
	f.route = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) Sign(_ context.Context, in domainagg.SignInput) (domainagg.TransitionResult, error) {
	f.sign = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) RequestRevision(_ context.Context, in domainagg.RequestRevisionInput) (domainagg.TransitionResult, error) {
	f.revision = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) AdminValidate(_ context.Context, in domainagg.AdminValidateInput) (domainagg.TransitionResult, error) {
	f.validate = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) Finalize(_ context.Context, req services.FinalizeRequest) (domainagg.TransitionResult, error) {
	f.finalize = &req
	return f.result(req.DocumentID)
}

func (f *fakeWorkflow) Activate(_ context.Context, in domainagg.ActivateInput) (domainagg.TransitionResult, error) {
	f.activate = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) MarkObsolete(_ context.Context, in domainagg.MarkObsoleteInput) (domainagg.TransitionResult, error) {
	f.obsolete = &in
	return f.result(in.DocumentID)
}

func (f *fakeWorkflow) GetWorkflow(_ context.Context, documentID uuid.UUID) (*services.WorkflowView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.WorkflowView{Document: documents.Document{ID: documentID}}, nil
}

func (f *fakeWorkflow) ListRevisionRequests(context.Context, uuid.UUID) ([]*documents.RevisionRequest, error) {
	return nil, f.err
}

func (f *fakeWorkflow) ListPendingApprovals(_ context.Context, approverID uuid.UUID) ([]services.PendingApproval, error) {
	f.pending = approverID
	return nil, f.err
}

func newDocumentRouter(t *testing.T, wf services.WorkflowService, actor uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewDocumentHandler(logger.Nop(), wf)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != uuid.Nil {
			ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: actor})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	r.GET("/api/documents/:id/workflow", h.GetWorkflow)
	r.GET("/api/documents/:id/revisions", h.ListRevisions)
	r.GET("/api/approvals/pending", h.ListPendingApprovals)
	r.POST("/api/documents/:id/submit", h.Submit)
	r.POST("/api/documents/:id/route", h.Route)
	r.POST("/api/documents/:id/approvals/:approvalId/sign", h.Sign)
	r.POST("/api/documents/:id/approvals/:approvalId/revision", h.RequestRevision)
	r.POST("/api/documents/:id/validate", h.Validate)
	r.POST("/api/documents/:id/finalize", h.Finalize)
	r.POST("/api/documents/:id/activate", h.Activate)
	r.POST("/api/documents/:id/obsolete", h.MarkObsolete)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error
}

func TestSignUsesProfileSignatureAndActor(t *testing.T) {
	wf := &fakeWorkflow{}
	actor := uuid.New()
	r := newDocumentRouter(t, wf, actor)
	docID, approvalID := uuid.New(), uuid.New()

	rec := doJSON(r, http.MethodPost, "/api/documents/"+docID.String()+"/approvals/"+approvalID.String()+"/sign", `{"signature":"use-profile"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if wf.sign == nil {
		t.Fatalf("sign not called")
	}
	if wf.sign.SignerID != actor || wf.sign.DocumentID != docID || wf.sign.ApprovalID != approvalID {
		t.Fatalf("sign input: %+v", wf.sign)
	}
	if _, ok := wf.sign.Signature.(workflow.ProfileSignature); !ok {
		t.Fatalf("signature source: want=ProfileSignature got=%T", wf.sign.Signature)
	}

	var body transitionView
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Document.ID != docID || body.FromStatus != documents.StatusDraft {
		t.Fatalf("body: %+v", body)
	}
}

func TestSignRejectsEmptySignature(t *testing.T) {
	wf := &fakeWorkflow{}
	r := newDocumentRouter(t, wf, uuid.New())

	rec := doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/approvals/"+uuid.NewString()+"/sign", `{"signature":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	if wf.sign != nil {
		t.Fatalf("service should not be called")
	}
}

func TestSubmitAllowsMissingSignature(t *testing.T) {
	wf := &fakeWorkflow{}
	r := newDocumentRouter(t, wf, uuid.New())

	rec := doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if wf.submit == nil || wf.submit.Signature != nil {
		t.Fatalf("submit input: %+v", wf.submit)
	}

	rec = doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/submit", `{"signature":"aGVsbG8="}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if inline, ok := wf.submit.Signature.(workflow.InlineSignature); !ok || inline.Raw != "aGVsbG8=" {
		t.Fatalf("signature source: %#v", wf.submit.Signature)
	}
}

func TestRouteNormalizesTarget(t *testing.T) {
	wf := &fakeWorkflow{}
	r := newDocumentRouter(t, wf, uuid.New())

	rec := doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/route", `{"target":"waiting_validation"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if wf.route.Target != documents.StatusWaitingValidation {
		t.Fatalf("target: want=%s got=%s", documents.StatusWaitingValidation, wf.route.Target)
	}

	rec = doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/route", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing target: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}

	wf.route = nil
	rec = doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/route", `{"target":"published"}`)
	if rec.Code != http.StatusBadRequest || wf.route != nil {
		t.Fatalf("unknown target: want=%d got=%d called=%v", http.StatusBadRequest, rec.Code, wf.route != nil)
	}
	if got := decodeError(t, rec); got.Code != string(domainagg.CodeValidation) {
		t.Fatalf("unknown target code: %+v", got)
	}
}

func TestSubmitAcceptsEmptyChunkedBody(t *testing.T) {
	wf := &fakeWorkflow{}
	r := newDocumentRouter(t, wf, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+uuid.NewString()+"/submit", struct{ io.Reader }{strings.NewReader("")})
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if wf.submit == nil || wf.submit.Signature != nil {
		t.Fatalf("submit input: %+v", wf.submit)
	}

	rec = doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/submit", `{"signature":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("truncated body: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
}

func TestListPendingApprovalsUsesActor(t *testing.T) {
	wf := &fakeWorkflow{}
	actor := uuid.New()
	r := newDocumentRouter(t, wf, actor)

	rec := doJSON(r, http.MethodGet, "/api/approvals/pending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if wf.pending != actor {
		t.Fatalf("approver: want=%s got=%s", actor, wf.pending)
	}
	var body struct {
		Approvals []services.PendingApproval `json:"approvals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Approvals == nil {
		t.Fatalf("body: %s err=%v", rec.Body.String(), err)
	}

	anon := newDocumentRouter(t, wf, uuid.Nil)
	if rec := doJSON(anon, http.MethodGet, "/api/approvals/pending", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no actor: want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
}

func TestValidateParsesAction(t *testing.T) {
	wf := &fakeWorkflow{}
	r := newDocumentRouter(t, wf, uuid.New())
	path := "/api/documents/" + uuid.NewString() + "/validate"

	rec := doJSON(r, http.MethodPost, path, `{"action":"reject","comments":"needs a new scope section"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if wf.validate.Action != domainagg.ValidationReject || wf.validate.Comments != "needs a new scope section" {
		t.Fatalf("validate input: %+v", wf.validate)
	}

	rec = doJSON(r, http.MethodPost, path, `{"action":"maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad action: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.Code != string(domainagg.CodeValidation) {
		t.Fatalf("code: want=validation got=%s", got.Code)
	}
}

func TestFinalizePassesPayloads(t *testing.T) {
	wf := &fakeWorkflow{}
	admin := uuid.New()
	r := newDocumentRouter(t, wf, admin)

	rec := doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/finalize",
		`{"category":"quality","company_stamp":"data:image/png;base64,AAAA","final_pdf":"JVBERi0="}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	f := wf.finalize
	if f == nil || f.AdminID != admin || f.Category != "quality" || !strings.HasPrefix(f.CompanyStamp, "data:image/png") || f.FinalPDF != "JVBERi0=" {
		t.Fatalf("finalize request: %+v", f)
	}
}

func TestWorkflowErrorsCarryCodeAndReason(t *testing.T) {
	wf := &fakeWorkflow{err: domainagg.NewReasonError(domainagg.CodeOutOfOrder, "Documents.Workflow.Sign", "previous-unsigned", "an earlier level is still pending")}
	r := newDocumentRouter(t, wf, uuid.New())

	rec := doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/approvals/"+uuid.NewString()+"/sign", `{"signature":"use-profile"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: want=%d got=%d", http.StatusConflict, rec.Code)
	}
	got := decodeError(t, rec)
	if got.Code != "out_of_order" || got.Reason != "previous-unsigned" {
		t.Fatalf("error: %+v", got)
	}
}

func TestDocumentHandlerRejectsBadIDsAndMissingActor(t *testing.T) {
	wf := &fakeWorkflow{}

	r := newDocumentRouter(t, wf, uuid.New())
	rec := doJSON(r, http.MethodPost, "/api/documents/not-a-uuid/activate", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	rec = doJSON(r, http.MethodPost, "/api/documents/"+uuid.NewString()+"/approvals/nope/revision", `{"reason":"missing the appendix"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad approval id: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}

	anon := newDocumentRouter(t, wf, uuid.Nil)
	rec = doJSON(anon, http.MethodPost, "/api/documents/"+uuid.NewString()+"/activate", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no actor: want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
	if wf.activate != nil {
		t.Fatalf("service should not be called")
	}
}

func TestReadEndpoints(t *testing.T) {
	wf := &fakeWorkflow{}
	r := newDocumentRouter(t, wf, uuid.New())
	docID := uuid.New()

	rec := doJSON(r, http.MethodGet, "/api/documents/"+docID.String()+"/workflow", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), docID.String()) {
		t.Fatalf("workflow: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(r, http.MethodGet, "/api/documents/"+docID.String()+"/revisions", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"revisions":[]`) {
		t.Fatalf("revisions: status=%d body=%s", rec.Code, rec.Body.String())
	}

	wf.err = domainagg.NewError(domainagg.CodeNotFound, "Documents.Workflow.Get", "document not found", nil)
	rec = doJSON(r, http.MethodGet, "/api/documents/"+docID.String()+"/workflow", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing: want=%d got=%d", http.StatusNotFound, rec.Code)
	}
}
