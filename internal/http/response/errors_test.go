package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
)

func TestRespondAggregateErrorMapsCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
		reason string
	}{
		{domainagg.NewError(domainagg.CodeValidation, "op", "reason too short", nil), http.StatusBadRequest, "validation", ""},
		{domainagg.NewError(domainagg.CodeForbidden, "op", "not your slot", nil), http.StatusForbidden, "forbidden", ""},
		{domainagg.NewError(domainagg.CodeNotFound, "op", "document not found", nil), http.StatusNotFound, "not_found", ""},
		{domainagg.NewReasonError(domainagg.CodeInvalidState, "op", "draft", "wrong status"), http.StatusConflict, "invalid_state", "draft"},
		{domainagg.NewReasonError(domainagg.CodeOutOfOrder, "op", "previous-unsigned", "earlier level pending"), http.StatusConflict, "out_of_order", "previous-unsigned"},
		{domainagg.NewError(domainagg.CodeAlreadySigned, "op", "signed", nil), http.StatusConflict, "already_signed", ""},
		{domainagg.NewError(domainagg.CodeAlreadyFinalized, "op", "finalized", nil), http.StatusConflict, "already_finalized", ""},
		{domainagg.NewError(domainagg.CodeDependencyFailure, "op", "directory down", nil), http.StatusBadGateway, "dependency_failure", ""},
		{domainagg.NewError(domainagg.CodeRetryable, "op", "serialization", nil), http.StatusServiceUnavailable, "retryable", ""},
		{fmt.Errorf("wrapped: %w", domainagg.NewError(domainagg.CodeConflict, "op", "dup", nil)), http.StatusConflict, "conflict", ""},
		{errors.New("boom"), http.StatusInternalServerError, "internal", ""},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondAggregateError(c, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%v: status want=%d got=%d", tc.err, tc.status, rec.Code)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error.Code != tc.code || env.Error.Reason != tc.reason {
			t.Fatalf("%v: envelope want=%s/%s got=%+v", tc.err, tc.code, tc.reason, env.Error)
		}
	}
}

func TestRespondAggregateErrorHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAggregateError(c, domainagg.NewError(domainagg.CodeInternal, "op", "pq: password authentication failed", nil))

	var env ErrorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Error.Message != "internal error" {
		t.Fatalf("message leaked: %q", env.Error.Message)
	}
}
