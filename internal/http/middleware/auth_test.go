package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/platform/ctxutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
	"github.com/yungbote/doccontrol-backend/internal/services"
)

func newAuthRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	as, err := services.NewAuthService(logger.Nop(), "mw-secret")
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), as, nil).RequireAuth())
	r.GET("/api/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String())
	})
	return r, as
}

func TestRequireAuthAttachesActor(t *testing.T) {
	r, as := newAuthRouter(t)
	userID := uuid.New()
	token, err := as.IssueAccessToken(userID, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != userID.String() {
		t.Fatalf("actor: want=%s got=%s", userID, got)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r, _ := newAuthRouter(t)

	headers := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"garbage":    "Bearer not-a-jwt",
	}
	for name, h := range headers {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status want=%d got=%d", name, http.StatusUnauthorized, rec.Code)
		}
	}
}
