package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LimitBody(16))
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("ok"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, small)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("small body: status=%d body=%q", rec.Code, rec.Body.String())
	}

	big := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("declared length: want=%d got=%d", http.StatusRequestEntityTooLarge, rec.Code)
	}

	chunked := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	chunked.ContentLength = -1
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, chunked)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("chunked: want=%d got=%d", http.StatusRequestEntityTooLarge, rec.Code)
	}
}
