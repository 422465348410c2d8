package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestCustomErrorLogger_TagsEntriesWithCorrelationId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()

	r := gin.New()
	r.Use(correlationMiddleware())
	r.Use(customErrorLogger(logger))
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, errors.New("kaboom"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("x-correlation-id", "cid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	if len(hook.Entries) != 1 {
		t.Fatalf("logged %d entries, expected 1", len(hook.Entries))
	}
	entry := hook.LastEntry()
	if entry.Data["correlationId"] != "cid-123" {
		t.Fatalf("correlationId field = %v, expected cid-123", entry.Data["correlationId"])
	}
}

func TestCustomErrorLogger_GeneratesCorrelationIdWhenHeaderMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()

	r := gin.New()
	r.Use(correlationMiddleware())
	r.Use(customErrorLogger(logger))
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, errors.New("kaboom"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if len(hook.Entries) != 1 {
		t.Fatalf("logged %d entries, expected 1", len(hook.Entries))
	}
	cid, ok := hook.LastEntry().Data["correlationId"].(string)
	if !ok || cid == "" {
		t.Fatalf("correlationId field missing or empty: %v", hook.LastEntry().Data)
	}
}

func TestCustomErrorLogger_SilentOnCleanRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()

	r := gin.New()
	r.Use(correlationMiddleware())
	r.Use(customErrorLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if len(hook.Entries) != 0 {
		t.Fatalf("logged %d entries for a clean request, expected 0", len(hook.Entries))
	}
}
