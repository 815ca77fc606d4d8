package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandtree/siphon/browser"
	"github.com/sandtree/siphon/limiter"
	"github.com/sandtree/siphon/metrics"
	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/orchestrate"
	"github.com/sandtree/siphon/resultcache"
)

func newTestOrchestrator() *orchestrate.Orchestrator {
	cache := resultcache.New(16, time.Minute)
	lim := limiter.New(2)
	pool := browser.New(browser.Config{Headless: true, MaxRequests: 50})
	return orchestrate.New(cache, lim, pool, metrics.New(false), orchestrate.Config{MaxTimeout: 5 * time.Second})
}

func newScrapeRouter(o *orchestrate.Orchestrator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/scrape", Scrape(o))
	return r
}

func TestScrapeHandlerRejectsInvalidJSON(t *testing.T) {
	r := newScrapeRouter(newTestOrchestrator())

	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(`{"not valid json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp models.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("expected Success = false")
	}
	if resp.Error != models.ErrKindInvalidInput {
		t.Errorf("Error = %q, want %q", resp.Error, models.ErrKindInvalidInput)
	}
}

func TestScrapeHandlerRejectsMissingURL(t *testing.T) {
	r := newScrapeRouter(newTestOrchestrator())

	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestScrapeHandlerMapsSSRFBlockToUnprocessableEntity exercises the full
// handler -> orchestrator -> ssrf.Preflight path with a loopback target,
// which is rejected synchronously without any network I/O.
func TestScrapeHandlerMapsSSRFBlockToUnprocessableEntity(t *testing.T) {
	r := newScrapeRouter(newTestOrchestrator())

	body, _ := json.Marshal(models.ScrapeRequest{URL: "http://127.0.0.1:9/admin"})
	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != 422 {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	var resp models.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("expected Success = false")
	}
	if resp.Error != models.ErrKindBlockedPrivateIP {
		t.Errorf("Error = %q, want %q", resp.Error, models.ErrKindBlockedPrivateIP)
	}
}

func TestScrapeHandlerMapsUnsupportedProtocol(t *testing.T) {
	r := newScrapeRouter(newTestOrchestrator())

	body, _ := json.Marshal(models.ScrapeRequest{URL: "ftp://example.com/file"})
	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != 422 {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	var resp models.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != models.ErrKindUnsupportedProtocol {
		t.Errorf("Error = %q, want %q", resp.Error, models.ErrKindUnsupportedProtocol)
	}
}
