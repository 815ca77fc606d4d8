package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandtree/siphon/models"
	"github.com/sandtree/siphon/orchestrate"
	"github.com/sandtree/siphon/searx"
)

func newSearchRouterDirect(o *orchestrate.Orchestrator, client *searx.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/search", Search(o, client))
	return r
}

func TestSearchHandlerRejectsMissingQuery(t *testing.T) {
	o := newTestOrchestrator()
	r := newSearchRouterDirect(o, searx.New("http://unused.invalid", time.Second))

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSearchHandlerReturnsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"url":"https://example.com/a","title":"A","score":1.0}]}`))
	}))
	defer srv.Close()

	o := newTestOrchestrator()
	client := searx.New(srv.URL, 5*time.Second)
	r := newSearchRouterDirect(o, client)

	body, _ := json.Marshal(models.SearchRequest{Query: "golang"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected Success = true, body: %s", w.Body.String())
	}
	if resp.Data == nil || len(resp.Data.Web) != 1 {
		t.Fatalf("expected one result, got: %+v", resp.Data)
	}
	if resp.Data.Web[0].URL != "https://example.com/a" {
		t.Errorf("Web[0].URL = %q, want %q", resp.Data.Web[0].URL, "https://example.com/a")
	}
}

func TestSearchHandlerMapsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := newTestOrchestrator()
	client := searx.New(srv.URL, 5*time.Second)
	r := newSearchRouterDirect(o, client)

	body, _ := json.Marshal(models.SearchRequest{Query: "golang"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != models.ErrKindUpstreamSearchError {
		t.Errorf("Error = %q, want %q", resp.Error, models.ErrKindUpstreamSearchError)
	}
}
