package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFastFetcherReturnsHTMLAboveSizeFloor(t *testing.T) {
	body := "<html><body>" + strings.Repeat("x", minHTMLBytes) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFastFetcher()
	result, err := f.Fetch(context.Background(), 2*time.Second, srv.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil result for a large-enough HTML body")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if !strings.Contains(result.HTML, "<body>") {
		t.Errorf("expected body content preserved in HTML")
	}
}

func TestFastFetcherTreatsUndersizedBodyAsInconclusive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>too small</body></html>"))
	}))
	defer srv.Close()

	f := NewFastFetcher()
	result, err := f.Fetch(context.Background(), 2*time.Second, srv.URL)
	if err != nil {
		t.Fatalf("Fetch should never return an error for inconclusive results, got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for an undersized body, got: %+v", result)
	}
}

func TestFastFetcherTreatsNonHTMLContentTypeAsInconclusive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(strings.Repeat("x", minHTMLBytes)))
	}))
	defer srv.Close()

	f := NewFastFetcher()
	result, err := f.Fetch(context.Background(), 2*time.Second, srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for non-HTML content type, got: %+v", result)
	}
}

func TestFastFetcherTreatsTransportFailureAsInconclusive(t *testing.T) {
	f := NewFastFetcher()
	result, err := f.Fetch(context.Background(), 500*time.Millisecond, "http://127.0.0.1:1/unreachable")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for an unreachable target, got: %+v", result)
	}
}
