package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/store"
)

func TestHealthzWithJournal(t *testing.T) {
	journal, err := store.OpenPath(filepath.Join(t.TempDir(), "segments.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()

	if _, err := journal.Track(context.Background(), "WBOR", "a.mp3", "", store.StatusPlaced); err != nil {
		t.Fatal(err)
	}

	server := NewServer("127.0.0.1:0", journal, metrics.New(), logging.NewNop())
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Status  string `json:"status"`
		Journal *struct {
			Total  int
			Placed int
		} `json:"journal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Status != "ok" {
		t.Fatalf("status = %q", payload.Status)
	}
	if payload.Journal == nil || payload.Journal.Placed != 1 {
		t.Fatalf("journal = %+v", payload.Journal)
	}
}

func TestMetricsRoute(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, metrics.New(), logging.NewNop())
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
}
