package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeti47/reelpress/logging"
	"github.com/yeti47/reelpress/pipeline"
)

// mockRunner implements SweepRunner for testing
type mockRunner struct {
	ran chan struct{}
}

func (m *mockRunner) RunSweep(ctx context.Context) error {
	m.ran <- struct{}{}
	return nil
}

func (m *mockRunner) Stats() pipeline.StatsSnapshot {
	return pipeline.StatsSnapshot{Processed: 3, Published: 2, Failed: 1}
}

func newTestServer() (*Server, *mockRunner) {
	gin.SetMode(gin.TestMode)
	runner := &mockRunner{ran: make(chan struct{}, 1)}
	nextRun := func() time.Time { return time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC) }
	return NewServer(logging.NopLogger, runner, nil, nextRun), runner
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer()
	router := server.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected status %v", body["status"])
	}
	if body["next_run"] != "2026-08-24T18:00:00Z" {
		t.Errorf("unexpected next_run %v", body["next_run"])
	}

	stats, ok := body["stats"].(map[string]any)
	if !ok {
		t.Fatalf("stats missing from response: %v", body)
	}
	if stats["processed"] != float64(3) {
		t.Errorf("unexpected processed count %v", stats["processed"])
	}
}

func TestServer_RunNow(t *testing.T) {
	server, runner := newTestServer()
	router := server.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/run", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("manual trigger did not start a sweep")
	}
}

func TestServer_RecentPosts_NoLedger(t *testing.T) {
	server, _ := newTestServer()
	router := server.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/posts", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Posts []postResponse `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Posts) != 0 {
		t.Errorf("expected no posts, got %d", len(body.Posts))
	}
}
