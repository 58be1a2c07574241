package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/hub"
	"github.com/pholguinc/api-streaming/internal/registry"
)

// stubPresence serves a fixed snapshot.
type stubPresence struct {
	snapshot []domain.StreamSummary
}

func (s *stubPresence) HandleConnect(context.Context, *hub.Client, domain.Identity) error {
	return nil
}
func (s *stubPresence) HandleWatch(context.Context, *hub.Client, string) error        { return nil }
func (s *stubPresence) HandleStopWatching(context.Context, *hub.Client, string) error { return nil }
func (s *stubPresence) HandleStartStream(context.Context, *hub.Client, string) error  { return nil }
func (s *stubPresence) HandleEndStream(context.Context, *hub.Client, string) error    { return nil }
func (s *stubPresence) HandleDisconnect(context.Context, *hub.Client) error           { return nil }
func (s *stubPresence) ReconcileOrphans(context.Context)                              {}
func (s *stubPresence) Start(context.Context) error                                   { return nil }
func (s *stubPresence) Stop() error                                                   { return nil }

func (s *stubPresence) Snapshot(context.Context) ([]domain.StreamSummary, error) {
	return s.snapshot, nil
}

func newTestRouter(presence *stubPresence, conns *registry.Connections) *mux.Router {
	r := mux.NewRouter()
	NewHTTPHandler(presence, conns).RegisterRoutes(r)
	return r
}

func doGet(t *testing.T, router *mux.Router, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("undecodable body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestHealthCheckReportsConnections(t *testing.T) {
	conns := registry.NewConnections()
	conns.Register("c1", domain.Identity{UserID: "u1"})
	conns.Register("c2", domain.Identity{UserID: "u2"})

	router := newTestRouter(&stubPresence{}, conns)

	rec, body := doGet(t, router, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["connections"] != float64(2) {
		t.Errorf("connections = %v, want 2", body["connections"])
	}
}

func TestGetStreams(t *testing.T) {
	presence := &stubPresence{snapshot: []domain.StreamSummary{
		{UID: "s1", Status: domain.StreamStatusActive, ViewerCount: 3},
	}}
	router := newTestRouter(presence, registry.NewConnections())

	rec, body := doGet(t, router, "/api/v1/streams")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}
}

func TestGetStreamViewers(t *testing.T) {
	presence := &stubPresence{snapshot: []domain.StreamSummary{
		{UID: "s1", Status: domain.StreamStatusActive, ViewerCount: 3},
	}}
	router := newTestRouter(presence, registry.NewConnections())

	rec, body := doGet(t, router, "/api/v1/streams/s1/viewers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["viewerCount"] != float64(3) {
		t.Errorf("viewerCount = %v, want 3", body["viewerCount"])
	}

	rec, _ = doGet(t, router, "/api/v1/streams/unknown/viewers")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a stream that is not live", rec.Code)
	}
}
