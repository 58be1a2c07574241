package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pholguinc/api-streaming/internal/registry"
	"github.com/pholguinc/api-streaming/internal/service"
)

// HTTPHandler serves the read-only HTTP surface for presence data.
type HTTPHandler struct {
	presence service.PresenceService
	conns    *registry.Connections
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(presence service.PresenceService, conns *registry.Connections) *HTTPHandler {
	return &HTTPHandler{
		presence: presence,
		conns:    conns,
	}
}

// GetStreams handles GET /api/v1/streams
// Returns the live active-streams snapshot.
func (h *HTTPHandler) GetStreams(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.presence.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "failed to load streams", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"streams": snapshot,
		"total":   len(snapshot),
	})
}

// GetStreamViewers handles GET /api/v1/streams/{stream_uid}/viewers
func (h *HTTPHandler) GetStreamViewers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	streamUID := vars["stream_uid"]

	if streamUID == "" {
		http.Error(w, "stream_uid is required", http.StatusBadRequest)
		return
	}

	snapshot, err := h.presence.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "failed to load streams", http.StatusInternalServerError)
		return
	}

	for _, stream := range snapshot {
		if stream.UID == streamUID {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"streamUid":   stream.UID,
				"viewerCount": stream.ViewerCount,
			})
			return
		}
	}

	http.Error(w, "stream not live", http.StatusNotFound)
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"connections": h.conns.Len(),
	})
}

// RegisterRoutes mounts the HTTP API on a mux router.
func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/streams", h.GetStreams).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/streams/{stream_uid}/viewers", h.GetStreamViewers).Methods(http.MethodGet)
}
