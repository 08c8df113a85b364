package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// MetricsHandler serves the engine telemetry snapshot.
type MetricsHandler struct {
	engine Engine
}

// NewMetricsHandler creates a MetricsHandler backed by the given engine.
func NewMetricsHandler(engine Engine) *MetricsHandler {
	return &MetricsHandler{engine: engine}
}

// ServeHTTP handles GET (snapshot) and DELETE (reset) on /api/metrics.
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.engine.Metrics())
	case http.MethodDelete:
		h.engine.ResetMetrics()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CapabilitiesHandler reports the haptic capabilities of the engine.
type CapabilitiesHandler struct {
	engine Engine
}

// NewCapabilitiesHandler creates a CapabilitiesHandler backed by the engine.
func NewCapabilitiesHandler(engine Engine) *CapabilitiesHandler {
	return &CapabilitiesHandler{engine: engine}
}

// ServeHTTP handles GET requests to /api/capabilities.
func (h *CapabilitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Capabilities())
}

// EventsHandler serves the recent gesture event log.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates an EventsHandler backed by the given store.
func NewEventsHandler(st *store.Store) *EventsHandler {
	return &EventsHandler{store: st}
}

// eventResponse is the JSON shape of one logged gesture.
type eventResponse struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	DurationMs int64   `json:"durationMs"`
	Distance   float64 `json:"distance"`
	Direction  string  `json:"direction"`
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"`
	Touches    int     `json:"touches"`
	CreatedAt  string  `json:"createdAt"`
}

// ServeHTTP handles GET requests to /api/events. The optional "limit" query
// parameter bounds the result size (default 50).
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.store.Events().ListRecent(limit)
	if err != nil {
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:         e.ID,
			Kind:       string(e.Kind),
			DurationMs: e.DurationMs,
			Distance:   e.Distance,
			Direction:  e.Direction,
			Scale:      e.Scale,
			Rotation:   e.Rotation,
			Touches:    e.Touches,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}
