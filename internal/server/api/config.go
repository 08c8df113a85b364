package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
)

// ConfigHandler serves the engine configuration and preset endpoints.
type ConfigHandler struct {
	engine Engine
}

// NewConfigHandler creates a ConfigHandler backed by the given engine.
func NewConfigHandler(engine Engine) *ConfigHandler {
	return &ConfigHandler{engine: engine}
}

// ServeHTTP handles GET and PATCH requests to /api/config.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPatch:
		h.handlePatch(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConfigHandler) handleGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ConfigSnapshot())
}

func (h *ConfigHandler) handlePatch(w http.ResponseWriter, r *http.Request) {
	var patch gesture.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	cfg, err := h.engine.UpdateConfig(patch)
	if err != nil {
		http.Error(w, "Failed to update configuration", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PresetHandler applies named configuration presets.
type PresetHandler struct {
	engine Engine
}

// NewPresetHandler creates a PresetHandler backed by the given engine.
func NewPresetHandler(engine Engine) *PresetHandler {
	return &PresetHandler{engine: engine}
}

// ServeHTTP handles requests to /api/presets and /api/presets/{name}.
// GET /api/presets lists the available preset names;
// POST /api/presets/{name} applies one.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/presets"), "/")

	if name == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"presets": gesture.PresetNames})
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := h.engine.ApplyPreset(name)
	if err != nil {
		if errors.Is(err, gesture.ErrUnknownPreset) {
			http.Error(w, "Unknown preset", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to apply preset", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}
