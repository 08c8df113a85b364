// Package api provides the HTTP API handlers for the Mudra gesture engine.
package api

import (
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/haptic"
	"github.com/ayusman/mudra/internal/metrics"
)

// Engine is the slice of the application the API handlers operate on.
type Engine interface {
	// ConfigSnapshot returns the current engine configuration.
	ConfigSnapshot() gesture.Config
	// UpdateConfig merges a partial configuration, clamping out-of-range
	// values, and returns the result. The update is persisted.
	UpdateConfig(gesture.Patch) (gesture.Config, error)
	// ApplyPreset applies a named preset. Returns gesture.ErrUnknownPreset
	// for unrecognized names.
	ApplyPreset(name string) (gesture.Config, error)
	// Metrics returns a snapshot of the engine telemetry.
	Metrics() metrics.Snapshot
	// ResetMetrics clears the engine telemetry.
	ResetMetrics()
	// Capabilities reports what the haptic driver chain can deliver.
	Capabilities() haptic.Capabilities
}
