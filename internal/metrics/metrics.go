// Package metrics provides lightweight telemetry for the Mudra gesture
// engine: gesture counts, rolling classification latency, haptic usage and
// dropped-frame accounting.
package metrics

import "sync"

// Snapshot is a point-in-time copy of the tracker's counters.
// Reading a snapshot never mutates the tracker.
type Snapshot struct {
	GestureCounts     map[string]int `json:"gestureCounts"`
	TotalGestures     int            `json:"totalGestures"`
	AvgResponseTimeMs float64        `json:"avgResponseTimeMs"`
	HapticUsageCount  int            `json:"hapticUsageCount"`
	DroppedFrameCount int            `json:"droppedFrameCount"`
}

// Tracker accumulates engine telemetry. All operations are O(1) and never
// block beyond a short mutex hold; it is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	enabled bool
	counts  map[string]int
	total   int
	avgMs   float64
	haptics int
	dropped int
}

// NewTracker creates an enabled Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		enabled: true,
		counts:  make(map[string]int),
	}
}

// SetEnabled toggles recording. While disabled, Record* calls are no-ops;
// existing counters are retained.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Record counts one classified gesture and folds its classification latency
// into the rolling average using an incremental mean update.
func (t *Tracker) Record(kind string, latencyMs float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}

	t.counts[kind]++

	// avg' = (avg*n + latency) / (n+1)
	n := float64(t.total)
	t.avgMs = (t.avgMs*n + latencyMs) / (n + 1)
	t.total++
}

// RecordHaptic counts one delivered haptic feedback.
func (t *Tracker) RecordHaptic() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.haptics++
}

// RecordDroppedFrame counts one move frame discarded by the throttle.
func (t *Tracker) RecordDroppedFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.dropped++
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}
	return Snapshot{
		GestureCounts:     counts,
		TotalGestures:     t.total,
		AvgResponseTimeMs: t.avgMs,
		HapticUsageCount:  t.haptics,
		DroppedFrameCount: t.dropped,
	}
}

// Reset clears all counters. The enabled flag is unaffected.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts = make(map[string]int)
	t.total = 0
	t.avgMs = 0
	t.haptics = 0
	t.dropped = 0
}
