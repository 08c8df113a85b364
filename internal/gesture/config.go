package gesture

import "fmt"

// Tap classification bounds. These are fixed properties of what a tap is,
// not tunables.
const (
	tapMaxDurationMs = 200
	tapMaxDistance   = 10.0
	// doubleTapWindowMs is how long after a tap a second tap still
	// escalates to a double-tap.
	doubleTapWindowMs = 300
	// doubleTapMaxDistance is how far apart two taps may land and still
	// pair up.
	doubleTapMaxDistance = 10.0
)

// Config holds the classifier and haptic tunables. The classifier copies a
// Config at session start and uses that snapshot for the session's lifetime,
// so concurrent updates never change thresholds mid-gesture.
type Config struct {
	// Swipe: a fast, short, directional single-touch stroke.
	SwipeThreshold   float64 `json:"swipeThreshold"`   // px
	SwipeMaxTimeMs   int     `json:"swipeMaxTimeMs"`   // ms
	SwipeMinVelocity float64 `json:"swipeMinVelocity"` // px/ms

	// Pan: sustained single-touch drag.
	PanThreshold float64 `json:"panThreshold"` // px

	// Pinch: two-touch scale change.
	PinchThreshold float64 `json:"pinchThreshold"` // scale deviation from 1
	PinchScaleMin  float64 `json:"pinchScaleMin"`
	PinchScaleMax  float64 `json:"pinchScaleMax"`

	// Rotate: two-touch angle change.
	RotateThreshold float64 `json:"rotateThreshold"` // degrees

	// Long press: held single touch.
	LongPressDelayMs       int     `json:"longPressDelayMs"`
	LongPressMoveTolerance float64 `json:"longPressMoveTolerance"` // px

	// Haptics.
	EnableHaptics   bool   `json:"enableHaptics"`
	HapticIntensity string `json:"hapticIntensity"` // light|medium|heavy

	// Move-frame throttle.
	ThrottleIntervalMs int `json:"throttleIntervalMs"`

	// Telemetry.
	MetricsEnabled bool `json:"metricsEnabled"`
}

// Default returns the engine's default configuration.
func Default() Config {
	return Config{
		SwipeThreshold:         50,
		SwipeMaxTimeMs:         300,
		SwipeMinVelocity:       0.3,
		PanThreshold:           10,
		PinchThreshold:         0.1,
		PinchScaleMin:          0.5,
		PinchScaleMax:          3.0,
		RotateThreshold:        15,
		LongPressDelayMs:       500,
		LongPressMoveTolerance: 10,
		EnableHaptics:          true,
		HapticIntensity:        "medium",
		ThrottleIntervalMs:     16,
		MetricsEnabled:         true,
	}
}

// Clamped returns a copy with every field forced into its valid range.
// Out-of-range values are clamped to the nearest bound, never rejected.
func (c Config) Clamped() Config {
	c.SwipeThreshold = clampFloat(c.SwipeThreshold, 10, 500)
	c.SwipeMaxTimeMs = clampInt(c.SwipeMaxTimeMs, 50, 2000)
	c.SwipeMinVelocity = clampFloat(c.SwipeMinVelocity, 0.05, 5)
	c.PanThreshold = clampFloat(c.PanThreshold, 1, 100)
	c.PinchThreshold = clampFloat(c.PinchThreshold, 0.01, 1)
	c.PinchScaleMin = clampFloat(c.PinchScaleMin, 0.1, 1)
	c.PinchScaleMax = clampFloat(c.PinchScaleMax, 1, 10)
	c.RotateThreshold = clampFloat(c.RotateThreshold, 1, 180)
	c.LongPressDelayMs = clampInt(c.LongPressDelayMs, 100, 5000)
	c.LongPressMoveTolerance = clampFloat(c.LongPressMoveTolerance, 1, 100)
	c.ThrottleIntervalMs = clampInt(c.ThrottleIntervalMs, 4, 1000)

	switch c.HapticIntensity {
	case "light", "medium", "heavy":
	default:
		c.HapticIntensity = "medium"
	}
	return c
}

// Patch is a partial configuration. Nil fields leave the current value
// untouched; set fields are merged and then clamped.
type Patch struct {
	SwipeThreshold   *float64 `json:"swipeThreshold,omitempty"`
	SwipeMaxTimeMs   *int     `json:"swipeMaxTimeMs,omitempty"`
	SwipeMinVelocity *float64 `json:"swipeMinVelocity,omitempty"`

	PanThreshold *float64 `json:"panThreshold,omitempty"`

	PinchThreshold *float64 `json:"pinchThreshold,omitempty"`
	PinchScaleMin  *float64 `json:"pinchScaleMin,omitempty"`
	PinchScaleMax  *float64 `json:"pinchScaleMax,omitempty"`

	RotateThreshold *float64 `json:"rotateThreshold,omitempty"`

	LongPressDelayMs       *int     `json:"longPressDelayMs,omitempty"`
	LongPressMoveTolerance *float64 `json:"longPressMoveTolerance,omitempty"`

	EnableHaptics   *bool   `json:"enableHaptics,omitempty"`
	HapticIntensity *string `json:"hapticIntensity,omitempty"`

	ThrottleIntervalMs *int `json:"throttleIntervalMs,omitempty"`

	MetricsEnabled *bool `json:"metricsEnabled,omitempty"`
}

// Apply merges the patch into c and returns the clamped result.
func (p Patch) Apply(c Config) Config {
	if p.SwipeThreshold != nil {
		c.SwipeThreshold = *p.SwipeThreshold
	}
	if p.SwipeMaxTimeMs != nil {
		c.SwipeMaxTimeMs = *p.SwipeMaxTimeMs
	}
	if p.SwipeMinVelocity != nil {
		c.SwipeMinVelocity = *p.SwipeMinVelocity
	}
	if p.PanThreshold != nil {
		c.PanThreshold = *p.PanThreshold
	}
	if p.PinchThreshold != nil {
		c.PinchThreshold = *p.PinchThreshold
	}
	if p.PinchScaleMin != nil {
		c.PinchScaleMin = *p.PinchScaleMin
	}
	if p.PinchScaleMax != nil {
		c.PinchScaleMax = *p.PinchScaleMax
	}
	if p.RotateThreshold != nil {
		c.RotateThreshold = *p.RotateThreshold
	}
	if p.LongPressDelayMs != nil {
		c.LongPressDelayMs = *p.LongPressDelayMs
	}
	if p.LongPressMoveTolerance != nil {
		c.LongPressMoveTolerance = *p.LongPressMoveTolerance
	}
	if p.EnableHaptics != nil {
		c.EnableHaptics = *p.EnableHaptics
	}
	if p.HapticIntensity != nil {
		c.HapticIntensity = *p.HapticIntensity
	}
	if p.ThrottleIntervalMs != nil {
		c.ThrottleIntervalMs = *p.ThrottleIntervalMs
	}
	if p.MetricsEnabled != nil {
		c.MetricsEnabled = *p.MetricsEnabled
	}
	return c.Clamped()
}

// ErrUnknownPreset is returned when a preset name does not resolve.
var ErrUnknownPreset = fmt.Errorf("unknown preset")

// Preset names.
const (
	PresetBatterySaver  = "battery-saver"
	PresetBalanced      = "balanced"
	PresetPerformance   = "performance"
	PresetAccessibility = "accessibility"
)

// PresetNames lists the available presets in display order.
var PresetNames = []string{
	PresetBatterySaver, PresetBalanced, PresetPerformance, PresetAccessibility,
}

// PresetPatch resolves a preset name to its configuration override.
// Presets are applied through the same merge/clamp path as any other patch.
func PresetPatch(name string) (Patch, error) {
	switch name {
	case PresetBatterySaver:
		return Patch{
			ThrottleIntervalMs: intPtr(33),
			EnableHaptics:      boolPtr(false),
			MetricsEnabled:     boolPtr(false),
		}, nil
	case PresetBalanced:
		// Balanced is the factory default.
		d := Default()
		return Patch{
			SwipeThreshold:         &d.SwipeThreshold,
			SwipeMaxTimeMs:         &d.SwipeMaxTimeMs,
			SwipeMinVelocity:       &d.SwipeMinVelocity,
			PanThreshold:           &d.PanThreshold,
			PinchThreshold:         &d.PinchThreshold,
			PinchScaleMin:          &d.PinchScaleMin,
			PinchScaleMax:          &d.PinchScaleMax,
			RotateThreshold:        &d.RotateThreshold,
			LongPressDelayMs:       &d.LongPressDelayMs,
			LongPressMoveTolerance: &d.LongPressMoveTolerance,
			EnableHaptics:          &d.EnableHaptics,
			HapticIntensity:        &d.HapticIntensity,
			ThrottleIntervalMs:     &d.ThrottleIntervalMs,
			MetricsEnabled:         &d.MetricsEnabled,
		}, nil
	case PresetPerformance:
		return Patch{
			ThrottleIntervalMs: intPtr(8),
			SwipeMinVelocity:   floatPtr(0.25),
			MetricsEnabled:     boolPtr(true),
		}, nil
	case PresetAccessibility:
		return Patch{
			LongPressDelayMs:       intPtr(700),
			LongPressMoveTolerance: floatPtr(20),
			SwipeThreshold:         floatPtr(30),
			SwipeMinVelocity:       floatPtr(0.15),
			EnableHaptics:          boolPtr(true),
			HapticIntensity:        strPtr("heavy"),
		}, nil
	default:
		return Patch{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }
