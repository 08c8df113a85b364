// Package haptic provides the capability-aware haptic feedback subsystem for
// the Mudra gesture engine: a (feedback, intensity) to vibration-pattern
// table, an ordered driver fallback chain, and usage accounting.
package haptic

// Feedback identifies the semantic kind of haptic feedback.
type Feedback string

const (
	// FeedbackSelection is a short confirmation pulse (taps).
	FeedbackSelection Feedback = "selection"
	// FeedbackImpact is a firmer physical-response pulse (swipes, presses).
	FeedbackImpact Feedback = "impact"
	// FeedbackNotification is a multi-pulse attention pattern.
	FeedbackNotification Feedback = "notification"
)

// Intensity scales a feedback pattern.
type Intensity string

const (
	IntensityLight  Intensity = "light"
	IntensityMedium Intensity = "medium"
	IntensityHeavy  Intensity = "heavy"
)

// Pattern is a vibration pattern: alternating pulse/pause durations in
// milliseconds, starting with a pulse. A single element is one plain pulse.
type Pattern []int

// patternTable maps (feedback, intensity) to the vibration pattern sent to
// the driver chain.
var patternTable = map[Feedback]map[Intensity]Pattern{
	FeedbackSelection: {
		IntensityLight:  {10},
		IntensityMedium: {20},
		IntensityHeavy:  {40},
	},
	FeedbackImpact: {
		IntensityLight:  {10},
		IntensityMedium: {20},
		IntensityHeavy:  {40},
	},
	FeedbackNotification: {
		IntensityLight:  {10, 50, 10},
		IntensityMedium: {20, 50, 20},
		IntensityHeavy:  {40, 60, 40, 60, 40},
	},
}

// PatternFor resolves the vibration pattern for a feedback/intensity pair.
// Unknown pairs fall back to a single medium pulse.
func PatternFor(f Feedback, i Intensity) Pattern {
	if byIntensity, ok := patternTable[f]; ok {
		if p, ok := byIntensity[i]; ok {
			out := make(Pattern, len(p))
			copy(out, p)
			return out
		}
	}
	return Pattern{20}
}

// Driver is one vibration backend in the fallback chain.
type Driver interface {
	// Available reports whether the backend can deliver feedback right now.
	Available() bool
	// Vibrate plays a pattern. It is best-effort; an error means the
	// pattern was not accepted and the next driver should be tried.
	Vibrate(Pattern) error
	// AdvancedPatterns reports whether the backend plays multi-pulse
	// sequences natively (as opposed to only single pulses).
	AdvancedPatterns() bool
}

// Capabilities describes what the current driver chain can deliver.
type Capabilities struct {
	HasVibration       bool `json:"hasVibration"`
	HasAdvancedHaptics bool `json:"hasAdvancedHaptics"`
}
