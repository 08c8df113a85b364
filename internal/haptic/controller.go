package haptic

import (
	"sync"

	"go.uber.org/zap"
)

// UsageRecorder receives a notification for every delivered feedback.
type UsageRecorder interface {
	RecordHaptic()
}

// Controller drives haptic feedback through an ordered chain of drivers.
//
// Trigger never returns an error and never panics: a missing capability, an
// unavailable driver or a delivery failure degrades to a silent no-op that is
// observable only through the usage counter staying flat.
type Controller struct {
	usage  UsageRecorder
	logger *zap.Logger

	mu               sync.Mutex
	drivers          []Driver
	enabled          bool
	defaultIntensity Intensity
}

// NewController creates a Controller with the given driver chain, tried in
// order on every trigger. A nil usage recorder disables usage accounting.
func NewController(drivers []Driver, usage UsageRecorder, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		usage:            usage,
		logger:           logger,
		drivers:          drivers,
		enabled:          true,
		defaultIntensity: IntensityMedium,
	}
}

// SetEnabled gates all feedback. While disabled, Trigger is an early return.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// SetDefaultIntensity sets the intensity used when Trigger is called without
// an explicit one. Unknown values are ignored.
func (c *Controller) SetDefaultIntensity(i Intensity) {
	switch i {
	case IntensityLight, IntensityMedium, IntensityHeavy:
	default:
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultIntensity = i
}

// AddDriver appends a driver to the end of the fallback chain.
func (c *Controller) AddDriver(d Driver) {
	if d == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drivers = append(c.drivers, d)
}

// Trigger plays the pattern for the given feedback. The optional intensity
// overrides the configured default; extra intensities are ignored.
//
// The first available driver that accepts the pattern counts as one usage.
// If no driver is available, nothing happens and usage is not counted.
func (c *Controller) Trigger(f Feedback, intensity ...Intensity) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	resolved := c.defaultIntensity
	if len(intensity) > 0 {
		resolved = intensity[0]
	}
	drivers := make([]Driver, len(c.drivers))
	copy(drivers, c.drivers)
	c.mu.Unlock()

	pattern := PatternFor(f, resolved)

	for _, d := range drivers {
		if !d.Available() {
			continue
		}
		if err := d.Vibrate(pattern); err != nil {
			c.logger.Debug("haptic driver rejected pattern, trying next",
				zap.String("feedback", string(f)),
				zap.Error(err))
			continue
		}
		if c.usage != nil {
			c.usage.RecordHaptic()
		}
		return
	}
	// No driver available: silent no-op, not counted as usage.
}

// Capabilities reports what the current driver chain can deliver.
func (c *Controller) Capabilities() Capabilities {
	c.mu.Lock()
	drivers := make([]Driver, len(c.drivers))
	copy(drivers, c.drivers)
	c.mu.Unlock()

	var caps Capabilities
	for _, d := range drivers {
		if !d.Available() {
			continue
		}
		caps.HasVibration = true
		if d.AdvancedPatterns() {
			caps.HasAdvancedHaptics = true
		}
	}
	return caps
}
