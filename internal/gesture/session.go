package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/touch"
)

// session is the exclusive classifier-owned state for one continuous
// contact, from start frame to end frame.
//
// The start frame is an immutable snapshot: it is the reference frame for
// distance, velocity, scale and rotation for the session's whole lifetime.
// The config snapshot is taken at contact start, so threshold updates never
// tear a gesture in progress.
type session struct {
	config Config

	start   touch.Frame // immutable after capture
	current touch.Frame

	startX, startY float64 // start centroid

	// generation ties timer callbacks to this session; a stale timer fire
	// compares its captured generation against the classifier's current
	// one and is discarded on mismatch.
	generation uint64

	classified bool // a terminal single-touch gesture was emitted
	panning    bool
	pinching   bool
	rotating   bool

	// longPressEligible goes false permanently once cumulative movement
	// exceeds the tolerance.
	longPressEligible bool
	longPress         *time.Timer
}

// newSession captures the start frame and config snapshot for a new contact.
func newSession(cfg Config, f touch.Frame, generation uint64) *session {
	start := f.Clone()
	cx, cy := geometry.Centroid(start.Points)
	return &session{
		config:            cfg,
		start:             start,
		current:           start,
		startX:            cx,
		startY:            cy,
		generation:        generation,
		longPressEligible: len(start.Points) == 1,
	}
}

// cancelTimers stops the session's pending timers. Stopping is best-effort;
// callbacks that already fired are discarded via the generation check.
func (s *session) cancelTimers() {
	if s.longPress != nil {
		s.longPress.Stop()
		s.longPress = nil
	}
}

// state computes the kinematic snapshot relative to the start frame,
// with now as the frame timestamp of the triggering event.
func (s *session) state(now int64) State {
	duration := now - s.start.Timestamp
	if duration < 0 {
		duration = 0
	}

	cx, cy := geometry.Centroid(s.current.Points)
	dx := cx - s.startX
	dy := cy - s.startY
	distance := geometry.Distance(
		touch.Point{X: s.startX, Y: s.startY},
		touch.Point{X: cx, Y: cy},
	)

	var vx, vy float64
	if duration > 0 {
		vx = dx / float64(duration)
		vy = dy / float64(duration)
	}

	scale := geometry.PinchScale(s.current.Points, s.start.Points)
	scale = clampFloat(scale, s.config.PinchScaleMin, s.config.PinchScaleMax)

	return State{
		DurationMs: duration,
		VelocityX:  vx,
		VelocityY:  vy,
		Distance:   distance,
		Direction:  geometry.DirectionOf(dx, dy, directionSlop),
		Scale:      scale,
		Rotation:   geometry.RotationDelta(s.current.Points, s.start.Points),
		Touches:    len(s.current.Points),
	}
}

// directionSlop is the minimum dominant-axis displacement before a movement
// gets a direction at all.
const directionSlop = 1.0
