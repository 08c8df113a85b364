package gesture

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/haptic"
	"github.com/ayusman/mudra/internal/touch"
)

// HapticTrigger is the slice of the haptic controller the classifier uses.
type HapticTrigger interface {
	Trigger(f haptic.Feedback, intensity ...haptic.Intensity)
}

// Recorder receives one record per classified gesture.
type Recorder interface {
	Record(kind string, latencyMs float64)
}

// pendingTap is a tap waiting out the double-tap window. If a second
// qualifying tap arrives before the window closes, the pair escalates to a
// double-tap; otherwise the timer emits the single tap.
type pendingTap struct {
	state State
	x, y  float64
	atMs  int64
	timer *time.Timer
}

// Classifier is the gesture state machine. It consumes normalized touch
// frames and emits gesture events to registered handlers.
//
// Frames for a surface are processed in arrival order on the delivering
// goroutine; the only asynchronous entry points are the long-press and
// double-tap timers, which re-check session state under the lock and discard
// themselves when stale.
type Classifier struct {
	haptics  HapticTrigger
	recorder Recorder
	logger   *zap.Logger

	mu         sync.Mutex
	config     Config
	enabled    bool
	handlers   map[Kind]Handler
	catchAll   Handler
	session    *session
	pending    *pendingTap
	generation uint64
}

// NewClassifier creates a Classifier with the given configuration.
// haptics and recorder may be nil to disable feedback and telemetry.
func NewClassifier(cfg Config, haptics HapticTrigger, recorder Recorder, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		haptics:  haptics,
		recorder: recorder,
		logger:   logger,
		config:   cfg.Clamped(),
		enabled:  true,
		handlers: make(map[Kind]Handler),
	}
}

// On registers a handler for one gesture kind, replacing any previous one.
func (c *Classifier) On(kind Kind, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == nil {
		delete(c.handlers, kind)
		return
	}
	c.handlers[kind] = h
}

// OnGesture registers a catch-all handler invoked for every emitted event,
// in addition to any per-kind handler.
func (c *Classifier) OnGesture(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catchAll = h
}

// SetConfig replaces the live configuration. The active session, if any,
// keeps the snapshot it took at contact start.
func (c *Classifier) SetConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg.Clamped()
}

// Config returns the live configuration.
func (c *Classifier) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SetEnabled toggles classification. Disabling resets the active session.
func (c *Classifier) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	if !enabled {
		c.resetLocked()
	}
	c.mu.Unlock()
}

// Reset destroys the active session, cancels all pending timers and clears
// the double-tap window. No gesture callback fires after Reset returns.
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

func (c *Classifier) resetLocked() {
	c.generation++
	if c.session != nil {
		c.session.cancelTimers()
		c.session = nil
	}
	if c.pending != nil {
		c.pending.timer.Stop()
		c.pending = nil
	}
}

// HandleFrame runs one frame through the state machine.
func (c *Classifier) HandleFrame(f touch.Frame) {
	received := time.Now()

	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}

	var effects []effect
	switch f.Phase {
	case touch.PhaseStart:
		c.handleStart(f)
	case touch.PhaseMove:
		effects = c.handleMove(f)
	case touch.PhaseEnd:
		effects = c.handleEnd(f)
	}
	c.mu.Unlock()

	c.run(effects, received)
}

// effect is a deferred consequence of a state transition, executed outside
// the classifier lock.
type effect struct {
	event     Event
	feedback  haptic.Feedback
	intensity haptic.Intensity
	haptic    bool
}

// run delivers events, feedback and telemetry for a transition.
func (c *Classifier) run(effects []effect, received time.Time) {
	if len(effects) == 0 {
		return
	}
	latency := float64(time.Since(received).Microseconds()) / 1000.0

	for _, e := range effects {
		c.emit(e.event)
		if e.haptic && c.haptics != nil {
			c.haptics.Trigger(e.feedback, e.intensity)
		}
		if c.recorder != nil {
			c.recorder.Record(string(e.event.Kind), latency)
		}
	}
}

// emit invokes the catch-all and per-kind handlers registered for the event.
func (c *Classifier) emit(e Event) {
	c.mu.Lock()
	catchAll := c.catchAll
	handler := c.handlers[e.Kind]
	c.mu.Unlock()

	if catchAll != nil {
		catchAll(e)
	}
	if handler != nil {
		handler(e)
	}
}

// handleStart begins a new session. A start frame always supersedes any
// session still in flight: its timers are cancelled first. The pending
// double-tap window deliberately survives, since a double-tap spans two
// sessions.
func (c *Classifier) handleStart(f touch.Frame) {
	if c.session != nil {
		c.session.cancelTimers()
	}
	c.generation++

	s := newSession(c.config, f, c.generation)
	c.session = s

	if s.longPressEligible {
		delay := time.Duration(s.config.LongPressDelayMs) * time.Millisecond
		generation := s.generation
		s.longPress = time.AfterFunc(delay, func() {
			c.fireLongPress(generation)
		})
	}
}

// fireLongPress is the long-press timer callback. The session may have been
// classified, reset or replaced since the timer was armed; a generation
// mismatch or state flag discards the fire silently.
func (c *Classifier) fireLongPress(generation uint64) {
	received := time.Now()

	c.mu.Lock()
	s := c.session
	if s == nil || s.generation != generation || !c.enabled {
		c.mu.Unlock()
		return
	}
	if s.classified || !s.longPressEligible || s.panning {
		c.mu.Unlock()
		return
	}
	s.classified = true
	s.longPress = nil
	// The timer fired at exactly the configured delay; deriving the
	// duration from it keeps the event honest even when no move frame
	// arrived while holding.
	state := s.state(s.start.Timestamp + int64(s.config.LongPressDelayMs))
	c.mu.Unlock()

	c.run([]effect{{
		event:     Event{Kind: KindLongPress, State: state},
		feedback:  haptic.FeedbackImpact,
		intensity: haptic.IntensityHeavy,
		haptic:    true,
	}}, received)
}

// handleMove updates kinematics and drives the pan/pinch/rotate transitions.
func (c *Classifier) handleMove(f touch.Frame) []effect {
	s := c.session
	if s == nil {
		return nil
	}
	if len(f.Points) > 0 {
		s.current = f.Clone()
	}
	state := s.state(f.Timestamp)

	var effects []effect

	// Any movement past the tolerance permanently disqualifies long press
	// for this session.
	if s.longPressEligible && state.Distance > s.config.LongPressMoveTolerance {
		s.longPressEligible = false
		s.cancelTimers()
	}

	switch {
	case len(s.start.Points) == 1 && len(s.current.Points) == 1:
		// A fired long press only consumes the terminal slot; the drag
		// that follows it is still a pan.
		if state.Distance > s.config.PanThreshold {
			if !s.panning {
				s.panning = true
				effects = append(effects, effect{event: Event{Kind: KindPanStart, State: state}})
			}
			effects = append(effects, effect{event: Event{Kind: KindPanMove, State: state}})
		}

	case len(s.start.Points) >= 2 && len(s.current.Points) >= 2:
		// Pinch and rotation are evaluated independently; both may be
		// active at once.
		if deviation(state.Scale) > s.config.PinchThreshold {
			if !s.pinching {
				s.pinching = true
				effects = append(effects, effect{event: Event{Kind: KindPinchStart, State: state}})
			}
			effects = append(effects, effect{event: Event{Kind: KindPinchMove, State: state}})
		}
		if abs(state.Rotation) > s.config.RotateThreshold {
			if !s.rotating {
				s.rotating = true
				effects = append(effects, effect{event: Event{Kind: KindRotateStart, State: state}})
			}
			effects = append(effects, effect{event: Event{Kind: KindRotateMove, State: state}})
		}
	}

	return effects
}

// handleEnd classifies the terminal gesture and destroys the session.
//
// Priority at contact end: swipe, then tap/double-tap, then the *End events
// of whatever continuous gestures were in flight.
func (c *Classifier) handleEnd(f touch.Frame) []effect {
	s := c.session
	if s == nil {
		return nil
	}
	if len(f.Points) > 0 {
		s.current = f.Clone()
	}
	state := s.state(f.Timestamp)

	var effects []effect

	singleTouch := len(s.start.Points) == 1
	speed := 0.0
	if state.DurationMs > 0 {
		speed = state.Distance / float64(state.DurationMs)
	}

	switch {
	case s.classified:
		// Long press already consumed this session's terminal slot.
		effects = c.appendContinuousEnds(s, state, effects)

	case singleTouch &&
		state.DurationMs < int64(s.config.SwipeMaxTimeMs) &&
		speed > s.config.SwipeMinVelocity &&
		state.Distance > s.config.SwipeThreshold &&
		state.Direction != geometry.DirectionNone:
		s.classified = true
		effects = append(effects, effect{
			event:     Event{Kind: swipeKindFor(state.Direction), State: state},
			feedback:  haptic.FeedbackImpact,
			intensity: haptic.IntensityLight,
			haptic:    true,
		})

	case singleTouch &&
		state.DurationMs < tapMaxDurationMs &&
		state.Distance < tapMaxDistance:
		s.classified = true
		effects = append(effects, c.classifyTap(s, state, f.Timestamp)...)

	default:
		effects = c.appendContinuousEnds(s, state, effects)
	}

	// Back to idle: the session is destroyed, its timers with it.
	s.cancelTimers()
	c.session = nil
	c.generation++

	return effects
}

// appendContinuousEnds emits the *End events for gestures that were mid-flight.
func (c *Classifier) appendContinuousEnds(s *session, state State, effects []effect) []effect {
	if s.panning {
		effects = append(effects, effect{event: Event{Kind: KindPanEnd, State: state}})
	}
	if s.pinching {
		effects = append(effects, effect{event: Event{Kind: KindPinchEnd, State: state}})
	}
	if s.rotating {
		effects = append(effects, effect{event: Event{Kind: KindRotateEnd, State: state}})
	}
	return effects
}

// classifyTap either escalates a pending tap into a double-tap or parks this
// tap in the double-tap window.
//
// The window is consumed when it fires: a third tap right after a double-tap
// starts a fresh window instead of re-firing.
func (c *Classifier) classifyTap(s *session, state State, now int64) []effect {
	cx, cy := geometry.Centroid(s.current.Points)

	if p := c.pending; p != nil {
		apart := geometry.Distance(
			touch.Point{X: p.x, Y: p.y},
			touch.Point{X: cx, Y: cy},
		)
		if now-p.atMs <= doubleTapWindowMs && apart <= doubleTapMaxDistance {
			p.timer.Stop()
			c.pending = nil
			return []effect{{
				event:     Event{Kind: KindDoubleTap, State: state},
				feedback:  haptic.FeedbackImpact,
				intensity: haptic.IntensityMedium,
				haptic:    true,
			}}
		}
		// Too late or too far: flush the old tap now and park this one.
		p.timer.Stop()
		c.pending = nil
		c.parkTap(state, cx, cy, now)
		return []effect{{
			event:     Event{Kind: KindTap, State: p.state},
			feedback:  haptic.FeedbackSelection,
			intensity: haptic.IntensityLight,
			haptic:    true,
		}}
	}

	c.parkTap(state, cx, cy, now)
	return nil
}

// parkTap defers a tap for the double-tap window. If no second tap claims it,
// the timer emits it as a plain tap.
func (c *Classifier) parkTap(state State, x, y float64, now int64) {
	p := &pendingTap{
		state: state,
		x:     x,
		y:     y,
		atMs:  now,
	}
	p.timer = time.AfterFunc(doubleTapWindowMs*time.Millisecond, func() {
		c.flushPendingTap(p)
	})
	c.pending = p
}

// flushPendingTap is the double-tap window timer callback. A reset or a
// consumed window since arming discards the fire.
func (c *Classifier) flushPendingTap(p *pendingTap) {
	received := time.Now()

	c.mu.Lock()
	if c.pending != p || !c.enabled {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()

	c.run([]effect{{
		event:     Event{Kind: KindTap, State: p.state},
		feedback:  haptic.FeedbackSelection,
		intensity: haptic.IntensityLight,
		haptic:    true,
	}}, received)
}

// deviation is how far a pinch scale is from neutral.
func deviation(scale float64) float64 {
	return abs(scale - 1)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
