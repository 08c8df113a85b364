package gesture

import (
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/haptic"
	"github.com/ayusman/mudra/internal/touch"
)

// collector gathers emitted events for assertions.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *collector) count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (c *collector) countAny(kinds ...Kind) int {
	n := 0
	for _, k := range kinds {
		n += c.count(k)
	}
	return n
}

func (c *collector) last(kind Kind) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Kind == kind {
			return c.events[i], true
		}
	}
	return Event{}, false
}

// fakeHaptics records feedback triggers.
type fakeHaptics struct {
	mu    sync.Mutex
	calls []haptic.Feedback
}

func (f *fakeHaptics) Trigger(fb haptic.Feedback, _ ...haptic.Intensity) {
	f.mu.Lock()
	f.calls = append(f.calls, fb)
	f.mu.Unlock()
}

func (f *fakeHaptics) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeRecorder records telemetry calls.
type fakeRecorder struct {
	mu    sync.Mutex
	kinds []string
}

func (f *fakeRecorder) Record(kind string, _ float64) {
	f.mu.Lock()
	f.kinds = append(f.kinds, kind)
	f.mu.Unlock()
}

// frame builds a touch frame with sequentially numbered contact IDs.
func frame(phase touch.Phase, ts int64, coords ...[2]float64) touch.Frame {
	points := make([]touch.Point, len(coords))
	for i, c := range coords {
		points[i] = touch.Point{ID: i, X: c[0], Y: c[1], Timestamp: ts}
	}
	return touch.Frame{Phase: phase, Points: points, Timestamp: ts}
}

func newTestClassifier(t *testing.T, cfg Config) (*Classifier, *collector, *fakeHaptics) {
	t.Helper()
	col := &collector{}
	h := &fakeHaptics{}
	c := NewClassifier(cfg, h, nil, nil)
	c.OnGesture(col.handle)
	return c, col, h
}

// TestClassifier_Swipe verifies that a 60px move over 100ms against the
// default thresholds classifies as exactly one swipe, oriented to the
// dominant axis, with no competing tap or pan-end.
func TestClassifier_Swipe(t *testing.T) {
	c, col, h := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 1000, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 1050, [2]float64{130, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 1100, [2]float64{160, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 1100, [2]float64{160, 100}))

	swipes := col.countAny(KindSwipeUp, KindSwipeDown, KindSwipeLeft, KindSwipeRight)
	if swipes != 1 {
		t.Fatalf("expected exactly 1 swipe event, got %d", swipes)
	}
	if col.count(KindSwipeRight) != 1 {
		t.Error("expected the swipe to be oriented right")
	}

	// The swipe consumes the contact end; no pan-end competes with it
	if col.count(KindPanEnd) != 0 {
		t.Error("swipe should take priority over pan end")
	}

	ev, _ := col.last(KindSwipeRight)
	if ev.State.Distance < 59 || ev.State.Distance > 61 {
		t.Errorf("expected ~60px distance, got %f", ev.State.Distance)
	}
	if ev.State.DurationMs != 100 {
		t.Errorf("expected 100ms duration, got %d", ev.State.DurationMs)
	}

	// A swipe triggers light impact feedback
	if h.count() != 1 {
		t.Errorf("expected 1 haptic trigger, got %d", h.count())
	}
}

// TestClassifier_ShortMoveNoPan verifies that a 5px move stays below the
// default 10px pan threshold.
func TestClassifier_ShortMoveNoPan(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 50, [2]float64{105, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 150, [2]float64{105, 100}))

	if n := col.countAny(KindPanStart, KindPanMove, KindPanEnd); n != 0 {
		t.Errorf("expected no pan events for a 5px move, got %d", n)
	}
}

func TestClassifier_PanLifecycle(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	for i := 1; i <= 5; i++ {
		ts := int64(i) * 100
		c.HandleFrame(frame(touch.PhaseMove, ts, [2]float64{100 + float64(i)*20, 100}))
	}
	c.HandleFrame(frame(touch.PhaseEnd, 500, [2]float64{200, 100}))

	if col.count(KindPanStart) != 1 {
		t.Errorf("expected exactly 1 pan start, got %d", col.count(KindPanStart))
	}
	if col.count(KindPanMove) == 0 {
		t.Error("expected pan move events")
	}
	if col.count(KindPanEnd) != 1 {
		t.Errorf("expected exactly 1 pan end, got %d", col.count(KindPanEnd))
	}

	// 500ms exceeds the swipe time limit
	if n := col.countAny(KindSwipeUp, KindSwipeDown, KindSwipeLeft, KindSwipeRight); n != 0 {
		t.Errorf("expected no swipe for a slow drag, got %d", n)
	}
}

// TestClassifier_TapDeferred verifies that a short, still contact becomes a
// tap only after the double-tap window closes.
func TestClassifier_TapDeferred(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 100, [2]float64{102, 100}))

	// The tap waits out the double-tap window
	if col.count(KindTap) != 0 {
		t.Error("tap emitted before the double-tap window closed")
	}

	time.Sleep(450 * time.Millisecond)
	if col.count(KindTap) != 1 {
		t.Fatalf("expected exactly 1 tap after the window, got %d", col.count(KindTap))
	}
}

// TestClassifier_DoubleTap verifies that two quick taps escalate to one
// double-tap instead of two taps, and that a third tap right after does not
// re-fire the double-tap.
func TestClassifier_DoubleTap(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	// First tap
	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 50, [2]float64{100, 100}))

	// Second tap, 100ms later and in place
	c.HandleFrame(frame(touch.PhaseStart, 150, [2]float64{102, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 200, [2]float64{102, 100}))

	if col.count(KindDoubleTap) != 1 {
		t.Fatalf("expected 1 double tap, got %d", col.count(KindDoubleTap))
	}

	// Third tap inside what would have been the same window
	c.HandleFrame(frame(touch.PhaseStart, 250, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 300, [2]float64{100, 100}))

	if col.count(KindDoubleTap) != 1 {
		t.Errorf("third tap re-fired the double tap, got %d", col.count(KindDoubleTap))
	}

	// After all windows close, only the third tap surfaces as a plain tap
	time.Sleep(450 * time.Millisecond)
	if col.count(KindTap) != 1 {
		t.Errorf("expected 1 plain tap for the third contact, got %d", col.count(KindTap))
	}
}

// TestClassifier_DoubleTapTooFar verifies that two taps far apart stay two
// separate taps.
func TestClassifier_DoubleTapTooFar(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 50, [2]float64{100, 100}))

	// Second tap 80px away
	c.HandleFrame(frame(touch.PhaseStart, 150, [2]float64{180, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 200, [2]float64{180, 100}))

	if col.count(KindDoubleTap) != 0 {
		t.Error("distant taps must not pair into a double tap")
	}

	time.Sleep(450 * time.Millisecond)
	if col.count(KindTap) != 2 {
		t.Errorf("expected 2 separate taps, got %d", col.count(KindTap))
	}
}

// TestClassifier_LongPress verifies that a held, still contact fires a long
// press at the configured delay with heavy impact feedback.
func TestClassifier_LongPress(t *testing.T) {
	cfg := Default()
	cfg.LongPressDelayMs = 100
	c, col, h := newTestClassifier(t, cfg)

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))

	time.Sleep(250 * time.Millisecond)
	if col.count(KindLongPress) != 1 {
		t.Fatalf("expected 1 long press, got %d", col.count(KindLongPress))
	}

	ev, _ := col.last(KindLongPress)
	if ev.State.DurationMs != 100 {
		t.Errorf("expected duration equal to the configured delay, got %d", ev.State.DurationMs)
	}
	if h.count() != 1 {
		t.Errorf("expected 1 haptic trigger, got %d", h.count())
	}

	// The long press consumed the session's terminal slot: lifting the
	// finger must not add a tap or swipe.
	c.HandleFrame(frame(touch.PhaseEnd, 150, [2]float64{100, 100}))
	time.Sleep(400 * time.Millisecond)
	if n := col.countAny(KindTap, KindDoubleTap, KindSwipeUp, KindSwipeDown, KindSwipeLeft, KindSwipeRight); n != 0 {
		t.Errorf("expected no terminal gesture after a long press, got %d", n)
	}
}

// TestClassifier_LongPressCancelledByMovement verifies that movement past
// the tolerance before the delay cancels the long press permanently.
func TestClassifier_LongPressCancelledByMovement(t *testing.T) {
	cfg := Default()
	cfg.LongPressDelayMs = 100
	c, col, _ := newTestClassifier(t, cfg)

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 20, [2]float64{115, 100})) // 15px > 10px tolerance

	time.Sleep(250 * time.Millisecond)
	if col.count(KindLongPress) != 0 {
		t.Error("movement past the tolerance must cancel the long press")
	}
}

// TestClassifier_PinchAndRotate verifies that two-finger scale and rotation
// are detected independently and may be active in the same session.
func TestClassifier_PinchAndRotate(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	// Two fingers 100px apart, horizontal
	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}, [2]float64{200, 100}))

	// The pair both spreads (x2) and turns (90 degrees)
	c.HandleFrame(frame(touch.PhaseMove, 100, [2]float64{100, 100}, [2]float64{100, 300}))

	if col.count(KindPinchStart) != 1 {
		t.Errorf("expected 1 pinch start, got %d", col.count(KindPinchStart))
	}
	if col.count(KindRotateStart) != 1 {
		t.Errorf("expected 1 rotate start, got %d", col.count(KindRotateStart))
	}

	ev, ok := col.last(KindPinchMove)
	if !ok {
		t.Fatal("expected a pinch move event")
	}
	if ev.State.Scale < 1.99 || ev.State.Scale > 2.01 {
		t.Errorf("expected scale ~2, got %f", ev.State.Scale)
	}
	if ev.State.Rotation < 89 || ev.State.Rotation > 91 {
		t.Errorf("expected rotation ~90, got %f", ev.State.Rotation)
	}

	c.HandleFrame(frame(touch.PhaseEnd, 200, [2]float64{100, 100}, [2]float64{100, 300}))
	if col.count(KindPinchEnd) != 1 || col.count(KindRotateEnd) != 1 {
		t.Errorf("expected pinch end and rotate end, got %d/%d",
			col.count(KindPinchEnd), col.count(KindRotateEnd))
	}
}

// TestClassifier_PinchScaleClamped verifies that the emitted scale respects
// the configured bounds.
func TestClassifier_PinchScaleClamped(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}, [2]float64{110, 100}))
	// A 50x spread clamps to the default maximum of 3
	c.HandleFrame(frame(touch.PhaseMove, 100, [2]float64{0, 100}, [2]float64{500, 100}))

	ev, ok := col.last(KindPinchMove)
	if !ok {
		t.Fatal("expected a pinch move event")
	}
	if ev.State.Scale != 3 {
		t.Errorf("expected scale clamped to 3, got %f", ev.State.Scale)
	}
}

// TestClassifier_Reset verifies that Reset cancels every pending timer: no
// long press or deferred tap may fire afterwards.
func TestClassifier_Reset(t *testing.T) {
	cfg := Default()
	cfg.LongPressDelayMs = 100
	c, col, _ := newTestClassifier(t, cfg)

	// Pending long press
	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	// Pending deferred tap from an earlier contact
	c.HandleFrame(frame(touch.PhaseEnd, 50, [2]float64{100, 100}))

	c.Reset()

	time.Sleep(500 * time.Millisecond)
	if len(col.events) != 0 {
		t.Errorf("expected no events after reset, got %v", col.events)
	}
}

// TestClassifier_ConfigSnapshot verifies that a session keeps the thresholds
// it started with even when the live configuration changes mid-gesture.
func TestClassifier_ConfigSnapshot(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))

	// Raise the pan threshold far beyond the movement below
	cfg := Default()
	cfg.PanThreshold = 90
	c.SetConfig(cfg)

	c.HandleFrame(frame(touch.PhaseMove, 50, [2]float64{130, 100}))

	// The session snapshot still holds the 10px threshold
	if col.count(KindPanStart) != 1 {
		t.Error("mid-session config change tore the session's thresholds")
	}
}

func TestClassifier_Disabled(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())
	c.SetEnabled(false)

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 50, [2]float64{200, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 100, [2]float64{200, 100}))

	time.Sleep(400 * time.Millisecond)
	if len(col.events) != 0 {
		t.Errorf("expected no events while disabled, got %v", col.events)
	}
}

// TestClassifier_RecordsTelemetry verifies that every emitted gesture is
// recorded with its kind.
func TestClassifier_RecordsTelemetry(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewClassifier(Default(), nil, rec, nil)
	col := &collector{}
	c.OnGesture(col.handle)

	c.HandleFrame(frame(touch.PhaseStart, 1000, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 1050, [2]float64{160, 100}))
	c.HandleFrame(frame(touch.PhaseEnd, 1100, [2]float64{160, 100}))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	found := false
	for _, k := range rec.kinds {
		if k == string(KindSwipeRight) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected swipe_right in telemetry, got %v", rec.kinds)
	}
}

// TestClassifier_PerKindHandler verifies that On routes events to the
// handler registered for that kind alongside the catch-all.
func TestClassifier_PerKindHandler(t *testing.T) {
	c, col, _ := newTestClassifier(t, Default())

	var panStarts int
	c.On(KindPanStart, func(Event) { panStarts++ })

	c.HandleFrame(frame(touch.PhaseStart, 0, [2]float64{100, 100}))
	c.HandleFrame(frame(touch.PhaseMove, 100, [2]float64{150, 100}))

	if panStarts != 1 {
		t.Errorf("expected per-kind handler to fire once, got %d", panStarts)
	}
	if col.count(KindPanStart) != 1 {
		t.Error("catch-all handler should fire as well")
	}
}
