package touch

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DroppedFrameRecorder receives a notification for every move frame the
// binder discards under throttling.
type DroppedFrameRecorder interface {
	RecordDroppedFrame()
}

// DefaultThrottleInterval is the minimum spacing between forwarded move
// frames (~60Hz).
const DefaultThrottleInterval = 16 * time.Millisecond

// Binder attaches a Surface to a Sink, normalizing and rate-limiting the
// frame stream.
//
// Move frames arriving faster than the throttle interval are dropped, not
// queued: only the most recent state within each window is ever processed,
// which bounds CPU cost under high-frequency input. Start and end frames are
// never dropped.
type Binder struct {
	sink     Sink
	interval time.Duration
	dropped  DroppedFrameRecorder
	logger   *zap.Logger

	// deliver orders frame delivery against release: handle holds the read
	// side across the binding check and the sink call, release holds the
	// write side across the sink reset. A frame mid-delivery therefore
	// always lands before the reset, never after.
	deliver sync.RWMutex

	mu          sync.Mutex
	bindingID   string
	unsubscribe func()
	lastForward time.Time
}

// NewBinder creates a Binder that forwards frames to sink.
// A nil dropped recorder disables dropped-frame accounting.
func NewBinder(sink Sink, interval time.Duration, dropped DroppedFrameRecorder, logger *zap.Logger) *Binder {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{
		sink:     sink,
		interval: interval,
		dropped:  dropped,
		logger:   logger,
	}
}

// SetThrottleInterval updates the move-frame throttle interval.
// Non-positive values are ignored.
func (b *Binder) SetThrottleInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interval = interval
}

// Bind subscribes to the surface and returns a release function.
//
// The release function is idempotent: the first call unsubscribes from the
// surface and resets the sink (cancelling any pending gesture timers for the
// active session); subsequent calls are no-ops. Frames delivered by the
// surface after release are discarded.
func (b *Binder) Bind(surface Surface) (unbind func()) {
	b.mu.Lock()
	prev := b.bindingID
	b.mu.Unlock()

	// Rebinding releases the previous surface first.
	if prev != "" {
		b.release(prev)
	}

	id := uuid.NewString()
	b.mu.Lock()
	b.bindingID = id
	b.lastForward = time.Time{}
	b.mu.Unlock()

	unsubscribe := surface.Subscribe(func(f Frame) {
		b.handle(id, f)
	})

	b.mu.Lock()
	// The surface may race a rebind/unbind against Subscribe returning.
	if b.bindingID != id {
		b.mu.Unlock()
		unsubscribe()
		return func() {}
	}
	b.unsubscribe = unsubscribe
	b.mu.Unlock()

	b.logger.Debug("surface bound", zap.String("binding", id))

	var once sync.Once
	return func() {
		once.Do(func() {
			b.release(id)
		})
	}
}

// release detaches the binding with the given ID if it is still current.
func (b *Binder) release(id string) {
	// Taking the delivery guard exclusively waits out any frame already
	// past the binding check in handle, so no sink call can land after the
	// reset below.
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	if b.bindingID != id {
		b.mu.Unlock()
		return
	}
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.bindingID = ""
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	// Cancels all pending timers for the active session. No gesture
	// callback may fire after this returns.
	b.sink.Reset()
	b.logger.Debug("surface unbound", zap.String("binding", id))
}

// handle normalizes and forwards one frame, applying the move throttle.
func (b *Binder) handle(id string, f Frame) {
	b.deliver.RLock()
	defer b.deliver.RUnlock()

	b.mu.Lock()
	if b.bindingID != id || b.unsubscribe == nil {
		// Operations on an already-unbound surface are no-ops.
		b.mu.Unlock()
		return
	}

	now := time.Now()
	switch f.Phase {
	case PhaseMove:
		if !b.lastForward.IsZero() && now.Sub(b.lastForward) < b.interval {
			b.mu.Unlock()
			if b.dropped != nil {
				b.dropped.RecordDroppedFrame()
			}
			return
		}
		b.lastForward = now
	case PhaseStart:
		// A fresh contact opens a fresh throttle window; its first move
		// is never dropped.
		b.lastForward = time.Time{}
	}
	b.mu.Unlock()

	if f.Timestamp == 0 {
		f.Timestamp = now.UnixMilli()
	}
	b.sink.HandleFrame(f)
}

// Bound reports whether a surface is currently attached.
func (b *Binder) Bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unsubscribe != nil
}
