// Package touch provides touch-contact capture and normalization for the
// Mudra gesture recognition engine.
package touch

// Phase identifies where a frame falls in the contact lifecycle.
type Phase string

const (
	// PhaseStart marks the first frame of a contact (finger down).
	PhaseStart Phase = "start"
	// PhaseMove marks an intermediate frame (finger moved).
	PhaseMove Phase = "move"
	// PhaseEnd marks the final frame of a contact (finger up).
	PhaseEnd Phase = "end"
)

// Point is a single contact's position at one instant.
// Timestamp is monotonic milliseconds.
type Point struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
}

// Frame is an ordered snapshot of all active contacts at one surface event.
// Frames are ephemeral: a fresh one is produced per event and never persisted.
type Frame struct {
	Phase     Phase   `json:"phase"`
	Points    []Point `json:"points"`
	Timestamp int64   `json:"timestamp"`
}

// Clone returns a deep copy of the frame. The classifier keeps the start
// frame of a session as an immutable reference, so it must not alias the
// caller's point slice.
func (f Frame) Clone() Frame {
	points := make([]Point, len(f.Points))
	copy(points, f.Points)
	return Frame{Phase: f.Phase, Points: points, Timestamp: f.Timestamp}
}

// Surface is an input source that delivers touch frames.
// Subscribe registers a frame callback and returns a function that removes it.
type Surface interface {
	Subscribe(fn func(Frame)) (unsubscribe func())
}

// Sink consumes normalized frames. The gesture classifier implements Sink.
type Sink interface {
	HandleFrame(Frame)
	Reset()
}
