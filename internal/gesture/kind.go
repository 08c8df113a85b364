// Package gesture implements the multi-touch gesture classifier for the
// Mudra engine: a per-contact session state machine that turns normalized
// touch frames into discrete gesture events with kinematic data.
package gesture

import "github.com/ayusman/mudra/internal/geometry"

// Kind identifies a gesture. The vocabulary is closed: the classifier only
// ever emits the kinds defined here.
type Kind string

const (
	KindTap         Kind = "tap"
	KindDoubleTap   Kind = "double_tap"
	KindLongPress   Kind = "long_press"
	KindSwipeUp     Kind = "swipe_up"
	KindSwipeDown   Kind = "swipe_down"
	KindSwipeLeft   Kind = "swipe_left"
	KindSwipeRight  Kind = "swipe_right"
	KindPanStart    Kind = "pan_start"
	KindPanMove     Kind = "pan_move"
	KindPanEnd      Kind = "pan_end"
	KindPinchStart  Kind = "pinch_start"
	KindPinchMove   Kind = "pinch_move"
	KindPinchEnd    Kind = "pinch_end"
	KindRotateStart Kind = "rotate_start"
	KindRotateMove  Kind = "rotate_move"
	KindRotateEnd   Kind = "rotate_end"
)

// Kinds lists every gesture kind the classifier can emit.
var Kinds = []Kind{
	KindTap, KindDoubleTap, KindLongPress,
	KindSwipeUp, KindSwipeDown, KindSwipeLeft, KindSwipeRight,
	KindPanStart, KindPanMove, KindPanEnd,
	KindPinchStart, KindPinchMove, KindPinchEnd,
	KindRotateStart, KindRotateMove, KindRotateEnd,
}

// swipeKindFor maps a movement direction to its swipe kind.
// DirectionNone has no swipe kind; callers must guard against it.
func swipeKindFor(d geometry.Direction) Kind {
	switch d {
	case geometry.DirectionUp:
		return KindSwipeUp
	case geometry.DirectionDown:
		return KindSwipeDown
	case geometry.DirectionLeft:
		return KindSwipeLeft
	default:
		return KindSwipeRight
	}
}

// State is the kinematic snapshot carried by every gesture event, computed
// relative to the session's start frame.
type State struct {
	DurationMs int64              `json:"durationMs"`
	VelocityX  float64            `json:"velocityX"` // px/ms
	VelocityY  float64            `json:"velocityY"` // px/ms
	Distance   float64            `json:"distance"`  // px, centroid displacement
	Direction  geometry.Direction `json:"direction"`
	Scale      float64            `json:"scale"`    // pinch ratio, 1 = neutral
	Rotation   float64            `json:"rotation"` // degrees, [-180, 180]
	Touches    int                `json:"touches"`
}

// Event is one classified gesture.
type Event struct {
	Kind  Kind  `json:"kind"`
	State State `json:"state"`
}

// Handler consumes gesture events.
type Handler func(Event)
