// Package geometry provides the pure touch-point math used by the gesture
// classifier: distances, angles, centroids, pinch scale and rotation deltas.
//
// Every function is stateless and side-effect free. Degenerate input (fewer
// points than a computation requires, or a near-zero reference distance)
// yields neutral values instead of errors: scale 1, rotation 0.
package geometry

import (
	"math"

	"github.com/ayusman/mudra/internal/touch"
)

// Direction is the dominant axis of a single-touch movement.
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// minPinchDistance guards the pinch-scale division. Initial spans below this
// are treated as degenerate.
const minPinchDistance = 1e-9

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 touch.Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle returns the angle of the vector from p1 to p2 in degrees,
// as given by atan2 (range -180..180, 0 pointing along +X).
func Angle(p1, p2 touch.Point) float64 {
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X) * 180 / math.Pi
}

// Centroid returns the arithmetic mean position of the given points.
// An empty slice yields the origin.
func Centroid(points []touch.Point) (x, y float64) {
	if len(points) == 0 {
		return 0, 0
	}
	for _, p := range points {
		x += p.X
		y += p.Y
	}
	n := float64(len(points))
	return x / n, y / n
}

// PinchScale returns the ratio of the current two-point span to the initial
// two-point span. If either set has fewer than two points, or the initial
// span is degenerate, it returns the neutral scale 1.
func PinchScale(current, initial []touch.Point) float64 {
	if len(current) < 2 || len(initial) < 2 {
		return 1
	}
	initialDist := Distance(initial[0], initial[1])
	if initialDist < minPinchDistance {
		return 1
	}
	return Distance(current[0], current[1]) / initialDist
}

// RotationDelta returns the change in angle, in degrees, between the line
// through the first two current points and the line through the first two
// initial points, normalized into [-180, 180]. Fewer than two points in
// either set yields the neutral rotation 0.
func RotationDelta(current, initial []touch.Point) float64 {
	if len(current) < 2 || len(initial) < 2 {
		return 0
	}
	return NormalizeAngle(Angle(current[0], current[1]) - Angle(initial[0], initial[1]))
}

// NormalizeAngle maps an angle in degrees into [-180, 180].
func NormalizeAngle(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg < -180 {
		deg += 360
	}
	return deg
}

// DirectionOf returns the dominant-axis direction of a displacement. The
// displacement magnitude along the dominant axis must exceed threshold,
// otherwise DirectionNone is returned. Y grows downward, as on screens.
func DirectionOf(dx, dy, threshold float64) Direction {
	absX := math.Abs(dx)
	absY := math.Abs(dy)

	if absX >= absY {
		if absX < threshold {
			return DirectionNone
		}
		if dx > 0 {
			return DirectionRight
		}
		return DirectionLeft
	}

	if absY < threshold {
		return DirectionNone
	}
	if dy > 0 {
		return DirectionDown
	}
	return DirectionUp
}
