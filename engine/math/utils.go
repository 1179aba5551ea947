package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

const (
	Pi    float32 = math32.Pi
	TwoPi float32 = 2 * math32.Pi
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapAngle maps any angle into [0, 2π).
func WrapAngle(a float32) float32 {
	w := a - TwoPi*math32.Floor(a/TwoPi)
	if w >= TwoPi || w < 0 {
		return 0
	}
	return w
}

func DegToRad(degrees float32) float32 {
	return degrees * Pi / 180.0
}

func RadToDeg(radians float32) float32 {
	return radians * 180.0 / Pi
}
