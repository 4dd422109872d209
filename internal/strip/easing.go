package strip

import (
	"math"
	"time"
)

// Bezier is a CSS-style cubic-bezier timing curve with endpoints (0,0) and (1,1)
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// SpinEasing decelerates hard into the landing tile
var SpinEasing = Bezier{X1: 0.2, Y1: 0.8, X2: 0.2, Y2: 1}

func bezierCoord(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func bezierSlope(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

// At maps elapsed fraction x in [0,1] to progress in [0,1]
func (b Bezier) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// Newton first, bisection if the slope flattens out
	t := x
	for i := 0; i < 8; i++ {
		dx := bezierCoord(t, b.X1, b.X2) - x
		if math.Abs(dx) < 1e-7 {
			return bezierCoord(t, b.Y1, b.Y2)
		}
		d := bezierSlope(t, b.X1, b.X2)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= dx / d
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < 40; i++ {
		cx := bezierCoord(t, b.X1, b.X2)
		if math.Abs(cx-x) < 1e-7 {
			break
		}
		if cx < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bezierCoord(t, b.Y1, b.Y2)
}

// Transition is a single translation applied over a fixed duration
type Transition struct {
	Offset   float64
	Duration time.Duration
	Easing   Bezier
}

// PositionAt returns the translation after elapsed time, clamped to [0, Offset]
func (tr Transition) PositionAt(elapsed time.Duration) float64 {
	if tr.Duration <= 0 || elapsed >= tr.Duration {
		return tr.Offset
	}
	if elapsed <= 0 {
		return 0
	}
	return tr.Offset * tr.Easing.At(float64(elapsed)/float64(tr.Duration))
}
