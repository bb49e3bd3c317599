package spin

import (
	"math"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

// Policy controls how a spin is animated and how long each phase lasts.
type Policy struct {
	// Full turns are drawn uniformly from [MinTurns, MaxTurns).
	MinTurns int
	MaxTurns int

	// RevealDelay is how long after Spin the result is revealed.
	RevealDelay time.Duration
	// ConfettiDuration is how long the celebration stays up after reveal.
	ConfettiDuration time.Duration
	// TransitionDuration is the length of the client-side rotation animation.
	TransitionDuration time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MinTurns:           5,
		MaxTurns:           8,
		RevealDelay:        5500 * time.Millisecond,
		ConfettiDuration:   2000 * time.Millisecond,
		TransitionDuration: 6000 * time.Millisecond,
	}
}

// Turns draws the number of full turns for one spin.
func (p Policy) Turns(src wheel.Source) int {
	span := p.MaxTurns - p.MinTurns
	if span <= 0 {
		return p.MinTurns
	}
	n := p.MinTurns + int(src.Float64()*float64(span))
	return min(n, p.MaxTurns-1)
}

// NextRotation returns the absolute rotation that brings the midpoint of the
// target segment under the pointer. The previous rotation is first rounded up
// to a whole turn so the landing position depends only on targetAngle; the
// wheel always moves forward by at least turns full turns.
func NextRotation(previous float64, turns int, targetAngle float64) float64 {
	base := math.Ceil(previous/360) * 360
	return base + 360*float64(turns) + (360 - targetAngle)
}
