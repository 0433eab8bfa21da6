package anim

import "github.com/go-gl/mathgl/mgl32"

// Pair is a smoothed scalar: Value chases Target.
type Pair struct {
	Value  float64
	Target float64
}

// Step moves Value toward Target by factor t, which callers obtain from
// LerpSpeed so it never overshoots.
func (p *Pair) Step(t float64) {
	p.Value = Lerp(p.Value, p.Target, t)
}

// Settle jumps Value onto Target.
func (p *Pair) Settle() {
	p.Value = p.Target
}

// Vec3Pair is a smoothed 3-component value.
type Vec3Pair struct {
	Value  mgl32.Vec3
	Target mgl32.Vec3
}

// Step moves Value toward Target by factor t.
func (p *Vec3Pair) Step(t float64) {
	f := float32(t)
	p.Value = p.Value.Add(p.Target.Sub(p.Value).Mul(f))
}

// Values is the per-engine smoothing state. Targets are written by input
// callbacks; values are advanced once per frame.
type Values struct {
	Pointer Vec3Pair
	Move    Pair
	Power   Pair
	Opacity Pair
	Scale   Pair
	Amount  Pair
}

// NewValues returns the resting state: fully visible, unit scale, relaxed
// power, and a fade-in that starts from zero.
func NewValues() Values {
	return Values{
		Move:    Pair{Value: 1, Target: 1},
		Power:   Pair{Value: 0.8, Target: 0.8},
		Opacity: Pair{Value: 1, Target: 1},
		Scale:   Pair{Value: 1, Target: 1},
		Amount:  Pair{Value: 0, Target: 1},
	}
}
