package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPairNeverOvershoots(t *testing.T) {
	for _, dt := range []float64{0.001, 1.0 / 60, 0.5, 10, -1} {
		p := Pair{Value: 0, Target: 1}
		for i := 0; i < 100; i++ {
			p.Step(LerpSpeed(0.8, dt))
			if p.Value < 0 || p.Value > 1 {
				t.Fatalf("dt %v: value %v left [0,1]", dt, p.Value)
			}
		}
	}
}

func TestPairConverges(t *testing.T) {
	p := Pair{Value: 0.8, Target: 1}
	prev := p.Target - p.Value
	for i := 0; i < 120; i++ {
		p.Step(LerpSpeed(0.1, 1.0/60))
		gap := p.Target - p.Value
		if gap > prev {
			t.Fatalf("step %d: gap grew from %v to %v", i, prev, gap)
		}
		prev = gap
	}
	if prev > 1e-4 {
		t.Errorf("did not converge, gap %v", prev)
	}
	p.Target = 3
	p.Settle()
	if p.Value != 3 {
		t.Errorf("Settle left value at %v", p.Value)
	}
}

func TestVec3PairStep(t *testing.T) {
	p := Vec3Pair{Target: mgl32.Vec3{1, -1, 0}}
	p.Step(1)
	if p.Value != p.Target {
		t.Errorf("full step = %v, want %v", p.Value, p.Target)
	}
	p.Target = mgl32.Vec3{}
	p.Step(0.5)
	if p.Value != (mgl32.Vec3{0.5, -0.5, 0}) {
		t.Errorf("half step = %v", p.Value)
	}
}

func TestNewValues(t *testing.T) {
	v := NewValues()
	if v.Amount.Value != 0 || v.Amount.Target != 1 {
		t.Errorf("amount = %+v, want fade-in from 0", v.Amount)
	}
	if v.Power.Value != 0.8 || v.Move.Value != 1 || v.Scale.Value != 1 {
		t.Errorf("values = %+v", v)
	}
}
