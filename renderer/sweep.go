package renderer

import (
	"github.com/richinsley/gothermal/anim"
	"github.com/richinsley/gothermal/interaction"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	pressAt   = 0.2
	releaseAt = 0.7
)

// sweep scripts a pointer that drifts across the box, presses partway in
// and lets go before the end so the heat has time to cool.
type sweep struct {
	bounds   anim.Rect
	duration float32
	elapsed  float32
	x, y     *gween.Tween

	entered, pressed, released bool
}

func newSweep(bounds anim.Rect, duration float32) *sweep {
	return &sweep{
		bounds:   bounds,
		duration: duration,
		x:        gween.New(0.15, 0.85, duration, ease.InOutSine),
		y:        gween.New(0.65, 0.35, duration, ease.OutQuad),
	}
}

// advance moves the script forward by dt seconds and returns the events to
// dispatch for that step.
func (s *sweep) advance(dt float32) []interaction.Event {
	s.elapsed += dt
	nx, _ := s.x.Update(dt)
	ny, _ := s.y.Update(dt)
	px := s.bounds.Left + float64(nx)*s.bounds.Width
	py := s.bounds.Top + float64(ny)*s.bounds.Height

	var events []interaction.Event
	emit := func(kind interaction.EventKind) {
		events = append(events, interaction.Event{Kind: kind, X: px, Y: py})
	}
	if !s.entered {
		s.entered = true
		emit(interaction.Enter)
	}
	progress := s.elapsed / s.duration
	switch {
	case !s.pressed && progress >= pressAt:
		s.pressed = true
		emit(interaction.Down)
	case s.pressed && !s.released && progress >= releaseAt:
		s.released = true
		emit(interaction.Up)
	case s.pressed && !s.released:
		emit(interaction.Move)
	}
	return events
}
