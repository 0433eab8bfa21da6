// Package anim holds the scalar helpers and smoothed animation state the
// thermal effect runs on every frame.
package anim

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// TargetFPS is the refresh rate the interpolation speeds are tuned for.
const TargetFPS = 60

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpSpeed converts a per-frame speed tuned at TargetFPS into an
// interpolation factor for a frame of dt seconds. The result is always in [0,1].
func LerpSpeed(base, dt float64) float64 {
	n := base * dt * TargetFPS
	switch {
	case math.IsNaN(n):
		return 0
	case n > 1:
		return 1
	case n < 0:
		return 0
	}
	return n
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Min(math.Max(value, lo), hi)
}

// HexToRGB parses "rrggbb", "#rrggbb" or the three digit shorthand into
// normalized RGB.
func HexToRGB(hex string) ([3]float32, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// Rect is a layout box in screen coordinates (y grows downward).
type Rect struct {
	Left, Top, Width, Height float64
}

// Contains reports whether the screen point lies inside the box.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Left+r.Width && y >= r.Top && y <= r.Top+r.Height
}

// Empty reports whether the box has no area yet.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Normalize maps a screen point into [0,1] box space. Degenerate axes fall
// back to the center.
func Normalize(x, y float64, r Rect) (nx, ny float64) {
	nx, ny = 0.5, 0.5
	if r.Width > 0 {
		nx = (x - r.Left) / r.Width
	}
	if r.Height > 0 {
		ny = (y - r.Top) / r.Height
	}
	return nx, ny
}

// ScreenToNDC maps a screen point into normalized device coordinates with
// the Y axis flipped: top-left is (-1, 1), bottom-right is (1, -1).
func ScreenToNDC(x, y float64, r Rect) (float64, float64) {
	nx, ny := Normalize(x, y, r)
	return 2 * (nx - 0.5), 2 * -(ny - 0.5)
}

// MovementDelta returns the normalized movement from the last normalized
// position to the current screen point.
func MovementDelta(x, y, lastNX, lastNY float64, r Rect) (dx, dy float64) {
	nx, ny := Normalize(x, y, r)
	return nx - lastNX, ny - lastNY
}
