package engine

import "github.com/go-gl/mathgl/mgl32"

// Camera returns an orthographic projection that keeps the unit plane
// square inside a width x height viewport: the short axis spans exactly
// one unit and the long axis is widened to match.
func Camera(width, height float64) mgl32.Mat4 {
	if width <= 0 || height <= 0 {
		return mgl32.Ortho(-0.5, 0.5, -0.5, 0.5, -1, 1)
	}
	aspect := width / height
	w, h := aspect, 1.0
	if aspect < 1 {
		w, h = 1, 1/aspect
	}
	return mgl32.Ortho(float32(-w/2), float32(w/2), float32(-h/2), float32(h/2), -1, 1)
}
