package gpu

import "math"

// The helpers below mirror GLSL built-ins so kernels read like the shaders
// they stand in for.

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// Smoothstep is the GLSL Hermite step between e0 and e1.
func Smoothstep(e0, e1, x float32) float32 {
	t := Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func Fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

func Floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

func Sin(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}
