package heat

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
)

// Kernel is the CPU form of shader.HeatFragment.
func Kernel(b gpu.Bindings) gpu.FragmentFunc {
	draw := b.Float("uDraw")
	radius := b.Vec3("uRadius")
	res := b.Vec3("uResolution")
	dir := b.Vec4("uDirection")
	fade := b.Float("uFadeDamping")
	adv := b.Float("uAdvection")
	vp := b.Vec2("uViewport")
	prev := b.Texture("uTexture")

	aspect := res[0] / res[1]
	pos := b.Vec2("uPosition")
	pos[1] /= aspect
	unit := (radius[2] * 1.5) / res[0]

	return func(s gpu.TextureSampler, f gpu.Fragment) mgl32.Vec4 {
		vUv := mgl32.Vec2{f.Coord[0] / vp[0], f.Coord[1] / vp[1]}
		uv := mgl32.Vec2{vUv[0], vUv[1] / aspect}

		dist := uv.Sub(pos).Len() / unit
		dist = gpu.Smoothstep(radius[0], radius[1], dist)
		k := 1 - dist

		offset := mgl32.Vec2{-dir[0] * dir[3] * k, dir[1] * dir[3] * k}

		c := s.Sample(prev, vUv.Add(offset.Mul(adv))).Mul(fade)
		c[0] = gpu.Clamp(c[0]+offset[0], -1, 1)
		c[1] = gpu.Clamp(c[1]+offset[1], -1, 1)
		c[2] += draw * k
		return mgl32.Vec4{c[0], c[1], c[2], 1}
	}
}
