package thermal

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
)

var luminance = mgl32.Vec3{0.2126729, 0.7151522, 0.0721750}

func saturation(c mgl32.Vec3, s float32) mgl32.Vec3 {
	l := c.Dot(luminance)
	return mgl32.Vec3{gpu.Mix(l, c[0], s), gpu.Mix(l, c[1], s), gpu.Mix(l, c[2], s)}
}

func noise(p mgl32.Vec2) float32 {
	return gpu.Fract(gpu.Sin(p.Dot(mgl32.Vec2{12.9898, 78.233})) * 43758.5453)
}

// SmoothNoise is value noise with Hermite interpolation between lattice
// points.
func SmoothNoise(p mgl32.Vec2) float32 {
	i := mgl32.Vec2{gpu.Floor(p[0]), gpu.Floor(p[1])}
	f := mgl32.Vec2{gpu.Fract(p[0]), gpu.Fract(p[1])}
	f[0] = f[0] * f[0] * (3 - 2*f[0])
	f[1] = f[1] * f[1] * (3 - 2*f[1])
	a := noise(i)
	b := noise(i.Add(mgl32.Vec2{1, 0}))
	c := noise(i.Add(mgl32.Vec2{0, 1}))
	d := noise(i.Add(mgl32.Vec2{1, 1}))
	return gpu.Mix(gpu.Mix(a, b, f[0]), gpu.Mix(c, d, f[0]), f[1])
}

func band(p, f, t float32) float32 {
	lo := p - f*0.5
	if lo < 0 {
		lo = 0
	}
	return gpu.Smoothstep(lo, p+f*0.5, t)
}

func mix3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{gpu.Mix(a[0], b[0], t), gpu.Mix(a[1], b[1], t), gpu.Mix(a[2], b[2], t)}
}

type gradient struct {
	colors   [7]mgl32.Vec3
	blend    mgl32.Vec4
	fade     mgl32.Vec4
	maxBlend mgl32.Vec4
	shift    float32
}

func (g *gradient) at(t float32) mgl32.Vec3 {
	t = gpu.Clamp(t+g.shift, 0, 1)
	col := g.colors[0]
	for i := 0; i < 4; i++ {
		col = mix3(col, g.colors[i+1], band(g.blend[i], g.fade[i], t))
	}
	col = mix3(col, g.colors[5], band(g.maxBlend[0], g.maxBlend[2], t))
	col = mix3(col, g.colors[6], band(g.maxBlend[1], g.maxBlend[3], t))
	return col
}

// Gradient maps t through the palette with the record's band layout.
func (u *Uniforms) Gradient(t float32) mgl32.Vec3 {
	g := gradient{u.Colors, u.Blend, u.Fade, u.MaxBlend, u.GradientShift}
	return g.at(t)
}

// Kernel is the CPU form of shader.ThermalFragment.
func Kernel(b gpu.Bindings) gpu.FragmentFunc {
	drawMap := b.Texture("drawMap")
	maskMap := b.Texture("maskMap")
	textureMap := b.Texture("textureMap")
	time := b.Float("time")
	scale := b.Vec2("scale")
	offset := b.Vec2("offset")
	power := b.Float("power")
	blendVideo := b.Float("blendVideo")
	intensity := b.Float("effectIntensity")
	sat := b.Float("colorSaturation")
	size := b.Float("interactionSize")
	vp := b.Vec2("uViewport")
	inv := b.Mat4("uInverse")

	g := gradient{
		blend:    b.Vec4("blend"),
		fade:     b.Vec4("fade"),
		maxBlend: b.Vec4("maxBlend"),
		shift:    b.Float("gradientShift"),
	}
	for i := range g.colors {
		g.colors[i] = b.Vec3("color" + string(rune('1'+i)))
	}

	o := gpu.Clamp(b.Float("opacity"), 0, 1)
	a := gpu.Clamp(b.Float("amount"), 0, 1)
	v := o * a

	return func(s gpu.TextureSampler, f gpu.Fragment) mgl32.Vec4 {
		duv := mgl32.Vec2{f.Coord[0] / vp[0], f.Coord[1] / vp[1]}
		local := inv.Mul4x1(mgl32.Vec4{duv[0]*2 - 1, duv[1]*2 - 1, 0, 1})

		uv := mgl32.Vec2{
			local[0]/scale[0] + 0.5 + offset[0],
			local[1]/scale[1] + 0.5 + offset[1],
		}

		mask := s.Sample(maskMap, uv)[3]

		heat := s.Sample(drawMap, duv)[2] * mask * size

		noiseAnim := SmoothNoise(uv.Mul(5).Add(mgl32.Vec2{time, time * 1.2}))
		waveAnim := 0.5 + 0.5*gpu.Sin(time*0.5+uv[1]*8)
		heat += 0.8 * gpu.Mix(noiseAnim, waveAnim, 1)

		m := gpu.Pow(heat, power)

		final := saturation(g.at(m), sat).Mul(mask * (1 + m*1.5))

		source := s.Sample(textureMap, uv).Vec3().Mul(mask)
		final = mix3(source, final, blendVideo)

		final = final.Mul(v * intensity * mask)
		return final.Vec4(mask * v * intensity)
	}
}
