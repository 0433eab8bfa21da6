// Package thermal owns the composite pass: heat mapped through a seven
// color gradient and masked to an image's alpha channel.
package thermal

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/anim"
	"github.com/richinsley/gothermal/gpu"
	"github.com/richinsley/gothermal/options"
	"github.com/richinsley/gothermal/shader"
)

// Palette runs from cold to hot.
var Palette = [7]string{
	"000000",
	"2d1b69",
	"40309a",
	"5648d8",
	"6b5bff",
	"9086ff",
	"c5c1ff",
}

var (
	// Blend and Fade are the centers and widths of the first four bands.
	Blend = mgl32.Vec4{0.4, 0.7, 0.81, 0.91}
	Fade  = mgl32.Vec4{1, 1, 0.72, 0.52}
	// MaxBlend holds the centers (x, y) and widths (z, w) of the last two.
	MaxBlend = mgl32.Vec4{0.8, 0.87, 0.5, 0.27}
)

// Uniforms is every value the composite program reads.
type Uniforms struct {
	DrawMap    gpu.Texture
	MaskMap    gpu.Texture
	TextureMap gpu.Texture

	Time            float32
	Opacity         float32
	Amount          float32
	Scale           mgl32.Vec2
	Offset          mgl32.Vec2
	Power           float32
	BlendVideo      float32
	EffectIntensity float32
	ColorSaturation float32
	GradientShift   float32
	InteractionSize float32

	Colors   [7]mgl32.Vec3
	Blend    mgl32.Vec4
	Fade     mgl32.Vec4
	MaxBlend mgl32.Vec4

	Viewport mgl32.Vec2
	Inverse  mgl32.Mat4
}

// Bindings renders the record for a draw call.
func (u *Uniforms) Bindings() gpu.Bindings {
	b := gpu.Bindings{
		{Name: "drawMap", Value: gpu.Sampler{Texture: u.DrawMap}},
		{Name: "maskMap", Value: gpu.Sampler{Texture: u.MaskMap}},
		{Name: "textureMap", Value: gpu.Sampler{Texture: u.TextureMap}},
		{Name: "time", Value: gpu.Float(u.Time)},
		{Name: "opacity", Value: gpu.Float(u.Opacity)},
		{Name: "amount", Value: gpu.Float(u.Amount)},
		{Name: "scale", Value: gpu.Vec2(u.Scale)},
		{Name: "offset", Value: gpu.Vec2(u.Offset)},
		{Name: "power", Value: gpu.Float(u.Power)},
		{Name: "blendVideo", Value: gpu.Float(u.BlendVideo)},
		{Name: "effectIntensity", Value: gpu.Float(u.EffectIntensity)},
		{Name: "colorSaturation", Value: gpu.Float(u.ColorSaturation)},
		{Name: "gradientShift", Value: gpu.Float(u.GradientShift)},
		{Name: "interactionSize", Value: gpu.Float(u.InteractionSize)},
	}
	for i, c := range u.Colors {
		b = append(b, gpu.Uniform{Name: fmt.Sprintf("color%d", i+1), Value: gpu.Vec3(c)})
	}
	return append(b,
		gpu.Uniform{Name: "blend", Value: gpu.Vec4(u.Blend)},
		gpu.Uniform{Name: "fade", Value: gpu.Vec4(u.Fade)},
		gpu.Uniform{Name: "maxBlend", Value: gpu.Vec4(u.MaxBlend)},
		gpu.Uniform{Name: "uViewport", Value: gpu.Vec2(u.Viewport)},
		gpu.Uniform{Name: "uInverse", Value: gpu.Mat4(u.Inverse)},
	)
}

// Textures names the samplers. Nil fields are left as they are.
type Textures struct {
	Draw  gpu.Texture
	Mask  gpu.Texture
	Color gpu.Texture
}

// Update is a sparse uniform update. Nil fields are left as they are.
type Update struct {
	Time            *float64
	Opacity         *float64
	Amount          *float64
	Power           *float64
	BlendVideo      *float64
	EffectIntensity *float64
	ColorSaturation *float64
	GradientShift   *float64
	InteractionSize *float64
}

// Transform moves the mask lookup. Nil fields are left as they are.
type Transform struct {
	Scale  *mgl32.Vec2
	Offset *mgl32.Vec2
}

// Material is the composite program plus its uniform record.
type Material struct {
	program gpu.Program
	u       Uniforms
}

// New compiles the composite program and seeds the uniforms from the
// default parameters.
func New(dev gpu.Device, tex Textures) (*Material, error) {
	m := &Material{
		u: Uniforms{
			Opacity:  1,
			Amount:   1,
			Scale:    mgl32.Vec2{1, 1},
			Blend:    Blend,
			Fade:     Fade,
			MaxBlend: MaxBlend,
			Inverse:  mgl32.Ident4(),
		},
	}
	for i, hex := range Palette {
		rgb, err := anim.HexToRGB(hex)
		if err != nil {
			return nil, err
		}
		m.u.Colors[i] = mgl32.Vec3(rgb)
	}
	m.UpdateTextures(tex)
	m.UpdateFromParameters(options.DefaultParams())

	p, err := dev.NewProgram(gpu.ProgramSource{
		Name:     "thermal",
		Fragment: shader.ThermalFragment,
		Kernel:   Kernel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create thermal program: %w", err)
	}
	m.program = p
	return m, nil
}

func (m *Material) UpdateTextures(t Textures) {
	if t.Draw != nil {
		m.u.DrawMap = t.Draw
	}
	if t.Mask != nil {
		m.u.MaskMap = t.Mask
	}
	if t.Color != nil {
		m.u.TextureMap = t.Color
	}
}

func set(dst *float32, v *float64) {
	if v != nil {
		*dst = float32(*v)
	}
}

// UpdateUniforms touches only the supplied fields.
func (m *Material) UpdateUniforms(up Update) {
	set(&m.u.Time, up.Time)
	set(&m.u.Opacity, up.Opacity)
	set(&m.u.Amount, up.Amount)
	set(&m.u.Power, up.Power)
	set(&m.u.BlendVideo, up.BlendVideo)
	set(&m.u.EffectIntensity, up.EffectIntensity)
	set(&m.u.ColorSaturation, up.ColorSaturation)
	set(&m.u.GradientShift, up.GradientShift)
	set(&m.u.InteractionSize, up.InteractionSize)
}

func (m *Material) UpdateTransform(t Transform) {
	if t.Scale != nil {
		m.u.Scale = *t.Scale
	}
	if t.Offset != nil {
		m.u.Offset = *t.Offset
	}
}

func (m *Material) UpdateTime(seconds float64) {
	m.u.Time = float32(seconds)
}

// UpdateFromParameters copies the knobs the composite reads.
func (m *Material) UpdateFromParameters(p options.Params) {
	m.UpdateUniforms(Update{
		EffectIntensity: &p.EffectIntensity,
		ColorSaturation: &p.ColorSaturation,
		GradientShift:   &p.GradientShift,
		InteractionSize: &p.InteractionRadius,
		Power:           &p.ContrastPower,
		BlendVideo:      &p.VideoBlendAmount,
	})
}

// UpdateViewport sets the size of the surface being drawn into.
func (m *Material) UpdateViewport(width, height int) {
	m.u.Viewport = mgl32.Vec2{float32(width), float32(height)}
}

// UpdateInverse sets the inverse of the mesh's clip transform.
func (m *Material) UpdateInverse(inv mgl32.Mat4) {
	m.u.Inverse = inv
}

// Uniforms returns a copy of the current record.
func (m *Material) Uniforms() Uniforms {
	return m.u
}

// Draw composites into target with the given mesh transform.
func (m *Material) Draw(dev gpu.Device, target gpu.RenderTarget, mesh gpu.Mesh, transform mgl32.Mat4) error {
	if m.program == nil {
		return fmt.Errorf("thermal material is disposed")
	}
	w, h := dev.Size()
	if target != nil {
		w, h = target.Size()
	}
	m.UpdateViewport(w, h)
	if transform.Det() != 0 {
		m.UpdateInverse(transform.Inv())
	}
	return dev.Draw(target, gpu.DrawCall{
		Program:   m.program,
		Mesh:      mesh,
		Transform: transform,
		Uniforms:  m.u.Bindings(),
	})
}

// Dispose releases the program. The textures belong to the caller.
func (m *Material) Dispose() {
	if m.program != nil {
		m.program.Release()
		m.program = nil
	}
	m.u.DrawMap, m.u.MaskMap, m.u.TextureMap = nil, nil, nil
}
