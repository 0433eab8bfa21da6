// Package heat runs the pointer heat simulation: a pair of floating point
// surfaces that take turns being read and written every frame.
package heat

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
	"github.com/richinsley/gothermal/shader"
)

const (
	// TextureSize is the default edge length of the square heat surfaces.
	TextureSize = 256
	// RadiusRatio scales the brush with the container height.
	RadiusRatio   = 1000
	DesktopRadius = 220
	TouchRadius   = 350

	// RadiusInner and RadiusOuter are the smoothstep edges of the brush
	// falloff in radius units.
	RadiusInner   = -8
	RadiusOuter   = 0.9
	DefaultRadius = 150

	FadeDamping         = 0.98
	DirectionMultiplier = 100
	// Advection scales the direction offset applied when sampling the
	// previous frame.
	Advection = 0.01
)

// Options tune the renderer at construction.
type Options struct {
	Size        int
	RadiusRatio float64
	// Touch selects the larger brush used for touch input.
	Touch bool
}

type uniforms struct {
	radius     mgl32.Vec3
	position   mgl32.Vec2
	direction  mgl32.Vec4
	resolution mgl32.Vec3
	fade       float32
	draw       float32
}

// Renderer owns the ping-pong surfaces and the feedback program.
type Renderer struct {
	dev     gpu.Device
	opts    Options
	targets [2]gpu.RenderTarget
	read    int
	write   int
	program gpu.Program
	mesh    gpu.Mesh
	u       uniforms
}

// New creates both surfaces and the program. On error nothing is leaked.
func New(dev gpu.Device, opts Options) (r *Renderer, err error) {
	if opts.Size <= 0 {
		opts.Size = TextureSize
	}
	if opts.RadiusRatio <= 0 {
		opts.RadiusRatio = RadiusRatio
	}

	r = &Renderer{
		dev:   dev,
		opts:  opts,
		read:  1,
		write: 0,
		u: uniforms{
			radius:     mgl32.Vec3{RadiusInner, RadiusOuter, DefaultRadius},
			resolution: mgl32.Vec3{float32(opts.Size), float32(opts.Size), 1},
			fade:       FadeDamping,
		},
	}
	defer func() {
		if err != nil {
			r.Dispose()
			r = nil
		}
	}()

	for i := range r.targets {
		r.targets[i], err = dev.NewRenderTarget(opts.Size, opts.Size, gpu.TextureOptions{Wrap: gpu.WrapClamp, Mipmap: true})
		if err != nil {
			return r, fmt.Errorf("failed to create heat surface %d: %w", i, err)
		}
	}
	r.program, err = dev.NewProgram(gpu.ProgramSource{
		Name:     "heat",
		Fragment: shader.HeatFragment,
		Kernel:   Kernel,
	})
	if err != nil {
		return r, fmt.Errorf("failed to create heat program: %w", err)
	}
	r.mesh, err = dev.NewQuad()
	if err != nil {
		return r, fmt.Errorf("failed to create heat quad: %w", err)
	}
	return r, nil
}

// Resize fits the brush to a container of width x height. Degenerate sizes
// are ignored; the next valid resize corrects the state.
func (r *Renderer) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	base := float64(DesktopRadius)
	if r.opts.Touch {
		base = TouchRadius
	}
	r.UpdateRadius(base * (height / r.opts.RadiusRatio))
	r.u.resolution = mgl32.Vec3{float32(width), float32(height), 1}
}

// UpdateRadius sets the brush radius in pixels.
func (r *Renderer) UpdateRadius(px float64) {
	r.u.radius[2] = float32(px)
}

// UpdatePosition moves the brush. Normalized positions are in [-1,1] and
// are mapped into texture space.
func (r *Renderer) UpdatePosition(p mgl32.Vec2, normalized bool) {
	if normalized {
		p = mgl32.Vec2{0.5*p[0] + 0.5, 0.5*p[1] + 0.5}
	}
	r.u.position = p
}

// UpdateDirection sets the movement used for advection this frame.
func (r *Renderer) UpdateDirection(d mgl32.Vec2) {
	r.u.direction = mgl32.Vec4{d[0], d[1], 0, DirectionMultiplier}
}

// UpdateDraw sets the heat deposited at the brush center this frame.
func (r *Renderer) UpdateDraw(v float64) {
	r.u.draw = float32(v)
}

func (r *Renderer) bindings(src gpu.Texture) gpu.Bindings {
	w, h := r.targets[r.write].Size()
	return gpu.Bindings{
		{Name: "uDraw", Value: gpu.Float(r.u.draw)},
		{Name: "uRadius", Value: gpu.Vec3(r.u.radius)},
		{Name: "uResolution", Value: gpu.Vec3(r.u.resolution)},
		{Name: "uPosition", Value: gpu.Vec2(r.u.position)},
		{Name: "uDirection", Value: gpu.Vec4(r.u.direction)},
		{Name: "uFadeDamping", Value: gpu.Float(r.u.fade)},
		{Name: "uAdvection", Value: gpu.Float(Advection)},
		{Name: "uViewport", Value: gpu.Vec2{float32(w), float32(h)}},
		{Name: "uTexture", Value: gpu.Sampler{Texture: src}},
	}
}

// Render advances the simulation one frame and swaps the surfaces.
func (r *Renderer) Render() error {
	if r.program == nil {
		return fmt.Errorf("heat renderer is disposed")
	}
	dst := r.targets[r.write]
	r.dev.Clear(dst, mgl32.Vec4{})
	err := r.dev.Draw(dst, gpu.DrawCall{
		Program:   r.program,
		Mesh:      r.mesh,
		Transform: mgl32.Ortho(-0.5, 0.5, -0.5, 0.5, -1, 1),
		Uniforms:  r.bindings(r.targets[r.read].Texture()),
	})
	if err != nil {
		return fmt.Errorf("heat pass failed: %w", err)
	}
	r.read, r.write = r.write, r.read
	return nil
}

// Texture returns the most recently written surface.
func (r *Renderer) Texture() gpu.Texture {
	if r.targets[r.read] == nil {
		return nil
	}
	return r.targets[r.read].Texture()
}

// Size is the edge length of the heat surfaces.
func (r *Renderer) Size() int {
	return r.opts.Size
}

// Dispose releases the surfaces, program and quad. Safe to call twice.
func (r *Renderer) Dispose() {
	for i, t := range r.targets {
		if t != nil {
			t.Release()
			r.targets[i] = nil
		}
	}
	if r.program != nil {
		r.program.Release()
		r.program = nil
	}
	if r.mesh != nil {
		r.mesh.Release()
		r.mesh = nil
	}
}
