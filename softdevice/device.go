// Package softdevice is a CPU implementation of gpu.Device. Each program
// runs its Go kernel per covered pixel. It also keeps live resource counts,
// which makes it the reference backend for tests and for headless
// recording.
package softdevice

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
)

var errReleased = errors.New("resource already released")

// Stats counts live resources and misuse.
type Stats struct {
	Textures       int
	Targets        int
	Programs       int
	Meshes         int
	DoubleReleases int
	Draws          int
}

// Live returns the number of resources not yet released.
func (s Stats) Live() int {
	return s.Textures + s.Targets + s.Programs + s.Meshes
}

// Device renders on the CPU.
type Device struct {
	screen *surface
	stats  Stats
}

// New creates a device whose default framebuffer is width x height.
func New(width, height int) *Device {
	return &Device{screen: newSurface(width, height, gpu.WrapClamp, true)}
}

// Stats returns a snapshot of the resource counters.
func (d *Device) Stats() Stats {
	return d.stats
}

type texture struct {
	dev      *Device
	surf     *surface
	owned    bool // owned by a render target; released with it
	released bool
}

func (t *texture) Size() (int, int) { return t.surf.width, t.surf.height }

func (t *texture) Release() {
	if t.owned {
		return
	}
	if t.released {
		t.dev.stats.DoubleReleases++
		return
	}
	t.released = true
	t.dev.stats.Textures--
}

type target struct {
	dev      *Device
	tex      *texture
	released bool
}

func (t *target) Texture() gpu.Texture { return t.tex }
func (t *target) Size() (int, int)     { return t.tex.Size() }

func (t *target) Release() {
	if t.released {
		t.dev.stats.DoubleReleases++
		return
	}
	t.released = true
	t.tex.released = true
	t.dev.stats.Targets--
}

type program struct {
	dev      *Device
	name     string
	kernel   gpu.Kernel
	released bool
}

func (p *program) Release() {
	if p.released {
		p.dev.stats.DoubleReleases++
		return
	}
	p.released = true
	p.dev.stats.Programs--
}

type mesh struct {
	dev      *Device
	released bool
}

func (m *mesh) Release() {
	if m.released {
		m.dev.stats.DoubleReleases++
		return
	}
	m.released = true
	m.dev.stats.Meshes--
}

func (d *Device) NewTexture(img image.Image, opts gpu.TextureOptions) (gpu.Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("texture image is nil")
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(img.Bounds())
		draw.Draw(nrgba, nrgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	d.stats.Textures++
	return &texture{dev: d, surf: loadImage(nrgba, opts.Wrap)}, nil
}

func (d *Device) NewRenderTarget(width, height int, opts gpu.TextureOptions) (gpu.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target size %dx%d", width, height)
	}
	t := &target{dev: d}
	t.tex = &texture{dev: d, surf: newSurface(width, height, opts.Wrap, false), owned: true}
	d.stats.Targets++
	return t, nil
}

func (d *Device) NewProgram(src gpu.ProgramSource) (gpu.Program, error) {
	if src.Kernel == nil {
		return nil, fmt.Errorf("program %s has no kernel", src.Name)
	}
	d.stats.Programs++
	return &program{dev: d, name: src.Name, kernel: src.Kernel}, nil
}

func (d *Device) NewQuad() (gpu.Mesh, error) {
	d.stats.Meshes++
	return &mesh{dev: d}, nil
}

func (d *Device) Resize(width, height int) {
	if width == d.screen.width && height == d.screen.height {
		return
	}
	d.screen = newSurface(width, height, gpu.WrapClamp, true)
}

func (d *Device) Size() (int, int) {
	return d.screen.width, d.screen.height
}

func (d *Device) surfaceFor(rt gpu.RenderTarget) (*surface, error) {
	if rt == nil {
		return d.screen, nil
	}
	t, ok := rt.(*target)
	if !ok {
		return nil, fmt.Errorf("render target %T does not belong to this device", rt)
	}
	if t.released {
		return nil, fmt.Errorf("render target: %w", errReleased)
	}
	return t.tex.surf, nil
}

func (d *Device) Clear(rt gpu.RenderTarget, rgba mgl32.Vec4) {
	s, err := d.surfaceFor(rt)
	if err != nil {
		return
	}
	s.fill(rgba)
}

// Sample implements gpu.TextureSampler for kernels.
func (d *Device) Sample(t gpu.Texture, uv mgl32.Vec2) mgl32.Vec4 {
	tex, ok := t.(*texture)
	if !ok || tex.released {
		return mgl32.Vec4{}
	}
	return tex.surf.sample(uv)
}

func (d *Device) Draw(rt gpu.RenderTarget, call gpu.DrawCall) error {
	dst, err := d.surfaceFor(rt)
	if err != nil {
		return err
	}
	p, ok := call.Program.(*program)
	if !ok {
		return fmt.Errorf("program %T does not belong to this device", call.Program)
	}
	if p.released {
		return fmt.Errorf("program %s: %w", p.name, errReleased)
	}
	m, ok := call.Mesh.(*mesh)
	if !ok || m.released {
		return fmt.Errorf("mesh missing or released")
	}
	for _, u := range call.Uniforms {
		if s, ok := u.Value.(gpu.Sampler); ok {
			if tex, ok := s.Texture.(*texture); ok && tex.released {
				return fmt.Errorf("sampler %s: %w", u.Name, errReleased)
			}
		}
	}
	d.stats.Draws++

	if call.Transform.Det() == 0 {
		return nil
	}
	inv := call.Transform.Inv()
	shade := p.kernel(call.Uniforms)

	w, h := float32(dst.width), float32(dst.height)
	for y := 0; y < dst.height; y++ {
		for x := 0; x < dst.width; x++ {
			coord := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
			clip := mgl32.Vec4{coord[0]/w*2 - 1, coord[1]/h*2 - 1, 0, 1}
			local := inv.Mul4x1(clip)
			if local[0] < -0.5 || local[0] > 0.5 || local[1] < -0.5 || local[1] > 0.5 {
				continue
			}
			src := shade(d, gpu.Fragment{Coord: coord})
			if dst.unorm {
				for k := range src {
					src[k] = gpu.Clamp(src[k], 0, 1)
				}
			}
			dst.set(x, y, blend(src, dst.at(x, y)))
		}
	}
	return nil
}

// blend is straight-alpha normal blending.
func blend(src, dst mgl32.Vec4) mgl32.Vec4 {
	a := src[3]
	return mgl32.Vec4{
		src[0]*a + dst[0]*(1-a),
		src[1]*a + dst[1]*(1-a),
		src[2]*a + dst[2]*(1-a),
		a + dst[3]*(1-a),
	}
}

func (d *Device) ReadPixels(rt gpu.RenderTarget) (*image.RGBA, error) {
	s, err := d.surfaceFor(rt)
	if err != nil {
		return nil, err
	}
	return s.image(), nil
}

// Texel returns the raw float value of a texel, origin bottom-left.
func (d *Device) Texel(t gpu.Texture, x, y int) mgl32.Vec4 {
	tex, ok := t.(*texture)
	if !ok {
		return mgl32.Vec4{}
	}
	return tex.surf.at(x, y)
}

// Sum adds every texel of t channel-wise.
func (d *Device) Sum(t gpu.Texture) mgl32.Vec4 {
	var sum mgl32.Vec4
	tex, ok := t.(*texture)
	if !ok {
		return sum
	}
	for y := 0; y < tex.surf.height; y++ {
		for x := 0; x < tex.surf.width; x++ {
			sum = sum.Add(tex.surf.at(x, y))
		}
	}
	return sum
}

var _ gpu.Device = (*Device)(nil)
var _ gpu.TextureSampler = (*Device)(nil)
