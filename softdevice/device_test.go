package softdevice

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
)

func solid(c mgl32.Vec4) gpu.Kernel {
	return func(gpu.Bindings) gpu.FragmentFunc {
		return func(gpu.TextureSampler, gpu.Fragment) mgl32.Vec4 { return c }
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestBlendStraightAlpha(t *testing.T) {
	tests := []struct {
		name     string
		src, dst mgl32.Vec4
		want     mgl32.Vec4
	}{
		{"opaque replaces", mgl32.Vec4{1, 0, 0, 1}, mgl32.Vec4{0, 1, 0, 1}, mgl32.Vec4{1, 0, 0, 1}},
		{"transparent keeps", mgl32.Vec4{1, 0, 0, 0}, mgl32.Vec4{0, 1, 0, 1}, mgl32.Vec4{0, 1, 0, 1}},
		{"half over clear", mgl32.Vec4{1, 1, 1, 0.5}, mgl32.Vec4{}, mgl32.Vec4{0.5, 0.5, 0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := blend(tt.src, tt.dst)
			for k := range got {
				if !near(got[k], tt.want[k]) {
					t.Fatalf("blend = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDrawCoversQuad(t *testing.T) {
	d := New(4, 4)
	p, _ := d.NewProgram(gpu.ProgramSource{Name: "solid", Kernel: solid(mgl32.Vec4{0, 0, 1, 1})})
	m, _ := d.NewQuad()

	// scale the unit plane down to the left half of the screen
	half := mgl32.Translate3D(-0.5, 0, 0).Mul4(mgl32.Scale3D(1, 2, 1))
	if err := d.Draw(nil, gpu.DrawCall{Program: p, Mesh: m, Transform: half}); err != nil {
		t.Fatal(err)
	}
	img, err := d.ReadPixels(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got.B != 255 {
		t.Errorf("left pixel = %v, want blue", got)
	}
	if got := img.RGBAAt(3, 0); got.B != 0 {
		t.Errorf("right pixel = %v, want untouched", got)
	}
}

func TestScreenClampsAndTargetsDoNot(t *testing.T) {
	d := New(2, 2)
	p, _ := d.NewProgram(gpu.ProgramSource{Name: "hot", Kernel: solid(mgl32.Vec4{3, -2, 0, 1})})
	m, _ := d.NewQuad()
	rt, _ := d.NewRenderTarget(2, 2, gpu.TextureOptions{})

	call := gpu.DrawCall{Program: p, Mesh: m, Transform: mgl32.Scale3D(2, 2, 1)}
	if err := d.Draw(rt, call); err != nil {
		t.Fatal(err)
	}
	if err := d.Draw(nil, call); err != nil {
		t.Fatal(err)
	}
	if got := d.Texel(rt.Texture(), 1, 1); got[0] != 3 || got[1] != -2 {
		t.Errorf("float target texel = %v, want unclamped", got)
	}
	if got := d.screen.at(1, 1); got[0] != 1 || got[1] != 0 {
		t.Errorf("screen texel = %v, want clamped", got)
	}
}

func TestTextureOrientation(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255}) // top
	img.SetNRGBA(0, 1, color.NRGBA{G: 255, A: 255}) // bottom

	d := New(1, 1)
	tex, err := d.NewTexture(img, gpu.TextureOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if top := d.Sample(tex, mgl32.Vec2{0.5, 0.99}); top[0] < 0.99 {
		t.Errorf("v=1 sample = %v, want the image's top row", top)
	}
	if bottom := d.Sample(tex, mgl32.Vec2{0.5, 0.01}); bottom[1] < 0.99 {
		t.Errorf("v=0 sample = %v, want the image's bottom row", bottom)
	}
}

func TestSampleWrap(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	d := New(1, 1)
	clamp, _ := d.NewTexture(img, gpu.TextureOptions{Wrap: gpu.WrapClamp})
	repeat, _ := d.NewTexture(img, gpu.TextureOptions{Wrap: gpu.WrapRepeat})

	if got := d.Sample(clamp, mgl32.Vec2{1.25, 0.5}); !near(got[2], 1) {
		t.Errorf("clamped sample past the edge = %v, want last texel", got)
	}
	if got := d.Sample(repeat, mgl32.Vec2{1.25, 0.5}); !near(got[0], 1) {
		t.Errorf("repeated sample past the edge = %v, want first texel", got)
	}
}

func TestReleaseAccounting(t *testing.T) {
	d := New(1, 1)
	tex, _ := d.NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)), gpu.TextureOptions{})
	rt, _ := d.NewRenderTarget(1, 1, gpu.TextureOptions{})
	p, _ := d.NewProgram(gpu.ProgramSource{Name: "p", Kernel: solid(mgl32.Vec4{})})
	m, _ := d.NewQuad()

	if got := d.Stats().Live(); got != 4 {
		t.Fatalf("live = %d, want 4", got)
	}

	// a target's texture belongs to the target
	rt.Texture().Release()
	if got := d.Stats().Targets; got != 1 {
		t.Fatalf("targets = %d after releasing its texture, want 1", got)
	}

	for _, r := range []interface{ Release() }{tex, rt, p, m} {
		r.Release()
	}
	s := d.Stats()
	if s.Live() != 0 || s.DoubleReleases != 0 {
		t.Fatalf("stats after release = %+v", s)
	}

	tex.Release()
	m.Release()
	if got := d.Stats().DoubleReleases; got != 2 {
		t.Errorf("double releases = %d, want 2", got)
	}
}

func TestDrawRejectsReleasedResources(t *testing.T) {
	d := New(1, 1)
	p, _ := d.NewProgram(gpu.ProgramSource{Name: "p", Kernel: solid(mgl32.Vec4{})})
	m, _ := d.NewQuad()
	tex, _ := d.NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)), gpu.TextureOptions{})
	tex.Release()

	err := d.Draw(nil, gpu.DrawCall{
		Program:   p,
		Mesh:      m,
		Transform: mgl32.Ident4(),
		Uniforms:  gpu.Bindings{{Name: "uTexture", Value: gpu.Sampler{Texture: tex}}},
	})
	if !errors.Is(err, errReleased) {
		t.Fatalf("draw with released sampler: err = %v", err)
	}

	p.Release()
	if err := d.Draw(nil, gpu.DrawCall{Program: p, Mesh: m, Transform: mgl32.Ident4()}); !errors.Is(err, errReleased) {
		t.Fatalf("draw with released program: err = %v", err)
	}
	if _, err := d.NewProgram(gpu.ProgramSource{Name: "empty"}); err == nil {
		t.Error("program without a kernel was accepted")
	}
}
