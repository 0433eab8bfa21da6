package thermal

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
	"github.com/richinsley/gothermal/options"
	"github.com/richinsley/gothermal/softdevice"
)

func newMaterial(t *testing.T, dev *softdevice.Device, mask image.Image) *Material {
	t.Helper()
	maskTex, err := dev.NewTexture(mask, gpu.TextureOptions{})
	if err != nil {
		t.Fatal(err)
	}
	heat, err := dev.NewRenderTarget(4, 4, gpu.TextureOptions{})
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(dev, Textures{Draw: heat.Texture(), Mask: maskTex, Color: maskTex})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		m.Dispose()
		heat.Release()
		maskTex.Release()
	})
	return m
}

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func lum(c mgl32.Vec3) float32 {
	return c.Dot(luminance)
}

func TestGradientEndpoints(t *testing.T) {
	dev := softdevice.New(4, 4)
	m := newMaterial(t, dev, fill(1, 1, color.NRGBA{A: 255}))
	u := m.Uniforms()

	if got := u.Gradient(0); got != u.Colors[0] {
		t.Errorf("gradient(0) = %v, want %v", got, u.Colors[0])
	}

	hot := u.Gradient(1)
	if d := hot.Sub(u.Colors[6]).Len(); d > 0.01 {
		t.Errorf("gradient(1) = %v is %v away from %v", hot, d, u.Colors[6])
	}
}

func TestGradientWarmsMonotonically(t *testing.T) {
	dev := softdevice.New(4, 4)
	m := newMaterial(t, dev, fill(1, 1, color.NRGBA{A: 255}))
	u := m.Uniforms()

	prev := lum(u.Gradient(0))
	for i := 1; i <= 200; i++ {
		cur := lum(u.Gradient(float32(i) / 200))
		if cur < prev-1e-6 {
			t.Fatalf("luminance fell from %v to %v at t=%v", prev, cur, float32(i)/200)
		}
		prev = cur
	}
}

func TestGradientShiftSaturates(t *testing.T) {
	dev := softdevice.New(4, 4)
	m := newMaterial(t, dev, fill(1, 1, color.NRGBA{A: 255}))
	shift := 2.0
	m.UpdateUniforms(Update{GradientShift: &shift})
	u := m.Uniforms()
	if a, b := u.Gradient(0), u.Gradient(1); a != b {
		t.Errorf("fully shifted gradient still varies: %v vs %v", a, b)
	}
}

func TestSparseUpdates(t *testing.T) {
	dev := softdevice.New(4, 4)
	m := newMaterial(t, dev, fill(1, 1, color.NRGBA{A: 255}))
	before := m.Uniforms()

	opacity := 0.25
	m.UpdateUniforms(Update{Opacity: &opacity})
	after := m.Uniforms()
	if after.Opacity != 0.25 {
		t.Errorf("opacity = %v", after.Opacity)
	}
	after.Opacity = before.Opacity
	if after != before {
		t.Errorf("untouched fields changed")
	}

	scale := mgl32.Vec2{2, 2}
	m.UpdateTransform(Transform{Scale: &scale})
	if got := m.Uniforms(); got.Scale != scale || got.Offset != (mgl32.Vec2{}) {
		t.Errorf("transform = %v %v", got.Scale, got.Offset)
	}

	p := options.DefaultParams()
	p.InteractionRadius = 2.5
	p.VideoBlendAmount = 0.5
	m.UpdateFromParameters(p)
	got := m.Uniforms()
	if got.InteractionSize != 2.5 || got.BlendVideo != 0.5 || got.Opacity != 0.25 {
		t.Errorf("after parameters: %+v", got)
	}
}

func TestBindingsAreTyped(t *testing.T) {
	dev := softdevice.New(4, 4)
	m := newMaterial(t, dev, fill(1, 1, color.NRGBA{A: 255}))
	u := m.Uniforms()
	b := u.Bindings()

	if got := b.Vec3("color7"); got != u.Colors[6] {
		t.Errorf("color7 = %v", got)
	}
	if got := b.Vec4("maxBlend"); got != MaxBlend {
		t.Errorf("maxBlend = %v", got)
	}
	if b.Texture("maskMap") == nil || b.Texture("drawMap") == nil {
		t.Error("samplers missing")
	}
	if got := b.Float("effectIntensity"); math.Abs(float64(got)-1.3) > 1e-6 {
		t.Errorf("effectIntensity = %v", got)
	}
}

func TestOutputMaskedToAlpha(t *testing.T) {
	// left half opaque, right half transparent
	mask := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			mask.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	for _, tm := range []float64{0, 1.7, 13} {
		dev := softdevice.New(8, 8)
		m := newMaterial(t, dev, mask)
		intensity, sat, size := 5.0, 3.0, 3.0
		m.UpdateUniforms(Update{Time: &tm, EffectIntensity: &intensity, ColorSaturation: &sat, InteractionSize: &size})

		quad, _ := dev.NewQuad()
		if err := m.Draw(dev, nil, quad, mgl32.Scale3D(2, 2, 1)); err != nil {
			t.Fatal(err)
		}
		quad.Release()

		img, _ := dev.ReadPixels(nil)
		for y := 0; y < 8; y++ {
			if c := img.RGBAAt(7, y); c.A != 0 || c.R != 0 || c.G != 0 || c.B != 0 {
				t.Errorf("time %v: pixel (7,%d) = %v outside the mask", tm, y, c)
			}
			if c := img.RGBAAt(0, y); c.A == 0 {
				t.Errorf("time %v: pixel (0,%d) is transparent inside the mask", tm, y)
			}
		}
	}
}

func TestDisposeReleasesProgram(t *testing.T) {
	dev := softdevice.New(1, 1)
	m, err := New(dev, Textures{})
	if err != nil {
		t.Fatal(err)
	}
	m.Dispose()
	m.Dispose()
	if s := dev.Stats(); s.Live() != 0 || s.DoubleReleases != 0 {
		t.Errorf("stats = %+v", s)
	}
	quad, _ := dev.NewQuad()
	defer quad.Release()
	if err := m.Draw(dev, nil, quad, mgl32.Ident4()); err == nil {
		t.Error("draw after dispose succeeded")
	}
}

func TestSmoothNoise(t *testing.T) {
	tests := []struct {
		name string
		p    mgl32.Vec2
	}{
		{"origin", mgl32.Vec2{0, 0}},
		{"lattice point", mgl32.Vec2{3, -2}},
		{"cell interior", mgl32.Vec2{1.25, 4.75}},
		{"animated offset", mgl32.Vec2{2.5 + 7.3, 1.1 + 7.3*1.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := SmoothNoise(tt.p)
			if n < 0 || n > 1 {
				t.Fatalf("SmoothNoise(%v) = %v, outside [0,1]", tt.p, n)
			}
			if again := SmoothNoise(tt.p); again != n {
				t.Errorf("SmoothNoise(%v) not deterministic: %v then %v", tt.p, n, again)
			}
		})
	}

	// On the lattice the interpolation collapses to the hash itself.
	if got, want := SmoothNoise(mgl32.Vec2{3, -2}), noise(mgl32.Vec2{3, -2}); got != want {
		t.Errorf("lattice value = %v, want hash %v", got, want)
	}
}
