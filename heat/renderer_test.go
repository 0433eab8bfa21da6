package heat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/softdevice"
)

func newTestRenderer(t *testing.T) (*softdevice.Device, *Renderer) {
	t.Helper()
	dev := softdevice.New(16, 16)
	r, err := New(dev, Options{Size: 16})
	if err != nil {
		t.Fatal(err)
	}
	r.Resize(100, 100)
	return dev, r
}

func TestTextureAlternates(t *testing.T) {
	_, r := newTestRenderer(t)
	defer r.Dispose()

	start := r.Texture()
	prev := start
	for i := 1; i <= 6; i++ {
		if err := r.Render(); err != nil {
			t.Fatal(err)
		}
		got := r.Texture()
		if got == prev {
			t.Fatalf("render %d returned the same surface as before", i)
		}
		if (i%2 == 0) != (got == start) {
			t.Fatalf("render %d: surface identity out of phase", i)
		}
		prev = got
	}
}

func TestDepositCentersOnPointer(t *testing.T) {
	dev, r := newTestRenderer(t)
	defer r.Dispose()

	r.UpdatePosition(mgl32.Vec2{0, 0}, true)
	r.UpdateDraw(1)
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	center := dev.Texel(r.Texture(), 8, 8)
	corner := dev.Texel(r.Texture(), 0, 0)
	if center[2] <= 0 {
		t.Fatalf("no heat at the pointer: %v", center)
	}
	if corner[2] != 0 {
		t.Errorf("heat outside the brush: %v", corner)
	}
}

func TestHeatDecaysWithoutInput(t *testing.T) {
	dev, r := newTestRenderer(t)
	defer r.Dispose()

	r.UpdatePosition(mgl32.Vec2{0.1, -0.2}, true)
	r.UpdateDirection(mgl32.Vec2{0.01, 0.02})
	r.UpdateDraw(1.3)
	for i := 0; i < 10; i++ {
		if err := r.Render(); err != nil {
			t.Fatal(err)
		}
	}

	r.UpdateDraw(0)
	r.UpdateDirection(mgl32.Vec2{})
	prev := dev.Sum(r.Texture())[2]
	if prev <= 0 {
		t.Fatalf("no heat accumulated")
	}
	for i := 0; i < 60; i++ {
		if err := r.Render(); err != nil {
			t.Fatal(err)
		}
		sum := dev.Sum(r.Texture())[2]
		if sum >= prev {
			t.Fatalf("frame %d: heat %v did not drop below %v", i, sum, prev)
		}
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if c := dev.Texel(r.Texture(), x, y); c[2] < 0 {
					t.Fatalf("frame %d: negative heat %v at %d,%d", i, c[2], x, y)
				}
			}
		}
		prev = sum
	}
}

func TestResizeIgnoresDegenerateBounds(t *testing.T) {
	_, r := newTestRenderer(t)
	defer r.Dispose()

	before := r.u
	r.Resize(0, 100)
	r.Resize(100, 0)
	if r.u != before {
		t.Fatalf("degenerate resize changed state: %+v", r.u)
	}

	r.Resize(200, 500)
	if want := float32(DesktopRadius * 0.5); r.u.radius[2] != want {
		t.Errorf("radius = %v, want %v", r.u.radius[2], want)
	}
	if r.u.resolution != (mgl32.Vec3{200, 500, 1}) {
		t.Errorf("resolution = %v", r.u.resolution)
	}
}

func TestTouchRadius(t *testing.T) {
	dev := softdevice.New(1, 1)
	r, err := New(dev, Options{Size: 4, Touch: true})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Dispose()
	r.Resize(100, 1000)
	if r.u.radius[2] != TouchRadius {
		t.Errorf("radius = %v, want %v", r.u.radius[2], TouchRadius)
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	dev, r := newTestRenderer(t)
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	r.Dispose()
	r.Dispose()

	s := dev.Stats()
	if s.Live() != 0 {
		t.Errorf("leaked resources: %+v", s)
	}
	if s.DoubleReleases != 0 {
		t.Errorf("double releases: %d", s.DoubleReleases)
	}
	if err := r.Render(); err == nil {
		t.Error("render after dispose succeeded")
	}
	if r.Texture() != nil {
		t.Error("texture available after dispose")
	}
}

// centroid returns the heat-weighted texel position of t.
func centroid(dev *softdevice.Device, r *Renderer) (cx, cy float64) {
	var sum float64
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			b := float64(dev.Texel(r.Texture(), x, y)[2])
			cx += b * float64(x)
			cy += b * float64(y)
			sum += b
		}
	}
	return cx / sum, cy / sum
}

func TestDirectionAdvectsHeat(t *testing.T) {
	dev, r := newTestRenderer(t)
	defer r.Dispose()

	r.UpdatePosition(mgl32.Vec2{0, 0}, true)
	r.UpdateDraw(1)
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	cx0, cy0 := centroid(dev, r)
	if d := cx0 - 7.5; d > 1e-3 || d < -1e-3 {
		t.Fatalf("deposit centroid x = %v, want 7.5", cx0)
	}

	// Heat is pulled along +x and -y: R takes the negated x movement, G the
	// y movement, both far past the clamp.
	r.UpdateDraw(0)
	r.UpdateDirection(mgl32.Vec2{1, 1})
	for i := 0; i < 3; i++ {
		if err := r.Render(); err != nil {
			t.Fatal(err)
		}
	}
	cx1, cy1 := centroid(dev, r)
	if cx1 <= cx0+0.01 {
		t.Errorf("heat did not move along +x: %v -> %v", cx0, cx1)
	}
	if cy1 >= cy0-0.01 {
		t.Errorf("heat did not move along -y: %v -> %v", cy0, cy1)
	}

	center := dev.Texel(r.Texture(), 8, 8)
	if center[0] != -1 || center[1] != 1 {
		t.Errorf("direction channels at the pointer = (%v, %v), want clamped (-1, 1)", center[0], center[1])
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := dev.Texel(r.Texture(), x, y)
			if c[0] < -1 || c[0] > 1 || c[1] < -1 || c[1] > 1 {
				t.Fatalf("direction channels %v out of range at %d,%d", c, x, y)
			}
		}
	}
}
