package gpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type stubTexture struct{ w, h int }

func (s stubTexture) Size() (int, int) { return s.w, s.h }
func (stubTexture) Release()           {}

type constSampler mgl32.Vec4

func (c constSampler) Sample(Texture, mgl32.Vec2) mgl32.Vec4 { return mgl32.Vec4(c) }

func TestBindingsLookup(t *testing.T) {
	tex := stubTexture{4, 2}
	b := Bindings{
		{Name: "f", Value: Float(0.5)},
		{Name: "v2", Value: Vec2{1, 2}},
		{Name: "v4", Value: Vec4{1, 2, 3, 4}},
		{Name: "m", Value: Mat4(mgl32.Ident4())},
		{Name: "tex", Value: Sampler{Texture: tex}},
	}

	if got := b.Float("f"); got != 0.5 {
		t.Errorf("Float = %v", got)
	}
	if got := b.Vec2("v2"); got != (mgl32.Vec2{1, 2}) {
		t.Errorf("Vec2 = %v", got)
	}
	if got := b.Vec4("v4"); got != (mgl32.Vec4{1, 2, 3, 4}) {
		t.Errorf("Vec4 = %v", got)
	}
	if got := b.Mat4("m"); got != mgl32.Ident4() {
		t.Errorf("Mat4 = %v", got)
	}
	if got := b.Texture("tex"); got != tex {
		t.Errorf("Texture = %v", got)
	}

	tests := []struct {
		name string
		get  func() bool
	}{
		{"missing float", func() bool { return b.Float("nope") == 0 }},
		{"float read as vec2", func() bool { return b.Vec2("f") == mgl32.Vec2{} }},
		{"vec2 read as texture", func() bool { return b.Texture("v2") == nil }},
		{"texture read as float", func() bool { return b.Float("tex") == 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.get() {
				t.Error("expected the zero value")
			}
		})
	}
}

func TestUniformKinds(t *testing.T) {
	tests := []struct {
		value Value
		want  Kind
	}{
		{Float(1), KindFloat},
		{Vec2{}, KindVec2},
		{Vec3{}, KindVec3},
		{Vec4{}, KindVec4},
		{Mat4{}, KindMat4},
		{Sampler{}, KindSampler},
	}
	for _, tt := range tests {
		if got := tt.value.Kind(); got != tt.want {
			t.Errorf("%T.Kind() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestFragmentFuncSamplesBoundTexture(t *testing.T) {
	var kernel Kernel = func(b Bindings) FragmentFunc {
		tex := b.Texture("src")
		return func(s TextureSampler, f Fragment) mgl32.Vec4 {
			return s.Sample(tex, f.Coord)
		}
	}
	shade := kernel(Bindings{{Name: "src", Value: Sampler{Texture: stubTexture{1, 1}}}})
	if got := shade(constSampler{0, 0, 1, 1}, Fragment{}); got != (mgl32.Vec4{0, 0, 1, 1}) {
		t.Errorf("sampled %v", got)
	}
}
