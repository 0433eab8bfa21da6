package gpu

import "github.com/go-gl/mathgl/mgl32"

// Kind tags the GPU type of a uniform value.
type Kind int

const (
	KindFloat Kind = iota
	KindVec2
	KindVec3
	KindVec4
	KindMat4
	KindSampler
)

// Value is a uniform value with a fixed GPU type.
type Value interface {
	Kind() Kind
}

type (
	Float float32
	Vec2  mgl32.Vec2
	Vec3  mgl32.Vec3
	Vec4  mgl32.Vec4
	Mat4  mgl32.Mat4
)

// Sampler binds a texture to a sampler2D uniform.
type Sampler struct {
	Texture Texture
}

func (Float) Kind() Kind   { return KindFloat }
func (Vec2) Kind() Kind    { return KindVec2 }
func (Vec3) Kind() Kind    { return KindVec3 }
func (Vec4) Kind() Kind    { return KindVec4 }
func (Mat4) Kind() Kind    { return KindMat4 }
func (Sampler) Kind() Kind { return KindSampler }

// Uniform is one named entry of a uniform record.
type Uniform struct {
	Name  string
	Value Value
}

// Bindings is the ordered uniform record passed to a draw.
type Bindings []Uniform

func (b Bindings) lookup(name string) Value {
	for _, u := range b {
		if u.Name == name {
			return u.Value
		}
	}
	return nil
}

// Float returns the named float, or zero when absent or of another type.
func (b Bindings) Float(name string) float32 {
	v, _ := b.lookup(name).(Float)
	return float32(v)
}

func (b Bindings) Vec2(name string) mgl32.Vec2 {
	v, _ := b.lookup(name).(Vec2)
	return mgl32.Vec2(v)
}

func (b Bindings) Vec3(name string) mgl32.Vec3 {
	v, _ := b.lookup(name).(Vec3)
	return mgl32.Vec3(v)
}

func (b Bindings) Vec4(name string) mgl32.Vec4 {
	v, _ := b.lookup(name).(Vec4)
	return mgl32.Vec4(v)
}

func (b Bindings) Mat4(name string) mgl32.Mat4 {
	v, _ := b.lookup(name).(Mat4)
	return mgl32.Mat4(v)
}

// Texture returns the texture bound to the named sampler, or nil.
func (b Bindings) Texture(name string) Texture {
	v, _ := b.lookup(name).(Sampler)
	return v.Texture
}
