// Package gpu defines the rendering capability the thermal effect needs,
// independent of whether it is backed by OpenGL or the CPU.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Wrap selects how samplers treat coordinates outside [0,1].
type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

// TextureOptions configure texture and render target creation.
type TextureOptions struct {
	Wrap Wrap
	// Mipmap requests mip generation for minification.
	Mipmap bool
}

// Texture is a readable GPU image.
type Texture interface {
	Size() (width, height int)
	Release()
}

// RenderTarget is an off-screen floating point surface that can be drawn
// into and then sampled through Texture.
type RenderTarget interface {
	Texture() Texture
	Size() (width, height int)
	Release()
}

// Program is a compiled shader program.
type Program interface {
	Release()
}

// Mesh is drawable geometry. The only mesh in use is the unit plane with
// positions in [-0.5, 0.5].
type Mesh interface {
	Release()
}

// Fragment is what a Kernel sees for one covered pixel.
type Fragment struct {
	// Coord is the window-space pixel center, origin bottom-left.
	Coord mgl32.Vec2
}

// TextureSampler reads a texture with bilinear filtering at uv, origin bottom-left.
type TextureSampler interface {
	Sample(t Texture, uv mgl32.Vec2) mgl32.Vec4
}

// FragmentFunc shades a single pixel.
type FragmentFunc func(s TextureSampler, f Fragment) mgl32.Vec4

// Kernel resolves a draw's uniforms once and returns the per-pixel shader.
// It is the CPU twin of a fragment shader.
type Kernel func(b Bindings) FragmentFunc

// ProgramSource bundles everything a backend might need to build a program.
type ProgramSource struct {
	Name string
	// Vertex and Fragment are GLSL sources. Fragment is authored as WebGL2
	// GLSL and translated by backends that need another dialect.
	Vertex   string
	Fragment string
	Kernel   Kernel
}

// DrawCall is one draw of a mesh with a program.
type DrawCall struct {
	Program   Program
	Mesh      Mesh
	Transform mgl32.Mat4
	Uniforms  Bindings
}

// Device is the GPU capability. A nil RenderTarget means the default
// framebuffer. Draws use straight-alpha normal blending.
type Device interface {
	NewTexture(img image.Image, opts TextureOptions) (Texture, error)
	NewRenderTarget(width, height int, opts TextureOptions) (RenderTarget, error)
	NewProgram(src ProgramSource) (Program, error)
	NewQuad() (Mesh, error)

	// Resize sets the default framebuffer size in pixels.
	Resize(width, height int)
	Size() (width, height int)

	Clear(target RenderTarget, rgba mgl32.Vec4)
	Draw(target RenderTarget, call DrawCall) error
	ReadPixels(target RenderTarget) (*image.RGBA, error)
}
