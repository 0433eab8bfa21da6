// Package gldevice implements gpu.Device on OpenGL 4.1 core (or GLES 3
// when the context is GLES). All calls must happen on the thread that owns
// the current GL context.
package gldevice

import (
	"fmt"
	"image"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
)

var glInitOnce sync.Once

// Device is an OpenGL backed gpu.Device.
type Device struct {
	width  int
	height int
	isGLES bool
}

// New initializes the GL function pointers for the current context.
func New(width, height int, isGLES bool) (*Device, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)

	return &Device{width: width, height: height, isGLES: isGLES}, nil
}

func (d *Device) Resize(width, height int) {
	d.width = width
	d.height = height
}

func (d *Device) Size() (int, int) {
	return d.width, d.height
}

// bind makes rt (or the default framebuffer) the draw target and sets the
// viewport to its size.
func (d *Device) bind(rt gpu.RenderTarget) (*target, error) {
	if rt == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(d.width), int32(d.height))
		return nil, nil
	}
	t, ok := rt.(*target)
	if !ok {
		return nil, fmt.Errorf("render target %T does not belong to this device", rt)
	}
	if t.fbo == 0 {
		return nil, fmt.Errorf("render target already released")
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
	return t, nil
}

func (d *Device) Clear(rt gpu.RenderTarget, rgba mgl32.Vec4) {
	if _, err := d.bind(rt); err != nil {
		return
	}
	gl.ClearColor(rgba[0], rgba[1], rgba[2], rgba[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *Device) Draw(rt gpu.RenderTarget, call gpu.DrawCall) error {
	p, ok := call.Program.(*program)
	if !ok || p.id == 0 {
		return fmt.Errorf("program missing or released")
	}
	m, ok := call.Mesh.(*quad)
	if !ok || m.vao == 0 {
		return fmt.Errorf("mesh missing or released")
	}
	t, err := d.bind(rt)
	if err != nil {
		return err
	}

	gl.UseProgram(p.id)
	if p.transformLoc != -1 {
		gl.UniformMatrix4fv(p.transformLoc, 1, false, &call.Transform[0])
	}
	units, err := p.apply(call.Uniforms)
	if err != nil {
		gl.UseProgram(0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return err
	}

	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	for unit := 0; unit < units; unit++ {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.UseProgram(0)

	if t != nil && t.mipmap {
		gl.BindTexture(gl.TEXTURE_2D, t.tex.id)
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (d *Device) ReadPixels(rt gpu.RenderTarget) (*image.RGBA, error) {
	t, err := d.bind(rt)
	if err != nil {
		return nil, err
	}
	width, height := d.width, d.height
	if t != nil {
		width, height = t.width, t.height
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width > 0 && height > 0 {
		gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
		gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	// GL rows are bottom-up.
	return vflip(img), nil
}

var _ gpu.Device = (*Device)(nil)
