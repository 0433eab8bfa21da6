package gldevice

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gothermal/gpu"
)

// target is a framebuffer with a single floating point color attachment.
type target struct {
	fbo    uint32
	tex    *texture
	width  int
	height int
	mipmap bool
}

func (d *Device) NewRenderTarget(width, height int, opts gpu.TextureOptions) (gpu.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target size %dx%d", width, height)
	}

	var fbo, textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	// Floating point so direction memory can go negative and heat can
	// exceed 1.
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)

	minFilter, magFilter := filterMode(opts.Mipmap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(opts.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(opts.Wrap))
	if opts.Mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, textureID, 0)

	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteTextures(1, &textureID)
		return nil, fmt.Errorf("framebuffer for %dx%d render target is not complete", width, height)
	}

	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	// Unbind to avoid accidental modifications
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &target{
		fbo:    fbo,
		tex:    &texture{id: textureID, width: width, height: height, owned: true},
		width:  width,
		height: height,
		mipmap: opts.Mipmap,
	}, nil
}

func (t *target) Texture() gpu.Texture { return t.tex }
func (t *target) Size() (int, int)     { return t.width, t.height }

func (t *target) Release() {
	if t.fbo == 0 {
		return
	}
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.tex.id)
	t.fbo = 0
	t.tex.id = 0
}
