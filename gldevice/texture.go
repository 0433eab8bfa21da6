package gldevice

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gothermal/gpu"
)

type texture struct {
	id     uint32
	width  int
	height int
	// owned textures belong to a render target and are deleted with it.
	owned bool
}

func (t *texture) Size() (int, int) { return t.width, t.height }

func (t *texture) Release() {
	if t.owned || t.id == 0 {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// flipRows reverses the row order of a packed pixel buffer in place.
func flipRows(pix []byte, stride, height int) {
	tmp := make([]byte, stride)
	for y := 0; y < height/2; y++ {
		top := pix[y*stride : (y+1)*stride]
		bottom := pix[(height-1-y)*stride : (height-y)*stride]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

func vflip(img *image.RGBA) *image.RGBA {
	flipRows(img.Pix, img.Stride, img.Rect.Dy())
	return img
}

func wrapMode(w gpu.Wrap) int32 {
	if w == gpu.WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func filterMode(mipmap bool) (minFilter, magFilter int32) {
	if mipmap {
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	}
	return gl.LINEAR, gl.LINEAR
}

// NewTexture uploads img as straight-alpha RGBA8, flipped so the image top
// sits at v=1.
func (d *Device) NewTexture(img image.Image, opts gpu.TextureOptions) (gpu.Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("texture image is nil")
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, img.Bounds().Min, draw.Src)
	flipRows(nrgba.Pix, nrgba.Stride, nrgba.Rect.Dy())

	width := int32(nrgba.Rect.Dx())
	height := int32(nrgba.Rect.Dy())

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(opts.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(opts.Wrap))
	minFilter, magFilter := filterMode(opts.Mipmap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(nrgba.Pix))
	if opts.Mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &texture{id: id, width: int(width), height: int(height)}, nil
}
