package softdevice

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gothermal/gpu"
)

// surface is float RGBA storage with a bottom-left origin, the GL layout.
type surface struct {
	width, height int
	pix           []float32
	wrap          gpu.Wrap
	// unorm surfaces clamp everything written to [0,1], like an 8-bit
	// default framebuffer.
	unorm bool
}

func newSurface(width, height int, wrap gpu.Wrap, unorm bool) *surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &surface{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
		wrap:   wrap,
		unorm:  unorm,
	}
}

func (s *surface) at(x, y int) mgl32.Vec4 {
	i := (y*s.width + x) * 4
	return mgl32.Vec4{s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3]}
}

func (s *surface) set(x, y int, c mgl32.Vec4) {
	if s.unorm {
		for k := range c {
			c[k] = gpu.Clamp(c[k], 0, 1)
		}
	}
	i := (y*s.width + x) * 4
	copy(s.pix[i:i+4], c[:])
}

func (s *surface) fill(c mgl32.Vec4) {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			s.set(x, y, c)
		}
	}
}

func (s *surface) index(i, n int) int {
	if s.wrap == gpu.WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// sample reads with bilinear filtering, texel centers at half offsets.
func (s *surface) sample(uv mgl32.Vec2) mgl32.Vec4 {
	if s.width == 0 || s.height == 0 {
		return mgl32.Vec4{}
	}
	fx := float64(uv[0])*float64(s.width) - 0.5
	fy := float64(uv[1])*float64(s.height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	xa, xb := s.index(x0, s.width), s.index(x0+1, s.width)
	ya, yb := s.index(y0, s.height), s.index(y0+1, s.height)

	c00 := s.at(xa, ya)
	c10 := s.at(xb, ya)
	c01 := s.at(xa, yb)
	c11 := s.at(xb, yb)

	var out mgl32.Vec4
	for k := 0; k < 4; k++ {
		bottom := gpu.Mix(c00[k], c10[k], tx)
		top := gpu.Mix(c01[k], c11[k], tx)
		out[k] = gpu.Mix(bottom, top, ty)
	}
	return out
}

// loadImage fills the surface so that the image's top row lands at v=1.
func loadImage(img *image.NRGBA, wrap gpu.Wrap) *surface {
	b := img.Bounds()
	s := newSurface(b.Dx(), b.Dy(), wrap, true)
	for y := 0; y < s.height; y++ {
		row := b.Min.Y + (s.height - 1 - y)
		for x := 0; x < s.width; x++ {
			c := img.NRGBAAt(b.Min.X+x, row)
			s.set(x, y, mgl32.Vec4{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			})
		}
	}
	return s
}

// image converts to a top-down 8-bit image.
func (s *surface) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := s.at(x, y)
			img.SetRGBA(x, s.height-1-y, color.RGBA{
				R: to8(c[0]),
				G: to8(c[1]),
				B: to8(c[2]),
				A: to8(c[3]),
			})
		}
	}
	return img
}

func to8(v float32) uint8 {
	return uint8(math.Round(float64(gpu.Clamp(v, 0, 1)) * 255))
}
