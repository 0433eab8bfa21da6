// Package inputs decodes the images the effect samples.
package inputs

import (
	"context"
	"fmt"
	"image"
	"os"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Loader decodes an image addressed by path.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (image.Image, error) {
	return f(ctx, path)
}

// FileLoader reads images from the local file system.
type FileLoader struct{}

func (FileLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("image %s (%s) has no pixels", path, format)
	}
	return img, nil
}
