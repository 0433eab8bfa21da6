package inputs

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, name string, encode func(*os.File, image.Image) error) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoaderFormats(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*os.File, image.Image) error
	}{
		{"mask.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) }},
		{"mask.bmp", func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeImage(t, tt.name, tt.encode)
			img, err := FileLoader{}.Load(context.Background(), path)
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
				t.Errorf("bounds = %v", b)
			}
			if r, _, _, _ := img.At(1, 1).RGBA(); r>>8 != 200 {
				t.Errorf("pixel red = %d, want 200", r>>8)
			}
		})
	}
}

func TestFileLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := (FileLoader{}).Load(context.Background(), filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}

	junk := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(junk, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (FileLoader{}).Load(context.Background(), junk); !errors.Is(err, image.ErrFormat) {
		t.Errorf("junk file: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeImage(t, "ok.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) })
	if _, err := (FileLoader{}).Load(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled load: err = %v", err)
	}
}

func TestLoaderFunc(t *testing.T) {
	want := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	var l Loader = LoaderFunc(func(_ context.Context, path string) (image.Image, error) {
		if path != "logo" {
			return nil, errors.New("unexpected path")
		}
		return want, nil
	})
	got, err := l.Load(context.Background(), "logo")
	if err != nil || got != want {
		t.Errorf("Load = %v, %v", got, err)
	}
}
