package picture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestPNG(t, 64, 48)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Width() != 64 || p.Height() != 48 {
		t.Errorf("size = %dx%d, want 64x48", p.Width(), p.Height())
	}
	if p.Path != path {
		t.Errorf("Path = %q, want %q", p.Path, path)
	}
	if p.DPI != 0 {
		t.Errorf("DPI = %v for PNG, want 0", p.DPI)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("Load of missing file returned nil error")
	}
}

func TestDecodePayload(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, 10, 20))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	p, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Width() != 10 || p.Height() != 20 {
		t.Errorf("size = %dx%d, want 10x20", p.Width(), p.Height())
	}

	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("Decode of garbage returned nil error")
	}
}

func TestRGBANormalizesOrigin(t *testing.T) {
	// Sub-images can have a non-zero origin; RGBA() must shift to (0,0).
	base := image.NewRGBA(image.Rect(0, 0, 40, 40))
	base.Set(25, 25, color.RGBA{R: 200, A: 255})
	sub := base.SubImage(image.Rect(20, 20, 40, 40))

	p := FromImage(sub)
	rgba := p.RGBA()
	if b := rgba.Bounds(); b.Min.X != 0 || b.Min.Y != 0 || b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, want (0,0)-(20,20)", b)
	}
	if got := rgba.RGBAAt(5, 5); got.R != 200 {
		t.Errorf("pixel (5,5).R = %d, want 200", got.R)
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for _, path := range []string{"a.png", "b.JPG", "c.tiff", "d.webp"} {
		if !IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = false", path)
		}
	}
	for _, path := range []string{"a.gif", "b.pdf", "noext"} {
		if IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = true", path)
		}
	}
}
