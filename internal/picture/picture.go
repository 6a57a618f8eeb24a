// Package picture provides decoded-image loading for the editor. It hands
// the masking canvas an already-decoded raster plus its native dimensions;
// all file I/O and format decoding stays here.
package picture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/liliping230531-pixel/qushuiyin/pkg/geometry"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Picture is a loaded source image.
type Picture struct {
	Path  string      // Original file path, empty for in-memory pictures
	Image image.Image // Decoded pixel data
	DPI   float64     // Detected DPI, 0 when unknown
}

// Load decodes an image from the specified path.
func Load(path string) (*Picture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	p := &Picture{Path: path, Image: img}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := extractTIFFDPI(path); err == nil {
			p.DPI = dpi
		}
	}

	return p, nil
}

// FromImage wraps an already-decoded image, e.g. an edit result.
func FromImage(img image.Image) *Picture {
	return &Picture{Image: img}
}

// Decode decodes a picture from an in-memory payload.
func Decode(data []byte) (*Picture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return &Picture{Image: img}, nil
}

// Width returns the image width in pixels.
func (p *Picture) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *Picture) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (p *Picture) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(p.Width()),
		Height: float64(p.Height()),
	}
}

// RGBA returns the picture converted to *image.RGBA, copying only when
// the decoded representation differs.
func (p *Picture) RGBA() *image.RGBA {
	if p.Image == nil {
		return nil
	}
	if rgba, ok := p.Image.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}

	bounds := p.Image.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, p.Image.At(x, y))
		}
	}
	return rgba
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
