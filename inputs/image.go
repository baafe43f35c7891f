// inputs/image.go
package inputs

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	// Blank imports for image decoders so image.Decode can handle them.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var lastImageID atomic.Uint64

// Image is a decoded texture source bound to a sampler2D uniform.
// Every Image gets a fresh ID; the frame uploader re-uploads texture
// content only when the ID bound to a uniform changes.
type Image struct {
	ID     uint64
	Name   string
	Pixels *image.RGBA
}

// Width returns the pixel width of the image.
func (i *Image) Width() int {
	if i == nil || i.Pixels == nil {
		return 0
	}
	return i.Pixels.Rect.Dx()
}

// Height returns the pixel height of the image.
func (i *Image) Height() int {
	if i == nil || i.Pixels == nil {
		return 0
	}
	return i.Pixels.Rect.Dy()
}

// vflip vertically flips the provided RGBA image so row 0 is the bottom
// row, matching OpenGL's texture origin.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	height := bounds.Dy()

	// This is faster than calling At/Set for each pixel
	rowSize := bounds.Dx() * 4 // 4 bytes per pixel (RGBA)
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow[:rowSize], srcRow[:rowSize])
	}
	return flipped
}

// NewImage converts img to tightly packed RGBA, optionally flipped for
// upload, and assigns it a new identity.
func NewImage(name string, img image.Image, flip bool) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("image %q is nil", name)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("image %q has no pixels", name)
	}

	// Convert source image to RGBA for consistency.
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	if flip {
		rgba = vflip(rgba)
	}

	return &Image{
		ID:     lastImageID.Add(1),
		Name:   name,
		Pixels: rgba,
	}, nil
}

// DecodeImage decodes any registered format (png, jpeg, gif, bmp, tiff, webp).
func DecodeImage(name string, r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", name, err)
	}
	return NewImage(name, img, true)
}

// LoadImage reads and decodes an image file for use as a texture.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	return DecodeImage(filepath.Base(path), f)
}
