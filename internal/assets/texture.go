package assets

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

var ErrEmptyImage = errors.New("image has no pixels")

// LoadTexture decodes the image file at path into tightly packed RGBA
func LoadTexture(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open texture: %w", err)
	}
	defer f.Close()

	img, err := DecodeTexture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeTexture decodes any registered image format into an RGBA image whose
// bounds start at the origin
func DecodeTexture(r io.Reader) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode texture: %w", err)
	}
	img, err := ToRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	return img, nil
}

// ToRGBA converts src to tightly packed RGBA with its origin at (0,0), src is
// returned as is when it already is
func ToRGBA(src image.Image) (*image.RGBA, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("image is %dx%d: %w", b.Dx(), b.Dy(), ErrEmptyImage)
	}

	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}
