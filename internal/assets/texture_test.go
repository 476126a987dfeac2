package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestDecodeTexturePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(4, 2)))

	img, err := DecodeTexture(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Len(t, img.Pix, 4*2*4)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(1, 0))
}

func TestDecodeTextureBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, checker(3, 3)))

	img, err := DecodeTexture(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(2, 2))
}

func TestDecodeTextureGarbage(t *testing.T) {
	_, err := DecodeTexture(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestToRGBA(t *testing.T) {
	_, err := ToRGBA(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEmptyImage)

	packed := image.NewRGBA(image.Rect(0, 0, 2, 2))
	out, err := ToRGBA(packed)
	require.NoError(t, err)
	assert.Same(t, packed, out)

	// A sub image keeps its parent's stride and offset origin
	sub := image.NewRGBA(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3))
	out, err = ToRGBA(sub)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, 8, out.Stride)
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, checker(2, 2)))
	require.NoError(t, f.Close())

	img, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBundledTexture(t *testing.T) {
	img, err := LoadTexture(filepath.Join("..", "..", ReferenceTexture))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 160, G: 160, B: 160, A: 255}, img.RGBAAt(8, 0))
}
