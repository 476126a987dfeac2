// Package palette holds the four color swatches the user edits and their
// uniform buffer encoding.
package palette

import (
	"fmt"
	"strings"
	"unsafe"

	lin "github.com/xlab/linmath"
)

// NumSwatches is the number of colors in a palette
const NumSwatches = 4

// Size is the size in bytes of the palette in a uniform buffer, four std140 vec4
const Size = NumSwatches * 4 * 4

// Palette is four RGBA colors. Values are never clamped or validated.
type Palette [NumSwatches]lin.Vec4

// Default is the palette shown at startup
func Default() Palette {
	return Palette{
		{0, 0, 1, 1},     // blue
		{0, 0, 0, 1},     // black
		{1, 0.5, 0, 1},   // orange
		{0.8, 0.2, 1, 1}, // purple
	}
}

// Swatch returns the i'th color so that it may be edited in place
func (p *Palette) Swatch(i int) *[4]float32 {
	return (*[4]float32)(&p[i])
}

// Bytes returns the palette as laid out in the uniform buffer. The slice
// aliases the palette.
func (p *Palette) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&p[0][0])), Size)
}

func toByte(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

func (p *Palette) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = fmt.Sprintf("#%02X%02X%02X%02X", toByte(c[0]), toByte(c[1]), toByte(c[2]), toByte(c[3]))
	}
	return strings.Join(parts, " ")
}
