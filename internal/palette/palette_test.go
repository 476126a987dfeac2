package palette

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, "#0000FFFF #000000FF #FF8000FF #CC33FFFF", p.String())
}

func TestSwatchAliases(t *testing.T) {
	p := Default()
	s := p.Swatch(2)
	s[0] = 0.5
	s[3] = 0.25
	assert.Equal(t, float32(0.5), p[2][0])
	assert.Equal(t, float32(0.25), p[2][3])

	assert.Panics(t, func() { p.Swatch(NumSwatches) })
}

func TestBytes(t *testing.T) {
	p := Default()
	p[1] = [4]float32{0.1, 0.2, 0.3, 0.4}

	b := p.Bytes()
	require.Len(t, b, Size)
	assert.Equal(t, 64, Size)

	word := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	// swatch 0 is blue
	assert.Equal(t, float32(0), word(0))
	assert.Equal(t, float32(1), word(2))
	// swatch 1 starts at byte 16
	assert.Equal(t, float32(0.1), word(4))
	assert.Equal(t, float32(0.4), word(7))
	// swatch 3 is purple
	assert.Equal(t, float32(0.8), word(12))
	assert.Equal(t, float32(1), word(15))

	p.Swatch(3)[0] = 0
	assert.Equal(t, float32(0), word(12), "bytes follow edits")
}

func TestStringClamps(t *testing.T) {
	p := Palette{
		{-1, 2, 0.5, 1},
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.2, 0.4, 0.6, 0.8},
	}
	assert.Equal(t, "#00FF80FF #00000000 #FFFFFFFF #336699CC", p.String())
	assert.Equal(t, float32(-1), p[0][0], "values are kept as is")
}
