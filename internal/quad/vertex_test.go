package quad

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/Saitsuno03/pixelgenerator/internal/vkg"
)

var _ vkg.VertexDescriptor = VertexData{}

func TestVertexLayout(t *testing.T) {
	b := FullscreenQuad.GetBindingDescription()
	assert.Equal(t, uint32(16), b.Stride)
	assert.Equal(t, vk.VertexInputRateVertex, b.InputRate)

	attrs := FullscreenQuad.GetAttributeDescriptions()
	require.Len(t, attrs, 2)
	assert.Equal(t, uint32(0), attrs[0].Location)
	assert.Equal(t, uint32(0), attrs[0].Offset)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[0].Format)
	assert.Equal(t, uint32(1), attrs[1].Location)
	assert.Equal(t, uint32(8), attrs[1].Offset)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[1].Format)
}

func TestFullscreenQuadCoversClipSpace(t *testing.T) {
	require.Len(t, FullscreenQuad, 6)

	var area float32
	for i := 0; i < len(FullscreenQuad); i += 3 {
		a, b, c := FullscreenQuad[i].Pos, FullscreenQuad[i+1].Pos, FullscreenQuad[i+2].Pos
		area += float32(math.Abs(float64((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1])))) / 2
	}
	assert.Equal(t, float32(4), area)

	for _, v := range FullscreenQuad {
		// texture coordinates follow positions
		assert.Equal(t, (v.Pos[0]+1)/2, v.UV[0])
		assert.Equal(t, (v.Pos[1]+1)/2, v.UV[1])
	}
}

func TestVertexBytes(t *testing.T) {
	b := FullscreenQuad.Bytes()
	require.Len(t, b, 6*16)
	word := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	// second vertex is {1,-1} {1,0}
	assert.Equal(t, []float32{1, -1, 1, 0}, []float32{word(4), word(5), word(6), word(7)})

	assert.Nil(t, VertexData{}.Bytes())
}
