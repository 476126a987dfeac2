package panel

import (
	"testing"

	imgui "github.com/inkyblackness/imgui-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saitsuno03/pixelgenerator/internal/gui"
	"github.com/Saitsuno03/pixelgenerator/internal/palette"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"Color##0", "Color##1", "Color##2", "Color##3"}, Labels())
}

func TestNew(t *testing.T) {
	p := palette.Default()
	pn := New(&p)
	assert.Same(t, &p, pn.Palette)
	assert.Len(t, pn.labels, palette.NumSwatches)
}

func TestDrawUI(t *testing.T) {
	context := imgui.CreateContext(nil)
	defer context.Destroy()

	io := imgui.CurrentIO()
	io.SetIniFilename("")
	io.SetDisplaySize(imgui.Vec2{X: 800, Y: 600})
	// NewFrame needs a built font atlas
	font := io.Fonts().TextureDataRGBA32()
	require.Greater(t, font.Width, 0)

	p := palette.Default()
	want := p
	pn := New(&p)

	// a new window is sized during its first frames before it is drawn
	for frame := 0; frame < 3; frame++ {
		imgui.NewFrame()
		pn.DrawUI()
		imgui.Render()
	}

	lists := imgui.RenderedDrawData().CommandLists()
	require.NotEmpty(t, lists)
	vertexBytes := 0
	for _, list := range lists {
		_, size := list.VertexBuffer()
		vertexBytes += size
	}
	assert.Greater(t, vertexBytes, 0)

	assert.Equal(t, want, p, "no input leaves the palette alone")
}

var _ gui.UI = (*Panel)(nil)
