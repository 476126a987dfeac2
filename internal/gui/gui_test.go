package gui

import (
	"math"
	"testing"

	imgui "github.com/inkyblackness/imgui-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"

	"github.com/Saitsuno03/pixelgenerator/internal/app"
)

var (
	_ app.IGraphicsModule = (*ImGUIModule)(nil)
	_ app.IInputModule    = (*ImGUIModule)(nil)
)

func TestProjection(t *testing.T) {
	proj := Projection(imgui.Vec2{X: 800, Y: 600})

	// the corners of the screen land on the corners of clip space
	apply := func(x, y float32) (float32, float32) {
		v := lin.Vec4{x, y, 0, 1}
		var out lin.Vec4
		// columns are stored contiguously
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				out[row] += proj[col][row] * v[col]
			}
		}
		return out[0], out[1]
	}

	x, y := apply(0, 0)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)

	x, y = apply(800, 600)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)

	x, y = apply(400, 300)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestProjectionMinimized(t *testing.T) {
	proj := Projection(imgui.Vec2{})
	for _, col := range proj {
		for _, v := range col {
			assert.False(t, math.IsInf(float64(v), 0) || math.IsNaN(float64(v)))
		}
	}
}

func TestDisplayMetrics(t *testing.T) {
	size, scale := DisplayMetrics(800, 600, 800, 600)
	assert.Equal(t, imgui.Vec2{X: 800, Y: 600}, size)
	assert.Equal(t, imgui.Vec2{X: 1, Y: 1}, scale)

	// a 2x display reports the cursor in window units
	size, scale = DisplayMetrics(800, 600, 1600, 1200)
	assert.Equal(t, imgui.Vec2{X: 800, Y: 600}, size)
	assert.Equal(t, imgui.Vec2{X: 2, Y: 2}, scale)

	size, scale = DisplayMetrics(800, 600, 1200, 900)
	assert.Equal(t, imgui.Vec2{X: 800, Y: 600}, size)
	assert.InDelta(t, 1.5, scale.X, 1e-6)
	assert.InDelta(t, 1.5, scale.Y, 1e-6)

	size, scale = DisplayMetrics(0, 0, 0, 0)
	assert.Equal(t, imgui.Vec2{}, size)
	assert.Equal(t, imgui.Vec2{X: 1, Y: 1}, scale, "minimized")
}

func TestUBOBytes(t *testing.T) {
	u := UBO{Proj: Projection(imgui.Vec2{X: 2, Y: 4})}
	b := u.Bytes()
	require.Len(t, b, 64)
}

var unscaled = imgui.Vec2{X: 1, Y: 1}

func TestScissor(t *testing.T) {
	extent := vk.Extent2D{Width: 800, Height: 600}

	rect, ok := Scissor(imgui.Vec4{X: 10, Y: 20, Z: 110, W: 70}, unscaled, extent)
	require.True(t, ok)
	assert.Equal(t, int32(10), rect.Offset.X)
	assert.Equal(t, int32(20), rect.Offset.Y)
	assert.Equal(t, uint32(100), rect.Extent.Width)
	assert.Equal(t, uint32(50), rect.Extent.Height)

	rect, ok = Scissor(imgui.Vec4{X: -50, Y: -10, Z: 900, W: 700}, unscaled, extent)
	require.True(t, ok, "clamped to the screen")
	assert.Equal(t, int32(0), rect.Offset.X)
	assert.Equal(t, int32(0), rect.Offset.Y)
	assert.Equal(t, uint32(800), rect.Extent.Width)
	assert.Equal(t, uint32(600), rect.Extent.Height)

	_, ok = Scissor(imgui.Vec4{X: 900, Y: 10, Z: 950, W: 20}, unscaled, extent)
	assert.False(t, ok, "off screen")

	_, ok = Scissor(imgui.Vec4{X: 10, Y: 10, Z: 10, W: 20}, unscaled, extent)
	assert.False(t, ok, "empty")
}

func TestScissorScaled(t *testing.T) {
	// an 800x600 window backed by a 1600x1200 framebuffer
	extent := vk.Extent2D{Width: 1600, Height: 1200}
	scale := imgui.Vec2{X: 2, Y: 2}

	rect, ok := Scissor(imgui.Vec4{X: 10, Y: 20, Z: 110, W: 70}, scale, extent)
	require.True(t, ok)
	assert.Equal(t, int32(20), rect.Offset.X)
	assert.Equal(t, int32(40), rect.Offset.Y)
	assert.Equal(t, uint32(200), rect.Extent.Width)
	assert.Equal(t, uint32(100), rect.Extent.Height)

	rect, ok = Scissor(imgui.Vec4{X: 0, Y: 0, Z: 800, W: 600}, scale, extent)
	require.True(t, ok)
	assert.Equal(t, uint32(1600), rect.Extent.Width, "the whole display covers the framebuffer")
	assert.Equal(t, uint32(1200), rect.Extent.Height)
}

func TestButtonMaps(t *testing.T) {
	require.Len(t, glfwButtonIDByIndex, len(glfwButtonIndexByID))
	for id, index := range glfwButtonIndexByID {
		assert.Equal(t, id, glfwButtonIDByIndex[index])
	}
}

func newTestModule(t *testing.T) *ImGUIModule {
	context := imgui.CreateContext(nil)
	t.Cleanup(context.Destroy)
	io := imgui.CurrentIO()
	return &ImGUIModule{io: io, keys: io, context: context}
}

// recordingKeyboard tracks which keys imgui was told are down
type recordingKeyboard struct {
	down  map[int]bool
	chars string
}

func newRecordingKeyboard() *recordingKeyboard {
	return &recordingKeyboard{down: make(map[int]bool)}
}

func (k *recordingKeyboard) KeyPress(key int)            { k.down[key] = true }
func (k *recordingKeyboard) KeyRelease(key int)          { k.down[key] = false }
func (k *recordingKeyboard) KeyCtrl(left, right int)     {}
func (k *recordingKeyboard) KeyShift(left, right int)    {}
func (k *recordingKeyboard) KeyAlt(left, right int)      {}
func (k *recordingKeyboard) KeySuper(left, right int)    {}
func (k *recordingKeyboard) AddInputCharacters(s string) { k.chars += s }

func TestKeyReleasedAfterFocusLeaves(t *testing.T) {
	keys := newRecordingKeyboard()
	i := &ImGUIModule{keys: keys}

	i.wantKeyboard = true
	assert.True(t, i.KeyChange(glfw.KeyBackspace, 0, glfw.Press, 0))
	assert.True(t, keys.down[int(glfw.KeyBackspace)])

	// the text field lost focus before the key came up
	i.wantKeyboard = false
	assert.False(t, i.KeyChange(glfw.KeyBackspace, 0, glfw.Release, 0), "the release is not consumed")
	assert.False(t, keys.down[int(glfw.KeyBackspace)], "imgui saw the release")

	assert.False(t, i.KeyChange(glfw.KeyA, 0, glfw.Press, 0))
	assert.False(t, keys.down[int(glfw.KeyA)], "presses are still gated")
	assert.False(t, i.CharChange('a'))
	assert.Empty(t, keys.chars)
}

func TestKeyForwardedWhileFocused(t *testing.T) {
	keys := newRecordingKeyboard()
	i := &ImGUIModule{keys: keys, wantKeyboard: true}

	assert.True(t, i.KeyChange(glfw.KeyA, 0, glfw.Press, 0))
	assert.True(t, i.KeyChange(glfw.KeyA, 0, glfw.Repeat, 0))
	assert.True(t, keys.down[int(glfw.KeyA)])
	assert.True(t, i.KeyChange(glfw.KeyA, 0, glfw.Release, 0))
	assert.False(t, keys.down[int(glfw.KeyA)])

	assert.True(t, i.CharChange('f'))
	assert.Equal(t, "f", keys.chars)
}

func TestInputOnlyConsumedWhenWanted(t *testing.T) {
	i := newTestModule(t)

	assert.False(t, i.CharChange('a'))
	assert.False(t, i.KeyChange(glfw.KeyA, 0, glfw.Press, 0))
	assert.False(t, i.MouseScrollChange(0, 1))
	assert.False(t, i.MouseButtonChange(glfw.MouseButton1, glfw.Press, 0))
	assert.False(t, i.mouseJustPressed[0])

	i.wantKeyboard = true
	i.wantMouse = true

	assert.True(t, i.CharChange('a'))
	assert.True(t, i.KeyChange(glfw.KeyA, 0, glfw.Press, 0))
	assert.True(t, i.MouseScrollChange(0, 1))
	assert.True(t, i.MouseButtonChange(glfw.MouseButton2, glfw.Press, 0))
	assert.Equal(t, [3]bool{false, true, false}, i.mouseJustPressed)

	assert.True(t, i.MouseButtonChange(glfw.MouseButton1, glfw.Release, 0))
	assert.False(t, i.mouseJustPressed[0], "only presses latch")
}

type countingUI struct{ n int }

func (c *countingUI) DrawUI() { c.n++ }

func TestAddUI(t *testing.T) {
	i := &ImGUIModule{}
	a, b := &countingUI{}, &countingUI{}
	i.AddUI(a)
	i.AddUI(b)
	require.Len(t, i.uis, 2)
	for _, ui := range i.uis {
		ui.DrawUI()
	}
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
