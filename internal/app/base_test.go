package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

type recordingInput struct {
	name    string
	consume bool
	log     *[]string
}

func (r *recordingInput) seen(event string) bool {
	*r.log = append(*r.log, r.name+":"+event)
	return r.consume
}

func (r *recordingInput) KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool {
	return r.seen("key")
}

func (r *recordingInput) MouseScrollChange(x, y float64) bool {
	return r.seen("scroll")
}

func (r *recordingInput) MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool {
	return r.seen("button")
}

func (r *recordingInput) CharChange(char rune) bool {
	return r.seen("char")
}

func TestInputFanOut(t *testing.T) {
	var got []string
	b := &AppBase{}
	b.AddInputModule(&recordingInput{name: "gui", log: &got})
	b.AddInputModule(&recordingInput{name: "quad", log: &got})

	b.keyChange(nil, glfw.KeyA, 0, glfw.Press, 0)
	b.charChange(nil, 'a')
	b.mouseButtonChange(nil, glfw.MouseButton1, glfw.Press, 0)
	b.mouseScrollChange(nil, 0, 1)

	assert.Equal(t, []string{
		"gui:key", "quad:key",
		"gui:char", "quad:char",
		"gui:button", "quad:button",
		"gui:scroll", "quad:scroll",
	}, got)
}

func TestInputConsumed(t *testing.T) {
	var got []string
	b := &AppBase{}
	b.AddInputModule(&recordingInput{name: "gui", consume: true, log: &got})
	b.AddInputModule(&recordingInput{name: "quad", log: &got})

	b.keyChange(nil, glfw.KeyEscape, 0, glfw.Release, 0)
	b.mouseScrollChange(nil, 0, -1)

	assert.Equal(t, []string{"gui:key", "gui:scroll"}, got)
}

type fakeGraphics struct {
	buffers []vk.CommandBuffer
	err     error
	calls   *[]string
	name    string
}

func (f *fakeGraphics) NewFrame(base *AppBase) {}
func (f *fakeGraphics) PostFrame()             {}
func (f *fakeGraphics) Destroy()               {}

func (f *fakeGraphics) CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, app *AppBase) ([]vk.CommandBuffer, error) {
	*f.calls = append(*f.calls, f.name)
	return f.buffers, f.err
}

func TestCollectCommandBuffers(t *testing.T) {
	var calls []string
	b := &AppBase{}
	b.AddGraphicsModule(&fakeGraphics{name: "quad", calls: &calls, buffers: make([]vk.CommandBuffer, 1)})
	b.AddGraphicsModule(&fakeGraphics{name: "broken", calls: &calls, err: errors.New("boom"), buffers: make([]vk.CommandBuffer, 3)})
	b.AddGraphicsModule(&fakeGraphics{name: "imgui", calls: &calls, buffers: make([]vk.CommandBuffer, 2)})

	buffers := b.collectCommandBuffers(nil, nil)

	assert.Equal(t, []string{"quad", "broken", "imgui"}, calls)
	assert.Len(t, buffers, 3, "the failing module is skipped")
}
