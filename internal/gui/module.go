// Package gui bridges GLFW input into Dear ImGui and renders its draw data
// with the vkg pipeline.
package gui

import (
	"math"

	imgui "github.com/inkyblackness/imgui-go/v4"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/Saitsuno03/pixelgenerator/internal/app"
)

// room for the vertices and indexes of every draw list in a frame
const (
	maxVertexes = 150 * 1000
	maxIndexes  = 150 * 1000
)

// UI is drawn once per frame between imgui.NewFrame and imgui.Render
type UI interface {
	DrawUI()
}

// keyboard is the part of imgui.IO key events are forwarded to
type keyboard interface {
	KeyPress(key int)
	KeyRelease(key int)
	KeyCtrl(left, right int)
	KeyShift(left, right int)
	KeyAlt(left, right int)
	KeySuper(left, right int)
	AddInputCharacters(chars string)
}

type ImGUIModule struct {
	io       imgui.IO
	keys     keyboard
	renderer *Renderer
	window   *glfw.Window
	context  *imgui.Context

	time             float64
	mouseJustPressed [3]bool

	wantMouse    bool
	wantKeyboard bool

	uis []UI
}

func NewImGUIModule(base *app.AppBase, window *glfw.Window) (*ImGUIModule, error) {
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	// nothing is persisted, not even window placement
	io.SetIniFilename("")
	io.SetBackendFlags(io.GetBackendFlags() | imgui.BackendFlagsRendererHasVtxOffset)

	renderer := NewRenderer(io, &base.GraphicsApp, maxVertexes, maxIndexes)
	err := renderer.Init()
	if err != nil {
		renderer.Destroy()
		context.Destroy()
		return nil, err
	}

	i := &ImGUIModule{
		context:  context,
		io:       io,
		keys:     io,
		renderer: renderer,
		window:   window,
	}
	i.setKeyMapping()

	return i, nil
}

func (i *ImGUIModule) AddUI(ui UI) {
	i.uis = append(i.uis, ui)
}

func (i *ImGUIModule) NewFrame(base *app.AppBase) {
	i.wantMouse = i.io.WantCaptureMouse()
	i.wantKeyboard = i.io.WantCaptureKeyboard()

	currentTime := glfw.GetTime()
	if i.time > 0 {
		i.io.SetDeltaTime(float32(currentTime - i.time))
	}
	i.time = currentTime

	if i.window.GetAttrib(glfw.Focused) != 0 {
		x, y := i.window.GetCursorPos()
		i.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		i.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	for j := range i.mouseJustPressed {
		// a click shorter than a frame still registers
		down := i.mouseJustPressed[j] || i.window.GetMouseButton(glfwButtonIDByIndex[j]) == glfw.Press
		i.io.SetMouseButtonDown(j, down)
		i.mouseJustPressed[j] = false
	}
}

func (i *ImGUIModule) PostFrame() {}

func (i *ImGUIModule) Destroy() {
	i.renderer.Destroy()
	i.context.Destroy()
}

// DisplayMetrics returns the size imgui lays out in, which is the window size
// the cursor is reported in, and the framebuffer pixels per unit of it
func DisplayMetrics(windowWidth, windowHeight, fbWidth, fbHeight int) (size, scale imgui.Vec2) {
	size = imgui.Vec2{X: float32(windowWidth), Y: float32(windowHeight)}
	scale = imgui.Vec2{X: 1, Y: 1}
	if windowWidth > 0 && windowHeight > 0 && fbWidth > 0 && fbHeight > 0 {
		scale.X = float32(fbWidth) / size.X
		scale.Y = float32(fbHeight) / size.Y
	}
	return size, scale
}

// CreateCommandBuffers runs one GUI frame over every UI and renders the result
func (i *ImGUIModule) CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, base *app.AppBase) ([]vk.CommandBuffer, error) {
	width, height := i.window.GetSize()
	fbWidth, fbHeight := i.window.GetFramebufferSize()
	displaySize, fbScale := DisplayMetrics(width, height, fbWidth, fbHeight)
	i.io.SetDisplaySize(displaySize)
	imgui.NewFrame()

	for _, ui := range i.uis {
		ui.DrawUI()
	}

	imgui.Render()
	return i.renderer.Render(renderPass, framebuffer, displaySize, fbScale, imgui.RenderedDrawData())
}

// KeyChange forwards presses only while imgui wants the keyboard. Releases
// always reach imgui so a key pressed inside a text field can't stay down
// once focus has moved.
func (i *ImGUIModule) KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool {
	if action == glfw.Release {
		i.keys.KeyRelease(int(key))
		i.updateModifiers()
		return i.wantKeyboard
	}
	if !i.wantKeyboard {
		return false
	}

	if action == glfw.Press {
		i.keys.KeyPress(int(key))
	}
	i.updateModifiers()
	return true
}

// Modifiers are not reliable across systems, derive them from the keys
func (i *ImGUIModule) updateModifiers() {
	i.keys.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
	i.keys.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
	i.keys.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
	i.keys.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
}

func (i *ImGUIModule) MouseScrollChange(x, y float64) bool {
	if !i.wantMouse {
		return false
	}
	i.io.AddMouseWheelDelta(float32(x), float32(y))
	return true
}

func (i *ImGUIModule) MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool {
	if !i.wantMouse {
		return false
	}

	buttonIndex, known := glfwButtonIndexByID[rawButton]
	if known && action == glfw.Press {
		i.mouseJustPressed[buttonIndex] = true
	}
	return true
}

func (i *ImGUIModule) CharChange(char rune) bool {
	if !i.wantKeyboard {
		return false
	}
	i.keys.AddInputCharacters(string(char))
	return true
}

// imgui peeks into its KeysDown array with these indexes
var keyMapping = map[int]glfw.Key{
	imgui.KeyTab:        glfw.KeyTab,
	imgui.KeyLeftArrow:  glfw.KeyLeft,
	imgui.KeyRightArrow: glfw.KeyRight,
	imgui.KeyUpArrow:    glfw.KeyUp,
	imgui.KeyDownArrow:  glfw.KeyDown,
	imgui.KeyPageUp:     glfw.KeyPageUp,
	imgui.KeyPageDown:   glfw.KeyPageDown,
	imgui.KeyHome:       glfw.KeyHome,
	imgui.KeyEnd:        glfw.KeyEnd,
	imgui.KeyInsert:     glfw.KeyInsert,
	imgui.KeyDelete:     glfw.KeyDelete,
	imgui.KeyBackspace:  glfw.KeyBackspace,
	imgui.KeySpace:      glfw.KeySpace,
	imgui.KeyEnter:      glfw.KeyEnter,
	imgui.KeyEscape:     glfw.KeyEscape,
	imgui.KeyA:          glfw.KeyA,
	imgui.KeyC:          glfw.KeyC,
	imgui.KeyV:          glfw.KeyV,
	imgui.KeyX:          glfw.KeyX,
	imgui.KeyY:          glfw.KeyY,
	imgui.KeyZ:          glfw.KeyZ,
}

func (i *ImGUIModule) setKeyMapping() {
	for imguiKey, key := range keyMapping {
		i.io.KeyMap(imguiKey, int(key))
	}
}

var glfwButtonIndexByID = map[glfw.MouseButton]int{
	glfw.MouseButton1: 0,
	glfw.MouseButton2: 1,
	glfw.MouseButton3: 2,
}

var glfwButtonIDByIndex = map[int]glfw.MouseButton{
	0: glfw.MouseButton1,
	1: glfw.MouseButton2,
	2: glfw.MouseButton3,
}
