// Package app ties the window, its input and the graphics modules to a vkg.GraphicsApp.
package app

import (
	"fmt"
	"log"
	"runtime"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/Saitsuno03/pixelgenerator/internal/vkg"
)

// IGraphicsModule draws part of each frame. Modules record secondary command
// buffers which are executed inside the frame's render pass in the order the
// modules were added.
type IGraphicsModule interface {
	NewFrame(base *AppBase)
	PostFrame()
	Destroy()
	CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, app *AppBase) ([]vk.CommandBuffer, error)
}

// IInputModule receives window input, returning true consumes the event so
// that modules added later don't see it
type IInputModule interface {
	KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool
	MouseScrollChange(x, y float64) bool
	MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool
	CharChange(char rune) bool
}

// ClearColor is the color each frame starts from
var ClearColor = [4]float32{0, 0, 0, 1}

type AppBase struct {
	vkg.GraphicsApp

	GraphicsModules []IGraphicsModule
	InputModules    []IInputModule

	priorCommandBuffers []vk.CommandBuffer
}

// NewAppBase creates a fixed size window and the graphics app which will draw to it
func NewAppBase(appName string, width, height int) (*AppBase, error) {
	// GLFW and the surface must stay on the main thread
	runtime.LockOSThread()

	err := glfw.Init()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize glfw: %w", err)
	}

	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, fmt.Errorf("vulkan is unsupported")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	err = vk.Init()
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("unable to initialize vulkan: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(width, height, appName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("unable to create window: %w", err)
	}

	base := &AppBase{GraphicsApp: *vkg.NewGraphicsApp(appName, vkg.Version{Major: 0, Minor: 1, Patch: 0})}

	err = base.SetWindow(window)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}
	base.EnableDebugging()

	return base, nil
}

// dispatch offers an input event to each input module until one consumes it
func (b *AppBase) dispatch(consume func(IInputModule) bool) {
	for _, i := range b.InputModules {
		if consume(i) {
			return
		}
	}
}

func (b *AppBase) charChange(window *glfw.Window, char rune) {
	b.dispatch(func(i IInputModule) bool { return i.CharChange(char) })
}

func (b *AppBase) keyChange(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	b.dispatch(func(i IInputModule) bool { return i.KeyChange(key, scancode, action, mods) })
}

func (b *AppBase) mouseScrollChange(window *glfw.Window, x, y float64) {
	b.dispatch(func(i IInputModule) bool { return i.MouseScrollChange(x, y) })
}

func (b *AppBase) mouseButtonChange(window *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b.dispatch(func(i IInputModule) bool { return i.MouseButtonChange(button, action, mods) })
}

func (b *AppBase) closeRequested(window *glfw.Window) {
	log.Printf("window close requested")
}

// Init initializes vulkan and installs the window callbacks
func (b *AppBase) Init() error {
	err := b.GraphicsApp.Init()
	if err != nil {
		return fmt.Errorf("unable to initialize vulkan instance: %w", err)
	}

	b.MakeCommandBuffer = b.makeCommandBuffers

	b.Window.SetMouseButtonCallback(b.mouseButtonChange)
	b.Window.SetScrollCallback(b.mouseScrollChange)
	b.Window.SetKeyCallback(b.keyChange)
	b.Window.SetCharCallback(b.charChange)
	b.Window.SetCloseCallback(b.closeRequested)

	return nil
}

func (b *AppBase) AddGraphicsModule(g IGraphicsModule) {
	b.GraphicsModules = append(b.GraphicsModules, g)
}

func (b *AppBase) AddInputModule(i IInputModule) {
	b.InputModules = append(b.InputModules, i)
}

// collectCommandBuffers gathers the secondary buffers of every module, a module
// which fails is logged and left out of the frame
func (b *AppBase) collectCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer) []vk.CommandBuffer {
	buffers := make([]vk.CommandBuffer, 0, len(b.GraphicsModules))
	for _, g := range b.GraphicsModules {
		cmds, err := g.CreateCommandBuffers(renderPass, framebuffer, b)
		if err != nil {
			log.Printf("error generating command buffer: %v", err)
			continue
		}
		buffers = append(buffers, cmds...)
	}
	return buffers
}

func (b *AppBase) makeCommandBuffers(buffer *vkg.CommandBuffer, frame int) error {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor(ClearColor[:])
	clearValues[1].SetDepthStencil(1, 0)

	err := buffer.Begin()
	if err != nil {
		return err
	}

	renderPassBeginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  b.VKRenderPass,
		Framebuffer: b.Framebuffers[frame],
		RenderArea: vk.Rect2D{
			Extent: b.GetScreenExtent(),
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(buffer.VK(), &renderPassBeginInfo, vk.SubpassContentsSecondaryCommandBuffers)

	// The previous frame has completed, DrawFrameSync waits for the device
	b.GraphicsCommandPool.FreeVKBuffers(b.priorCommandBuffers)

	buffers := b.collectCommandBuffers(b.VKRenderPass, b.Framebuffers[frame])
	b.priorCommandBuffers = buffers

	if len(buffers) > 0 {
		vk.CmdExecuteCommands(buffer.VK(), uint32(len(buffers)), buffers)
	}

	vk.CmdEndRenderPass(buffer.VK())
	return buffer.End()
}

// Destroy releases the modules in the order they were added, then vulkan, then the window
func (b *AppBase) Destroy() {
	if b.Device != nil {
		if err := b.Device.WaitIdle(); err != nil {
			log.Printf("error waiting for device to idle: %v", err)
		}
	}

	for _, g := range b.GraphicsModules {
		g.Destroy()
	}

	if b.GraphicsCommandPool != nil {
		b.GraphicsCommandPool.FreeVKBuffers(b.priorCommandBuffers)
		b.priorCommandBuffers = nil
	}

	b.GraphicsApp.Destroy()

	if b.Window != nil {
		b.Window.Destroy()
	}
	glfw.Terminate()
}

func (b *AppBase) ShouldClose() bool {
	return b.Window.ShouldClose()
}

// NewFrame pumps window messages and lets each module prepare for the frame
func (b *AppBase) NewFrame() {
	glfw.PollEvents()

	for _, g := range b.GraphicsModules {
		g.NewFrame(b)
	}
}

func (b *AppBase) PostFrame() {
	glfw.PollEvents()

	for _, g := range b.GraphicsModules {
		g.PostFrame()
	}
}
