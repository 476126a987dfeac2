package vkg

import (
	"errors"
	"fmt"
	"log"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// FrameLag is the number of frames which may be in flight
var FrameLag = 3

// DepthFormat is the format of the depth attachment of the render pass
const DepthFormat = vk.FormatD32Sfloat

var ErrNoDevices = errors.New("no vulkan devices found")

// GraphicsApp is a utility object which implements many of the core requirements to
// get to a functioning Vulkan app. It will setup the appropriate devices and do many
// of the necessary preparations to begin drawing.
//
// See https://vulkan-tutorial.com/ for a good walkthrough of what this code does.
type GraphicsApp struct {
	Instance *Instance
	App      *App

	Window    *glfw.Window
	VKSurface vk.Surface

	Device         *Device
	PhysicalDevice *PhysicalDevice

	GraphicsPipelineConfigs map[string]IGraphicsPipelineConfig

	// Generated from GraphicsPipelineConfigs
	GraphicsPipelines map[string]vk.Pipeline

	ResourceManager *ResourceManager

	GraphicsQueue *Queue
	PresentQueue  *Queue
	PipelineCache *PipelineCache

	GraphicsCommandPool    *CommandPool
	GraphicsCommandBuffers []*CommandBuffer

	DefaultNumSwapchainImages int

	presentCompleteSemaphore []vk.Semaphore
	renderCompleteSemaphore  []vk.Semaphore
	waitFences               []vk.Fence

	frameIndex int

	screenExtent vk.Extent2D

	Swapchain           *Swapchain
	SwapchainImages     []*Image
	SwapchainImageViews []*ImageView
	DepthImage          *ImageResource
	DepthImageView      *ImageView
	Framebuffers        []vk.Framebuffer

	VKRenderPass vk.RenderPass

	// MakeCommandBuffer records the primary command buffer for the given swapchain image
	MakeCommandBuffer func(command *CommandBuffer, frame int) error
}

// NewGraphicsApp creates a new graphics app with the given name and version
func NewGraphicsApp(name string, version Version) *GraphicsApp {
	return &GraphicsApp{
		App: &App{Name: name, EngineName: "vkg", Version: version},
	}
}

// EnableDebugging enables validation, it must be called before Init
func (p *GraphicsApp) EnableDebugging() bool {
	if p.Instance != nil {
		return false
	}
	return p.App.EnableDebugging()
}

// SetWindow sets the GLFW window for the graphics app, it must be called before Init
func (p *GraphicsApp) SetWindow(window *glfw.Window) error {
	if p.Instance != nil {
		return fmt.Errorf("window must be set prior to initialization")
	}

	p.Window = window

	for _, ext := range window.GetRequiredInstanceExtensions() {
		err := p.App.EnableExtension(ext)
		if err != nil {
			return fmt.Errorf("extension '%s' required by glfw is unavailable: %w", ext, err)
		}
	}

	p.refreshScreenExtent()
	return nil
}

// Init creates the instance, surface, device, queues, command pool and resource manager
func (p *GraphicsApp) Init() error {
	if p.Window == nil {
		return fmt.Errorf("no window has been set")
	}

	var err error
	p.Instance, err = p.App.CreateInstance()
	if err != nil {
		return err
	}

	if p.App.Debugging() {
		err = p.Instance.UseDefaultDebugCallback()
		if err != nil {
			log.Printf("unable to install debug callback: %v", err)
		}
	}

	surface, err := p.Window.CreateWindowSurface(p.Instance.VKInstance, nil)
	if err != nil {
		return fmt.Errorf("unable to create window surface: %w", err)
	}
	p.VKSurface = vk.SurfaceFromPointer(surface)

	physicalDevices, err := p.Instance.PhysicalDevices()
	if err != nil {
		return fmt.Errorf("error getting devices: %w", err)
	}
	if len(physicalDevices) == 0 {
		return ErrNoDevices
	}

	var pdevice *PhysicalDevice
	var gqueues, pqueues QueueFamilySlice
	for _, candidate := range physicalDevices {
		families := candidate.QueueFamilies()
		g := families.FilterGraphics()
		pr := families.FilterPresent(p.VKSurface)
		if len(g) > 0 && len(pr) > 0 {
			pdevice, gqueues, pqueues = candidate, g, pr
			break
		}
	}
	if pdevice == nil {
		return fmt.Errorf("no device can both render and present to the window: %w", ErrNoDevices)
	}

	// Prefer a single family which does both
	gq, pq := gqueues[0], pqueues[0]
	for _, q := range gqueues {
		if q.SupportsPresent(p.VKSurface) {
			gq, pq = q, q
			break
		}
	}

	families := QueueFamilySlice{gq}
	if pq.Index != gq.Index {
		families = append(families, pq)
	}

	ldevice, err := pdevice.CreateLogicalDevice(families, []string{SwapchainExtension})
	if err != nil {
		return fmt.Errorf("unable to create device: %w", err)
	}

	p.Device = ldevice
	p.PhysicalDevice = pdevice
	p.GraphicsQueue = ldevice.GetQueue(gq)
	p.PresentQueue = ldevice.GetQueue(pq)

	log.Printf("using device %s, graphics queue %v, present queue %v", pdevice, gq, pq)

	p.DefaultNumSwapchainImages, err = p.Device.DefaultNumSwapchainImages(p.VKSurface)
	if err != nil {
		return err
	}

	p.GraphicsCommandPool, err = p.Device.CreateCommandPool(p.GraphicsQueue.QueueFamily)
	if err != nil {
		return err
	}

	p.ResourceManager = p.Device.CreateResourceManager()

	return nil
}

// CreateGraphicsPipelineConfig creates a graphic pipeline configuration for customization
func (p *GraphicsApp) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return p.Device.CreateGraphicsPipelineConfig()
}

// AddGraphicsPipelineConfig registers a named pipeline, it is built by PrepareToDraw
// and rebuilt along with the swapchain
func (p *GraphicsApp) AddGraphicsPipelineConfig(name string, config IGraphicsPipelineConfig) {
	if p.GraphicsPipelineConfigs == nil {
		p.GraphicsPipelineConfigs = make(map[string]IGraphicsPipelineConfig)
	}
	p.GraphicsPipelineConfigs[name] = config
}

// PrepareToDraw creates the objects required to start drawing, it must be called
// after Init and after MakeCommandBuffer is set
func (p *GraphicsApp) PrepareToDraw() error {
	if p.MakeCommandBuffer == nil {
		return fmt.Errorf("no function to make command buffers has been configured")
	}

	var err error
	p.PipelineCache, err = p.Device.CreatePipelineCache()
	if err != nil {
		return err
	}

	err = p.createSwapchainResources()
	if err != nil {
		return err
	}

	err = p.createSyncObjects()
	if err != nil {
		return err
	}

	p.frameIndex = 0
	return nil
}

func (p *GraphicsApp) createSwapchainResources() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"swapchain", p.createSwapchainAndImages},
		{"render pass", p.createRenderPass},
		{"graphics pipelines", p.createGraphicsPipelines},
		{"depth image", p.createDepthImage},
		{"framebuffers", p.createFramebuffers},
		{"command buffers", p.createCommandBuffers},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("unable to create %s: %w", s.name, err)
		}
	}
	return nil
}

func (p *GraphicsApp) destroySwapchainResources() {
	p.destroyCommandBuffers()
	p.destroyFramebuffers()
	p.destroyDepthImage()
	p.destroyGraphicsPipelines()
	p.destroyRenderPass()
	p.destroySwapchainAndImages()
}

// rebuildSwapchain recreates everything which depends on the surface size
func (p *GraphicsApp) rebuildSwapchain() error {
	err := p.Device.WaitIdle()
	if err != nil {
		return err
	}

	p.refreshScreenExtent()
	// A minimized window has no surface to present to
	for p.screenExtent.Width == 0 || p.screenExtent.Height == 0 {
		if p.Window.ShouldClose() {
			return nil
		}
		glfw.WaitEvents()
		p.refreshScreenExtent()
	}

	p.destroySwapchainResources()

	err = p.createSwapchainResources()
	if err != nil {
		return err
	}

	log.Printf("rebuilt swapchain at %dx%d", p.Swapchain.Extent.Width, p.Swapchain.Extent.Height)
	p.frameIndex = 0
	return nil
}

// DrawFrameSync draws one frame at a time to the GPU. It does not utilize the GPU
// particularly well but insures that resources used by the recorded command buffers
// are not also in use by the GPU. MakeCommandBuffer is called to record each frame.
func (p *GraphicsApp) DrawFrameSync() error {
	fence := p.waitFences[p.frameIndex]
	err := vk.Error(vk.WaitForFences(p.Device.VKDevice, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64))
	if err != nil {
		return err
	}

	var imageIndex uint32
	res := vk.AcquireNextImage(p.Device.VKDevice, p.Swapchain.VKSwapchain, vk.MaxUint64, p.presentCompleteSemaphore[p.frameIndex], vk.NullFence, &imageIndex)
	if res == vk.ErrorOutOfDate {
		return p.rebuildSwapchain()
	}
	if res != vk.Suboptimal {
		if err = vk.Error(res); err != nil {
			return fmt.Errorf("unable to acquire swapchain image: %w", err)
		}
	}

	err = vk.Error(vk.ResetFences(p.Device.VKDevice, 1, []vk.Fence{fence}))
	if err != nil {
		return err
	}

	cmd := p.GraphicsCommandBuffers[imageIndex]
	err = cmd.Reset()
	if err != nil {
		return err
	}
	err = p.MakeCommandBuffer(cmd, int(imageIndex))
	if err != nil {
		return fmt.Errorf("unable to record frame: %w", err)
	}

	waitSemaphores := []vk.Semaphore{p.presentCompleteSemaphore[p.frameIndex]}
	signalSemaphores := []vk.Semaphore{p.renderCompleteSemaphore[p.frameIndex]}
	waitStages := []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}

	submitInfo := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    waitStages,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    signalSemaphores,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd.VKCommandBuffer},
	}}

	err = vk.Error(vk.QueueSubmit(p.GraphicsQueue.VKQueue, 1, submitInfo, fence))
	if err != nil {
		return fmt.Errorf("unable to submit frame: %w", err)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{p.Swapchain.VKSwapchain},
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    signalSemaphores,
		PImageIndices:      []uint32{imageIndex},
	}

	res = vk.QueuePresent(p.PresentQueue.VKQueue, &presentInfo)
	if res == vk.ErrorOutOfDate || res == vk.Suboptimal {
		return p.rebuildSwapchain()
	}
	if err = vk.Error(res); err != nil {
		return fmt.Errorf("unable to present frame: %w", err)
	}

	p.frameIndex = (p.frameIndex + 1) % FrameLag

	// Modules reuse their per frame resources on the next frame
	return p.Device.WaitIdle()
}

func (p *GraphicsApp) createGraphicsPipelines() error {
	if len(p.GraphicsPipelineConfigs) == 0 {
		return nil
	}

	names := make([]string, 0, len(p.GraphicsPipelineConfigs))
	configs := make([]vk.GraphicsPipelineCreateInfo, 0, len(p.GraphicsPipelineConfigs))

	for name, gconfig := range p.GraphicsPipelineConfigs {
		config, err := gconfig.VKGraphicsPipelineCreateInfo(p.Swapchain.Extent)
		if err != nil {
			return fmt.Errorf("error generating graphics pipeline config '%s': %w", name, err)
		}
		config.RenderPass = p.VKRenderPass
		names = append(names, name)
		configs = append(configs, config)
	}

	pipelines := make([]vk.Pipeline, len(configs))
	err := vk.Error(vk.CreateGraphicsPipelines(p.Device.VKDevice, p.PipelineCache.VKPipelineCache,
		uint32(len(configs)), configs, nil, pipelines))
	if err != nil {
		return err
	}

	p.GraphicsPipelines = make(map[string]vk.Pipeline, len(names))
	for i, name := range names {
		p.GraphicsPipelines[name] = pipelines[i]
	}
	return nil
}

func (p *GraphicsApp) destroyGraphicsPipelines() {
	for _, g := range p.GraphicsPipelines {
		vk.DestroyPipeline(p.Device.VKDevice, g, nil)
	}
	p.GraphicsPipelines = nil
}

func (p *GraphicsApp) refreshScreenExtent() {
	width, height := p.Window.GetFramebufferSize()
	p.screenExtent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

// GetScreenExtent returns the size of the swapchain images
func (p *GraphicsApp) GetScreenExtent() vk.Extent2D {
	if p.Swapchain != nil {
		return p.Swapchain.Extent
	}
	return p.screenExtent
}

// VKRenderPassCreateInfo describes a single subpass with a color attachment in the
// swapchain format and a depth attachment
func (p *GraphicsApp) VKRenderPassCreateInfo() vk.RenderPassCreateInfo {
	attachmentDescriptions := []vk.AttachmentDescription{
		{
			Format:         p.Swapchain.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpassDescriptions := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &depthAttachmentRef,
	}}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      subpassDescriptions,
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (p *GraphicsApp) createRenderPass() error {
	renderPassCreateInfo := p.VKRenderPassCreateInfo()
	return vk.Error(vk.CreateRenderPass(p.Device.VKDevice, &renderPassCreateInfo, nil, &p.VKRenderPass))
}

func (p *GraphicsApp) destroyRenderPass() {
	vk.DestroyRenderPass(p.Device.VKDevice, p.VKRenderPass, nil)
	p.VKRenderPass = vk.NullRenderPass
}

func (p *GraphicsApp) createSwapchainAndImages() error {
	swapchain, err := p.Device.CreateSwapchain(p.VKSurface, p.GraphicsQueue, p.PresentQueue, p.screenExtent, p.DefaultNumSwapchainImages)
	if err != nil {
		return err
	}
	p.Swapchain = swapchain

	images, err := swapchain.GetImages()
	if err != nil {
		return err
	}
	p.SwapchainImages = images

	p.SwapchainImageViews = make([]*ImageView, 0, len(images))
	for _, image := range images {
		view, err := image.CreateImageView()
		if err != nil {
			return err
		}
		p.SwapchainImageViews = append(p.SwapchainImageViews, view)
	}
	return nil
}

func (p *GraphicsApp) destroySwapchainAndImages() {
	for _, view := range p.SwapchainImageViews {
		view.Destroy()
	}
	p.SwapchainImageViews = nil
	p.SwapchainImages = nil

	if p.Swapchain != nil {
		p.Swapchain.Destroy()
		p.Swapchain = nil
	}
}

func (p *GraphicsApp) createDepthImage() error {
	var err error
	p.DepthImage, err = p.ResourceManager.NewImageResource(p.Swapchain.Extent, DepthFormat, vk.ImageUsageDepthStencilAttachmentBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return err
	}

	p.DepthImageView, err = p.DepthImage.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	return err
}

func (p *GraphicsApp) destroyDepthImage() {
	if p.DepthImageView != nil {
		p.DepthImageView.Destroy()
		p.DepthImageView = nil
	}
	if p.DepthImage != nil {
		p.DepthImage.Destroy()
		p.DepthImage = nil
	}
}

func (p *GraphicsApp) createFramebuffers() error {
	p.Framebuffers = make([]vk.Framebuffer, len(p.SwapchainImageViews))
	for i, view := range p.SwapchainImageViews {
		attachments := []vk.ImageView{
			view.VKImageView,
			p.DepthImageView.VKImageView,
		}
		fbCreateInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      p.VKRenderPass,
			Layers:          1,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           p.Swapchain.Extent.Width,
			Height:          p.Swapchain.Extent.Height,
		}
		err := vk.Error(vk.CreateFramebuffer(p.Device.VKDevice, &fbCreateInfo, nil, &p.Framebuffers[i]))
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroyFramebuffers() {
	for i := range p.Framebuffers {
		vk.DestroyFramebuffer(p.Device.VKDevice, p.Framebuffers[i], nil)
	}
	p.Framebuffers = nil
}

func (p *GraphicsApp) createCommandBuffers() error {
	p.GraphicsCommandBuffers = make([]*CommandBuffer, 0, len(p.SwapchainImageViews))
	for range p.SwapchainImageViews {
		cmd, err := p.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
		if err != nil {
			return err
		}
		p.GraphicsCommandBuffers = append(p.GraphicsCommandBuffers, cmd)
	}
	return nil
}

func (p *GraphicsApp) destroyCommandBuffers() {
	for _, c := range p.GraphicsCommandBuffers {
		p.GraphicsCommandPool.FreeBuffer(c)
	}
	p.GraphicsCommandBuffers = nil
}

func (p *GraphicsApp) createSyncObjects() error {
	p.presentCompleteSemaphore = make([]vk.Semaphore, FrameLag)
	p.renderCompleteSemaphore = make([]vk.Semaphore, FrameLag)
	p.waitFences = make([]vk.Fence, FrameLag)

	var err error
	for i := 0; i < FrameLag; i++ {
		p.presentCompleteSemaphore[i], err = p.Device.VKCreateSemaphore()
		if err != nil {
			return err
		}
		p.renderCompleteSemaphore[i], err = p.Device.VKCreateSemaphore()
		if err != nil {
			return err
		}
		p.waitFences[i], err = p.Device.VKCreateFence(true)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroySyncObjects() {
	for i := range p.waitFences {
		p.Device.VKDestroySemaphore(p.presentCompleteSemaphore[i])
		p.Device.VKDestroySemaphore(p.renderCompleteSemaphore[i])
		p.Device.VKDestroyFence(p.waitFences[i])
	}
	p.presentCompleteSemaphore = nil
	p.renderCompleteSemaphore = nil
	p.waitFences = nil
}

// Destroy tears down the graphics application, modules must have released
// their resources first
func (p *GraphicsApp) Destroy() {
	if p.Device != nil {
		err := p.Device.WaitIdle()
		if err != nil {
			log.Printf("error waiting for device to idle: %v", err)
		}

		p.destroySwapchainResources()
		p.destroySyncObjects()

		for _, g := range p.GraphicsPipelineConfigs {
			g.Destroy()
		}

		if p.PipelineCache != nil {
			p.PipelineCache.Destroy()
		}

		p.ResourceManager.LogDetails()
		p.ResourceManager.Destroy()

		p.GraphicsCommandPool.Destroy()
		p.Device.Destroy()
	}

	if p.Instance != nil {
		vk.DestroySurface(p.Instance.VKInstance, p.VKSurface, nil)
		p.Instance.Destroy()
	}
}
