package gui

import (
	"fmt"
	"image"
	"unsafe"

	imgui "github.com/inkyblackness/imgui-go/v4"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"

	"github.com/Saitsuno03/pixelgenerator/internal/assets"
	"github.com/Saitsuno03/pixelgenerator/internal/vkg"
)

const (
	PipelineName = "imgui"

	vertexPoolName = "imgui-vdata"
	fontPoolName   = "imgui-fonts"

	fontPoolSize    = 12 * 1024 * 1024
	stagingPoolSize = 32 * 1024 * 1024
)

// UBO is the uniform block of the imgui vertex shader
type UBO struct {
	Proj lin.Mat4x4
}

func (u *UBO) Bytes() []byte {
	return vkg.ToBytes(unsafe.Pointer(&u.Proj[0]), int(unsafe.Sizeof(u.Proj)))
}

// Projection maps imgui's display coordinates, origin top left, onto clip space
func Projection(display imgui.Vec2) lin.Mat4x4 {
	proj := lin.Mat4x4{
		{2, 0, 0, 0},
		{0, 2, 0, 0},
		{0, 0, 1, 0},
		{-1, -1, 0, 1},
	}
	// a minimized window has no size
	if display.X > 0 {
		proj[0][0] /= display.X
	}
	if display.Y > 0 {
		proj[1][1] /= display.Y
	}
	return proj
}

// Scissor converts an imgui clip rectangle (min x, min y, max x, max y) in
// display coordinates into a scissor inside the framebuffer, scale being the
// framebuffer pixels per display unit. ok is false when nothing of the
// rectangle is visible.
func Scissor(clip imgui.Vec4, scale imgui.Vec2, extent vk.Extent2D) (rect vk.Rect2D, ok bool) {
	minX, minY := clip.X*scale.X, clip.Y*scale.Y
	maxX, maxY := clip.Z*scale.X, clip.W*scale.Y
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > float32(extent.Width) {
		maxX = float32(extent.Width)
	}
	if maxY > float32(extent.Height) {
		maxY = float32(extent.Height)
	}
	if maxX <= minX || maxY <= minY {
		return rect, false
	}

	rect.Offset.X = int32(minX)
	rect.Offset.Y = int32(minY)
	rect.Extent.Width = uint32(maxX - minX)
	rect.Extent.Height = uint32(maxY - minY)
	return rect, true
}

// Renderer turns imgui draw data into secondary command buffers
type Renderer struct {
	io  imgui.IO
	app *vkg.GraphicsApp

	ubo UBO

	vertexPool *vkg.BufferResourcePool
	uboBuffer  *vkg.BufferResource

	// vertex and index buffers of the frame in flight
	transientBuffers []*vkg.BufferResource

	descriptorSet       *vkg.DescriptorSet
	descriptorPool      *vkg.DescriptorPool
	descriptorSetLayout *vkg.DescriptorSetLayout
	pipelineLayout      *vkg.PipelineLayout

	fontPool    *vkg.ImageResourcePool
	fontImage   *vkg.ImageResource
	fontView    *vkg.ImageView
	fontSampler vk.Sampler
	hasSampler  bool

	maxVertexes int
	maxIndexes  int
}

func NewRenderer(io imgui.IO, app *vkg.GraphicsApp, maxVertexes, maxIndexes int) *Renderer {
	return &Renderer{io: io, app: app, maxIndexes: maxIndexes, maxVertexes: maxVertexes}
}

func (r *Renderer) GetBindingDescription() vk.VertexInputBindingDescription {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()

	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (r *Renderer) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	_, posOffset, uvOffset, colOffset := imgui.VertexBufferLayout()

	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(posOffset)},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: uint32(uvOffset)},
		// packed ABGR, read as normalized rgba
		{Binding: 0, Location: 2, Format: vk.FormatR8g8b8a8Unorm, Offset: uint32(colOffset)},
	}
}

// Init creates the buffers, font texture, descriptors and pipeline config
func (r *Renderer) Init() error {
	_, err := r.app.ResourceManager.EnsureStagingPool(stagingPoolSize)
	if err != nil {
		return err
	}

	err = r.createVertexAndIndexBuffers()
	if err != nil {
		return err
	}
	err = r.createFontTexture()
	if err != nil {
		return err
	}
	err = r.createDescriptorSet()
	if err != nil {
		return err
	}
	return r.createGraphicsPipeline()
}

func (r *Renderer) createVertexAndIndexBuffers() error {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	indexSize := imgui.IndexBufferLayout()
	uboSize := int(unsafe.Sizeof(UBO{}))

	// alignment padding between the per list buffers
	poolSize := vertexSize*r.maxVertexes + indexSize*r.maxIndexes + uboSize + 1024*1024

	var err error
	r.vertexPool, err = r.app.ResourceManager.AllocateHostBufferPool(vertexPoolName, uint64(poolSize),
		vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit|vk.BufferUsageUniformBufferBit)
	if err != nil {
		return fmt.Errorf("unable to allocate vertex pool: %w", err)
	}

	r.uboBuffer, err = r.vertexPool.AllocateBuffer(uint64(uboSize), vk.BufferUsageUniformBufferBit)
	if err != nil {
		return fmt.Errorf("unable to allocate buffer for ubo: %w", err)
	}

	return r.vertexPool.Map()
}

func (r *Renderer) createFontTexture() error {
	fontTexture := r.io.Fonts().TextureDataRGBA32()

	fontImg := image.NewRGBA(image.Rect(0, 0, fontTexture.Width, fontTexture.Height))
	copy(fontImg.Pix, vkg.ToBytes(fontTexture.Pixels, fontTexture.Width*fontTexture.Height*4))

	var err error
	r.fontPool, err = r.app.ResourceManager.AllocateDeviceTexturePool(fontPoolName, fontPoolSize)
	if err != nil {
		return err
	}

	cb, err := r.app.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}
	defer r.app.GraphicsCommandPool.FreeBuffer(cb)

	r.fontImage, err = r.fontPool.StageTexture(fontImg, cb, r.app.GraphicsQueue)
	if err != nil {
		return fmt.Errorf("unable to upload font atlas: %w", err)
	}

	r.fontView, err = r.fontImage.CreateImageView()
	if err != nil {
		return err
	}

	r.fontSampler, err = r.app.Device.CreateSampler()
	if err != nil {
		return err
	}
	r.hasSampler = true
	return nil
}

func (r *Renderer) createDescriptorSet() error {
	r.descriptorPool = r.app.Device.NewDescriptorPool()
	r.descriptorPool.AddPoolSize(vk.DescriptorTypeUniformBuffer, 1)
	r.descriptorPool.AddPoolSize(vk.DescriptorTypeCombinedImageSampler, 1)
	err := r.descriptorPool.Create(1)
	if err != nil {
		return err
	}

	r.descriptorSetLayout = r.app.Device.NewDescriptorSetLayout().
		AddBinding(vk.DescriptorSetLayoutBinding{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}).
		AddBinding(vk.DescriptorSetLayoutBinding{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	err = r.descriptorSetLayout.Create()
	if err != nil {
		return err
	}

	r.descriptorSet, err = r.descriptorPool.Allocate(r.descriptorSetLayout)
	if err != nil {
		return err
	}
	r.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &r.uboBuffer.Buffer, 0)
	r.descriptorSet.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, r.fontView.VKImageView, r.fontSampler)
	r.descriptorSet.Write()

	r.pipelineLayout, err = r.app.Device.CreatePipelineLayout(r.descriptorSetLayout)
	return err
}

func (r *Renderer) createGraphicsPipeline() error {
	gc := r.app.CreateGraphicsPipelineConfig()

	gc.AddVertexDescriptor(r)
	gc.AddBlendAttachment(vk.PipelineColorBlendAttachmentState{
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		BlendEnable:         vk.True,
	})
	err := gc.AddShaderStageFromFile(assets.ImGUIVertexShader, "main", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	err = gc.AddShaderStageFromFile(assets.ImGUIFragmentShader, "main", vk.ShaderStageFragmentBit)
	if err != nil {
		gc.Destroy()
		return err
	}
	gc.SetDynamicState(vk.DynamicStateViewport, vk.DynamicStateScissor)
	gc.SetCullMode(vk.CullModeNone)
	gc.DepthWriteEnable = false
	gc.DepthTestEnable = false
	gc.SetPipelineLayout(r.pipelineLayout)

	r.app.AddGraphicsPipelineConfig(PipelineName, gc)
	return nil
}

// freeTransientBuffers releases the buffers of the previous frame, which has
// completed since frames are drawn synchronously
func (r *Renderer) freeTransientBuffers() {
	for _, b := range r.transientBuffers {
		b.Free()
	}
	r.transientBuffers = r.transientBuffers[:0]
}

func (r *Renderer) setupUBO(display imgui.Vec2) {
	r.ubo.Proj = Projection(display)
	copy(r.uboBuffer.Bytes(), r.ubo.Bytes())
}

// Render records one secondary command buffer per imgui draw list. Vertices
// are in display coordinates, fbScale converts them to framebuffer pixels.
func (r *Renderer) Render(renderPass vk.RenderPass, framebuffer vk.Framebuffer, displaySize, fbScale imgui.Vec2, drawData imgui.DrawData) ([]vk.CommandBuffer, error) {
	extent := r.app.GetScreenExtent()

	r.freeTransientBuffers()
	r.setupUBO(displaySize)

	indexType := vk.IndexTypeUint16
	if imgui.IndexBufferLayout() == 4 {
		indexType = vk.IndexTypeUint32
	}

	pipeline, ok := r.app.GraphicsPipelines[PipelineName]
	if !ok {
		return nil, fmt.Errorf("pipeline '%s' has not been created", PipelineName)
	}

	lists := drawData.CommandLists()
	buffers := make([]vk.CommandBuffer, 0, len(lists))

	for _, list := range lists {
		vertexData, vertexDataSize := list.VertexBuffer()
		indexData, indexDataSize := list.IndexBuffer()
		if vertexDataSize == 0 || indexDataSize == 0 {
			continue
		}

		vbuff, err := r.vertexPool.AllocateBuffer(uint64(vertexDataSize), vk.BufferUsageVertexBufferBit)
		if err != nil {
			r.app.GraphicsCommandPool.FreeVKBuffers(buffers)
			return nil, fmt.Errorf("unable to allocate vertex buffer: %w", err)
		}
		r.transientBuffers = append(r.transientBuffers, vbuff)

		ibuff, err := r.vertexPool.AllocateBuffer(uint64(indexDataSize), vk.BufferUsageIndexBufferBit)
		if err != nil {
			r.app.GraphicsCommandPool.FreeVKBuffers(buffers)
			return nil, fmt.Errorf("unable to allocate index buffer: %w", err)
		}
		r.transientBuffers = append(r.transientBuffers, ibuff)

		copy(vbuff.Bytes(), vkg.ToBytes(vertexData, vertexDataSize))
		copy(ibuff.Bytes(), vkg.ToBytes(indexData, indexDataSize))

		cmdb, err := r.app.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelSecondary)
		if err != nil {
			r.app.GraphicsCommandPool.FreeVKBuffers(buffers)
			return nil, err
		}
		buffers = append(buffers, cmdb.VK())

		err = cmdb.BeginContinueRenderPass(renderPass, framebuffer)
		if err != nil {
			r.app.GraphicsCommandPool.FreeVKBuffers(buffers)
			return nil, err
		}

		vk.CmdSetViewport(cmdb.VK(), 0, 1, []vk.Viewport{{
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		}})

		vk.CmdBindPipeline(cmdb.VK(), vk.PipelineBindPointGraphics, pipeline)
		vk.CmdBindDescriptorSets(cmdb.VK(), vk.PipelineBindPointGraphics,
			r.pipelineLayout.VKPipelineLayout, 0, 1,
			[]vk.DescriptorSet{r.descriptorSet.VKDescriptorSet}, 0, nil)

		vk.CmdBindVertexBuffers(cmdb.VK(), 0, 1, []vk.Buffer{vbuff.VKBuffer}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cmdb.VK(), ibuff.VKBuffer, 0, indexType)

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else if scissor, visible := Scissor(cmd.ClipRect(), fbScale, extent); visible {
				vk.CmdSetScissor(cmdb.VK(), 0, 1, []vk.Rect2D{scissor})
				vk.CmdDrawIndexed(cmdb.VK(), uint32(cmd.ElementCount()), 1, uint32(cmd.IndexOffset()), int32(cmd.VertexOffset()), 0)
			}
		}

		err = cmdb.End()
		if err != nil {
			r.app.GraphicsCommandPool.FreeVKBuffers(buffers)
			return nil, err
		}
	}

	return buffers, nil
}

func (r *Renderer) Destroy() {
	r.freeTransientBuffers()

	if r.pipelineLayout != nil {
		r.pipelineLayout.Destroy()
	}
	if r.descriptorPool != nil {
		r.descriptorPool.Destroy()
	}
	if r.descriptorSetLayout != nil {
		r.descriptorSetLayout.Destroy()
	}
	if r.fontView != nil {
		r.fontView.Destroy()
	}
	if r.hasSampler {
		r.app.Device.DestroySampler(r.fontSampler)
	}
	if r.fontImage != nil {
		r.fontImage.Destroy()
	}
	if r.uboBuffer != nil {
		r.uboBuffer.Destroy()
	}
	if r.fontPool != nil {
		r.fontPool.Destroy()
	}
	if r.vertexPool != nil {
		r.vertexPool.Memory.Unmap()
		r.vertexPool.Destroy()
	}
}
