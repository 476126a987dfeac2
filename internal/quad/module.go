// Package quad draws the reference texture over the whole window, tinted by
// the palette.
package quad

import (
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Saitsuno03/pixelgenerator/internal/app"
	"github.com/Saitsuno03/pixelgenerator/internal/assets"
	"github.com/Saitsuno03/pixelgenerator/internal/palette"
	"github.com/Saitsuno03/pixelgenerator/internal/vkg"
)

const (
	PipelineName = "quad"

	dataPoolName    = "quad-data"
	texturePoolName = "quad-texture"

	// room for the vertices, the palette and their alignment
	dataPoolSize = 64 * 1024

	minStagingPoolSize = 32 * 1024 * 1024
	stagingSlack       = 1024 * 1024
)

// Options are the assets the quad is built from
type Options struct {
	VertexShader   string
	FragmentShader string
	Texture        string
}

// DefaultOptions uses the fixed asset paths
func DefaultOptions() Options {
	return Options{
		VertexShader:   assets.QuadVertexShader,
		FragmentShader: assets.QuadFragmentShader,
		Texture:        assets.ReferenceTexture,
	}
}

// QuadModule renders a fullscreen quad sampling the reference texture. The
// palette is copied into the uniform buffer every frame.
type QuadModule struct {
	device  *vkg.Device
	palette *palette.Palette

	vertices VertexData

	dataPool       *vkg.BufferResourcePool
	vertexResource *vkg.BufferResource
	uboResource    *vkg.BufferResource

	texturePool *vkg.ImageResourcePool
	texture     *vkg.ImageResource
	textureView *vkg.ImageView
	sampler     vk.Sampler
	hasSampler  bool

	descriptorPool      *vkg.DescriptorPool
	descriptorSetLayout *vkg.DescriptorSetLayout
	descriptorSet       *vkg.DescriptorSet
	pipelineLayout      *vkg.PipelineLayout
}

// NewQuadModule uploads the quad, its texture and palette buffer and registers
// the quad pipeline with the app
func NewQuadModule(base *app.AppBase, p *palette.Palette, opts Options) (*QuadModule, error) {
	q := &QuadModule{device: base.Device, palette: p, vertices: FullscreenQuad}

	err := q.createBuffers(base)
	if err != nil {
		return nil, fmt.Errorf("quad buffers: %w", err)
	}

	err = q.createTexture(base, opts.Texture)
	if err != nil {
		return nil, fmt.Errorf("quad texture: %w", err)
	}

	err = q.createDescriptorSet(base)
	if err != nil {
		return nil, fmt.Errorf("quad descriptors: %w", err)
	}

	err = q.createGraphicsPipeline(base, opts)
	if err != nil {
		return nil, fmt.Errorf("quad pipeline: %w", err)
	}

	return q, nil
}

func (q *QuadModule) createBuffers(base *app.AppBase) error {
	var err error
	q.dataPool, err = base.ResourceManager.AllocateHostBufferPool(dataPoolName, dataPoolSize, vk.BufferUsageVertexBufferBit|vk.BufferUsageUniformBufferBit)
	if err != nil {
		return err
	}

	vb := q.vertices.Bytes()
	q.vertexResource, err = q.dataPool.AllocateBuffer(uint64(len(vb)), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return err
	}

	q.uboResource, err = q.dataPool.AllocateBuffer(palette.Size, vk.BufferUsageUniformBufferBit)
	if err != nil {
		return err
	}

	// Host coherent, so writes through Bytes need no flush
	err = q.dataPool.Map()
	if err != nil {
		return err
	}

	copy(q.vertexResource.Bytes(), vb)
	q.UpdateUBO()
	return nil
}

// UpdateUBO copies the current palette into the uniform buffer
func (q *QuadModule) UpdateUBO() {
	copy(q.uboResource.Bytes(), q.palette.Bytes())
}

// stagingPoolSize fits an upload of pixBytes, the driver may round the
// staging buffer up
func stagingPoolSize(pixBytes int) uint64 {
	size := uint64(pixBytes) + stagingSlack
	if size < minStagingPoolSize {
		return minStagingPoolSize
	}
	return size
}

func (q *QuadModule) createTexture(base *app.AppBase, path string) error {
	img, err := assets.LoadTexture(path)
	if err != nil {
		return err
	}

	_, err = base.ResourceManager.EnsureStagingPool(stagingPoolSize(len(img.Pix)))
	if err != nil {
		return err
	}

	// optimal tiling may pad the image, leave room for it
	poolSize := uint64(len(img.Pix))*2 + 1024*1024
	q.texturePool, err = base.ResourceManager.AllocateDeviceTexturePool(texturePoolName, poolSize)
	if err != nil {
		return err
	}

	cmd, err := base.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}
	defer base.GraphicsCommandPool.FreeBuffer(cmd)

	q.texture, err = q.texturePool.StageTexture(img, cmd, base.GraphicsQueue)
	if err != nil {
		return err
	}

	q.textureView, err = q.texture.CreateImageView()
	if err != nil {
		return err
	}

	q.sampler, err = base.Device.CreateSampler()
	if err != nil {
		return err
	}
	q.hasSampler = true

	log.Printf("loaded texture %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func (q *QuadModule) createDescriptorSet(base *app.AppBase) error {
	q.descriptorPool = base.Device.NewDescriptorPool()
	q.descriptorPool.AddPoolSize(vk.DescriptorTypeUniformBuffer, 1)
	q.descriptorPool.AddPoolSize(vk.DescriptorTypeCombinedImageSampler, 1)
	err := q.descriptorPool.Create(1)
	if err != nil {
		return err
	}

	q.descriptorSetLayout = base.Device.NewDescriptorSetLayout().
		AddBinding(vk.DescriptorSetLayoutBinding{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}).
		AddBinding(vk.DescriptorSetLayoutBinding{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	err = q.descriptorSetLayout.Create()
	if err != nil {
		return err
	}

	q.descriptorSet, err = q.descriptorPool.Allocate(q.descriptorSetLayout)
	if err != nil {
		return err
	}
	q.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &q.uboResource.Buffer, 0)
	q.descriptorSet.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, q.textureView.VKImageView, q.sampler)
	q.descriptorSet.Write()

	q.pipelineLayout, err = base.Device.CreatePipelineLayout(q.descriptorSetLayout)
	return err
}

func (q *QuadModule) createGraphicsPipeline(base *app.AppBase, opts Options) error {
	gc := base.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(q.vertices)

	err := gc.AddShaderStageFromFile(opts.VertexShader, "main", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	err = gc.AddShaderStageFromFile(opts.FragmentShader, "main", vk.ShaderStageFragmentBit)
	if err != nil {
		gc.Destroy()
		return err
	}

	gc.SetCullMode(vk.CullModeNone)
	gc.DepthTestEnable = false
	gc.DepthWriteEnable = false
	gc.SetPipelineLayout(q.pipelineLayout)

	base.AddGraphicsPipelineConfig(PipelineName, gc)
	return nil
}

func (q *QuadModule) NewFrame(base *app.AppBase) {}
func (q *QuadModule) PostFrame()                 {}

func (q *QuadModule) CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, base *app.AppBase) ([]vk.CommandBuffer, error) {
	q.UpdateUBO()

	pipeline, ok := base.GraphicsPipelines[PipelineName]
	if !ok {
		return nil, fmt.Errorf("pipeline '%s' has not been created", PipelineName)
	}

	cmd, err := base.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelSecondary)
	if err != nil {
		return nil, err
	}

	err = cmd.BeginContinueRenderPass(renderPass, framebuffer)
	if err != nil {
		base.GraphicsCommandPool.FreeBuffer(cmd)
		return nil, err
	}

	vk.CmdBindPipeline(cmd.VK(), vk.PipelineBindPointGraphics, pipeline)
	vk.CmdBindDescriptorSets(cmd.VK(), vk.PipelineBindPointGraphics,
		q.pipelineLayout.VKPipelineLayout, 0, 1,
		[]vk.DescriptorSet{q.descriptorSet.VKDescriptorSet}, 0, nil)
	vk.CmdBindVertexBuffers(cmd.VK(), 0, 1, []vk.Buffer{q.vertexResource.VKBuffer}, []vk.DeviceSize{0})
	vk.CmdDraw(cmd.VK(), uint32(len(q.vertices)), 1, 0, 0)

	err = cmd.End()
	if err != nil {
		base.GraphicsCommandPool.FreeBuffer(cmd)
		return nil, err
	}
	return []vk.CommandBuffer{cmd.VK()}, nil
}

func (q *QuadModule) Destroy() {
	if q.pipelineLayout != nil {
		q.pipelineLayout.Destroy()
	}
	if q.descriptorPool != nil {
		q.descriptorPool.Destroy()
	}
	if q.descriptorSetLayout != nil {
		q.descriptorSetLayout.Destroy()
	}
	if q.textureView != nil {
		q.textureView.Destroy()
	}
	if q.hasSampler {
		q.device.DestroySampler(q.sampler)
	}
	if q.texture != nil {
		q.texture.Destroy()
	}
	if q.vertexResource != nil {
		q.vertexResource.Destroy()
	}
	if q.uboResource != nil {
		q.uboResource.Destroy()
	}
	if q.texturePool != nil {
		q.texturePool.Destroy()
	}
	if q.dataPool != nil {
		q.dataPool.Destroy()
	}
}
