package vkg

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

const stagingTimeout = 10 * time.Second

// ErrUnmappedStaging is returned when the staging pool memory could not be mapped
var ErrUnmappedStaging = errors.New("unable to map bytes for image data, make sure staging buffer has been mapped")

// StageTexture uploads an RGBA image into a new device local image allocated
// from the pool. The copy is recorded into cmd and submitted to queue, the
// call blocks until the upload has completed and the image is ready to sample.
func (p *ImageResourcePool) StageTexture(src *image.RGBA, cmd *CommandBuffer, queue *Queue) (*ImageResource, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("can't stage an empty %dx%d texture", b.Dx(), b.Dy())
	}
	extent := vk.Extent2D{Width: uint32(b.Dx()), Height: uint32(b.Dy())}

	img, err := p.AllocateImage(extent, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}

	err = img.AllocateStagingResource(uint64(len(src.Pix)))
	if err != nil {
		img.Free()
		return nil, err
	}
	defer img.FreeStagingResource()

	err = img.StagingResource.ResourcePool.Map()
	if err != nil {
		img.Free()
		return nil, err
	}

	srb := img.StagingResource.Bytes()
	if srb == nil {
		img.Free()
		return nil, ErrUnmappedStaging
	}
	copy(srb, src.Pix)

	err = cmd.BeginOneTime()
	if err != nil {
		img.Free()
		return nil, err
	}
	cmd.TransitionImageLayout(&img.Image, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	cmd.CopyBufferToImage(&img.StagingResource.Buffer, &img.Image)
	cmd.TransitionImageLayout(&img.Image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	err = cmd.End()
	if err != nil {
		img.Free()
		return nil, err
	}

	f, err := p.ResourceManager.Device.CreateFence()
	if err != nil {
		img.Free()
		return nil, err
	}
	defer f.Destroy()

	err = queue.SubmitWithFence(f, cmd)
	if err != nil {
		img.Free()
		return nil, err
	}

	err = f.Wait(stagingTimeout)
	if err != nil {
		img.Free()
		return nil, fmt.Errorf("texture upload did not complete: %w", err)
	}

	log.Printf("staged %dx%d texture into pool %s", extent.Width, extent.Height, p.Name)
	return img, nil
}

// TransitionImageLayout records a barrier moving a color image between the
// layouts used when uploading a texture
func (c *CommandBuffer) TransitionImageLayout(img *Image, oldLayout, newLayout vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.VKImage,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags

	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		srcStage = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	}

	vk.CmdPipelineBarrier(c.VKCommandBuffer, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// CopyBufferToImage copies tightly packed pixel data covering the whole image
func (c *CommandBuffer) CopyBufferToImage(src *Buffer, dst *Image) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width:  dst.Extent.Width,
			Height: dst.Extent.Height,
			Depth:  1,
		},
	}
	vk.CmdCopyBufferToImage(c.VKCommandBuffer, src.VKBuffer, dst.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}
