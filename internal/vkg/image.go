package vkg

import (
	vk "github.com/vulkan-go/vulkan"
)

type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	Extent   vk.Extent2D
}

// CreateImage creates an unbound 2D image with a single mip level and layer
func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*Image, error) {
	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(usage),
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var image vk.Image
	err := vk.Error(vk.CreateImage(d.VKDevice, &createInfo, nil, &image))
	if err != nil {
		return nil, err
	}

	return &Image{Device: d, VKImage: image, VKFormat: format, Extent: extent}, nil
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var mr vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &mr)
	mr.Deref()
	return mr
}

func (i *Image) Destroy() {
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
}

// CreateImageView creates a color view of the image
func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	err := vk.Error(vk.CreateImageView(i.Device.VKDevice, &createInfo, nil, &view))
	if err != nil {
		return nil, err
	}
	return &ImageView{Device: i.Device, VKImageView: view}, nil
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *ImageView) Destroy() {
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
}

// ImageResource is an image whose memory is allocated from an ImageResourcePool,
// or from its own exclusive memory when IndividualPool is set
type ImageResource struct {
	Image
	ResourcePool    *ImageResourcePool
	Allocation      *Allocation
	StagingResource *BufferResource
	IndividualPool  bool
	freed           bool
}

// AllocateStagingResource allocates a host visible buffer from the staging
// pool large enough to hold the image data. It must be freed with FreeStagingResource.
func (r *ImageResource) AllocateStagingResource(size uint64) error {
	stagingPool := r.ResourcePool.ResourceManager.StagingPool()
	if stagingPool == nil {
		return ErrNoStagingPool
	}
	var err error
	r.StagingResource, err = stagingPool.AllocateBuffer(size, vk.BufferUsageTransferSrcBit)
	return err
}

func (r *ImageResource) FreeStagingResource() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
}

// Free this resource and its associated resources
func (r *ImageResource) Free() {
	r.FreeStagingResource()
	if r.freed {
		return
	}
	r.freed = true
	r.Image.Destroy()
	if r.IndividualPool && r.ResourcePool != nil {
		r.ResourcePool.Memory.Destroy()
		r.ResourcePool = nil
	} else if r.Allocation != nil {
		r.ResourcePool.Allocator.Free(r.Allocation)
		r.Allocation = nil
	}
}

func (r *ImageResource) Destroy() {
	r.Free()
}
