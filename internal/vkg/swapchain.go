package vkg

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// PreferredSurfaceFormat is used for the swapchain when the surface offers it
const PreferredSurfaceFormat = vk.FormatB8g8r8a8Unorm

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	PresentMode vk.PresentMode
	Device      *Device
	VKSwapchain vk.Swapchain
}

// DefaultNumSwapchainImages returns one more image than the surface minimum,
// clamped to the surface maximum
func (d *Device) DefaultNumSwapchainImages(surface vk.Surface) (int, error) {
	caps, err := d.PhysicalDevice.SurfaceCapabilities(surface)
	if err != nil {
		return 0, err
	}
	return numSwapchainImages(caps.MinImageCount, caps.MaxImageCount), nil
}

func numSwapchainImages(minImages, maxImages uint32) int {
	n := minImages + 1
	if maxImages > 0 && n > maxImages {
		n = maxImages
	}
	return int(n)
}

func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, fmt.Errorf("surface reports no formats")
	}
	for _, f := range formats {
		if f.Format == PreferredSurfaceFormat {
			return f, nil
		}
	}
	// A single undefined entry means the surface has no preference
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{Format: PreferredSurfaceFormat, ColorSpace: formats[0].ColorSpace}, nil
	}
	return formats[0], nil
}

// chooseExtent picks the surface's current extent unless the surface lets the swapchain decide
func chooseExtent(caps vk.SurfaceCapabilities, actual vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	clamp := func(v, lo, hi uint32) uint32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return vk.Extent2D{
		Width:  clamp(actual.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(actual.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// CreateSwapchain creates a swapchain for the surface, actual is the framebuffer size of the window
func (d *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, actual vk.Extent2D, numImages int) (*Swapchain, error) {
	modes, err := d.PhysicalDevice.SurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	presentMode := choosePresentMode(modes)

	formats, err := d.PhysicalDevice.SurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	format, err := chooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}

	caps, err := d.PhysicalDevice.SurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}
	extent := chooseExtent(caps, actual)

	if numImages == 0 {
		numImages = numSwapchainImages(caps.MinImageCount, caps.MaxImageCount)
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    uint32(numImages),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		PresentMode:      presentMode,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
		ImageSharingMode: vk.SharingModeExclusive,
	}

	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(graphicsQueue.QueueFamily.Index), uint32(presentQueue.QueueFamily.Index)}
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(d.VKDevice, &createInfo, nil, &swapchain))
	if err != nil {
		return nil, fmt.Errorf("unable to create swapchain: %w", err)
	}

	return &Swapchain{
		Extent:      extent,
		Format:      format.Format,
		PresentMode: presentMode,
		Device:      d,
		VKSwapchain: swapchain,
	}, nil
}

// GetImages returns the images owned by the swapchain, they must not be destroyed
func (s *Swapchain) GetImages() ([]*Image, error) {
	var count uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, nil))
	if err != nil {
		return nil, err
	}

	images := make([]vk.Image, count)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, images))
	if err != nil {
		return nil, err
	}

	ret := make([]*Image, count)
	for i := range images {
		ret[i] = &Image{Device: s.Device, VKImage: images[i], VKFormat: s.Format, Extent: s.Extent}
	}
	return ret, nil
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}
