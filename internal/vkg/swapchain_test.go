package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestNumSwapchainImages(t *testing.T) {
	assert.Equal(t, 3, numSwapchainImages(2, 0))
	assert.Equal(t, 3, numSwapchainImages(2, 8))
	assert.Equal(t, 2, numSwapchainImages(2, 2))
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(nil))
}

func TestChooseSurfaceFormat(t *testing.T) {
	_, err := chooseSurfaceFormat(nil)
	assert.Error(t, err)

	f, err := chooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatR8g8b8a8Srgb}, {Format: PreferredSurfaceFormat}})
	assert.NoError(t, err)
	assert.Equal(t, PreferredSurfaceFormat, f.Format)

	f, err = chooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatUndefined}})
	assert.NoError(t, err)
	assert.Equal(t, PreferredSurfaceFormat, f.Format)

	f, err = chooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatR8g8b8a8Srgb}})
	assert.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Srgb, f.Format)
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 800, Height: 600}}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseExtent(caps, vk.Extent2D{Width: 1, Height: 1}))

	caps = vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 1000, Height: 1000},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 100}, chooseExtent(caps, vk.Extent2D{Width: 800, Height: 10}))
	assert.Equal(t, vk.Extent2D{Width: 1000, Height: 600}, chooseExtent(caps, vk.Extent2D{Width: 4000, Height: 600}))
}
