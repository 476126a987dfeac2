/*
Package vkg wraps the parts of the Vulkan API a small renderer needs, so that the
rest of the program can talk in terms of pools, textures and pipelines instead of
create info structures.

Native vulkan structures stay exposed on every object through fields prefixed
with 'VK', callers are never limited to what this package wraps.

Vulkan terms used throughout
	Instance	the vulkan runtime instance
	PhysicalDevice	the physical hardware device
	Device		the logical device, the target of most of the vulkan apis
	Queue		a queue which command buffers are submitted to
	DeviceMemory	an allocation of memory on the host or the device
	Buffer		vertex, index or uniform data bound to device memory
	Image		texel data bound to device memory
	ImageView	a description of how an image is viewed by shaders or attachments
	DescriptorSet	a mapping of buffers and images for use by shaders
	Swapchain	the images the window presents

What this package adds

GraphicsApp:
	window surface, device and swapchain setup plus synchronized frame drawing
ResourceManager:
	named memory pools which buffers and images are sub-allocated from, and a
	staging pool used to upload textures
GraphicsPipelineConfig:
	defaults for building graphics pipelines which are rebuilt with the swapchain
*/
package vkg
