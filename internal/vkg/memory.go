package vkg

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory maps to Vulkan DeviceMemory and can either be memory on the host or on the device
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	Ptr            unsafe.Pointer
}

// Allocate allocates device memory of a memory type matching memoryTypeBits and properties
func (d *Device) Allocate(sizeInBytes uint64, memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	index, err := d.PhysicalDevice.FindMemoryType(memoryTypeBits, properties)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(sizeInBytes),
		MemoryTypeIndex: index,
	}

	var deviceMemory vk.DeviceMemory
	err = vk.Error(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &deviceMemory))
	if err != nil {
		return nil, fmt.Errorf("unable to allocate %d bytes of device memory: %w", sizeInBytes, err)
	}

	return &DeviceMemory{Device: d, VKDeviceMemory: deviceMemory, Size: sizeInBytes}, nil
}

// Map maps the entirety of this memory, mapping already mapped memory is a no-op
func (m *DeviceMemory) Map() (unsafe.Pointer, error) {
	if m.Ptr != nil {
		return m.Ptr, nil
	}
	var res unsafe.Pointer
	err := vk.Error(vk.MapMemory(m.Device.VKDevice, m.VKDeviceMemory, 0, vk.DeviceSize(m.Size), 0, &res))
	if err != nil {
		return nil, err
	}
	m.Ptr = res
	return res, nil
}

// Bytes returns the mapped range [offset, offset+size), or nil if the memory is not mapped
func (m *DeviceMemory) Bytes(offset, size uint64) []byte {
	if m.Ptr == nil {
		return nil
	}
	return ToBytes(m.Ptr, int(offset+size))[offset:]
}

// Unmap this memory
func (m *DeviceMemory) Unmap() {
	if m.Ptr == nil {
		return
	}
	vk.UnmapMemory(m.Device.VKDevice, m.VKDeviceMemory)
	m.Ptr = nil
}

// Destroy frees this memory
func (m *DeviceMemory) Destroy() {
	m.Unmap()
	vk.FreeMemory(m.Device.VKDevice, m.VKDeviceMemory, nil)
}
