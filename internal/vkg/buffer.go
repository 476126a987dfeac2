package vkg

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer describes a hunk of data bound to device memory for use by the
// pipeline, vertex data and uniforms for example
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Usage    vk.BufferUsageFlagBits
}

// CreateBuffer creates an unbound buffer
func (d *Device) CreateBuffer(sizeInBytes uint64, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &createInfo, nil, &buffer))
	if err != nil {
		return nil, err
	}

	return &Buffer{Device: d, VKBuffer: buffer, Size: sizeInBytes, Usage: usage}, nil
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var mr vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &mr)
	mr.Deref()
	return mr
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) String() string {
	return fmt.Sprintf("{ Size: %d Usage: %s }", b.Size, usageToString(b.Usage))
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
	b.VKBuffer = vk.NullBuffer
}

// BufferResource is a buffer based resource, for example a vertex buffer or
// UBO, which has been allocated from a larger pool of device memory managed
// by the ResourceManager.
type BufferResource struct {
	Buffer
	ResourcePool *BufferResourcePool
	Allocation   *Allocation
}

// Bytes returns a byte slice over the mapped memory of this buffer which can
// be read from or copied to. It is nil until the pool memory has been mapped.
func (r *BufferResource) Bytes() []byte {
	return r.ResourcePool.Memory.Bytes(r.Allocation.Offset, r.Allocation.Size)
}

// Free returns the allocation to the pool and destroys the buffer
func (r *BufferResource) Free() {
	if r.Allocation != nil {
		r.ResourcePool.Allocator.Free(r.Allocation)
		r.Allocation = nil
	}
	if r.Buffer.VKBuffer != vk.NullBuffer {
		r.Buffer.Destroy()
	}
}

func (r *BufferResource) Destroy() {
	r.Free()
}

func usageToString(u vk.BufferUsageFlagBits) string {
	names := []struct {
		bit  vk.BufferUsageFlagBits
		name string
	}{
		{vk.BufferUsageTransferSrcBit, "transfer-src"},
		{vk.BufferUsageTransferDstBit, "transfer-dst"},
		{vk.BufferUsageUniformBufferBit, "uniform"},
		{vk.BufferUsageStorageBufferBit, "storage"},
		{vk.BufferUsageIndexBufferBit, "index"},
		{vk.BufferUsageVertexBufferBit, "vertex"},
	}
	s := ""
	for _, n := range names {
		if u&n.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}
