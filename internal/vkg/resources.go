package vkg

import (
	"errors"
	"fmt"
	"log"

	units "github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
)

const StagingPoolName = "staging"

var (
	ErrInsufficientPoolSpace = errors.New("insufficient storage space in resource pool")
	ErrNoStagingPool         = fmt.Errorf("no resource pool named '%s' for staging resources, please insure it has been created", StagingPoolName)
)

// BufferResourcePool is one block of device memory which buffers are sub-allocated from
type BufferResourcePool struct {
	Name             string
	Usage            vk.BufferUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        Allocator
	Memory           *DeviceMemory
	ResourceManager  *ResourceManager
}

// AllocateBuffer creates a buffer and binds it to a region of the pool
func (p *BufferResourcePool) AllocateBuffer(size uint64, usage vk.BufferUsageFlagBits) (*BufferResource, error) {
	buffer, err := p.ResourceManager.Device.CreateBuffer(size, usage, p.Sharing)
	if err != nil {
		return nil, err
	}

	mr := buffer.VKMemoryRequirements()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		buffer.Destroy()
		return nil, fmt.Errorf("pool '%s' can't fit %d bytes: %w", p.Name, mr.Size, ErrInsufficientPoolSpace)
	}

	err = buffer.Bind(p.Memory, allocation.Offset)
	if err != nil {
		p.Allocator.Free(allocation)
		buffer.Destroy()
		return nil, err
	}

	return &BufferResource{Buffer: *buffer, ResourcePool: p, Allocation: allocation}, nil
}

// Map maps the whole pool so the Bytes of its buffers can be written
func (p *BufferResourcePool) Map() error {
	_, err := p.Memory.Map()
	return err
}

func (p *BufferResourcePool) LogDetails() {
	log.Printf("buffer pool %s: %s of %s used, usage %s", p.Name,
		units.BytesSize(float64(p.Allocator.Used())), units.BytesSize(float64(p.Size)), usageToString(p.Usage))
}

func (p *BufferResourcePool) Destroy() {
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.bufferPools, p.Name)
}

// ImageResourcePool is one block of device memory which images are sub-allocated from
type ImageResourcePool struct {
	Name             string
	Usage            vk.ImageUsageFlagBits
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        Allocator
	Memory           *DeviceMemory
	ResourceManager  *ResourceManager
}

// AllocateImage creates an image and binds it to a region of the pool
func (p *ImageResourcePool) AllocateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*ImageResource, error) {
	img, err := p.ResourceManager.Device.CreateImage(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	mr := img.VKMemoryRequirements()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		img.Destroy()
		return nil, fmt.Errorf("pool '%s' can't fit %d bytes: %w", p.Name, mr.Size, ErrInsufficientPoolSpace)
	}

	err = vk.Error(vk.BindImageMemory(p.ResourceManager.Device.VKDevice, img.VKImage, p.Memory.VKDeviceMemory, vk.DeviceSize(allocation.Offset)))
	if err != nil {
		p.Allocator.Free(allocation)
		img.Destroy()
		return nil, err
	}

	return &ImageResource{Image: *img, ResourcePool: p, Allocation: allocation}, nil
}

func (p *ImageResourcePool) LogDetails() {
	log.Printf("image pool %s: %s of %s used", p.Name,
		units.BytesSize(float64(p.Allocator.Used())), units.BytesSize(float64(p.Size)))
}

func (p *ImageResourcePool) Destroy() {
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.imagePools, p.Name)
}

// ResourceManager owns the named memory pools of an application
type ResourceManager struct {
	Device      *Device
	bufferPools map[string]*BufferResourcePool
	imagePools  map[string]*ImageResourcePool
}

func (d *Device) CreateResourceManager() *ResourceManager {
	return &ResourceManager{
		Device:      d,
		bufferPools: make(map[string]*BufferResourcePool),
		imagePools:  make(map[string]*ImageResourcePool),
	}
}

func (r *ResourceManager) StagingPool() *BufferResourcePool {
	return r.bufferPools[StagingPoolName]
}

// AllocateStagingPool allocates the host visible pool used to upload textures
func (r *ResourceManager) AllocateStagingPool(size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPool(StagingPoolName, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageTransferSrcBit)
}

// AllocateHostBufferPool allocates a host visible, coherent pool for data the CPU rewrites every frame
func (r *ResourceManager) AllocateHostBufferPool(name string, size uint64, usage vk.BufferUsageFlagBits) (*BufferResourcePool, error) {
	return r.AllocateBufferPool(name, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, usage)
}

// AllocateDeviceTexturePool allocates a device local pool for sampled textures
func (r *ResourceManager) AllocateDeviceTexturePool(name string, size uint64) (*ImageResourcePool, error) {
	return r.AllocateImagePool(name, size, vk.MemoryPropertyDeviceLocalBit, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
}

func (r *ResourceManager) AllocateBufferPool(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.BufferUsageFlagBits) (*BufferResourcePool, error) {
	if _, ok := r.bufferPools[name]; ok {
		return nil, fmt.Errorf("buffer pool '%s' already exists", name)
	}

	// A throwaway buffer tells us which memory types can back this usage
	probe, err := r.Device.CreateBuffer(size, usage, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()

	memory, err := r.Device.Allocate(size, mr.MemoryTypeBits, mprops)
	if err != nil {
		return nil, fmt.Errorf("unable to back buffer pool '%s': %w", name, err)
	}

	p := &BufferResourcePool{
		Name:             name,
		Usage:            usage,
		Sharing:          vk.SharingModeExclusive,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		Memory:           memory,
		ResourceManager:  r,
	}
	r.bufferPools[name] = p
	return p, nil
}

func (r *ResourceManager) AllocateImagePool(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.ImageUsageFlagBits) (*ImageResourcePool, error) {
	if _, ok := r.imagePools[name]; ok {
		return nil, fmt.Errorf("image pool '%s' already exists", name)
	}

	probe, err := r.Device.CreateImage(vk.Extent2D{Width: 1, Height: 1}, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, usage)
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()

	memory, err := r.Device.Allocate(size, mr.MemoryTypeBits, mprops)
	if err != nil {
		return nil, fmt.Errorf("unable to back image pool '%s': %w", name, err)
	}

	p := &ImageResourcePool{
		Name:             name,
		Usage:            usage,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		Memory:           memory,
		ResourceManager:  r,
	}
	r.imagePools[name] = p
	return p, nil
}

// NewImageResource creates an image backed by its own memory allocation, the
// depth buffer for example, which is recreated along with the swapchain
func (r *ResourceManager) NewImageResource(extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlagBits, mprops vk.MemoryPropertyFlagBits) (*ImageResource, error) {
	img, err := r.Device.CreateImage(extent, format, vk.ImageTilingOptimal, usage)
	if err != nil {
		return nil, err
	}

	mr := img.VKMemoryRequirements()

	memory, err := r.Device.Allocate(uint64(mr.Size), mr.MemoryTypeBits, mprops)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	err = vk.Error(vk.BindImageMemory(r.Device.VKDevice, img.VKImage, memory.VKDeviceMemory, 0))
	if err != nil {
		memory.Destroy()
		img.Destroy()
		return nil, err
	}

	pool := &ImageResourcePool{
		Usage:            usage,
		MemoryProperties: mprops,
		Size:             uint64(mr.Size),
		Memory:           memory,
		ResourceManager:  r,
	}

	return &ImageResource{Image: *img, ResourcePool: pool, IndividualPool: true}, nil
}

func (r *ResourceManager) LogDetails() {
	for _, pool := range r.bufferPools {
		pool.LogDetails()
	}
	for _, pool := range r.imagePools {
		pool.LogDetails()
	}
}

func (r *ResourceManager) Destroy() {
	for _, p := range r.bufferPools {
		p.Destroy()
	}
	for _, p := range r.imagePools {
		p.Destroy()
	}
}

// EnsureStagingPool returns a staging pool of at least size bytes. A smaller
// pool with nothing allocated from it is replaced.
func (r *ResourceManager) EnsureStagingPool(size uint64) (*BufferResourcePool, error) {
	p := r.StagingPool()
	if p != nil && p.Size >= size {
		return p, nil
	}
	if p != nil {
		if p.Allocator.Used() > 0 {
			return nil, fmt.Errorf("staging pool of %s is in use, can't grow it to %s: %w",
				units.BytesSize(float64(p.Size)), units.BytesSize(float64(size)), ErrInsufficientPoolSpace)
		}
		p.Destroy()
	}
	return r.AllocateStagingPool(size)
}
