package vkg

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool is the pool descriptor sets are allocated from
type DescriptorPool struct {
	Device               *Device
	VKDescriptorPool     vk.DescriptorPool
	VKDescriptorPoolSize []vk.DescriptorPoolSize
}

func (d *Device) NewDescriptorPool() *DescriptorPool {
	return &DescriptorPool{Device: d}
}

// AddPoolSize informs the descriptor pool how many of a certain descriptor type it will contain
func (p *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) {
	p.VKDescriptorPoolSize = append(p.VKDescriptorPoolSize, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
}

// Create creates the native pool from the added pool sizes
func (p *DescriptorPool) Create(maxSets int) error {
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(p.VKDescriptorPoolSize)),
		PPoolSizes:    p.VKDescriptorPoolSize,
	}

	return vk.Error(vk.CreateDescriptorPool(p.Device.VKDevice, &createInfo, nil, &p.VKDescriptorPool))
}

// Allocate allocates a descriptor set from the pool given the descriptor set layout
func (p *DescriptorPool) Allocate(layout *DescriptorSetLayout) (*DescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.VKDescriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.VKDescriptorSetLayout},
	}

	var descriptorSet vk.DescriptorSet
	err := vk.Error(vk.AllocateDescriptorSets(p.Device.VKDevice, &allocateInfo, &descriptorSet))
	if err != nil {
		return nil, err
	}

	return &DescriptorSet{Device: p.Device, DescriptorPool: p, VKDescriptorSet: descriptorSet}, nil
}

func (p *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(p.Device.VKDevice, p.VKDescriptorPool, nil)
}

// DescriptorSetLayout describes the bindings shaders see in a descriptor set
type DescriptorSetLayout struct {
	Device                        *Device
	VKDescriptorSetLayout         vk.DescriptorSetLayout
	VKDescriptorSetLayoutBindings []vk.DescriptorSetLayoutBinding
}

func (d *Device) NewDescriptorSetLayout() *DescriptorSetLayout {
	return &DescriptorSetLayout{Device: d}
}

func (l *DescriptorSetLayout) AddBinding(binding vk.DescriptorSetLayoutBinding) *DescriptorSetLayout {
	l.VKDescriptorSetLayoutBindings = append(l.VKDescriptorSetLayoutBindings, binding)
	return l
}

// Create creates the native layout from the added bindings
func (l *DescriptorSetLayout) Create() error {
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(l.VKDescriptorSetLayoutBindings)),
		PBindings:    l.VKDescriptorSetLayoutBindings,
	}
	return vk.Error(vk.CreateDescriptorSetLayout(l.Device.VKDevice, &createInfo, nil, &l.VKDescriptorSetLayout))
}

func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.Device.VKDevice, l.VKDescriptorSetLayout, nil)
}

// DescriptorSet is a binding of resources to a descriptor, per a specific DescriptorSetLayout
type DescriptorSet struct {
	Device          *Device
	DescriptorPool  *DescriptorPool
	VKDescriptorSet vk.DescriptorSet
	writes          []vk.WriteDescriptorSet
}

// AddBuffer adds the whole buffer at the given binding
func (s *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) {
	s.writes = append(s.writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: b.VKBuffer,
			Offset: vk.DeviceSize(offset),
			Range:  vk.DeviceSize(b.Size),
		}},
	})
}

// AddCombinedImageSampler adds an image view and sampler at the given binding
func (s *DescriptorSet) AddCombinedImageSampler(dstBinding int, layout vk.ImageLayout, imageView vk.ImageView, sampler vk.Sampler) {
	s.writes = append(s.writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			ImageView:   imageView,
			ImageLayout: layout,
			Sampler:     sampler,
		}},
	})
}

// Write updates the descriptor set with everything added so far
func (s *DescriptorSet) Write() {
	for i := range s.writes {
		s.writes[i].DstSet = s.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(s.Device.VKDevice, uint32(len(s.writes)), s.writes, 0, nil)
}
