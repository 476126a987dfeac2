package vkg

import (
	"fmt"
)

// Allocation is a region handed out by an Allocator
type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// Allocator hands out regions of a larger block of device memory. Vulkan
// limits how many memory objects an application may allocate, so pools
// sub-allocate instead.
type Allocator interface {
	Allocate(size uint64, align uint64) *Allocation
	Free(a *Allocation)
	Used() uint64
}

// LinearAllocator is a first fit allocator which keeps its allocations
// sorted by offset
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation
}

func alignUp(a uint64, align uint64) uint64 {
	if align <= 1 {
		return a
	}
	m := a % align
	if m == 0 {
		return a
	}
	return a - m + align
}

// Allocate returns the first gap which can hold size bytes at the given
// alignment, or nil if no gap is large enough. Empty regions are never handed out.
func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if size == 0 || size > p.Size {
		return nil
	}

	var start uint64
	for i, a := range p.allocs {
		if a.Offset >= start && a.Offset-start >= size {
			na := &Allocation{Offset: start, Size: size}
			p.allocs = append(p.allocs[:i], append([]*Allocation{na}, p.allocs[i:]...)...)
			return na
		}
		start = alignUp(a.Offset+a.Size, align)
	}

	if start > p.Size || p.Size-start < size {
		return nil
	}
	na := &Allocation{Offset: start, Size: size}
	p.allocs = append(p.allocs, na)
	return na
}

// Free releases an allocation, freeing an allocation twice is a no-op
func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Used returns the number of bytes currently handed out
func (p *LinearAllocator) Used() uint64 {
	var used uint64
	for _, a := range p.allocs {
		used += a.Size
	}
	return used
}

func (p *LinearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
