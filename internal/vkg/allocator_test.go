package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, uint64(12), alignUp(12, 3))
	assert.Equal(t, uint64(12), alignUp(10, 3))
	assert.Equal(t, uint64(7), alignUp(7, 0))
	assert.Equal(t, uint64(7), alignUp(7, 1))
	assert.Equal(t, uint64(256), alignUp(129, 256))
}

func TestAllocator(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	assert.Nil(t, a.Allocate(2048, 1), "larger than the pool")

	first := a.Allocate(512, 1)
	require.NotNil(t, first)
	assert.Equal(t, uint64(0), first.Offset)

	assert.Nil(t, a.Allocate(768, 1))

	k := a.Allocate(500, 1)
	require.NotNil(t, k)
	assert.Equal(t, uint64(512), k.Offset)

	assert.Nil(t, a.Allocate(50, 1))

	tail := a.Allocate(5, 1)
	require.NotNil(t, tail)
	assert.Equal(t, uint64(1012), tail.Offset)

	assert.Nil(t, a.Allocate(20, 1))

	a.Free(k)
	again := a.Allocate(500, 1)
	require.NotNil(t, again, "exact fit between two allocations")
	assert.Equal(t, uint64(512), again.Offset)

	a.Free(first)
	for _, size := range []uint64{20, 40, 12} {
		assert.NotNil(t, a.Allocate(size, 1), "allocation of %d after free", size)
	}
	assert.Nil(t, a.Allocate(500, 1))
	assert.NotNil(t, a.Allocate(5, 1))
}

func TestAllocatorAlignment(t *testing.T) {
	a := LinearAllocator{Size: 64}

	x := a.Allocate(10, 16)
	y := a.Allocate(10, 16)
	require.NotNil(t, x)
	require.NotNil(t, y)
	assert.Equal(t, uint64(0), x.Offset)
	assert.Equal(t, uint64(16), y.Offset)

	z := a.Allocate(40, 16)
	assert.Nil(t, z, "only 32 aligned bytes remain")

	assert.Equal(t, uint64(20), a.Used())
}

func TestAllocatorDoubleFree(t *testing.T) {
	a := LinearAllocator{Size: 16}
	x := a.Allocate(8, 1)
	require.NotNil(t, x)

	a.Free(x)
	a.Free(x)
	assert.Equal(t, uint64(0), a.Used())
	assert.Equal(t, "[]", a.String())
}

func TestAllocatorZeroSize(t *testing.T) {
	a := LinearAllocator{Size: 128}
	held := a.Allocate(5, 64)
	require.NotNil(t, held)

	assert.Nil(t, a.Allocate(0, 0))
	assert.Nil(t, a.Allocate(0, 16))
	assert.Equal(t, "[[0 5]]", a.String(), "nothing was inserted ahead of the live allocation")

	next := a.Allocate(1, 64)
	require.NotNil(t, next)
	assert.Equal(t, uint64(64), next.Offset)
}
