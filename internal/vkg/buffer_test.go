package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestUsageToString(t *testing.T) {
	assert.Equal(t, "none", usageToString(0))
	assert.Equal(t, "uniform", usageToString(vk.BufferUsageUniformBufferBit))
	assert.Equal(t, "index|vertex", usageToString(vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit))
	assert.Equal(t, "transfer-src|uniform", usageToString(vk.BufferUsageTransferSrcBit|vk.BufferUsageUniformBufferBit))
}

func TestBufferString(t *testing.T) {
	b := &Buffer{Size: 64, Usage: vk.BufferUsageUniformBufferBit}
	assert.Equal(t, "{ Size: 64 Usage: uniform }", b.String())
}

func TestVersion(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	assert.Equal(t, "1.2.3", v.String())
	assert.Equal(t, vk.MakeVersion(1, 2, 3), v.VKVersion())
}
