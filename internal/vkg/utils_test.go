package vkg

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, "main\x00", safeString("main\x00"))

	in := []string{"VK_KHR_surface", "VK_EXT_debug_report\x00"}
	out := safeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_EXT_debug_report\x00"}, out)
	assert.Equal(t, "VK_KHR_surface", in[0], "input is left untouched")
}

func TestToBytes(t *testing.T) {
	words := []uint32{0x01020304, 0x05060708}
	b := ToBytes(unsafe.Pointer(&words[0]), 8)
	assert.Len(t, b, 8)

	b[0] = 0xff
	assert.NotEqual(t, uint32(0x01020304), words[0], "bytes alias the source")

	assert.Nil(t, ToBytes(nil, 4))
}
