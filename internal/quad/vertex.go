package quad

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// Vertex is a clip space position and a texture coordinate
type Vertex struct {
	Pos lin.Vec2
	UV  lin.Vec2
}

type VertexData []Vertex

// FullscreenQuad is two triangles covering clip space, the texture's top left
// corner maps to the top left of the window
var FullscreenQuad = VertexData{
	{Pos: lin.Vec2{-1, -1}, UV: lin.Vec2{0, 0}},
	{Pos: lin.Vec2{1, -1}, UV: lin.Vec2{1, 0}},
	{Pos: lin.Vec2{1, 1}, UV: lin.Vec2{1, 1}},

	{Pos: lin.Vec2{-1, -1}, UV: lin.Vec2{0, 0}},
	{Pos: lin.Vec2{1, 1}, UV: lin.Vec2{1, 1}},
	{Pos: lin.Vec2{-1, 1}, UV: lin.Vec2{0, 1}},
}

func (v VertexData) Bytes() []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(unsafe.Sizeof(Vertex{})))
}

func (v VertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v VertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.UV)),
		},
	}
}
