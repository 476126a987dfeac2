// Package assets holds the fixed asset paths of the program and the loaders
// which turn the files into something the GPU can use.
package assets

//go:generate glslangValidator -V ../../shaders/quad/quad.vert -o ../../shaders/quad/vert.spv
//go:generate glslangValidator -V ../../shaders/quad/quad.frag -o ../../shaders/quad/frag.spv
//go:generate glslangValidator -V ../../shaders/imgui/imgui.vert -o ../../shaders/imgui/vert.spv
//go:generate glslangValidator -V ../../shaders/imgui/imgui.frag -o ../../shaders/imgui/frag.spv

// Paths are relative to the working directory
const (
	QuadVertexShader    = "shaders/quad/vert.spv"
	QuadFragmentShader  = "shaders/quad/frag.spv"
	ImGUIVertexShader   = "shaders/imgui/vert.spv"
	ImGUIFragmentShader = "shaders/imgui/frag.spv"
	ReferenceTexture    = "textures/reference_image.png"
)
