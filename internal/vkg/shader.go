package vkg

import (
	"github.com/Saitsuno03/pixelgenerator/internal/assets"
	vk "github.com/vulkan-go/vulkan"
)

type ShaderModule struct {
	Device         *Device
	Description    string
	VKShaderModule vk.ShaderModule
}

// LoadShaderModuleFromFile reads and validates a SPIR-V binary and creates a shader module from it
func (d *Device) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	code, err := assets.ReadSPIRV(file)
	if err != nil {
		return nil, err
	}
	s, err := d.CreateShaderModule(code)
	if err != nil {
		return nil, err
	}
	s.Description = file
	return s, nil
}

func (d *Device) CreateShaderModule(code []uint32) (*ShaderModule, error) {
	var module vk.ShaderModule
	err := vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module))
	if err != nil {
		return nil, err
	}
	return &ShaderModule{Device: d, VKShaderModule: module}, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.VKShaderModule,
		PName:  safeString(entryPoint),
	}
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}
