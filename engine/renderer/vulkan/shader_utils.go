package vulkan

import (
	"fmt"
	"path/filepath"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/assets/loaders"
	"github.com/spaghettifunk/stratus/engine/core"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage creates a module from SPIR-V words with entry point main.
func NewShaderStage(context *VulkanContext, code []uint32, stage vk.ShaderStageFlagBits) (VulkanShaderStage, error) {
	out := VulkanShaderStage{}
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &out.Handle); res != vk.Success {
		err := fmt.Errorf("vkCreateShaderModule failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return out, err
	}
	out.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: out.Handle,
		PName:  VulkanSafeString("main"),
	}
	return out, nil
}

/**
 * @brief Loads <dir>/<name>.vert.spv and <dir>/<name>.frag.spv and creates
 * both stages. Modules can be destroyed once the pipeline exists.
 */
func LoadShaderStages(context *VulkanContext, dir, name string) ([]VulkanShaderStage, error) {
	loader := &loaders.BinaryLoader{}
	kinds := []struct {
		ext   string
		stage vk.ShaderStageFlagBits
	}{
		{"vert", vk.ShaderStageVertexBit},
		{"frag", vk.ShaderStageFragmentBit},
	}

	stages := make([]VulkanShaderStage, 0, len(kinds))
	for _, k := range kinds {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s.spv", name, k.ext))
		code, err := loader.LoadSPIRV(path)
		if err == nil {
			var stage VulkanShaderStage
			if stage, err = NewShaderStage(context, code, k.stage); err == nil {
				stages = append(stages, stage)
				continue
			}
		}
		DestroyShaderStages(context, stages)
		return nil, fmt.Errorf("shader %s: %w", path, err)
	}
	return stages, nil
}

func DestroyShaderStages(context *VulkanContext, stages []VulkanShaderStage) {
	for i := range stages {
		if stages[i].Handle != nil {
			vk.DestroyShaderModule(context.Device.LogicalDevice, stages[i].Handle, context.Allocator)
			stages[i].Handle = nil
		}
	}
}
