package renderer

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
)

// setLayouts holds one layout per descriptor set shape. Each has a single binding 0.
type setLayouts struct {
	camera     vk.DescriptorSetLayout
	world      vk.DescriptorSetLayout
	transforms vk.DescriptorSetLayout
	texture    vk.DescriptorSetLayout
}

func createSetLayouts(context *vulkan.VulkanContext) (*setLayouts, error) {
	l := &setLayouts{}
	specs := []struct {
		out   *vk.DescriptorSetLayout
		kind  vk.DescriptorType
		stage vk.ShaderStageFlagBits
	}{
		{&l.camera, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit},
		{&l.world, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit},
		{&l.transforms, vk.DescriptorTypeStorageBuffer, vk.ShaderStageVertexBit},
		{&l.texture, vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit},
	}
	for _, s := range specs {
		layout, err := vulkan.DescriptorSetLayoutCreate(context, s.kind, vk.ShaderStageFlags(s.stage))
		if err != nil {
			l.destroy(context)
			return nil, err
		}
		*s.out = layout
	}
	return l, nil
}

func (l *setLayouts) forFrame(layout frame.SetLayout) vk.DescriptorSetLayout {
	switch layout {
	case frame.SetLayoutCamera:
		return l.camera
	case frame.SetLayoutWorld:
		return l.world
	case frame.SetLayoutTransforms:
		return l.transforms
	}
	panic(fmt.Sprintf("no descriptor set layout for %s", layout))
}

func (l *setLayouts) destroy(context *vulkan.VulkanContext) {
	for _, layout := range []*vk.DescriptorSetLayout{&l.camera, &l.world, &l.transforms, &l.texture} {
		vulkan.DescriptorSetLayoutDestroy(context, *layout)
		*layout = nil
	}
}

// workspaceSetCounts is what every workspace allocates: one camera and one
// world uniform set plus one transforms storage set.
func workspaceSetCounts(workspaces int) (uint32, map[vk.DescriptorType]uint32) {
	n := uint32(workspaces)
	return 3 * n, map[vk.DescriptorType]uint32{
		vk.DescriptorTypeUniformBuffer: 2 * n,
		vk.DescriptorTypeStorageBuffer: n,
	}
}

type pipelineSet struct {
	byID [3]*vulkan.VulkanPipeline
}

func (s *pipelineSet) get(id frame.PipelineID) *vulkan.VulkanPipeline {
	return s.byID[id]
}

/**
 * @brief Describes the three graphics pipelines. The background pass writes
 * no depth and draws one full screen triangle; lines and objects are depth
 * tested and written.
 */
func pipelineConfigs(renderpass *vulkan.VulkanRenderpass, layouts *setLayouts) [3]*vulkan.VulkanPipelineConfig {
	var configs [3]*vulkan.VulkanPipelineConfig
	configs[frame.PipelineBackground] = &vulkan.VulkanPipelineConfig{
		Name:       "background",
		Renderpass: renderpass,
		Topology:   vk.PrimitiveTopologyTriangleList,
		CullMode:   metadata.FaceCullModeNone,
		PushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Offset:     0,
			Size:       4,
		}},
	}
	configs[frame.PipelineLines] = &vulkan.VulkanPipelineConfig{
		Name:                 "lines",
		Renderpass:           renderpass,
		Vertex:               metadata.PosColLayout(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{layouts.camera},
		Topology:             vk.PrimitiveTopologyLineList,
		CullMode:             metadata.FaceCullModeNone,
		DepthTest:            true,
		DepthWrite:           true,
	}
	configs[frame.PipelineObjects] = &vulkan.VulkanPipelineConfig{
		Name:                 "objects",
		Renderpass:           renderpass,
		Vertex:               metadata.PosNorTanTexLayout(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{layouts.world, layouts.transforms, layouts.texture},
		Topology:             vk.PrimitiveTopologyTriangleList,
		CullMode:             metadata.FaceCullModeBack,
		DepthTest:            true,
		DepthWrite:           true,
	}
	return configs
}

// createPipelines loads <shaderDir>/<name>.{vert,frag}.spv for every pipeline.
// Shader modules are released once the pipelines exist.
func createPipelines(context *vulkan.VulkanContext, renderpass *vulkan.VulkanRenderpass, layouts *setLayouts, shaderDir string) (*pipelineSet, error) {
	set := &pipelineSet{}
	for id, config := range pipelineConfigs(renderpass, layouts) {
		stages, err := vulkan.LoadShaderStages(context, shaderDir, config.Name)
		if err != nil {
			set.destroy(context)
			return nil, err
		}
		config.Stages = stages
		pipeline, err := vulkan.NewGraphicsPipeline(context, config)
		vulkan.DestroyShaderStages(context, stages)
		if err != nil {
			set.destroy(context)
			return nil, err
		}
		set.byID[id] = pipeline
	}
	core.LogInfo("created %d graphics pipelines", len(set.byID))
	return set, nil
}

func (s *pipelineSet) destroy(context *vulkan.VulkanContext) {
	for i, p := range s.byID {
		if p != nil {
			p.Destroy(context)
			s.byID[i] = nil
		}
	}
}
