package renderer

import (
	"image"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/assets/loaders"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
)

// textureSlots puts the default white texture in slot 0 and scene texture k in slot k+1.
func textureSlots(sceneTextures []*image.RGBA) []*image.RGBA {
	slots := make([]*image.RGBA, 0, len(sceneTextures)+1)
	slots = append(slots, loaders.ConstantRGBA(math.NewVec3(1, 1, 1)))
	return append(slots, sceneTextures...)
}

/**
 * @brief The texture table: one sampled image and one descriptor set per
 * slot, sharing a single sampler. The descriptor pool holds exactly one
 * combined image sampler per slot.
 */
type textureTable struct {
	images  []*vulkan.VulkanImage
	sampler vk.Sampler
	pool    *vulkan.VulkanDescriptorPool
	sets    []frame.DescriptorSet
}

func loadTextures(context *vulkan.VulkanContext, layout vk.DescriptorSetLayout, sceneTextures []*image.RGBA) (*textureTable, error) {
	slots := textureSlots(sceneTextures)
	table := &textureTable{}

	var err error
	if table.sampler, err = vulkan.SamplerCreate(context); err != nil {
		return nil, err
	}
	count := uint32(len(slots))
	if table.pool, err = vulkan.DescriptorPoolCreate(context, count, map[vk.DescriptorType]uint32{
		vk.DescriptorTypeCombinedImageSampler: count,
	}); err != nil {
		table.destroy(context)
		return nil, err
	}

	for _, pixels := range slots {
		img, err := uploadTexture(context, pixels)
		if err != nil {
			table.destroy(context)
			return nil, err
		}
		table.images = append(table.images, img)

		set, err := table.pool.Allocate(context, layout)
		if err != nil {
			table.destroy(context)
			return nil, err
		}
		vulkan.WriteImageDescriptor(context, set, img.View, table.sampler)
		table.sets = append(table.sets, set)
	}
	core.LogInfo("uploaded %d textures", len(slots))
	return table, nil
}

func uploadTexture(context *vulkan.VulkanContext, pixels *image.RGBA) (*vulkan.VulkanImage, error) {
	b := pixels.Bounds()
	width, height := uint32(b.Dx()), uint32(b.Dy())

	img, err := vulkan.ImageCreate(context, width, height,
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	staging, err := vulkan.BufferCreate(context, uint64(len(pixels.Pix)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		img.Destroy(context)
		return nil, err
	}
	defer staging.Destroy()
	copy(staging.Data, pixels.Pix)

	err = vulkan.RunSingleUse(context, func(cb *vulkan.VulkanCommandBuffer) error {
		if err := img.TransitionLayout(cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		img.CopyFromBuffer(cb, staging)
		return img.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		img.Destroy(context)
		return nil, err
	}
	return img, nil
}

// destroy releases images, sets (with their pool) and the sampler.
func (t *textureTable) destroy(context *vulkan.VulkanContext) {
	for _, img := range t.images {
		img.Destroy(context)
	}
	t.images = nil
	if t.pool != nil {
		t.pool.Destroy(context)
		t.pool = nil
	}
	t.sets = nil
	if t.sampler != nil {
		vk.DestroySampler(context.Device.LogicalDevice, t.sampler, context.Allocator)
		t.sampler = nil
	}
}
