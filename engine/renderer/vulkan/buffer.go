package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/core"
)

/**
 * @brief A buffer with its own memory allocation. Host-visible buffers are
 * mapped for their whole lifetime and Data aliases the mapping.
 */
type VulkanBuffer struct {
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	Usage       vk.BufferUsageFlags
	MemoryFlags vk.MemoryPropertyFlags
	TotalSize   uint64
	Data        []byte

	context *VulkanContext
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags, mapped bool) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Usage:       usage,
		MemoryFlags: memoryFlags,
		TotalSize:   size,
		context:     context,
	}
	device := context.Device.LogicalDevice

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if res := vk.CreateBuffer(device, &bufferInfo, context.Allocator, &buffer.Handle); res != vk.Success {
		err := fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy()
		return nil, fmt.Errorf("buffer of %d bytes: %w", size, err)
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	if res := vk.AllocateMemory(device, &allocateInfo, context.Allocator, &buffer.Memory); res != vk.Success {
		buffer.Destroy()
		err := fmt.Errorf("vkAllocateMemory failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.BindBufferMemory(device, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy()
		return nil, fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(res, true))
	}

	if mapped {
		var pData unsafe.Pointer
		if res := vk.MapMemory(device, buffer.Memory, 0, vk.DeviceSize(size), 0, &pData); res != vk.Success {
			buffer.Destroy()
			return nil, fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res, true))
		}
		buffer.Data = unsafe.Slice((*byte)(pData), size)
	}
	return buffer, nil
}

func (b *VulkanBuffer) Size() uint64 {
	return b.TotalSize
}

func (b *VulkanBuffer) Mapped() []byte {
	return b.Data
}

// Destroy unmaps, frees and destroys the buffer. Later calls do nothing.
func (b *VulkanBuffer) Destroy() {
	if b.context == nil {
		return
	}
	device := b.context.Device.LogicalDevice
	if b.Data != nil {
		vk.UnmapMemory(device, b.Memory)
		b.Data = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(device, b.Memory, b.context.Allocator)
		b.Memory = nil
	}
	if b.Handle != nil {
		vk.DestroyBuffer(device, b.Handle, b.context.Allocator)
		b.Handle = nil
	}
	b.context = nil
}

/**
 * @brief Copies data into a device-local buffer through a temporary staging
 * buffer and blocks until the transfer has completed. Load time only.
 */
func BufferUploadBlocking(context *VulkanContext, dst *VulkanBuffer, data []byte) error {
	staging, err := BufferCreate(context, uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return err
	}
	defer staging.Destroy()
	copy(staging.Data, data)

	return RunSingleUse(context, func(cb *VulkanCommandBuffer) error {
		region := vk.BufferCopy{Size: vk.DeviceSize(len(data))}
		vk.CmdCopyBuffer(cb.Handle, staging.Handle, dst.Handle, 1, []vk.BufferCopy{region})
		return nil
	})
}
