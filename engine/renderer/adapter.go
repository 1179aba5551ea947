package renderer

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
)

// renderTargets are replaced whenever the swapchain is recreated.
type renderTargets struct {
	renderpass   *vulkan.VulkanRenderpass
	depth        *vulkan.VulkanImage
	framebuffers []*vulkan.VulkanFramebuffer
}

// gpuDevice implements frame.Device on top of the Vulkan context.
type gpuDevice struct {
	context     *vulkan.VulkanContext
	descriptors *vulkan.VulkanDescriptorPool
	layouts     *setLayouts
	targets     *renderTargets
	pipelines   *pipelineSet
}

func (d *gpuDevice) CreateStagingBuffer(size uint64) (frame.Buffer, error) {
	b, err := vulkan.BufferCreate(d.context, size,
		metadata.RENDERBUFFER_TYPE_STAGING.Usage(),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *gpuDevice) CreateDeviceBuffer(size uint64, role metadata.RenderBufferType) (frame.Buffer, error) {
	b, err := vulkan.BufferCreate(d.context, size, role.Usage(),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), false)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *gpuDevice) AllocateDescriptorSet(layout frame.SetLayout) (frame.DescriptorSet, error) {
	set, err := d.descriptors.Allocate(d.context, d.layouts.forFrame(layout))
	if err != nil {
		return nil, fmt.Errorf("%s descriptor set: %w", layout, err)
	}
	return set, nil
}

func (d *gpuDevice) WriteBufferDescriptor(set frame.DescriptorSet, role metadata.RenderBufferType, buffer frame.Buffer) {
	vulkan.WriteBufferDescriptor(d.context, set.(vk.DescriptorSet), role.DescriptorType(), buffer.(*vulkan.VulkanBuffer))
}

func (d *gpuDevice) AllocateRecorder() (frame.Recorder, error) {
	cb, err := vulkan.NewVulkanCommandBuffer(d.context, d.context.Device.GraphicsCommandPool, true)
	if err != nil {
		return nil, err
	}
	return &commandRecorder{
		context:   d.context,
		cb:        cb,
		targets:   d.targets,
		pipelines: d.pipelines,
	}, nil
}

func (d *gpuDevice) WaitIdle() error {
	return d.context.Device.WaitIdle()
}

// commandRecorder implements frame.Recorder over one primary command buffer.
type commandRecorder struct {
	context   *vulkan.VulkanContext
	cb        *vulkan.VulkanCommandBuffer
	targets   *renderTargets
	pipelines *pipelineSet
}

func (r *commandRecorder) Reset() error {
	return r.cb.Reset()
}

func (r *commandRecorder) Begin() error {
	return r.cb.Begin(true, false, false)
}

func (r *commandRecorder) CopyBuffer(src, dst frame.Buffer, size uint64) {
	region := vk.BufferCopy{Size: vk.DeviceSize(size)}
	vk.CmdCopyBuffer(r.cb.Handle, src.(*vulkan.VulkanBuffer).Handle, dst.(*vulkan.VulkanBuffer).Handle, 1, []vk.BufferCopy{region})
}

func (r *commandRecorder) TransferBarrier() {
	barrier := vk.MemoryBarrier{
		SType:         vk.StructureTypeMemoryBarrier,
		SrcAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessVertexAttributeReadBit | vk.AccessUniformReadBit | vk.AccessShaderReadBit),
	}
	vk.CmdPipelineBarrier(r.cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageVertexInputBit|vk.PipelineStageVertexShaderBit|vk.PipelineStageFragmentShaderBit),
		0, 1, []vk.MemoryBarrier{barrier}, 0, nil, 0, nil)
}

func (r *commandRecorder) BeginRenderPass(imageIndex uint32, extent frame.Extent, config *metadata.RenderPassConfig) {
	r.targets.renderpass.Begin(r.cb, r.targets.framebuffers[imageIndex], vk.Extent2D{Width: extent.Width, Height: extent.Height}, config)
}

func (r *commandRecorder) SetViewportScissor(extent frame.Extent) {
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}
	vk.CmdSetViewport(r.cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(r.cb.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (r *commandRecorder) BindPipeline(id frame.PipelineID) {
	r.pipelines.get(id).Bind(r.cb, vk.PipelineBindPointGraphics)
}

func (r *commandRecorder) PushConstants(id frame.PipelineID, data []byte) {
	if len(data) == 0 {
		return
	}
	p := r.pipelines.get(id)
	var stages vk.ShaderStageFlags
	for _, rng := range p.PushConstantRanges {
		stages |= rng.StageFlags
	}
	vk.CmdPushConstants(r.cb.Handle, p.PipelineLayout, stages, 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (r *commandRecorder) BindVertexBuffer(buffer frame.Buffer) {
	vk.CmdBindVertexBuffers(r.cb.Handle, 0, 1, []vk.Buffer{buffer.(*vulkan.VulkanBuffer).Handle}, []vk.DeviceSize{0})
}

func (r *commandRecorder) BindDescriptorSets(id frame.PipelineID, firstSet uint32, sets ...frame.DescriptorSet) {
	handles := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		handles[i] = s.(vk.DescriptorSet)
	}
	vk.CmdBindDescriptorSets(r.cb.Handle, vk.PipelineBindPointGraphics, r.pipelines.get(id).PipelineLayout,
		firstSet, uint32(len(handles)), handles, 0, nil)
}

func (r *commandRecorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(r.cb.Handle, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (r *commandRecorder) EndRenderPass() {
	r.targets.renderpass.End(r.cb)
}

func (r *commandRecorder) End() error {
	return r.cb.End()
}

func (r *commandRecorder) Submit(wait, signal frame.Semaphore, fence frame.Fence) error {
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{wait.(vk.Semaphore)},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{r.cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal.(vk.Semaphore)},
	}
	if res := vk.QueueSubmit(r.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.(*vulkan.VulkanFence).Handle); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with %s", vulkan.VulkanResultString(res, true))
	}
	r.cb.UpdateSubmitted()
	return nil
}

func (r *commandRecorder) Free() {
	if r.cb != nil {
		r.cb.Free(r.context, r.context.Device.GraphicsCommandPool)
		r.cb = nil
	}
}
