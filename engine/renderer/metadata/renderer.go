package metadata

import (
	vk "github.com/goki/vulkan"
)

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Enables the Khronos validation layer and the debug messenger. */
	Validation bool
	/** @brief Prefer FIFO presentation over MAILBOX. */
	VSync bool
}

/**
 * @brief The types of clearing to be done on a renderpass.
 * Can be combined together for multiple clearing functions.
 */
type RenderpassClearFlag uint32

const (
	/** @brief No clearing should be done. */
	RENDERPASS_CLEAR_NONE_FLAG RenderpassClearFlag = 0x0
	/** @brief Clear the colour buffer. */
	RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG RenderpassClearFlag = 0x1
	/** @brief Clear the depth buffer. */
	RENDERPASS_CLEAR_DEPTH_BUFFER_FLAG RenderpassClearFlag = 0x2
	/** @brief Clear the stencil buffer. */
	RENDERPASS_CLEAR_STENCIL_BUFFER_FLAG RenderpassClearFlag = 0x4
)

type RenderPassConfig struct {
	/** @brief The Name of this renderpass. */
	Name string
	/** @brief The clear colour used for this renderpass. */
	ClearColour [4]float32
	/** @brief The clear flags for this renderpass. */
	ClearFlags RenderpassClearFlag
	Depth      float32
	Stencil    uint32
	/** @brief Format of the swapchain images the pass renders into. */
	ColorFormat vk.Format
	/** @brief Format of the depth attachment. */
	DepthFormat vk.Format
}

// DefaultRenderPassConfig clears to the teal background used by the viewer.
func DefaultRenderPassConfig() *RenderPassConfig {
	return &RenderPassConfig{
		Name:        "Renderpass.Builtin.World",
		ClearColour: [4]float32{0.0, 1.0, 0.7, 1.0},
		ClearFlags:  RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG | RENDERPASS_CLEAR_DEPTH_BUFFER_FLAG | RENDERPASS_CLEAR_STENCIL_BUFFER_FLAG,
		Depth:       1.0,
		Stencil:     0,
	}
}

func (c *RenderPassConfig) ClearsColour() bool {
	return c.ClearFlags&RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG != 0
}

func (c *RenderPassConfig) ClearsDepth() bool {
	return c.ClearFlags&RENDERPASS_CLEAR_DEPTH_BUFFER_FLAG != 0
}

func (c *RenderPassConfig) ClearsStencil() bool {
	return c.ClearFlags&RENDERPASS_CLEAR_STENCIL_BUFFER_FLAG != 0
}

type RenderBufferType int

const (
	/** @brief Buffer is use is unknown. Default, but usually invalid. */
	RENDERBUFFER_TYPE_UNKNOWN RenderBufferType = iota
	/** @brief Buffer is used for vertex data. */
	RENDERBUFFER_TYPE_VERTEX
	/** @brief Buffer is used for uniform data. */
	RENDERBUFFER_TYPE_UNIFORM
	/** @brief Buffer is used for staging purposes (i.e. from host-visible to device-local memory) */
	RENDERBUFFER_TYPE_STAGING
	/** @brief Buffer is used for data storage. */
	RENDERBUFFER_TYPE_STORAGE
)

func (t RenderBufferType) String() string {
	switch t {
	case RENDERBUFFER_TYPE_VERTEX:
		return "vertex"
	case RENDERBUFFER_TYPE_UNIFORM:
		return "uniform"
	case RENDERBUFFER_TYPE_STAGING:
		return "staging"
	case RENDERBUFFER_TYPE_STORAGE:
		return "storage"
	}
	return "unknown"
}

// Usage maps the buffer type to the usage flags of a buffer that is filled by
// transfers. Staging buffers are transfer sources only.
func (t RenderBufferType) Usage() vk.BufferUsageFlags {
	switch t {
	case RENDERBUFFER_TYPE_VERTEX:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit)
	case RENDERBUFFER_TYPE_UNIFORM:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit | vk.BufferUsageTransferDstBit)
	case RENDERBUFFER_TYPE_STORAGE:
		return vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit | vk.BufferUsageTransferDstBit)
	case RENDERBUFFER_TYPE_STAGING:
		return vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	}
	return 0
}

// DescriptorType is the descriptor a buffer of this type is bound through.
func (t RenderBufferType) DescriptorType() vk.DescriptorType {
	if t == RENDERBUFFER_TYPE_STORAGE {
		return vk.DescriptorTypeStorageBuffer
	}
	return vk.DescriptorTypeUniformBuffer
}
