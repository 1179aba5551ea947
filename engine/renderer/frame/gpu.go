package frame

import (
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

/**
 * @brief A GPU buffer owned by a workspace. Staging buffers are persistently
 * mapped and Mapped returns their whole capacity; device-local buffers return nil.
 * Destroy must be safe to call more than once.
 */
type Buffer interface {
	Size() uint64
	Mapped() []byte
	Destroy()
}

// Opaque handles owned by the backend.
type (
	DescriptorSet interface{}
	Semaphore     interface{}
	Fence         interface{}
)

// SetLayout selects the descriptor set layout a set is allocated from.
type SetLayout int

const (
	SetLayoutCamera SetLayout = iota
	SetLayoutWorld
	SetLayoutTransforms
)

func (l SetLayout) String() string {
	switch l {
	case SetLayoutCamera:
		return "camera"
	case SetLayoutWorld:
		return "world"
	case SetLayoutTransforms:
		return "transforms"
	}
	return "unknown"
}

type PipelineID int

const (
	PipelineBackground PipelineID = iota
	PipelineLines
	PipelineObjects
)

func (p PipelineID) String() string {
	switch p {
	case PipelineBackground:
		return "background"
	case PipelineLines:
		return "lines"
	case PipelineObjects:
		return "objects"
	}
	return "unknown"
}

type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) Aspect() float32 {
	if e.Height == 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

/**
 * @brief The resource allocator the frame core depends on. Every failing call
 * returns an error naming the graphics API operation and its status.
 */
type Device interface {
	// CreateStagingBuffer allocates a host-visible, host-coherent, mapped transfer source.
	CreateStagingBuffer(size uint64) (Buffer, error)
	// CreateDeviceBuffer allocates device-local memory usable as the given role
	// and as a transfer destination.
	CreateDeviceBuffer(size uint64, role metadata.RenderBufferType) (Buffer, error)
	AllocateDescriptorSet(layout SetLayout) (DescriptorSet, error)
	// WriteBufferDescriptor points binding 0 of set at the whole of buffer.
	WriteBufferDescriptor(set DescriptorSet, role metadata.RenderBufferType, buffer Buffer)
	AllocateRecorder() (Recorder, error)
	WaitIdle() error
}

/**
 * @brief Records one primary command buffer. Methods that do not return an
 * error map to vkCmd* calls, which cannot fail.
 */
type Recorder interface {
	Reset() error
	Begin() error
	CopyBuffer(src, dst Buffer, size uint64)
	// TransferBarrier orders every transfer write before vertex input,
	// uniform and shader reads.
	TransferBarrier()
	BeginRenderPass(imageIndex uint32, extent Extent, config *metadata.RenderPassConfig)
	SetViewportScissor(extent Extent)
	BindPipeline(id PipelineID)
	PushConstants(id PipelineID, data []byte)
	BindVertexBuffer(buffer Buffer)
	BindDescriptorSets(id PipelineID, firstSet uint32, sets ...DescriptorSet)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	EndRenderPass()
	End() error
	// Submit waits on wait at color attachment output, then signals signal and fence.
	Submit(wait, signal Semaphore, fence Fence) error
	Free()
}
