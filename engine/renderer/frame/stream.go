package frame

import (
	"fmt"

	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

// ChunkSize is the granularity of streaming buffer growth.
const ChunkSize uint64 = 4096

// GrowCapacity returns the capacity allocated for a request of required bytes:
// the next multiple of ChunkSize strictly above required, (required/ChunkSize+1)*ChunkSize.
func GrowCapacity(required uint64) uint64 {
	return metadata.GetAligned(required+1, ChunkSize)
}

/**
 * @brief A per-frame data stream: a mapped staging buffer and a device-local
 * buffer of identical capacity, plus an optional descriptor set that always
 * references the current device buffer.
 */
type Stream struct {
	Name string
	Role metadata.RenderBufferType

	device  Device
	staging Buffer
	target  Buffer
	set     DescriptorSet

	reallocations int
}

// NewStream creates an empty stream. A descriptor set is allocated from layout
// when withSet is true.
func NewStream(device Device, name string, role metadata.RenderBufferType, withSet bool, layout SetLayout) (*Stream, error) {
	s := &Stream{
		Name:   name,
		Role:   role,
		device: device,
	}
	if withSet {
		set, err := device.AllocateDescriptorSet(layout)
		if err != nil {
			return nil, fmt.Errorf("stream %s: %w", name, err)
		}
		s.set = set
	}
	return s, nil
}

func (s *Stream) Capacity() uint64 {
	if s.target == nil {
		return 0
	}
	return s.target.Size()
}

func (s *Stream) Buffer() Buffer {
	return s.target
}

func (s *Stream) DescriptorSet() DescriptorSet {
	return s.set
}

// Reallocations counts how many times the buffer pair has been replaced.
func (s *Stream) Reallocations() int {
	return s.reallocations
}

// Ensure makes the capacity at least required, replacing the buffer pair when
// it is too small. It reports whether a reallocation took place. The caller
// guarantees the GPU no longer uses the current pair.
func (s *Stream) Ensure(required uint64) (bool, error) {
	if s.target != nil && s.target.Size() >= required {
		return false, nil
	}
	capacity := GrowCapacity(required)

	s.release()

	staging, err := s.device.CreateStagingBuffer(capacity)
	if err != nil {
		return false, fmt.Errorf("stream %s: staging buffer of %d bytes: %w", s.Name, capacity, err)
	}
	target, err := s.device.CreateDeviceBuffer(capacity, s.Role)
	if err != nil {
		staging.Destroy()
		return false, fmt.Errorf("stream %s: %s buffer of %d bytes: %w", s.Name, s.Role, capacity, err)
	}
	s.staging, s.target = staging, target

	if s.set != nil {
		s.device.WriteBufferDescriptor(s.set, s.Role, s.target)
	}
	s.reallocations++
	core.LogDebug("stream %s grown to %d bytes for %d requested", s.Name, capacity, required)
	return true, nil
}

// Upload copies data into the staging buffer and records the staging to
// device copy. Empty data records nothing.
func (s *Stream) Upload(recorder Recorder, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	size := uint64(len(data))
	if _, err := s.Ensure(size); err != nil {
		return err
	}
	copy(s.staging.Mapped(), data)
	recorder.CopyBuffer(s.staging, s.target, size)
	return nil
}

func (s *Stream) release() {
	if s.staging != nil {
		s.staging.Destroy()
		s.staging = nil
	}
	if s.target != nil {
		s.target.Destroy()
		s.target = nil
	}
}

// Destroy releases the buffer pair. The descriptor set returns to its pool
// when the pool is destroyed.
func (s *Stream) Destroy() {
	s.release()
}
