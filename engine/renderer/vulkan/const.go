package vulkan

import "math"

// Fence waits and image acquisition block without a timeout.
const (
	FenceTimeoutNS   uint64 = math.MaxUint64
	AcquireTimeoutNS uint64 = math.MaxUint64
)

/**
 * @brief Number of frames recorded ahead of the GPU when the configuration
 * does not ask for another value.
 */
const DefaultFramesInFlight int = 2
