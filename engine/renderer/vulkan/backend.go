package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

// SurfaceSource is the window system side of presentation.
type SurfaceSource interface {
	GetRequiredExtensionNames() []string
	CreateSurface(instance vk.Instance) (uintptr, error)
}

// SwapchainListener rebuilds everything sized after the swapchain images.
type SwapchainListener func(swapchain *VulkanSwapchain) error

/**
 * @brief Owns the Vulkan context, the swapchain and the per-slot
 * synchronization objects, and drives the acquire/present half of a frame.
 * Recording happens between BeginFrame and EndFrame.
 */
type VulkanRenderer struct {
	FrameNumber uint64
	Context     *VulkanContext
	Swapchain   *VulkanSwapchain

	config *metadata.RendererBackendConfig

	framebufferWidth  uint32
	framebufferHeight uint32
	cachedWidth       uint32
	cachedHeight      uint32

	// Incremented on every resize; the swapchain is rebuilt when it differs
	// from the last generation it was built for.
	framebufferSizeGeneration     uint64
	framebufferSizeLastGeneration uint64
	recreatingSwapchain           bool

	currentSlot    int
	imageAvailable []vk.Semaphore
	queueComplete  []vk.Semaphore
	inFlightFences []*VulkanFence
	imagesInFlight []*VulkanFence
	onSwapchain    SwapchainListener
}

func New(config *metadata.RendererBackendConfig) *VulkanRenderer {
	return &VulkanRenderer{
		config: config,
	}
}

/**
 * @brief Creates the instance, surface, device, swapchain and slots sync
 * objects. Fences start signaled so the first wait on each slot returns at once.
 */
func (vr *VulkanRenderer) Initialize(source SurfaceSource, width, height uint32, slots int) error {
	if slots < 1 {
		return fmt.Errorf("%w: %d frames in flight", core.ErrInvalidConfig, slots)
	}
	vr.framebufferWidth = width
	vr.framebufferHeight = height

	context, err := NewContext(vr.config, source.GetRequiredExtensionNames())
	if err != nil {
		return err
	}
	vr.Context = context

	surface, err := source.CreateSurface(context.Instance)
	if err != nil {
		return fmt.Errorf("creating window surface: %w", err)
	}
	if err := context.AttachSurface(surface); err != nil {
		return err
	}

	if err := DeviceCreate(context); err != nil {
		return err
	}

	if vr.Swapchain, err = SwapchainCreate(context, width, height, vr.config.VSync, nil); err != nil {
		return err
	}
	vr.framebufferWidth = vr.Swapchain.Extent.Width
	vr.framebufferHeight = vr.Swapchain.Extent.Height

	vr.imageAvailable = make([]vk.Semaphore, slots)
	vr.queueComplete = make([]vk.Semaphore, slots)
	vr.inFlightFences = make([]*VulkanFence, slots)
	for i := 0; i < slots; i++ {
		if vr.imageAvailable[i], err = NewSemaphore(context); err != nil {
			return err
		}
		if vr.queueComplete[i], err = NewSemaphore(context); err != nil {
			return err
		}
		if vr.inFlightFences[i], err = NewFence(context, true); err != nil {
			return err
		}
	}
	vr.imagesInFlight = make([]*VulkanFence, vr.Swapchain.ImageCount())

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

// OnSwapchain registers the listener called after every swapchain (re)creation.
// It is also called immediately for the current swapchain.
func (vr *VulkanRenderer) OnSwapchain(listener SwapchainListener) error {
	vr.onSwapchain = listener
	return listener(vr.Swapchain)
}

func (vr *VulkanRenderer) FramesInFlight() int {
	return len(vr.inFlightFences)
}

func (vr *VulkanRenderer) Extent() frame.Extent {
	return frame.Extent{Width: vr.framebufferWidth, Height: vr.framebufferHeight}
}

// Resized records the new window size; the swapchain is rebuilt on the next BeginFrame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.cachedWidth = width
	vr.cachedHeight = height
	vr.framebufferSizeGeneration++
	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.framebufferSizeGeneration)
}

/**
 * @brief Waits for the current slot to retire, acquires a swapchain image and
 * returns what the frame needs to be recorded and submitted. Returns
 * core.ErrSwapchainBooting when no frame should be drawn this time around.
 */
func (vr *VulkanRenderer) BeginFrame() (*frame.RenderParams, error) {
	if vr.recreatingSwapchain {
		if err := vr.Context.Device.WaitIdle(); err != nil {
			return nil, err
		}
		core.LogInfo("Recreating swapchain, booting.")
		return nil, core.ErrSwapchainBooting
	}

	if vr.framebufferSizeGeneration != vr.framebufferSizeLastGeneration {
		if err := vr.recreateSwapchain(); err != nil && !errors.Is(err, core.ErrSwapchainBooting) {
			return nil, err
		}
		core.LogInfo("Resized, booting.")
		return nil, core.ErrSwapchainBooting
	}

	slot := vr.currentSlot
	fence := vr.inFlightFences[slot]
	if err := fence.FenceWait(vr.Context, FenceTimeoutNS); err != nil {
		core.LogWarn("In-flight fence wait failure: %s", err)
		return nil, err
	}

	imageIndex, err := vr.Swapchain.AcquireNextImageIndex(vr.Context, AcquireTimeoutNS, vr.imageAvailable[slot])
	if err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			vr.framebufferSizeGeneration++
		}
		return nil, err
	}

	// Another slot may still be rendering into this image.
	if previous := vr.imagesInFlight[imageIndex]; previous != nil && previous != fence {
		if err := previous.FenceWait(vr.Context, FenceTimeoutNS); err != nil {
			return nil, err
		}
	}
	vr.imagesInFlight[imageIndex] = fence

	// Reset only once a submission is certain to follow.
	if err := fence.FenceReset(vr.Context); err != nil {
		return nil, err
	}

	return &frame.RenderParams{
		WorkspaceIndex:     slot,
		ImageIndex:         imageIndex,
		Extent:             vr.Extent(),
		ImageAvailable:     vr.imageAvailable[slot],
		ImageDone:          vr.queueComplete[slot],
		WorkspaceAvailable: fence,
	}, nil
}

// EndFrame presents the image once rendering has completed and moves to the next slot.
func (vr *VulkanRenderer) EndFrame(params *frame.RenderParams) error {
	err := vr.Swapchain.Present(vr.Context, vr.queueComplete[params.WorkspaceIndex], params.ImageIndex)
	vr.currentSlot = (vr.currentSlot + 1) % len(vr.inFlightFences)
	vr.FrameNumber++
	if errors.Is(err, core.ErrSwapchainBooting) {
		vr.framebufferSizeGeneration++
		return nil
	}
	return err
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.recreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating. Booting.")
		return core.ErrSwapchainBooting
	}
	width, height := vr.cachedWidth, vr.cachedHeight
	if width == 0 || height == 0 {
		width, height = vr.framebufferWidth, vr.framebufferHeight
	}
	if width == 0 || height == 0 {
		core.LogDebug("recreateSwapchain called when window is < 1 in a dimension. Booting.")
		return core.ErrSwapchainBooting
	}

	vr.recreatingSwapchain = true
	defer func() { vr.recreatingSwapchain = false }()

	if err := vr.Context.Device.WaitIdle(); err != nil {
		return err
	}

	swapchain, err := SwapchainCreate(vr.Context, width, height, vr.config.VSync, vr.Swapchain)
	if err != nil {
		// A minimized window reports a zero extent; keep the generation stale
		// so the next frame tries again.
		return err
	}
	vr.Swapchain = swapchain
	vr.framebufferWidth = swapchain.Extent.Width
	vr.framebufferHeight = swapchain.Extent.Height
	vr.cachedWidth, vr.cachedHeight = 0, 0
	vr.imagesInFlight = make([]*VulkanFence, swapchain.ImageCount())
	vr.framebufferSizeLastGeneration = vr.framebufferSizeGeneration

	if vr.onSwapchain != nil {
		if err := vr.onSwapchain(swapchain); err != nil {
			return err
		}
	}
	return nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (vr *VulkanRenderer) WaitIdle() error {
	return vr.Context.Device.WaitIdle()
}

/**
 * @brief Destroys in the opposite order of creation. Everything created on
 * the device by other owners must already be released.
 */
func (vr *VulkanRenderer) Shutdown() {
	if vr.Context == nil {
		return
	}
	if vr.Context.Device != nil {
		if err := vr.Context.Device.WaitIdle(); err != nil {
			core.LogWarn("waiting for device idle on shutdown: %s", err)
		}
		for i := range vr.inFlightFences {
			DestroySemaphore(vr.Context, vr.imageAvailable[i])
			DestroySemaphore(vr.Context, vr.queueComplete[i])
			if vr.inFlightFences[i] != nil {
				vr.inFlightFences[i].FenceDestroy(vr.Context)
			}
		}
		vr.imageAvailable, vr.queueComplete = nil, nil
		vr.inFlightFences, vr.imagesInFlight = nil, nil

		if vr.Swapchain != nil {
			vr.Swapchain.Destroy(vr.Context)
			vr.Swapchain = nil
		}
	}
	vr.Context.Destroy()
	vr.Context = nil
}
