package renderer

import (
	"errors"
	"fmt"
	"image"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/renderer/components"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
	"github.com/spaghettifunk/stratus/engine/scene"
)

type Config struct {
	// Directory holding <pipeline>.vert.spv and <pipeline>.frag.spv.
	ShaderDir string
	// Clear values of the main pass; nil uses metadata.DefaultRenderPassConfig.
	RenderPass *metadata.RenderPassConfig
	frame.Options
}

/**
 * @brief Draws a loaded scene with one workspace per frame in flight. Update
 * builds the frame state from the camera and the scene, Render records it
 * into the next free workspace and presents.
 */
type Renderer struct {
	backend *vulkan.VulkanRenderer
	context *vulkan.VulkanContext
	config  Config
	scene   *scene.Scene
	camera  *components.OrbitCamera

	time  float32
	state *frame.State
	// Extent the state's projection was built for.
	stateExtent frame.Extent

	layouts     *setLayouts
	descriptors *vulkan.VulkanDescriptorPool
	targets     *renderTargets
	pipelines   *pipelineSet
	meshes      *meshTable
	textures    *textureTable
	workspaces  *frame.WorkspacePool
	resources   *frame.DrawResources
}

// New creates every load time resource. sceneTextures holds one decoded image
// per scene texture, in scene order.
func New(backend *vulkan.VulkanRenderer, s *scene.Scene, sceneTextures []*image.RGBA, camera *components.OrbitCamera, config Config) (*Renderer, error) {
	if len(sceneTextures) != len(s.Textures) {
		return nil, fmt.Errorf("%w: %d decoded textures for %d scene textures", core.ErrInvalidScene, len(sceneTextures), len(s.Textures))
	}
	context := backend.Context

	pass := metadata.DefaultRenderPassConfig()
	if config.RenderPass != nil {
		copied := *config.RenderPass
		pass = &copied
	}
	pass.ColorFormat = backend.Swapchain.ImageFormat.Format
	pass.DepthFormat = context.Device.DepthFormat
	config.RenderPass = pass

	r := &Renderer{
		backend: backend,
		context: context,
		config:  config,
		scene:   s,
		camera:  camera,
		targets: &renderTargets{},
	}
	if err := r.load(sceneTextures); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) load(sceneTextures []*image.RGBA) error {
	var err error
	if r.targets.renderpass, err = vulkan.RenderpassCreate(r.context, r.config.RenderPass); err != nil {
		return err
	}
	if r.layouts, err = createSetLayouts(r.context); err != nil {
		return err
	}
	if r.pipelines, err = createPipelines(r.context, r.targets.renderpass, r.layouts, r.config.ShaderDir); err != nil {
		return err
	}
	if r.meshes, err = loadMeshes(r.context, r.scene); err != nil {
		return err
	}
	if r.textures, err = loadTextures(r.context, r.layouts.texture, sceneTextures); err != nil {
		return err
	}

	count := r.backend.FramesInFlight()
	maxSets, sizes := workspaceSetCounts(count)
	if r.descriptors, err = vulkan.DescriptorPoolCreate(r.context, maxSets, sizes); err != nil {
		return err
	}
	device := &gpuDevice{
		context:     r.context,
		descriptors: r.descriptors,
		layouts:     r.layouts,
		targets:     r.targets,
		pipelines:   r.pipelines,
	}
	if r.workspaces, err = frame.NewWorkspacePool(device, count); err != nil {
		return err
	}

	r.resources = &frame.DrawResources{
		ObjectVertices: r.meshes.vertices(),
		TextureSets:    r.textures.sets,
		RenderPass:     r.config.RenderPass,
	}
	return r.backend.OnSwapchain(r.onSwapchain)
}

// onSwapchain rebuilds the depth attachment and one framebuffer per swapchain view.
func (r *Renderer) onSwapchain(swapchain *vulkan.VulkanSwapchain) error {
	r.destroyFramebuffers()

	extent := swapchain.Extent
	depth, err := vulkan.ImageCreate(r.context, extent.Width, extent.Height,
		r.config.RenderPass.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return err
	}
	r.targets.depth = depth

	framebuffers := make([]*vulkan.VulkanFramebuffer, 0, len(swapchain.Views))
	for _, view := range swapchain.Views {
		fb, err := vulkan.FramebufferCreate(r.context, r.targets.renderpass, extent.Width, extent.Height, []vk.ImageView{view, depth.View})
		if err != nil {
			r.targets.framebuffers = framebuffers
			return err
		}
		framebuffers = append(framebuffers, fb)
	}
	r.targets.framebuffers = framebuffers
	core.LogDebug("created %d framebuffers at %dx%d", len(framebuffers), extent.Width, extent.Height)
	return nil
}

func (r *Renderer) destroyFramebuffers() {
	for _, fb := range r.targets.framebuffers {
		fb.Destroy(r.context)
	}
	r.targets.framebuffers = nil
	if r.targets.depth != nil {
		r.targets.depth.Destroy(r.context)
		r.targets.depth = nil
	}
}

// Update advances the animation clock by dt seconds and rebuilds the frame state.
func (r *Renderer) Update(dt float32) {
	r.time = frame.AdvanceTime(r.time, dt)
	r.state = r.buildState(r.backend.Extent())
}

func (r *Renderer) buildState(extent frame.Extent) *frame.State {
	r.stateExtent = extent
	return frame.BuildState(frame.Inputs{
		Scene:   r.scene,
		Meshes:  r.meshes.ranges,
		Camera:  r.camera,
		Aspect:  extent.Aspect(),
		Time:    r.time,
		Options: r.config.Options,
	})
}

// stateFor returns the current state, rebuilt when there is none yet or the
// swapchain extent changed since it was built.
func (r *Renderer) stateFor(extent frame.Extent) *frame.State {
	if r.state == nil || r.stateExtent != extent {
		r.state = r.buildState(extent)
	}
	return r.state
}

/**
 * @brief Records and presents one frame. A frame skipped because the
 * swapchain is being rebuilt is not an error.
 */
func (r *Renderer) Render() error {
	params, err := r.backend.BeginFrame()
	if errors.Is(err, core.ErrSwapchainBooting) {
		return nil
	}
	if err != nil {
		return err
	}
	// BeginFrame may have recreated the swapchain since the last Update.
	params.Extent = r.backend.Extent()
	state := r.stateFor(params.Extent)

	ws := r.workspaces.Acquire(params.WorkspaceIndex)
	if err := frame.Record(ws, params, state, r.resources); err != nil {
		return err
	}
	return r.backend.EndFrame(params)
}

// OnInput forwards a window input event to the camera. Returns true if handled.
func (r *Renderer) OnInput(event core.InputEvent) bool {
	return r.camera.OnInput(event)
}

func (r *Renderer) Options() frame.Options {
	return r.config.Options
}

// SetOptions takes effect from the next Update.
func (r *Renderer) SetOptions(options frame.Options) {
	r.config.Options = options
}

// SetAnimationTime jumps the animation clock, wrapping like Update does.
func (r *Renderer) SetAnimationTime(t float32) {
	r.time = frame.AdvanceTime(0, t)
}

func (r *Renderer) AnimationTime() float32 {
	return r.time
}

/**
 * @brief Takes node transforms and lighting from a reloaded scene. Counts of
 * meshes and textures are fixed after load, so any structural difference is
 * rejected with core.ErrTopologyChanged.
 */
func (r *Renderer) ApplySceneUpdate(next *scene.Scene) error {
	if !r.scene.SameTopology(next) {
		return core.ErrTopologyChanged
	}
	r.scene.CopyTransforms(next)
	return nil
}

// Stats reports the instance counts of the last built frame state.
func (r *Renderer) Stats() (drawn, culled int) {
	if r.state == nil {
		return 0, 0
	}
	return len(r.state.Instances), r.state.Culled
}

// Destroy waits for the device and releases everything New created. The
// backend itself is left running.
func (r *Renderer) Destroy() {
	if r.workspaces != nil {
		r.workspaces.Destroy()
		r.workspaces = nil
	} else if err := r.backend.WaitIdle(); err != nil {
		core.LogWarn("waiting for device idle before releasing the renderer: %s", err)
	}
	if r.descriptors != nil {
		r.descriptors.Destroy(r.context)
		r.descriptors = nil
	}
	if r.textures != nil {
		r.textures.destroy(r.context)
		r.textures = nil
	}
	if r.meshes != nil {
		r.meshes.destroy()
		r.meshes = nil
	}
	if r.pipelines != nil {
		r.pipelines.destroy(r.context)
		r.pipelines = nil
	}
	r.destroyFramebuffers()
	if r.targets.renderpass != nil {
		r.targets.renderpass.Destroy(r.context)
		r.targets.renderpass = nil
	}
	if r.layouts != nil {
		r.layouts.destroy(r.context)
		r.layouts = nil
	}
	r.resources = nil
	core.LogDebug("renderer resources released")
}
