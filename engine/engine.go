package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/stratus/engine/assets"
	"github.com/spaghettifunk/stratus/engine/assets/loaders"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/platform"
	"github.com/spaghettifunk/stratus/engine/renderer"
	"github.com/spaghettifunk/stratus/engine/renderer/components"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Capacity of the per-frame input queue.
const inputQueueSize = 256

type Engine struct {
	config       *ApplicationConfig
	currentStage Stage
	isRunning    atomic.Bool
	isSuspended  bool

	events   *core.EventBus
	platform *platform.Platform
	backend  *vulkan.VulkanRenderer
	renderer *renderer.Renderer
	camera   *components.OrbitCamera
	watcher  *assets.SceneWatcher

	width   uint32
	height  uint32
	clock   *core.Clock
	metrics *core.FrameMetrics
}

func New(config *ApplicationConfig) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := core.SetLogLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	events := core.NewEventBus()
	return &Engine{
		config:       config,
		currentStage: EngineStageUninitialized,
		events:       events,
		platform:     platform.New(events, inputQueueSize),
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		width:        config.Window.StartWidth,
		height:       config.Window.StartHeight,
	}, nil
}

/**
 * @brief Opens the window, brings up the device and loads the scene. Every
 * asset is read and decoded before the first GPU upload.
 */
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_SCENE_CHANGED, e, e.onSceneChanged)

	w := e.config.Window
	if err := e.platform.Startup(w.Name, w.StartPosX, w.StartPosY, w.StartWidth, w.StartHeight); err != nil {
		return err
	}
	e.width, e.height = e.platform.FramebufferSize()

	sceneLoader := &loaders.SceneLoader{}
	s, err := sceneLoader.Load(e.config.Scene.Path)
	if err != nil {
		return err
	}
	textureLoader := &loaders.TextureLoader{}
	images, err := textureLoader.LoadAll(s.Textures, e.config.Scene.TextureWorkers)
	if err != nil {
		return err
	}
	core.LogInfo("scene %s: %d nodes, %d meshes, %d textures", e.config.Scene.Path, len(s.Nodes), len(s.Meshes), len(s.Textures))

	rc := e.config.Renderer
	e.backend = vulkan.New(&metadata.RendererBackendConfig{
		ApplicationName: w.Name,
		Validation:      rc.Validation,
		VSync:           rc.VSync,
	})
	if err := e.backend.Initialize(e.platform, e.width, e.height, rc.FramesInFlight); err != nil {
		return err
	}

	cc := e.config.Camera
	e.camera = components.NewOrbitCamera()
	e.camera.SetOrbit(cc.Radius, math.DegToRad(cc.Azimuth), math.DegToRad(cc.Elevation), cc.target())

	pass := metadata.DefaultRenderPassConfig()
	pass.ClearColour = rc.ClearColor
	e.renderer, err = renderer.New(e.backend, s, images, e.camera, renderer.Config{
		ShaderDir:  rc.ShaderDir,
		RenderPass: pass,
		Options: frame.Options{
			Cull:       rc.Cull,
			ShowBounds: rc.ShowBounds,
			Grid:       rc.Grid,
		},
	})
	if err != nil {
		return err
	}

	if e.config.Scene.Watch {
		debounce := time.Duration(e.config.Scene.WatchDebounceMS) * time.Millisecond
		if e.watcher, err = assets.NewSceneWatcher(e.config.Scene.Path, debounce); err != nil {
			core.LogWarn("scene hot reload disabled: %s", err)
			e.watcher = nil
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	e.clock.Start()
	lastReport := e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		e.platform.DrainInput(e.onInput)
		e.pollScene()

		dt := e.clock.Tick()
		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		frameStartTime := platform.GetAbsoluteTime()
		e.renderer.Update(dt)
		if err := e.renderer.Render(); err != nil {
			core.LogFatal("frame %d failed: %s", e.backend.FrameNumber, err)
			return err
		}

		e.metrics.Update(platform.GetAbsoluteTime() - frameStartTime)
		interval := e.config.MetricsIntervalS
		if now := e.clock.Elapsed(); interval > 0 && now-lastReport >= interval {
			drawn, culled := e.renderer.Stats()
			core.LogInfo("%.0f fps, %.2f ms/frame, %d instances drawn, %d culled", e.metrics.FPS(), e.metrics.FrameTime(), drawn, culled)
			lastReport = now
		}
	}
	return nil
}

// Stop asks the main loop to exit after the current frame. Safe to call from
// any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		e.watcher = nil
	}
	if e.renderer != nil {
		e.renderer.Destroy()
		e.renderer = nil
	}
	if e.backend != nil {
		e.backend.Shutdown()
		e.backend = nil
	}
	e.events.Shutdown()
	if err := e.platform.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onInput(event core.InputEvent) {
	if event.Type == core.INPUT_KEY_DOWN {
		options := e.renderer.Options()
		switch event.Key {
		case core.KEY_ESCAPE:
			// NOTE: Technically firing an event to itself, but there may be other listeners.
			e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
			return
		case core.KEY_F1:
			options.Cull = !options.Cull
			core.LogInfo("frustum culling: %t", options.Cull)
		case core.KEY_F2:
			options.ShowBounds = !options.ShowBounds
			core.LogInfo("bounds overlay: %t", options.ShowBounds)
		case core.KEY_F3:
			options.Grid = !options.Grid
			core.LogInfo("grid: %t", options.Grid)
		case core.KEY_R:
			cc := e.config.Camera
			e.camera.SetOrbit(cc.Radius, math.DegToRad(cc.Azimuth), math.DegToRad(cc.Elevation), cc.target())
			return
		}
		e.renderer.SetOptions(options)
	}
	e.renderer.OnInput(event)
}

func (e *Engine) pollScene() {
	if e.watcher == nil {
		return
	}
	if path, ok := e.watcher.Poll(); ok {
		e.events.Fire(core.EVENT_CODE_SCENE_CHANGED, e.watcher, core.EventContext{Path: path})
	}
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	width, height := context.Width, context.Height
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.backend.Resized(width, height)
	return false
}

// onSceneChanged reloads the manifest and keeps its node transforms and
// lighting. Anything that would need new GPU resources is refused.
func (e *Engine) onSceneChanged(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	sceneLoader := &loaders.SceneLoader{}
	next, err := sceneLoader.Load(context.Path)
	if err != nil {
		core.LogWarn("scene reload ignored: %s", err)
		return true
	}
	if err := e.renderer.ApplySceneUpdate(next); err != nil {
		core.LogWarn("scene reload ignored: %s", err)
		return true
	}
	core.LogInfo("scene %s reloaded", context.Path)
	return true
}
