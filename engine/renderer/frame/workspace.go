package frame

import (
	"fmt"

	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

/**
 * @brief The resources of one frame-in-flight slot. Nothing in a workspace is
 * shared with another slot.
 */
type Workspace struct {
	Index    int
	Recorder Recorder

	LinesVertices *Stream
	Camera        *Stream
	World         *Stream
	Transforms    *Stream
}

// Streams lists the streams in upload order.
func (w *Workspace) Streams() []*Stream {
	return []*Stream{w.LinesVertices, w.Camera, w.World, w.Transforms}
}

func (w *Workspace) destroyStreams() {
	for _, s := range w.Streams() {
		if s != nil {
			s.Destroy()
		}
	}
}

type WorkspacePool struct {
	device     Device
	workspaces []*Workspace
}

/**
 * @brief Creates count workspaces. Camera and world uniforms have a fixed size
 * and are allocated up front so their descriptor sets are valid before the
 * first upload.
 */
func NewWorkspacePool(device Device, count int) (*WorkspacePool, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: workspace count %d", core.ErrInvalidConfig, count)
	}
	p := &WorkspacePool{
		device:     device,
		workspaces: make([]*Workspace, 0, count),
	}
	for i := 0; i < count; i++ {
		ws, err := newWorkspace(device, i)
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.workspaces = append(p.workspaces, ws)
	}
	core.LogInfo("created %d frame workspaces", count)
	return p, nil
}

func newWorkspace(device Device, index int) (*Workspace, error) {
	ws := &Workspace{Index: index}

	var err error
	if ws.Recorder, err = device.AllocateRecorder(); err != nil {
		return nil, fmt.Errorf("workspace %d: %w", index, err)
	}
	if ws.LinesVertices, err = NewStream(device, "lines", metadata.RENDERBUFFER_TYPE_VERTEX, false, 0); err != nil {
		ws.release()
		return nil, err
	}
	if ws.Camera, err = NewStream(device, "camera", metadata.RENDERBUFFER_TYPE_UNIFORM, true, SetLayoutCamera); err != nil {
		ws.release()
		return nil, err
	}
	if ws.World, err = NewStream(device, "world", metadata.RENDERBUFFER_TYPE_UNIFORM, true, SetLayoutWorld); err != nil {
		ws.release()
		return nil, err
	}
	if ws.Transforms, err = NewStream(device, "transforms", metadata.RENDERBUFFER_TYPE_STORAGE, true, SetLayoutTransforms); err != nil {
		ws.release()
		return nil, err
	}
	if _, err = ws.Camera.Ensure(metadata.CameraUniformSize); err != nil {
		ws.release()
		return nil, err
	}
	if _, err = ws.World.Ensure(metadata.WorldUniformSize); err != nil {
		ws.release()
		return nil, err
	}
	return ws, nil
}

func (w *Workspace) release() {
	w.destroyStreams()
	if w.Recorder != nil {
		w.Recorder.Free()
		w.Recorder = nil
	}
}

func (p *WorkspacePool) Len() int {
	return len(p.workspaces)
}

// Acquire returns the workspace of a frame-in-flight slot. An out of range
// index is a programming error and panics.
func (p *WorkspacePool) Acquire(index int) *Workspace {
	if index < 0 || index >= len(p.workspaces) {
		panic(fmt.Sprintf("workspace index %d out of range [0, %d)", index, len(p.workspaces)))
	}
	return p.workspaces[index]
}

/**
 * @brief Waits for the device to go idle and releases every workspace. A
 * failed wait is logged and teardown continues. Buffers go first, then the
 * command buffers, which must be freed before their command pool.
 */
func (p *WorkspacePool) Destroy() {
	if err := p.device.WaitIdle(); err != nil {
		core.LogWarn("waiting for device idle before releasing workspaces: %s", err)
	}
	for _, ws := range p.workspaces {
		ws.destroyStreams()
	}
	for _, ws := range p.workspaces {
		if ws.Recorder != nil {
			ws.Recorder.Free()
			ws.Recorder = nil
		}
	}
	p.workspaces = nil
}
