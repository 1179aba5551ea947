package frame

import (
	"fmt"

	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

// Descriptor set indices of the objects pipeline.
const (
	objectsSetWorld      uint32 = 0
	objectsSetTransforms uint32 = 1
	objectsSetTexture    uint32 = 2
)

// RenderParams is supplied by the presentation layer for every frame.
type RenderParams struct {
	WorkspaceIndex int
	ImageIndex     uint32
	Extent         Extent

	ImageAvailable     Semaphore
	ImageDone          Semaphore
	WorkspaceAvailable Fence
}

// DrawResources are created once at load time and shared by every workspace.
type DrawResources struct {
	// Nil when the scene has no vertices.
	ObjectVertices Buffer
	// One set per texture table slot.
	TextureSets []DescriptorSet
	RenderPass  *metadata.RenderPassConfig
}

/**
 * @brief Records and submits one frame into a workspace:
 * stream uploads, one transfer barrier, then the background, lines and
 * objects passes inside a single render pass.
 */
func Record(ws *Workspace, params *RenderParams, st *State, res *DrawResources) error {
	rec := ws.Recorder
	if err := rec.Reset(); err != nil {
		return err
	}
	if err := rec.Begin(); err != nil {
		return err
	}

	uploads := []struct {
		stream *Stream
		data   []byte
	}{
		{ws.LinesVertices, metadata.AsBytes(st.Lines)},
		{ws.Camera, metadata.ValueBytes(&st.Camera)},
		{ws.World, metadata.ValueBytes(&st.World)},
		{ws.Transforms, metadata.AsBytes(st.Transforms)},
	}
	for _, u := range uploads {
		if err := u.stream.Upload(rec, u.data); err != nil {
			return err
		}
	}
	rec.TransferBarrier()

	rec.BeginRenderPass(params.ImageIndex, params.Extent, res.RenderPass)
	rec.SetViewportScissor(params.Extent)

	// background
	push := metadata.BackgroundPush{Time: st.Time}
	rec.BindPipeline(PipelineBackground)
	rec.PushConstants(PipelineBackground, metadata.ValueBytes(&push))
	rec.Draw(3, 1, 0, 0)

	// lines
	if len(st.Lines) > 0 {
		rec.BindPipeline(PipelineLines)
		rec.BindVertexBuffer(ws.LinesVertices.Buffer())
		rec.BindDescriptorSets(PipelineLines, 0, ws.Camera.DescriptorSet())
		rec.Draw(uint32(len(st.Lines)), 1, 0, 0)
	}

	// objects; a scene without vertices has no vertex buffer to bind
	if len(st.Instances) > 0 && res.ObjectVertices != nil {
		rec.BindPipeline(PipelineObjects)
		rec.BindVertexBuffer(res.ObjectVertices)
		rec.BindDescriptorSets(PipelineObjects, objectsSetWorld, ws.World.DescriptorSet(), ws.Transforms.DescriptorSet())
		for i := range st.Instances {
			inst := &st.Instances[i]
			if int(inst.Texture) >= len(res.TextureSets) {
				return fmt.Errorf("instance %d uses texture slot %d of %d", i, inst.Texture, len(res.TextureSets))
			}
			rec.BindDescriptorSets(PipelineObjects, objectsSetTexture, res.TextureSets[inst.Texture])
			rec.Draw(inst.Mesh.Count, 1, inst.Mesh.First, uint32(i))
		}
	}

	rec.EndRenderPass()
	if err := rec.End(); err != nil {
		return err
	}
	return rec.Submit(params.ImageAvailable, params.ImageDone, params.WorkspaceAvailable)
}
