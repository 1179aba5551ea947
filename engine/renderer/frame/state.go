package frame

import (
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/components"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/scene"
)

// Animation time wraps at this many seconds.
const TimeWrap float32 = 60.0

var boundsColor = [4]uint8{0xff, 0xd0, 0x00, 0xff}

type Options struct {
	// Drop instances whose world bounds are outside the view frustum.
	Cull bool
	// Outline the world bounds of every drawn instance.
	ShowBounds bool
	// Draw the animated line grid.
	Grid bool
}

type Inputs struct {
	Scene  *scene.Scene
	Meshes []MeshRange
	Camera *components.OrbitCamera
	Aspect float32
	Time   float32
	Options
}

/**
 * @brief Everything one frame reads. Built by BuildState once per update and
 * never modified while a frame is recorded.
 */
type State struct {
	Time       float32
	Camera     metadata.CameraUniform
	World      metadata.WorldUniform
	Instances  []Instance
	Transforms []metadata.Transform
	Lines      []metadata.PosColVertex
	// Instances dropped by frustum culling.
	Culled int
}

// AdvanceTime adds dt to t, wrapping at TimeWrap.
func AdvanceTime(t, dt float32) float32 {
	t += dt
	for t >= TimeWrap {
		t -= TimeWrap
	}
	return t
}

func BuildState(in Inputs) *State {
	clipFromWorld := in.Camera.ClipFromWorld(in.Aspect)
	lighting := in.Scene.Lighting

	st := &State{
		Time:   in.Time,
		Camera: metadata.CameraUniform{ClipFromWorld: clipFromWorld},
		World: metadata.NewWorldUniform(
			lighting.SkyDirection, lighting.SkyEnergy,
			lighting.SunDirection, lighting.SunEnergy,
			in.Camera.GetEye(),
		),
	}

	instances := Flatten(in.Scene, in.Meshes, clipFromWorld)
	if in.Cull {
		frustum := math.NewFrustum(clipFromWorld)
		kept := instances[:0]
		for _, inst := range instances {
			if frustum.Intersects(inst.Bounds) {
				kept = append(kept, inst)
			}
		}
		st.Culled = len(instances) - len(kept)
		instances = kept
	}
	st.Instances = instances

	st.Transforms = make([]metadata.Transform, len(instances))
	for i := range instances {
		st.Transforms[i] = instances[i].Transform
	}

	if in.Grid {
		st.Lines = append(st.Lines, GridLines(in.Time)...)
	}
	if in.ShowBounds {
		boxes := make([]math.AABB, len(instances))
		for i := range instances {
			boxes[i] = instances[i].Bounds
		}
		st.Lines = append(st.Lines, BoundsLines(boxes, boundsColor)...)
	}
	return st
}
