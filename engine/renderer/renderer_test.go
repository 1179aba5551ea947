package renderer

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/components"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// positionReader writes the listed positions at the start of every vertex.
type positionReader struct {
	positions map[string][]math.Vec3
	reads     []string
}

func (p *positionReader) ReadVertices(mesh *scene.Mesh, dst []byte) error {
	p.reads = append(p.reads, mesh.Name)
	for i, pos := range p.positions[mesh.Name] {
		off := i * int(mesh.Stride)
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(dst[off+4*c:], math32.Float32bits(pos[c]))
		}
	}
	return nil
}

func mesh(name string, count uint32) scene.Mesh {
	return scene.Mesh{Name: name, Count: count, Stride: metadata.PosNorTanTexVertexSize, Material: scene.NoIndex}
}

func TestPackMeshesPlacesMeshesBackToBack(t *testing.T) {
	s := &scene.Scene{Meshes: []scene.Mesh{mesh("a", 3), mesh("empty", 0), mesh("b", 5)}}
	reader := &positionReader{positions: map[string][]math.Vec3{}}

	data, ranges, err := packMeshes(s, reader)
	require.NoError(t, err)

	assert.Len(t, data, 8*int(metadata.PosNorTanTexVertexSize))
	require.Len(t, ranges, 3)
	assert.Equal(t, uint32(0), ranges[0].First)
	assert.Equal(t, uint32(3), ranges[0].Count)
	assert.Equal(t, uint32(3), ranges[1].First)
	assert.Equal(t, uint32(0), ranges[1].Count)
	assert.Equal(t, uint32(3), ranges[2].First)
	assert.Equal(t, uint32(5), ranges[2].Count)
	assert.Equal(t, []string{"a", "empty", "b"}, reader.reads)
}

func TestPackMeshesComputesBounds(t *testing.T) {
	s := &scene.Scene{Meshes: []scene.Mesh{mesh("a", 1), mesh("b", 3)}}
	reader := &positionReader{positions: map[string][]math.Vec3{
		"a": {math.NewVec3(7, 7, 7)},
		"b": {math.NewVec3(0, 0, 0), math.NewVec3(1, 2, 3), math.NewVec3(-1, 5, 0)},
	}}

	_, ranges, err := packMeshes(s, reader)
	require.NoError(t, err)

	assert.Equal(t, math.NewVec3(7, 7, 7), ranges[0].Bounds.Min)
	assert.Equal(t, math.NewVec3(7, 7, 7), ranges[0].Bounds.Max)
	assert.Equal(t, math.NewVec3(-1, 0, 0), ranges[1].Bounds.Min)
	assert.Equal(t, math.NewVec3(1, 5, 3), ranges[1].Bounds.Max)
}

func TestPackMeshesRejectsForeignStride(t *testing.T) {
	bad := mesh("pos-col", 2)
	bad.Stride = metadata.PosColVertexSize
	s := &scene.Scene{Meshes: []scene.Mesh{bad}}

	_, _, err := packMeshes(s, &positionReader{})
	assert.ErrorIs(t, err, core.ErrInvalidScene)
}

func TestTextureSlotsStartWithWhite(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 2, 2))
	blue := image.NewRGBA(image.Rect(0, 0, 4, 1))

	slots := textureSlots([]*image.RGBA{red, blue})
	require.Len(t, slots, 3)
	assert.Equal(t, image.Rect(0, 0, 1, 1), slots[0].Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, slots[0].RGBAAt(0, 0))
	assert.Same(t, red, slots[1])
	assert.Same(t, blue, slots[2])

	assert.Len(t, textureSlots(nil), 1)
}

func TestWorkspaceSetCounts(t *testing.T) {
	maxSets, sizes := workspaceSetCounts(2)
	assert.Equal(t, uint32(6), maxSets)
	assert.Equal(t, uint32(4), sizes[vk.DescriptorTypeUniformBuffer])
	assert.Equal(t, uint32(2), sizes[vk.DescriptorTypeStorageBuffer])
	assert.Len(t, sizes, 2)
}

func TestPipelineConfigs(t *testing.T) {
	configs := pipelineConfigs(nil, &setLayouts{})

	bg := configs[frame.PipelineBackground]
	assert.Equal(t, "background", bg.Name)
	assert.Nil(t, bg.Vertex)
	assert.Empty(t, bg.DescriptorSetLayouts)
	assert.False(t, bg.DepthTest)
	assert.False(t, bg.DepthWrite)
	require.Len(t, bg.PushConstantRanges, 1)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), bg.PushConstantRanges[0].StageFlags)
	assert.Equal(t, uint32(4), bg.PushConstantRanges[0].Size)

	lines := configs[frame.PipelineLines]
	assert.Equal(t, "lines", lines.Name)
	assert.Equal(t, vk.PrimitiveTopologyLineList, lines.Topology)
	assert.Equal(t, metadata.PosColVertexSize, lines.Vertex.Stride)
	assert.Len(t, lines.DescriptorSetLayouts, 1)
	assert.True(t, lines.DepthTest)

	objects := configs[frame.PipelineObjects]
	assert.Equal(t, "objects", objects.Name)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, objects.Topology)
	assert.Equal(t, metadata.FaceCullModeBack, objects.CullMode)
	assert.Equal(t, metadata.PosNorTanTexVertexSize, objects.Vertex.Stride)
	assert.Len(t, objects.DescriptorSetLayouts, 3)
	assert.True(t, objects.DepthWrite)
}

func twoNodeScene(x float32) *scene.Scene {
	return &scene.Scene{
		Nodes: []scene.Node{
			{Name: "root", Translation: math.NewVec3(x, 0, 0), Rotation: math.NewQuatIdentity(), Scale: math.NewVec3(1, 1, 1), Children: []int{1}, Mesh: scene.NoIndex},
			{Name: "leaf", Rotation: math.NewQuatIdentity(), Scale: math.NewVec3(1, 1, 1), Mesh: scene.NoIndex},
		},
		Roots:    []int{0},
		Lighting: scene.DefaultLighting(),
	}
}

func TestApplySceneUpdateCopiesTransforms(t *testing.T) {
	r := &Renderer{scene: twoNodeScene(0)}

	next := twoNodeScene(4)
	next.Lighting.SunEnergy = math.NewVec3(2, 2, 2)
	require.NoError(t, r.ApplySceneUpdate(next))

	assert.Equal(t, math.NewVec3(4, 0, 0), r.scene.Nodes[0].Translation)
	assert.Equal(t, math.NewVec3(2, 2, 2), r.scene.Lighting.SunEnergy)
}

func TestApplySceneUpdateRejectsTopologyChange(t *testing.T) {
	r := &Renderer{scene: twoNodeScene(0)}

	next := twoNodeScene(4)
	next.Nodes[1].Children = []int{0}
	assert.ErrorIs(t, r.ApplySceneUpdate(next), core.ErrTopologyChanged)
	assert.Equal(t, math.NewVec3(0, 0, 0), r.scene.Nodes[0].Translation)
}

func TestSetAnimationTimeWraps(t *testing.T) {
	r := &Renderer{}
	r.SetAnimationTime(61.5)
	assert.InDelta(t, 1.5, r.AnimationTime(), 1e-5)

	r.SetAnimationTime(12)
	assert.InDelta(t, 12, r.AnimationTime(), 1e-5)
}

func TestStatsBeforeFirstUpdate(t *testing.T) {
	r := &Renderer{}
	drawn, culled := r.Stats()
	assert.Zero(t, drawn)
	assert.Zero(t, culled)
}

func TestSetOptions(t *testing.T) {
	r := &Renderer{config: Config{Options: frame.Options{Grid: true}}}
	options := r.Options()
	options.Cull = true
	r.SetOptions(options)
	assert.Equal(t, frame.Options{Cull: true, Grid: true}, r.Options())
}

func TestStateRebuiltWhenExtentChanges(t *testing.T) {
	camera := components.NewOrbitCamera()
	r := &Renderer{scene: twoNodeScene(0), meshes: &meshTable{}, camera: camera}

	wide := r.stateFor(frame.Extent{Width: 1600, Height: 900})
	assert.Same(t, wide, r.stateFor(frame.Extent{Width: 1600, Height: 900}))
	assert.Equal(t, camera.ClipFromWorld(16.0/9.0), wide.Camera.ClipFromWorld)

	square := r.stateFor(frame.Extent{Width: 900, Height: 900})
	assert.NotSame(t, wide, square)
	assert.Equal(t, camera.ClipFromWorld(1), square.Camera.ClipFromWorld)
	assert.Same(t, square, r.state)
}
