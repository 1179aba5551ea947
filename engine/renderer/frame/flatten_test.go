package frame

import (
	"testing"

	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, mesh int, translation math.Vec3, children ...int) scene.Node {
	return scene.Node{
		Name:        name,
		Translation: translation,
		Rotation:    math.NewQuatIdentity(),
		Scale:       math.NewVec3(1, 1, 1),
		Children:    children,
		Mesh:        mesh,
	}
}

func TestFlattenSingleMeshScenario(t *testing.T) {
	s := &scene.Scene{
		Nodes:  []scene.Node{node("root", 0, math.Vec3{})},
		Roots:  []int{0},
		Meshes: []scene.Mesh{{Name: "m", Count: 512, Stride: 48, Material: scene.NoIndex}},
	}
	meshes := []MeshRange{{First: 0, Count: 512}}

	out := Flatten(s, meshes, math.NewMat4Identity())
	require.Len(t, out, 1)
	assert.Equal(t, uint32(0), out[0].Mesh.First)
	assert.Equal(t, uint32(512), out[0].Mesh.Count)
	assert.Equal(t, uint32(0), out[0].Texture)
	assert.Equal(t, math.NewMat4Identity(), out[0].Transform.WorldFromLocal)
}

func TestFlattenComposesParentThenChild(t *testing.T) {
	rootNode := node("root", 0, math.NewVec3(1, 2, 3), 1)
	rootNode.Rotation = math.QuatRotate(math.Pi/2, math.NewVec3(0, 0, 1))
	rootNode.Scale = math.NewVec3(2, 2, 2)
	child := node("child", 1, math.NewVec3(0, 5, 0))
	child.Rotation = math.QuatRotate(0.3, math.NewVec3(1, 0, 0))

	s := &scene.Scene{
		Nodes:  []scene.Node{rootNode, child},
		Roots:  []int{0},
		Meshes: []scene.Mesh{{Material: scene.NoIndex}, {Material: scene.NoIndex}},
	}
	a := rootNode.LocalTransform()
	b := child.LocalTransform()
	clip := math.Perspective(1, 1.5, 0.1, 100)

	out := Flatten(s, []MeshRange{{Count: 3}, {First: 3, Count: 6}}, clip)
	require.Len(t, out, 2)
	assert.Equal(t, a, out[0].Transform.WorldFromLocal)
	assert.Equal(t, a.Mul4(b), out[1].Transform.WorldFromLocal)
	assert.Equal(t, clip.Mul4(a.Mul4(b)), out[1].Transform.ClipFromLocal)
	assert.Equal(t, math.NormalMatrix(a.Mul4(b)), out[1].Transform.WorldFromLocalNormal)
	assert.Equal(t, uint32(3), out[1].Mesh.First)
}

func TestFlattenTransformOnlyNodesPropagate(t *testing.T) {
	s := &scene.Scene{
		Nodes: []scene.Node{
			node("group", scene.NoIndex, math.NewVec3(10, 0, 0), 1, 2),
			node("left", 0, math.NewVec3(0, 1, 0)),
			node("right", 0, math.NewVec3(0, -1, 0)),
			node("orphan", 0, math.Vec3{}),
		},
		Roots:  []int{0},
		Meshes: []scene.Mesh{{Material: scene.NoIndex}},
	}
	out := Flatten(s, []MeshRange{{Count: 1}}, math.NewMat4Identity())
	require.Len(t, out, 2, "unreachable and mesh-less nodes emit nothing")
	assert.Equal(t, math.NewVec3(10, 1, 0), out[0].Transform.WorldFromLocal.Col(3).Vec3())
	assert.Equal(t, math.NewVec3(10, -1, 0), out[1].Transform.WorldFromLocal.Col(3).Vec3())
}

func TestFlattenMultipleRootsAreIndependent(t *testing.T) {
	s := &scene.Scene{
		Nodes: []scene.Node{
			node("a", 0, math.NewVec3(1, 0, 0), 1),
			node("a.child", 0, math.NewVec3(1, 0, 0)),
			node("b", 0, math.NewVec3(0, 0, 7)),
		},
		Roots:  []int{2, 0},
		Meshes: []scene.Mesh{{Material: scene.NoIndex}},
	}
	out := Flatten(s, []MeshRange{{Count: 1}}, math.NewMat4Identity())
	require.Len(t, out, 3)
	assert.Equal(t, math.NewVec3(0, 0, 7), out[0].Transform.WorldFromLocal.Col(3).Vec3())
	assert.Equal(t, math.NewVec3(1, 0, 0), out[1].Transform.WorldFromLocal.Col(3).Vec3())
	assert.Equal(t, math.NewVec3(2, 0, 0), out[2].Transform.WorldFromLocal.Col(3).Vec3())
}

func TestFlattenSharedNodeYieldsInstancePerPath(t *testing.T) {
	s := &scene.Scene{
		Nodes: []scene.Node{
			node("left", scene.NoIndex, math.NewVec3(-3, 0, 0), 2),
			node("right", scene.NoIndex, math.NewVec3(3, 0, 0), 2),
			node("wheel", 0, math.NewVec3(0, 1, 0)),
		},
		Roots:  []int{0, 1, 2},
		Meshes: []scene.Mesh{{Stride: 48, Material: scene.NoIndex}},
	}
	require.NoError(t, s.Validate())

	out := Flatten(s, []MeshRange{{Count: 36}}, math.NewMat4Identity())
	require.Len(t, out, 3)
	assert.Equal(t, math.NewVec3(-3, 1, 0), out[0].Transform.WorldFromLocal.Col(3).Vec3())
	assert.Equal(t, math.NewVec3(3, 1, 0), out[1].Transform.WorldFromLocal.Col(3).Vec3())
	assert.Equal(t, math.NewVec3(0, 1, 0), out[2].Transform.WorldFromLocal.Col(3).Vec3())
	for _, inst := range out {
		assert.Equal(t, uint32(36), inst.Mesh.Count)
	}
}

func TestFlattenResolvesTextureSlots(t *testing.T) {
	s := &scene.Scene{
		Nodes: []scene.Node{
			node("plain", 0, math.Vec3{}),
			node("untextured", 1, math.Vec3{}),
			node("textured", 2, math.Vec3{}),
		},
		Roots: []int{0, 1, 2},
		Meshes: []scene.Mesh{
			{Material: scene.NoIndex},
			{Material: 0},
			{Material: 1},
		},
		Materials: []scene.Material{
			{Name: "none", Texture: scene.NoIndex},
			{Name: "brick", Texture: 4},
		},
	}
	out := Flatten(s, []MeshRange{{}, {}, {}}, math.NewMat4Identity())
	require.Len(t, out, 3)
	assert.Equal(t, uint32(0), out[0].Texture)
	assert.Equal(t, uint32(0), out[1].Texture)
	assert.Equal(t, uint32(5), out[2].Texture)
}

func TestFlattenTransformsBounds(t *testing.T) {
	s := &scene.Scene{
		Nodes:  []scene.Node{node("n", 0, math.NewVec3(5, 0, 0))},
		Roots:  []int{0},
		Meshes: []scene.Mesh{{Material: scene.NoIndex}},
	}
	bounds := math.AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	out := Flatten(s, []MeshRange{{Count: 36, Bounds: bounds}}, math.NewMat4Identity())
	require.Len(t, out, 1)
	assert.Equal(t, math.NewVec3(4, -1, -1), out[0].Bounds.Min)
	assert.Equal(t, math.NewVec3(6, 1, 1), out[0].Bounds.Max)
	assert.Equal(t, bounds, out[0].Mesh.Bounds)
}
