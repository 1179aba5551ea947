package scene

import (
	"testing"

	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, mesh int, children ...int) Node {
	return Node{
		Name:     name,
		Rotation: math.NewQuatIdentity(),
		Scale:    math.NewVec3(1, 1, 1),
		Children: children,
		Mesh:     mesh,
	}
}

func sample() *Scene {
	return &Scene{
		Nodes: []Node{
			node("root", NoIndex, 1, 2),
			node("left", 0),
			node("right", 1),
		},
		Roots: []int{0},
		Meshes: []Mesh{
			{Name: "plain", Count: 12, Stride: 48, Material: NoIndex},
			{Name: "textured", Count: 30, Stride: 48, Material: 0},
		},
		Materials: []Material{{Name: "brick", Texture: 1}},
		Textures: []Texture{
			{Name: "white", Color: math.NewVec3(1, 1, 1)},
			{Name: "bricks", Path: "bricks.png"},
		},
		Lighting: DefaultLighting(),
	}
}

func TestValidateAcceptsForest(t *testing.T) {
	s := sample()
	require.NoError(t, s.Validate())
	assert.Equal(t, uint32(42), s.VerticesCount())
}

func TestValidateRejectsCycles(t *testing.T) {
	s := sample()
	s.Nodes[2].Children = []int{0}
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScene)

	s = sample()
	s.Nodes[1].Children = []int{1}
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScene)

	// The cycle is only reachable through a node that was already checked.
	s = sample()
	s.Nodes[1].Children = []int{2}
	s.Nodes[2].Children = []int{1}
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScene)
}

func TestValidateAcceptsSharedNodes(t *testing.T) {
	s := sample()
	s.Nodes[1].Children = []int{2}
	assert.NoError(t, s.Validate(), "child shared by two parents")

	s = sample()
	s.Roots = []int{0, 0}
	assert.NoError(t, s.Validate(), "repeated root")

	s = sample()
	s.Roots = []int{0, 2}
	assert.NoError(t, s.Validate(), "root that is also a child")
}

func TestValidateRejectsDanglingReferences(t *testing.T) {
	s := sample()
	s.Nodes[1].Mesh = 7
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScene)

	s = sample()
	s.Materials[0].Texture = 2
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScene)

	s = sample()
	s.Roots = []int{3}
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidScene)
}

func TestTextureIndexFor(t *testing.T) {
	s := sample()
	assert.Equal(t, uint32(0), s.TextureIndexFor(0), "no material uses the default texture")
	assert.Equal(t, uint32(2), s.TextureIndexFor(1), "scene texture k maps to slot k+1")

	s.Materials[0].Texture = NoIndex
	assert.Equal(t, uint32(0), s.TextureIndexFor(1))
}

func TestSameTopologyAndCopyTransforms(t *testing.T) {
	a, b := sample(), sample()
	b.Nodes[1].Translation = math.NewVec3(4, 5, 6)
	require.True(t, a.SameTopology(b))

	a.CopyTransforms(b)
	assert.Equal(t, math.NewVec3(4, 5, 6), a.Nodes[1].Translation)

	b.Nodes[0].Children = []int{1}
	assert.False(t, a.SameTopology(b))

	c := sample()
	c.Textures[1].Path = "other.png"
	assert.False(t, a.SameTopology(c))
}

func TestSameTopologyComparesGPUBindings(t *testing.T) {
	a := sample()

	b := sample()
	b.Materials[0].Texture = 0
	assert.False(t, a.SameTopology(b), "material texture")

	b = sample()
	b.Materials[0].Texture = NoIndex
	assert.False(t, a.SameTopology(b), "material texture removed")

	b = sample()
	b.Meshes[1].Stride = 32
	assert.False(t, a.SameTopology(b), "vertex stride")

	b = sample()
	b.Materials[0].Name = "stone"
	assert.True(t, a.SameTopology(b), "material name")
}

func TestDefaultLightingSunIsNormalized(t *testing.T) {
	l := DefaultLighting()
	assert.InDelta(t, 1, l.SunDirection.Len(), 1e-6)
	assert.Equal(t, math.NewVec3(0, 0, 1), l.SkyDirection)
}
