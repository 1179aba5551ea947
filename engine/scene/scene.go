package scene

import (
	"github.com/spaghettifunk/stratus/engine/math"
)

// NoIndex marks an absent mesh, material or texture reference.
const NoIndex = -1

/**
 * @brief A texture is either an image file on disk or a constant color.
 */
type Texture struct {
	Name string
	// Path to the image file; empty for constant textures.
	Path  string
	Color math.Vec3
}

func (t *Texture) IsConstant() bool {
	return t.Path == ""
}

type Material struct {
	Name string
	// Index into Scene.Textures, NoIndex when untextured.
	Texture int
}

/**
 * @brief A mesh is a contiguous run of vertices stored in a binary source file.
 */
type Mesh struct {
	Name   string
	Source string
	// Byte offset of the first vertex inside Source.
	Offset int64
	// Number of vertices.
	Count uint32
	// Size of a single vertex in bytes.
	Stride uint32
	// Index into Scene.Materials, NoIndex when the mesh has none.
	Material int
}

type Node struct {
	Name        string
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
	Children    []int
	// Index into Scene.Meshes, NoIndex for transform-only nodes.
	Mesh int
}

// LocalTransform is the parent-from-local matrix T * R * S.
func (n *Node) LocalTransform() math.Mat4 {
	return math.TRS(n.Translation, n.Rotation, n.Scale)
}

type Lighting struct {
	SkyDirection math.Vec3
	SkyEnergy    math.Vec3
	SunDirection math.Vec3
	SunEnergy    math.Vec3
}

// DefaultLighting is a dim blue sky straight overhead and a warm sun.
func DefaultLighting() Lighting {
	return Lighting{
		SkyDirection: math.NewVec3(0, 0, 1),
		SkyEnergy:    math.NewVec3(0.1, 0.1, 0.2),
		SunDirection: math.NewVec3(6.0/23.0, 13.0/23.0, 18.0/23.0).Normalize(),
		SunEnergy:    math.NewVec3(1, 1, 0.9),
	}
}

/**
 * @brief The scene graph as loaded from a manifest. Read-only while rendering,
 * except for node transforms which may be refreshed by a hot reload.
 */
type Scene struct {
	Nodes     []Node
	Roots     []int
	Meshes    []Mesh
	Materials []Material
	Textures  []Texture
	Lighting  Lighting
}

// VerticesCount is the total vertex count across all meshes.
func (s *Scene) VerticesCount() uint32 {
	var total uint32
	for i := range s.Meshes {
		total += s.Meshes[i].Count
	}
	return total
}

// TextureIndexFor returns the texture table slot used by a mesh: 0 for the
// default white texture, otherwise the scene texture index plus one.
func (s *Scene) TextureIndexFor(mesh int) uint32 {
	m := &s.Meshes[mesh]
	if m.Material == NoIndex {
		return 0
	}
	mat := &s.Materials[m.Material]
	if mat.Texture == NoIndex {
		return 0
	}
	return uint32(mat.Texture) + 1
}

// SameTopology reports whether other has identical nodes, children, mesh
// ranges and material bindings, so only transforms differ.
func (s *Scene) SameTopology(other *Scene) bool {
	if len(s.Nodes) != len(other.Nodes) || len(s.Roots) != len(other.Roots) ||
		len(s.Meshes) != len(other.Meshes) || len(s.Materials) != len(other.Materials) ||
		len(s.Textures) != len(other.Textures) {
		return false
	}
	for i, r := range s.Roots {
		if other.Roots[i] != r {
			return false
		}
	}
	for i := range s.Nodes {
		a, b := &s.Nodes[i], &other.Nodes[i]
		if a.Mesh != b.Mesh || len(a.Children) != len(b.Children) {
			return false
		}
		for j := range a.Children {
			if a.Children[j] != b.Children[j] {
				return false
			}
		}
	}
	for i := range s.Meshes {
		a, b := &s.Meshes[i], &other.Meshes[i]
		if a.Source != b.Source || a.Offset != b.Offset || a.Count != b.Count ||
			a.Stride != b.Stride || a.Material != b.Material {
			return false
		}
	}
	for i := range s.Materials {
		if s.Materials[i].Texture != other.Materials[i].Texture {
			return false
		}
	}
	for i := range s.Textures {
		if s.Textures[i] != other.Textures[i] {
			return false
		}
	}
	return true
}

// CopyTransforms takes node transforms and lighting from other. Callers must
// check SameTopology first.
func (s *Scene) CopyTransforms(other *Scene) {
	for i := range s.Nodes {
		s.Nodes[i].Translation = other.Nodes[i].Translation
		s.Nodes[i].Rotation = other.Nodes[i].Rotation
		s.Nodes[i].Scale = other.Nodes[i].Scale
	}
	s.Lighting = other.Lighting
}
