package frame

import (
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/scene"
)

// MeshRange locates a mesh inside the shared object vertex buffer.
type MeshRange struct {
	First  uint32
	Count  uint32
	Bounds math.AABB
}

// Instance is one draw of a mesh with a resolved transform and texture slot.
type Instance struct {
	Mesh      MeshRange
	Transform metadata.Transform
	// Slot in the texture table; 0 is the default white texture.
	Texture uint32
	// World space bounds of the mesh.
	Bounds math.AABB
}

/**
 * @brief Flattens the scene graph into draw instances. Each root is walked
 * depth first in pre-order; a node's world transform is its parent's world
 * transform times its own local transform, and a root uses its local
 * transform alone. Nodes without a mesh still pass their transform down.
 * The output order is root order, then pre-order, and defines instance indices.
 */
func Flatten(s *scene.Scene, meshes []MeshRange, clipFromWorld math.Mat4) []Instance {
	var out []Instance
	for _, root := range s.Roots {
		out = flattenNode(s, meshes, clipFromWorld, root, s.Nodes[root].LocalTransform(), out)
	}
	return out
}

func flattenNode(s *scene.Scene, meshes []MeshRange, clipFromWorld math.Mat4, index int, worldFromLocal math.Mat4, out []Instance) []Instance {
	node := &s.Nodes[index]
	if node.Mesh != scene.NoIndex {
		mesh := meshes[node.Mesh]
		out = append(out, Instance{
			Mesh: mesh,
			Transform: metadata.Transform{
				ClipFromLocal:        clipFromWorld.Mul4(worldFromLocal),
				WorldFromLocal:       worldFromLocal,
				WorldFromLocalNormal: math.NormalMatrix(worldFromLocal),
			},
			Texture: s.TextureIndexFor(node.Mesh),
			Bounds:  mesh.Bounds.Transform(worldFromLocal),
		})
	}
	for _, child := range node.Children {
		out = flattenNode(s, meshes, clipFromWorld, child, worldFromLocal.Mul4(s.Nodes[child].LocalTransform()), out)
	}
	return out
}
