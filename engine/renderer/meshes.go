package renderer

import (
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/stratus/engine/assets/loaders"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/frame"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
	"github.com/spaghettifunk/stratus/engine/scene"
)

// vertexReader fills dst with the raw vertices of mesh.
type vertexReader interface {
	ReadVertices(mesh *scene.Mesh, dst []byte) error
}

/**
 * @brief Packs every scene mesh back to back in scene order. A mesh's first
 * vertex is the sum of the counts before it. Bounds are taken from the
 * leading position of each vertex.
 */
func packMeshes(s *scene.Scene, reader vertexReader) ([]byte, []frame.MeshRange, error) {
	stride := metadata.PosNorTanTexVertexSize
	data := make([]byte, uint64(s.VerticesCount())*uint64(stride))
	ranges := make([]frame.MeshRange, len(s.Meshes))

	var first uint32
	for i := range s.Meshes {
		mesh := &s.Meshes[i]
		if mesh.Stride != stride {
			return nil, nil, fmt.Errorf("%w: mesh %q has a %d byte stride, expected %d", core.ErrInvalidScene, mesh.Name, mesh.Stride, stride)
		}
		start := uint64(first) * uint64(stride)
		chunk := data[start : start+uint64(mesh.Count)*uint64(stride)]
		if err := reader.ReadVertices(mesh, chunk); err != nil {
			return nil, nil, err
		}
		ranges[i] = frame.MeshRange{
			First:  first,
			Count:  mesh.Count,
			Bounds: positionBounds(chunk, stride),
		}
		first += mesh.Count
	}
	return data, ranges, nil
}

func positionBounds(vertices []byte, stride uint32) math.AABB {
	box := math.NewEmptyAABB()
	for off := 0; off+12 <= len(vertices); off += int(stride) {
		box = box.Extend(math.NewVec3(
			math32.Float32frombits(binary.LittleEndian.Uint32(vertices[off:])),
			math32.Float32frombits(binary.LittleEndian.Uint32(vertices[off+4:])),
			math32.Float32frombits(binary.LittleEndian.Uint32(vertices[off+8:])),
		))
	}
	return box
}

// meshTable is the shared, immutable vertex buffer of every scene mesh.
type meshTable struct {
	buffer *vulkan.VulkanBuffer
	ranges []frame.MeshRange
}

func loadMeshes(context *vulkan.VulkanContext, s *scene.Scene) (*meshTable, error) {
	data, ranges, err := packMeshes(s, &loaders.BinaryLoader{})
	if err != nil {
		return nil, err
	}
	table := &meshTable{ranges: ranges}
	if len(data) == 0 {
		return table, nil
	}

	table.buffer, err = vulkan.BufferCreate(context, uint64(len(data)),
		metadata.RENDERBUFFER_TYPE_VERTEX.Usage(),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), false)
	if err != nil {
		return nil, err
	}
	if err := vulkan.BufferUploadBlocking(context, table.buffer, data); err != nil {
		table.buffer.Destroy()
		return nil, err
	}
	core.LogInfo("uploaded %d meshes, %d vertices", len(ranges), s.VerticesCount())
	return table, nil
}

// vertices is nil when the scene has no vertices at all.
func (t *meshTable) vertices() frame.Buffer {
	if t.buffer == nil {
		return nil
	}
	return t.buffer
}

func (t *meshTable) destroy() {
	if t.buffer != nil {
		t.buffer.Destroy()
		t.buffer = nil
	}
}
