package metadata

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/stretchr/testify/assert"
)

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, uintptr(PosColVertexSize), unsafe.Sizeof(PosColVertex{}))
	assert.Equal(t, uintptr(PosNorTanTexVertexSize), unsafe.Sizeof(PosNorTanTexVertex{}))
	assert.Equal(t, uintptr(CameraUniformSize), unsafe.Sizeof(CameraUniform{}))
	assert.Equal(t, uintptr(WorldUniformSize), unsafe.Sizeof(WorldUniform{}))
	assert.Equal(t, uintptr(TransformSize), unsafe.Sizeof(Transform{}))
	assert.Equal(t, uintptr(4), unsafe.Sizeof(BackgroundPush{}))
}

func TestVertexLayouts(t *testing.T) {
	pc := PosColLayout()
	assert.Equal(t, PosColVertexSize, pc.Binding().Stride)
	assert.Len(t, pc.Attributes, 2)
	assert.Equal(t, uint32(unsafe.Offsetof(PosColVertex{}.Color)), pc.Attributes[1].Offset)

	pntt := PosNorTanTexLayout()
	assert.Len(t, pntt.Attributes, 4)
	assert.Equal(t, uint32(unsafe.Offsetof(PosNorTanTexVertex{}.Tangent)), pntt.Attributes[2].Offset)
	assert.Equal(t, uint32(unsafe.Offsetof(PosNorTanTexVertex{}.TexCoord)), pntt.Attributes[3].Offset)
}

func TestAsBytes(t *testing.T) {
	assert.Nil(t, AsBytes([]PosColVertex{}))

	verts := []PosColVertex{
		{Position: [3]float32{1, 2, 3}, Color: [4]uint8{0xff, 0x00, 0x80, 0x01}},
		{},
	}
	b := AsBytes(verts)
	assert.Len(t, b, 32)
	assert.Equal(t, []byte{0xff, 0x00, 0x80, 0x01}, b[12:16])

	w := NewWorldUniform(math.NewVec3(0, 0, 1), math.Vec3{}, math.Vec3{}, math.Vec3{}, math.NewVec3(1, 2, 3))
	assert.Len(t, ValueBytes(&w), int(WorldUniformSize))
	assert.Equal(t, [4]float32{1, 2, 3, 1}, w.CameraPosition)
	assert.Equal(t, [4]float32{0, 0, 1, 0}, w.SkyDirection)
}

func TestRenderBufferType(t *testing.T) {
	assert.Equal(t, "storage", RENDERBUFFER_TYPE_STORAGE.String())
	assert.NotZero(t, RENDERBUFFER_TYPE_VERTEX.Usage())
	assert.Equal(t, vk.DescriptorTypeStorageBuffer, RENDERBUFFER_TYPE_STORAGE.DescriptorType())
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, RENDERBUFFER_TYPE_UNIFORM.DescriptorType())
}

func TestDefaultRenderPassConfig(t *testing.T) {
	c := DefaultRenderPassConfig()
	assert.True(t, c.ClearsColour())
	assert.True(t, c.ClearsDepth())
	assert.True(t, c.ClearsStencil())
	assert.Equal(t, [4]float32{0, 1, 0.7, 1}, c.ClearColour)
	assert.Equal(t, uint64(256), GetAligned(200, 256))
}
