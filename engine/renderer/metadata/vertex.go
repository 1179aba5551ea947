package metadata

import (
	vk "github.com/goki/vulkan"
)

/**
 * @brief Vertex layout used by the lines pass: a position and an 8-bit RGBA color.
 */
type PosColVertex struct {
	Position [3]float32
	Color    [4]uint8
}

const PosColVertexSize uint32 = 16

/**
 * @brief Vertex layout used by the objects pass and by scene mesh sources.
 */
type PosNorTanTexVertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32
	TexCoord [2]float32
}

const PosNorTanTexVertexSize uint32 = 48

/**
 * @brief Describes the vertex input of a graphics pipeline.
 */
type VertexLayout struct {
	Stride     uint32
	Attributes []vk.VertexInputAttributeDescription
}

func (l *VertexLayout) Binding() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    l.Stride,
		InputRate: vk.VertexInputRateVertex,
	}
}

func PosColLayout() *VertexLayout {
	return &VertexLayout{
		Stride: PosColVertexSize,
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Binding: 0, Format: vk.FormatR8g8b8a8Unorm, Offset: 12},
		},
	}
}

func PosNorTanTexLayout() *VertexLayout {
	return &VertexLayout{
		Stride: PosNorTanTexVertexSize,
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
			{Location: 2, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: 24},
			{Location: 3, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 40},
		},
	}
}
