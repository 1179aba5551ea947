package frame

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
)

const gridSteps = 101

// GridLineCount is the number of vertices produced by GridLines.
const GridLineCount = 2 * gridSteps

/**
 * @brief A fan of line segments through the unit square whose end points bob
 * with time, colored by position. Segment i joins a point on the square's
 * border to its mirror image.
 */
func GridLines(time float32) []metadata.PosColVertex {
	out := make([]metadata.PosColVertex, 0, GridLineCount)
	for i := 0; i < gridSteps; i++ {
		x, y := float32(1), float32(1)
		if i < 50 {
			y -= float32(i) / 25.0
		} else {
			x -= float32(i-50) / 25.0
		}
		out = append(out,
			metadata.PosColVertex{
				Position: [3]float32{x, y, 0.1 + math32.Sin(time/20.0)},
				Color:    [4]uint8{unitToByte(x), unitToByte(y), 0xff, 0xff},
			},
			metadata.PosColVertex{
				Position: [3]float32{-x, -y, 0.1 + math32.Cos(time/10.0)},
				Color:    [4]uint8{unitToByte(-x), unitToByte(-y), 0x00, 0xff},
			},
		)
	}
	return out
}

// unitToByte maps [-1, 1] to [0, 255].
func unitToByte(v float32) uint8 {
	return uint8(math.Clamp((v+1)*255.0/2.0, 0, 255))
}

// boxEdges are corner index pairs into AABB.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoundsLines outlines each box with 12 segments.
func BoundsLines(boxes []math.AABB, color [4]uint8) []metadata.PosColVertex {
	out := make([]metadata.PosColVertex, 0, len(boxes)*24)
	for _, b := range boxes {
		if b.IsEmpty() {
			continue
		}
		corners := b.Corners()
		for _, e := range boxEdges {
			out = append(out,
				metadata.PosColVertex{Position: [3]float32(corners[e[0]]), Color: color},
				metadata.PosColVertex{Position: [3]float32(corners[e[1]]), Color: color},
			)
		}
	}
	return out
}
