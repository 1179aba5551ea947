package metadata

import (
	"github.com/spaghettifunk/stratus/engine/math"
)

// CameraUniform is bound at set 0 of the lines pipeline.
type CameraUniform struct {
	ClipFromWorld math.Mat4
}

const CameraUniformSize uint64 = 64

/**
 * @brief Lighting and camera data bound at set 0 of the objects pipeline.
 * Every field is padded to a vec4 to satisfy std140.
 */
type WorldUniform struct {
	SkyDirection   [4]float32
	SkyEnergy      [4]float32
	SunDirection   [4]float32
	SunEnergy      [4]float32
	CameraPosition [4]float32
}

const WorldUniformSize uint64 = 80

func NewWorldUniform(skyDir, skyEnergy, sunDir, sunEnergy, cameraPos math.Vec3) WorldUniform {
	return WorldUniform{
		SkyDirection:   [4]float32(skyDir.Vec4(0)),
		SkyEnergy:      [4]float32(skyEnergy.Vec4(0)),
		SunDirection:   [4]float32(sunDir.Vec4(0)),
		SunEnergy:      [4]float32(sunEnergy.Vec4(0)),
		CameraPosition: [4]float32(cameraPos.Vec4(1)),
	}
}

// Transform is one element of the per-instance storage buffer at set 1.
type Transform struct {
	ClipFromLocal        math.Mat4
	WorldFromLocal       math.Mat4
	WorldFromLocalNormal math.Mat4
}

const TransformSize uint64 = 192

// BackgroundPush is the push constant block of the background pipeline.
type BackgroundPush struct {
	Time float32
}
