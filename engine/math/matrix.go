package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vectors and matrices are the mathgl types: column-major, column vectors.
type (
	Vec2 = mgl32.Vec2
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
	Mat4 = mgl32.Mat4
	Quat = mgl32.Quat
)

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

func NewMat4Identity() Mat4 {
	return mgl32.Ident4()
}

func NewQuatIdentity() Quat {
	return mgl32.QuatIdent()
}

// NewQuat builds a rotation from its (x, y, z, w) components.
func NewQuat(x, y, z, w float32) Quat {
	return Quat{W: w, V: Vec3{x, y, z}}
}

// QuatRotate is the rotation of angle radians around axis.
func QuatRotate(angle float32, axis Vec3) Quat {
	return mgl32.QuatRotate(angle, axis.Normalize())
}

// Perspective builds a right-handed projection for Vulkan clip space:
// y points down and depth maps [near, far] to [0, 1].
func Perspective(fovy, aspect, near, far float32) Mat4 {
	e := 1.0 / math32.Tan(fovy/2.0)
	return Mat4{
		e / aspect, 0, 0, 0,
		0, -e, 0, 0,
		0, 0, far / (near - far), -1,
		0, 0, (near * far) / (near - far), 0,
	}
}

// LookAt builds the world-to-view matrix for a camera at eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	return mgl32.LookAtV(eye, target, up)
}

// TRS composes translation, rotation and scale as T * R * S.
func TRS(translation Vec3, rotation Quat, scale Vec3) Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix is the inverse-transpose used to carry normals into world space.
// Singular inputs yield the zero matrix.
func NormalMatrix(m Mat4) Mat4 {
	return m.Inv().Transpose()
}

// TransformPoint applies m to p with w = 1 and performs the perspective divide
// when w differs from 1.
func TransformPoint(m Mat4, p Vec3) Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v.W() != 0 && v.W() != 1 {
		return v.Vec3().Mul(1 / v.W())
	}
	return v.Vec3()
}
