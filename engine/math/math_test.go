package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestWrapAngle(t *testing.T) {
	cases := []float32{0, 1, TwoPi, -0.5, -TwoPi * 3.25, 100, 7 * TwoPi}
	for _, a := range cases {
		w := WrapAngle(a)
		assert.GreaterOrEqual(t, w, float32(0), "angle %v", a)
		assert.Less(t, w, TwoPi, "angle %v", a)
		assert.InDelta(t, math32.Sin(a), math32.Sin(w), 1e-3, "angle %v", a)
	}
	assert.InDelta(t, TwoPi-0.5, WrapAngle(-0.5), 1e-5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 1, 3))
	assert.Equal(t, float32(0.5), Clamp(float32(0.1), 0.5, 1))
	assert.Equal(t, uint32(7), Clamp(uint32(7), 1, 9))
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(DegToRad(60), 1, 0.1, 1000)

	near := p.Mul4x1(Vec4{0, 0, -0.1, 1})
	far := p.Mul4x1(Vec4{0, 0, -1000, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)

	up := p.Mul4x1(Vec4{0, 1, -1, 1})
	assert.Less(t, up.Y()/up.W(), float32(0), "clip y points down")
}

func TestTRSOrder(t *testing.T) {
	m := TRS(NewVec3(1, 2, 3), NewQuatIdentity(), NewVec3(2, 2, 2))
	p := TransformPoint(m, NewVec3(1, 0, 0))
	assert.InDeltaSlice(t, []float32{3, 2, 3}, p[:], 1e-6)
}

func TestNormalMatrixOfUniformScale(t *testing.T) {
	m := TRS(NewVec3(5, 0, 0), NewQuatIdentity(), NewVec3(2, 2, 2))
	n := NormalMatrix(m)
	v := n.Mul4x1(Vec4{0, 0, 1, 0})
	assert.InDelta(t, 0.5, v.Z(), 1e-6)
	assert.InDelta(t, 0, v.X(), 1e-6)
}

func TestAABBTransformAndFrustum(t *testing.T) {
	box := NewEmptyAABB().Extend(NewVec3(-1, -1, -1)).Extend(NewVec3(1, 1, 1))
	assert.False(t, box.IsEmpty())
	assert.True(t, NewEmptyAABB().IsEmpty())

	moved := box.Transform(TRS(NewVec3(10, 0, 0), NewQuatIdentity(), NewVec3(1, 1, 1)))
	assert.InDeltaSlice(t, []float32{9, -1, -1}, moved.Min[:], 1e-6)
	assert.InDeltaSlice(t, []float32{11, 1, 1}, moved.Max[:], 1e-6)
	center := moved.Center()
	assert.InDeltaSlice(t, []float32{10, 0, 0}, center[:], 1e-6)

	clip := Perspective(DegToRad(60), 1, 0.1, 100).Mul4(LookAt(NewVec3(0, 0, 10), NewVec3(0, 0, 0), NewVec3(0, 1, 0)))
	f := NewFrustum(clip)
	assert.True(t, f.Intersects(box))
	assert.False(t, f.Intersects(box.Transform(TRS(NewVec3(0, 0, 50), NewQuatIdentity(), NewVec3(1, 1, 1)))), "behind the camera")
	assert.False(t, f.Intersects(moved.Transform(TRS(NewVec3(100, 0, 0), NewQuatIdentity(), NewVec3(1, 1, 1)))), "far to the side")
}
