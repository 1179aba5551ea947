package math

import "github.com/chewxy/math32"

// AABB is an axis aligned box. The zero value is a degenerate box at the origin;
// use NewEmptyAABB to start accumulating points.
type AABB struct {
	Min Vec3
	Max Vec3
}

func NewEmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Extend grows the box to contain p.
func (b AABB) Extend(p Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corners lists the eight box corners; bit 0 selects x, bit 1 y, bit 2 z.
func (b AABB) Corners() [8]Vec3 {
	var out [8]Vec3
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		out[i] = c
	}
	return out
}

// Transform returns the box enclosing b after the affine transform m.
func (b AABB) Transform(m Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	out := NewEmptyAABB()
	for _, c := range b.Corners() {
		out = out.Extend(m.Mul4x1(c.Vec4(1)).Vec3())
	}
	return out
}

// Frustum holds the six clip planes (a, b, c, d), normals pointing inward.
type Frustum struct {
	Planes [6]Vec4
}

// NewFrustum extracts the planes of a clip-from-world matrix whose depth range is [0, 1].
func NewFrustum(clipFromWorld Mat4) Frustum {
	r0 := clipFromWorld.Row(0)
	r1 := clipFromWorld.Row(1)
	r2 := clipFromWorld.Row(2)
	r3 := clipFromWorld.Row(3)

	f := Frustum{
		Planes: [6]Vec4{
			r3.Add(r0), // left
			r3.Sub(r0), // right
			r3.Add(r1), // bottom
			r3.Sub(r1), // top
			r2,         // near
			r3.Sub(r2), // far
		},
	}
	for i, p := range f.Planes {
		l := p.Vec3().Len()
		if l > 0 {
			f.Planes[i] = p.Mul(1 / l)
		}
	}
	return f
}

// Intersects reports whether any part of b may be inside the frustum.
func (f Frustum) Intersects(b AABB) bool {
	if b.IsEmpty() {
		return false
	}
	for _, p := range f.Planes {
		// farthest corner along the plane normal
		v := b.Min
		for i := 0; i < 3; i++ {
			if p[i] >= 0 {
				v[i] = b.Max[i]
			}
		}
		if p.Vec3().Dot(v)+p.W() < 0 {
			return false
		}
	}
	return true
}
