// Package mathx provides the pure value types used by component payloads:
// vectors, quaternions, a column-major 4x4 matrix, and RGBA color. These
// are plain structs with no engine-owned state; the design-notes section
// of the spec singles out lazy "is identity"/dirty-flag caches on matrix
// types as a pattern to avoid, so Matrix4 recomputes rather than caching.
package mathx

import "math"

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns the component-wise sum.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the component-wise difference.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Zero3 is the additive identity vector.
var Zero3 = Vec3{0, 0, 0}

// One3 is the multiplicative identity scale vector.
var One3 = Vec3{1, 1, 1}

// Quat is a quaternion in (x, y, z, w) order, matching the wire layout
// used by the Transform rotation field.
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat is the identity rotation.
var IdentityQuat = Quat{0, 0, 0, 1}

// Normalize returns q scaled to unit length; the zero quaternion is
// returned unchanged to avoid division by zero.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length == 0 {
		return q
	}
	return Quat{q.X / length, q.Y / length, q.Z / length, q.W / length}
}

// Mul composes two rotations, applying o first then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Matrix4 is a column-major 4x4 transformation matrix.
type Matrix4 [16]float32

// IdentityMatrix4 returns the 4x4 identity matrix.
func IdentityMatrix4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Compose builds a TRS matrix from translation, rotation, and scale —
// computed fresh every call rather than cached, by design (see package
// doc comment).
func Compose(translation Vec3, rotation Quat, scale Vec3) Matrix4 {
	r := rotation.Normalize()
	xx, yy, zz := r.X*r.X, r.Y*r.Y, r.Z*r.Z
	xy, xz, yz := r.X*r.Y, r.X*r.Z, r.Y*r.Z
	wx, wy, wz := r.W*r.X, r.W*r.Y, r.W*r.Z

	return Matrix4{
		(1 - 2*(yy+zz)) * scale.X, (2 * (xy + wz)) * scale.X, (2 * (xz - wy)) * scale.X, 0,
		(2 * (xy - wz)) * scale.Y, (1 - 2*(xx+zz)) * scale.Y, (2 * (yz + wx)) * scale.Y, 0,
		(2 * (xz + wy)) * scale.Z, (2 * (yz - wx)) * scale.Z, (1 - 2*(xx+yy)) * scale.Z, 0,
		translation.X, translation.Y, translation.Z, 1,
	}
}

// Color4 is an RGBA color with float32 channels in [0, 1].
type Color4 struct {
	R, G, B, A float32
}

// White4 is opaque white.
var White4 = Color4{1, 1, 1, 1}
