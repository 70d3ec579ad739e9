package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 5, Z: 6}

	assert.Equal(t, Vec3{X: 5, Y: 7, Z: 9}, a.Add(b))
	assert.Equal(t, Vec3{X: -3, Y: -3, Z: -3}, a.Sub(b))
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 6}, a.Scale(2))
	assert.Equal(t, float32(32), a.Dot(b))
}

func TestQuatNormalizeAndIdentityMul(t *testing.T) {
	q := Quat{X: 0, Y: 0, Z: 0, W: 2}.Normalize()
	assert.InDelta(t, 1.0, float64(q.W), 1e-6)

	composed := IdentityQuat.Mul(IdentityQuat)
	assert.Equal(t, IdentityQuat, composed)
}

func TestComposeIdentityIsIdentityMatrix(t *testing.T) {
	m := Compose(Zero3, IdentityQuat, One3)
	assert.Equal(t, IdentityMatrix4(), m)
}
