package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenecore/internal/core/ecs/buffer"
)

func roundTrip[T any](t *testing.T, s Schema[T], value T) T {
	t.Helper()
	buf := buffer.New()
	require.NoError(t, s.Serialize(value, buf))
	got, err := s.Deserialize(buf)
	require.NoError(t, err)
	return got
}

func TestPrimitiveRoundTrip(t *testing.T) {
	assert.Equal(t, uint32(42), roundTrip(t, U32, uint32(42)))
	assert.Equal(t, "hi there", roundTrip(t, String, "hi there"))
	assert.Equal(t, float32(1.5), roundTrip(t, F32, float32(1.5)))
}

func TestOptionalRoundTrip(t *testing.T) {
	opt := Optional(U32)

	var nilPtr *uint32
	assert.Nil(t, roundTrip(t, opt, nilPtr))

	v := uint32(7)
	got := roundTrip(t, opt, &v)
	require.NotNil(t, got)
	assert.Equal(t, uint32(7), *got)
}

func TestArrayRoundTrip(t *testing.T) {
	arr := Array(U32)
	got := roundTrip(t, arr, []uint32{1, 2, 3})
	if diff := cmp.Diff([]uint32{1, 2, 3}, got); diff != "" {
		t.Fatalf("array round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumRejectsUnknownMember(t *testing.T) {
	type Kind uint32
	const (
		KindA Kind = iota
		KindB
	)
	e := NewEnum(KindA, KindB)

	buf := buffer.New()
	assert.NoError(t, e.Serialize(KindA, buf))

	badBuf := buffer.New()
	badBuf.WriteU32(99)
	_, err := e.Deserialize(badBuf)
	assert.Error(t, err)
}

func TestStringEnumRoundTrip(t *testing.T) {
	e := NewStringEnum("idle", "walking", "running")
	got := roundTrip(t, Schema[string](e), "walking")
	assert.Equal(t, "walking", got)

	buf := buffer.New()
	assert.Error(t, e.Serialize("sprinting", buf))
}

type point struct {
	X, Y int32
}

func TestMapSchemaFieldOrderRoundTrip(t *testing.T) {
	pointSchema := Map(
		func() point { return point{} },
		Field[point]{
			Name:      "x",
			Serialize: func(p point, b *buffer.Buffer) error { b.WriteI32(p.X); return nil },
			Merge: func(p *point, b *buffer.Buffer) error {
				v, err := b.ReadI32()
				p.X = v
				return err
			},
		},
		Field[point]{
			Name:      "y",
			Serialize: func(p point, b *buffer.Buffer) error { b.WriteI32(p.Y); return nil },
			Merge: func(p *point, b *buffer.Buffer) error {
				v, err := b.ReadI32()
				p.Y = v
				return err
			},
		},
	)

	got := roundTrip(t, pointSchema, point{X: -3, Y: 9})
	assert.Equal(t, point{X: -3, Y: 9}, got)
}
