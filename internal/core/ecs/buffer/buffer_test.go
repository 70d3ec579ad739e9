package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripScalars(t *testing.T) {
	b := New()
	b.WriteU8(0xAB)
	b.WriteU16(0x1234)
	b.WriteU32(0xDEADBEEF)
	b.WriteU64(0x0102030405060708)
	b.WriteI32(-42)
	b.WriteF32(3.5)
	b.WriteF64(2.718281828)
	b.WriteBool(true)
	b.WriteString("hello")

	u8, err := b.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := b.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := b.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := b.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	i32, err := b.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i32)

	f32, err := b.ReadF32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)

	f64, err := b.ReadF64()
	require.NoError(t, err)
	assert.Equal(t, 2.718281828, f64)

	flag, err := b.ReadBool()
	require.NoError(t, err)
	assert.True(t, flag)

	s, err := b.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestReadPastEndReturnsErrOutOfBounds(t *testing.T) {
	b := New()
	b.WriteU8(1)
	_, err := b.ReadU8()
	require.NoError(t, err)

	_, err = b.ReadU8()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestGrowQuantum(t *testing.T) {
	b := New()
	for i := 0; i < 2000; i++ {
		b.WriteU8(byte(i))
	}
	assert.Equal(t, 2000, b.Len())
	for i := 0; i < 2000; i++ {
		v, err := b.ReadU8()
		require.NoError(t, err)
		assert.Equal(t, byte(i), v)
	}
}

func TestFromBytesIsReadableCopy(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	b := FromBytes(src)
	src[0] = 0xFF

	v, err := b.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(1), v)
}

func TestAdvanceSkipsUnknownPayload(t *testing.T) {
	b := New()
	b.WriteRaw([]byte{1, 2, 3, 4, 5})
	require.NoError(t, b.Advance(3))
	assert.Equal(t, 2, b.Remaining())
}

func TestWriteBytesRoundTrip(t *testing.T) {
	b := New()
	b.WriteBytes([]byte{9, 8, 7})
	out, err := b.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, out)
}
