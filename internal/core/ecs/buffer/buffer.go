// Package buffer implements the growable little-endian byte buffer used
// throughout the CRDT wire protocol and schema (de)serializers.
package buffer

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrOutOfBounds is returned when a read would advance past the write
// cursor. It is always fatal to the stream being read.
var ErrOutOfBounds = errors.New("buffer: read out of bounds")

const growQuantum = 1024

// Buffer is a resizable byte array with independent read and write
// cursors. All multi-byte scalars are little-endian.
type Buffer struct {
	data  []byte
	read  int
	write int
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// FromBytes wraps an existing slice for reading; the write cursor starts
// at len(b) so the whole slice is readable and further writes append.
func FromBytes(b []byte) *Buffer {
	data := make([]byte, len(b))
	copy(data, b)
	return &Buffer{data: data, write: len(b)}
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return b.write }

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int { return b.write - b.read }

// Bytes returns the written portion of the buffer. The caller must not
// mutate the returned slice.
func (b *Buffer) Bytes() []byte { return b.data[:b.write] }

// ResetRead moves the read cursor back to the start without touching
// written data.
func (b *Buffer) ResetRead() { b.read = 0 }

// grow ensures the backing array can hold at least needed bytes, using
// the spec's ceil((max(current,needed)+1024)/1024)*1024 policy.
func (b *Buffer) grow(needed int) {
	if needed <= len(b.data) {
		return
	}
	base := needed
	if len(b.data) > base {
		base = len(b.data)
	}
	capacity := ((base + growQuantum + growQuantum - 1) / growQuantum) * growQuantum
	next := make([]byte, capacity)
	copy(next, b.data[:b.write])
	b.data = next
}

func (b *Buffer) ensureWrite(n int) {
	b.grow(b.write + n)
}

func (b *Buffer) checkRead(n int) error {
	if b.read+n > b.write {
		return ErrOutOfBounds
	}
	return nil
}

// WriteU8 appends a single byte.
func (b *Buffer) WriteU8(v uint8) {
	b.ensureWrite(1)
	b.data[b.write] = v
	b.write++
}

// ReadU8 reads a single byte.
func (b *Buffer) ReadU8() (uint8, error) {
	if err := b.checkRead(1); err != nil {
		return 0, err
	}
	v := b.data[b.read]
	b.read++
	return v, nil
}

// WriteU16 appends a little-endian uint16.
func (b *Buffer) WriteU16(v uint16) {
	b.ensureWrite(2)
	binary.LittleEndian.PutUint16(b.data[b.write:], v)
	b.write += 2
}

// ReadU16 reads a little-endian uint16.
func (b *Buffer) ReadU16() (uint16, error) {
	if err := b.checkRead(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.data[b.read:])
	b.read += 2
	return v, nil
}

// WriteU32 appends a little-endian uint32.
func (b *Buffer) WriteU32(v uint32) {
	b.ensureWrite(4)
	binary.LittleEndian.PutUint32(b.data[b.write:], v)
	b.write += 4
}

// ReadU32 reads a little-endian uint32.
func (b *Buffer) ReadU32() (uint32, error) {
	if err := b.checkRead(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.data[b.read:])
	b.read += 4
	return v, nil
}

// WriteU64 appends a little-endian uint64.
func (b *Buffer) WriteU64(v uint64) {
	b.ensureWrite(8)
	binary.LittleEndian.PutUint64(b.data[b.write:], v)
	b.write += 8
}

// ReadU64 reads a little-endian uint64.
func (b *Buffer) ReadU64() (uint64, error) {
	if err := b.checkRead(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(b.data[b.read:])
	b.read += 8
	return v, nil
}

// WriteI8 appends a signed byte.
func (b *Buffer) WriteI8(v int8) { b.WriteU8(uint8(v)) }

// ReadI8 reads a signed byte.
func (b *Buffer) ReadI8() (int8, error) {
	v, err := b.ReadU8()
	return int8(v), err
}

// WriteI16 appends a little-endian int16.
func (b *Buffer) WriteI16(v int16) { b.WriteU16(uint16(v)) }

// ReadI16 reads a little-endian int16.
func (b *Buffer) ReadI16() (int16, error) {
	v, err := b.ReadU16()
	return int16(v), err
}

// WriteI32 appends a little-endian int32.
func (b *Buffer) WriteI32(v int32) { b.WriteU32(uint32(v)) }

// ReadI32 reads a little-endian int32.
func (b *Buffer) ReadI32() (int32, error) {
	v, err := b.ReadU32()
	return int32(v), err
}

// WriteI64 appends a little-endian int64.
func (b *Buffer) WriteI64(v int64) { b.WriteU64(uint64(v)) }

// ReadI64 reads a little-endian int64.
func (b *Buffer) ReadI64() (int64, error) {
	v, err := b.ReadU64()
	return int64(v), err
}

// WriteF32 appends a little-endian IEEE-754 float32.
func (b *Buffer) WriteF32(v float32) { b.WriteU32(math.Float32bits(v)) }

// ReadF32 reads a little-endian IEEE-754 float32.
func (b *Buffer) ReadF32() (float32, error) {
	v, err := b.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// WriteF64 appends a little-endian IEEE-754 float64.
func (b *Buffer) WriteF64(v float64) { b.WriteU64(math.Float64bits(v)) }

// ReadF64 reads a little-endian IEEE-754 float64.
func (b *Buffer) ReadF64() (float64, error) {
	v, err := b.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// WriteBool appends a single byte, 1 for true.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteU8(1)
	} else {
		b.WriteU8(0)
	}
}

// ReadBool reads a single byte and reports whether it was non-zero.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadU8()
	return v != 0, err
}

// WriteBytes appends a u32 length prefix followed by raw bytes.
func (b *Buffer) WriteBytes(v []byte) {
	b.WriteU32(uint32(len(v)))
	b.ensureWrite(len(v))
	copy(b.data[b.write:], v)
	b.write += len(v)
}

// ReadBytes reads a u32-length-prefixed byte slice. The returned slice is
// a copy, safe to retain past the buffer's lifetime.
func (b *Buffer) ReadBytes() ([]byte, error) {
	n, err := b.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := b.checkRead(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.data[b.read:b.read+int(n)])
	b.read += int(n)
	return out, nil
}

// WriteString appends a u32 byte-length prefix followed by UTF-8 bytes.
func (b *Buffer) WriteString(v string) {
	b.WriteBytes([]byte(v))
}

// ReadString reads a u32-length-prefixed UTF-8 string.
func (b *Buffer) ReadString() (string, error) {
	raw, err := b.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// PeekRemaining returns the unread tail of the buffer without advancing
// the read cursor. Used by the wire codec to validate a message's
// declared length before consuming it.
func (b *Buffer) PeekRemaining() []byte {
	return b.data[b.read:b.write]
}

// Advance moves the read cursor forward by n bytes without interpreting
// them, used to skip unknown wire message types.
func (b *Buffer) Advance(n int) error {
	if err := b.checkRead(n); err != nil {
		return err
	}
	b.read += n
	return nil
}

// WriteRaw appends bytes with no length prefix.
func (b *Buffer) WriteRaw(v []byte) {
	b.ensureWrite(len(v))
	copy(b.data[b.write:], v)
	b.write += len(v)
}

// ReadRaw reads exactly n unprefixed bytes.
func (b *Buffer) ReadRaw(n int) ([]byte, error) {
	if err := b.checkRead(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.data[b.read:b.read+n])
	b.read += n
	return out, nil
}
