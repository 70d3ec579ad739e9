// Package schema implements the typed (de)serializers that turn component
// payload values into ByteBuffer bytes and back. The CRDT core treats the
// resulting bytes as opaque; only schema.Schema[T] implementations know a
// payload's field layout.
package schema

import (
	"fmt"

	"scenecore/internal/core/ecs/buffer"
)

// Schema describes how to serialize, deserialize, default-construct, and
// extend a value of type T. "Extend" turns a partially-populated value
// into a full one and is applied by GSet components when a caller
// appends a value. The built-in schemas fill in no defaults: the scalar,
// string, enum and Map schemas return the value unchanged, and Optional
// and Array apply the inner schema's Extend to each present element.
type Schema[T any] interface {
	Serialize(value T, buf *buffer.Buffer) error
	Deserialize(buf *buffer.Buffer) (T, error)
	Create() T
	Extend(partial T) T
}

// funcSchema adapts four functions into a Schema[T], the pattern used for
// every built-in schema below.
type funcSchema[T any] struct {
	serialize   func(T, *buffer.Buffer) error
	deserialize func(*buffer.Buffer) (T, error)
	create      func() T
	extend      func(T) T
}

func (f funcSchema[T]) Serialize(v T, buf *buffer.Buffer) error { return f.serialize(v, buf) }
func (f funcSchema[T]) Deserialize(buf *buffer.Buffer) (T, error) { return f.deserialize(buf) }
func (f funcSchema[T]) Create() T                                 { return f.create() }
func (f funcSchema[T]) Extend(v T) T {
	if f.extend != nil {
		return f.extend(v)
	}
	return v
}

// Bool is the schema for a single boolean flag.
var Bool Schema[bool] = funcSchema[bool]{
	serialize:   func(v bool, b *buffer.Buffer) error { b.WriteBool(v); return nil },
	deserialize: func(b *buffer.Buffer) (bool, error) { return b.ReadBool() },
	create:      func() bool { return false },
}

// U8 is the schema for an unsigned 8-bit integer.
var U8 Schema[uint8] = funcSchema[uint8]{
	serialize:   func(v uint8, b *buffer.Buffer) error { b.WriteU8(v); return nil },
	deserialize: func(b *buffer.Buffer) (uint8, error) { return b.ReadU8() },
	create:      func() uint8 { return 0 },
}

// U16 is the schema for an unsigned 16-bit integer.
var U16 Schema[uint16] = funcSchema[uint16]{
	serialize:   func(v uint16, b *buffer.Buffer) error { b.WriteU16(v); return nil },
	deserialize: func(b *buffer.Buffer) (uint16, error) { return b.ReadU16() },
	create:      func() uint16 { return 0 },
}

// U32 is the schema for an unsigned 32-bit integer.
var U32 Schema[uint32] = funcSchema[uint32]{
	serialize:   func(v uint32, b *buffer.Buffer) error { b.WriteU32(v); return nil },
	deserialize: func(b *buffer.Buffer) (uint32, error) { return b.ReadU32() },
	create:      func() uint32 { return 0 },
}

// U64 is the schema for an unsigned 64-bit integer.
var U64 Schema[uint64] = funcSchema[uint64]{
	serialize:   func(v uint64, b *buffer.Buffer) error { b.WriteU64(v); return nil },
	deserialize: func(b *buffer.Buffer) (uint64, error) { return b.ReadU64() },
	create:      func() uint64 { return 0 },
}

// I8 is the schema for a signed 8-bit integer.
var I8 Schema[int8] = funcSchema[int8]{
	serialize:   func(v int8, b *buffer.Buffer) error { b.WriteI8(v); return nil },
	deserialize: func(b *buffer.Buffer) (int8, error) { return b.ReadI8() },
	create:      func() int8 { return 0 },
}

// I16 is the schema for a signed 16-bit integer.
var I16 Schema[int16] = funcSchema[int16]{
	serialize:   func(v int16, b *buffer.Buffer) error { b.WriteI16(v); return nil },
	deserialize: func(b *buffer.Buffer) (int16, error) { return b.ReadI16() },
	create:      func() int16 { return 0 },
}

// I32 is the schema for a signed 32-bit integer.
var I32 Schema[int32] = funcSchema[int32]{
	serialize:   func(v int32, b *buffer.Buffer) error { b.WriteI32(v); return nil },
	deserialize: func(b *buffer.Buffer) (int32, error) { return b.ReadI32() },
	create:      func() int32 { return 0 },
}

// I64 is the schema for a signed 64-bit integer.
var I64 Schema[int64] = funcSchema[int64]{
	serialize:   func(v int64, b *buffer.Buffer) error { b.WriteI64(v); return nil },
	deserialize: func(b *buffer.Buffer) (int64, error) { return b.ReadI64() },
	create:      func() int64 { return 0 },
}

// F32 is the schema for a 32-bit float.
var F32 Schema[float32] = funcSchema[float32]{
	serialize:   func(v float32, b *buffer.Buffer) error { b.WriteF32(v); return nil },
	deserialize: func(b *buffer.Buffer) (float32, error) { return b.ReadF32() },
	create:      func() float32 { return 0 },
}

// F64 is the schema for a 64-bit float.
var F64 Schema[float64] = funcSchema[float64]{
	serialize:   func(v float64, b *buffer.Buffer) error { b.WriteF64(v); return nil },
	deserialize: func(b *buffer.Buffer) (float64, error) { return b.ReadF64() },
	create:      func() float64 { return 0 },
}

// String is the schema for a UTF-8 string, length-prefixed by byte count.
var String Schema[string] = funcSchema[string]{
	serialize:   func(v string, b *buffer.Buffer) error { b.WriteString(v); return nil },
	deserialize: func(b *buffer.Buffer) (string, error) { return b.ReadString() },
	create:      func() string { return "" },
}

// EntityRef is the schema for a 32-bit entity id embedded in a payload
// (e.g. Transform.parent).
var EntityRef Schema[uint32] = U32

// Optional builds a schema for *T: a one-byte presence flag followed by
// the inner schema when present.
func Optional[T any](inner Schema[T]) Schema[*T] {
	return funcSchema[*T]{
		serialize: func(v *T, b *buffer.Buffer) error {
			if v == nil {
				b.WriteBool(false)
				return nil
			}
			b.WriteBool(true)
			return inner.Serialize(*v, b)
		},
		deserialize: func(b *buffer.Buffer) (*T, error) {
			present, err := b.ReadBool()
			if err != nil {
				return nil, err
			}
			if !present {
				return nil, nil
			}
			val, err := inner.Deserialize(b)
			if err != nil {
				return nil, err
			}
			return &val, nil
		},
		create: func() *T { return nil },
		extend: func(v *T) *T {
			if v == nil {
				return nil
			}
			extended := inner.Extend(*v)
			return &extended
		},
	}
}

// Array builds a schema for a homogeneous, length-prefixed slice of T.
func Array[T any](elem Schema[T]) Schema[[]T] {
	return funcSchema[[]T]{
		serialize: func(v []T, b *buffer.Buffer) error {
			b.WriteU32(uint32(len(v)))
			for _, item := range v {
				if err := elem.Serialize(item, b); err != nil {
					return err
				}
			}
			return nil
		},
		deserialize: func(b *buffer.Buffer) ([]T, error) {
			n, err := b.ReadU32()
			if err != nil {
				return nil, err
			}
			out := make([]T, 0, n)
			for i := uint32(0); i < n; i++ {
				item, err := elem.Deserialize(b)
				if err != nil {
					return nil, err
				}
				out = append(out, item)
			}
			return out, nil
		},
		create: func() []T { return nil },
		extend: func(v []T) []T {
			out := make([]T, len(v))
			for i, item := range v {
				out[i] = elem.Extend(item)
			}
			return out
		},
	}
}

// EnumSchema validates a closed set of integer-valued members before
// serializing/deserializing them as a uint32.
type EnumSchema[T ~uint32] struct {
	Members map[T]bool
}

// NewEnum builds an EnumSchema validated against the given closed member
// set.
func NewEnum[T ~uint32](members ...T) *EnumSchema[T] {
	set := make(map[T]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return &EnumSchema[T]{Members: set}
}

func (e *EnumSchema[T]) Serialize(v T, b *buffer.Buffer) error {
	if !e.Members[v] {
		return fmt.Errorf("schema: %v is not a member of this enum", v)
	}
	b.WriteU32(uint32(v))
	return nil
}

func (e *EnumSchema[T]) Deserialize(b *buffer.Buffer) (T, error) {
	raw, err := b.ReadU32()
	if err != nil {
		return T(0), err
	}
	v := T(raw)
	if !e.Members[v] {
		return T(0), fmt.Errorf("schema: decoded value %v is not a member of this enum", v)
	}
	return v, nil
}

func (e *EnumSchema[T]) Create() T { return T(0) }
func (e *EnumSchema[T]) Extend(v T) T { return v }

// StringEnumSchema validates a closed set of string-valued members,
// writing/reading them as length-prefixed UTF-8.
type StringEnumSchema struct {
	Members map[string]bool
}

// NewStringEnum builds a StringEnumSchema validated against the given
// closed member set.
func NewStringEnum(members ...string) *StringEnumSchema {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return &StringEnumSchema{Members: set}
}

func (e *StringEnumSchema) Serialize(v string, b *buffer.Buffer) error {
	if !e.Members[v] {
		return fmt.Errorf("schema: %q is not a member of this enum", v)
	}
	b.WriteString(v)
	return nil
}

func (e *StringEnumSchema) Deserialize(b *buffer.Buffer) (string, error) {
	v, err := b.ReadString()
	if err != nil {
		return "", err
	}
	if !e.Members[v] {
		return "", fmt.Errorf("schema: decoded value %q is not a member of this enum", v)
	}
	return v, nil
}

func (e *StringEnumSchema) Create() string   { return "" }
func (e *StringEnumSchema) Extend(v string) string { return v }

// Field describes one entry of a Map schema: a name (for documentation
// and debugging only — wire order is declaration order, not keyed) plus
// get/set accessors projecting the struct field through the buffer.
type Field[S any] struct {
	Name      string
	Serialize func(S, *buffer.Buffer) error
	Merge     func(dst *S, buf *buffer.Buffer) error
}

// Map builds a schema for a fixed-layout struct S from an ordered list of
// fields. Fields are laid out on the wire in declaration order, with no
// field names or tags — exactly the shape spec §4.B describes for the
// map schema.
func Map[S any](create func() S, fields ...Field[S]) Schema[S] {
	return funcSchema[S]{
		serialize: func(v S, b *buffer.Buffer) error {
			for _, f := range fields {
				if err := f.Serialize(v, b); err != nil {
					return fmt.Errorf("schema: field %q: %w", f.Name, err)
				}
			}
			return nil
		},
		deserialize: func(b *buffer.Buffer) (S, error) {
			v := create()
			for _, f := range fields {
				if err := f.Merge(&v, b); err != nil {
					var zero S
					return zero, fmt.Errorf("schema: field %q: %w", f.Name, err)
				}
			}
			return v, nil
		},
		create: create,
		extend: func(v S) S { return v },
	}
}
