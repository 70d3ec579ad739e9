package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenecore/internal/core/ecs/buffer"
	"scenecore/internal/core/ecs/schema"
)

func lengthTimestamp(s string) uint64 { return uint64(len(s)) }

func TestGSetAddValueOrdersByTimestamp(t *testing.T) {
	def := NewGSet("test::Log", 2, schema.String, 0, lengthTimestamp)
	entity := NewEntityID(700, 0)

	require.NoError(t, def.AddValue(entity, "a"))
	require.NoError(t, def.AddValue(entity, "bb"))
	require.NoError(t, def.AddValue(entity, "ccc"))

	assert.Equal(t, []string{"a", "bb", "ccc"}, def.All(entity))
}

func TestGSetAddValueOrdersByValueContentNotInsertionOrder(t *testing.T) {
	type logEntry struct {
		T   uint32
		Msg string
	}
	entrySchema := schema.Map(
		func() logEntry { return logEntry{} },
		schema.Field[logEntry]{
			Name:      "t",
			Serialize: func(v logEntry, b *buffer.Buffer) error { b.WriteU32(v.T); return nil },
			Merge: func(dst *logEntry, b *buffer.Buffer) error {
				v, err := b.ReadU32()
				dst.T = v
				return err
			},
		},
		schema.Field[logEntry]{
			Name:      "msg",
			Serialize: func(v logEntry, b *buffer.Buffer) error { b.WriteString(v.Msg); return nil },
			Merge: func(dst *logEntry, b *buffer.Buffer) error {
				v, err := b.ReadString()
				dst.Msg = v
				return err
			},
		},
	)
	def := NewGSet("test::TimedLog", 3, entrySchema, 0, func(v logEntry) uint64 { return uint64(v.T) })
	entity := NewEntityID(704, 0)

	// Appended out of insertion order (t=10, t=30, t=20); ordering must
	// come from each value's own t field, not the order they were added.
	require.NoError(t, def.AddValue(entity, logEntry{T: 10, Msg: "first"}))
	require.NoError(t, def.AddValue(entity, logEntry{T: 30, Msg: "third"}))
	require.NoError(t, def.AddValue(entity, logEntry{T: 20, Msg: "second"}))

	got := def.All(entity)
	require.Len(t, got, 3)
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{got[0].T, got[1].T, got[2].T})
}

func TestGSetEvictsOldestBeyondMaxElements(t *testing.T) {
	def := NewGSet("test::Log", 2, schema.String, 2, lengthTimestamp)
	entity := NewEntityID(701, 0)

	require.NoError(t, def.AddValue(entity, "a"))
	require.NoError(t, def.AddValue(entity, "bb"))
	require.NoError(t, def.AddValue(entity, "ccc"))

	assert.Equal(t, []string{"bb", "ccc"}, def.All(entity))
}

func TestGSetApplyAppendAlwaysAccepted(t *testing.T) {
	def := NewGSet("test::Log", 2, schema.String, 0, lengthTimestamp)
	entity := NewEntityID(702, 0)

	raw := serializeString(t, "late-but-accepted")
	require.NoError(t, def.ApplyAppend(entity, 1, raw))
	assert.Equal(t, []string{"late-but-accepted"}, def.All(entity))
}

func TestGSetApplyAppendOrdersByDecodedValueNotWireTimestamp(t *testing.T) {
	def := NewGSet("test::Log", 2, schema.String, 0, lengthTimestamp)
	entity := NewEntityID(705, 0)

	// Wire timestamps arrive in descending order, but the sort key must
	// come from the decoded value's own content (its length here), which
	// ascends: "a" < "bb" < "ccc".
	require.NoError(t, def.ApplyAppend(entity, 300, serializeString(t, "ccc")))
	require.NoError(t, def.ApplyAppend(entity, 200, serializeString(t, "bb")))
	require.NoError(t, def.ApplyAppend(entity, 100, serializeString(t, "a")))

	assert.Equal(t, []string{"a", "bb", "ccc"}, def.All(entity))
}

func TestGSetFlushDrainsPendingOnce(t *testing.T) {
	def := NewGSet("test::Log", 2, schema.String, 0, lengthTimestamp)
	entity := NewEntityID(703, 0)
	require.NoError(t, def.AddValue(entity, "x"))

	updates := def.Flush()
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateAppend, updates[0].Kind)
	assert.Empty(t, def.Flush())
}

func serializeString(t *testing.T, v string) []byte {
	t.Helper()
	buf := buffer.New()
	require.NoError(t, schema.String.Serialize(v, buf))
	return buf.Bytes()
}
