package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenecore/internal/core/ecs/schema"
)

func TestLWWCreateOrReplaceLocalFlushIsDirtyOnce(t *testing.T) {
	clock := &Clock{}
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(600, 0)

	require.NoError(t, def.CreateOrReplace(entity, "alice", clock))
	value, ok := def.Get(entity)
	require.True(t, ok)
	assert.Equal(t, "alice", value)

	updates := def.Flush()
	require.Len(t, updates, 1)
	assert.Equal(t, UpdatePut, updates[0].Kind)
	assert.Empty(t, def.Flush(), "second flush should find nothing dirty")
}

func TestLWWApplyPutNewerTimestampAlwaysWins(t *testing.T) {
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(601, 0)

	_, changed, err := def.ApplyPut(entity, 5, serializeString(t, "first"))
	require.NoError(t, err)
	assert.True(t, changed)

	corrective, changed, err := def.ApplyPut(entity, 10, serializeString(t, "second"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, corrective)

	raw, ok := def.Get(entity)
	require.True(t, ok)
	assert.Equal(t, "second", raw)
}

func TestLWWApplyPutOlderTimestampIsRejectedWithCorrective(t *testing.T) {
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(602, 0)

	_, changed, err := def.ApplyPut(entity, 10, []byte("current"))
	require.NoError(t, err)
	require.True(t, changed)

	corrective, changed, err := def.ApplyPut(entity, 5, []byte("stale"))
	require.NoError(t, err)
	assert.False(t, changed)
	require.NotNil(t, corrective)
	assert.Equal(t, UpdatePut, corrective.Kind)
	assert.Equal(t, []byte("current"), corrective.Payload)
}

func TestLWWEqualTimestampLexicographicTiebreak(t *testing.T) {
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(603, 0)

	_, _, err := def.ApplyPut(entity, 1, []byte("aaa"))
	require.NoError(t, err)

	corrective, changed, err := def.ApplyPut(entity, 1, []byte("zzz"))
	require.NoError(t, err)
	assert.True(t, changed, "lexicographically greater payload should win the tie")
	assert.Nil(t, corrective)

	_, changed, err = def.ApplyPut(entity, 1, []byte("bbb"))
	require.NoError(t, err)
	assert.False(t, changed, "lexicographically smaller payload should lose the tie")
}

func TestLWWDeleteLosesTieAgainstNonEmptyPut(t *testing.T) {
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(604, 0)

	_, _, err := def.ApplyPut(entity, 1, []byte("value"))
	require.NoError(t, err)

	_, changed, err := def.ApplyDelete(entity, 1)
	require.NoError(t, err)
	assert.False(t, changed, "DELETE at equal timestamp must not beat a non-empty PUT")
	assert.True(t, def.Has(entity))
}

func TestLWWIdenticalPayloadAtEqualTimestampIsNoop(t *testing.T) {
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(605, 0)

	_, _, err := def.ApplyPut(entity, 1, []byte("same"))
	require.NoError(t, err)

	corrective, changed, err := def.ApplyPut(entity, 1, []byte("same"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, corrective)
}

func TestLWWRemoveEntityClearsStorage(t *testing.T) {
	clock := &Clock{}
	def := NewLWW("test::Name", 1, schema.String)
	entity := NewEntityID(606, 0)
	require.NoError(t, def.CreateOrReplace(entity, "gone", clock))

	def.RemoveEntity(entity)
	_, ok := def.Get(entity)
	assert.False(t, ok)
}
