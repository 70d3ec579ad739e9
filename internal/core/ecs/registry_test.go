package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenecore/internal/core/ecs/schema"
)

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := NewRegistry(NewContainer())
	require.NoError(t, r.Register(NewLWW("core::Name", 10, schema.String)))

	err := r.Register(NewLWW("core::Name", 11, schema.String))
	assert.Error(t, err)
}

func TestRegistryRejectsColidingID(t *testing.T) {
	r := NewRegistry(NewContainer())
	require.NoError(t, r.Register(NewLWW("core::A", 10, schema.String)))

	err := r.Register(NewLWW("core::B", 10, schema.String))
	assert.Error(t, err)
}

func TestRegistryRejectsRegistrationAfterSeal(t *testing.T) {
	r := NewRegistry(NewContainer())
	r.Seal()

	err := r.Register(NewLWW("core::Late", 12, schema.String))
	assert.Error(t, err)
}

func TestRegistryLookupByNameAndID(t *testing.T) {
	r := NewRegistry(NewContainer())
	def := NewLWW("core::Name", 13, schema.String)
	require.NoError(t, r.Register(def))

	byName, ok := r.ByName("core::Name")
	require.True(t, ok)
	assert.Equal(t, def, byName)

	byID, ok := r.ByID(13)
	require.True(t, ok)
	assert.Equal(t, def, byID)
}

func TestRegistryRemoveEntityPropagatesToEveryDefinition(t *testing.T) {
	r := NewRegistry(NewContainer())
	clock := &Clock{}
	def := NewLWW("core::Name", 14, schema.String)
	require.NoError(t, r.Register(def))

	entity := NewEntityID(800, 0)
	require.NoError(t, def.CreateOrReplace(entity, "temp", clock))

	r.RemoveEntity(entity)
	_, ok := def.Get(entity)
	assert.False(t, ok)
}
