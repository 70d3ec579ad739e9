package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickRunsSystemsInPriorityOrder(t *testing.T) {
	s := New()
	var order []string

	require.NoError(t, s.Register("low", 1, func(float32) { order = append(order, "low") }))
	require.NoError(t, s.Register("high", 100, func(float32) { order = append(order, "high") }))
	require.NoError(t, s.Register("input", InputSystemPriority, func(float32) { order = append(order, "input") }))

	s.Tick(0.016)

	assert.Equal(t, []string{"input", "high", "low"}, order)
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	s := New()
	require.NoError(t, s.Register("movement", 1, func(float32) {}))

	err := s.Register("movement", 2, func(float32) {})
	assert.Error(t, err)
}

func TestEnqueueDrainsBeforeSystemsEachTick(t *testing.T) {
	s := New()
	var order []string
	require.NoError(t, s.Register("system", 1, func(float32) { order = append(order, "system") }))

	s.Enqueue(func() { order = append(order, "task") })
	s.Tick(0)

	assert.Equal(t, []string{"task", "system"}, order)

	order = nil
	s.Tick(0)
	assert.Equal(t, []string{"system"}, order, "one-shot tasks must not repeat on the next tick")
}
