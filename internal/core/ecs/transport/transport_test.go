package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenecore/internal/core/ecs"
	"scenecore/internal/core/ecs/wire"
)

type recordingTransport struct {
	received [][]wire.Message
}

func (r *recordingTransport) Send(_ context.Context, messages []wire.Message) error {
	r.received = append(r.received, messages)
	return nil
}

func TestBroadcastExcludesSourceTransport(t *testing.T) {
	mux := New()
	a := &recordingTransport{}
	b := &recordingTransport{}
	idA := mux.Register(a, nil)
	_ = mux.Register(b, nil)

	msg := []wire.Message{{Type: wire.DeleteEntity, Entity: ecs.NewEntityID(1, 0)}}
	require.NoError(t, mux.Broadcast(context.Background(), msg, idA))

	assert.Empty(t, a.received, "source transport must not receive its own broadcast")
	require.Len(t, b.received, 1)
}

func TestRendererFilterDropsHighComponentIDs(t *testing.T) {
	mux := New()
	renderer := &recordingTransport{}
	mux.Register(renderer, RendererFilter)

	messages := []wire.Message{
		{Type: wire.PutComponent, Component: 1, Entity: ecs.NewEntityID(1, 0)},
		{Type: wire.PutComponent, Component: RendererComponentCeiling + 5, Entity: ecs.NewEntityID(1, 0)},
	}
	require.NoError(t, mux.Broadcast(context.Background(), messages, ""))

	require.Len(t, renderer.received, 1)
	assert.Len(t, renderer.received[0], 1)
	assert.Equal(t, uint32(1), renderer.received[0][0].Component)
}

func TestSendToDeliversOnlyToTarget(t *testing.T) {
	mux := New()
	a := &recordingTransport{}
	b := &recordingTransport{}
	idA := mux.Register(a, nil)
	mux.Register(b, nil)

	msg := []wire.Message{{Type: wire.DeleteEntity, Entity: ecs.NewEntityID(2, 0)}}
	require.NoError(t, mux.SendTo(context.Background(), idA, msg))

	require.Len(t, a.received, 1)
	assert.Empty(t, b.received)
}
