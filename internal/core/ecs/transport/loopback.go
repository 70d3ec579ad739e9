package transport

import (
	"context"

	"scenecore/internal/core/ecs/wire"
)

// Channel is an in-memory Transport connecting two engines without a
// socket, used by cmd/runtime's demo wiring and by package tests.
type Channel struct {
	onMessage func(context.Context, []wire.Message) error
}

// NewChannel returns a Channel whose Send calls onMessage directly;
// onMessage is typically the peer engine's Enqueue method, so delivery
// only queues the batch for merge at the start of the peer's next tick
// rather than merging it immediately (spec §4.G/§5: no merges mid-tick).
func NewChannel(onMessage func(context.Context, []wire.Message) error) *Channel {
	return &Channel{onMessage: onMessage}
}

// Send implements Transport by handing messages to the channel's peer
// synchronously; the peer itself decides whether that means an
// immediate merge or a queued one.
func (c *Channel) Send(ctx context.Context, messages []wire.Message) error {
	return c.onMessage(ctx, messages)
}
