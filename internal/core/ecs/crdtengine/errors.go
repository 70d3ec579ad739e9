package crdtengine

import (
	"fmt"

	"scenecore/internal/core/ecs/wire"
)

// mergeError describes an inbound message that could not be merged. It
// is always recoverable: the message is simply dropped and the tick
// continues.
type mergeError struct {
	msg    wire.Message
	reason string
}

func newMergeError(msg wire.Message, reason string) *mergeError {
	return &mergeError{msg: msg, reason: reason}
}

func (e *mergeError) Error() string {
	return fmt.Sprintf("crdtengine: dropping message type=%d entity=%d component=%d: %s", e.msg.Type, e.msg.Entity, e.msg.Component, e.reason)
}
