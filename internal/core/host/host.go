// Package host declares the contract between the engine and whatever
// embeds it — a host renderer, a test harness, or another scene acting
// as a peer over a loopback transport.
package host

import (
	"context"
	"encoding/json"
)

// Action is one generic host command a scene asks the host to perform,
// identified by ID with an opaque JSON payload (spec §6 sendBatch).
type Action struct {
	ID   string
	Data json.RawMessage
}

// Event is one generic host occurrence fanned out to observers after a
// sendBatch call, identified by ID with an opaque JSON payload.
type Event struct {
	ID   string
	Data json.RawMessage
}

// Host is the surface a scene calls out through to whatever embeds the
// engine (spec §6, External Interfaces).
type Host interface {
	// CRDTSendToRenderer is a request/response call: it hands the
	// renderer an encoded outbound CRDT message batch and returns
	// whatever the renderer sends back (its own encoded batch, or nil if
	// it has nothing to say this tick).
	CRDTSendToRenderer(ctx context.Context, request []byte) (response []byte, err error)

	// CRDTGetState returns the renderer's full initial-state snapshot as
	// a sequence of encoded CRDT message batches, requested once during
	// onStart() and applied before any system runs.
	CRDTGetState(ctx context.Context) ([][]byte, error)

	// SendBatch delivers a batch of generic host actions and returns
	// whatever events the host produced in response, fanned out to
	// Engine.Events observers.
	SendBatch(ctx context.Context, actions []Action) ([]Event, error)
}
