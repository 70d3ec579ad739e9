// Package transport multiplexes CRDT message batches across however
// many wire endpoints a running scene has open — typically exactly one
// (the host renderer) plus zero or more peer scenes — applying
// per-transport filtering and loopback suppression on every fan-out.
package transport

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"scenecore/internal/core/ecs/crdtengine"
	"scenecore/internal/core/ecs/wire"
)

// RendererComponentCeiling is the component-id boundary above which a
// component is considered script-private and must never cross into the
// renderer transport (spec §9: hashed ids start at 2048; reserving
// below 2^11 keeps every built-in renderer-visible component out of the
// hashed range).
const RendererComponentCeiling = 1 << 11

// Transport is one wire endpoint: something that can accept a batch of
// encoded messages. Implementations decide their own framing beyond the
// CRDT message codec (a loopback channel, a socket, a shared-memory
// ring with the host renderer).
type Transport interface {
	Send(ctx context.Context, messages []wire.Message) error
}

// Filter decides whether a message may cross a particular transport;
// returning false drops the message for that transport only.
type Filter func(wire.Message) bool

// RendererFilter drops any message whose component id is at or above
// RendererComponentCeiling, keeping script-private components off the
// renderer transport.
func RendererFilter(msg wire.Message) bool {
	return msg.Type == wire.DeleteEntity || msg.Component < RendererComponentCeiling
}

type registration struct {
	id        crdtengine.TransportID
	transport Transport
	filter    Filter
}

// Multiplexer owns every registered transport and fans outbound batches
// out to them concurrently, honoring each transport's filter and never
// echoing a batch back to the transport it originated from.
type Multiplexer struct {
	registrations []registration
	nextID        int
}

// New returns an empty multiplexer.
func New() *Multiplexer {
	return &Multiplexer{}
}

// Register adds a transport with an optional filter (nil admits every
// message) and returns the opaque id used to exclude it from its own
// inbound batch's fan-out.
func (m *Multiplexer) Register(t Transport, filter Filter) crdtengine.TransportID {
	if filter == nil {
		filter = func(wire.Message) bool { return true }
	}
	m.nextID++
	id := crdtengine.TransportID(fmt.Sprintf("transport-%d", m.nextID))
	m.registrations = append(m.registrations, registration{id: id, transport: t, filter: filter})
	return id
}

// Broadcast sends messages to every registered transport except
// exclude (pass "" to exclude none), applying each transport's filter
// and fanning the sends out concurrently via an errgroup, matching the
// teacher's concurrent-worker fan-out style.
func (m *Multiplexer) Broadcast(ctx context.Context, messages []wire.Message, exclude crdtengine.TransportID) error {
	if len(messages) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, reg := range m.registrations {
		if reg.id == exclude {
			continue
		}
		reg := reg
		filtered := filterMessages(messages, reg.filter)
		if len(filtered) == 0 {
			continue
		}
		g.Go(func() error {
			return reg.transport.Send(ctx, filtered)
		})
	}
	return g.Wait()
}

// SendTo delivers messages to exactly one registered transport,
// identified by id, applying its filter. Used for corrective messages
// that must go back only to the transport that triggered them.
func (m *Multiplexer) SendTo(ctx context.Context, id crdtengine.TransportID, messages []wire.Message) error {
	for _, reg := range m.registrations {
		if reg.id != id {
			continue
		}
		filtered := filterMessages(messages, reg.filter)
		if len(filtered) == 0 {
			return nil
		}
		return reg.transport.Send(ctx, filtered)
	}
	return nil
}

func filterMessages(messages []wire.Message, filter Filter) []wire.Message {
	out := make([]wire.Message, 0, len(messages))
	for _, msg := range messages {
		if filter(msg) {
			out = append(out, msg)
		}
	}
	return out
}
