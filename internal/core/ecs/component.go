package ecs

import "sync"

// Clock is a per-engine Lamport clock handing out strictly increasing
// timestamps for locally originated component writes (spec §4.D).
type Clock struct {
	mu    sync.Mutex
	value uint64
}

// Next returns the next Lamport timestamp, observing an optional
// incoming timestamp so the local clock never falls behind a remote
// peer's (standard Lamport-clock advance rule).
func (c *Clock) Next(observed uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if observed > c.value {
		c.value = observed
	}
	c.value++
	return c.value
}

// UpdateKind distinguishes the three outbound update shapes a component
// definition can produce.
type UpdateKind int

const (
	// UpdatePut carries a live LWW value.
	UpdatePut UpdateKind = iota
	// UpdateDelete is an LWW tombstone (empty payload by convention).
	UpdateDelete
	// UpdateAppend carries one GSet element.
	UpdateAppend
)

// OutboundUpdate is one pending change a component definition wants
// flushed onto the wire.
type OutboundUpdate struct {
	Entity    EntityID
	Kind      UpdateKind
	Payload   []byte
	Timestamp uint64
}

// ComponentDefinition is the non-generic surface the registry and CRDT
// engine operate against; LWWComponentDefinition[T] and
// GSetComponentDefinition[T] are its two implementations.
type ComponentDefinition interface {
	Name() string
	ID() uint32
	Kind() ComponentType

	// ApplyPut merges an inbound PUT_COMPONENT message. It returns a
	// corrective update to re-send to the message's source when the
	// local state disagreed with and overrode the incoming value.
	ApplyPut(entity EntityID, timestamp uint64, payload []byte) (corrective *OutboundUpdate, changed bool, err error)

	// ApplyDelete merges an inbound DELETE_COMPONENT message, following
	// the same conflict rule as ApplyPut with an empty payload.
	ApplyDelete(entity EntityID, timestamp uint64) (corrective *OutboundUpdate, changed bool, err error)

	// ApplyAppend merges an inbound APPEND_VALUE message. GSet inserts
	// are always accepted; there is no corrective path.
	ApplyAppend(entity EntityID, timestamp uint64, payload []byte) error

	// Flush drains and returns this definition's pending outbound
	// updates, clearing its dirty/pending state.
	Flush() []OutboundUpdate

	// RemoveEntity discards all storage held for entity.
	RemoveEntity(entity EntityID)
}
