package ecs

import (
	"bytes"
	"sync"

	"scenecore/internal/core/ecs/buffer"
	"scenecore/internal/core/ecs/schema"
)

type lwwEntry struct {
	timestamp uint64
	deleted   bool
	raw       []byte
}

// LWWComponentDefinition stores one Last-Write-Wins value per entity,
// resolved on conflict by Lamport timestamp then lexicographic byte
// compare of the serialized payload, with DELETE represented as an
// empty payload so it always loses ties against a non-empty PUT
// (spec §4.D, decided in the design ledger).
type LWWComponentDefinition[T any] struct {
	name   string
	id     uint32
	schema schema.Schema[T]

	mu     sync.RWMutex
	values map[EntityID]lwwEntry
	dirty  map[EntityID]bool
}

// NewLWW constructs an LWW component definition over values of type T.
func NewLWW[T any](name string, id uint32, sch schema.Schema[T]) *LWWComponentDefinition[T] {
	return &LWWComponentDefinition[T]{
		name:   name,
		id:     id,
		schema: sch,
		values: make(map[EntityID]lwwEntry),
		dirty:  make(map[EntityID]bool),
	}
}

func (d *LWWComponentDefinition[T]) Name() string      { return d.name }
func (d *LWWComponentDefinition[T]) ID() uint32         { return d.id }
func (d *LWWComponentDefinition[T]) Kind() ComponentType { return LWW }

// Create writes value for entity for the first time. It fails with
// CodeComponentExists if entity already has a live value; callers that
// want upsert semantics should use CreateOrReplace.
func (d *LWWComponentDefinition[T]) Create(entity EntityID, value T, clock *Clock) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry, ok := d.values[entity]; ok && !entry.deleted {
		return newComponentError(CodeComponentExists, "component already exists on entity", d.name, entity)
	}
	d.setLocked(entity, value, clock)
	return nil
}

// CreateOrReplace writes value for entity regardless of prior state.
func (d *LWWComponentDefinition[T]) CreateOrReplace(entity EntityID, value T, clock *Clock) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLocked(entity, value, clock)
	return nil
}

func (d *LWWComponentDefinition[T]) setLocked(entity EntityID, value T, clock *Clock) {
	raw := buffer.New()
	// Serialize errors here would mean a programmer-supplied schema is
	// broken for its own type; nothing callers can recover from, so the
	// buffer is simply left short and the corrupt entry surfaces on the
	// next round-trip read instead of panicking mid-mutation.
	_ = d.schema.Serialize(value, raw)
	d.values[entity] = lwwEntry{timestamp: clock.Next(0), raw: raw.Bytes()}
	d.dirty[entity] = true
}

// GetMutable returns the current value for entity plus a setter that
// writes it back with a fresh local timestamp, mirroring the teacher's
// get-then-mutate-then-commit component access pattern.
func (d *LWWComponentDefinition[T]) GetMutable(entity EntityID, clock *Clock) (value T, commit func(T), ok bool) {
	d.mu.RLock()
	entry, present := d.values[entity]
	d.mu.RUnlock()
	if !present || entry.deleted {
		var zero T
		return zero, nil, false
	}
	current, _ := d.schema.Deserialize(buffer.FromBytes(entry.raw))
	return current, func(updated T) { _ = d.CreateOrReplace(entity, updated, clock) }, true
}

// Get returns the current value for entity, if any live value exists.
func (d *LWWComponentDefinition[T]) Get(entity EntityID) (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.values[entity]
	if !ok || entry.deleted {
		var zero T
		return zero, false
	}
	v, err := d.schema.Deserialize(buffer.FromBytes(entry.raw))
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// GetOrNull returns a pointer to the current value, or nil when absent.
func (d *LWWComponentDefinition[T]) GetOrNull(entity EntityID) *T {
	v, ok := d.Get(entity)
	if !ok {
		return nil
	}
	return &v
}

// Has reports whether entity currently has a live value.
func (d *LWWComponentDefinition[T]) Has(entity EntityID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.values[entity]
	return ok && !entry.deleted
}

// DeleteFrom removes entity's value, recording a local tombstone.
func (d *LWWComponentDefinition[T]) DeleteFrom(entity EntityID, clock *Clock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[entity] = lwwEntry{timestamp: clock.Next(0), deleted: true, raw: nil}
	d.dirty[entity] = true
}

// All returns every entity currently holding a live value, newest
// iteration order unspecified (map order), matching the teacher's
// iterator-over-storage component access pattern.
func (d *LWWComponentDefinition[T]) All() []EntityID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]EntityID, 0, len(d.values))
	for e, entry := range d.values {
		if !entry.deleted {
			out = append(out, e)
		}
	}
	return out
}

func (d *LWWComponentDefinition[T]) ApplyPut(entity EntityID, timestamp uint64, payload []byte) (*OutboundUpdate, bool, error) {
	return d.merge(entity, timestamp, payload, false)
}

func (d *LWWComponentDefinition[T]) ApplyDelete(entity EntityID, timestamp uint64) (*OutboundUpdate, bool, error) {
	return d.merge(entity, timestamp, nil, true)
}

// merge implements the LWW conflict table from spec §4.D: a strictly
// newer incoming timestamp always wins; a strictly older one is
// rejected and corrected back to the sender; at equal timestamps the
// lexicographically greater payload wins (DELETE's empty payload always
// loses a tie against any non-empty PUT).
func (d *LWWComponentDefinition[T]) merge(entity EntityID, timestamp uint64, payload []byte, deleted bool) (*OutboundUpdate, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, hasCurrent := d.values[entity]
	switch {
	case !hasCurrent || timestamp > current.timestamp:
		d.values[entity] = lwwEntry{timestamp: timestamp, deleted: deleted, raw: payload}
		d.dirty[entity] = true
		return nil, true, nil

	case timestamp < current.timestamp:
		return d.correctiveLocked(entity, current), false, nil

	default: // timestamp == current.timestamp
		if bytes.Equal(current.raw, payload) && current.deleted == deleted {
			return nil, false, nil
		}
		if bytes.Compare(payload, current.raw) > 0 {
			d.values[entity] = lwwEntry{timestamp: timestamp, deleted: deleted, raw: payload}
			d.dirty[entity] = true
			return nil, true, nil
		}
		return d.correctiveLocked(entity, current), false, nil
	}
}

func (d *LWWComponentDefinition[T]) correctiveLocked(entity EntityID, entry lwwEntry) *OutboundUpdate {
	kind := UpdatePut
	if entry.deleted {
		kind = UpdateDelete
	}
	return &OutboundUpdate{Entity: entity, Kind: kind, Payload: entry.raw, Timestamp: entry.timestamp}
}

func (d *LWWComponentDefinition[T]) ApplyAppend(entity EntityID, timestamp uint64, payload []byte) error {
	return newComponentError(CodeComponentNotFound, "APPEND_VALUE sent to an LWW component", d.name, entity)
}

func (d *LWWComponentDefinition[T]) Flush() []OutboundUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.dirty) == 0 {
		return nil
	}
	out := make([]OutboundUpdate, 0, len(d.dirty))
	for e := range d.dirty {
		entry := d.values[e]
		kind := UpdatePut
		if entry.deleted {
			kind = UpdateDelete
		}
		out = append(out, OutboundUpdate{Entity: e, Kind: kind, Payload: entry.raw, Timestamp: entry.timestamp})
	}
	d.dirty = make(map[EntityID]bool)
	return out
}

func (d *LWWComponentDefinition[T]) RemoveEntity(entity EntityID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, entity)
	delete(d.dirty, entity)
}
