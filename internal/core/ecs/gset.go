package ecs

import (
	"sort"
	"sync"

	"scenecore/internal/core/ecs/buffer"
	"scenecore/internal/core/ecs/schema"
)

type gsetElement struct {
	timestamp uint64
	raw       []byte
}

// GSetComponentDefinition stores a grow-only, bounded multiset of
// values per entity, ordered by a timestamp derived from each value's
// own content rather than arrival order: every inbound APPEND_VALUE is
// accepted unconditionally, sorted into place by timestampOf(value),
// and once an entity's set exceeds maxElements the oldest element is
// evicted (spec §4.E).
type GSetComponentDefinition[T any] struct {
	name        string
	id          uint32
	schema      schema.Schema[T]
	maxElements int
	timestampOf func(T) uint64

	mu       sync.RWMutex
	elements map[EntityID][]gsetElement
	pending  map[EntityID][]gsetElement
}

// NewGSet constructs a GSet component definition over values of type T,
// bounding each entity's set to maxElements and ordering elements by
// timestampOf(value) rather than insertion order, as spec §4.E
// requires.
func NewGSet[T any](name string, id uint32, sch schema.Schema[T], maxElements int, timestampOf func(T) uint64) *GSetComponentDefinition[T] {
	return &GSetComponentDefinition[T]{
		name:        name,
		id:          id,
		schema:      sch,
		maxElements: maxElements,
		timestampOf: timestampOf,
		elements:    make(map[EntityID][]gsetElement),
		pending:     make(map[EntityID][]gsetElement),
	}
}

func (d *GSetComponentDefinition[T]) Name() string        { return d.name }
func (d *GSetComponentDefinition[T]) ID() uint32          { return d.id }
func (d *GSetComponentDefinition[T]) Kind() ComponentType { return GSet }

// AddValue passes value through the schema's Extend, then appends it to
// entity's set, sorted by timestampOf(value).
func (d *GSetComponentDefinition[T]) AddValue(entity EntityID, value T) error {
	value = d.schema.Extend(value)
	raw := buffer.New()
	if err := d.schema.Serialize(value, raw); err != nil {
		return err
	}
	d.insert(entity, gsetElement{timestamp: d.timestampOf(value), raw: raw.Bytes()}, true)
	return nil
}

// All returns entity's current values in ascending timestampOf order.
func (d *GSetComponentDefinition[T]) All(entity EntityID) []T {
	d.mu.RLock()
	elements := append([]gsetElement(nil), d.elements[entity]...)
	d.mu.RUnlock()

	out := make([]T, 0, len(elements))
	for _, el := range elements {
		v, err := d.schema.Deserialize(buffer.FromBytes(el.raw))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ApplyAppend merges an inbound APPEND_VALUE message. The sort key is
// re-derived from the decoded value via timestampOf, never trusted from
// the wire timestamp, so ordering is identical on every peer regardless
// of arrival order (spec §4.E, §8 scenario 5).
func (d *GSetComponentDefinition[T]) ApplyAppend(entity EntityID, timestamp uint64, payload []byte) error {
	value, err := d.schema.Deserialize(buffer.FromBytes(payload))
	if err != nil {
		return err
	}
	d.insert(entity, gsetElement{timestamp: d.timestampOf(value), raw: payload}, true)
	return nil
}

func (d *GSetComponentDefinition[T]) insert(entity EntityID, el gsetElement, queueOutbound bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := append(d.elements[entity], el)
	sort.SliceStable(set, func(i, j int) bool { return set[i].timestamp < set[j].timestamp })
	if d.maxElements > 0 && len(set) > d.maxElements {
		set = set[len(set)-d.maxElements:]
	}
	d.elements[entity] = set

	if queueOutbound {
		d.pending[entity] = append(d.pending[entity], el)
	}
}

// ApplyPut and ApplyDelete are not valid operations on a GSet component;
// they exist only to satisfy ComponentDefinition and report a recoverable
// error if reached, which would indicate a malformed wire message.
func (d *GSetComponentDefinition[T]) ApplyPut(entity EntityID, timestamp uint64, payload []byte) (*OutboundUpdate, bool, error) {
	return nil, false, newComponentError(CodeComponentNotFound, "PUT_COMPONENT sent to a GSet component", d.name, entity)
}

func (d *GSetComponentDefinition[T]) ApplyDelete(entity EntityID, timestamp uint64) (*OutboundUpdate, bool, error) {
	return nil, false, newComponentError(CodeComponentNotFound, "DELETE_COMPONENT sent to a GSet component", d.name, entity)
}

func (d *GSetComponentDefinition[T]) Flush() []OutboundUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil
	}
	var out []OutboundUpdate
	for e, els := range d.pending {
		for _, el := range els {
			out = append(out, OutboundUpdate{Entity: e, Kind: UpdateAppend, Payload: el.raw, Timestamp: el.timestamp})
		}
	}
	d.pending = make(map[EntityID][]gsetElement)
	return out
}

func (d *GSetComponentDefinition[T]) RemoveEntity(entity EntityID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, entity)
	delete(d.pending, entity)
}
