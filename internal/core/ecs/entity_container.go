package ecs

import "sync"

// Container allocates entity ids, tracks the live/removed set, and
// reconciles local state against entities observed on inbound CRDT
// messages (spec §3, §4.C). All reserved numbers [0, ReservedEntityCount)
// are implicitly Reserved and never participate in allocation.
type Container struct {
	mu sync.Mutex

	nextFreeNumber uint16
	exhausted      bool

	// reusable holds numbers known to be removed locally and not yet
	// reclaimed by a remote generate(); generate() pops from here before
	// minting a fresh number.
	reusable []uint16

	// live[n] is the version currently considered live for number n.
	live map[uint16]uint16

	// removed[n] is the highest version of number n known to be
	// removed; any version <= removed[n] must never be (re)used.
	removed map[uint16]uint16

	// pending holds entities removed locally this tick, awaiting
	// releasePending() at tick end.
	pending []EntityID
}

// NewContainer returns an entity container with the fresh-number
// counter starting at ReservedEntityCount.
func NewContainer() *Container {
	return &Container{
		nextFreeNumber: ReservedEntityCount,
		live:           make(map[uint16]uint16),
		removed:        make(map[uint16]uint16),
	}
}

// Generate allocates a new entity, preferring to reuse a removed number
// (at the next version) before minting a fresh number. Panics only on
// genuine exhaustion of the 16-bit number space, which spec §4.C calls
// fatal.
func (c *Container) Generate() EntityID {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.reusable) > 0 {
		n := c.reusable[len(c.reusable)-1]
		c.reusable = c.reusable[:len(c.reusable)-1]

		if _, stillLive := c.live[n]; stillLive {
			// A remote peer reused this number before we did; skip it.
			continue
		}
		removedAt := c.removed[n]
		if removedAt >= MaxEntityNumber {
			// Version space for this number is exhausted; never reuse it.
			continue
		}
		newVersion := removedAt + 1
		c.live[n] = newVersion
		return NewEntityID(n, newVersion)
	}

	if c.exhausted {
		panic(&Error{Code: CodeEntitiesExhausted, Message: "entity number space exhausted"})
	}
	n := c.nextFreeNumber
	if n == MaxEntityNumber {
		c.exhausted = true
	} else {
		c.nextFreeNumber++
	}
	c.live[n] = 0
	return NewEntityID(n, 0)
}

// Remove enqueues a live entity for deletion at tick end, or, for an
// entity this container has never seen live, marks it removed
// immediately (spec §4.C).
func (c *Container) Remove(e EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, v := e.Number(), e.Version()
	if live, ok := c.live[n]; ok && live == v {
		c.pending = append(c.pending, e)
		return
	}
	c.markRemovedLocked(n, v)
}

// ReleasePending clears the pending-removal list, finalizing each
// entity into the removed set, and returns the list for DELETE_ENTITY
// emission.
func (c *Container) ReleasePending() []EntityID {
	c.mu.Lock()
	defer c.mu.Unlock()

	released := c.pending
	c.pending = nil
	for _, e := range released {
		n, v := e.Number(), e.Version()
		if live, ok := c.live[n]; ok && live == v {
			delete(c.live, n)
		}
		c.markRemovedLocked(n, v)
	}
	return released
}

func (c *Container) markRemovedLocked(n, v uint16) {
	if existing, ok := c.removed[n]; !ok || v > existing {
		c.removed[n] = v
	}
	c.reusable = append(c.reusable, n)
}

// UpdateUsed reconciles local state against an inbound message's
// entity: unknown entities are promoted to live, and observing a
// strictly newer version implies every earlier version of that number
// was already removed (spec §3, §4.C).
func (c *Container) UpdateUsed(e EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, v := e.Number(), e.Version()
	if existing, ok := c.live[n]; ok && existing >= v {
		return
	}
	if v > 0 {
		if existing, ok := c.removed[n]; !ok || v-1 > existing {
			c.removed[n] = v - 1
		}
	}
	c.live[n] = v
}

// UpdateRemoved reconciles local state against an inbound DELETE_ENTITY
// message: any version greater than the currently known removed version
// bumps the removed marker, and any live entity at or below that version
// is dropped (spec §4.C).
func (c *Container) UpdateRemoved(e EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, v := e.Number(), e.Version()
	if existing, ok := c.removed[n]; !ok || v > existing {
		c.removed[n] = v
	}
	if live, ok := c.live[n]; ok && live <= v {
		delete(c.live, n)
	}
	c.reusable = append(c.reusable, n)
}

// State reports the lifecycle state of an entity id.
func (c *Container) State(e EntityID) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, v := e.Number(), e.Version()
	if n < ReservedEntityCount {
		return Reserved
	}
	if live, ok := c.live[n]; ok && live == v {
		return Used
	}
	if removedAt, ok := c.removed[n]; ok && v <= removedAt {
		return Removed
	}
	return Unknown
}
