// Package ecs implements the core entity/component model of the
// CRDT-replicated scene runtime: entity id allocation and versioning,
// sealed component registration, and the two component storage
// semantics (LWW element set, GSet value set) that the CRDT engine
// merges against.
package ecs

// EntityID is a 32-bit entity identifier composed of a 16-bit number in
// the low bits and a 16-bit version in the high bits.
type EntityID uint32

// NewEntityID packs a (number, version) pair into an EntityID.
func NewEntityID(number, version uint16) EntityID {
	return EntityID(uint32(version)<<16 | uint32(number))
}

// Number returns the low 16 bits of the entity id.
func (e EntityID) Number() uint16 { return uint16(e) }

// Version returns the high 16 bits of the entity id.
func (e EntityID) Version() uint16 { return uint16(e >> 16) }

const (
	// ReservedEntityCount is the size of the host-controlled number
	// range [0, ReservedEntityCount); user entities start at this number.
	ReservedEntityCount uint16 = 512

	// RootEntity, PlayerEntity, and CameraEntity are the three
	// well-known reserved entities (spec §6).
	RootEntity   EntityID = EntityID(0)
	PlayerEntity EntityID = EntityID(1)
	CameraEntity EntityID = EntityID(2)
)

// MaxEntityNumber is the largest allocatable entity number; versions and
// numbers both saturate at this value (spec §3: "versions saturate at
// 65535").
const MaxEntityNumber uint16 = 65535

// State is the lifecycle state of an entity number as observed by the
// local entity container.
type State int

const (
	// Unknown means the container has never observed this number.
	Unknown State = iota
	// Used means the number is currently live.
	Used
	// Removed means the number (at some version) has been deleted and
	// must never be reissued at that version or lower.
	Removed
	// Reserved means the number falls in [0, ReservedEntityCount) and is
	// host-controlled: it may be referenced but never allocated locally.
	Reserved
)

// ComponentType is the CRDT semantics a component definition uses.
type ComponentType int

const (
	// LWW is a Last-Write-Wins element set: one value per entity,
	// resolved by Lamport timestamp then lexicographic byte compare.
	LWW ComponentType = iota
	// GSet is a grow-only, bounded, timestamp-ordered value multiset.
	GSet
)
