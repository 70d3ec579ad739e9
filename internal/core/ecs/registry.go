package ecs

import "sync"

// Registry owns every ComponentDefinition in the running engine. It is
// open for registration until Seal is called (normally once, at
// OnStart), after which registration is a fatal programming error —
// mirroring the teacher's sealed-schema registry pattern.
type Registry struct {
	mu       sync.RWMutex
	sealed   bool
	byName   map[string]ComponentDefinition
	byID     map[uint32]ComponentDefinition
	entities *Container
}

// NewRegistry returns an empty, unsealed registry bound to the given
// entity container so it can release per-entity storage on removal.
func NewRegistry(entities *Container) *Registry {
	return &Registry{
		byName:   make(map[string]ComponentDefinition),
		byID:     make(map[uint32]ComponentDefinition),
		entities: entities,
	}
}

// Register adds a component definition. It fails fatally if the
// registry is sealed, the name is already registered, or the
// definition's derived component id collides with one already claimed
// by a different name (spec §9: hashed ids must be verified unique at
// registration time).
func (r *Registry) Register(def ComponentDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return wrapFatal(newError(CodeRegistrySealed, "cannot register a component after the registry is sealed"), def.Name())
	}
	if _, exists := r.byName[def.Name()]; exists {
		return wrapFatal(newComponentError(CodeComponentExists, "component name already registered", def.Name(), 0), def.Name())
	}
	if existing, exists := r.byID[def.ID()]; exists {
		return wrapFatal(newComponentError(CodeDuplicateComponentID, "component id collides with "+existing.Name(), def.Name(), 0), def.Name())
	}
	r.byName[def.Name()] = def
	r.byID[def.ID()] = def
	return nil
}

// Seal closes the registry to further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// ByName looks up a registered definition by name.
func (r *Registry) ByName(name string) (ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// ByID looks up a registered definition by its wire component number.
func (r *Registry) ByID(id uint32) (ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

// All returns every registered definition, in no particular order.
func (r *Registry) All() []ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ComponentDefinition, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	return out
}

// RemoveEntity propagates an entity removal to every registered
// definition so no component storage for it survives past the tick it
// was deleted on.
func (r *Registry) RemoveEntity(entity EntityID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.byName {
		d.RemoveEntity(entity)
	}
}
