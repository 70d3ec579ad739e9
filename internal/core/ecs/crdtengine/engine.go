// Package crdtengine merges inbound CRDT wire messages into the entity
// container and component registry, and drains locally and remotely
// accepted changes back out as outbound wire messages for the transport
// layer to fan out.
package crdtengine

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"scenecore/internal/core/ecs"
	"scenecore/internal/core/ecs/wire"
)

// TransportID names the origin of an inbound message batch, used only
// to suppress echoing an accepted update back to the transport it came
// from.
type TransportID string

// Engine is the CRDT merge/flush core wired into the tick scheduler: one
// instance per running scene, owning the entity container, component
// registry, and local Lamport clock.
type Engine struct {
	Registry *ecs.Registry
	Entities *ecs.Container
	Clock    *ecs.Clock

	onError func(error)

	merges    prometheus.Counter
	conflicts prometheus.Counter
}

// New constructs a CRDT engine. onError, if non-nil, is called for every
// message that could not be merged (unknown component, malformed
// payload); a nil onError logs via the standard logger, matching the
// teacher's fallback-to-log-package error handling.
func New(registry *ecs.Registry, entities *ecs.Container, clock *ecs.Clock, onError func(error)) *Engine {
	if onError == nil {
		onError = func(err error) { log.Printf("crdtengine: %v", err) }
	}
	return &Engine{
		Registry: registry,
		Entities: entities,
		Clock:    clock,
		onError:  onError,
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenecore_crdt_merges_total",
			Help: "Inbound CRDT messages successfully merged.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenecore_crdt_conflicts_total",
			Help: "Inbound CRDT messages rejected and corrected by local state.",
		}),
	}
}

// Collectors returns the engine's prometheus collectors for registration
// against a registry owned by the caller.
func (e *Engine) Collectors() []prometheus.Collector {
	return []prometheus.Collector{e.merges, e.conflicts}
}

// Receive merges one transport's inbound message batch. Per spec §4.G
// step 1, entity deletions are deferred until every component message in
// the batch has been merged, so a PUT_COMPONENT for an entity that is
// also deleted in the same batch is still applied against current state
// before the deferred delete clears it. forward holds accepted changes
// that must be relayed to every transport except source; corrective
// holds rejected-update messages that must be sent back only to source,
// minus any entity this same batch went on to delete (§4.G step 3).
func (e *Engine) Receive(source TransportID, messages []wire.Message) (forward, corrective []wire.Message) {
	var deletes []wire.Message
	for _, msg := range messages {
		if msg.Type == wire.DeleteEntity {
			deletes = append(deletes, msg)
			continue
		}
		e.mergeComponentMessage(msg, &forward, &corrective)
	}

	if len(deletes) == 0 {
		return forward, corrective
	}

	deleted := make(map[ecs.EntityID]bool, len(deletes))
	for _, msg := range deletes {
		e.Entities.UpdateRemoved(msg.Entity)
		e.Registry.RemoveEntity(msg.Entity)
		forward = append(forward, msg)
		deleted[msg.Entity] = true
	}

	if len(deleted) > 0 && len(corrective) > 0 {
		filtered := corrective[:0]
		for _, msg := range corrective {
			if !deleted[msg.Entity] {
				filtered = append(filtered, msg)
			}
		}
		corrective = filtered
	}

	return forward, corrective
}

func (e *Engine) mergeComponentMessage(msg wire.Message, forward, corrective *[]wire.Message) {
	switch msg.Type {
	case wire.PutComponent, wire.DeleteComponent, wire.AppendValue:
	default:
		// Unknown message types were already reduced by the wire decoder
		// to a Message carrying only its Type; nothing to merge or forward.
		return
	}

	if e.Entities.State(msg.Entity) == ecs.Removed {
		return
	}
	def, ok := e.Registry.ByID(msg.Component)
	if !ok {
		e.onError(newMergeError(msg, "unknown component id"))
		return
	}
	e.Entities.UpdateUsed(msg.Entity)
	e.Clock.Next(uint64(msg.Timestamp))

	switch msg.Type {
	case wire.PutComponent:
		corr, changed, err := def.ApplyPut(msg.Entity, uint64(msg.Timestamp), msg.Payload)
		e.recordOutcome(msg, def, corr, changed, err, forward, corrective)
	case wire.DeleteComponent:
		corr, changed, err := def.ApplyDelete(msg.Entity, uint64(msg.Timestamp))
		e.recordOutcome(msg, def, corr, changed, err, forward, corrective)
	case wire.AppendValue:
		if err := def.ApplyAppend(msg.Entity, uint64(msg.Timestamp), msg.Payload); err != nil {
			e.onError(newMergeError(msg, err.Error()))
			return
		}
		e.merges.Inc()
		*forward = append(*forward, msg)
	}
}

func (e *Engine) recordOutcome(msg wire.Message, def ecs.ComponentDefinition, corr *ecs.OutboundUpdate, changed bool, err error, forward, corrective *[]wire.Message) {
	if err != nil {
		e.onError(newMergeError(msg, err.Error()))
		return
	}
	if changed {
		e.merges.Inc()
		*forward = append(*forward, msg)
		return
	}
	if corr != nil {
		e.conflicts.Inc()
		*corrective = append(*corrective, outboundToWire(def.ID(), *corr))
	}
}

// Flush drains every component definition's pending outbound updates
// plus a DELETE_ENTITY for each entity the container released this
// tick, producing the batch to broadcast to every transport.
func (e *Engine) Flush(released []ecs.EntityID) []wire.Message {
	var out []wire.Message
	for _, def := range e.Registry.All() {
		for _, u := range def.Flush() {
			out = append(out, outboundToWire(def.ID(), u))
		}
	}
	for _, entity := range released {
		out = append(out, wire.Message{Type: wire.DeleteEntity, Entity: entity})
	}
	return out
}

func outboundToWire(componentID uint32, u ecs.OutboundUpdate) wire.Message {
	msg := wire.Message{Entity: u.Entity, Component: componentID, Timestamp: uint32(u.Timestamp), Payload: u.Payload}
	switch u.Kind {
	case ecs.UpdatePut:
		msg.Type = wire.PutComponent
	case ecs.UpdateDelete:
		msg.Type = wire.DeleteComponent
	case ecs.UpdateAppend:
		msg.Type = wire.AppendValue
	}
	return msg
}
