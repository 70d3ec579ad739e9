// Package engine is the composition root that wires the entity
// container, component registry, CRDT merge engine, tick scheduler, and
// transport multiplexer into one running scene.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"scenecore/internal/core/ecs"
	"scenecore/internal/core/ecs/buffer"
	"scenecore/internal/core/ecs/crdtengine"
	"scenecore/internal/core/ecs/scheduler"
	"scenecore/internal/core/ecs/transport"
	"scenecore/internal/core/ecs/wire"
	"scenecore/internal/core/host"
)

// initialStateSource is the sentinel transport id used to merge the
// renderer's onStart() snapshot. It never matches a registered
// transport id; OnStart sends the merge's forward and corrective
// results to no transport.
const initialStateSource crdtengine.TransportID = "host-initial-state"

// rendererResponseSource is the sentinel transport id used to queue the
// renderer's CRDTSendToRenderer response for merge at the next tick.
const rendererResponseSource crdtengine.TransportID = "host-renderer-response"

// inboundBatch is one transport's message batch queued between ticks,
// waiting to be merged as Phase 1 of the next OnUpdate (spec §4.G/§5:
// "all inbound messages are merged before any system runs; no merges
// occur mid-tick").
type inboundBatch struct {
	source   crdtengine.TransportID
	messages []wire.Message
}

// Engine is one running scene: its entity/component state plus the
// scheduler and transport it replicates that state through.
type Engine struct {
	Config    Config
	Entities  *ecs.Container
	Registry  *ecs.Registry
	Clock     *ecs.Clock
	CRDT      *crdtengine.Engine
	Scheduler *scheduler.Scheduler
	Transport *transport.Multiplexer
	Host      host.Host

	// Events fans out the Event results of every SendBatch call made
	// during OnUpdate.
	Events *host.Bus[host.Event]

	started bool

	inboundMu sync.Mutex
	inbound   []inboundBatch

	actionsMu      sync.Mutex
	pendingActions []host.Action
}

// New constructs an unstarted engine. Register component definitions
// and systems against the returned Engine's Registry and Scheduler
// before calling OnStart.
func New(cfg Config, h host.Host) *Engine {
	entities := ecs.NewContainer()
	registry := ecs.NewRegistry(entities)
	clock := &ecs.Clock{}

	onError := func(err error) { log.Printf("engine: %v", err) }
	crdt := crdtengine.New(registry, entities, clock, onError)

	return &Engine{
		Config:    cfg,
		Entities:  entities,
		Registry:  registry,
		Clock:     clock,
		CRDT:      crdt,
		Scheduler: scheduler.New(),
		Transport: transport.New(),
		Host:      h,
		Events:    host.NewBus[host.Event](),
	}
}

// OnStart seals the component registry against further registration,
// then — when a Host is attached — requests the renderer's initial
// state and applies it, per spec §6's onStart() contract. Call it once,
// after every component definition and system has been registered.
func (e *Engine) OnStart(ctx context.Context) error {
	e.Registry.Seal()
	e.started = true

	if e.Host == nil {
		return nil
	}
	frames, err := e.Host.CRDTGetState(ctx)
	if err != nil {
		return fmt.Errorf("engine: requesting initial state: %w", err)
	}
	for _, frame := range frames {
		messages, err := wire.DecodeStream(buffer.FromBytes(frame))
		if err != nil {
			return fmt.Errorf("engine: decoding initial state: %w", err)
		}
		e.CRDT.Receive(initialStateSource, messages)
	}
	return nil
}

// Enqueue records one transport's inbound message batch to be merged at
// the start of the next tick. Transports must call this instead of
// merging synchronously, so a message arriving mid-tick never jumps the
// "no merges mid-tick" ordering guarantee (spec §4.G/§5).
func (e *Engine) Enqueue(source crdtengine.TransportID, messages []wire.Message) error {
	if len(messages) == 0 {
		return nil
	}
	e.inboundMu.Lock()
	e.inbound = append(e.inbound, inboundBatch{source: source, messages: messages})
	e.inboundMu.Unlock()
	return nil
}

// QueueAction records one host action to be delivered via SendBatch at
// the end of the next tick.
func (e *Engine) QueueAction(action host.Action) {
	e.actionsMu.Lock()
	e.pendingActions = append(e.pendingActions, action)
	e.actionsMu.Unlock()
}

// OnUpdate runs one tick in the order spec §2/§4.G/§4.H document:
//
//  1. drain and merge every inbound batch queued since the last tick
//  2. run the scheduler's task queue and systems
//  3. flush dirty components and released entities, broadcast the
//     result to every attached transport, and exchange it with the
//     renderer over CRDTSendToRenderer
//  4. deliver any queued host actions via SendBatch and publish the
//     resulting events
func (e *Engine) OnUpdate(ctx context.Context, dt float32) error {
	if err := e.drainInbound(ctx); err != nil {
		return err
	}

	e.Scheduler.Tick(dt)

	if err := e.flushAndBroadcast(ctx); err != nil {
		return err
	}

	return e.drainActions(ctx)
}

// drainInbound merges every batch queued by Enqueue since the last
// tick, in arrival order, relaying accepted messages to every other
// transport and sending corrective messages back to the batch's source.
// A failed send is logged and the tick continues. This is always Phase 1
// of a tick: no merges happen at any other point.
func (e *Engine) drainInbound(ctx context.Context) error {
	e.inboundMu.Lock()
	batches := e.inbound
	e.inbound = nil
	e.inboundMu.Unlock()

	for _, batch := range batches {
		forward, corrective := e.CRDT.Receive(batch.source, batch.messages)
		if len(forward) > 0 {
			if err := e.Transport.Broadcast(ctx, forward, batch.source); err != nil {
				log.Printf("engine: relaying accepted messages: %v", err)
			}
		}
		if len(corrective) > 0 {
			if err := e.Transport.SendTo(ctx, batch.source, corrective); err != nil {
				log.Printf("engine: sending corrective messages: %v", err)
			}
		}
	}
	return nil
}

func (e *Engine) flushAndBroadcast(ctx context.Context) error {
	released := e.Entities.ReleasePending()
	outbound := e.CRDT.Flush(released)
	if len(outbound) > 0 {
		if err := e.Transport.Broadcast(ctx, outbound, ""); err != nil {
			log.Printf("engine: broadcasting outbound: %v", err)
		}
	}

	if e.Host == nil || len(outbound) == 0 {
		return nil
	}
	return e.sendToRenderer(ctx, outbound)
}

// sendToRenderer exchanges outbound with the renderer over the
// request/response CRDTSendToRenderer call and queues any response
// frame for merge at the start of the next tick, keeping the merge
// itself out of the current tick.
func (e *Engine) sendToRenderer(ctx context.Context, outbound []wire.Message) error {
	req := buffer.New()
	for _, msg := range outbound {
		if err := wire.Encode(req, msg); err != nil {
			return fmt.Errorf("engine: encoding renderer request: %w", err)
		}
	}

	resp, err := e.Host.CRDTSendToRenderer(ctx, req.Bytes())
	if err != nil {
		return fmt.Errorf("engine: CRDTSendToRenderer: %w", err)
	}
	if len(resp) == 0 {
		return nil
	}

	messages, err := wire.DecodeStream(buffer.FromBytes(resp))
	if err != nil {
		return fmt.Errorf("engine: decoding renderer response: %w", err)
	}
	return e.Enqueue(rendererResponseSource, messages)
}

// drainActions delivers every action queued by QueueAction since the
// last tick to the host's SendBatch and publishes the resulting events.
func (e *Engine) drainActions(ctx context.Context) error {
	if e.Host == nil {
		return nil
	}
	e.actionsMu.Lock()
	actions := e.pendingActions
	e.pendingActions = nil
	e.actionsMu.Unlock()

	if len(actions) == 0 {
		return nil
	}
	events, err := e.Host.SendBatch(ctx, actions)
	if err != nil {
		return fmt.Errorf("engine: SendBatch: %w", err)
	}
	for _, ev := range events {
		e.Events.Publish(ev)
	}
	return nil
}
