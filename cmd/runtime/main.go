// Command runtime is a minimal example host: it wires two engines
// together over an in-memory loopback transport, registers a Transform
// component on each, spawns an entity on one side, ticks each side once,
// and logs whether the other side observed the replicated state.
package main

import (
	"context"
	"log"

	"scenecore/internal/core/ecs"
	"scenecore/internal/core/ecs/buffer"
	"scenecore/internal/core/ecs/compid"
	"scenecore/internal/core/ecs/crdtengine"
	"scenecore/internal/core/ecs/schema"
	"scenecore/internal/core/ecs/transport"
	"scenecore/internal/core/ecs/wire"
	"scenecore/internal/core/engine"
	"scenecore/internal/core/mathx"
)

// Transform is the demo's one component: a local-space TRS plus an
// optional parent reference, the 44-byte payload spec scenario 1 walks
// through (12 + 16 + 12 + 4 bytes).
type Transform struct {
	Position mathx.Vec3
	Rotation mathx.Quat
	Scale    mathx.Vec3
	Parent   uint32
}

var transformSchema = schema.Map(
	func() Transform { return Transform{Rotation: mathx.IdentityQuat, Scale: mathx.One3} },
	schema.Field[Transform]{
		Name:      "position",
		Serialize: func(t Transform, b *buffer.Buffer) error { return writeVec3(t.Position, b) },
		Merge:     func(t *Transform, b *buffer.Buffer) (err error) { t.Position, err = readVec3(b); return },
	},
	schema.Field[Transform]{
		Name:      "rotation",
		Serialize: func(t Transform, b *buffer.Buffer) error { return writeQuat(t.Rotation, b) },
		Merge:     func(t *Transform, b *buffer.Buffer) (err error) { t.Rotation, err = readQuat(b); return },
	},
	schema.Field[Transform]{
		Name:      "scale",
		Serialize: func(t Transform, b *buffer.Buffer) error { return writeVec3(t.Scale, b) },
		Merge:     func(t *Transform, b *buffer.Buffer) (err error) { t.Scale, err = readVec3(b); return },
	},
	schema.Field[Transform]{
		Name:      "parent",
		Serialize: func(t Transform, b *buffer.Buffer) error { b.WriteU32(t.Parent); return nil },
		Merge: func(t *Transform, b *buffer.Buffer) error {
			v, err := b.ReadU32()
			t.Parent = v
			return err
		},
	},
)

func writeVec3(v mathx.Vec3, b *buffer.Buffer) error {
	b.WriteF32(v.X)
	b.WriteF32(v.Y)
	b.WriteF32(v.Z)
	return nil
}

func readVec3(b *buffer.Buffer) (mathx.Vec3, error) {
	x, err := b.ReadF32()
	if err != nil {
		return mathx.Vec3{}, err
	}
	y, err := b.ReadF32()
	if err != nil {
		return mathx.Vec3{}, err
	}
	z, err := b.ReadF32()
	if err != nil {
		return mathx.Vec3{}, err
	}
	return mathx.Vec3{X: x, Y: y, Z: z}, nil
}

func writeQuat(q mathx.Quat, b *buffer.Buffer) error {
	b.WriteF32(q.X)
	b.WriteF32(q.Y)
	b.WriteF32(q.Z)
	b.WriteF32(q.W)
	return nil
}

func readQuat(b *buffer.Buffer) (mathx.Quat, error) {
	x, err := b.ReadF32()
	if err != nil {
		return mathx.Quat{}, err
	}
	y, err := b.ReadF32()
	if err != nil {
		return mathx.Quat{}, err
	}
	z, err := b.ReadF32()
	if err != nil {
		return mathx.Quat{}, err
	}
	w, err := b.ReadF32()
	if err != nil {
		return mathx.Quat{}, err
	}
	return mathx.Quat{X: x, Y: y, Z: z, W: w}, nil
}

func newScene() *engine.Engine {
	e := engine.New(engine.DefaultConfig(), nil)
	id := compid.FromName("core::Transform")
	if err := e.Registry.Register(ecs.NewLWW("core::Transform", id, transformSchema)); err != nil {
		log.Fatal(err)
	}
	return e
}

func main() {
	ctx := context.Background()
	host := newScene()
	client := newScene()

	var hostID, clientID crdtengine.TransportID
	clientID = client.Transport.Register(transport.NewChannel(func(ctx context.Context, messages []wire.Message) error {
		return host.Enqueue(hostID, messages)
	}), nil)
	hostID = host.Transport.Register(transport.NewChannel(func(ctx context.Context, messages []wire.Message) error {
		return client.Enqueue(clientID, messages)
	}), nil)

	if err := host.OnStart(ctx); err != nil {
		log.Fatal(err)
	}
	if err := client.OnStart(ctx); err != nil {
		log.Fatal(err)
	}

	entity := host.Entities.Generate()
	def, _ := host.Registry.ByName("core::Transform")
	lww := def.(*ecs.LWWComponentDefinition[Transform])
	if err := lww.CreateOrReplace(entity, Transform{
		Position: mathx.Vec3{X: 1, Y: 2, Z: 3},
		Rotation: mathx.IdentityQuat,
		Scale:    mathx.One3,
	}, host.Clock); err != nil {
		log.Fatal(err)
	}

	if err := host.OnUpdate(ctx, 0); err != nil {
		log.Fatal(err)
	}
	if err := client.OnUpdate(ctx, 0); err != nil {
		log.Fatal(err)
	}

	clientDef, _ := client.Registry.ByName("core::Transform")
	clientLWW := clientDef.(*ecs.LWWComponentDefinition[Transform])
	if value, ok := clientLWW.Get(entity); ok {
		log.Printf("client observed replicated transform: %+v", value)
	} else {
		log.Println("client has not observed the entity yet")
	}
}
