package ecs

import (
	"time"

	"github.com/phanxgames/grove"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Donburi event types carrying grove input. Subscribe to these in your ECS
// systems.
var (
	KeyEventType         = events.NewEventType[grove.KeyEvent]()
	MouseButtonEventType = events.NewEventType[grove.MouseButtonEvent]()
	MouseMoveEventType   = events.NewEventType[grove.MouseMoveEvent]()
	MouseWheelEventType  = events.NewEventType[grove.MouseWheelEvent]()
	ResizeEventType      = events.NewEventType[grove.ResizeEvent]()
)

// Bridge publishes input events into a Donburi world. It is both a
// grove.ControlsSystem and a grove.PhysicsSystem for any entity type.
type Bridge[T any] struct {
	world donburi.World
}

// NewBridge creates a bridge publishing into world.
func NewBridge[T any](world donburi.World) *Bridge[T] {
	return &Bridge[T]{world: world}
}

// World returns the world events are published to.
func (b *Bridge[T]) World() donburi.World {
	return b.world
}

func (b *Bridge[T]) OnKey(_ T, ev grove.KeyEvent) bool {
	KeyEventType.Publish(b.world, ev)
	return false
}

func (b *Bridge[T]) OnMouseButton(_ T, ev grove.MouseButtonEvent) bool {
	MouseButtonEventType.Publish(b.world, ev)
	return false
}

func (b *Bridge[T]) OnMouseMove(_ T, ev grove.MouseMoveEvent) bool {
	MouseMoveEventType.Publish(b.world, ev)
	return false
}

func (b *Bridge[T]) OnMouseWheel(_ T, ev grove.MouseWheelEvent) bool {
	MouseWheelEventType.Publish(b.world, ev)
	return false
}

func (b *Bridge[T]) OnResize(_ T, ev grove.ResizeEvent) bool {
	ResizeEventType.Publish(b.world, ev)
	return false
}

// Update delivers the queued events to their subscribers.
func (b *Bridge[T]) Update(_ T, _ time.Duration) error {
	ProcessEvents(b.world)
	return nil
}

// ProcessEvents delivers every queued input event in world.
func ProcessEvents(world donburi.World) {
	KeyEventType.ProcessEvents(world)
	MouseButtonEventType.ProcessEvents(world)
	MouseMoveEventType.ProcessEvents(world)
	MouseWheelEventType.ProcessEvents(world)
	ResizeEventType.ProcessEvents(world)
}
