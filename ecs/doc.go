// Package ecs bridges grove input into a [Donburi] world.
//
// [NewBridge] returns a system that republishes every input event reaching
// an entity as a typed Donburi event, without consuming it. Subscribe to
// [KeyEventType] and friends in your ECS systems to receive them. The
// bridge also flushes the queued events on each Update when attached as a
// physics system.
//
// Usage:
//
//	bridge := ecs.NewBridge[*grove.Scene](world)
//	scene.AttachControls(bridge)
//	scene.AttachPhysics(bridge)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
