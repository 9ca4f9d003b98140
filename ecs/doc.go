// Package ecs publishes easel events into a [Donburi] world.
//
// Operation log activity (exec, undo, redo) is published to [OpEventType];
// pointer, keyboard and wheel input reaching the world's dispatcher is
// published to [PointerEventType], [KeyboardEventType] and [WheelEventType].
// Subscribe in your ECS systems and drain with events.ProcessAllEvents.
//
// Usage:
//
//	b := ecs.Attach(ecsWorld, world)
//	defer b.Close()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
