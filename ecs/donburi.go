package ecs

import (
	"context"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/easel"
)

// Donburi event types for easel events.
var (
	OpEventType       = events.NewEventType[easel.OpEvent]()
	PointerEventType  = events.NewEventType[easel.PointerEvent]()
	KeyboardEventType = events.NewEventType[easel.KeyboardEvent]()
	WheelEventType    = events.NewEventType[easel.WheelEvent]()
)

// InputTap is an input handler that publishes every event it sees and
// never stops propagation.
type InputTap struct {
	world donburi.World
}

// NewInputTap returns a tap publishing into world.
func NewInputTap(world donburi.World) *InputTap {
	return &InputTap{world: world}
}

func (t *InputTap) OnPointer(_ context.Context, e easel.PointerEvent) (bool, error) {
	PointerEventType.Publish(t.world, e)
	return false, nil
}

func (t *InputTap) OnKeyboard(_ context.Context, e easel.KeyboardEvent) (bool, error) {
	KeyboardEventType.Publish(t.world, e)
	return false, nil
}

func (t *InputTap) OnWheel(_ context.Context, e easel.WheelEvent) (bool, error) {
	WheelEventType.Publish(t.world, e)
	return false, nil
}

// Bridge connects an easel world to a Donburi world.
type Bridge struct {
	handles []easel.CallbackHandle
}

// Attach publishes w's operation log and input events into world. Install
// it before other input handlers so stopped events are still seen.
func Attach(world donburi.World, w *easel.World) *Bridge {
	b := &Bridge{}
	b.handles = append(b.handles,
		w.Executer().OnOp(func(e easel.OpEvent) {
			OpEventType.Publish(world, e)
		}),
		w.Input().Use(NewInputTap(world)),
	)
	return b
}

// Close stops publishing.
func (b *Bridge) Close() {
	for _, h := range b.handles {
		h.Remove()
	}
	b.handles = nil
}
