package easel

import (
	"context"
	"strings"
	"sync"
)

// --- Events ---

// PointerKind identifies a pointer event.
type PointerKind uint8

const (
	PointerDown PointerKind = iota // a button was pressed
	PointerMove                    // the pointer moved
	PointerUp                      // a button was released
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	default:
		return "move"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	ButtonNone   MouseButton = iota // no button involved
	ButtonLeft                      // primary button
	ButtonMiddle                    // wheel click
	ButtonRight                     // secondary button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether every modifier in m is held.
func (mods KeyModifiers) Has(m KeyModifiers) bool { return mods&m == m }

// PointerEvent is a normalized pointer event in screen coordinates.
type PointerEvent struct {
	Kind        PointerKind
	Button      MouseButton
	X, Y        float64
	HasPosition bool
	Modifiers   KeyModifiers
}

// Point returns the event position.
func (e PointerEvent) Point() Point { return Point{e.X, e.Y} }

// KeyKind identifies a keyboard event.
type KeyKind uint8

const (
	KeyDown KeyKind = iota // a key was pressed
	KeyUp                  // a key was released
)

// KeyboardEvent is a normalized key event. Key is the lower-cased key name
// ("z", "shift", "arrowleft").
type KeyboardEvent struct {
	Kind      KeyKind
	Key       string
	Modifiers KeyModifiers
}

// WheelEvent is a scroll event at a screen position. DX and DY are in
// wheel notches.
type WheelEvent struct {
	DX, DY    float64
	X, Y      float64
	Modifiers KeyModifiers
}

// Point returns the cursor position.
func (e WheelEvent) Point() Point { return Point{e.X, e.Y} }

// --- Handlers ---

// PointerReceiver handles pointer events. Returning stop ends propagation
// to later handlers.
type PointerReceiver interface {
	OnPointer(ctx context.Context, e PointerEvent) (stop bool, err error)
}

// KeyboardReceiver handles keyboard events.
type KeyboardReceiver interface {
	OnKeyboard(ctx context.Context, e KeyboardEvent) (stop bool, err error)
}

// WheelReceiver handles wheel events.
type WheelReceiver interface {
	OnWheel(ctx context.Context, e WheelEvent) (stop bool, err error)
}

type inputHandler struct {
	id uint32
	h  any
}

// Input dispatches events to an ordered list of handlers. A handler may
// implement any of PointerReceiver, KeyboardReceiver and WheelReceiver.
type Input struct {
	mu       sync.Mutex
	handlers []inputHandler
	nextID   uint32
}

// NewInput returns an empty dispatcher.
func NewInput() *Input { return &Input{} }

// Use appends h to the handler list. It panics if h implements none of the
// receiver interfaces.
func (in *Input) Use(h any) CallbackHandle {
	switch h.(type) {
	case PointerReceiver, KeyboardReceiver, WheelReceiver:
	default:
		panic("easel: Input.Use: handler implements no receiver interface")
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.nextID++
	id := in.nextID
	in.handlers = append(in.handlers, inputHandler{id: id, h: h})
	return CallbackHandle{remove: func() { in.remove(id) }}
}

func (in *Input) remove(id uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i, e := range in.handlers {
		if e.id == id {
			in.handlers = append(in.handlers[:i:i], in.handlers[i+1:]...)
			return
		}
	}
}

func (in *Input) snapshot() []inputHandler {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]inputHandler(nil), in.handlers...)
}

// DispatchPointer offers e to each pointer handler in order until one stops
// it or fails.
func (in *Input) DispatchPointer(ctx context.Context, e PointerEvent) error {
	for _, entry := range in.snapshot() {
		h, ok := entry.h.(PointerReceiver)
		if !ok {
			continue
		}
		stop, err := h.OnPointer(ctx, e)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// DispatchKeyboard offers e to each keyboard handler in order.
func (in *Input) DispatchKeyboard(ctx context.Context, e KeyboardEvent) error {
	e.Key = strings.ToLower(e.Key)
	for _, entry := range in.snapshot() {
		h, ok := entry.h.(KeyboardReceiver)
		if !ok {
			continue
		}
		stop, err := h.OnKeyboard(ctx, e)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// DispatchWheel offers e to each wheel handler in order.
func (in *Input) DispatchWheel(ctx context.Context, e WheelEvent) error {
	for _, entry := range in.snapshot() {
		h, ok := entry.h.(WheelReceiver)
		if !ok {
			continue
		}
		stop, err := h.OnWheel(ctx, e)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// --- Built-in handlers ---

// DragHandler moves the top-most node under the cursor with the left
// button. The node follows the pointer live; on release a single moveTo
// op is executed so the whole gesture undoes in one step.
type DragHandler struct {
	world    *World
	deadZone float64

	alias      string
	start      Point // node position at press
	grab       Point // world point at press
	grabScreen Point
	moved      bool
}

// NewDragHandler returns a drag handler using the world's drag dead zone.
func NewDragHandler(w *World) *DragHandler {
	return &DragHandler{world: w, deadZone: w.Config().Input.DragDeadZone}
}

// Dragging returns the alias being dragged, if any.
func (d *DragHandler) Dragging() (string, bool) { return d.alias, d.alias != "" }

func (d *DragHandler) OnPointer(ctx context.Context, e PointerEvent) (bool, error) {
	switch e.Kind {
	case PointerDown:
		if e.Button != ButtonLeft || !e.HasPosition {
			return false, nil
		}
		wp := d.world.Viewport().ScreenToWorld(e.Point())
		hits := d.world.Pointed(wp)
		if len(hits) == 0 {
			return false, nil
		}
		d.alias = hits[0].Alias()
		d.start = hits[0].Position()
		d.grab = wp
		d.grabScreen = e.Point()
		d.moved = false
		return true, nil

	case PointerMove:
		if d.alias == "" || !e.HasPosition {
			return false, nil
		}
		if !d.moved && e.Point().DistanceTo(d.grabScreen) < d.deadZone {
			return true, nil
		}
		d.moved = true
		to := d.start.Add(d.world.Viewport().ScreenToWorld(e.Point()).Sub(d.grab))
		if err := d.world.moveLive(d.alias, to); err != nil {
			d.alias = ""
			return true, err
		}
		return true, d.world.Renderer().Wait(ctx)

	case PointerUp:
		if d.alias == "" {
			return false, nil
		}
		alias := d.alias
		d.alias = ""
		if !d.moved {
			return true, nil
		}
		var final Point
		if err := d.world.Graph().View(alias, func(n Node) { final = n.Position() }); err != nil {
			return true, err
		}
		return true, d.world.Executer().Exec(ctx, MoveTo(alias, d.start, final))
	}
	return false, nil
}

// ShortcutHandler maps undo and redo key chords onto the executer:
// Ctrl/Meta+Z undoes, Ctrl/Meta+Shift+Z and Ctrl+Y redo. Auto-repeated key
// downs of a held key are ignored.
type ShortcutHandler struct {
	executer *Executer
	held     map[string]bool
}

// NewShortcutHandler returns a shortcut handler driving x.
func NewShortcutHandler(x *Executer) *ShortcutHandler {
	return &ShortcutHandler{executer: x, held: make(map[string]bool)}
}

// Held reports whether key is currently down.
func (s *ShortcutHandler) Held(key string) bool { return s.held[strings.ToLower(key)] }

func (s *ShortcutHandler) OnKeyboard(ctx context.Context, e KeyboardEvent) (bool, error) {
	if e.Kind == KeyUp {
		delete(s.held, e.Key)
		return false, nil
	}
	if s.held[e.Key] {
		return false, nil
	}
	s.held[e.Key] = true

	cmd := e.Modifiers&(ModCtrl|ModMeta) != 0
	switch {
	case cmd && e.Key == "z" && e.Modifiers.Has(ModShift),
		e.Modifiers.Has(ModCtrl) && e.Key == "y":
		if !s.executer.CanRedo() {
			return true, nil
		}
		return true, s.executer.Redo(ctx)
	case cmd && e.Key == "z":
		if !s.executer.CanUndo() {
			return true, nil
		}
		return true, s.executer.Undo(ctx)
	}
	return false, nil
}

// WheelHandler pans the viewport on plain wheel and zooms around the
// cursor on Ctrl+wheel.
type WheelHandler struct {
	viewport *Viewport
	// PanSpeed is the pan distance in pixels per wheel notch.
	PanSpeed float64
}

// NewWheelHandler returns a wheel handler over v.
func NewWheelHandler(v *Viewport) *WheelHandler {
	return &WheelHandler{viewport: v, PanSpeed: 40}
}

func (w *WheelHandler) OnWheel(_ context.Context, e WheelEvent) (bool, error) {
	if e.DX == 0 && e.DY == 0 {
		return false, nil
	}
	if e.Modifiers.Has(ModCtrl) {
		switch {
		case e.DY > 0:
			w.viewport.ZoomIn(e.Point())
		case e.DY < 0:
			w.viewport.ZoomOut(e.Point())
		}
		return true, nil
	}
	w.viewport.GlobalMove(Point{e.DX * w.PanSpeed, e.DY * w.PanSpeed})
	return true, nil
}
