package ebitenrender

import (
	"context"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/easel"
)

var mouseButtons = [...]struct {
	eb  ebiten.MouseButton
	btn easel.MouseButton
}{
	{ebiten.MouseButtonLeft, easel.ButtonLeft},
	{ebiten.MouseButtonMiddle, easel.ButtonMiddle},
	{ebiten.MouseButtonRight, easel.ButtonRight},
}

// Source polls Ebitengine input once per tick and dispatches normalized
// events. It must be polled from the game's Update.
type Source struct {
	lastX, lastY int
	pressed      easel.MouseButton
	started      bool
	keys         []ebiten.Key
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() easel.KeyModifiers {
	var mods easel.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= easel.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= easel.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= easel.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= easel.ModMeta
	}
	return mods
}

// pointerEvent builds a pointer event at the cursor. Releases carry no
// position.
func pointerEvent(kind easel.PointerKind, b easel.MouseButton, x, y int, mods easel.KeyModifiers) easel.PointerEvent {
	e := easel.PointerEvent{Kind: kind, Button: b, Modifiers: mods}
	if kind != easel.PointerUp {
		e.X, e.Y = float64(x), float64(y)
		e.HasPosition = true
	}
	return e
}

// Poll reads this tick's input and dispatches it to in: buttons first, then
// movement, wheel and keys.
func (s *Source) Poll(ctx context.Context, in *easel.Input) error {
	mods := readModifiers()
	x, y := ebiten.CursorPosition()
	at := func(kind easel.PointerKind, b easel.MouseButton) easel.PointerEvent {
		return pointerEvent(kind, b, x, y, mods)
	}

	for _, m := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(m.eb) {
			if s.pressed == easel.ButtonNone {
				s.pressed = m.btn
			}
			if err := in.DispatchPointer(ctx, at(easel.PointerDown, m.btn)); err != nil {
				return err
			}
		}
	}

	if !s.started || x != s.lastX || y != s.lastY {
		s.started = true
		s.lastX, s.lastY = x, y
		if err := in.DispatchPointer(ctx, at(easel.PointerMove, s.pressed)); err != nil {
			return err
		}
	}

	for _, m := range mouseButtons {
		if inpututil.IsMouseButtonJustReleased(m.eb) {
			if s.pressed == m.btn {
				s.pressed = easel.ButtonNone
			}
			if err := in.DispatchPointer(ctx, at(easel.PointerUp, m.btn)); err != nil {
				return err
			}
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		e := easel.WheelEvent{DX: dx, DY: dy, X: float64(x), Y: float64(y), Modifiers: mods}
		if err := in.DispatchWheel(ctx, e); err != nil {
			return err
		}
	}

	s.keys = inpututil.AppendJustPressedKeys(s.keys[:0])
	for _, k := range s.keys {
		e := easel.KeyboardEvent{Kind: easel.KeyDown, Key: keyName(k), Modifiers: mods}
		if err := in.DispatchKeyboard(ctx, e); err != nil {
			return err
		}
	}
	s.keys = inpututil.AppendJustReleasedKeys(s.keys[:0])
	for _, k := range s.keys {
		e := easel.KeyboardEvent{Kind: easel.KeyUp, Key: keyName(k), Modifiers: mods}
		if err := in.DispatchKeyboard(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func keyName(k ebiten.Key) string {
	return strings.ToLower(k.String())
}
