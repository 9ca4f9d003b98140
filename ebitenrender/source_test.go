package ebitenrender

import (
	"testing"

	"github.com/phanxgames/easel"
)

func TestPointerEvent(t *testing.T) {
	tests := []struct {
		kind    easel.PointerKind
		wantPos bool
	}{
		{easel.PointerDown, true},
		{easel.PointerMove, true},
		{easel.PointerUp, false},
	}
	for _, tt := range tests {
		e := pointerEvent(tt.kind, easel.ButtonLeft, 12, 34, easel.ModShift)
		if e.HasPosition != tt.wantPos {
			t.Errorf("%s: HasPosition = %v, want %v", tt.kind, e.HasPosition, tt.wantPos)
		}
		if tt.wantPos && (e.X != 12 || e.Y != 34) {
			t.Errorf("%s: position = %v,%v", tt.kind, e.X, e.Y)
		}
		if !tt.wantPos && (e.X != 0 || e.Y != 0) {
			t.Errorf("%s: release carries position %v,%v", tt.kind, e.X, e.Y)
		}
		if e.Button != easel.ButtonLeft || e.Modifiers != easel.ModShift {
			t.Errorf("%s: button/modifiers = %v/%v", tt.kind, e.Button, e.Modifiers)
		}
	}
}
