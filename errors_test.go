package easel

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCode(t *testing.T) {
	notFound := newError(CodeNodeNotFound, "r", "node not found")
	wrapped := wrapError(CodeUnknownOperation, notFound, "replay record 0")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct", notFound, CodeNodeNotFound, true},
		{"other code", notFound, CodeNotAGroup, false},
		{"outer code", wrapped, CodeUnknownOperation, true},
		{"inner code", wrapped, CodeNodeNotFound, true},
		{"fmt wrapped", fmt.Errorf("exec: %w", wrapped), CodeNodeNotFound, true},
		{"joined", errors.Join(errors.New("x"), notFound), CodeNodeNotFound, true},
		{"plain", errors.New("boom"), CodeNodeNotFound, false},
		{"nil", nil, CodeNodeNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsCode(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}

	if got := CodeOf(wrapped); got != CodeUnknownOperation {
		t.Errorf("CodeOf = %s, want the outer code", got)
	}
	if got := AliasOf(notFound); got != "r" {
		t.Errorf("AliasOf = %q", got)
	}
}
