package easel

import (
	"fmt"
	"maps"
	"slices"
)

// DirtyLevel says how much of a node must be redone before it is visually
// correct. Levels are ordered; rendering at a level also settles every
// lower one.
type DirtyLevel uint8

const (
	Clean          DirtyLevel = iota // nothing to do
	TransformDirty                   // only the transform changed
	ContentDirty                     // content or params changed
	AllDirty                         // everything must be rebuilt
)

var dirtyLevelNames = [...]string{"clean", "transform", "content", "all"}

func (l DirtyLevel) String() string {
	if int(l) < len(dirtyLevelNames) {
		return dirtyLevelNames[l]
	}
	return fmt.Sprintf("DirtyLevel(%d)", uint8(l))
}

func (l DirtyLevel) MarshalText() ([]byte, error) {
	if int(l) >= len(dirtyLevelNames) {
		return nil, fmt.Errorf("easel: invalid dirty level %d", uint8(l))
	}
	return []byte(dirtyLevelNames[l]), nil
}

func (l *DirtyLevel) UnmarshalText(b []byte) error {
	for i, name := range dirtyLevelNames {
		if name == string(b) {
			*l = DirtyLevel(i)
			return nil
		}
	}
	return fmt.Errorf("easel: unknown dirty level %q", b)
}

// TargetQueue selects the lane a node update is delivered on.
type TargetQueue uint8

const (
	Immediate TargetQueue = iota // fast lane; Wait blocks on it
	Offload                      // slow lane for order-insensitive work
)

func (q TargetQueue) String() string {
	if q == Offload {
		return "offload"
	}
	return "immediate"
}

func (q TargetQueue) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *TargetQueue) UnmarshalText(b []byte) error {
	switch string(b) {
	case "immediate":
		*q = Immediate
	case "offload":
		*q = Offload
	default:
		return fmt.Errorf("easel: unknown target queue %q", b)
	}
	return nil
}

// RenderInfo is the pending render request of one node.
type RenderInfo struct {
	Level DirtyLevel  `json:"level"`
	Queue TargetQueue `json:"queue"`
}

// Merge combines two requests for the same node. The higher level wins and
// brings its queue; on equal levels Immediate wins.
func (r RenderInfo) Merge(o RenderInfo) RenderInfo {
	switch {
	case o.Level > r.Level:
		return o
	case o.Level < r.Level:
		return r
	case o.Queue == Immediate:
		return o
	default:
		return r
	}
}

// RenderInfoMap maps node aliases to render requests.
type RenderInfoMap map[string]RenderInfo

// Aliases returns the keys in sorted order.
func (m RenderInfoMap) Aliases() []string {
	return slices.Sorted(maps.Keys(m))
}

// IsSubRenderInfo reports whether next subsumes prev: every alias of prev is
// in next with a level at least as high.
func IsSubRenderInfo(prev, next RenderInfoMap) bool {
	if len(prev) > len(next) {
		return false
	}
	for alias, p := range prev {
		n, ok := next[alias]
		if !ok || n.Level < p.Level {
			return false
		}
	}
	return true
}
