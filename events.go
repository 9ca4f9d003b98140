package easel

import "sync"

// CallbackHandle unregisters a callback.
type CallbackHandle struct {
	remove func()
}

// Remove unregisters the callback so it no longer fires. Calling it more
// than once is a no-op.
func (h CallbackHandle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

type listener[T any] struct {
	id uint32
	fn func(T)
}

// listeners is an ordered callback list safe for concurrent use.
type listeners[T any] struct {
	mu     sync.Mutex
	items  []listener[T]
	nextID uint32
}

func (l *listeners[T]) add(fn func(T)) CallbackHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener[T]{id: id, fn: fn})
	return CallbackHandle{remove: func() { l.removeID(id) }}
}

func (l *listeners[T]) removeID(id uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].id == id {
			copy(l.items[i:], l.items[i+1:])
			l.items[len(l.items)-1] = listener[T]{}
			l.items = l.items[:len(l.items)-1]
			return
		}
	}
}

func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	items := append([]listener[T](nil), l.items...)
	l.mu.Unlock()
	for _, it := range items {
		it.fn(v)
	}
}

// OpEventType identifies what the executer just did.
type OpEventType uint8

const (
	OpExec OpEventType = iota // a composite op was executed
	OpUndo                    // a record was undone
	OpRedo                    // a record was redone
)

func (t OpEventType) String() string {
	switch t {
	case OpUndo:
		return "undo"
	case OpRedo:
		return "redo"
	default:
		return "exec"
	}
}

// OpEvent is emitted after a successful Exec, Undo or Redo.
type OpEvent struct {
	Type   OpEventType
	Record Record
}
