package easel

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Executer applies composite ops to a graph, records them for undo and
// redo, and forwards the resulting render requests to a renderer.
type Executer struct {
	graph    *Graph
	renderer *Renderer

	mu    sync.Mutex
	stack *RecordStack

	listeners listeners[OpEvent]
}

// NewExecuter returns an executer mutating the renderer's graph. maxRecords
// bounds the undo history; zero or less keeps everything.
func NewExecuter(renderer *Renderer, maxRecords int) *Executer {
	return &Executer{
		graph:    renderer.Graph(),
		renderer: renderer,
		stack:    NewRecordStack(maxRecords),
	}
}

// OnOp registers fn to run after every successful Exec, Undo and Redo.
// Listeners run outside the executer lock and may call back into it.
func (x *Executer) OnOp(fn func(OpEvent)) CallbackHandle {
	return x.listeners.add(fn)
}

// OnExec registers fn to run after every successful Exec.
func (x *Executer) OnExec(fn func(Record)) CallbackHandle { return x.on(OpExec, fn) }

// OnUndo registers fn to run after every successful Undo.
func (x *Executer) OnUndo(fn func(Record)) CallbackHandle { return x.on(OpUndo, fn) }

// OnRedo registers fn to run after every successful Redo.
func (x *Executer) OnRedo(fn func(Record)) CallbackHandle { return x.on(OpRedo, fn) }

func (x *Executer) on(t OpEventType, fn func(Record)) CallbackHandle {
	return x.listeners.add(func(e OpEvent) {
		if e.Type == t {
			fn(e.Record)
		}
	})
}

// ExecAOp applies one side of an atomic op: every aliased node receives its
// assignment and the op's render info. All aliases are resolved before any
// node is touched. With refresh set the renderer is flushed afterwards.
func (x *Executer) ExecAOp(op AOp, field Field, refresh bool) error {
	if op.Type != AOpAssignment {
		return newError(CodeUnknownOperation, "", "unknown atomic op %q", op.Type)
	}
	data := op.side(field)
	aliases := slices.Sorted(maps.Keys(data))
	err := x.graph.MutateAll(aliases, func(n Node) error {
		data[n.Alias()].apply(n)
		return nil
	})
	if err != nil {
		return err
	}
	for _, alias := range aliases {
		info, ok := op.RenderInfo[alias]
		if !ok {
			info = RenderInfo{Level: TransformDirty, Queue: Immediate}
		}
		if err := x.renderer.SetRenderInfo(alias, info, false); err != nil {
			return err
		}
	}
	if refresh {
		x.renderer.Refresh()
	}
	return nil
}

// Exec translates cop into atomic ops, records it, and applies the ops'
// next side in order. The renderer is refreshed once, after the last op.
// The redo history is cleared.
func (x *Executer) Exec(ctx context.Context, cop COp) error {
	aops, err := translate(cop)
	if err != nil {
		return err
	}
	rec := Record{COp: cop, AOps: aops}
	if err := x.exec(ctx, rec); err != nil {
		return err
	}
	Logger().Debug("exec", "op", cop)
	x.listeners.emit(OpEvent{Type: OpExec, Record: rec})
	return nil
}

func (x *Executer) exec(ctx context.Context, rec Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.check(rec.AOps, FieldNext); err != nil {
		return err
	}
	x.stack.Push(rec)
	return x.stream(ctx, rec.AOps, FieldNext)
}

// Undo reverts the latest record by applying its atomic ops' prev side in
// reverse order. If any recorded alias is gone from the graph it fails with
// CodeNodeNotFound and neither the graph nor the history changes.
func (x *Executer) Undo(ctx context.Context) error {
	rec, err := x.undo(ctx)
	if err != nil {
		return err
	}
	Logger().Debug("undo", "op", rec.COp)
	x.listeners.emit(OpEvent{Type: OpUndo, Record: rec})
	return nil
}

func (x *Executer) undo(ctx context.Context) (Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rec, ok := x.stack.PeekUndo()
	if !ok {
		return Record{}, newError(CodeNothingToUndo, "", "nothing to undo")
	}
	aops := slices.Clone(rec.AOps)
	slices.Reverse(aops)
	if err := x.check(aops, FieldPrev); err != nil {
		return Record{}, err
	}
	if err := x.stream(ctx, aops, FieldPrev); err != nil {
		return Record{}, err
	}
	x.stack.Undo()
	return rec, nil
}

// Redo re-applies the latest undone record. Missing aliases fail the same
// way Undo does.
func (x *Executer) Redo(ctx context.Context) error {
	rec, err := x.redo(ctx)
	if err != nil {
		return err
	}
	Logger().Debug("redo", "op", rec.COp)
	x.listeners.emit(OpEvent{Type: OpRedo, Record: rec})
	return nil
}

func (x *Executer) redo(ctx context.Context) (Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rec, ok := x.stack.PeekRedo()
	if !ok {
		return Record{}, newError(CodeNothingToRedo, "", "nothing to redo")
	}
	if err := x.check(rec.AOps, FieldNext); err != nil {
		return Record{}, err
	}
	if err := x.stream(ctx, rec.AOps, FieldNext); err != nil {
		return Record{}, err
	}
	x.stack.Redo()
	return rec, nil
}

// CanUndo reports whether Undo has a record to revert.
func (x *Executer) CanUndo() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stack.CanUndo()
}

// CanRedo reports whether Redo has a record to re-apply.
func (x *Executer) CanRedo() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stack.CanRedo()
}

// History returns a snapshot of the record stack.
func (x *Executer) History() RecordStackData {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stack.ToData()
}

// SetHistory replaces the record stack.
func (x *Executer) SetHistory(d RecordStackData) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.stack = RecordStackFromData(d)
}

// ClearHistory drops all records.
func (x *Executer) ClearHistory() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.stack.Clear()
}

// check makes sure every alias the ops touch exists.
func (x *Executer) check(aops []AOp, field Field) error {
	for _, op := range aops {
		for _, alias := range slices.Sorted(maps.Keys(op.side(field))) {
			if _, ok := x.graph.TryGet(alias); !ok {
				return newError(CodeNodeNotFound, alias, "recorded node no longer exists")
			}
		}
	}
	return nil
}

func (x *Executer) stream(ctx context.Context, aops []AOp, field Field) error {
	for i, op := range aops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := x.ExecAOp(op, field, i == len(aops)-1); err != nil {
			return err
		}
	}
	return nil
}
