package easel

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

// --- Fake backend ---

type fakeCall struct {
	alias string
	op    string
}

// fakeBackend records every render call. An alias listed in gates blocks its
// next non-initialize call until the gate is closed.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []fakeCall
	disposed []string
	gates    map[string]chan struct{}
	started  chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{gates: make(map[string]chan struct{}), started: make(chan string, 16)}
}

func (b *fakeBackend) NewRectangle(n *Rectangle) RenderNode { return &fakeNode{b: b, alias: n.Alias()} }
func (b *fakeBackend) NewText(n *Text) RenderNode           { return &fakeNode{b: b, alias: n.Alias()} }
func (b *fakeBackend) NewImage(n *Image) RenderNode         { return &fakeNode{b: b, alias: n.Alias()} }

func (b *fakeBackend) gate(alias string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.gates[alias] = ch
	return ch
}

func (b *fakeBackend) record(alias, op string) {
	b.mu.Lock()
	b.calls = append(b.calls, fakeCall{alias, op})
	var gate chan struct{}
	if op != "initialize" {
		gate = b.gates[alias]
		delete(b.gates, alias)
	}
	b.mu.Unlock()
	if gate != nil {
		b.started <- alias
		<-gate
	}
}

// ops returns the update calls of alias, initialize excluded.
func (b *fakeBackend) ops(alias string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.calls {
		if c.alias == alias && c.op != "initialize" {
			out = append(out, c.op)
		}
	}
	return out
}

func (b *fakeBackend) count(alias, op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.alias == alias && c.op == op {
			n++
		}
	}
	return n
}

type fakeNode struct {
	b     *fakeBackend
	alias string
}

func (n *fakeNode) Initialize(context.Context, *Renderer) error {
	n.b.record(n.alias, "initialize")
	return nil
}

func (n *fakeNode) UpdateTransform(context.Context, *Renderer) error {
	n.b.record(n.alias, "transform")
	return nil
}

func (n *fakeNode) UpdateContent(context.Context, *Renderer) error {
	n.b.record(n.alias, "content")
	return nil
}

func (n *fakeNode) ReRender(context.Context, *Renderer) error {
	n.b.record(n.alias, "all")
	return nil
}

func (n *fakeNode) Dispose() {
	n.b.mu.Lock()
	defer n.b.mu.Unlock()
	n.b.disposed = append(n.b.disposed, n.alias)
}

func newTestRenderer(t *testing.T, roots ...Node) (*Renderer, *fakeBackend) {
	t.Helper()
	g, err := NewGraph(roots...)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	b := newFakeBackend()
	r := NewRenderer(g, b, RendererOptions{})
	t.Cleanup(func() { _ = r.Close() })
	return r, b
}

func waitAll(t *testing.T, r *Renderer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.WaitAll(ctx); err != nil {
		t.Fatalf("WaitAll: %v", err)
	}
}

func assertOps(t *testing.T, b *fakeBackend, alias string, want ...string) {
	t.Helper()
	if got := b.ops(alias); !slices.Equal(got, want) {
		t.Errorf("ops(%s) = %v, want %v", alias, got, want)
	}
}

// --- RenderInfo ---

func TestRenderInfoMerge(t *testing.T) {
	tests := []struct {
		name string
		a, b RenderInfo
		want RenderInfo
	}{
		{"higher wins", RenderInfo{TransformDirty, Immediate}, RenderInfo{AllDirty, Offload}, RenderInfo{AllDirty, Offload}},
		{"lower loses", RenderInfo{ContentDirty, Offload}, RenderInfo{TransformDirty, Immediate}, RenderInfo{ContentDirty, Offload}},
		{"tie prefers immediate", RenderInfo{ContentDirty, Offload}, RenderInfo{ContentDirty, Immediate}, RenderInfo{ContentDirty, Immediate}},
		{"tie keeps immediate", RenderInfo{ContentDirty, Immediate}, RenderInfo{ContentDirty, Offload}, RenderInfo{ContentDirty, Immediate}},
		{"clean absorbs", RenderInfo{}, RenderInfo{TransformDirty, Offload}, RenderInfo{TransformDirty, Offload}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Merge(tt.b); got != tt.want {
				t.Errorf("Merge = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsSubRenderInfo(t *testing.T) {
	tr := RenderInfo{Level: TransformDirty}
	all := RenderInfo{Level: AllDirty}
	tests := []struct {
		name       string
		prev, next RenderInfoMap
		want       bool
	}{
		{"equal", RenderInfoMap{"a": tr}, RenderInfoMap{"a": tr}, true},
		{"higher level", RenderInfoMap{"a": tr}, RenderInfoMap{"a": all}, true},
		{"superset", RenderInfoMap{"a": tr}, RenderInfoMap{"a": tr, "b": tr}, true},
		{"lower level", RenderInfoMap{"a": all}, RenderInfoMap{"a": tr}, false},
		{"missing alias", RenderInfoMap{"a": tr, "b": tr}, RenderInfoMap{"a": all, "c": all}, false},
		{"empty prev", RenderInfoMap{}, RenderInfoMap{"a": tr}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSubRenderInfo(tt.prev, tt.next); got != tt.want {
				t.Errorf("IsSubRenderInfo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirtyLevelText(t *testing.T) {
	for l := Clean; l <= AllDirty; l++ {
		b, err := l.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back DirtyLevel
		if err := back.UnmarshalText(b); err != nil || back != l {
			t.Errorf("round trip %s = %s, %v", l, back, err)
		}
	}
	var q TargetQueue
	if err := q.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("unknown queue should fail")
	}
}

// --- Scheduling ---

func TestMergedRequestRendersOnce(t *testing.T) {
	r, b := newTestRenderer(t, NewRectangle("a", 0, 0, 10, 10))
	if err := r.SetRenderInfo("a", RenderInfo{TransformDirty, Immediate}, false); err != nil {
		t.Fatal(err)
	}
	if err := r.SetRenderInfo("a", RenderInfo{AllDirty, Immediate}, false); err != nil {
		t.Fatal(err)
	}
	if got := r.RenderInfo("a"); got.Level != AllDirty {
		t.Errorf("pending level = %s, want all", got.Level)
	}
	r.Refresh()
	waitAll(t, r)

	assertOps(t, b, "a", "all")
	if b.count("a", "initialize") != 1 {
		t.Errorf("initialize calls = %d, want 1", b.count("a", "initialize"))
	}
	if got := r.RenderInfo("a"); got.Level != Clean {
		t.Errorf("level after refresh = %s, want clean", got.Level)
	}
}

func TestSetRenderInfoMissing(t *testing.T) {
	r, _ := newTestRenderer(t)
	err := r.SetRenderInfo("ghost", RenderInfo{AllDirty, Immediate}, true)
	if !IsCode(err, CodeNodeNotFound) {
		t.Errorf("err = %v, want %s", err, CodeNodeNotFound)
	}
}

func TestSetRenderInfoGroupForwards(t *testing.T) {
	r, b := newTestRenderer(t, NewGroup("g",
		NewRectangle("g1", 0, 0, 1, 1),
		NewGroup("inner", NewText("g2", "x", 12, 0, 0, 1, 1)),
	))
	if err := r.SetRenderInfo("g", RenderInfo{ContentDirty, Immediate}, true); err != nil {
		t.Fatal(err)
	}
	waitAll(t, r)
	assertOps(t, b, "g1", "content")
	assertOps(t, b, "g2", "content")
	if len(b.ops("g")) != 0 || len(b.ops("inner")) != 0 {
		t.Error("groups must not be rendered")
	}
}

func TestReplacedBatchNeverRuns(t *testing.T) {
	r, b := newTestRenderer(t,
		NewRectangle("a", 0, 0, 1, 1),
		NewRectangle("b", 0, 0, 1, 1),
		NewRectangle("c", 0, 0, 1, 1),
	)
	release := b.gate("a")

	// First batch occupies the worker.
	_ = r.SetRenderInfo("a", RenderInfo{AllDirty, Immediate}, true)
	<-b.started

	// Second batch waits; the third subsumes it.
	_ = r.SetRenderInfo("b", RenderInfo{TransformDirty, Immediate}, true)
	_ = r.SetRenderInfo("b", RenderInfo{ContentDirty, Immediate}, false)
	_ = r.SetRenderInfo("c", RenderInfo{TransformDirty, Immediate}, true)

	close(release)
	waitAll(t, r)

	assertOps(t, b, "b", "content")
	assertOps(t, b, "c", "transform")

	imm, off := r.Stats()
	if imm.Pushed != 3 || imm.Replaced != 1 || imm.Executed != 2 {
		t.Errorf("immediate stats = %+v, want pushed 3, replaced 1, executed 2", imm)
	}
	if off != (QueueStats{}) {
		t.Errorf("offload stats = %+v, want zero", off)
	}
}

func TestNonSubsumedBatchQueues(t *testing.T) {
	r, b := newTestRenderer(t,
		NewRectangle("a", 0, 0, 1, 1),
		NewRectangle("b", 0, 0, 1, 1),
		NewRectangle("c", 0, 0, 1, 1),
	)
	release := b.gate("a")
	_ = r.SetRenderInfo("a", RenderInfo{AllDirty, Immediate}, true)
	<-b.started

	_ = r.SetRenderInfo("b", RenderInfo{ContentDirty, Immediate}, true)
	_ = r.SetRenderInfo("c", RenderInfo{TransformDirty, Immediate}, true)

	close(release)
	waitAll(t, r)

	assertOps(t, b, "b", "content")
	assertOps(t, b, "c", "transform")
	imm, _ := r.Stats()
	if imm.Replaced != 0 || imm.Executed != 3 {
		t.Errorf("stats = %+v, want replaced 0, executed 3", imm)
	}
}

func TestQueuesAreIndependent(t *testing.T) {
	r, b := newTestRenderer(t,
		NewRectangle("slow", 0, 0, 1, 1),
		NewRectangle("fast", 0, 0, 1, 1),
	)
	release := b.gate("slow")
	_ = r.SetRenderInfo("slow", RenderInfo{ContentDirty, Offload}, true)
	<-b.started

	_ = r.SetRenderInfo("fast", RenderInfo{TransformDirty, Immediate}, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	assertOps(t, b, "fast", "transform")

	close(release)
	waitAll(t, r)
	assertOps(t, b, "slow", "content")
}

func TestWaitHonorsContext(t *testing.T) {
	r, b := newTestRenderer(t, NewRectangle("a", 0, 0, 1, 1))
	release := b.gate("a")
	defer close(release)
	_ = r.SetRenderInfo("a", RenderInfo{AllDirty, Immediate}, true)
	<-b.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want deadline exceeded", err)
	}
}

func TestMissingNodeSkipped(t *testing.T) {
	r, b := newTestRenderer(t,
		NewRectangle("keep", 0, 0, 1, 1),
		NewRectangle("gone", 0, 0, 1, 1),
	)
	_ = r.SetRenderInfo("keep", RenderInfo{AllDirty, Immediate}, false)
	_ = r.SetRenderInfo("gone", RenderInfo{AllDirty, Immediate}, false)
	if _, err := r.Graph().Delete("gone"); err != nil {
		t.Fatal(err)
	}
	r.Refresh()
	waitAll(t, r)

	assertOps(t, b, "keep", "all")
	assertOps(t, b, "gone")
}

func TestCleanIsIgnored(t *testing.T) {
	r, b := newTestRenderer(t, NewRectangle("a", 0, 0, 1, 1))
	_ = r.SetRenderInfo("a", RenderInfo{Clean, Immediate}, true)
	waitAll(t, r)
	assertOps(t, b, "a")
	if imm, _ := r.Stats(); imm.Pushed != 0 {
		t.Errorf("pushed = %d, want 0", imm.Pushed)
	}
}

func TestSetGlobalTransformMarksAll(t *testing.T) {
	r, b := newTestRenderer(t,
		NewRectangle("a", 0, 0, 1, 1),
		NewGroup("g", NewRectangle("b", 0, 0, 1, 1)),
	)
	r.SetGlobalTransform(MoveMatrix(5, 5))
	waitAll(t, r)
	assertOps(t, b, "a", "transform")
	assertOps(t, b, "b", "transform")
	assertMatrix(t, "global", r.GlobalTransform(), MoveMatrix(5, 5))
}

// --- Render node lifecycle ---

func TestStartInitializesEveryNode(t *testing.T) {
	r, b := newTestRenderer(t,
		NewRectangle("a", 0, 0, 1, 1),
		NewGroup("g", NewImage("i", "x.png", 0, 0, 1, 1)),
	)
	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, a := range []string{"a", "i"} {
		if b.count(a, "initialize") != 1 {
			t.Errorf("initialize(%s) = %d, want 1", a, b.count(a, "initialize"))
		}
		if _, ok := r.RenderNode(a); !ok {
			t.Errorf("no render node for %s", a)
		}
	}
}

func TestForgetDisposes(t *testing.T) {
	r, b := newTestRenderer(t, NewRectangle("a", 0, 0, 1, 1))
	_ = r.Start(context.Background())
	r.Forget("a")
	if _, ok := r.RenderNode("a"); ok {
		t.Error("render node should be dropped")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Equal(b.disposed, []string{"a"}) {
		t.Errorf("disposed = %v, want [a]", b.disposed)
	}
}

func TestStaleEntryReplaced(t *testing.T) {
	r, b := newTestRenderer(t, NewRectangle("a", 0, 0, 1, 1))
	_ = r.Start(context.Background())
	if err := r.Graph().Update("a", NewText("a", "now text", 12, 0, 0, 1, 1)); err != nil {
		t.Fatal(err)
	}
	_ = r.SetRenderInfo("a", RenderInfo{AllDirty, Immediate}, true)
	waitAll(t, r)

	if b.count("a", "initialize") != 2 {
		t.Errorf("initialize calls = %d, want 2", b.count("a", "initialize"))
	}
	b.mu.Lock()
	disposed := slices.Clone(b.disposed)
	b.mu.Unlock()
	if !slices.Equal(disposed, []string{"a"}) {
		t.Errorf("disposed = %v, want [a]", disposed)
	}
}

// --- Retry ---

type flakyNode struct {
	nopRenderNode
	mu    sync.Mutex
	fails int
	tries int
}

func (n *flakyNode) ReRender(context.Context, *Renderer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tries++
	if n.tries <= n.fails {
		return errors.New("backend busy")
	}
	return nil
}

func TestWithRetryRecovers(t *testing.T) {
	inner := &flakyNode{fails: 2}
	rn := WithRetry("a", inner, RetryPolicy{Attempts: 3})
	if err := rn.ReRender(context.Background(), nil); err != nil {
		t.Fatalf("ReRender: %v", err)
	}
	if inner.tries != 3 {
		t.Errorf("tries = %d, want 3", inner.tries)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	inner := &flakyNode{fails: 5}
	var failedOp string
	rn := WithRetry("a", inner, RetryPolicy{
		Attempts:  2,
		OnFailure: func(alias, op string, err error) { failedOp = alias + "/" + op },
	})
	if err := rn.ReRender(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if inner.tries != 2 {
		t.Errorf("tries = %d, want 2", inner.tries)
	}
	if failedOp != "a/reRender" {
		t.Errorf("OnFailure got %q, want a/reRender", failedOp)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	inner := &flakyNode{fails: 5}
	rn := WithRetry("a", inner, RetryPolicy{Attempts: 5, Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rn.ReRender(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want canceled", err)
	}
	if inner.tries != 1 {
		t.Errorf("tries = %d, want 1", inner.tries)
	}
}

func TestWithRetryKeepsDisposer(t *testing.T) {
	b := newFakeBackend()
	rn := WithRetry("a", &fakeNode{b: b, alias: "a"}, RetryPolicy{Attempts: 2})
	d, ok := rn.(Disposer)
	if !ok {
		t.Fatal("wrapper should implement Disposer")
	}
	d.Dispose()
	if len(b.disposed) != 1 {
		t.Errorf("disposed = %v", b.disposed)
	}
}

func TestRendererRetriesFailedUpdates(t *testing.T) {
	g, _ := NewGraph(NewRectangle("a", 0, 0, 1, 1))
	inner := &flakyNode{fails: 1}
	var errs []string
	r := NewRenderer(g, singleNodeBackend{inner}, RendererOptions{
		Retry:   RetryPolicy{Attempts: 2},
		OnError: func(alias string, err error) { errs = append(errs, alias) },
	})
	defer r.Close()
	_ = r.SetRenderInfo("a", RenderInfo{AllDirty, Immediate}, true)
	waitAll(t, r)
	if inner.tries != 2 {
		t.Errorf("tries = %d, want 2", inner.tries)
	}
	if len(errs) != 0 {
		t.Errorf("OnError called for %v", errs)
	}
}

// singleNodeBackend hands out the same render node for every node.
type singleNodeBackend struct{ rn RenderNode }

func (b singleNodeBackend) NewRectangle(*Rectangle) RenderNode { return b.rn }
func (b singleNodeBackend) NewText(*Text) RenderNode           { return b.rn }
func (b singleNodeBackend) NewImage(*Image) RenderNode         { return b.rn }
