package easel

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// Retry wraps every render node when Attempts > 1.
	Retry RetryPolicy
	// OnError is called for every failed node update, after retries.
	OnError func(alias string, err error)
}

// renderEntry pairs a graph node with its backend handle.
type renderEntry struct {
	node SingleNode
	rn   RenderNode

	mu          sync.Mutex
	initialized bool
}

// Renderer tracks pending render requests per node and delivers them to the
// backend through two independent queues. Within a queue batches never
// overlap; inside a batch node updates run concurrently.
type Renderer struct {
	graph   *Graph
	backend Backend
	opts    RendererOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	infos  map[string]RenderInfo
	global Matrix2D

	entriesMu sync.Mutex
	entries   map[string]*renderEntry

	immediate *renderQueue
	offload   *renderQueue
}

// NewRenderer returns a renderer over graph. Nothing is drawn until Start or
// the first Refresh.
func NewRenderer(graph *Graph, backend Backend, opts RendererOptions) *Renderer {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		graph:   graph,
		backend: backend,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		infos:   make(map[string]RenderInfo),
		global:  Identity(),
		entries: make(map[string]*renderEntry),
	}
	r.immediate = newRenderQueue("immediate", r.runBatch)
	r.offload = newRenderQueue("offload", r.runBatch)
	return r
}

// Graph returns the graph being rendered.
func (r *Renderer) Graph() *Graph { return r.graph }

// Start initializes a render node for every single node in the graph.
func (r *Renderer) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, n := range r.graph.AllSingleNodes() {
		eg.Go(func() error {
			_, err := r.ensure(ctx, n)
			return err
		})
	}
	return eg.Wait()
}

// Close waits for both queues to drain, disposes all render nodes and
// cancels the context passed to backend calls.
func (r *Renderer) Close() error {
	err := r.WaitAll(context.Background())
	r.cancel()
	r.entriesMu.Lock()
	defer r.entriesMu.Unlock()
	for alias, e := range r.entries {
		if d, ok := e.rn.(Disposer); ok {
			d.Dispose()
		}
		delete(r.entries, alias)
	}
	return err
}

// --- Render requests ---

// SetRenderInfo merges info into the pending request of alias. A group
// forwards the request to every single descendant. With refresh set, the
// pending requests are flushed right away.
func (r *Renderer) SetRenderInfo(alias string, info RenderInfo, refresh bool) error {
	var targets []string
	err := r.graph.View(alias, func(n Node) {
		walkNode(n, 0, func(c Node, _ int) bool {
			if _, ok := c.(SingleNode); ok {
				targets = append(targets, c.Alias())
			}
			return true
		})
	})
	if err != nil {
		return err
	}
	r.mark(targets, info)
	if refresh {
		r.Refresh()
	}
	return nil
}

// MarkAll merges info into every single node.
func (r *Renderer) MarkAll(info RenderInfo) {
	nodes := r.graph.AllSingleNodes()
	aliases := make([]string, len(nodes))
	for i, n := range nodes {
		aliases[i] = n.Alias()
	}
	r.mark(aliases, info)
}

func (r *Renderer) mark(aliases []string, info RenderInfo) {
	if info.Level == Clean {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range aliases {
		r.infos[a] = r.infos[a].Merge(info)
	}
}

// RenderInfo returns the pending request of alias; Clean when none.
func (r *Renderer) RenderInfo(alias string) RenderInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.infos[alias]
}

// Refresh partitions pending requests by queue, resets them to Clean and
// pushes one batch per non-empty queue. It does not block.
func (r *Renderer) Refresh() {
	imm := make(RenderInfoMap)
	off := make(RenderInfoMap)
	r.mu.Lock()
	for alias, info := range r.infos {
		if info.Level == Clean {
			continue
		}
		if info.Queue == Offload {
			off[alias] = info
		} else {
			imm[alias] = info
		}
	}
	clear(r.infos)
	r.mu.Unlock()

	if len(imm) > 0 {
		r.immediate.push(imm)
	}
	if len(off) > 0 {
		r.offload.push(off)
	}
}

// Wait blocks until the immediate queue is empty.
func (r *Renderer) Wait(ctx context.Context) error {
	return r.immediate.wait(ctx)
}

// WaitAll blocks until both queues are empty.
func (r *Renderer) WaitAll(ctx context.Context) error {
	if err := r.immediate.wait(ctx); err != nil {
		return err
	}
	return r.offload.wait(ctx)
}

// Stats returns counters for the immediate and offload queues.
func (r *Renderer) Stats() (immediate, offload QueueStats) {
	return r.immediate.snapshot(), r.offload.snapshot()
}

// --- Global transform ---

// GlobalTransform is applied on top of every node transform when drawing.
func (r *Renderer) GlobalTransform() Matrix2D {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.global
}

// SetGlobalTransform replaces the global transform, marks every single node
// TransformDirty on the immediate queue and refreshes.
func (r *Renderer) SetGlobalTransform(m Matrix2D) {
	r.mu.Lock()
	r.global = m
	r.mu.Unlock()
	r.MarkAll(RenderInfo{Level: TransformDirty, Queue: Immediate})
	r.Refresh()
}

// --- Render nodes ---

// RenderNode returns the backend handle of alias, if one was created.
func (r *Renderer) RenderNode(alias string) (RenderNode, bool) {
	r.entriesMu.Lock()
	defer r.entriesMu.Unlock()
	e, ok := r.entries[alias]
	if !ok {
		return nil, false
	}
	return e.rn, true
}

// Forget drops the render nodes and pending requests of the given aliases,
// disposing backend resources.
func (r *Renderer) Forget(aliases ...string) {
	r.mu.Lock()
	for _, a := range aliases {
		delete(r.infos, a)
	}
	r.mu.Unlock()

	r.entriesMu.Lock()
	defer r.entriesMu.Unlock()
	for _, a := range aliases {
		if e, ok := r.entries[a]; ok {
			if d, ok := e.rn.(Disposer); ok {
				d.Dispose()
			}
			delete(r.entries, a)
		}
	}
}

// ensure returns an initialized entry for n, replacing a stale entry left
// behind by a node that was swapped out under the same alias.
func (r *Renderer) ensure(ctx context.Context, n SingleNode) (*renderEntry, error) {
	r.entriesMu.Lock()
	e, ok := r.entries[n.Alias()]
	if !ok || e.node != n {
		if ok {
			if d, ok := e.rn.(Disposer); ok {
				d.Dispose()
			}
		}
		rn, err := newRenderNode(r.backend, n)
		if err != nil {
			r.entriesMu.Unlock()
			return nil, err
		}
		if r.opts.Retry.Attempts > 1 {
			rn = WithRetry(n.Alias(), rn, r.opts.Retry)
		}
		e = &renderEntry{node: n, rn: rn}
		r.entries[n.Alias()] = e
	}
	r.entriesMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		if err := e.rn.Initialize(ctx, r); err != nil {
			return nil, err
		}
		e.initialized = true
	}
	return e, nil
}

// runBatch executes one batch: every node update is started concurrently
// and the batch completes once all of them settle. A failing node never
// stops its siblings.
func (r *Renderer) runBatch(batch RenderInfoMap) {
	log := Logger()
	var eg errgroup.Group
	for _, alias := range batch.Aliases() {
		info := batch[alias]
		if info.Level == Clean {
			log.Warn("clean node in render batch", "alias", alias)
			continue
		}
		node, ok := r.graph.TryGet(alias)
		if !ok {
			log.Warn("node disappeared before render", "alias", alias, "level", info.Level)
			continue
		}
		single, ok := node.(SingleNode)
		if !ok {
			log.Warn("render request for non-renderable node", "alias", alias, "kind", node.Kind())
			continue
		}
		eg.Go(func() error {
			err := r.update(single, info.Level)
			if err != nil {
				if r.opts.OnError != nil {
					r.opts.OnError(alias, err)
				}
				log.Error("render update failed", "alias", alias, "level", info.Level, "err", err)
			}
			return err
		})
	}
	_ = eg.Wait()
}

func (r *Renderer) update(n SingleNode, level DirtyLevel) error {
	e, err := r.ensure(r.ctx, n)
	if err != nil {
		return err
	}
	switch level {
	case TransformDirty:
		return e.rn.UpdateTransform(r.ctx, r)
	case ContentDirty:
		return e.rn.UpdateContent(r.ctx, r)
	default:
		return e.rn.ReRender(r.ctx, r)
	}
}
