package easel

import (
	"context"
	"slices"
)

// World ties a graph to its renderer, operation log, viewport and input
// dispatcher. It is the usual entry point for applications.
type World struct {
	cfg      Config
	graph    *Graph
	renderer *Renderer
	executer *Executer
	viewport *Viewport
	input    *Input
}

// NewWorld builds a world holding roots, rendering through backend.
func NewWorld(backend Backend, cfg Config, roots ...Node) (*World, error) {
	g, err := NewGraph(roots...)
	if err != nil {
		return nil, err
	}
	return newWorld(backend, cfg, g)
}

func newWorld(backend Backend, cfg Config, g *Graph) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := NewRenderer(g, backend, RendererOptions{Retry: cfg.RetryPolicy()})
	return &World{
		cfg:      cfg,
		graph:    g,
		renderer: r,
		executer: NewExecuter(r, cfg.History.MaxRecords),
		viewport: NewViewport(r, cfg.Viewport),
		input:    NewInput(),
	}, nil
}

func (w *World) Config() Config      { return w.cfg }
func (w *World) Graph() *Graph       { return w.graph }
func (w *World) Renderer() *Renderer { return w.renderer }
func (w *World) Executer() *Executer { return w.executer }
func (w *World) Viewport() *Viewport { return w.viewport }
func (w *World) Input() *Input       { return w.input }

// UseDefaultHandlers installs drag, shortcut and wheel handlers, in that
// order.
func (w *World) UseDefaultHandlers() {
	w.input.Use(NewDragHandler(w))
	w.input.Use(NewShortcutHandler(w.executer))
	w.input.Use(NewWheelHandler(w.viewport))
}

// Start creates a render node for every single node and queues a full
// render of the scene.
func (w *World) Start(ctx context.Context) error {
	if err := w.renderer.Start(ctx); err != nil {
		return err
	}
	w.renderer.MarkAll(RenderInfo{Level: AllDirty, Queue: Immediate})
	w.renderer.Refresh()
	return nil
}

// Close drains the renderer and releases backend resources.
func (w *World) Close() error { return w.renderer.Close() }

// Add inserts node under parent ("" for a root) and queues a full render
// of it.
func (w *World) Add(node Node, parent string) error {
	if err := w.graph.Add(node, parent); err != nil {
		return err
	}
	return w.renderer.SetRenderInfo(node.Alias(), RenderInfo{Level: AllDirty, Queue: Immediate}, true)
}

// Delete removes the node with alias and its subtree, dropping their render
// nodes.
func (w *World) Delete(alias string) (Node, error) {
	n, err := w.graph.Delete(alias)
	if err != nil {
		return nil, err
	}
	w.renderer.Forget(subtreeAliases(n)...)
	return n, nil
}

// Replace swaps the node at alias for node, keeping its place in the tree.
// Render nodes of aliases that left the tree are dropped and the new subtree
// is queued for a full render.
func (w *World) Replace(alias string, node Node) error {
	var before []string
	if err := w.graph.View(alias, func(n Node) { before = subtreeAliases(n) }); err != nil {
		return err
	}
	if err := w.graph.Update(alias, node); err != nil {
		return err
	}
	kept := make(map[string]bool)
	for _, a := range subtreeAliases(node) {
		kept[a] = true
	}
	var gone []string
	for _, a := range before {
		if !kept[a] {
			gone = append(gone, a)
		}
	}
	w.renderer.Forget(gone...)
	return w.renderer.SetRenderInfo(node.Alias(), RenderInfo{Level: AllDirty, Queue: Immediate}, true)
}

func subtreeAliases(n Node) []string {
	var out []string
	walkNode(n, 0, func(c Node, _ int) bool {
		out = append(out, c.Alias())
		return true
	})
	return out
}

// Pointed returns the single nodes whose bbox contains the world point p,
// top-most first: higher z wins, then later in pre-order.
func (w *World) Pointed(p Point) []SingleNode {
	type hit struct {
		n     SingleNode
		order int
	}
	var hits []hit
	order := 0
	w.graph.Walk(func(n Node, _ int) bool {
		order++
		if s, ok := n.(SingleNode); ok && s.BBox().Contains(p) {
			hits = append(hits, hit{s, order})
		}
		return true
	})
	slices.SortFunc(hits, func(a, b hit) int {
		switch {
		case a.n.Z() > b.n.Z():
			return -1
		case a.n.Z() < b.n.Z():
			return 1
		}
		return b.order - a.order
	})
	out := make([]SingleNode, len(hits))
	for i, h := range hits {
		out[i] = h.n
	}
	return out
}

// moveLive moves alias to p and refreshes without recording history.
func (w *World) moveLive(alias string, p Point) error {
	err := w.graph.Mutate(alias, func(n Node) error {
		n.SetPosition(p)
		return nil
	})
	if err != nil {
		return err
	}
	return w.renderer.SetRenderInfo(alias, RenderInfo{Level: TransformDirty, Queue: Immediate}, true)
}

// Update advances time-based state such as viewport scrolling.
func (w *World) Update(dt float32) {
	w.viewport.Update(dt)
}

// WorldData is the serializable form of a World.
type WorldData struct {
	Graph    GraphData       `json:"graph"`
	Viewport Matrix2D        `json:"viewport"`
	History  RecordStackData `json:"history"`
}

// ToData snapshots the graph, viewport transform and history.
func (w *World) ToData() WorldData {
	return WorldData{
		Graph:    w.graph.ToData(),
		Viewport: w.viewport.Transform(),
		History:  w.executer.History(),
	}
}

// WorldFromData rebuilds a world. A zero viewport transform is treated as
// identity.
func WorldFromData(backend Backend, cfg Config, d WorldData) (*World, error) {
	g, err := GraphFromData(d.Graph)
	if err != nil {
		return nil, err
	}
	w, err := newWorld(backend, cfg, g)
	if err != nil {
		return nil, err
	}
	if d.Viewport != (Matrix2D{}) {
		w.renderer.mu.Lock()
		w.renderer.global = d.Viewport
		w.renderer.mu.Unlock()
	}
	w.executer.SetHistory(d.History)
	return w, nil
}
