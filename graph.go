package easel

import "sync"

type graphEntry struct {
	node   Node
	parent *Group // nil for roots
}

// Graph is the scene tree plus a flat alias index. Every structural mutation
// validates first and then updates tree and index together, so a failed call
// leaves both untouched.
//
// Graph is safe for concurrent use. Callbacks passed to Walk, View and Mutate
// run under the graph lock and must not call back into the graph.
type Graph struct {
	mu    sync.RWMutex
	roots []Node
	index map[string]*graphEntry
}

// NewGraph builds a graph from root nodes, indexing every subtree in
// pre-order. It fails with DUPLICATE_ALIAS on the first collision.
func NewGraph(roots ...Node) (*Graph, error) {
	g := &Graph{index: make(map[string]*graphEntry)}
	for _, r := range roots {
		if err := g.Add(r, ""); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// --- Lookup ---

// Get returns the node with alias or a NODE_NOT_FOUND error.
func (g *Graph) Get(alias string) (Node, error) {
	if n, ok := g.TryGet(alias); ok {
		return n, nil
	}
	return nil, newError(CodeNodeNotFound, alias, "node not found")
}

// TryGet returns the node with alias, if any.
func (g *Graph) TryGet(alias string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.index[alias]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Parent returns the group containing alias. Roots have no parent.
func (g *Graph) Parent(alias string) (*Group, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.index[alias]
	if !ok || e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

// Len returns the number of indexed nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.index)
}

// Roots returns a copy of the root list.
func (g *Graph) Roots() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Node(nil), g.roots...)
}

// AllNodes returns every node in pre-order. The slice is a snapshot.
func (g *Graph) AllNodes() []Node {
	out := make([]Node, 0, g.Len())
	g.Walk(func(n Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// AllSingleNodes returns every leaf node in pre-order. The slice is a snapshot.
func (g *Graph) AllSingleNodes() []SingleNode {
	var out []SingleNode
	g.Walk(func(n Node, _ int) bool {
		if s, ok := n.(SingleNode); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Walk visits every node in pre-order with its depth. Returning false stops
// the walk.
func (g *Graph) Walk(fn func(n Node, depth int) bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.roots {
		if !walkNode(r, 0, fn) {
			return
		}
	}
}

// View runs fn on the node with alias under the read lock.
func (g *Graph) View(alias string, fn func(Node)) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.index[alias]
	if !ok {
		return newError(CodeNodeNotFound, alias, "node not found")
	}
	fn(e.node)
	return nil
}

// Mutate runs fn on the node with alias under the write lock. Use it for
// property edits while a renderer is running.
func (g *Graph) Mutate(alias string, fn func(Node) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.index[alias]
	if !ok {
		return newError(CodeNodeNotFound, alias, "node not found")
	}
	return fn(e.node)
}

// MutateAll runs fn on every listed alias under one write lock. All aliases
// are resolved before fn is called for any of them.
func (g *Graph) MutateAll(aliases []string, fn func(Node) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	nodes := make([]Node, len(aliases))
	for i, a := range aliases {
		e, ok := g.index[a]
		if !ok {
			return newError(CodeNodeNotFound, a, "node not found")
		}
		nodes[i] = e.node
	}
	for _, n := range nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// --- Mutation ---

// Add inserts node, with its whole subtree, under the group aliased parent,
// or at the root when parent is empty.
func (g *Graph) Add(node Node, parent string) error {
	if node == nil {
		panic("easel: Add called with nil node")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkAliases(node, nil); err != nil {
		return err
	}
	pg, err := g.parentGroup(parent)
	if err != nil {
		return err
	}
	g.indexSubtree(node, pg)
	if pg == nil {
		g.roots = append(g.roots, node)
	} else {
		pg.appendChild(node)
	}
	return nil
}

// Update replaces the node at alias with node, keeping its parent and
// sibling position. The new subtree may reuse aliases of the replaced one.
func (g *Graph) Update(alias string, node Node) error {
	if node == nil {
		panic("easel: Update called with nil node")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.index[alias]
	if !ok {
		return newError(CodeNodeNotFound, alias, "node not found")
	}
	replaced := make(map[string]bool)
	walkNode(e.node, 0, func(n Node, _ int) bool {
		replaced[n.Alias()] = true
		return true
	})
	if err := g.checkAliases(node, replaced); err != nil {
		return err
	}

	parent := e.parent
	g.unindexSubtree(e.node)
	if parent == nil {
		i := indexOf(g.roots, e.node)
		g.roots[i] = node
	} else {
		i := parent.removeChild(e.node)
		parent.insertChild(i, node)
	}
	g.indexSubtree(node, parent)
	return nil
}

// Delete removes the node at alias and all its descendants.
func (g *Graph) Delete(alias string) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.delete(alias)
	if n == nil {
		return nil, newError(CodeNodeNotFound, alias, "node not found")
	}
	return n, nil
}

// TryDelete is Delete without the not-found error; it returns nil when alias
// is absent.
func (g *Graph) TryDelete(alias string) Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delete(alias)
}

func (g *Graph) delete(alias string) Node {
	e, ok := g.index[alias]
	if !ok {
		return nil
	}
	if e.parent == nil {
		i := indexOf(g.roots, e.node)
		copy(g.roots[i:], g.roots[i+1:])
		g.roots[len(g.roots)-1] = nil
		g.roots = g.roots[:len(g.roots)-1]
	} else {
		e.parent.removeChild(e.node)
	}
	g.unindexSubtree(e.node)
	return e.node
}

// --- Internal ---

// checkAliases fails with DUPLICATE_ALIAS if any alias in node's subtree is
// repeated or already indexed. Aliases in exempt may be reused.
func (g *Graph) checkAliases(node Node, exempt map[string]bool) error {
	seen := make(map[string]bool)
	var err error
	walkNode(node, 0, func(n Node, _ int) bool {
		a := n.Alias()
		_, indexed := g.index[a]
		if seen[a] || (indexed && !exempt[a]) {
			err = newError(CodeDuplicateAlias, a, "alias already exists")
			return false
		}
		seen[a] = true
		return true
	})
	return err
}

func (g *Graph) parentGroup(parent string) (*Group, error) {
	if parent == "" {
		return nil, nil
	}
	e, ok := g.index[parent]
	if !ok {
		return nil, newError(CodeParentNotFound, parent, "parent not found")
	}
	pg, ok := e.node.(*Group)
	if !ok {
		return nil, newError(CodeNotAGroup, parent, "parent is a %s, not a group", e.node.Kind())
	}
	return pg, nil
}

func (g *Graph) indexSubtree(node Node, parent *Group) {
	g.index[node.Alias()] = &graphEntry{node: node, parent: parent}
	if grp, ok := node.(*Group); ok {
		for _, c := range grp.children {
			g.indexSubtree(c, grp)
		}
	}
}

func (g *Graph) unindexSubtree(node Node) {
	walkNode(node, 0, func(n Node, _ int) bool {
		delete(g.index, n.Alias())
		return true
	})
}

func indexOf(nodes []Node, n Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}
