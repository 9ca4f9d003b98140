package easel

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
)

func aliases(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Alias()
	}
	return out
}

func assertAliases(t *testing.T, name string, got []Node, want ...string) {
	t.Helper()
	g := aliases(got)
	if len(g) != len(want) {
		t.Fatalf("%s = %v, want %v", name, g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("%s = %v, want %v", name, g, want)
		}
	}
}

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph(
		NewRectangle("a", 0, 0, 10, 10),
		NewGroup("g",
			NewRectangle("g1", 20, 20, 10, 10),
			NewRectangle("g2", 40, 40, 10, 10),
		),
		NewText("t", "hi", 16, 0, 100, 50, 20),
	)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

// --- Construction ---

func TestNewGraphIndexesPreOrder(t *testing.T) {
	g := newTestGraph(t)
	if g.Len() != 5 {
		t.Errorf("Len = %d, want 5", g.Len())
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "g", "g1", "g2", "t")

	singles := g.AllSingleNodes()
	if len(singles) != 4 {
		t.Errorf("AllSingleNodes len = %d, want 4", len(singles))
	}
	if p, ok := g.Parent("g2"); !ok || p.Alias() != "g" {
		t.Errorf("Parent(g2) = %v, %v", p, ok)
	}
	if _, ok := g.Parent("a"); ok {
		t.Error("root should have no parent")
	}
}

func TestNewGraphDuplicateAlias(t *testing.T) {
	_, err := NewGraph(NewRectangle("x", 0, 0, 1, 1), NewGroup("g", NewRectangle("x", 0, 0, 1, 1)))
	if !IsCode(err, CodeDuplicateAlias) {
		t.Fatalf("err = %v, want %s", err, CodeDuplicateAlias)
	}
	if AliasOf(err) != "x" {
		t.Errorf("AliasOf = %q, want x", AliasOf(err))
	}
}

func TestGetMissing(t *testing.T) {
	g := newTestGraph(t)
	if _, err := g.Get("nope"); !IsCode(err, CodeNodeNotFound) {
		t.Errorf("Get err = %v, want %s", err, CodeNodeNotFound)
	}
	if _, ok := g.TryGet("nope"); ok {
		t.Error("TryGet should miss")
	}
}

// --- Add ---

func TestAddUnderGroup(t *testing.T) {
	g := newTestGraph(t)
	if err := g.Add(NewRectangle("g3", 0, 0, 1, 1), "g"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "g", "g1", "g2", "g3", "t")
	if p, _ := g.Parent("g3"); p.Alias() != "g" {
		t.Errorf("parent = %s, want g", p.Alias())
	}
}

func TestAddMissingParentLeavesNoTrace(t *testing.T) {
	g := newTestGraph(t)
	sub := NewGroup("new", NewRectangle("new1", 0, 0, 1, 1))
	err := g.Add(sub, "nope")
	if !IsCode(err, CodeParentNotFound) {
		t.Fatalf("err = %v, want %s", err, CodeParentNotFound)
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "g", "g1", "g2", "t")
	for _, a := range []string{"new", "new1"} {
		if _, ok := g.TryGet(a); ok {
			t.Errorf("%s should not be indexed", a)
		}
	}
}

func TestAddNotAGroup(t *testing.T) {
	g := newTestGraph(t)
	err := g.Add(NewRectangle("b", 0, 0, 1, 1), "a")
	if !IsCode(err, CodeNotAGroup) {
		t.Fatalf("err = %v, want %s", err, CodeNotAGroup)
	}
	if g.Len() != 5 {
		t.Errorf("Len = %d, want 5", g.Len())
	}
}

func TestAddDuplicateInSubtree(t *testing.T) {
	g := newTestGraph(t)
	err := g.Add(NewGroup("h", NewRectangle("g1", 0, 0, 1, 1)), "")
	if !IsCode(err, CodeDuplicateAlias) {
		t.Fatalf("err = %v, want %s", err, CodeDuplicateAlias)
	}
	if _, ok := g.TryGet("h"); ok {
		t.Error("h should not be indexed")
	}
}

// --- Update ---

func TestUpdateKeepsPosition(t *testing.T) {
	g := newTestGraph(t)
	if err := g.Update("g1", NewRectangle("g1b", 0, 0, 5, 5)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "g", "g1b", "g2", "t")
	if _, ok := g.TryGet("g1"); ok {
		t.Error("g1 should be unindexed")
	}
	if p, ok := g.Parent("g1b"); !ok || p.Alias() != "g" {
		t.Error("g1b should sit under g")
	}
}

func TestUpdateMayReuseAliases(t *testing.T) {
	g := newTestGraph(t)
	repl := NewGroup("g", NewRectangle("g2", 0, 0, 1, 1))
	if err := g.Update("g", repl); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "g", "g2", "t")
	if _, ok := g.TryGet("g1"); ok {
		t.Error("g1 should be unindexed")
	}
}

func TestUpdateRejectsForeignAlias(t *testing.T) {
	g := newTestGraph(t)
	err := g.Update("g1", NewRectangle("t", 0, 0, 1, 1))
	if !IsCode(err, CodeDuplicateAlias) {
		t.Fatalf("err = %v, want %s", err, CodeDuplicateAlias)
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "g", "g1", "g2", "t")
}

// --- Delete ---

func TestDeleteUnindexesSubtree(t *testing.T) {
	g := newTestGraph(t)
	n, err := g.Delete("g")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n.Alias() != "g" {
		t.Errorf("deleted %s, want g", n.Alias())
	}
	assertAliases(t, "AllNodes", g.AllNodes(), "a", "t")
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}
	if _, err := g.Delete("g1"); !IsCode(err, CodeNodeNotFound) {
		t.Errorf("Delete(g1) err = %v, want %s", err, CodeNodeNotFound)
	}
	if g.TryDelete("g") != nil {
		t.Error("TryDelete of a gone alias should return nil")
	}
}

func TestMutateAllResolvesFirst(t *testing.T) {
	g := newTestGraph(t)
	calls := 0
	err := g.MutateAll([]string{"a", "missing"}, func(n Node) error {
		calls++
		return nil
	})
	if !IsCode(err, CodeNodeNotFound) {
		t.Fatalf("err = %v, want %s", err, CodeNodeNotFound)
	}
	if calls != 0 {
		t.Errorf("fn called %d times before resolution failed", calls)
	}
}

// --- Groups ---

func TestGroupBBox(t *testing.T) {
	g := newTestGraph(t)
	grp, _ := g.Get("g")
	b := grp.BBox()
	assertNear(t, "x", b.X(), 20)
	assertNear(t, "y", b.Y(), 20)
	assertNear(t, "w", b.W(), 30)
	assertNear(t, "h", b.H(), 30)

	if got := NewGroup("empty").BBox(); got != (BBox{}) {
		t.Errorf("empty group box = %+v", got)
	}
}

func TestGroupSetPositionMovesChildren(t *testing.T) {
	g := newTestGraph(t)
	grp, _ := g.Get("g")
	grp.SetPosition(Point{0, 0})

	g1, _ := g.Get("g1")
	g2, _ := g.Get("g2")
	assertPoint(t, "g1", g1.Position(), Point{0, 0})
	assertPoint(t, "g2", g2.Position(), Point{20, 20})
	assertPoint(t, "group", grp.Position(), Point{0, 0})

	grp.SetX(5)
	assertPoint(t, "g1 after SetX", g1.Position(), Point{5, 0})
}

func TestGroupSetBBoxScalesChildren(t *testing.T) {
	grp := NewGroup("g",
		NewRectangle("l", 0, 0, 10, 10),
		NewRectangle("r", 10, 0, 10, 10),
	)
	grp.SetBBox(NewBBox(0, 0, 40, 10))
	l := grp.Children()[0]
	r := grp.Children()[1]
	assertNear(t, "l w", l.BBox().W(), 20)
	assertPoint(t, "r position", r.Position(), Point{20, 0})
}

// --- Serialization ---

func TestNodeFromDataUnknownType(t *testing.T) {
	_, err := NodeFromData(NodeData{Type: "circle", Alias: "c"})
	if !IsCode(err, CodeUnknownNodeType) {
		t.Fatalf("err = %v, want %s", err, CodeUnknownNodeType)
	}
}

func TestNodeFromDataGeneratesUUID(t *testing.T) {
	n, err := NodeFromData(NodeData{Type: KindRectangle, Alias: "r", Transform: Identity()})
	if err != nil {
		t.Fatal(err)
	}
	if n.UUID() == "" {
		t.Error("uuid should be generated")
	}
}

func TestGraphDataRoundTrip(t *testing.T) {
	g := newTestGraph(t)
	rect, _ := g.Get("a")
	rect.(*Rectangle).Radius = CornerRadius{LT: 2, RB: 3}
	rect.SetZ(4)
	rect.Params().SetOpacity(0.5)

	raw, err := json.Marshal(g.ToData())
	if err != nil {
		t.Fatal(err)
	}
	var d GraphData
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatal(err)
	}
	back, err := GraphFromData(d)
	if err != nil {
		t.Fatalf("GraphFromData: %v", err)
	}
	assertAliases(t, "AllNodes", back.AllNodes(), "a", "g", "g1", "g2", "t")

	a, _ := back.Get("a")
	if a.UUID() != rect.UUID() {
		t.Errorf("uuid = %s, want %s", a.UUID(), rect.UUID())
	}
	if a.Z() != 4 {
		t.Errorf("z = %v, want 4", a.Z())
	}
	if got := a.(*Rectangle).Radius; got != (CornerRadius{LT: 2, RB: 3}) {
		t.Errorf("radius = %+v", got)
	}
	assertNear(t, "opacity", a.Params().EffectiveOpacity(), 0.5)

	txt, _ := back.Get("t")
	if txt.(*Text).Text.Content != "hi" {
		t.Errorf("text = %q, want hi", txt.(*Text).Text.Content)
	}
}

func TestClone(t *testing.T) {
	g := newTestGraph(t)
	grp, _ := g.Get("g")
	c := Clone(grp).(*Group)
	if c == grp {
		t.Fatal("clone returned the same pointer")
	}
	c.SetPosition(Point{100, 100})
	assertPoint(t, "original kept", grp.Position(), Point{20, 20})
}

// --- Mixed edit sequences ---

func assertGraphConsistent(t *testing.T, step int, g *Graph) {
	t.Helper()
	all := g.AllNodes()
	if g.Len() != len(all) {
		t.Fatalf("step %d: Len = %d, tree has %d nodes", step, g.Len(), len(all))
	}
	seen := make(map[string]bool, len(all))
	for _, n := range all {
		if seen[n.Alias()] {
			t.Fatalf("step %d: alias %q appears twice in %v", step, n.Alias(), aliases(all))
		}
		seen[n.Alias()] = true
		got, err := g.Get(n.Alias())
		if err != nil {
			t.Fatalf("step %d: Get(%s): %v", step, n.Alias(), err)
		}
		if got != n {
			t.Fatalf("step %d: index and tree disagree on %q", step, n.Alias())
		}
	}
	walked := 0
	g.Walk(func(Node, int) bool { walked++; return true })
	if walked != len(all) {
		t.Fatalf("step %d: Walk visited %d nodes, want %d", step, walked, len(all))
	}
}

func TestGraphMixedSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	pick := func() string { return fmt.Sprintf("n%d", rng.IntN(12)) }
	var build func(depth int) Node
	build = func(depth int) Node {
		if depth < 2 && rng.IntN(3) == 0 {
			var kids []Node
			for range rng.IntN(3) {
				kids = append(kids, build(depth+1))
			}
			return NewGroup(pick(), kids...)
		}
		x := float64(rng.IntN(100))
		return NewRectangle(pick(), x, x, 10, 10)
	}

	g, err := NewGraph()
	if err != nil {
		t.Fatal(err)
	}
	applied := 0
	for step := range 500 {
		before := aliases(g.AllNodes())
		switch rng.IntN(4) {
		case 0:
			parent := ""
			if rng.IntN(2) == 0 {
				parent = pick()
			}
			n := build(0)
			err = g.Add(n, parent)
			if err == nil {
				if _, ok := g.TryGet(n.Alias()); !ok {
					t.Fatalf("step %d: added %q not found", step, n.Alias())
				}
			}
		case 1:
			err = g.Update(pick(), build(0))
		case 2:
			alias := pick()
			_, err = g.Delete(alias)
			if err == nil {
				if _, ok := g.TryGet(alias); ok {
					t.Fatalf("step %d: deleted %q still indexed", step, alias)
				}
			}
		case 3:
			err = nil
			if g.TryDelete(pick()) == nil {
				err = newError(CodeNodeNotFound, "", "nothing deleted")
			}
		}
		if err != nil {
			if after := aliases(g.AllNodes()); !slices.Equal(before, after) {
				t.Fatalf("step %d: failed edit (%v) changed the graph: %v -> %v", step, err, before, after)
			}
		} else {
			applied++
		}
		assertGraphConsistent(t, step, g)
	}
	if applied < 50 {
		t.Errorf("only %d of 500 edits applied; sequence is not exercising the graph", applied)
	}
}
