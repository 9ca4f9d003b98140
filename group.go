package easel

// Group gathers nodes under one alias. A group owns no box of its own: its
// box is the union of its children, measured in the group's frame. The group
// transform carries only rotation and flip, never translation or scale.
type Group struct {
	nodeBase
	children []Node
}

// NewGroup creates a group with the given children. The children become
// owned by the group; do not add them to a graph separately.
func NewGroup(alias string, children ...Node) *Group {
	return &Group{nodeBase: newNodeBase(alias, Identity()), children: append([]Node(nil), children...)}
}

func (g *Group) Kind() NodeKind { return KindGroup }

// Children returns a copy of the child list.
func (g *Group) Children() []Node {
	return append([]Node(nil), g.children...)
}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// BBox is recomputed on every call. An empty group has a zero box at the
// origin.
func (g *Group) BBox() BBox {
	if len(g.children) == 0 {
		return BBox{}
	}
	frame := g.transform.Valid()
	inv := frame.Inverse()
	local := make([]BBox, len(g.children))
	for i, c := range g.children {
		local[i] = c.BBox().TransformBy(inv)
	}
	return BoundingOf(local...).TransformBy(frame)
}

// SetBBox maps every child from the current box onto box, then carries the
// rotation and flip difference into the group transform.
func (g *Group) SetBBox(box BBox) {
	if len(g.children) == 0 {
		return
	}
	current := g.BBox().Transform.Valid()
	target := box.Transform.Valid()
	mapping := current.Inverse().TransformBy(target)
	for _, c := range g.children {
		c.SetBBox(c.BBox().TransformBy(mapping))
	}
	cur := current.NoMoveScaleButFlip()
	tgt := target.NoMoveScaleButFlip()
	g.transform = tgt.Multiply(cur.Inverse()).Multiply(g.transform).NoMove().Valid()
}

// Position is the top-left corner of the computed box.
func (g *Group) Position() Point { return g.BBox().Position() }

// SetPosition translates every single descendant so the box's top-left
// corner lands on p.
func (g *Group) SetPosition(p Point) { g.translate(p.Sub(g.Position())) }

func (g *Group) SetX(x float64) { g.translate(Point{X: x - g.Position().X}) }

func (g *Group) SetY(y float64) { g.translate(Point{Y: y - g.Position().Y}) }

// translate moves all single descendants; nested group transforms are left
// alone since they carry no translation.
func (g *Group) translate(delta Point) {
	for _, c := range g.children {
		switch n := c.(type) {
		case *Group:
			n.translate(delta)
		case SingleNode:
			n.SetTransform(n.Transform().Move(delta))
		}
	}
}

func (g *Group) ToData() NodeData {
	d := g.data(KindGroup)
	d.Children = make([]NodeData, len(g.children))
	for i, c := range g.children {
		d.Children[i] = c.ToData()
	}
	return d
}

// --- Child list edits, called by Graph only ---

func (g *Group) appendChild(n Node) { g.children = append(g.children, n) }

func (g *Group) insertChild(i int, n Node) {
	g.children = append(g.children, nil)
	copy(g.children[i+1:], g.children[i:])
	g.children[i] = n
}

// removeChild removes n and returns its former index, or -1.
func (g *Group) removeChild(n Node) int {
	for i, c := range g.children {
		if c == n {
			copy(g.children[i:], g.children[i+1:])
			g.children[len(g.children)-1] = nil
			g.children = g.children[:len(g.children)-1]
			return i
		}
	}
	return -1
}
