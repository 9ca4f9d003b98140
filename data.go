package easel

import (
	"github.com/google/uuid"
)

// NodeData is the serializable form of a node subtree.
type NodeData struct {
	Type      NodeKind      `json:"type"`
	UUID      string        `json:"uuid"`
	Alias     string        `json:"alias"`
	Transform Matrix2D      `json:"transform"`
	Z         float64       `json:"z"`
	Params    Params        `json:"params"`
	Radius    *CornerRadius `json:"radius,omitempty"`
	Text      *TextParams   `json:"text,omitempty"`
	Src       string        `json:"src,omitempty"`
	Children  []NodeData    `json:"children,omitempty"`
}

// NodeFromData rebuilds a node subtree. A missing uuid is generated; an
// unknown type fails with UNKNOWN_NODE_TYPE.
func NodeFromData(d NodeData) (Node, error) {
	base := nodeBase{
		alias:     d.Alias,
		uuid:      d.UUID,
		transform: d.Transform,
		z:         d.Z,
		params:    d.Params.clone(),
	}
	if base.uuid == "" {
		base.uuid = uuid.NewString()
	}
	switch d.Type {
	case KindGroup:
		g := &Group{nodeBase: base}
		for _, cd := range d.Children {
			c, err := NodeFromData(cd)
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, c)
		}
		return g, nil
	case KindRectangle:
		r := &Rectangle{singleBase: singleBase{base}}
		if d.Radius != nil {
			r.Radius = *d.Radius
		}
		return r, nil
	case KindText:
		t := &Text{singleBase: singleBase{base}}
		if d.Text != nil {
			t.Text = *d.Text
		}
		return t, nil
	case KindImage:
		return &Image{singleBase: singleBase{base}, Src: d.Src}, nil
	default:
		return nil, newError(CodeUnknownNodeType, d.Alias, "unknown node type %q", d.Type)
	}
}

// GraphData is the serializable form of a Graph.
type GraphData struct {
	Roots []NodeData `json:"roots"`
}

// ToData snapshots the graph.
func (g *Graph) ToData() GraphData {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d := GraphData{Roots: make([]NodeData, len(g.roots))}
	for i, n := range g.roots {
		d.Roots[i] = n.ToData()
	}
	return d
}

// GraphFromData rebuilds a graph, validating alias uniqueness.
func GraphFromData(d GraphData) (*Graph, error) {
	roots := make([]Node, 0, len(d.Roots))
	for _, nd := range d.Roots {
		n, err := NodeFromData(nd)
		if err != nil {
			return nil, err
		}
		roots = append(roots, n)
	}
	return NewGraph(roots...)
}
