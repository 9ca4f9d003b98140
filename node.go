package easel

import (
	"github.com/google/uuid"
)

// NodeKind identifies the concrete node type. The set is closed.
type NodeKind string

const (
	KindGroup     NodeKind = "group"     // container; its box is derived from children
	KindRectangle NodeKind = "rectangle" // rounded rectangle shape
	KindText      NodeKind = "text"      // text block
	KindImage     NodeKind = "image"     // bitmap referenced by source
)

// Node is implemented by *Group, *Rectangle, *Text and *Image only.
//
// Node properties must not be written while a Renderer may read them; go
// through Graph.Mutate (or the World helpers) once rendering has started.
type Node interface {
	Kind() NodeKind
	Alias() string
	UUID() string
	Z() float64
	SetZ(z float64)
	Transform() Matrix2D

	// BBox returns the node's oriented bounding box.
	BBox() BBox
	// SetBBox reshapes the node so that BBox returns box.
	SetBBox(box BBox)

	// Position is the top-left corner of BBox.
	Position() Point
	SetPosition(p Point)
	SetX(x float64)
	SetY(y float64)

	Params() *Params

	// ToData returns a detached, serializable copy of the node subtree.
	ToData() NodeData

	base() *nodeBase
}

// SingleNode is a leaf node that owns its own transform and is rendered.
type SingleNode interface {
	Node
	// SetTransform replaces the transform.
	SetTransform(m Matrix2D)
	single()
}

// nodeBase holds the fields shared by every node kind.
type nodeBase struct {
	alias     string
	uuid      string
	transform Matrix2D
	z         float64
	params    Params
}

func newNodeBase(alias string, transform Matrix2D) nodeBase {
	return nodeBase{alias: alias, uuid: uuid.NewString(), transform: transform}
}

func (n *nodeBase) base() *nodeBase     { return n }
func (n *nodeBase) Alias() string       { return n.alias }
func (n *nodeBase) UUID() string        { return n.uuid }
func (n *nodeBase) Z() float64          { return n.z }
func (n *nodeBase) SetZ(z float64)      { n.z = z }
func (n *nodeBase) Transform() Matrix2D { return n.transform }
func (n *nodeBase) Params() *Params     { return &n.params }

func (n *nodeBase) data(kind NodeKind) NodeData {
	return NodeData{
		Type:      kind,
		UUID:      n.uuid,
		Alias:     n.alias,
		Transform: n.transform,
		Z:         n.z,
		Params:    n.params.clone(),
	}
}

// singleBase implements the geometry of leaf nodes: the transform maps the
// unit square onto the node.
type singleBase struct {
	nodeBase
}

func (n *singleBase) single() {}

func (n *singleBase) SetTransform(m Matrix2D) { n.transform = m }

func (n *singleBase) BBox() BBox { return BBox{Transform: n.transform} }

func (n *singleBase) SetBBox(box BBox) { n.transform = box.Valid().Transform }

func (n *singleBase) Position() Point { return n.transform.Translation() }

func (n *singleBase) SetPosition(p Point) { n.transform = n.transform.MoveTo(p) }

func (n *singleBase) SetX(x float64) { n.transform.E = x }

func (n *singleBase) SetY(y float64) { n.transform.F = y }

// Size returns the width and absolute height.
func (n *singleBase) Size() (w, h float64) {
	b := n.BBox()
	h = b.H()
	if h < 0 {
		h = -h
	}
	return b.W(), h
}

// --- Rectangle ---

// CornerRadius holds per-corner radii in pixels.
type CornerRadius struct {
	LT float64 `json:"lt,omitempty"`
	RT float64 `json:"rt,omitempty"`
	RB float64 `json:"rb,omitempty"`
	LB float64 `json:"lb,omitempty"`
}

// Rectangle is a rectangle with optional rounded corners.
type Rectangle struct {
	singleBase
	Radius CornerRadius
}

// NewRectangle creates a rectangle at (x, y) with size (w, h).
func NewRectangle(alias string, x, y, w, h float64) *Rectangle {
	return &Rectangle{singleBase: singleBase{newNodeBase(alias, RectMatrix(x, y, w, h, 0))}}
}

func (r *Rectangle) Kind() NodeKind { return KindRectangle }

func (r *Rectangle) ToData() NodeData {
	d := r.data(KindRectangle)
	radius := r.Radius
	d.Radius = &radius
	return d
}

// Vertices returns the outline in world space, clockwise from the top-left
// corner. Rounded corners become cubic segments.
func (r *Rectangle) Vertices() []Vertex {
	w, h := r.Size()
	corners := []Point{{0, 0}, {w, 0}, {w, h}, {0, h}}
	radius := []float64{r.Radius.LT, r.Radius.RT, r.Radius.RB, r.Radius.LB}
	local := roundedVertices(corners, radius, min(w, h))
	toWorld := r.transform.Scale(1/safeNumber(w, lengthFloor), 1/safeNumber(h, lengthFloor))
	for i := range local {
		local[i] = local[i].TransformBy(toWorld)
	}
	return local
}

// --- Text ---

// TextAlign controls horizontal alignment of a text block.
type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

// TextParams describes a text block's content and style.
type TextParams struct {
	Content    string    `json:"content"`
	FontSize   float64   `json:"fontSize"`
	Font       string    `json:"font,omitempty"`
	FontWeight string    `json:"fontWeight,omitempty"`
	Align      TextAlign `json:"align,omitempty"`
	Color      string    `json:"color,omitempty"`
	LineHeight float64   `json:"lineHeight,omitempty"`
}

// Text is a text block laid out inside its box.
type Text struct {
	singleBase
	Text TextParams
}

// NewText creates a text node at (x, y) with size (w, h).
func NewText(alias, content string, fontSize, x, y, w, h float64) *Text {
	return &Text{
		singleBase: singleBase{newNodeBase(alias, RectMatrix(x, y, w, h, 0))},
		Text:       TextParams{Content: content, FontSize: fontSize, Align: AlignLeft},
	}
}

func (t *Text) Kind() NodeKind { return KindText }

func (t *Text) ToData() NodeData {
	d := t.data(KindText)
	text := t.Text
	d.Text = &text
	return d
}

// --- Image ---

// Image displays a bitmap loaded from Src.
type Image struct {
	singleBase
	Src string
}

// NewImage creates an image node at (x, y) with size (w, h).
func NewImage(alias, src string, x, y, w, h float64) *Image {
	return &Image{singleBase: singleBase{newNodeBase(alias, RectMatrix(x, y, w, h, 0))}, Src: src}
}

func (i *Image) Kind() NodeKind { return KindImage }

func (i *Image) ToData() NodeData {
	d := i.data(KindImage)
	d.Src = i.Src
	return d
}

// --- Helpers ---

// IsGroup reports whether n is a *Group.
func IsGroup(n Node) bool {
	_, ok := n.(*Group)
	return ok
}

// walkNode visits n and its descendants in pre-order.
func walkNode(n Node, depth int, fn func(n Node, depth int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	if g, ok := n.(*Group); ok {
		for _, c := range g.children {
			if !walkNode(c, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of n, uuids included.
func Clone(n Node) Node {
	c, err := NodeFromData(n.ToData())
	if err != nil {
		// ToData only emits known kinds.
		panic("easel: clone: " + err.Error())
	}
	return c
}
