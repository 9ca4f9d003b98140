// Package ebitenrender draws an easel world with Ebitengine and feeds
// Ebitengine input back into the world's input dispatcher.
package ebitenrender

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"image/color"
	"slices"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/easel"
)

// Backend creates render nodes that cache screen-space geometry and paint,
// and composites them in z order on Draw.
type Backend struct {
	face *text.GoTextFaceSource

	mu    sync.Mutex
	nodes map[*drawable]struct{}
	seq   uint64
}

// NewBackend returns a backend using the Go Regular font for text.
func NewBackend() (*Backend, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("ebitenrender: load font: %w", err)
	}
	return &Backend{face: src, nodes: make(map[*drawable]struct{})}, nil
}

var _ easel.Backend = (*Backend)(nil)

func (b *Backend) NewRectangle(r *easel.Rectangle) easel.RenderNode {
	return b.register(&drawable{alias: r.Alias(), kind: easel.KindRectangle})
}

func (b *Backend) NewText(t *easel.Text) easel.RenderNode {
	return b.register(&drawable{alias: t.Alias(), kind: easel.KindText})
}

func (b *Backend) NewImage(i *easel.Image) easel.RenderNode {
	return b.register(&drawable{alias: i.Alias(), kind: easel.KindImage})
}

func (b *Backend) register(d *drawable) *drawable {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	d.backend = b
	d.seq = b.seq
	b.nodes[d] = struct{}{}
	return d
}

func (b *Backend) unregister(d *drawable) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.nodes, d)
}

// Len returns the number of live render nodes.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.nodes)
}

// Draw paints every render node onto dst, lowest z first.
func (b *Backend) Draw(dst *ebiten.Image) {
	b.mu.Lock()
	list := make([]*drawable, 0, len(b.nodes))
	for d := range b.nodes {
		list = append(list, d)
	}
	b.mu.Unlock()

	slices.SortFunc(list, func(x, y *drawable) int {
		if c := cmp.Compare(x.zOrder(), y.zOrder()); c != 0 {
			return c
		}
		return cmp.Compare(x.seq, y.seq)
	})
	for _, d := range list {
		d.draw(dst)
	}
}

// --- Render node ---

// drawable is the render node for every kind. Transform updates refresh the
// screen geometry; content updates refresh paint.
type drawable struct {
	backend *Backend
	alias   string
	kind    easel.NodeKind
	seq     uint64

	mu sync.Mutex
	geometry
	paint
}

type geometry struct {
	z        float64
	outline  []easel.Vertex // screen space
	toScreen easel.Matrix2D // local pixels to screen
	w, h     float64
}

type paint struct {
	visible bool
	fill    color.NRGBA
	strokes []strokePaint
	text    easel.TextParams
	color   color.NRGBA
	src     string
	image   *ebiten.Image
}

type strokePaint struct {
	color color.NRGBA
	width float64
}

func (d *drawable) zOrder() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.z
}

func (d *drawable) Initialize(ctx context.Context, r *easel.Renderer) error {
	return d.ReRender(ctx, r)
}

func (d *drawable) UpdateTransform(_ context.Context, r *easel.Renderer) error {
	global := r.GlobalTransform()
	var g geometry
	err := r.Graph().View(d.alias, func(n easel.Node) {
		s := n.(easel.SingleNode)
		g.z = n.Z()
		w, h := sizeOf(s)
		g.w, g.h = w, h
		g.toScreen = global.Multiply(s.Transform().Scale(1/max(w, 1e-8), 1/max(h, 1e-8)))
		var outline []easel.Vertex
		if rect, ok := n.(*easel.Rectangle); ok {
			outline = rect.Vertices()
		} else {
			for _, c := range s.BBox().Corners() {
				outline = append(outline, easel.Vertex{P0: c})
			}
		}
		for i := range outline {
			outline[i] = outline[i].TransformBy(global)
		}
		g.outline = outline
	})
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.geometry = g
	d.mu.Unlock()
	return nil
}

func (d *drawable) UpdateContent(_ context.Context, r *easel.Renderer) error {
	var p paint
	err := r.Graph().View(d.alias, func(n easel.Node) {
		params := n.Params()
		p.visible = params.IsVisible()
		p.fill = BlendedFill(params)
		for _, s := range params.Strokes {
			p.strokes = append(p.strokes, strokePaint{color: StrokeColor(s, params), width: s.Width})
		}
		switch n := n.(type) {
		case *easel.Text:
			p.text = n.Text
			c, _ := ParseColor(cmp.Or(n.Text.Color, "#000000"))
			p.color = toNRGBA(c, params.EffectiveOpacity())
		case *easel.Image:
			p.src = n.Src
		}
	})
	if err != nil {
		return err
	}
	d.mu.Lock()
	prev := d.paint
	p.image = prev.image
	d.paint = p
	d.mu.Unlock()

	if d.kind == easel.KindImage && (p.src != prev.src || prev.image == nil) {
		return d.loadImage(p.src)
	}
	return nil
}

func (d *drawable) ReRender(ctx context.Context, r *easel.Renderer) error {
	if err := d.UpdateTransform(ctx, r); err != nil {
		return err
	}
	return d.UpdateContent(ctx, r)
}

// Dispose releases GPU images and removes the node from the draw list.
func (d *drawable) Dispose() {
	d.backend.unregister(d)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.image != nil {
		d.image.Deallocate()
		d.image = nil
	}
}

func sizeOf(n easel.SingleNode) (w, h float64) {
	type sized interface{ Size() (float64, float64) }
	if s, ok := n.(sized); ok {
		return s.Size()
	}
	b := n.BBox()
	return b.W(), abs(b.H())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
