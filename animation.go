package easel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates the bbox of one node. Call Update(dt) each frame; every
// step sets the interpolated bbox, marks the node TransformDirty on the
// immediate queue and refreshes. If the node is deleted the tween stops.
//
// There is no global animation manager; callers drive Update themselves.
type Tween struct {
	renderer *Renderer
	alias    string
	from, to BBox
	progress *gween.Tween
	Done     bool
}

// TweenBBox returns a tween taking alias from its current bbox to `to`.
func TweenBBox(r *Renderer, alias string, to BBox, duration float32, fn ease.TweenFunc) (*Tween, error) {
	var from BBox
	if err := r.Graph().View(alias, func(n Node) { from = n.BBox() }); err != nil {
		return nil, err
	}
	return &Tween{
		renderer: r,
		alias:    alias,
		from:     from,
		to:       to,
		progress: gween.New(0, 1, duration, fn),
	}, nil
}

// TweenPosition returns a tween moving alias so its position becomes to.
func TweenPosition(r *Renderer, alias string, to Point, duration float32, fn ease.TweenFunc) (*Tween, error) {
	var box BBox
	if err := r.Graph().View(alias, func(n Node) { box = n.BBox() }); err != nil {
		return nil, err
	}
	return TweenBBox(r, alias, box.MoveTo(to), duration, fn)
}

// Update advances the tween by dt seconds.
func (t *Tween) Update(dt float32) {
	if t.Done {
		return
	}
	val, finished := t.progress.Update(dt)
	box := t.from.Lerp(t.to, float64(val))
	if finished {
		box = t.to
	}
	err := t.renderer.Graph().Mutate(t.alias, func(n Node) error {
		n.SetBBox(box)
		return nil
	})
	if err != nil {
		t.Done = true
		return
	}
	t.Done = finished
	_ = t.renderer.SetRenderInfo(t.alias, RenderInfo{Level: TransformDirty, Queue: Immediate}, true)
}
