package easel

import (
	"math"
	"sync"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds an active ScrollTo tween pair.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Viewport controls the global transform mapping world coordinates to the
// screen. Every change marks all single nodes TransformDirty on the
// immediate queue and refreshes the renderer.
type Viewport struct {
	renderer *Renderer
	cfg      ViewportConfig

	mu     sync.Mutex
	scroll *scrollAnim
}

// NewViewport returns a viewport driving r's global transform.
func NewViewport(r *Renderer, cfg ViewportConfig) *Viewport {
	return &Viewport{renderer: r, cfg: cfg}
}

// Transform returns the current global transform.
func (v *Viewport) Transform() Matrix2D { return v.renderer.GlobalTransform() }

// Scale returns the current zoom factor.
func (v *Viewport) Scale() float64 { return v.Transform().ScaleX() }

// SetGlobalTransform replaces the global transform.
func (v *Viewport) SetGlobalTransform(m Matrix2D) {
	v.renderer.SetGlobalTransform(m)
}

// GlobalMove pans by delta screen pixels.
func (v *Viewport) GlobalMove(delta Point) {
	v.SetGlobalTransform(v.Transform().Move(delta))
}

// GlobalScale zooms by factor around the screen point center. The resulting
// zoom is clamped to [MinScale, MaxScale]; a clamped no-op leaves the
// renderer untouched.
func (v *Viewport) GlobalScale(factor float64, center Point) {
	m := v.Transform()
	cur := m.ScaleX()
	target := math.Max(v.cfg.MinScale, math.Min(cur*factor, v.cfg.MaxScale))
	f := target / safeNumber(cur, determinantFloor)
	if IsClose(f, 1) {
		return
	}
	v.SetGlobalTransform(m.ScaleWithCenter(f, f, center))
}

// ZoomIn zooms by one zoom step around center.
func (v *Viewport) ZoomIn(center Point) { v.GlobalScale(1+v.cfg.ZoomStep, center) }

// ZoomOut zooms out by one zoom step around center.
func (v *Viewport) ZoomOut(center Point) { v.GlobalScale(1/(1+v.cfg.ZoomStep), center) }

// ScreenToWorld converts a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(p Point) Point {
	return v.Transform().Inverse().Apply(p)
}

// WorldToScreen converts a world point to screen coordinates.
func (v *Viewport) WorldToScreen(p Point) Point {
	return v.Transform().Apply(p)
}

// ScrollTo animates the global translation to (x, y) over duration seconds.
// Call Update every frame to advance it.
func (v *Viewport) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	t := v.Transform().Translation()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroll = &scrollAnim{
		tweenX: gween.New(float32(t.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(t.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scroll != nil
}

// Update advances the scroll animation by dt seconds.
func (v *Viewport) Update(dt float32) {
	v.mu.Lock()
	s := v.scroll
	if s == nil {
		v.mu.Unlock()
		return
	}
	t := v.Transform().Translation()
	if !s.doneX {
		val, done := s.tweenX.Update(dt)
		t.X = float64(val)
		s.doneX = done
	}
	if !s.doneY {
		val, done := s.tweenY.Update(dt)
		t.Y = float64(val)
		s.doneY = done
	}
	if s.doneX && s.doneY {
		v.scroll = nil
	}
	v.mu.Unlock()
	v.SetGlobalTransform(v.Transform().MoveTo(t))
}
