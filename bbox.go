package easel

import "math"

// Pivot names one of the nine reference points of a box.
type Pivot uint8

// Outer pivots run clockwise from the top-left corner; Center comes last.
const (
	PivotLT     Pivot = iota // top-left corner
	PivotTop                 // top edge midpoint
	PivotRT                  // top-right corner
	PivotRight               // right edge midpoint
	PivotRB                  // bottom-right corner
	PivotBottom              // bottom edge midpoint
	PivotLB                  // bottom-left corner
	PivotLeft                // left edge midpoint
	PivotCenter              // box center
)

var pivotNames = [...]string{"lt", "top", "rt", "right", "rb", "bottom", "lb", "left", "center"}

// unitPivots are the pivot coordinates inside the unit square.
var unitPivots = [...]Point{
	{0, 0}, {0.5, 0}, {1, 0}, {1, 0.5}, {1, 1}, {0.5, 1}, {0, 1}, {0, 0.5}, {0.5, 0.5},
}

// CornerPivots lists the corners clockwise from the top-left.
var CornerPivots = [4]Pivot{PivotLT, PivotRT, PivotRB, PivotLB}

func (p Pivot) String() string {
	if int(p) < len(pivotNames) {
		return pivotNames[p]
	}
	return "unknown"
}

// Mirrored returns the pivot on the opposite side of the center.
func (p Pivot) Mirrored() Pivot {
	if p == PivotCenter {
		return PivotCenter
	}
	return (p + 4) % 8
}

// IsCorner reports whether p is one of the four corners.
func (p Pivot) IsCorner() bool {
	return p == PivotLT || p == PivotRT || p == PivotRB || p == PivotLB
}

// --- AABB ---

// AABB is an axis-aligned box. W and H are never negative for boxes produced
// by this package.
type AABB struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns X + W.
func (r AABB) Right() float64 { return r.X + r.W }

// Bottom returns Y + H.
func (r AABB) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint.
func (r AABB) Center() Point { return Point{r.X + 0.5*r.W, r.Y + 0.5*r.H} }

// IsValid reports whether the box has positive area.
func (r AABB) IsValid() bool { return r.W > 0 && r.H > 0 }

// Contains reports whether p lies inside or on the edge.
func (r AABB) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsAABB reports whether o lies entirely inside r.
func (r AABB) ContainsAABB(o AABB) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Merge returns the smallest box covering both.
func (r AABB) Merge(o AABB) AABB {
	left := math.Min(r.X, o.X)
	top := math.Min(r.Y, o.Y)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return AABB{left, top, right - left, bottom - top}
}

// Overlap returns the intersection. The result is invalid (non-positive size)
// when the boxes are disjoint.
func (r AABB) Overlap(o AABB) AABB {
	left := math.Max(r.X, o.X)
	top := math.Max(r.Y, o.Y)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	return AABB{left, top, right - left, bottom - top}
}

// Intersects reports whether the boxes touch or overlap.
func (r AABB) Intersects(o AABB) bool {
	return r.X <= o.Right() && r.Right() >= o.X && r.Y <= o.Bottom() && r.Bottom() >= o.Y
}

// Pad grows the box by p on every side.
func (r AABB) Pad(p float64) AABB {
	return AABB{r.X - p, r.Y - p, r.W + 2*p, r.H + 2*p}
}

// Move translates the box.
func (r AABB) Move(delta Point) AABB {
	return AABB{r.X + delta.X, r.Y + delta.Y, r.W, r.H}
}

// ToBBox returns the equivalent oriented box.
func (r AABB) ToBBox() BBox {
	return BBox{Transform: Matrix2D{A: r.W, D: r.H, E: r.X, F: r.Y}}
}

// aabbOf returns the extents of a point set.
func aabbOf(points ...Point) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return AABB{minX, minY, maxX - minX, maxY - minY}
}

// --- BBox ---

// BBox is an oriented bounding box: the image of the unit square under
// Transform. It may be rotated, skewed or vertically flipped.
type BBox struct {
	Transform Matrix2D `json:"transform"`
}

// UnitBBox returns the unit square at the origin.
func UnitBBox() BBox { return BBox{Transform: Identity()} }

// NewBBox returns the box at (x, y) with size (w, h).
func NewBBox(x, y, w, h float64) BBox {
	return BBox{Transform: RectMatrix(x, y, w, h, 0)}
}

// BoundingOf returns the axis-aligned box covering all boxes.
func BoundingOf(boxes ...BBox) BBox {
	if len(boxes) == 0 {
		return BBox{}
	}
	points := make([]Point, 0, 4*len(boxes))
	for _, b := range boxes {
		points = append(points, b.Corners()...)
	}
	return aabbOf(points...).ToBBox()
}

// X is the x coordinate of the top-left corner.
func (b BBox) X() float64 { return b.Transform.E }

// Y is the y coordinate of the top-left corner.
func (b BBox) Y() float64 { return b.Transform.F }

// W is the width; never negative.
func (b BBox) W() float64 { return b.Transform.ScaleX() }

// H is the signed height; negative when flipped.
func (b BBox) H() float64 { return b.Transform.ScaleY() }

// Theta is the rotation in radians.
func (b BBox) Theta() float64 { return b.Transform.Theta() }

// FlipY reports a vertical flip.
func (b BBox) FlipY() bool { return b.H() < 0 }

// Area is the signed area.
func (b BBox) Area() float64 { return b.Transform.Determinant() }

// Pivot returns the world coordinates of a pivot.
func (b BBox) Pivot(p Pivot) Point {
	return b.Transform.Apply(unitPivots[p])
}

// Position is the top-left corner.
func (b BBox) Position() Point { return b.Pivot(PivotLT) }

// Center is the center point.
func (b BBox) Center() Point { return b.Pivot(PivotCenter) }

// Corners returns lt, rt, rb, lb.
func (b BBox) Corners() []Point {
	out := make([]Point, 4)
	for i, p := range CornerPivots {
		out[i] = b.Pivot(p)
	}
	return out
}

// Contains reports whether p lies inside the box or on its edge.
func (b BBox) Contains(p Point) bool {
	u := b.Transform.Inverse().Apply(p)
	const eps = 1e-9
	return u.X >= -eps && u.X <= 1+eps && u.Y >= -eps && u.Y <= 1+eps
}

// ContainsBox reports whether every corner of o lies inside b.
func (b BBox) ContainsBox(o BBox) bool {
	for _, c := range o.Corners() {
		if !b.Contains(c) {
			return false
		}
	}
	return true
}

// IsClose compares the four corners.
func (b BBox) IsClose(o BBox) bool {
	oc := o.Corners()
	for i, c := range b.Corners() {
		if !c.IsClose(oc[i]) {
			return false
		}
	}
	return true
}

// ToAABB returns the axis-aligned extents of the corners.
func (b BBox) ToAABB() AABB {
	return aabbOf(b.Corners()...)
}

// Bounding returns the axis-aligned box covering b as a BBox.
func (b BBox) Bounding() BBox {
	return b.ToAABB().ToBBox()
}

// Valid returns b with an invertible transform.
func (b BBox) Valid() BBox {
	return BBox{Transform: b.Transform.Valid()}
}

// Decompose decomposes the underlying transform.
func (b BBox) Decompose() MatrixProperties { return b.Transform.Decompose() }

// Move translates the box.
func (b BBox) Move(delta Point) BBox { return BBox{b.Transform.Move(delta)} }

// MoveTo moves the top-left corner to p.
func (b BBox) MoveTo(p Point) BBox { return BBox{b.Transform.MoveTo(p)} }

// Rotate rotates by theta around center.
func (b BBox) Rotate(theta float64, center Point) BBox {
	return BBox{b.Transform.Rotate(theta, center)}
}

// RotateTo rotates around center until Theta equals theta.
func (b BBox) RotateTo(theta float64, center Point) BBox {
	return BBox{b.Transform.RotateTo(theta, center)}
}

// Flip mirrors the box around center.
func (b BBox) Flip(flipX, flipY bool, center Point) BBox {
	return BBox{b.Transform.Flip(flipX, flipY, center)}
}

// TransformBy applies m after the box transform.
func (b BBox) TransformBy(m Matrix2D) BBox { return BBox{b.Transform.TransformBy(m)} }

// Pad grows the box by p on each side in its own frame, keeping the center.
func (b BBox) Pad(p float64) BBox {
	props := b.Decompose()
	props.ScaleX += 2 * p
	sign := 1.0
	if !IsClose(props.ScaleY, 0) && props.ScaleY < 0 {
		sign = -1
	}
	props.ScaleY += 2 * p * sign
	padded := BBox{MatrixFromProperties(props)}
	return padded.Move(b.Center().Sub(padded.Center()))
}

// SetW recomposes with width w.
func (b BBox) SetW(w float64) BBox {
	return BBox{b.Transform.SetScaleX(safeNumber(w, determinantFloor))}
}

// SetH recomposes with signed height h.
func (b BBox) SetH(h float64) BBox {
	return BBox{b.Transform.SetScaleY(safeNumber(h, determinantFloor))}
}

// SetWH recomposes with a new size.
func (b BBox) SetWH(w, h float64) BBox {
	return BBox{b.Transform.SetScales(safeNumber(w, determinantFloor), safeNumber(h, determinantFloor))}
}

// ExpandType selects how SetWHRatio resolves the new size.
type ExpandType uint8

const (
	ExpandIOU  ExpandType = iota // keep the area
	ExpandFixW                   // keep the width
	ExpandFixH                   // keep the height
)

// SetWHRatio resizes to the width/height ratio while keeping pivot fixed.
func (b BBox) SetWHRatio(ratio float64, typ ExpandType, pivot Pivot) BBox {
	anchor := b.Pivot(pivot)
	w, h := b.W(), b.H()
	absH := math.Abs(h)
	hSign := 1.0
	if h < 0 {
		hSign = -1
	}
	ratio = safeNumber(ratio, lengthFloor)
	var nw, nh float64
	switch typ {
	case ExpandFixW:
		nw = w
		nh = hSign * w / ratio
	case ExpandFixH:
		nw = absH * ratio
		nh = h
	default:
		area := w * absH
		nw = math.Sqrt(area * ratio)
		nh = hSign * area / safeNumber(nw, lengthFloor)
	}
	resized := b.SetWH(nw, nh)
	return resized.Move(anchor.Sub(resized.Pivot(pivot)))
}

// ExtendTo drags pivot to target while the mirrored pivot stays fixed. The
// edit happens in the box's unit space, so rotation and skew are preserved.
// With keepAspectRatio, corner drags clamp to the dominant axis and edge
// drags grow the other axis symmetrically.
func (b BBox) ExtendTo(target Point, pivot Pivot, keepAspectRatio bool) BBox {
	x, y, w, h := 0.0, 0.0, 1.0, 1.0
	up := unitPivots[pivot]
	t := b.Transform.Inverse().Apply(target).Sub(up)
	if keepAspectRatio && pivot.IsCorner() {
		center := unitPivots[pivot.Mirrored()].Sub(up)
		delta := t.Sub(center)
		r := math.Max(math.Abs(delta.X), math.Abs(delta.Y))
		q := quadrant(delta)
		t = center.Add(q.Scale(r))
	}
	tx, ty := t.X, t.Y
	switch pivot {
	case PivotLT:
		w += x - tx
		h += y - ty
		x, y = tx, ty
	case PivotTop:
		dy := y - ty
		h += dy
		if keepAspectRatio {
			w += dy
			x -= 0.5 * dy
		}
		y = ty
	case PivotRT:
		w += tx - x
		h += y - ty
		y = ty
	case PivotLeft:
		dx := x - tx
		w += dx
		if keepAspectRatio {
			h += dx
			y -= 0.5 * dx
		}
		x = tx
	case PivotRight:
		dx := tx - x
		w += dx
		if keepAspectRatio {
			h += dx
			y -= 0.5 * dx
		}
	case PivotLB:
		w += x - tx
		h += ty - y
		x = tx
	case PivotBottom:
		dy := ty - y
		h += dy
		if keepAspectRatio {
			w += dy
			x -= 0.5 * dy
		}
	case PivotRB:
		w += tx - x
		h += ty - y
	}
	return BBox{b.Transform.Multiply(MoveMatrix(x, y)).Scale(w, h)}
}

// RotatePivotTo rotates the box around its center so that pivot points at
// target. A non-zero divide snaps the angle to the nearest of 25 steps of
// divide counted from -π; zero rotates continuously.
func (b BBox) RotatePivotTo(target Point, pivot Pivot, divide float64) BBox {
	center := b.Center()
	current := b.Pivot(pivot).Sub(center)
	wanted := target.Sub(center)
	theta := current.Theta() - wanted.Theta() + b.Theta()
	if divide != 0 {
		best, bestDiff := theta, math.Inf(1)
		for i := 0; i < 25; i++ {
			c := -math.Pi + float64(i)*divide
			if d := math.Abs(c - theta); d < bestDiff {
				best, bestDiff = c, d
			}
		}
		theta = best
	}
	return b.RotateTo(theta, center)
}

// Lerp interpolates the decomposed properties of b (t=0) and o (t=1).
func (b BBox) Lerp(o BBox, t float64) BBox {
	p, q := b.Decompose(), o.Decompose()
	mix := func(a, c float64) float64 { return a*(1-t) + c*t }
	return BBox{MatrixFromProperties(MatrixProperties{
		X:      mix(p.X, q.X),
		Y:      mix(p.Y, q.Y),
		Theta:  mix(p.Theta, q.Theta),
		SkewX:  mix(p.SkewX, q.SkewX),
		SkewY:  mix(p.SkewY, q.SkewY),
		ScaleX: mix(p.ScaleX, q.ScaleX),
		ScaleY: mix(p.ScaleY, q.ScaleY),
	})}
}
