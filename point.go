package easel

import "math"

// Point is a 2D point or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Sub returns p - o.
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Scale multiplies both components by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// ScaleXY multiplies the components independently.
func (p Point) ScaleXY(sx, sy float64) Point { return Point{p.X * sx, p.Y * sy} }

// Dot returns the dot product.
func (p Point) Dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }

// Len returns the vector length.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Theta returns atan2(y, x).
func (p Point) Theta() float64 { return math.Atan2(p.Y, p.X) }

// Neg returns -p.
func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Rotate rotates p by theta around center.
func (p Point) Rotate(theta float64, center Point) Point {
	return RotationMatrix(theta, center).Apply(p)
}

// AngleTo returns the unsigned angle between p and o in radians. The cosine is
// clamped slightly inside [-1, 1] so parallel vectors stay finite.
func (p Point) AngleTo(o Point) float64 {
	const eps = 1e-5
	denom := math.Max(p.Len()*o.Len(), lengthFloor)
	cos := math.Min(1-eps, math.Max(-1+eps, p.Dot(o)/denom))
	return math.Acos(cos)
}

// DistanceTo returns the euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 { return p.Sub(o).Len() }

// Lerp interpolates between p (t=0) and o (t=1).
func (p Point) Lerp(o Point, t float64) Point {
	return Point{p.X*(1-t) + o.X*t, p.Y*(1-t) + o.Y*t}
}

// IsClose compares both components with IsClose.
func (p Point) IsClose(o Point) bool { return IsClose(p.X, o.X) && IsClose(p.Y, o.Y) }

// quadrant returns the sign pair of p; points on an axis count as negative
// except for y when x is positive.
func quadrant(p Point) Point {
	switch {
	case p.X <= 0 && p.Y <= 0:
		return Point{-1, -1}
	case p.X <= 0 && p.Y > 0:
		return Point{-1, 1}
	case p.X > 0 && p.Y > 0:
		return Point{1, 1}
	default:
		return Point{1, -1}
	}
}
