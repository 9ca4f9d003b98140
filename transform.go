package easel

import "math"

const (
	// determinantFloor is the smallest determinant magnitude used as a divisor.
	determinantFloor = 1e-12
	// lengthFloor is the smallest scale or length used as a divisor.
	lengthFloor = 1e-8
)

// Matrix2D is a 2D affine transform. Value type: every method returns a new
// matrix and never modifies the receiver.
//
//	| A  C  E |
//	| B  D  F |
//	| 0  0  1 |
type Matrix2D struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// MatrixProperties is the decomposed form of a Matrix2D. Angles are radians.
type MatrixProperties struct {
	X, Y           float64
	Theta          float64
	SkewX, SkewY   float64
	ScaleX, ScaleY float64
}

// Identity returns the identity transform.
func Identity() Matrix2D {
	return Matrix2D{A: 1, D: 1}
}

// --- Constructors ---

// MoveMatrix returns a pure translation.
func MoveMatrix(x, y float64) Matrix2D {
	return Matrix2D{A: 1, D: 1, E: x, F: y}
}

// ScaleMatrix returns a scale of (w, h) around center.
func ScaleMatrix(w, h float64, center Point) Matrix2D {
	return Matrix2D{A: w, D: h, E: center.X * (1 - w), F: center.Y * (1 - h)}
}

// SkewMatrix returns a skew of (skewX, skewY) radians around center.
func SkewMatrix(skewX, skewY float64, center Point) Matrix2D {
	tx := math.Tan(skewX)
	ty := math.Tan(skewY)
	return Matrix2D{A: 1, B: ty, C: tx, D: 1, E: -tx * center.Y, F: -ty * center.X}
}

// RotationMatrix returns a rotation of theta radians around center. Positive
// theta turns counter-clockwise on a y-down screen, matching Matrix2D.Theta.
func RotationMatrix(theta float64, center Point) Matrix2D {
	sin, cos := math.Sincos(theta)
	return Matrix2D{
		A: cos, B: -sin,
		C: sin, D: cos,
		E: (1-cos)*center.X - center.Y*sin,
		F: (1-cos)*center.Y + center.X*sin,
	}
}

// FlipMatrix mirrors around center on the requested axes.
func FlipMatrix(flipX, flipY bool, center Point) Matrix2D {
	fx, fy := 1.0, 1.0
	if flipX {
		fx = -1
	}
	if flipY {
		fy = -1
	}
	return ScaleMatrix(fx, fy, center)
}

// RectMatrix maps the unit square onto the rectangle at (x, y) with size
// (w, h), rotated by theta around its top-left corner.
func RectMatrix(x, y, w, h, theta float64) Matrix2D {
	return ScaleMatrix(w, h, Point{}).Rotate(theta, Point{}).Move(Point{x, y})
}

// MatrixFromProperties recomposes a transform: skew, then scale, then
// rotation, then translation.
func MatrixFromProperties(p MatrixProperties) Matrix2D {
	return SkewMatrix(p.SkewX, p.SkewY, Point{}).
		TransformBy(ScaleMatrix(p.ScaleX, p.ScaleY, Point{})).
		TransformBy(RotationMatrix(p.Theta, Point{})).
		TransformBy(MoveMatrix(p.X, p.Y))
}

// --- Composition ---

// Multiply returns m * o: applying the result equals applying o, then m.
func (m Matrix2D) Multiply(o Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

// TransformBy applies o after m.
func (m Matrix2D) TransformBy(o Matrix2D) Matrix2D {
	return o.Multiply(m)
}

// Apply transforms a point.
func (m Matrix2D) Apply(p Point) Point {
	return Point{m.A*p.X + m.C*p.Y + m.E, m.B*p.X + m.D*p.Y + m.F}
}

// Determinant returns A*D - B*C.
func (m Matrix2D) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Inverse returns the inverse transform. The determinant is clamped to a
// signed floor of 1e-12 so a degenerate matrix still yields finite values;
// use CheckedInverse to detect that case.
func (m Matrix2D) Inverse() Matrix2D {
	det := safeNumber(m.Determinant(), determinantFloor)
	a := m.D / det
	b := -m.B / det
	c := -m.C / det
	d := m.A / det
	return Matrix2D{
		A: a, B: b, C: c, D: d,
		E: -(a*m.E + c*m.F),
		F: -(b*m.E + d*m.F),
	}
}

// CheckedInverse is Inverse that reports DEGENERATE_TRANSFORM instead of
// clamping.
func (m Matrix2D) CheckedInverse() (Matrix2D, error) {
	if math.Abs(m.Determinant()) < determinantFloor {
		return Matrix2D{}, newError(CodeDegenerateTransform, "", "matrix determinant is zero")
	}
	return m.Inverse(), nil
}

// --- Derived properties ---

// Theta is the rotation angle in radians.
func (m Matrix2D) Theta() float64 {
	return -math.Atan2(m.B, m.A)
}

// ScaleX is the length of the transformed x axis. Always non-negative.
func (m Matrix2D) ScaleX() float64 {
	return math.Hypot(m.A, m.B)
}

// ScaleY is the signed y scale; negative encodes a vertical flip.
func (m Matrix2D) ScaleY() float64 {
	return m.Determinant() / math.Max(m.ScaleX(), determinantFloor)
}

// Shear is the x skew angle in radians.
func (m Matrix2D) Shear() float64 {
	return math.Atan2(m.A*m.C+m.B*m.D, m.A*m.A+m.B*m.B)
}

// FlipY reports whether the transform mirrors the y axis.
func (m Matrix2D) FlipY() bool {
	return m.ScaleY() < 0
}

// Translation returns (E, F).
func (m Matrix2D) Translation() Point {
	return Point{m.E, m.F}
}

// Decompose splits the transform into translation, rotation, x skew and
// scales. MatrixFromProperties(m.Decompose()) reproduces m.
func (m Matrix2D) Decompose() MatrixProperties {
	sx := m.ScaleX()
	return MatrixProperties{
		X:      m.E,
		Y:      m.F,
		Theta:  m.Theta(),
		SkewX:  math.Atan2(m.A*m.C+m.B*m.D, sx*sx),
		ScaleX: sx,
		ScaleY: m.Determinant() / math.Max(sx, determinantFloor),
	}
}

// IsValid reports whether no component is NaN, ScaleX > 0 and ScaleY != 0.
func (m Matrix2D) IsValid() bool {
	for _, v := range [6]float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		if math.IsNaN(v) {
			return false
		}
	}
	sx, sy := m.ScaleX(), m.ScaleY()
	if math.IsNaN(sx) || math.IsNaN(sy) {
		return false
	}
	return sx > 0 && sy != 0
}

// Valid nudges A and D away from zero so the result stays invertible.
func (m Matrix2D) Valid() Matrix2D {
	m.A = safeNumber(m.A, determinantFloor)
	m.D = safeNumber(m.D, determinantFloor)
	return m
}

// IsClose compares component-wise with the default tolerances.
func (m Matrix2D) IsClose(o Matrix2D) bool {
	return IsClose(m.A, o.A) && IsClose(m.B, o.B) && IsClose(m.C, o.C) &&
		IsClose(m.D, o.D) && IsClose(m.E, o.E) && IsClose(m.F, o.F)
}

// --- Edits ---

// Move translates by delta.
func (m Matrix2D) Move(delta Point) Matrix2D {
	m.E += delta.X
	m.F += delta.Y
	return m
}

// MoveTo sets the translation.
func (m Matrix2D) MoveTo(p Point) Matrix2D {
	m.E = p.X
	m.F = p.Y
	return m
}

// Rotate rotates by theta around center, after the current transform.
func (m Matrix2D) Rotate(theta float64, center Point) Matrix2D {
	if math.Abs(theta) <= determinantFloor {
		return m
	}
	return RotationMatrix(theta, center).Multiply(m)
}

// RotateTo rotates around center until Theta equals theta.
func (m Matrix2D) RotateTo(theta float64, center Point) Matrix2D {
	return m.Rotate(theta-m.Theta(), center)
}

// Scale scales by (sx, sy) before the current transform.
func (m Matrix2D) Scale(sx, sy float64) Matrix2D {
	return Matrix2D{A: m.A * sx, B: m.B * sx, C: m.C * sy, D: m.D * sy, E: m.E, F: m.F}
}

// ScaleWithCenter scales by (sx, sy) around center, after the current transform.
func (m Matrix2D) ScaleWithCenter(sx, sy float64, center Point) Matrix2D {
	return ScaleMatrix(sx, sy, center).Multiply(m)
}

// Skew applies an x shear around center, after the current transform.
func (m Matrix2D) Skew(shear float64, center Point) Matrix2D {
	return SkewMatrix(shear, 0, center).Multiply(m)
}

// Flip mirrors around center, after the current transform.
func (m Matrix2D) Flip(flipX, flipY bool, center Point) Matrix2D {
	return FlipMatrix(flipX, flipY, center).Multiply(m)
}

// SetScaleX recomposes with a new ScaleX.
func (m Matrix2D) SetScaleX(sx float64) Matrix2D {
	p := m.Decompose()
	p.ScaleX = sx
	return MatrixFromProperties(p)
}

// SetScaleY recomposes with a new ScaleY.
func (m Matrix2D) SetScaleY(sy float64) Matrix2D {
	p := m.Decompose()
	p.ScaleY = sy
	return MatrixFromProperties(p)
}

// SetScales recomposes with new scales.
func (m Matrix2D) SetScales(sx, sy float64) Matrix2D {
	p := m.Decompose()
	p.ScaleX = sx
	p.ScaleY = sy
	return MatrixFromProperties(p)
}

// NoMove drops the translation.
func (m Matrix2D) NoMove() Matrix2D {
	m.E, m.F = 0, 0
	return m
}

// NoSkew removes the x shear.
func (m Matrix2D) NoSkew() Matrix2D {
	return m.Multiply(SkewMatrix(-m.Shear(), 0, Point{}))
}

// NoScale normalizes both axes to unit length, flip included.
func (m Matrix2D) NoScale() Matrix2D {
	sx := safeNumber(m.ScaleX(), lengthFloor)
	sy := safeNumber(m.ScaleY(), lengthFloor)
	return Matrix2D{A: m.A / sx, B: m.B / sx, C: m.C / sy, D: m.D / sy, E: m.E, F: m.F}
}

// NoScaleButFlip normalizes scales while keeping a vertical flip.
func (m Matrix2D) NoScaleButFlip() Matrix2D {
	sx := safeNumber(m.ScaleX(), lengthFloor)
	sy := safeNumber(math.Abs(m.ScaleY()), lengthFloor)
	return Matrix2D{A: m.A / sx, B: m.B / sx, C: m.C / sy, D: m.D / sy, E: m.E, F: m.F}
}

// NoRotation rotates back to theta 0 around the translation point.
func (m Matrix2D) NoRotation() Matrix2D {
	return m.Rotate(-m.Theta(), m.Translation())
}

// NoMoveScaleButFlip keeps only rotation, skew and flip.
func (m Matrix2D) NoMoveScaleButFlip() Matrix2D {
	return m.NoScaleButFlip().NoMove()
}

// --- Numeric helpers ---

// IsClose reports whether a and b agree within an absolute tolerance of 1e-6
// and a relative tolerance of 1e-4.
func IsClose(a, b float64) bool {
	return IsCloseTol(a, b, 1e-6, 1e-4)
}

// IsCloseTol is IsClose with explicit tolerances.
func IsCloseTol(a, b, atol, rtol float64) bool {
	diff := math.Abs(a - b)
	if diff >= atol {
		return false
	}
	aa := math.Max(math.Abs(a), lengthFloor)
	ab := math.Max(math.Abs(b), lengthFloor)
	return diff/aa < rtol && diff/ab < rtol
}

// safeNumber pushes v away from zero to at least min in magnitude, keeping
// its sign (positive for zero).
func safeNumber(v, min float64) float64 {
	if math.Abs(v) >= min {
		return v
	}
	if v < 0 {
		return -min
	}
	return min
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
