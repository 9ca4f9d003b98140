package easel

import "math"

// curveThreshold is the radius, relative to the shorter side, below which a
// corner is drawn sharp.
const curveThreshold = 1e-5

// Vertex is one outline step. P0 is reached with a straight line; when Curve
// is set, a cubic bézier follows from P0 through controls P1, P2 to P3.
type Vertex struct {
	P0, P1, P2, P3 Point
	Curve          bool
}

// TransformBy maps every point of the vertex through m.
func (v Vertex) TransformBy(m Matrix2D) Vertex {
	return Vertex{P0: m.Apply(v.P0), P1: m.Apply(v.P1), P2: m.Apply(v.P2), P3: m.Apply(v.P3), Curve: v.Curve}
}

type cornerOffset struct {
	theta  float64 // interior angle
	offset float64 // distance from the corner to the tangent points
}

func (c cornerOffset) radius() float64 {
	return c.offset * math.Tan(0.5*c.theta)
}

func cornerInfo(prev, cur, next Point, radius float64) cornerOffset {
	theta := prev.Sub(cur).AngleTo(next.Sub(cur))
	return cornerOffset{theta: theta, offset: radius / safeNumber(math.Tan(0.5*theta), lengthFloor)}
}

// shrinkOffsets scales two offsets sharing an edge down so they fit on it.
func shrinkOffsets(p0, p1 Point, o0, o1 float64) (float64, float64) {
	const eps = 1e-3
	length := p0.DistanceTo(p1)
	diff := o0 + o1 - length
	if diff > 0 {
		r := o0 / safeNumber(o0+o1, lengthFloor)
		o0 = math.Max(eps, o0-diff*r) - eps
		o1 = length - o0 - 2*eps
	}
	return o0, o1
}

func cornerOffsets(points []Point, radius []float64) []cornerOffset {
	n := len(points)
	thetas := make([]float64, n)
	full := make([][2]float64, n)
	for i := range points {
		info := cornerInfo(points[(i-1+n)%n], points[i], points[(i+1)%n], radius[i])
		thetas[i] = info.theta
		full[i] = [2]float64{info.offset, info.offset}
	}
	for i := range points {
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		full[prev][1], full[i][0] = shrinkOffsets(points[prev], points[i], full[prev][1], full[i][0])
		full[i][1], full[next][0] = shrinkOffsets(points[i], points[next], full[i][1], full[next][0])
	}
	out := make([]cornerOffset, n)
	for i := range out {
		out[i] = cornerOffset{theta: thetas[i], offset: math.Min(full[i][0], full[i][1])}
	}
	return out
}

// arcToBezier approximates the arc between tangent points p1 and p2 with a
// cubic, extending the incoming edges p0->p1 and p3->p2.
func arcToBezier(p0, p1, p2, p3 Point, radius, theta float64) Vertex {
	l := 4.0 / 3.0 * radius * math.Tan(0.25*theta)
	p01 := p1.Sub(p0)
	p32 := p2.Sub(p3)
	l0 := p01.Len()
	l1 := p32.Len()
	c1 := p0.Add(p01.Scale((l0 + l) / safeNumber(l0, lengthFloor)))
	c2 := p3.Add(p32.Scale((l1 + l) / safeNumber(l1, lengthFloor)))
	return Vertex{P0: p1, P1: c1, P2: c2, P3: p2, Curve: true}
}

// roundedVertices returns the outline of a closed polygon with each corner
// rounded by its radius. minSide scales the sharp-corner threshold.
func roundedVertices(points []Point, radius []float64, minSide float64) []Vertex {
	n := len(points)
	infos := cornerOffsets(points, radius)
	out := make([]Vertex, 0, n)
	for i := range points {
		prev := points[(i-1+n)%n]
		cur := points[i]
		next := points[(i+1)%n]
		info := infos[i]
		p01 := cur.Sub(prev)
		l01 := p01.Len()
		p1 := prev.Add(p01.Scale((l01 - info.offset) / safeNumber(l01, lengthFloor)))
		if radius[i]/safeNumber(minSide, lengthFloor) <= curveThreshold {
			out = append(out, Vertex{P0: p1})
			continue
		}
		p21 := cur.Sub(next)
		l21 := p21.Len()
		p2 := next.Add(p21.Scale((l21 - info.offset) / safeNumber(l21, lengthFloor)))
		out = append(out, arcToBezier(prev, p1, p2, next, info.radius(), math.Pi-info.theta))
	}
	return out
}
