package easel

import "fmt"

// Field selects which side of an atomic op is applied.
type Field uint8

const (
	FieldNext Field = iota // do / redo
	FieldPrev              // undo
)

func (f Field) String() string {
	if f == FieldPrev {
		return "prev"
	}
	return "next"
}

// Assignment is a set of node fields to assign. Nil fields are left alone;
// X, then Y, then Position are applied.
type Assignment struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Position *Point   `json:"position,omitempty"`
}

// AssignPosition returns an Assignment of Position.
func AssignPosition(p Point) Assignment { return Assignment{Position: &p} }

// AssignX returns an Assignment of X.
func AssignX(x float64) Assignment { return Assignment{X: &x} }

// AssignY returns an Assignment of Y.
func AssignY(y float64) Assignment { return Assignment{Y: &y} }

func (a Assignment) apply(n Node) {
	if a.X != nil {
		n.SetX(*a.X)
	}
	if a.Y != nil {
		n.SetY(*a.Y)
	}
	if a.Position != nil {
		n.SetPosition(*a.Position)
	}
}

// AssignmentMap maps node aliases to assignments.
type AssignmentMap map[string]Assignment

// --- Atomic ops ---

// AOpType identifies the shape of an atomic op.
type AOpType string

// AOpAssignment assigns node fields directly.
const AOpAssignment AOpType = "assignment"

// AOp is a single reversible mutation: Next is applied to do and redo, Prev
// to undo. RenderInfo is what each touched node needs afterwards.
type AOp struct {
	Type       AOpType       `json:"type"`
	Prev       AssignmentMap `json:"prev"`
	Next       AssignmentMap `json:"next"`
	RenderInfo RenderInfoMap `json:"renderInfo"`
}

func (op AOp) side(f Field) AssignmentMap {
	if f == FieldPrev {
		return op.Prev
	}
	return op.Next
}

// --- Composite ops ---

// COpType identifies a composite op.
type COpType string

const (
	COpMove   COpType = "move"   // relative move, recorded as absolute positions
	COpMoveTo COpType = "moveTo" // absolute move
)

// COp is a caller-level intent. It has no undo logic of its own; the
// executer translates it into atomic ops.
type COp struct {
	Type COpType       `json:"type"`
	Prev AssignmentMap `json:"prev"`
	Next AssignmentMap `json:"next"`
}

// MoveTo returns a moveTo op taking alias from one position to another.
func MoveTo(alias string, from, to Point) COp {
	return COp{
		Type: COpMoveTo,
		Prev: AssignmentMap{alias: AssignPosition(from)},
		Next: AssignmentMap{alias: AssignPosition(to)},
	}
}

// Move returns a move op shifting every alias by delta from its current
// position in g.
func Move(g *Graph, delta Point, aliases ...string) (COp, error) {
	op := COp{Type: COpMove, Prev: AssignmentMap{}, Next: AssignmentMap{}}
	for _, a := range aliases {
		var pos Point
		if err := g.View(a, func(n Node) { pos = n.Position() }); err != nil {
			return COp{}, err
		}
		op.Prev[a] = AssignPosition(pos)
		op.Next[a] = AssignPosition(pos.Add(delta))
	}
	return op, nil
}

// translate turns a composite op into its atomic ops.
func translate(cop COp) ([]AOp, error) {
	switch cop.Type {
	case COpMove, COpMoveTo:
		return assignmentAOps(cop)
	default:
		return nil, newError(CodeUnknownOperation, "", "unknown composite op %q", cop.Type)
	}
}

func assignmentAOps(cop COp) ([]AOp, error) {
	aop := AOp{
		Type:       AOpAssignment,
		Prev:       make(AssignmentMap, len(cop.Prev)),
		Next:       make(AssignmentMap, len(cop.Prev)),
		RenderInfo: make(RenderInfoMap, len(cop.Prev)),
	}
	for alias, prev := range cop.Prev {
		next, ok := cop.Next[alias]
		if !ok {
			return nil, newError(CodeUnknownOperation, alias, "%s op has prev but no next", cop.Type)
		}
		aop.Prev[alias] = prev
		aop.Next[alias] = next
		aop.RenderInfo[alias] = RenderInfo{Level: TransformDirty, Queue: Immediate}
	}
	if len(cop.Next) != len(cop.Prev) {
		return nil, newError(CodeUnknownOperation, "", "%s op has %d prev and %d next entries", cop.Type, len(cop.Prev), len(cop.Next))
	}
	return []AOp{aop}, nil
}

// String renders an op for logs.
func (c COp) String() string {
	return fmt.Sprintf("%s(%d nodes)", c.Type, len(c.Next))
}
