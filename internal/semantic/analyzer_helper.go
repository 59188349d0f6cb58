package semantic

import (
	"github.com/alecthomas/participle/v2/lexer"

	"claimc/internal/errors"
	"claimc/internal/ir"
)

// term is a typed expression whose domain is only known after checking.
// Exactly one of i, b and s is set, as named by sort.
type term[P ir.Phase] struct {
	sort string
	i    ir.Exp[ir.Integer, P]
	b    ir.Exp[bool, P]
	s    ir.Exp[ir.Bytes, P]
	pos  errors.Position
}

func wrap[A ir.Value, P ir.Phase](e ir.Exp[A, P], pos errors.Position) term[P] {
	t := term[P]{sort: ir.Sort[A](), pos: pos}
	switch e := any(e).(type) {
	case ir.Exp[ir.Integer, P]:
		t.i = e
	case ir.Exp[bool, P]:
		t.b = e
	case ir.Exp[ir.Bytes, P]:
		t.s = e
	}
	return t
}

// as returns the expression of t if it denotes domain A.
func as[A ir.Value, P ir.Phase](t term[P]) (ir.Exp[A, P], error) {
	want := ir.Sort[A]()
	if t.sort != want {
		return nil, errors.TypeMismatch(want, t.sort, t.pos)
	}
	var e any
	switch want {
	case "int":
		e = t.i
	case "bool":
		e = t.b
	default:
		e = t.s
	}
	return e.(ir.Exp[A, P]), nil
}

func (t term[P]) typed() ir.TypedExp[P] {
	switch t.sort {
	case "int":
		return ir.Typed(t.i)
	case "bool":
		return ir.Typed(t.b)
	default:
		return ir.Typed(t.s)
	}
}

func (t term[P]) String() string {
	return t.typed().String()
}

func position(pos lexer.Position) errors.Position {
	return errors.Position{Line: pos.Line, Column: pos.Column}
}

// timeMarker returns the Time[P] value of a pre or post marker. Untimed
// terms have no markers.
func timeMarker[P ir.Phase](post bool) (ir.Time[P], bool) {
	var p P
	if _, ok := any(p).(ir.Untimed); ok {
		return ir.Time[P]{}, false
	}
	if post {
		return any(ir.Post).(ir.Time[P]), true
	}
	return any(ir.Pre).(ir.Time[P]), true
}

func neither[P ir.Phase]() (ir.Time[P], bool) {
	t, ok := any(ir.Neither).(ir.Time[P])
	return t, ok
}
