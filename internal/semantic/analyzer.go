package semantic

import (
	"claimc/grammar"
	"claimc/internal/errors"
	"claimc/internal/ir"
)

// Analyzer turns expression source into typed IR. Every name is resolved
// against the analyzer's Context.
//
// The phase of the result is picked by the caller: Untimed for
// preconditions, updates and invariants, where storage is read without a
// marker, and Timed for postconditions and return values, where every
// storage read sits inside pre() or post().
type Analyzer struct {
	context *Context
}

func NewAnalyzer(ctx *Context) *Analyzer {
	return &Analyzer{context: ctx}
}

// Context returns the scope the analyzer resolves names in.
func (a *Analyzer) Context() *Context {
	return a.context
}

// Check types a parsed expression.
func Check[P ir.Phase](a *Analyzer, e *grammar.Expr) (ir.TypedExp[P], error) {
	t, err := (&walker[P]{a: a}).expr(e)
	if err != nil {
		return nil, err
	}
	return t.typed(), nil
}

// Typed parses and types src in whatever domain it denotes.
func Typed[P ir.Phase](a *Analyzer, src string) (ir.TypedExp[P], error) {
	t, err := parse[P](a, src)
	if err != nil {
		return nil, err
	}
	return t.typed(), nil
}

// Bool parses and types src as a boolean expression.
func Bool[P ir.Phase](a *Analyzer, src string) (ir.Exp[bool, P], error) {
	t, err := parse[P](a, src)
	if err != nil {
		return nil, err
	}
	return as[bool](t)
}

// Int parses and types src as an integer expression.
func Int[P ir.Phase](a *Analyzer, src string) (ir.Exp[ir.Integer, P], error) {
	t, err := parse[P](a, src)
	if err != nil {
		return nil, err
	}
	return as[ir.Integer](t)
}

// Update types the storage write target := value. target must be a
// complete reference to a storage slot of the analyzer's contract and
// value must have the slot's domain.
func Update(a *Analyzer, target, value string) (ir.StorageUpdate[ir.Untimed], error) {
	lhs, err := parse[ir.Untimed](a, target)
	if err != nil {
		return nil, err
	}
	rhs, err := parse[ir.Untimed](a, value)
	if err != nil {
		return nil, err
	}

	switch lhs.sort {
	case "int":
		return assign[ir.Integer](lhs, rhs)
	case "bool":
		return assign[bool](lhs, rhs)
	default:
		return assign[ir.Bytes](lhs, rhs)
	}
}

// Location types a storage reference that a claim constrains without
// writing it.
func Location(a *Analyzer, target string) (ir.StorageLocation[ir.Untimed], error) {
	t, err := parse[ir.Untimed](a, target)
	if err != nil {
		return nil, err
	}

	switch t.sort {
	case "int":
		return locate[ir.Integer](t)
	case "bool":
		return locate[bool](t)
	default:
		return locate[ir.Bytes](t)
	}
}

func parse[P ir.Phase](a *Analyzer, src string) (term[P], error) {
	e, err := grammar.Parse(src)
	if err != nil {
		return term[P]{}, err
	}
	return (&walker[P]{a: a}).expr(e)
}

func entryOf[A ir.Value](t term[ir.Untimed]) (*ir.Entry[A, ir.Untimed], error) {
	e, err := as[A](t)
	if err != nil {
		return nil, err
	}
	entry, ok := e.(*ir.Entry[A, ir.Untimed])
	if !ok {
		return nil, errors.NewError(errors.ErrorTypeMismatch,
			"expected a storage reference, found '"+t.String()+"'", t.pos).
			WithNote("only storage slots can be updated or constrained").
			Build()
	}
	return entry, nil
}

func assign[A ir.Value](target, value term[ir.Untimed]) (ir.StorageUpdate[ir.Untimed], error) {
	entry, err := entryOf[A](target)
	if err != nil {
		return nil, err
	}
	v, err := as[A](value)
	if err != nil {
		return nil, err
	}
	return ir.Assign(entry.Item, v), nil
}

func locate[A ir.Value](target term[ir.Untimed]) (ir.StorageLocation[ir.Untimed], error) {
	entry, err := entryOf[A](target)
	if err != nil {
		return nil, err
	}
	return ir.Locate(entry.Item), nil
}
