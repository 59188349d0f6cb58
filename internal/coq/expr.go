package coq

import (
	"fmt"
	"strings"

	"claimc/internal/errors"
	"claimc/internal/ir"
)

var boolFuncs = map[ir.BoolOperator]string{
	ir.OpAnd:  "andb",
	ir.OpOr:   "orb",
	ir.OpImpl: "implb",
}

var arithOps = map[ir.ArithOperator]string{
	ir.OpAdd: "+",
	ir.OpSub: "-",
	ir.OpMul: "*",
	ir.OpDiv: "/",
	ir.OpMod: "mod",
	ir.OpPow: "^",
}

var boundNames = map[ir.BoundKind]string{
	ir.BoundIntMin:  "INT_MIN",
	ir.BoundIntMax:  "INT_MAX",
	ir.BoundUIntMin: "UINT_MIN",
	ir.BoundUIntMax: "UINT_MAX",
}

// scope is the context an expression is lowered in.
type scope struct {
	layout ir.ContractLayout
	// state is the name of the prior state. It is empty while lowering the
	// constructor, where there is no storage to read.
	state string
	// claim names the claim being lowered, for error messages.
	claim string
}

func (s *scope) unsupported(feature string) error {
	return errors.UnsupportedFeature(feature, s.claim)
}

// expr lowers e to a Coq term. Closed compound terms are folded first. The
// result is either an atom or parenthesized, so it can be applied or nested
// without further bracketing.
func expr[A ir.Value](s *scope, e ir.Exp[A, ir.Timed]) (string, error) {
	if foldable(e) {
		if v, ok := ir.Eval(e); ok {
			return literal(s, v)
		}
	}

	switch e := any(e).(type) {
	case *ir.BoolOp[ir.Timed]:
		return apply(s, boolFuncs[e.Op], e.L, e.R)
	case *ir.Not[ir.Timed]:
		return apply(s, "negb", e.X)
	case *ir.Cmp[ir.Timed]:
		switch e.Op {
		case ir.OpLT:
			return infix(s, e.L, "<?", e.R)
		case ir.OpLEQ:
			return infix(s, e.L, "<=?", e.R)
		case ir.OpGEQ:
			return infix(s, e.R, "<=?", e.L)
		default:
			return infix(s, e.R, "<?", e.L)
		}
	case *ir.Arith[ir.Timed]:
		return infix(s, e.L, arithOps[e.Op], e.R)
	case *ir.Bound[ir.Timed]:
		return fmt.Sprintf("(%s %d)", boundNames[e.Kind], e.Bits), nil
	case *ir.LitInt[ir.Timed]:
		v, _ := ir.Eval[ir.Integer, ir.Timed](e)
		return literal(s, v)
	case *ir.LitBool[ir.Timed]:
		return literal(s, e.Value)
	case *ir.Eq[ir.Integer, ir.Timed]:
		return infix(s, e.L, "=?", e.R)
	case *ir.Eq[bool, ir.Timed]:
		return apply(s, "Bool.eqb", e.L, e.R)
	case *ir.NEq[ir.Integer, ir.Timed]:
		c, err := infix(s, e.L, "=?", e.R)
		if err != nil {
			return "", err
		}
		return "(negb " + c + ")", nil
	case *ir.NEq[bool, ir.Timed]:
		c, err := apply(s, "Bool.eqb", e.L, e.R)
		if err != nil {
			return "", err
		}
		return "(negb " + c + ")", nil
	case *ir.Eq[ir.Bytes, ir.Timed], *ir.NEq[ir.Bytes, ir.Timed]:
		return "", s.unsupported("byte string comparison")
	case *ir.LitBytes[ir.Timed], *ir.Cat[ir.Timed], *ir.Slice[ir.Timed]:
		return "", s.unsupported("byte string expression")
	case *ir.NewAddr[ir.Timed]:
		return "", s.unsupported("address allocation")
	case *ir.Env[A, ir.Timed]:
		return "", s.unsupported("environment value " + e.Value.String())
	case *ir.Var[A, ir.Timed]:
		return e.Name, nil
	case *ir.ITE[A, ir.Timed]:
		c, err := expr(s, e.Cond)
		if err != nil {
			return "", err
		}
		t, err := expr(s, e.Then)
		if err != nil {
			return "", err
		}
		f, err := expr(s, e.Else)
		if err != nil {
			return "", err
		}
		return "(if " + c + " then " + t + " else " + f + ")", nil
	case *ir.Entry[A, ir.Timed]:
		if !e.When.Valid() {
			return "", s.unsupported("storage read " + e.Item.Ref.String() + " without pre or post")
		}
		return entry(s, e.Item.Ref)
	}
	return "", s.unsupported(fmt.Sprintf("expression %s", e))
}

// foldable reports whether e is worth folding. Leaves print as themselves
// and bounds keep their symbolic ActLib names.
func foldable[A ir.Value](e ir.Exp[A, ir.Timed]) bool {
	switch any(e).(type) {
	case *ir.LitInt[ir.Timed], *ir.LitBool[ir.Timed], *ir.Bound[ir.Timed]:
		return false
	}
	return true
}

func literal[A ir.Value](s *scope, v A) (string, error) {
	switch v := any(v).(type) {
	case ir.Integer:
		if v.Sign() < 0 {
			return "(" + v.String() + ")", nil
		}
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	}
	return "", s.unsupported("byte string expression")
}

func infix[A ir.Value](s *scope, l ir.Exp[A, ir.Timed], op string, r ir.Exp[A, ir.Timed]) (string, error) {
	ls, err := expr(s, l)
	if err != nil {
		return "", err
	}
	rs, err := expr(s, r)
	if err != nil {
		return "", err
	}
	return "(" + ls + " " + op + " " + rs + ")", nil
}

func apply[A ir.Value](s *scope, fn string, args ...ir.Exp[A, ir.Timed]) (string, error) {
	parts := []string{fn}
	for _, a := range args {
		as, err := expr(s, a)
		if err != nil {
			return "", err
		}
		parts = append(parts, as)
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}

// typed lowers an expression of any domain, such as a mapping index.
func typed(s *scope, e ir.TypedExp[ir.Timed]) (string, error) {
	switch e := e.(type) {
	case *ir.TExp[ir.Integer, ir.Timed]:
		return expr(s, e.Exp)
	case *ir.TExp[bool, ir.Timed]:
		return expr(s, e.Exp)
	}
	return "", s.unsupported("byte string index")
}

// entry lowers a storage read to an application of the field accessor to
// the prior state. Pre and post reads lower alike: a transition only reads
// the state it starts from.
func entry(s *scope, ref ir.Ref[ir.Timed]) (string, error) {
	if s.state == "" {
		return "", s.unsupported("storage read " + ref.String())
	}
	if ref.Contract != s.layout.Contract {
		return "", s.unsupported("external storage " + ref.Contract + "." + ref.Name)
	}
	if _, ok := s.layout.Slot(ref.Name); !ok {
		return "", s.unsupported("external storage " + ref.Name)
	}
	parts := []string{ref.Name, s.state}
	for _, ix := range ref.Indices {
		is, err := typed(s, ix)
		if err != nil {
			return "", err
		}
		parts = append(parts, is)
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}
