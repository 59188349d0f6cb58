package semantic

import (
	"fmt"
	"math/big"
	"strings"

	"claimc/grammar"
	"claimc/internal/errors"
	"claimc/internal/ir"
)

// walker types one expression tree. when is the marker of the innermost
// enclosing pre() or post(), nil outside of them.
type walker[P ir.Phase] struct {
	a    *Analyzer
	when *ir.Time[P]
}

func binary[A, B ir.Value, P ir.Phase](l, r term[P], op func(x, y ir.Exp[A, P]) ir.Exp[B, P]) (term[P], error) {
	x, err := as[A](l)
	if err != nil {
		return term[P]{}, err
	}
	y, err := as[A](r)
	if err != nil {
		return term[P]{}, err
	}
	return wrap(op(x, y), l.pos), nil
}

func (w *walker[P]) expr(e *grammar.Expr) (term[P], error) {
	l, err := w.disjunction(e.Left)
	if err != nil || e.Right == nil {
		return l, err
	}
	r, err := w.expr(e.Right)
	if err != nil {
		return term[P]{}, err
	}
	return binary(l, r, ir.Impl[P])
}

func (w *walker[P]) disjunction(d *grammar.Disjunction) (term[P], error) {
	acc, err := w.conjunction(d.Left)
	for _, next := range d.Right {
		if err != nil {
			break
		}
		var r term[P]
		if r, err = w.conjunction(next); err == nil {
			acc, err = binary(acc, r, ir.Or[P])
		}
	}
	return acc, err
}

func (w *walker[P]) conjunction(c *grammar.Conjunction) (term[P], error) {
	acc, err := w.equality(c.Left)
	for _, next := range c.Right {
		if err != nil {
			break
		}
		var r term[P]
		if r, err = w.equality(next); err == nil {
			acc, err = binary(acc, r, ir.And[P])
		}
	}
	return acc, err
}

func (w *walker[P]) equality(e *grammar.Equality) (term[P], error) {
	l, err := w.comparison(e.Left)
	if err != nil || e.Op == nil {
		return l, err
	}
	r, err := w.comparison(e.Op.Right)
	if err != nil {
		return term[P]{}, err
	}
	if l.sort != r.sort {
		return term[P]{}, errors.TypeMismatch(l.sort, r.sort, r.pos)
	}

	eq := e.Op.Operator == "=="
	switch l.sort {
	case "int":
		if eq {
			return binary(l, r, ir.Equal[ir.Integer, P])
		}
		return binary(l, r, ir.NotEqual[ir.Integer, P])
	case "bool":
		if eq {
			return binary(l, r, ir.Equal[bool, P])
		}
		return binary(l, r, ir.NotEqual[bool, P])
	default:
		if eq {
			return binary(l, r, ir.Equal[ir.Bytes, P])
		}
		return binary(l, r, ir.NotEqual[ir.Bytes, P])
	}
}

func (w *walker[P]) comparison(c *grammar.Comparison) (term[P], error) {
	l, err := w.concat(c.Left)
	if err != nil || c.Op == nil {
		return l, err
	}
	r, err := w.concat(c.Op.Right)
	if err != nil {
		return term[P]{}, err
	}

	switch c.Op.Operator {
	case "<":
		return binary(l, r, ir.LT[P])
	case "<=":
		return binary(l, r, ir.LEQ[P])
	case ">=":
		return binary(l, r, ir.GEQ[P])
	default:
		return binary(l, r, ir.GT[P])
	}
}

func (w *walker[P]) concat(c *grammar.Concat) (term[P], error) {
	acc, err := w.additive(c.Left)
	for _, next := range c.Right {
		if err != nil {
			break
		}
		var r term[P]
		if r, err = w.additive(next); err == nil {
			acc, err = binary(acc, r, ir.Concat[P])
		}
	}
	return acc, err
}

func (w *walker[P]) additive(a *grammar.Additive) (term[P], error) {
	acc, err := w.multiplicative(a.Left)
	for _, op := range a.Ops {
		if err != nil {
			break
		}
		var r term[P]
		if r, err = w.multiplicative(op.Right); err != nil {
			break
		}
		if op.Operator == "+" {
			acc, err = binary(acc, r, ir.Add[P])
		} else {
			acc, err = binary(acc, r, ir.Sub[P])
		}
	}
	return acc, err
}

func (w *walker[P]) multiplicative(m *grammar.Multiplicative) (term[P], error) {
	acc, err := w.unary(m.Left)
	for _, op := range m.Ops {
		if err != nil {
			break
		}
		var r term[P]
		if r, err = w.unary(op.Right); err != nil {
			break
		}
		switch op.Operator {
		case "*":
			acc, err = binary(acc, r, ir.Mul[P])
		case "/":
			acc, err = binary(acc, r, ir.Div[P])
		default:
			acc, err = binary(acc, r, ir.Mod[P])
		}
	}
	return acc, err
}

func (w *walker[P]) unary(u *grammar.Unary) (term[P], error) {
	pos := position(u.Pos)
	switch {
	case u.Not != nil:
		x, err := w.unary(u.Not)
		if err != nil {
			return term[P]{}, err
		}
		b, err := as[bool](x)
		if err != nil {
			return term[P]{}, err
		}
		return wrap(ir.Neg(b), pos), nil

	case u.Neg != nil:
		// A negated literal is a negative literal.
		if lit, ok := integerLiteral(u.Neg); ok {
			v, err := parseInteger(lit, pos)
			if err != nil {
				return term[P]{}, err
			}
			return wrap(ir.BigInt[P](v.Neg(v)), pos), nil
		}
		x, err := w.unary(u.Neg)
		if err != nil {
			return term[P]{}, err
		}
		return binary(wrap(ir.Int[P](0), pos), x, ir.Sub[P])
	}
	return w.power(u.Power)
}

func (w *walker[P]) power(p *grammar.Power) (term[P], error) {
	base, err := w.postfix(p.Base)
	if err != nil || p.Exponent == nil {
		return base, err
	}
	exp, err := w.unary(p.Exponent)
	if err != nil {
		return term[P]{}, err
	}
	return binary(base, exp, ir.Pow[P])
}

func (w *walker[P]) postfix(p *grammar.Postfix) (term[P], error) {
	if len(p.Indices) == 0 {
		return w.primary(p.Primary)
	}
	if p.Primary.Ident == nil {
		return term[P]{}, errors.NewError(errors.ErrorTypeMismatch,
			fmt.Sprintf("'%s' cannot be indexed", p.Primary.String()), position(p.Pos)).
			WithNote("only mapping storage slots take indices").
			Build()
	}
	return w.ident(*p.Primary.Ident, p.Indices, position(p.Primary.Pos))
}

func (w *walker[P]) primary(p *grammar.Primary) (term[P], error) {
	pos := position(p.Pos)
	switch {
	case p.If != nil:
		return w.ite(p.If)
	case p.Call != nil:
		return w.call(p.Call)
	case p.Bool != nil:
		return wrap(ir.Bool[P](*p.Bool == "true"), pos), nil
	case p.Hex != nil, p.Int != nil:
		lit := p.Int
		if lit == nil {
			lit = p.Hex
		}
		v, err := parseInteger(*lit, pos)
		if err != nil {
			return term[P]{}, err
		}
		return wrap(ir.BigInt[P](v), pos), nil
	case p.Bytes != nil:
		return wrap(ir.ByteString[P]([]byte(*p.Bytes)), pos), nil
	case p.Ident != nil:
		return w.ident(*p.Ident, nil, pos)
	}
	return w.expr(p.Parens)
}

func (w *walker[P]) ite(i *grammar.If) (term[P], error) {
	c, err := w.expr(i.Cond)
	if err != nil {
		return term[P]{}, err
	}
	cond, err := as[bool](c)
	if err != nil {
		return term[P]{}, err
	}
	then, err := w.expr(i.Then)
	if err != nil {
		return term[P]{}, err
	}
	els, err := w.expr(i.Else)
	if err != nil {
		return term[P]{}, err
	}

	pos := position(i.Pos)
	switch then.sort {
	case "int":
		return ite[ir.Integer](cond, then, els, pos)
	case "bool":
		return ite[bool](cond, then, els, pos)
	default:
		return ite[ir.Bytes](cond, then, els, pos)
	}
}

func ite[A ir.Value, P ir.Phase](c ir.Exp[bool, P], then, els term[P], pos errors.Position) (term[P], error) {
	x, err := as[A](then)
	if err != nil {
		return term[P]{}, err
	}
	y, err := as[A](els)
	if err != nil {
		return term[P]{}, err
	}
	return wrap(ir.If(c, x, y), pos), nil
}

func (w *walker[P]) ident(name string, indices []*grammar.Expr, pos errors.Position) (term[P], error) {
	sym := w.a.context.Lookup(name)
	if sym == nil {
		return term[P]{}, errors.UnknownName(name, pos, w.a.context.Names())
	}

	if sym.Kind == SymbolStorage {
		return w.storage(sym, indices, pos)
	}
	if len(indices) > 0 {
		return term[P]{}, errors.NewError(errors.ErrorTypeMismatch,
			fmt.Sprintf("%s '%s' cannot be indexed", sym.Kind, name), pos).
			WithLength(len(name)).
			Build()
	}

	if sym.Kind == SymbolEnvironment {
		switch sym.Sort() {
		case "int":
			return wrap(ir.EnvValue[ir.Integer, P](sym.Env), pos), nil
		default:
			return wrap(ir.EnvValue[ir.Bytes, P](sym.Env), pos), nil
		}
	}

	switch sym.Sort() {
	case "int":
		return wrap(ir.Variable[ir.Integer, P](name), pos), nil
	case "bool":
		return wrap(ir.Variable[bool, P](name), pos), nil
	default:
		return wrap(ir.Variable[ir.Bytes, P](name), pos), nil
	}
}

func (w *walker[P]) storage(sym *Symbol, indices []*grammar.Expr, pos errors.Position) (term[P], error) {
	when, err := w.time(sym.Name, pos)
	if err != nil {
		return term[P]{}, err
	}

	var keys []ir.AbiType
	var value ir.AbiType
	switch st := sym.Slot.(type) {
	case ir.StorageValue:
		value = st.Type
	case ir.StorageMapping:
		keys, value = st.Keys, st.Value
	}

	if len(indices) != len(keys) {
		return term[P]{}, errors.NewError(errors.ErrorTypeMismatch,
			fmt.Sprintf("storage slot '%s' takes %d indices, found %d", sym.Name, len(keys), len(indices)), pos).
			WithLength(len(sym.Name)).
			WithNote(fmt.Sprintf("'%s' has type %s", sym.Name, sym.Slot)).
			Build()
	}

	var ixs []ir.TypedExp[P]
	for n, ix := range indices {
		t, err := w.expr(ix)
		if err != nil {
			return term[P]{}, err
		}
		if want := keys[n].Sort(); t.sort != want {
			return term[P]{}, errors.TypeMismatch(want, t.sort, t.pos)
		}
		ixs = append(ixs, t.typed())
	}

	contract := w.a.context.Contract
	switch value.Sort() {
	case "int":
		return wrap(ir.Lookup(when, ir.Item[ir.Integer](contract, sym.Name, ixs...)), pos), nil
	case "bool":
		return wrap(ir.Lookup(when, ir.Item[bool](contract, sym.Name, ixs...)), pos), nil
	default:
		return wrap(ir.Lookup(when, ir.Item[ir.Bytes](contract, sym.Name, ixs...)), pos), nil
	}
}

// time is the marker a storage read gets: Neither for untimed terms, the
// enclosing pre() or post() for timed ones.
func (w *walker[P]) time(name string, pos errors.Position) (ir.Time[P], error) {
	if t, ok := neither[P](); ok {
		return t, nil
	}
	if w.when == nil {
		return ir.Time[P]{}, errors.UnmarkedStorageRead(name, pos)
	}
	return *w.when, nil
}

func (w *walker[P]) call(c *grammar.Call) (term[P], error) {
	pos := position(c.Pos)

	switch c.Name {
	case "pre", "post":
		if len(c.Args) != 1 {
			return term[P]{}, arity(c, 1)
		}
		t, ok := timeMarker[P](c.Name == "post")
		if !ok {
			return term[P]{}, errors.TimingError(fmt.Sprintf("%s() is not allowed here", c.Name), pos)
		}
		return (&walker[P]{a: w.a, when: &t}).expr(c.Args[0])

	case "intmin", "intmax", "uintmin", "uintmax":
		args, err := w.args(c, "int")
		if err != nil {
			return term[P]{}, err
		}
		v, ok := ir.Eval(args[0].i)
		if !ok || !v.IsInt64() || v.Int64() < 1 || v.Int64() > 256 {
			return term[P]{}, errors.InvalidCall(c.Name, "bit width must be a constant between 1 and 256", pos)
		}
		bits := int(v.Int64())
		switch c.Name {
		case "intmin":
			return wrap(ir.IntMin[P](bits), pos), nil
		case "intmax":
			return wrap(ir.IntMax[P](bits), pos), nil
		case "uintmin":
			return wrap(ir.UIntMin[P](bits), pos), nil
		default:
			return wrap(ir.UIntMax[P](bits), pos), nil
		}

	case "newAddr":
		args, err := w.args(c, "int", "int")
		if err != nil {
			return term[P]{}, err
		}
		return wrap(ir.NewAddress(args[0].i, args[1].i), pos), nil

	case "slice":
		args, err := w.args(c, "bytes", "int", "int")
		if err != nil {
			return term[P]{}, err
		}
		return wrap(ir.SliceOf(args[0].s, args[1].i, args[2].i), pos), nil
	}

	return term[P]{}, errors.UnknownName(c.Name, pos, builtinCalls)
}

// args types the arguments of c against the expected sorts.
func (w *walker[P]) args(c *grammar.Call, sorts ...string) ([]term[P], error) {
	if len(c.Args) != len(sorts) {
		return nil, arity(c, len(sorts))
	}
	out := make([]term[P], len(sorts))
	for n, arg := range c.Args {
		t, err := w.expr(arg)
		if err != nil {
			return nil, err
		}
		if t.sort != sorts[n] {
			return nil, errors.TypeMismatch(sorts[n], t.sort, t.pos)
		}
		out[n] = t
	}
	return out, nil
}

func arity(c *grammar.Call, want int) error {
	return errors.InvalidCall(c.Name,
		fmt.Sprintf("expected %d arguments, found %d", want, len(c.Args)), position(c.Pos))
}

// integerLiteral reports whether u is a bare integer literal.
func integerLiteral(u *grammar.Unary) (string, bool) {
	if u.Power == nil || u.Power.Exponent != nil || len(u.Power.Base.Indices) > 0 {
		return "", false
	}
	p := u.Power.Base.Primary
	switch {
	case p.Int != nil:
		return *p.Int, true
	case p.Hex != nil:
		return *p.Hex, true
	}
	return "", false
}

func parseInteger(lit string, pos errors.Position) (*big.Int, error) {
	var v *big.Int
	var ok bool
	if strings.HasPrefix(lit, "0x") {
		v, ok = new(big.Int).SetString(lit[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(lit, 10)
	}
	if !ok {
		return nil, errors.SyntaxError(fmt.Sprintf("invalid integer literal %q", lit), pos)
	}
	return v, nil
}
