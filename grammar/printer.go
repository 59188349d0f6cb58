package grammar

import (
	"strconv"
	"strings"
)

// The printer renders an expression back to source with single spaces
// around binary operators. Parentheses from the source are kept, so
// parsing the output yields the same tree.

func (e *Expr) String() string {
	if e.Right == nil {
		return e.Left.String()
	}
	return e.Left.String() + " => " + e.Right.String()
}

func (d *Disjunction) String() string {
	var b strings.Builder
	b.WriteString(d.Left.String())
	for _, r := range d.Right {
		b.WriteString(" or " + r.String())
	}
	return b.String()
}

func (c *Conjunction) String() string {
	var b strings.Builder
	b.WriteString(c.Left.String())
	for _, r := range c.Right {
		b.WriteString(" and " + r.String())
	}
	return b.String()
}

func (e *Equality) String() string {
	if e.Op == nil {
		return e.Left.String()
	}
	return e.Left.String() + " " + e.Op.Operator + " " + e.Op.Right.String()
}

func (c *Comparison) String() string {
	if c.Op == nil {
		return c.Left.String()
	}
	return c.Left.String() + " " + c.Op.Operator + " " + c.Op.Right.String()
}

func (c *Concat) String() string {
	var b strings.Builder
	b.WriteString(c.Left.String())
	for _, r := range c.Right {
		b.WriteString(" ++ " + r.String())
	}
	return b.String()
}

func (a *Additive) String() string {
	var b strings.Builder
	b.WriteString(a.Left.String())
	for _, op := range a.Ops {
		b.WriteString(" " + op.Operator + " " + op.Right.String())
	}
	return b.String()
}

func (m *Multiplicative) String() string {
	var b strings.Builder
	b.WriteString(m.Left.String())
	for _, op := range m.Ops {
		b.WriteString(" " + op.Operator + " " + op.Right.String())
	}
	return b.String()
}

func (u *Unary) String() string {
	switch {
	case u.Not != nil:
		return "not " + u.Not.String()
	case u.Neg != nil:
		return "-" + u.Neg.String()
	default:
		return u.Power.String()
	}
}

func (p *Power) String() string {
	if p.Exponent == nil {
		return p.Base.String()
	}
	return p.Base.String() + "^" + p.Exponent.String()
}

func (p *Postfix) String() string {
	var b strings.Builder
	b.WriteString(p.Primary.String())
	for _, ix := range p.Indices {
		b.WriteString("[" + ix.String() + "]")
	}
	return b.String()
}

func (p *Primary) String() string {
	switch {
	case p.If != nil:
		return p.If.String()
	case p.Call != nil:
		return p.Call.String()
	case p.Bool != nil:
		return *p.Bool
	case p.Hex != nil:
		return *p.Hex
	case p.Int != nil:
		return *p.Int
	case p.Bytes != nil:
		return strconv.Quote(*p.Bytes)
	case p.Ident != nil:
		return *p.Ident
	case p.Parens != nil:
		return "(" + p.Parens.String() + ")"
	}
	return ""
}

func (i *If) String() string {
	return "if " + i.Cond.String() + " then " + i.Then.String() + " else " + i.Else.String()
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for n, a := range c.Args {
		args[n] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func (t *SlotType) String() string {
	if t.Mapping != nil {
		return "mapping(" + t.Mapping.Key + " => " + t.Mapping.Value.String() + ")"
	}
	return t.Name
}
