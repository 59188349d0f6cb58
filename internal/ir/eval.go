package ir

import (
	"bytes"
	"math/big"
)

// Eval folds a closed expression to its value. ok is false when e is not
// evaluable: it mentions a variable, an environment value or a storage
// entry, or one of its operators is undefined on its operands (division by
// zero, negative exponent, non-positive bit width). Not evaluable is an
// answer, not an error: it means the expression is symbolic.
//
// Integer division and modulo are floored: the quotient rounds toward
// negative infinity and the remainder takes the sign of the divisor.
func Eval[A Value, P Phase](e Exp[A, P]) (A, bool) {
	return e.eval()
}

// EvalTyped folds a TypedExp. The value is a *big.Int, a bool or a []byte.
func EvalTyped[P Phase](e TypedExp[P]) (any, bool) {
	return e.evalAny()
}

var one = big.NewInt(1)

func (e *BoolOp[P]) eval() (bool, bool) {
	l, ok := e.L.eval()
	if !ok {
		return false, false
	}
	r, ok := e.R.eval()
	if !ok {
		return false, false
	}
	switch e.Op {
	case OpAnd:
		return l && r, true
	case OpOr:
		return l || r, true
	case OpImpl:
		return !l || r, true
	}
	return false, false
}

func (e *Not[P]) eval() (bool, bool) {
	x, ok := e.X.eval()
	return !x, ok
}

func (e *Cmp[P]) eval() (bool, bool) {
	l, r, ok := evalPair(e.L, e.R)
	if !ok {
		return false, false
	}
	c := l.Cmp(r)
	switch e.Op {
	case OpLT:
		return c < 0, true
	case OpLEQ:
		return c <= 0, true
	case OpGEQ:
		return c >= 0, true
	case OpGT:
		return c > 0, true
	}
	return false, false
}

func (e *Arith[P]) eval() (Integer, bool) {
	l, r, ok := evalPair(e.L, e.R)
	if !ok {
		return nil, false
	}
	switch e.Op {
	case OpAdd:
		return new(big.Int).Add(l, r), true
	case OpSub:
		return new(big.Int).Sub(l, r), true
	case OpMul:
		return new(big.Int).Mul(l, r), true
	case OpDiv:
		if r.Sign() == 0 {
			return nil, false
		}
		q, _ := floorDivMod(l, r)
		return q, true
	case OpMod:
		if r.Sign() == 0 {
			return nil, false
		}
		_, m := floorDivMod(l, r)
		return m, true
	case OpPow:
		if r.Sign() < 0 || !powFits(l, r) {
			return nil, false
		}
		return new(big.Int).Exp(l, r, nil), true
	}
	return nil, false
}

// MaxBits bounds the size of the integers Eval builds. A power or bound
// whose result could be wider is not evaluable and stays symbolic.
const MaxBits = 1 << 16

// powFits reports whether l^r has at most MaxBits bits. Bases 0, 1 and -1
// fit for every exponent.
func powFits(l, r *big.Int) bool {
	if l.CmpAbs(one) <= 0 {
		return true
	}
	if !r.IsUint64() || r.Uint64() > MaxBits {
		return false
	}
	return uint64(l.BitLen())*r.Uint64() <= MaxBits
}

// floorDivMod returns the floored quotient and remainder of x and y.
func floorDivMod(x, y *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() != 0 && (r.Sign() < 0) != (y.Sign() < 0) {
		q.Sub(q, one)
		r.Add(r, y)
	}
	return q, r
}

func (e *Bound[P]) eval() (Integer, bool) {
	if e.Bits < 1 || e.Bits > MaxBits {
		return nil, false
	}
	switch e.Kind {
	case BoundIntMin:
		v := new(big.Int).Lsh(one, uint(e.Bits-1))
		return v.Neg(v), true
	case BoundIntMax:
		v := new(big.Int).Lsh(one, uint(e.Bits-1))
		return v.Sub(v, one), true
	case BoundUIntMin:
		return new(big.Int), true
	case BoundUIntMax:
		v := new(big.Int).Lsh(one, uint(e.Bits))
		return v.Sub(v, one), true
	}
	return nil, false
}

func (e *LitInt[P]) eval() (Integer, bool) {
	if e.Value == nil {
		return new(big.Int), true
	}
	return new(big.Int).Set(e.Value), true
}

func (e *LitBool[P]) eval() (bool, bool) { return e.Value, true }

func (e *LitBytes[P]) eval() (Bytes, bool) {
	return append([]byte{}, e.Value...), true
}

func (*Var[A, P]) eval() (A, bool) {
	var zero A
	return zero, false
}

func (*Env[A, P]) eval() (A, bool) {
	var zero A
	return zero, false
}

func (*Entry[A, P]) eval() (A, bool) {
	var zero A
	return zero, false
}

// NewAddr derives an address from a keccak hash, which is not folded here.
func (*NewAddr[P]) eval() (Integer, bool) { return nil, false }

func (e *Cat[P]) eval() (Bytes, bool) {
	l, ok := e.L.eval()
	if !ok {
		return nil, false
	}
	r, ok := e.R.eval()
	if !ok {
		return nil, false
	}
	return append(append([]byte{}, l...), r...), true
}

func (e *Slice[P]) eval() (Bytes, bool) {
	s, ok := e.Bytes.eval()
	if !ok {
		return nil, false
	}
	start, length, ok := evalPair(e.Start, e.Length)
	if !ok {
		return nil, false
	}
	from := clamp(start, len(s))
	rest := s[from:]
	return append([]byte{}, rest[:clamp(length, len(rest))]...), true
}

// clamp bounds v to [0, limit].
func clamp(v *big.Int, limit int) int {
	if v.Sign() <= 0 {
		return 0
	}
	if !v.IsInt64() || v.Int64() > int64(limit) {
		return limit
	}
	return int(v.Int64())
}

func (e *Eq[A, P]) eval() (bool, bool) {
	l, r, ok := evalPair(e.L, e.R)
	if !ok {
		return false, false
	}
	return equalValues(l, r), true
}

func (e *NEq[A, P]) eval() (bool, bool) {
	l, r, ok := evalPair(e.L, e.R)
	if !ok {
		return false, false
	}
	return !equalValues(l, r), true
}

// ITE only evaluates the branch selected by its condition.
func (e *ITE[A, P]) eval() (A, bool) {
	c, ok := e.Cond.eval()
	if !ok {
		var zero A
		return zero, false
	}
	if c {
		return e.Then.eval()
	}
	return e.Else.eval()
}

func evalPair[A Value, P Phase](l, r Exp[A, P]) (A, A, bool) {
	var zero A
	lv, ok := l.eval()
	if !ok {
		return zero, zero, false
	}
	rv, ok := r.eval()
	if !ok {
		return zero, zero, false
	}
	return lv, rv, true
}

func equalValues[A Value](x, y A) bool {
	switch xv := any(x).(type) {
	case Integer:
		return xv.Cmp(any(y).(Integer)) == 0
	case bool:
		return xv == any(y).(bool)
	case Bytes:
		return bytes.Equal(xv, any(y).(Bytes))
	}
	return false
}
