package ir

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

var boolOpSymbols = [...]string{OpAnd: "and", OpOr: "or", OpImpl: "=>"}
var cmpOpSymbols = [...]string{OpLT: "<", OpLEQ: "<=", OpGEQ: ">=", OpGT: ">"}
var arithOpSymbols = [...]string{OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%", OpPow: "^"}
var boundNames = [...]string{BoundIntMin: "intmin", BoundIntMax: "intmax", BoundUIntMin: "uintmin", BoundUIntMax: "uintmax"}

func (o BoolOperator) String() string  { return boolOpSymbols[o] }
func (o CmpOperator) String() string   { return cmpOpSymbols[o] }
func (o ArithOperator) String() string { return arithOpSymbols[o] }
func (k BoundKind) String() string     { return boundNames[k] }

func binary(l fmt.Stringer, op string, r fmt.Stringer) string {
	return "(" + l.String() + " " + op + " " + r.String() + ")"
}

func (e *BoolOp[P]) String() string { return binary(e.L, e.Op.String(), e.R) }
func (e *Not[P]) String() string    { return "(not " + e.X.String() + ")" }
func (e *Cmp[P]) String() string    { return binary(e.L, e.Op.String(), e.R) }
func (e *Arith[P]) String() string  { return binary(e.L, e.Op.String(), e.R) }
func (e *Cat[P]) String() string    { return binary(e.L, "++", e.R) }
func (e *Eq[A, P]) String() string  { return binary(e.L, "==", e.R) }
func (e *NEq[A, P]) String() string { return binary(e.L, "=/=", e.R) }

func (e *Bound[P]) String() string { return e.Kind.String() + "(" + strconv.Itoa(e.Bits) + ")" }

func (e *LitInt[P]) String() string {
	if e.Value == nil {
		return "0"
	}
	return e.Value.String()
}

func (e *LitBool[P]) String() string  { return strconv.FormatBool(e.Value) }
func (e *LitBytes[P]) String() string { return "0x" + hex.EncodeToString(e.Value) }
func (e *Var[A, P]) String() string   { return e.Name }
func (e *Env[A, P]) String() string   { return e.Value.String() }

func (e *Slice[P]) String() string {
	return "slice(" + e.Bytes.String() + ", " + e.Start.String() + ", " + e.Length.String() + ")"
}

func (e *NewAddr[P]) String() string {
	return "newAddr(" + e.Sender.String() + ", " + e.Nonce.String() + ")"
}

func (e *ITE[A, P]) String() string {
	return "(if " + e.Cond.String() + " then " + e.Then.String() + " else " + e.Else.String() + ")"
}

// Untimed entries print as the bare item, timed ones as pre(item) or
// post(item).
func (e *Entry[A, P]) String() string {
	if w := e.When.String(); w != "" {
		return w + "(" + e.Item.String() + ")"
	}
	return e.Item.String()
}
