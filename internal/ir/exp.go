package ir

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Exp is an expression denoting a value of domain A in phase P.
//
// The interface is sealed: only the node types of this package implement it.
// Every node threads the same phase through its operands, so untimed and
// timed sub-terms can never be mixed inside one expression.
type Exp[A Value, P Phase] interface {
	fmt.Stringer
	json.Marshaler

	phase() P
	eval() (A, bool)
	timed(t Time[Timed]) Exp[A, Timed]
}

// BoolOperator selects a boolean connective.
type BoolOperator uint8

const (
	OpAnd BoolOperator = iota
	OpOr
	OpImpl
)

// CmpOperator selects an integer comparison.
type CmpOperator uint8

const (
	OpLT CmpOperator = iota
	OpLEQ
	OpGEQ
	OpGT
)

// ArithOperator selects an integer arithmetic operator.
type ArithOperator uint8

const (
	OpAdd ArithOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
)

// BoundKind selects a bit-width bound constant.
type BoundKind uint8

const (
	BoundIntMin BoundKind = iota
	BoundIntMax
	BoundUIntMin
	BoundUIntMax
)

// BoolOp is a binary boolean connective.
type BoolOp[P Phase] struct {
	Op   BoolOperator
	L, R Exp[bool, P]
}

// Not negates a boolean expression.
type Not[P Phase] struct {
	X Exp[bool, P]
}

// Cmp compares two integers.
type Cmp[P Phase] struct {
	Op   CmpOperator
	L, R Exp[Integer, P]
}

// Arith combines two integers.
type Arith[P Phase] struct {
	Op   ArithOperator
	L, R Exp[Integer, P]
}

// Bound is the minimum or maximum of a signed or unsigned integer of Bits bits.
type Bound[P Phase] struct {
	Kind BoundKind
	Bits int
}

// LitInt is an integer literal.
type LitInt[P Phase] struct {
	Value *big.Int
}

// LitBool is a boolean literal.
type LitBool[P Phase] struct {
	Value bool
}

// LitBytes is a byte-string literal.
type LitBytes[P Phase] struct {
	Value []byte
}

// Var is a free variable, usually a call argument.
type Var[A Value, P Phase] struct {
	Name string
}

// Env reads a value from the execution environment.
type Env[A Value, P Phase] struct {
	Value EthEnv
}

// Cat concatenates two byte strings.
type Cat[P Phase] struct {
	L, R Exp[Bytes, P]
}

// Slice takes Length bytes of Bytes starting at Start.
type Slice[P Phase] struct {
	Bytes  Exp[Bytes, P]
	Start  Exp[Integer, P]
	Length Exp[Integer, P]
}

// NewAddr is the address of a contract created by Sender at Nonce.
type NewAddr[P Phase] struct {
	Sender Exp[Integer, P]
	Nonce  Exp[Integer, P]
}

// Eq is structural equality between two values of the same domain.
type Eq[A Value, P Phase] struct {
	L, R Exp[A, P]
}

// NEq is structural inequality between two values of the same domain.
type NEq[A Value, P Phase] struct {
	L, R Exp[A, P]
}

// ITE selects Then or Else depending on Cond.
type ITE[A Value, P Phase] struct {
	Cond Exp[bool, P]
	Then Exp[A, P]
	Else Exp[A, P]
}

// Entry reads a storage item at time When.
type Entry[A Value, P Phase] struct {
	When Time[P]
	Item *StorageItem[A, P]
}

func (*BoolOp[P]) phase() P   { var p P; return p }
func (*Not[P]) phase() P      { var p P; return p }
func (*Cmp[P]) phase() P      { var p P; return p }
func (*Arith[P]) phase() P    { var p P; return p }
func (*Bound[P]) phase() P    { var p P; return p }
func (*LitInt[P]) phase() P   { var p P; return p }
func (*LitBool[P]) phase() P  { var p P; return p }
func (*LitBytes[P]) phase() P { var p P; return p }
func (*Var[A, P]) phase() P   { var p P; return p }
func (*Env[A, P]) phase() P   { var p P; return p }
func (*Cat[P]) phase() P      { var p P; return p }
func (*Slice[P]) phase() P    { var p P; return p }
func (*NewAddr[P]) phase() P  { var p P; return p }
func (*Eq[A, P]) phase() P    { var p P; return p }
func (*NEq[A, P]) phase() P   { var p P; return p }
func (*ITE[A, P]) phase() P   { var p P; return p }
func (*Entry[A, P]) phase() P { var p P; return p }

// Constructors. They return the Exp interface so that the domain and phase
// of composite expressions are inferred from their operands.

func And[P Phase](l, r Exp[bool, P]) Exp[bool, P]  { return &BoolOp[P]{Op: OpAnd, L: l, R: r} }
func Or[P Phase](l, r Exp[bool, P]) Exp[bool, P]   { return &BoolOp[P]{Op: OpOr, L: l, R: r} }
func Impl[P Phase](l, r Exp[bool, P]) Exp[bool, P] { return &BoolOp[P]{Op: OpImpl, L: l, R: r} }
func Neg[P Phase](x Exp[bool, P]) Exp[bool, P]     { return &Not[P]{X: x} }

func LT[P Phase](l, r Exp[Integer, P]) Exp[bool, P]  { return &Cmp[P]{Op: OpLT, L: l, R: r} }
func LEQ[P Phase](l, r Exp[Integer, P]) Exp[bool, P] { return &Cmp[P]{Op: OpLEQ, L: l, R: r} }
func GEQ[P Phase](l, r Exp[Integer, P]) Exp[bool, P] { return &Cmp[P]{Op: OpGEQ, L: l, R: r} }
func GT[P Phase](l, r Exp[Integer, P]) Exp[bool, P]  { return &Cmp[P]{Op: OpGT, L: l, R: r} }

func Add[P Phase](l, r Exp[Integer, P]) Exp[Integer, P] { return &Arith[P]{Op: OpAdd, L: l, R: r} }
func Sub[P Phase](l, r Exp[Integer, P]) Exp[Integer, P] { return &Arith[P]{Op: OpSub, L: l, R: r} }
func Mul[P Phase](l, r Exp[Integer, P]) Exp[Integer, P] { return &Arith[P]{Op: OpMul, L: l, R: r} }
func Div[P Phase](l, r Exp[Integer, P]) Exp[Integer, P] { return &Arith[P]{Op: OpDiv, L: l, R: r} }
func Mod[P Phase](l, r Exp[Integer, P]) Exp[Integer, P] { return &Arith[P]{Op: OpMod, L: l, R: r} }
func Pow[P Phase](l, r Exp[Integer, P]) Exp[Integer, P] { return &Arith[P]{Op: OpPow, L: l, R: r} }

func IntMin[P Phase](bits int) Exp[Integer, P]  { return &Bound[P]{Kind: BoundIntMin, Bits: bits} }
func IntMax[P Phase](bits int) Exp[Integer, P]  { return &Bound[P]{Kind: BoundIntMax, Bits: bits} }
func UIntMin[P Phase](bits int) Exp[Integer, P] { return &Bound[P]{Kind: BoundUIntMin, Bits: bits} }
func UIntMax[P Phase](bits int) Exp[Integer, P] { return &Bound[P]{Kind: BoundUIntMax, Bits: bits} }

// Int is a small integer literal.
func Int[P Phase](v int64) Exp[Integer, P] { return &LitInt[P]{Value: big.NewInt(v)} }

// BigInt is an integer literal. v is copied.
func BigInt[P Phase](v *big.Int) Exp[Integer, P] { return &LitInt[P]{Value: new(big.Int).Set(v)} }

func Bool[P Phase](v bool) Exp[bool, P] { return &LitBool[P]{Value: v} }

// ByteString is a byte-string literal. v is copied.
func ByteString[P Phase](v []byte) Exp[Bytes, P] {
	return &LitBytes[P]{Value: append([]byte{}, v...)}
}

func Variable[A Value, P Phase](name string) Exp[A, P] { return &Var[A, P]{Name: name} }
func EnvValue[A Value, P Phase](v EthEnv) Exp[A, P]   { return &Env[A, P]{Value: v} }

func Concat[P Phase](l, r Exp[Bytes, P]) Exp[Bytes, P] { return &Cat[P]{L: l, R: r} }

func SliceOf[P Phase](b Exp[Bytes, P], start, length Exp[Integer, P]) Exp[Bytes, P] {
	return &Slice[P]{Bytes: b, Start: start, Length: length}
}

func NewAddress[P Phase](sender, nonce Exp[Integer, P]) Exp[Integer, P] {
	return &NewAddr[P]{Sender: sender, Nonce: nonce}
}

func Equal[A Value, P Phase](l, r Exp[A, P]) Exp[bool, P]    { return &Eq[A, P]{L: l, R: r} }
func NotEqual[A Value, P Phase](l, r Exp[A, P]) Exp[bool, P] { return &NEq[A, P]{L: l, R: r} }

func If[A Value, P Phase](c Exp[bool, P], then, els Exp[A, P]) Exp[A, P] {
	return &ITE[A, P]{Cond: c, Then: then, Else: els}
}

// Lookup reads item at time t.
func Lookup[A Value, P Phase](t Time[P], item *StorageItem[A, P]) Exp[A, P] {
	mustValid(t)
	return &Entry[A, P]{When: t, Item: item}
}

// Conj folds a list of conditions with And. An empty list is true.
func Conj[P Phase](conds []Exp[bool, P]) Exp[bool, P] {
	if len(conds) == 0 {
		return Bool[P](true)
	}
	acc := conds[0]
	for _, c := range conds[1:] {
		acc = And(acc, c)
	}
	return acc
}
