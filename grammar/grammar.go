package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Expressions, loosest binding first:
//
//	=>  or  and  == =/=  < <= >= >  ++  + -  * / %  not -  ^  x[i]

type Expr struct {
	Pos   lexer.Position
	Left  *Disjunction `@@`
	Right *Expr        `[ "=>" @@ ]`
}

type Disjunction struct {
	Pos   lexer.Position
	Left  *Conjunction   `@@`
	Right []*Conjunction `{ "or" @@ }`
}

type Conjunction struct {
	Pos   lexer.Position
	Left  *Equality   `@@`
	Right []*Equality `{ "and" @@ }`
}

type Equality struct {
	Pos  lexer.Position
	Left *Comparison `@@`
	Op   *EqualityOp `[ @@ ]`
}

type EqualityOp struct {
	Pos      lexer.Position
	Operator string      `@("==" | "=/=")`
	Right    *Comparison `@@`
}

type Comparison struct {
	Pos  lexer.Position
	Left *Concat       `@@`
	Op   *ComparisonOp `[ @@ ]`
}

type ComparisonOp struct {
	Pos      lexer.Position
	Operator string  `@("<=" | ">=" | "<" | ">")`
	Right    *Concat `@@`
}

type Concat struct {
	Pos   lexer.Position
	Left  *Additive   `@@`
	Right []*Additive `{ "++" @@ }`
}

type Additive struct {
	Pos  lexer.Position
	Left *Multiplicative `@@`
	Ops  []*AddOp        `{ @@ }`
}

type AddOp struct {
	Pos      lexer.Position
	Operator string          `@("+" | "-")`
	Right    *Multiplicative `@@`
}

type Multiplicative struct {
	Pos  lexer.Position
	Left *Unary   `@@`
	Ops  []*MulOp `{ @@ }`
}

type MulOp struct {
	Pos      lexer.Position
	Operator string `@("*" | "/" | "%")`
	Right    *Unary `@@`
}

type Unary struct {
	Pos   lexer.Position
	Not   *Unary `  "not" @@`
	Neg   *Unary `| "-" @@`
	Power *Power `| @@`
}

// Power is right associative: 2^3^2 is 2^(3^2).
type Power struct {
	Pos      lexer.Position
	Base     *Postfix `@@`
	Exponent *Unary   `[ "^" @@ ]`
}

type Postfix struct {
	Pos     lexer.Position
	Primary *Primary `@@`
	Indices []*Expr  `{ "[" @@ "]" }`
}

type Primary struct {
	Pos    lexer.Position
	If     *If     `  @@`
	Call   *Call   `| @@`
	Bool   *string `| @("true" | "false")`
	Hex    *string `| @Hex`
	Int    *string `| @Integer`
	Bytes  *string `| @String`
	Ident  *string `| @Ident`
	Parens *Expr   `| "(" @@ ")"`
}

type If struct {
	Pos  lexer.Position
	Cond *Expr `"if" @@`
	Then *Expr `"then" @@`
	Else *Expr `"else" @@`
}

// Call covers the builtins (intmin, uintmax, newAddr, slice) and the
// pre/post time markers.
type Call struct {
	Pos  lexer.Position
	Name string  `@Ident "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}

// Storage slot types: an ABI type name or mapping(key => type).

type SlotType struct {
	Pos     lexer.Position
	Mapping *Mapping `  @@`
	Name    string   `| @Ident`
}

type Mapping struct {
	Pos   lexer.Position
	Key   string    `"mapping" "(" @Ident "=>"`
	Value *SlotType `@@ ")"`
}
