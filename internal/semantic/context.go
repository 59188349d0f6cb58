package semantic

import (
	"slices"

	"claimc/internal/ir"
)

// builtinCalls are the function names the typer knows. pre and post are
// time markers rather than functions but share the call syntax.
var builtinCalls = []string{
	"intmin", "intmax", "uintmin", "uintmax", "newAddr", "slice", "pre", "post",
}

// Context is the set of names visible to the expressions of one claim.
// Interface arguments shadow storage slots, which shadow environment
// values.
type Context struct {
	Contract string
	symbols  *SymbolTable
}

// NewContext builds the scope of a claim on contract with the given storage
// layout and call arguments.
func NewContext(layout ir.ContractLayout, args []ir.Decl) *Context {
	env := NewSymbolTable(nil)
	for e := ir.Caller; e <= ir.Nonce; e++ {
		env.Define(&Symbol{Name: e.String(), Kind: SymbolEnvironment, Env: e})
	}

	storage := NewSymbolTable(env)
	for _, slot := range layout.Slots {
		storage.Define(&Symbol{Name: slot.Name, Kind: SymbolStorage, Slot: slot.Type})
	}

	locals := NewSymbolTable(storage)
	for _, d := range args {
		locals.Define(&Symbol{Name: d.Name, Kind: SymbolArgument, Type: d.Type})
	}

	return &Context{Contract: layout.Contract, symbols: locals}
}

// Closed is the context of an expression with no free names other than the
// environment values.
func Closed() *Context {
	return NewContext(ir.ContractLayout{}, nil)
}

// Lookup resolves name.
func (c *Context) Lookup(name string) *Symbol {
	return c.symbols.Lookup(name)
}

// Names lists every name in scope, sorted.
func (c *Context) Names() []string {
	return c.symbols.Names()
}

// BuiltinCalls lists the names that may be called.
func BuiltinCalls() []string {
	return slices.Clone(builtinCalls)
}
