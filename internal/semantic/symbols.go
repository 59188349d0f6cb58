package semantic

import (
	"sort"

	"claimc/internal/ir"
)

type SymbolKind int

const (
	SymbolArgument SymbolKind = iota
	SymbolStorage
	SymbolEnvironment
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolArgument:
		return "argument"
	case SymbolStorage:
		return "storage slot"
	case SymbolEnvironment:
		return "environment value"
	default:
		return "unknown"
	}
}

// Symbol is a name an expression can refer to. Only the field matching
// Kind is set.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type ir.AbiType  // SymbolArgument
	Slot ir.SlotType // SymbolStorage
	Env  ir.EthEnv   // SymbolEnvironment
}

// Sort is the value domain the symbol denotes when read without indices.
func (s *Symbol) Sort() string {
	switch s.Kind {
	case SymbolArgument:
		return s.Type.Sort()
	case SymbolEnvironment:
		return s.Env.Sort()
	}
	if v, ok := s.Slot.(ir.StorageValue); ok {
		return v.Type.Sort()
	}
	return ""
}

type SymbolTable struct {
	symbols map[string]*Symbol
	parent  *SymbolTable
}

func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
		parent:  parent,
	}
}

func (st *SymbolTable) Define(symbol *Symbol) *Symbol {
	st.symbols[symbol.Name] = symbol
	return symbol
}

func (st *SymbolTable) Lookup(name string) *Symbol {
	if symbol, exists := st.symbols[name]; exists {
		return symbol
	}
	if st.parent != nil {
		return st.parent.Lookup(name)
	}
	return nil
}

func (st *SymbolTable) LookupLocal(name string) *Symbol {
	if symbol, exists := st.symbols[name]; exists {
		return symbol
	}
	return nil
}

// Names lists every name visible from st, sorted.
func (st *SymbolTable) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for scope := st; scope != nil; scope = scope.parent {
		for name := range scope.symbols {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
