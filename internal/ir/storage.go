package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TypedExp is an expression whose value domain is not fixed by context,
// such as a mapping index or a return value.
type TypedExp[P Phase] interface {
	fmt.Stringer
	json.Marshaler

	// Sort names the wrapped expression's domain: "int", "bool" or "bytes".
	Sort() string

	phase() P
	timedTyped(t Time[Timed]) TypedExp[Timed]
	evalAny() (any, bool)
}

// TExp wraps an Exp of domain A as a TypedExp.
type TExp[A Value, P Phase] struct {
	Exp Exp[A, P]
}

// Typed wraps e as a TypedExp.
func Typed[A Value, P Phase](e Exp[A, P]) TypedExp[P] { return &TExp[A, P]{Exp: e} }

func (*TExp[A, P]) phase() P         { var p P; return p }
func (*TExp[A, P]) Sort() string     { return Sort[A]() }
func (t *TExp[A, P]) String() string { return t.Exp.String() }

func (t *TExp[A, P]) evalAny() (any, bool) {
	v, ok := t.Exp.eval()
	return v, ok
}

// Ref identifies a storage slot and, for mappings, the key it is read at.
// An empty Indices list is a scalar slot.
type Ref[P Phase] struct {
	Contract string
	Name     string
	Indices  []TypedExp[P]
}

func (r Ref[P]) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	for _, ix := range r.Indices {
		sb.WriteString("[")
		sb.WriteString(ix.String())
		sb.WriteString("]")
	}
	return sb.String()
}

// Same reports whether r and o reference the same slot with structurally
// identical indices.
func (r Ref[P]) Same(o Ref[P]) bool {
	if r.Contract != o.Contract || r.Name != o.Name || len(r.Indices) != len(o.Indices) {
		return false
	}
	for i := range r.Indices {
		if r.Indices[i].String() != o.Indices[i].String() {
			return false
		}
	}
	return true
}

// StorageItem is a storage reference holding a value of domain A.
type StorageItem[A Value, P Phase] struct {
	Ref[P]
}

// Item builds a reference to the slot name of contract, indexed by ixs.
func Item[A Value, P Phase](contract, name string, ixs ...TypedExp[P]) *StorageItem[A, P] {
	return &StorageItem[A, P]{Ref: Ref[P]{Contract: contract, Name: name, Indices: ixs}}
}

// StorageLocation is a storage reference that is constrained but not written.
type StorageLocation[P Phase] interface {
	fmt.Stringer
	json.Marshaler

	Target() Ref[P]
	Sort() string

	phase() P
	timedLocation(t Time[Timed]) StorageLocation[Timed]
}

// Rewrite is the effect of a behaviour on one storage item: either a
// Constant or a StorageUpdate.
type Rewrite[P Phase] interface {
	fmt.Stringer
	json.Marshaler

	Target() Ref[P]

	phase() P
	timedRewrite(t Time[Timed]) Rewrite[Timed]
}

// StorageUpdate writes a new value to a storage item.
type StorageUpdate[P Phase] interface {
	Rewrite[P]

	Sort() string
	timedUpdate(t Time[Timed]) StorageUpdate[Timed]
}

// Location is the StorageLocation of an item of domain A.
type Location[A Value, P Phase] struct {
	Item *StorageItem[A, P]
}

// Locate wraps item as a StorageLocation.
func Locate[A Value, P Phase](item *StorageItem[A, P]) StorageLocation[P] {
	return &Location[A, P]{Item: item}
}

func (*Location[A, P]) phase() P         { var p P; return p }
func (*Location[A, P]) Sort() string     { return Sort[A]() }
func (l *Location[A, P]) Target() Ref[P] { return l.Item.Ref }
func (l *Location[A, P]) String() string { return l.Item.String() }

// Update assigns Value to Item.
type Update[A Value, P Phase] struct {
	Item  *StorageItem[A, P]
	Value Exp[A, P]
}

// Assign builds a StorageUpdate writing value to item.
func Assign[A Value, P Phase](item *StorageItem[A, P], value Exp[A, P]) StorageUpdate[P] {
	return &Update[A, P]{Item: item, Value: value}
}

func (*Update[A, P]) phase() P         { var p P; return p }
func (*Update[A, P]) Sort() string     { return Sort[A]() }
func (u *Update[A, P]) Target() Ref[P] { return u.Item.Ref }

func (u *Update[A, P]) String() string {
	return u.Item.String() + " => " + u.Value.String()
}

// Constant asserts that a storage location is left unchanged.
type Constant[P Phase] struct {
	Location StorageLocation[P]
}

// Unchanged builds a Constant rewrite for loc.
func Unchanged[P Phase](loc StorageLocation[P]) Rewrite[P] { return &Constant[P]{Location: loc} }

func (*Constant[P]) phase() P         { var p P; return p }
func (c *Constant[P]) Target() Ref[P] { return c.Location.Target() }
func (c *Constant[P]) String() string { return c.Location.String() }

// Updates returns the StorageUpdates among rewrites, in order.
func Updates[P Phase](rewrites []Rewrite[P]) []StorageUpdate[P] {
	var out []StorageUpdate[P]
	for _, r := range rewrites {
		if u, ok := r.(StorageUpdate[P]); ok {
			out = append(out, u)
		}
	}
	return out
}
