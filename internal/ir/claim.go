package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode is the execution outcome a claim describes.
type Mode uint8

const (
	Pass Mode = iota // normal completion
	Fail             // reverted
	OOG              // out of gas
)

func (m Mode) String() string {
	switch m {
	case Pass:
		return "Pass"
	case Fail:
		return "Fail"
	case OOG:
		return "OOG"
	default:
		return "Unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "Pass", "pass", "":
		return Pass, true
	case "Fail", "fail":
		return Fail, true
	case "OOG", "oog":
		return OOG, true
	}
	return Pass, false
}

// Claim is a top-level statement about a contract: a *Constructor, a
// *Behaviour, an *Invariant or a *StoreClaim.
type Claim[P Phase] interface {
	json.Marshaler
	phase() P
}

// Constructor is the contract creation claim.
type Constructor[P Phase] struct {
	Name           string
	Mode           Mode
	Interface      Interface
	Preconditions  []Exp[bool, P]
	Postconditions []Exp[bool, Timed]
	InitialStorage []StorageUpdate[P]
	StateUpdates   []Rewrite[P]
}

// Behaviour is a specified entry point of a contract.
type Behaviour[P Phase] struct {
	Name           string
	Contract       string
	Mode           Mode
	Interface      Interface
	Preconditions  []Exp[bool, P]
	Postconditions []Exp[bool, Timed]
	StateUpdates   []Rewrite[P]
	Returns        TypedExp[Timed] // nil when nothing is returned
}

// Invariant is a property of a contract's storage that every reachable
// state satisfies.
type Invariant[P Phase] struct {
	Contract      string
	Preconditions []Exp[bool, P]
	StorageBounds []StorageLocation[P]
	Predicate     InvariantPred[P]
}

// InvariantPred is the predicate of an invariant. Its shape is fixed by the
// phase: an untimed invariant holds a single *Predicate, a timed one a
// *PrePost pair. Neither implements the other phase.
type InvariantPred[P Phase] interface {
	fmt.Stringer
	json.Marshaler
	phase() P
}

// Predicate is the single predicate of an untimed invariant.
type Predicate struct {
	Exp Exp[bool, Untimed]
}

// PrePost is the predicate of a timed invariant, stated over the pre-state
// and over the post-state.
type PrePost struct {
	Pre  Exp[bool, Timed]
	Post Exp[bool, Timed]
}

func (*Predicate) phase() Untimed { return Untimed{} }
func (*PrePost) phase() Timed     { return Timed{} }

func (p *Predicate) String() string { return p.Exp.String() }
func (p *PrePost) String() string   { return "(" + p.Pre.String() + ", " + p.Post.String() + ")" }

// StoreClaim carries a storage layout declaration.
type StoreClaim[P Phase] struct {
	Layout Layout
}

func (*Constructor[P]) phase() P { var p P; return p }
func (*Behaviour[P]) phase() P   { var p P; return p }
func (*Invariant[P]) phase() P   { var p P; return p }
func (*StoreClaim[P]) phase() P  { var p P; return p }

// SlotType is the type of a storage slot: a StorageValue or a StorageMapping.
type SlotType interface {
	fmt.Stringer
	isSlotType()
}

// StorageValue is a scalar slot.
type StorageValue struct {
	Type AbiType
}

// StorageMapping is a mapping slot with one key per dimension.
type StorageMapping struct {
	Keys  []AbiType
	Value AbiType
}

func (StorageValue) isSlotType()   {}
func (StorageMapping) isSlotType() {}

func (s StorageValue) String() string { return s.Type.String() }

func (s StorageMapping) String() string {
	var sb strings.Builder
	for _, k := range s.Keys {
		sb.WriteString("mapping(" + k.String() + " => ")
	}
	sb.WriteString(s.Value.String())
	sb.WriteString(strings.Repeat(")", len(s.Keys)))
	return sb.String()
}

// Slot is a named storage slot.
type Slot struct {
	Name string
	Type SlotType
}

// ContractLayout is the ordered storage layout of one contract.
type ContractLayout struct {
	Contract string
	Slots    []Slot
}

// Layout is the storage layout of the contracts, keyed by contract and
// then by slot name. Both levels keep declaration order so that everything
// generated from a layout is deterministic.
type Layout []ContractLayout

// Contract returns the layout of the named contract.
func (l Layout) Contract(name string) (ContractLayout, bool) {
	for _, c := range l {
		if c.Contract == name {
			return c, true
		}
	}
	return ContractLayout{}, false
}

// Slot returns the type of the named slot.
func (c ContractLayout) Slot(name string) (SlotType, bool) {
	for _, s := range c.Slots {
		if s.Name == name {
			return s.Type, true
		}
	}
	return nil, false
}
