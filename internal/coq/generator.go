// Package coq lowers timed claims to a Coq model of the contract as a state
// machine: a record of the storage, one transition function per behaviour,
// the initial state and the inductive set of reachable states.
package coq

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"claimc/internal/errors"
	"claimc/internal/ir"
)

var log = commonlog.GetLogger("claimc.coq")

const header = `(* --- GENERATED BY CLAIMC --- *)

Require Import Coq.ZArith.ZArith.
Require Import ActLib.ActLib.
Require Coq.Strings.String.

Module Str := Coq.Strings.String.
Open Scope Z_scope.
`

const (
	stateVar  = "STATE"
	stateType = "State"
	baseName  = "BASE"
)

// Generate renders the Coq model of the single contract described by
// layout and claims. Generation is all or nothing: on error no text is
// returned.
func Generate(layout ir.Layout, claims []ir.Claim[ir.Timed]) (string, error) {
	ctor, err := creation(claims)
	if err != nil {
		return "", err
	}
	contract, err := single(layout)
	if err != nil {
		return "", err
	}
	if ctor.Name != contract.Contract {
		return "", errors.UnsupportedFeature(
			fmt.Sprintf("constructor of contract %s with storage layout of %s", ctor.Name, contract.Contract), "")
	}

	behvs, err := transitions(contract, claims)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")

	record, err := stateRecord(contract)
	if err != nil {
		return "", err
	}
	sb.WriteString(record)

	for _, b := range behvs {
		log.Debugf("lowering behaviour %s as %s", b.Name, b.def)
		def, err := transition(contract, b)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n")
		sb.WriteString(def)
	}

	base, err := baseState(contract, ctor)
	if err != nil {
		return "", err
	}
	sb.WriteString("\n")
	sb.WriteString(base)

	reach, err := reachable(ctor, behvs)
	if err != nil {
		return "", err
	}
	sb.WriteString("\n")
	sb.WriteString(reach)

	log.Infof("generated model of %s with %d transitions", contract.Contract, len(behvs))
	return sb.String(), nil
}

// creation returns the single Pass constructor among claims.
func creation(claims []ir.Claim[ir.Timed]) (*ir.Constructor[ir.Timed], error) {
	var found []*ir.Constructor[ir.Timed]
	for _, c := range claims {
		if ctor, ok := c.(*ir.Constructor[ir.Timed]); ok && ctor.Mode == ir.Pass {
			found = append(found, ctor)
		}
	}
	if len(found) != 1 {
		return nil, errors.MultipleConstructors(len(found))
	}
	return found[0], nil
}

// single returns the only contract of layout. Multi-contract layouts are
// rejected rather than lowered for an arbitrary contract.
func single(layout ir.Layout) (ir.ContractLayout, error) {
	if len(layout) != 1 {
		return ir.ContractLayout{}, errors.UnsupportedFeature(
			fmt.Sprintf("storage layout with %d contracts", len(layout)), "")
	}
	return layout[0], nil
}

// step is a Pass behaviour together with the name of its Coq definition.
type step struct {
	*ir.Behaviour[ir.Timed]
	def string
}

// transitions collects the Pass behaviours of contract in claim order.
// Behaviours sharing a name are numbered name_0, name_1, ... A definition
// name that clashes with another name of the model is rejected.
func transitions(contract ir.ContractLayout, claims []ir.Claim[ir.Timed]) ([]step, error) {
	var out []step
	count := map[string]int{}
	for _, c := range claims {
		b, ok := c.(*ir.Behaviour[ir.Timed])
		if !ok || b.Mode != ir.Pass {
			continue
		}
		if b.Contract != contract.Contract {
			return nil, errors.UnsupportedFeature("behaviour of contract "+b.Contract, b.Name)
		}
		out = append(out, step{Behaviour: b})
		count[b.Name]++
	}

	taken := reservedNames(contract)
	seen := map[string]int{}
	for i := range out {
		name := out[i].Name
		if count[name] > 1 {
			out[i].def = fmt.Sprintf("%s_%d", name, seen[name])
			seen[name]++
		} else {
			out[i].def = name
		}

		def := out[i].def
		for _, n := range []string{def, def + "_step"} {
			if taken[n] {
				return nil, errors.UnsupportedFeature(fmt.Sprintf("definition name %s clashing with another name of the model", n), name)
			}
			taken[n] = true
		}
	}
	return out, nil
}

// reservedNames are the names the model defines besides the transitions.
func reservedNames(c ir.ContractLayout) map[string]bool {
	taken := map[string]bool{
		stateType: true, stateVar: true, baseName: true,
		"state": true, "reachable": true, "base": true,
	}
	for _, slot := range c.Slots {
		taken[slot.Name] = true
	}
	return taken
}

func stateRecord(c ir.ContractLayout) (string, error) {
	var sb strings.Builder
	sb.WriteString("Record " + stateType + " : Set := state\n")
	if len(c.Slots) == 0 {
		sb.WriteString("{ }.\n")
		return sb.String(), nil
	}
	for i, slot := range c.Slots {
		t, err := SlotType(slot.Type)
		if err != nil {
			return "", err
		}
		sep := ";"
		if i == 0 {
			sep = "{"
		}
		sb.WriteString(sep + " " + slot.Name + " : " + t + "\n")
	}
	sb.WriteString("}.\n")
	return sb.String(), nil
}

// binders renders the arguments of an interface as Coq binders.
func binders(iface ir.Interface) ([]string, error) {
	out := make([]string, 0, len(iface.Decls))
	for _, d := range iface.Decls {
		t, err := abiType(d.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, "("+d.Name+" : "+t+")")
	}
	return out, nil
}

func argNames(iface ir.Interface) []string {
	out := make([]string, 0, len(iface.Decls))
	for _, d := range iface.Decls {
		out = append(out, d.Name)
	}
	return out
}

// transition renders the transition function of one behaviour. When the
// preconditions do not hold the prior state is returned unchanged.
func transition(c ir.ContractLayout, b step) (string, error) {
	s := &scope{layout: c, state: stateVar, claim: b.Name}

	args, err := binders(b.Interface)
	if err != nil {
		return "", err
	}
	cond, err := conjunction(s, b.Preconditions)
	if err != nil {
		return "", err
	}
	body, err := newState(s, b.Name, ir.Updates(b.StateUpdates), func(slot ir.Slot, vars []string) (string, error) {
		return "(" + strings.Join(append([]string{slot.Name, stateVar}, vars...), " ") + ")", nil
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Definition " + b.def + " (" + stateVar + " : " + stateType + ")")
	for _, a := range args {
		sb.WriteString(" " + a)
	}
	sb.WriteString(" : " + stateType + " :=\n")
	if cond == "" {
		sb.WriteString("  " + body + ".\n")
	} else {
		sb.WriteString("  if " + cond + "\n")
		sb.WriteString("  then " + body + "\n")
		sb.WriteString("  else " + stateVar + ".\n")
	}
	return sb.String(), nil
}

// baseState renders the initial state, parameterized by the constructor's
// arguments. Slots the constructor leaves alone hold their default.
func baseState(c ir.ContractLayout, ctor *ir.Constructor[ir.Timed]) (string, error) {
	s := &scope{layout: c, claim: ctor.Name}

	args, err := binders(ctor.Interface)
	if err != nil {
		return "", err
	}
	body, err := newState(s, ctor.Name, ctor.InitialStorage, func(slot ir.Slot, vars []string) (string, error) {
		if m, ok := slot.Type.(ir.StorageMapping); ok && len(vars) > 0 {
			return DefaultValue(ir.StorageValue{Type: m.Value})
		}
		return DefaultValue(slot.Type)
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Definition " + baseName)
	for _, a := range args {
		sb.WriteString(" " + a)
	}
	sb.WriteString(" : " + stateType + " :=\n")
	sb.WriteString("  " + body + ".\n")
	return sb.String(), nil
}

// reachable renders the inductive relation of reachable states: the base
// state, closed under every transition.
func reachable(ctor *ir.Constructor[ir.Timed], behvs []step) (string, error) {
	var sb strings.Builder
	sb.WriteString("Inductive reachable : " + stateType + " -> Prop :=\n")

	args, err := binders(ctor.Interface)
	if err != nil {
		return "", err
	}
	cond, err := conjunction(&scope{claim: ctor.Name}, ctor.Preconditions)
	if err != nil {
		return "", err
	}
	base := strings.Join(append([]string{baseName}, argNames(ctor.Interface)...), " ")
	if len(args) > 0 {
		base = "(" + base + ")"
	}
	sb.WriteString("  | base :")
	if len(args) > 0 {
		sb.WriteString(" forall " + strings.Join(args, " ") + ",")
	}
	if cond != "" {
		sb.WriteString(" " + cond + " = true ->")
	}
	sb.WriteString(" reachable " + base + "\n")

	for _, b := range behvs {
		args, err := binders(b.Interface)
		if err != nil {
			return "", err
		}
		call := strings.Join(append([]string{b.def, stateVar}, argNames(b.Interface)...), " ")
		sb.WriteString("  | " + b.def + "_step : forall (" + stateVar + " : " + stateType + ")")
		for _, a := range args {
			sb.WriteString(" " + a)
		}
		sb.WriteString(", reachable " + stateVar + " -> reachable (" + call + ")\n")
	}
	sb.WriteString(".\n")
	return sb.String(), nil
}

// conjunction lowers a list of conditions to a single boolean term, or to
// the empty string when the list is empty.
func conjunction(s *scope, conds []ir.Exp[bool, ir.Timed]) (string, error) {
	if len(conds) == 0 {
		return "", nil
	}
	return expr(s, ir.Conj(conds))
}

// fallback renders the value of a slot, or of a mapping slot at the bound
// keys vars, when no update covers it.
type fallback func(slot ir.Slot, vars []string) (string, error)

// newState renders a record construction that applies updates on top of
// whatever orElse yields for the untouched parts of each slot.
func newState(s *scope, claim string, updates []ir.StorageUpdate[ir.Timed], orElse fallback) (string, error) {
	bySlot, err := groupUpdates(s, claim, updates)
	if err != nil {
		return "", err
	}

	fields := []string{"state"}
	for _, slot := range s.layout.Slots {
		field, err := slotValue(s, slot, bySlot[slot.Name], orElse)
		if err != nil {
			return "", err
		}
		fields = append(fields, field)
	}
	return strings.Join(fields, " "), nil
}

// groupUpdates indexes updates by slot name, keeping their order. An item
// written twice is an error.
func groupUpdates(s *scope, claim string, updates []ir.StorageUpdate[ir.Timed]) (map[string][]ir.StorageUpdate[ir.Timed], error) {
	out := map[string][]ir.StorageUpdate[ir.Timed]{}
	for i, u := range updates {
		ref := u.Target()
		for _, prev := range updates[:i] {
			if prev.Target().Same(ref) {
				return nil, errors.ConflictingUpdates(ref.String(), claim)
			}
		}
		if ref.Contract != s.layout.Contract {
			return nil, s.unsupported("external storage " + ref.Contract + "." + ref.Name)
		}
		if _, ok := s.layout.Slot(ref.Name); !ok {
			return nil, s.unsupported("external storage " + ref.Name)
		}
		out[ref.Name] = append(out[ref.Name], u)
	}
	return out, nil
}

// slotValue renders the new value of one slot. A scalar takes the value
// of its update. A mapping becomes a function over fresh keys that checks
// the updates from last to first and falls back to orElse.
func slotValue(s *scope, slot ir.Slot, updates []ir.StorageUpdate[ir.Timed], orElse fallback) (string, error) {
	switch t := slot.Type.(type) {
	case ir.StorageValue:
		if len(updates) == 0 {
			return orElse(slot, nil)
		}
		u := updates[0]
		if n := len(u.Target().Indices); n != 0 {
			return "", s.unsupported(fmt.Sprintf("indexed update of scalar slot %s", slot.Name))
		}
		return updateValue(s, u)

	case ir.StorageMapping:
		if len(updates) == 0 {
			return orElse(slot, nil)
		}
		vars := make([]string, len(t.Keys))
		for i := range vars {
			vars[i] = fmt.Sprintf("i%d", i)
		}
		term, err := orElse(slot, vars)
		if err != nil {
			return "", err
		}
		for _, u := range updates {
			ixs := u.Target().Indices
			if len(ixs) != len(t.Keys) {
				return "", s.unsupported(fmt.Sprintf("update of %s with %d of %d keys", slot.Name, len(ixs), len(t.Keys)))
			}
			var conds []string
			for i, ix := range ixs {
				k, err := typed(s, ix)
				if err != nil {
					return "", err
				}
				conds = append(conds, keyEq(t.Keys[i], vars[i], k))
			}
			v, err := updateValue(s, u)
			if err != nil {
				return "", err
			}
			term = "if " + andAll(conds) + " then " + v + " else " + term
		}
		return "(fun " + strings.Join(vars, " ") + " => " + term + ")", nil
	}
	return "", errors.UnsupportedType(slot.Type.String())
}

func keyEq(t ir.AbiType, v, k string) string {
	if t.Kind == ir.AbiBool {
		return "(Bool.eqb " + v + " " + k + ")"
	}
	return "(" + v + " =? " + k + ")"
}

func andAll(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out = "(andb " + out + " " + c + ")"
	}
	return out
}

func updateValue(s *scope, u ir.StorageUpdate[ir.Timed]) (string, error) {
	switch u := u.(type) {
	case *ir.Update[ir.Integer, ir.Timed]:
		return expr(s, u.Value)
	case *ir.Update[bool, ir.Timed]:
		return expr(s, u.Value)
	}
	return "", s.unsupported("byte string update of " + u.Target().String())
}
