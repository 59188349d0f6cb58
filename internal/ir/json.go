package ir

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// The JSON projection is the interchange format consumed by other backends.
// Operators project as {"symbol", "arity", "args"}; literals and variables
// project as plain strings; claims are objects tagged with "kind".

type naryJSON struct {
	Symbol string `json:"symbol"`
	Arity  int    `json:"arity"`
	Args   []any  `json:"args"`
}

func nary(symbol string, args ...any) ([]byte, error) {
	return json.Marshal(naryJSON{Symbol: symbol, Arity: len(args), Args: args})
}

func (e *BoolOp[P]) MarshalJSON() ([]byte, error) { return nary(e.Op.String(), e.L, e.R) }
func (e *Not[P]) MarshalJSON() ([]byte, error)    { return nary("not", e.X) }
func (e *Cmp[P]) MarshalJSON() ([]byte, error)    { return nary(e.Op.String(), e.L, e.R) }
func (e *Arith[P]) MarshalJSON() ([]byte, error)  { return nary(e.Op.String(), e.L, e.R) }
func (e *Cat[P]) MarshalJSON() ([]byte, error)    { return nary("++", e.L, e.R) }
func (e *Eq[A, P]) MarshalJSON() ([]byte, error)  { return nary("==", e.L, e.R) }
func (e *NEq[A, P]) MarshalJSON() ([]byte, error) { return nary("=/=", e.L, e.R) }

func (e *Bound[P]) MarshalJSON() ([]byte, error) {
	return nary(e.Kind.String(), strconv.Itoa(e.Bits))
}

func (e *Slice[P]) MarshalJSON() ([]byte, error) {
	return nary("slice", e.Bytes, e.Start, e.Length)
}

func (e *NewAddr[P]) MarshalJSON() ([]byte, error) {
	return nary("newAddr", e.Sender, e.Nonce)
}

func (e *ITE[A, P]) MarshalJSON() ([]byte, error) {
	return nary("ite", e.Cond, e.Then, e.Else)
}

func (e *LitInt[P]) MarshalJSON() ([]byte, error)   { return json.Marshal(e.String()) }
func (e *LitBool[P]) MarshalJSON() ([]byte, error)  { return json.Marshal(e.String()) }
func (e *LitBytes[P]) MarshalJSON() ([]byte, error) { return json.Marshal("0x" + hex.EncodeToString(e.Value)) }
func (e *Var[A, P]) MarshalJSON() ([]byte, error)   { return json.Marshal(e.Name) }
func (e *Env[A, P]) MarshalJSON() ([]byte, error)   { return json.Marshal(e.Value.String()) }

func (e *Entry[A, P]) MarshalJSON() ([]byte, error) {
	if w := e.When.String(); w != "" {
		return nary(w, e.Item)
	}
	return e.Item.MarshalJSON()
}

// A storage item projects as lookup(contract, slot, indices...).
func (i *StorageItem[A, P]) MarshalJSON() ([]byte, error) {
	args := []any{i.Contract, i.Name}
	for _, ix := range i.Indices {
		args = append(args, ix)
	}
	return nary("lookup", args...)
}

type typedJSON struct {
	Sort       string `json:"sort"`
	Expression any    `json:"expression"`
}

func (t *TExp[A, P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(typedJSON{Sort: t.Sort(), Expression: t.Exp})
}

type locationJSON struct {
	Kind     string `json:"kind"`
	Sort     string `json:"sort"`
	Location any    `json:"location"`
	Value    any    `json:"value,omitempty"`
}

func (l *Location[A, P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{Kind: "Location", Sort: l.Sort(), Location: l.Item})
}

func (u *Update[A, P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{Kind: "Rewrite", Sort: u.Sort(), Location: u.Item, Value: u.Value})
}

func (c *Constant[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{Kind: "Constant", Sort: c.Location.Sort(), Location: c.Location})
}

func (p *Predicate) MarshalJSON() ([]byte, error) { return json.Marshal(p.Exp) }

func (p *PrePost) MarshalJSON() ([]byte, error) { return json.Marshal([]any{p.Pre, p.Post}) }

type constructorJSON struct {
	Kind           string `json:"kind"`
	Contract       string `json:"contract"`
	Mode           string `json:"mode"`
	Interface      string `json:"interface"`
	Preconditions  any    `json:"preConditions"`
	Postconditions any    `json:"postConditions"`
	InitialStorage any    `json:"initialStorage"`
	StateUpdates   any    `json:"stateUpdates"`
}

func (c *Constructor[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(constructorJSON{
		Kind:           "Constructor",
		Contract:       c.Name,
		Mode:           c.Mode.String(),
		Interface:      c.Interface.String(),
		Preconditions:  list(c.Preconditions),
		Postconditions: list(c.Postconditions),
		InitialStorage: list(c.InitialStorage),
		StateUpdates:   list(c.StateUpdates),
	})
}

type behaviourJSON struct {
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Contract       string `json:"contract"`
	Mode           string `json:"mode"`
	Interface      string `json:"interface"`
	Preconditions  any    `json:"preConditions"`
	Postconditions any    `json:"postConditions"`
	StateUpdates   any    `json:"stateUpdates"`
	Returns        any    `json:"returns"`
}

func (b *Behaviour[P]) MarshalJSON() ([]byte, error) {
	var ret any
	if b.Returns != nil {
		ret = b.Returns
	}
	return json.Marshal(behaviourJSON{
		Kind:           "Behaviour",
		Name:           b.Name,
		Contract:       b.Contract,
		Mode:           b.Mode.String(),
		Interface:      b.Interface.String(),
		Preconditions:  list(b.Preconditions),
		Postconditions: list(b.Postconditions),
		StateUpdates:   list(b.StateUpdates),
		Returns:        ret,
	})
}

type invariantJSON struct {
	Kind          string `json:"kind"`
	Contract      string `json:"contract"`
	Preconditions any    `json:"preConditions"`
	StorageBounds any    `json:"storageBounds"`
	Predicate     any    `json:"predicate"`
}

func (i *Invariant[P]) MarshalJSON() ([]byte, error) {
	var pred any
	if i.Predicate != nil {
		pred = i.Predicate
	}
	return json.Marshal(invariantJSON{
		Kind:          "Invariant",
		Contract:      i.Contract,
		Preconditions: list(i.Preconditions),
		StorageBounds: list(i.StorageBounds),
		Predicate:     pred,
	})
}

type slotJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type contractJSON struct {
	Contract string     `json:"contract"`
	Slots    []slotJSON `json:"slots"`
}

type storeJSON struct {
	Kind     string         `json:"kind"`
	Storages []contractJSON `json:"storages"`
}

func (s *StoreClaim[P]) MarshalJSON() ([]byte, error) {
	out := storeJSON{Kind: "Storages", Storages: []contractJSON{}}
	for _, c := range s.Layout {
		cj := contractJSON{Contract: c.Contract, Slots: []slotJSON{}}
		for _, slot := range c.Slots {
			cj.Slots = append(cj.Slots, slotJSON{Name: slot.Name, Type: slot.Type.String()})
		}
		out.Storages = append(out.Storages, cj)
	}
	return json.Marshal(out)
}

// MarshalClaims projects a list of claims as a JSON array.
func MarshalClaims[P Phase](claims []Claim[P]) ([]byte, error) {
	return json.MarshalIndent(list(claims), "", "  ")
}

func list[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
