package ir

// SetTime stamps every storage entry of e, including entries nested in
// mapping indices, with t and leaves every other node unchanged. It is
// total: shapes a backend cannot lower are refined all the same.
//
// SetTime accepts terms of either phase, so stamping a timed term again
// with the same marker returns an equal term. It panics if t is neither
// Pre nor Post.
func SetTime[A Value, P Phase](t Time[Timed], e Exp[A, P]) Exp[A, Timed] {
	mustValid(t)
	return e.timed(t)
}

// SetTimeTyped is SetTime for a TypedExp.
func SetTimeTyped[P Phase](t Time[Timed], e TypedExp[P]) TypedExp[Timed] {
	mustValid(t)
	return e.timedTyped(t)
}

// SetTimeItem stamps the indices of a storage item.
func SetTimeItem[A Value, P Phase](t Time[Timed], item *StorageItem[A, P]) *StorageItem[A, Timed] {
	mustValid(t)
	return item.timed(t)
}

// SetTimeLocation is SetTime for a StorageLocation.
func SetTimeLocation[P Phase](t Time[Timed], l StorageLocation[P]) StorageLocation[Timed] {
	mustValid(t)
	return l.timedLocation(t)
}

// SetTimeUpdate is SetTime for a StorageUpdate.
func SetTimeUpdate[P Phase](t Time[Timed], u StorageUpdate[P]) StorageUpdate[Timed] {
	mustValid(t)
	return u.timedUpdate(t)
}

// SetTimeRewrite is SetTime for a Rewrite.
func SetTimeRewrite[P Phase](t Time[Timed], r Rewrite[P]) Rewrite[Timed] {
	mustValid(t)
	return r.timedRewrite(t)
}

func (e *BoolOp[P]) timed(t Time[Timed]) Exp[bool, Timed] {
	return &BoolOp[Timed]{Op: e.Op, L: e.L.timed(t), R: e.R.timed(t)}
}

func (e *Not[P]) timed(t Time[Timed]) Exp[bool, Timed] {
	return &Not[Timed]{X: e.X.timed(t)}
}

func (e *Cmp[P]) timed(t Time[Timed]) Exp[bool, Timed] {
	return &Cmp[Timed]{Op: e.Op, L: e.L.timed(t), R: e.R.timed(t)}
}

func (e *Arith[P]) timed(t Time[Timed]) Exp[Integer, Timed] {
	return &Arith[Timed]{Op: e.Op, L: e.L.timed(t), R: e.R.timed(t)}
}

func (e *Bound[P]) timed(Time[Timed]) Exp[Integer, Timed] {
	return &Bound[Timed]{Kind: e.Kind, Bits: e.Bits}
}

func (e *LitInt[P]) timed(Time[Timed]) Exp[Integer, Timed] {
	return &LitInt[Timed]{Value: e.Value}
}

func (e *LitBool[P]) timed(Time[Timed]) Exp[bool, Timed] {
	return &LitBool[Timed]{Value: e.Value}
}

func (e *LitBytes[P]) timed(Time[Timed]) Exp[Bytes, Timed] {
	return &LitBytes[Timed]{Value: e.Value}
}

func (e *Var[A, P]) timed(Time[Timed]) Exp[A, Timed] {
	return &Var[A, Timed]{Name: e.Name}
}

func (e *Env[A, P]) timed(Time[Timed]) Exp[A, Timed] {
	return &Env[A, Timed]{Value: e.Value}
}

func (e *Cat[P]) timed(t Time[Timed]) Exp[Bytes, Timed] {
	return &Cat[Timed]{L: e.L.timed(t), R: e.R.timed(t)}
}

func (e *Slice[P]) timed(t Time[Timed]) Exp[Bytes, Timed] {
	return &Slice[Timed]{Bytes: e.Bytes.timed(t), Start: e.Start.timed(t), Length: e.Length.timed(t)}
}

func (e *NewAddr[P]) timed(t Time[Timed]) Exp[Integer, Timed] {
	return &NewAddr[Timed]{Sender: e.Sender.timed(t), Nonce: e.Nonce.timed(t)}
}

func (e *Eq[A, P]) timed(t Time[Timed]) Exp[bool, Timed] {
	return &Eq[A, Timed]{L: e.L.timed(t), R: e.R.timed(t)}
}

func (e *NEq[A, P]) timed(t Time[Timed]) Exp[bool, Timed] {
	return &NEq[A, Timed]{L: e.L.timed(t), R: e.R.timed(t)}
}

func (e *ITE[A, P]) timed(t Time[Timed]) Exp[A, Timed] {
	return &ITE[A, Timed]{Cond: e.Cond.timed(t), Then: e.Then.timed(t), Else: e.Else.timed(t)}
}

func (e *Entry[A, P]) timed(t Time[Timed]) Exp[A, Timed] {
	return &Entry[A, Timed]{When: t, Item: e.Item.timed(t)}
}

func (i *StorageItem[A, P]) timed(t Time[Timed]) *StorageItem[A, Timed] {
	ixs := make([]TypedExp[Timed], len(i.Indices))
	for n, ix := range i.Indices {
		ixs[n] = ix.timedTyped(t)
	}
	return &StorageItem[A, Timed]{Ref: Ref[Timed]{Contract: i.Contract, Name: i.Name, Indices: ixs}}
}

func (e *TExp[A, P]) timedTyped(t Time[Timed]) TypedExp[Timed] {
	return &TExp[A, Timed]{Exp: e.Exp.timed(t)}
}

func (l *Location[A, P]) timedLocation(t Time[Timed]) StorageLocation[Timed] {
	return &Location[A, Timed]{Item: l.Item.timed(t)}
}

func (u *Update[A, P]) timedUpdate(t Time[Timed]) StorageUpdate[Timed] {
	return &Update[A, Timed]{Item: u.Item.timed(t), Value: u.Value.timed(t)}
}

func (u *Update[A, P]) timedRewrite(t Time[Timed]) Rewrite[Timed] { return u.timedUpdate(t) }

func (c *Constant[P]) timedRewrite(t Time[Timed]) Rewrite[Timed] {
	return &Constant[Timed]{Location: c.Location.timedLocation(t)}
}

// RefineClaim turns an untimed claim into a timed one. Everything read on
// entry (preconditions, storage bounds, rewrites and initial storage) is
// stamped Pre. An invariant predicate p becomes the pair (Pre p, Post p).
// Postconditions and return values are already timed and are kept as is.
func RefineClaim(c Claim[Untimed]) Claim[Timed] {
	switch c := c.(type) {
	case *Constructor[Untimed]:
		return RefineConstructor(c)
	case *Behaviour[Untimed]:
		return RefineBehaviour(c)
	case *Invariant[Untimed]:
		return RefineInvariant(c)
	case *StoreClaim[Untimed]:
		return &StoreClaim[Timed]{Layout: c.Layout}
	}
	panic("ir: unknown claim type")
}

// RefineClaims applies RefineClaim to every claim.
func RefineClaims(cs []Claim[Untimed]) []Claim[Timed] {
	out := make([]Claim[Timed], len(cs))
	for i, c := range cs {
		out[i] = RefineClaim(c)
	}
	return out
}

func RefineConstructor(c *Constructor[Untimed]) *Constructor[Timed] {
	initial := make([]StorageUpdate[Timed], len(c.InitialStorage))
	for i, u := range c.InitialStorage {
		initial[i] = u.timedUpdate(Pre)
	}
	return &Constructor[Timed]{
		Name:           c.Name,
		Mode:           c.Mode,
		Interface:      c.Interface,
		Preconditions:  refineConds(c.Preconditions),
		Postconditions: c.Postconditions,
		InitialStorage: initial,
		StateUpdates:   refineRewrites(c.StateUpdates),
	}
}

func RefineBehaviour(b *Behaviour[Untimed]) *Behaviour[Timed] {
	return &Behaviour[Timed]{
		Name:           b.Name,
		Contract:       b.Contract,
		Mode:           b.Mode,
		Interface:      b.Interface,
		Preconditions:  refineConds(b.Preconditions),
		Postconditions: b.Postconditions,
		StateUpdates:   refineRewrites(b.StateUpdates),
		Returns:        b.Returns,
	}
}

func RefineInvariant(inv *Invariant[Untimed]) *Invariant[Timed] {
	bounds := make([]StorageLocation[Timed], len(inv.StorageBounds))
	for i, l := range inv.StorageBounds {
		bounds[i] = l.timedLocation(Pre)
	}
	out := &Invariant[Timed]{
		Contract:      inv.Contract,
		Preconditions: refineConds(inv.Preconditions),
		StorageBounds: bounds,
	}
	if p, ok := inv.Predicate.(*Predicate); ok && p != nil {
		out.Predicate = &PrePost{Pre: p.Exp.timed(Pre), Post: p.Exp.timed(Post)}
	}
	return out
}

func refineConds(cs []Exp[bool, Untimed]) []Exp[bool, Timed] {
	out := make([]Exp[bool, Timed], len(cs))
	for i, c := range cs {
		out[i] = c.timed(Pre)
	}
	return out
}

func refineRewrites(rs []Rewrite[Untimed]) []Rewrite[Timed] {
	out := make([]Rewrite[Timed], len(rs))
	for i, r := range rs {
		out[i] = r.timedRewrite(Pre)
	}
	return out
}
