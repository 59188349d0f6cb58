package manifest

import (
	stderrors "errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/multierr"

	"claimc/grammar"
	"claimc/internal/builtins"
	"claimc/internal/errors"
	"claimc/internal/ir"
	"claimc/internal/semantic"
)

// ExpressionError is a typing error inside one manifest expression. The
// position of Err is relative to Source.
type ExpressionError struct {
	Where  string
	Source string
	Err    errors.CompilerError
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Where, e.Err.Error())
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// Report renders every error folded into err. Expression errors are shown
// against the expression they came from.
func Report(path string, err error) string {
	var sb strings.Builder
	for _, e := range multierr.Errors(err) {
		var ee *ExpressionError
		if stderrors.As(e, &ee) {
			sb.WriteString(errors.NewErrorReporter(path+": "+ee.Where, ee.Source).FormatError(ee.Err))
			continue
		}
		sb.WriteString(errors.NewErrorReporter(path, "").Report(e))
	}
	return sb.String()
}

// collector accumulates the errors of a conversion so that one run reports
// every broken expression.
type collector struct {
	errs error
}

func (c *collector) add(err error) {
	c.errs = multierr.Append(c.errs, err)
}

// expression records err, which came from typing src at where. An empty
// src drops the position, since it would point into text that is not
// shown.
func (c *collector) expression(err error, where, src string) {
	var ce errors.CompilerError
	if !stderrors.As(err, &ce) {
		c.add(pkgerrors.Wrap(err, where))
		return
	}
	if src == "" {
		ce.Position = errors.Position{}
		ce.Length = 0
	}
	c.add(&ExpressionError{Where: where, Source: src, Err: ce})
}

// each types every source in srcs with check. Failing sources are
// recorded and left out of the result.
func each[T any](c *collector, where string, srcs []string, check func(string) (T, error)) []T {
	var out []T
	for i, src := range srcs {
		v, err := check(src)
		if err != nil {
			c.expression(err, fmt.Sprintf("%s[%d]", where, i), src)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Layout converts the storage declarations.
func (m *Manifest) Layout() (ir.Layout, error) {
	var c collector
	layout := m.layout(&c)
	return layout, c.errs
}

func (m *Manifest) layout(c *collector) ir.Layout {
	contract := ir.ContractLayout{Contract: m.Contract}
	seen := make(map[string]bool)

	for i, s := range m.Storage {
		field := fmt.Sprintf("storage[%d]", i)
		if seen[s.Name] {
			c.add(errors.InvalidManifest(field, fmt.Sprintf("duplicate storage slot '%s'", s.Name)))
			continue
		}
		seen[s.Name] = true

		typ, err := slotType(s.Type)
		if err != nil {
			c.expression(err, field+".type", s.Type)
			continue
		}
		contract.Slots = append(contract.Slots, ir.Slot{Name: s.Name, Type: typ})
	}
	return ir.Layout{contract}
}

// slotType resolves a slot type such as mapping(address => uint256).
func slotType(src string) (ir.SlotType, error) {
	st, err := grammar.ParseSlotType(src)
	if err != nil {
		return nil, err
	}

	var keys []ir.AbiType
	for st.Mapping != nil {
		key, ok := builtins.ParseAbiType(st.Mapping.Key)
		if !ok {
			return nil, unknownType(st.Mapping.Key, st)
		}
		keys = append(keys, key)
		st = st.Mapping.Value
	}

	value, ok := builtins.ParseAbiType(st.Name)
	if !ok {
		return nil, unknownType(st.Name, st)
	}
	if len(keys) == 0 {
		return ir.StorageValue{Type: value}, nil
	}
	return ir.StorageMapping{Keys: keys, Value: value}, nil
}

func unknownType(name string, at *grammar.SlotType) error {
	return errors.NewError(errors.ErrorUnknownName, fmt.Sprintf("unknown type '%s'", name),
		errors.Position{Line: at.Pos.Line, Column: at.Pos.Column}).
		WithLength(len(name)).
		WithHelp("types are uint<N>, int<N>, address, bool, bytes<N>, bytes, string or mapping(K => T)").
		Build()
}

func (m *Manifest) iface(c *collector, name, where string, args []Arg) ir.Interface {
	out := ir.Interface{Name: name}
	seen := make(map[string]bool)
	for i, a := range args {
		field := fmt.Sprintf("%s.interface[%d]", where, i)
		if seen[a.Name] {
			c.add(errors.InvalidManifest(field, fmt.Sprintf("duplicate argument '%s'", a.Name)))
			continue
		}
		seen[a.Name] = true

		typ, ok := builtins.ParseAbiType(a.Type)
		if !ok {
			c.add(errors.InvalidManifest(field, fmt.Sprintf("unknown type '%s'", a.Type)))
			continue
		}
		out.Decls = append(out.Decls, ir.Decl{Name: a.Name, Type: typ})
	}
	return out
}

func mode(c *collector, where, s string) ir.Mode {
	m, ok := ir.ParseMode(s)
	if !ok {
		c.add(errors.InvalidManifest(where+".mode", fmt.Sprintf("unknown mode '%s'", s)))
	}
	return m
}

// Claims types every claim of the manifest. The result starts with the
// storage layout claim, followed by constructors, behaviours and
// invariants in manifest order. Preconditions, updates and invariants are
// untimed; postconditions and return values are timed and must use pre()
// and post() for storage.
func (m *Manifest) Claims() (ir.Layout, []ir.Claim[ir.Untimed], error) {
	var c collector
	layout := m.layout(&c)
	contract := layout[0]

	claims := []ir.Claim[ir.Untimed]{&ir.StoreClaim[ir.Untimed]{Layout: layout}}

	for i, ctor := range m.Constructors {
		where := fmt.Sprintf("constructors[%d]", i)
		name := ctor.Name
		if name == "" {
			name = m.Contract
		}
		iface := m.iface(&c, "constructor", where, ctor.Interface)
		a := semantic.NewAnalyzer(semantic.NewContext(contract, iface.Decls))

		claims = append(claims, &ir.Constructor[ir.Untimed]{
			Name:           name,
			Mode:           mode(&c, where, ctor.Mode),
			Interface:      iface,
			Preconditions:  each(&c, where+".iff", ctor.Iff, bools[ir.Untimed](a)),
			Postconditions: each(&c, where+".ensures", ctor.Ensures, bools[ir.Timed](a)),
			InitialStorage: assignments(&c, a, where+".initial", ctor.Initial),
		})
	}

	for i, b := range m.Behaviours {
		where := fmt.Sprintf("behaviours[%d]", i)
		iface := m.iface(&c, b.Name, where, b.Interface)
		a := semantic.NewAnalyzer(semantic.NewContext(contract, iface.Decls))

		behaviour := &ir.Behaviour[ir.Untimed]{
			Name:          b.Name,
			Contract:      m.Contract,
			Mode:          mode(&c, where, b.Mode),
			Interface:     iface,
			Preconditions: each(&c, where+".iff", b.Iff, bools[ir.Untimed](a)),
		}
		for _, u := range assignments(&c, a, where+".updates", b.Updates) {
			behaviour.StateUpdates = append(behaviour.StateUpdates, u)
		}
		for _, loc := range each(&c, where+".constants", b.Constants, locations(a)) {
			behaviour.StateUpdates = append(behaviour.StateUpdates, ir.Unchanged(loc))
		}
		behaviour.Postconditions = each(&c, where+".ensures", b.Ensures, bools[ir.Timed](a))
		if b.Returns != "" {
			ret, err := semantic.Typed[ir.Timed](a, b.Returns)
			if err != nil {
				c.expression(err, where+".returns", b.Returns)
			}
			behaviour.Returns = ret
		}
		claims = append(claims, behaviour)
	}

	for i, inv := range m.Invariants {
		where := fmt.Sprintf("invariants[%d]", i)
		a := semantic.NewAnalyzer(semantic.NewContext(contract, nil))

		invariant := &ir.Invariant[ir.Untimed]{
			Contract:      m.Contract,
			Preconditions: each(&c, where+".iff", inv.Iff, bools[ir.Untimed](a)),
			StorageBounds: each(&c, where+".bounds", inv.Bounds, locations(a)),
		}
		p, err := semantic.Bool[ir.Untimed](a, inv.Predicate)
		if err != nil {
			c.expression(err, where+".predicate", inv.Predicate)
		} else {
			invariant.Predicate = &ir.Predicate{Exp: p}
		}
		claims = append(claims, invariant)
	}

	if c.errs != nil {
		return nil, nil, c.errs
	}
	log.Infof("typed %d claims for %s", len(claims), m.Contract)
	return layout, claims, nil
}

func bools[P ir.Phase](a *semantic.Analyzer) func(string) (ir.Exp[bool, P], error) {
	return func(src string) (ir.Exp[bool, P], error) {
		return semantic.Bool[P](a, src)
	}
}

func locations(a *semantic.Analyzer) func(string) (ir.StorageLocation[ir.Untimed], error) {
	return func(src string) (ir.StorageLocation[ir.Untimed], error) {
		return semantic.Location(a, src)
	}
}

func assignments(c *collector, a *semantic.Analyzer, where string, as []Assignment) []ir.StorageUpdate[ir.Untimed] {
	var out []ir.StorageUpdate[ir.Untimed]
	for i, asg := range as {
		u, err := semantic.Update(a, asg.Target, asg.Value)
		if err != nil {
			c.expression(err, fmt.Sprintf("%s[%d]", where, i), "")
			continue
		}
		out = append(out, u)
	}
	return out
}
