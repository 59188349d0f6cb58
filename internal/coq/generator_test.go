package coq

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimc/internal/errors"
	"claimc/internal/ir"
)

type (
	U = ir.Untimed
	T = ir.Timed
)

func intVar(name string) ir.Exp[ir.Integer, U] { return ir.Variable[ir.Integer, U](name) }

func balanceOf(who string) ir.Exp[ir.Integer, U] {
	return ir.Lookup(ir.Neither, balances(who))
}

func balances(who string) *ir.StorageItem[ir.Integer, U] {
	return ir.Item[ir.Integer, U]("Token", "balances", ir.Typed(intVar(who)))
}

func tokenLayout() ir.Layout {
	return ir.Layout{{
		Contract: "Token",
		Slots: []ir.Slot{
			{Name: "totalSupply", Type: ir.StorageValue{Type: ir.UInt(256)}},
			{Name: "balances", Type: ir.StorageMapping{Keys: []ir.AbiType{ir.Address}, Value: ir.UInt(256)}},
			{Name: "paused", Type: ir.StorageValue{Type: ir.Boolean}},
		},
	}}
}

func tokenConstructor() *ir.Constructor[U] {
	return &ir.Constructor[U]{
		Name: "Token",
		Mode: ir.Pass,
		Interface: ir.Interface{Name: "constructor", Decls: []ir.Decl{
			{Name: "supply", Type: ir.UInt(256)},
			{Name: "holder", Type: ir.Address},
		}},
		Preconditions: []ir.Exp[bool, U]{ir.GT(intVar("supply"), ir.Int[U](0))},
		InitialStorage: []ir.StorageUpdate[U]{
			ir.Assign(ir.Item[ir.Integer, U]("Token", "totalSupply"), intVar("supply")),
			ir.Assign(balances("holder"), intVar("supply")),
		},
	}
}

func transferIface() ir.Interface {
	return ir.Interface{Name: "transfer", Decls: []ir.Decl{
		{Name: "src", Type: ir.Address},
		{Name: "dst", Type: ir.Address},
		{Name: "value", Type: ir.UInt(256)},
	}}
}

func transfer() *ir.Behaviour[U] {
	return &ir.Behaviour[U]{
		Name:      "transfer",
		Contract:  "Token",
		Mode:      ir.Pass,
		Interface: transferIface(),
		Preconditions: []ir.Exp[bool, U]{
			ir.LEQ(intVar("value"), balanceOf("src")),
			ir.NotEqual(intVar("src"), intVar("dst")),
		},
		StateUpdates: []ir.Rewrite[U]{
			ir.Assign(balances("src"), ir.Sub(balanceOf("src"), intVar("value"))),
			ir.Assign(balances("dst"), ir.Add(balanceOf("dst"), intVar("value"))),
			ir.Unchanged(ir.Locate(ir.Item[ir.Integer, U]("Token", "totalSupply"))),
		},
	}
}

func pause() *ir.Behaviour[U] {
	return &ir.Behaviour[U]{
		Name:      "pause",
		Contract:  "Token",
		Mode:      ir.Pass,
		Interface: ir.Interface{Name: "pause"},
		StateUpdates: []ir.Rewrite[U]{
			ir.Assign(ir.Item[bool, U]("Token", "paused"), ir.Bool[U](true)),
		},
	}
}

func tokenClaims() []ir.Claim[U] {
	failing := transfer()
	failing.Mode = ir.Fail
	failing.Preconditions = []ir.Exp[bool, U]{ir.GT(intVar("value"), balanceOf("src"))}
	failing.StateUpdates = nil

	return []ir.Claim[U]{
		&ir.StoreClaim[U]{Layout: tokenLayout()},
		tokenConstructor(),
		transfer(),
		failing,
		pause(),
		&ir.Invariant[U]{
			Contract:  "Token",
			Predicate: &ir.Predicate{Exp: ir.GEQ(ir.Lookup(ir.Neither, ir.Item[ir.Integer, U]("Token", "totalSupply")), ir.Int[U](0))},
		},
	}
}

func generate(t *testing.T, layout ir.Layout, claims ...ir.Claim[U]) (string, error) {
	t.Helper()
	return Generate(layout, ir.RefineClaims(claims))
}

func TestGenerateToken(t *testing.T) {
	out, err := generate(t, tokenLayout(), tokenClaims()...)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "token", []byte(out))
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, err := generate(t, tokenLayout(), tokenClaims()...)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := generate(t, tokenLayout(), tokenClaims()...)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("output differs between runs (-first +again):\n%s", diff)
		}
	}
}

func TestGenerateRequiresSingleConstructor(t *testing.T) {
	tests := []struct {
		name   string
		claims []ir.Claim[U]
	}{
		{"none", []ir.Claim[U]{pause()}},
		{"two", []ir.Claim[U]{tokenConstructor(), tokenConstructor(), pause()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := generate(t, tokenLayout(), tt.claims...)
			assert.True(t, stderrors.Is(err, errors.ErrMultipleConstructors))
			assert.Empty(t, out)
		})
	}
}

func TestFailingConstructorIsNotCreation(t *testing.T) {
	failing := tokenConstructor()
	failing.Mode = ir.Fail

	_, err := generate(t, tokenLayout(), failing, tokenConstructor())
	assert.NoError(t, err)
}

func TestFalsePreconditionKeepsState(t *testing.T) {
	never := pause()
	never.Preconditions = []ir.Exp[bool, U]{ir.Bool[U](false)}

	out, err := generate(t, tokenLayout(), tokenConstructor(), never)
	require.NoError(t, err)

	assert.Contains(t, out, "Definition pause (STATE : State) : State :=\n"+
		"  if false\n"+
		"  then state (totalSupply STATE) (balances STATE) true\n"+
		"  else STATE.\n")
}

func TestUnconditionedTransitionOmitsIf(t *testing.T) {
	out, err := generate(t, tokenLayout(), tokenConstructor(), pause())
	require.NoError(t, err)

	assert.Contains(t, out, "Definition pause (STATE : State) : State :=\n"+
		"  state (totalSupply STATE) (balances STATE) true.\n")
}

func TestMappingUpdateFallsBackToPriorMapping(t *testing.T) {
	mint := &ir.Behaviour[U]{
		Name:      "mint",
		Contract:  "Token",
		Mode:      ir.Pass,
		Interface: ir.Interface{Name: "mint", Decls: []ir.Decl{{Name: "who", Type: ir.Address}}},
		StateUpdates: []ir.Rewrite[U]{
			ir.Assign(balances("who"), ir.Int[U](100)),
		},
	}

	out, err := generate(t, tokenLayout(), tokenConstructor(), mint)
	require.NoError(t, err)

	assert.Contains(t, out, "(fun i0 => if (i0 =? who) then 100 else (balances STATE i0))")
}

func TestMultiKeyMappingUpdate(t *testing.T) {
	layout := ir.Layout{{
		Contract: "Token",
		Slots: []ir.Slot{{
			Name: "allowance",
			Type: ir.StorageMapping{Keys: []ir.AbiType{ir.Address, ir.Address}, Value: ir.UInt(256)},
		}},
	}}
	ctor := &ir.Constructor[U]{Name: "Token", Mode: ir.Pass, Interface: ir.Interface{Name: "constructor"}}
	approve := &ir.Behaviour[U]{
		Name:     "approve",
		Contract: "Token",
		Mode:     ir.Pass,
		Interface: ir.Interface{Name: "approve", Decls: []ir.Decl{
			{Name: "owner", Type: ir.Address},
			{Name: "spender", Type: ir.Address},
			{Name: "value", Type: ir.UInt(256)},
		}},
		StateUpdates: []ir.Rewrite[U]{
			ir.Assign(ir.Item[ir.Integer, U]("Token", "allowance", ir.Typed(intVar("owner")), ir.Typed(intVar("spender"))), intVar("value")),
		},
	}

	out, err := generate(t, layout, ctor, approve)
	require.NoError(t, err)

	assert.Contains(t, out, "{ allowance : address -> address -> Z\n")
	assert.Contains(t, out, "(fun i0 i1 => if (andb (i0 =? owner) (i1 =? spender)) then value else (allowance STATE i0 i1))")
	assert.Contains(t, out, "Definition BASE : State :=\n  state (fun _ _ => 0).\n")
	assert.Contains(t, out, "  | base : reachable BASE\n")
}

func TestBaseStateDefaults(t *testing.T) {
	layout := ir.Layout{{
		Contract: "Registry",
		Slots: []ir.Slot{
			{Name: "count", Type: ir.StorageValue{Type: ir.SInt(64)}},
			{Name: "open", Type: ir.StorageValue{Type: ir.Boolean}},
			{Name: "label", Type: ir.StorageValue{Type: ir.StringType}},
			{Name: "admin", Type: ir.StorageValue{Type: ir.Address}},
			{Name: "seen", Type: ir.StorageMapping{Keys: []ir.AbiType{ir.UInt(256)}, Value: ir.Boolean}},
		},
	}}
	ctor := &ir.Constructor[U]{Name: "Registry", Mode: ir.Pass, Interface: ir.Interface{Name: "constructor"}}

	out, err := Generate(layout, []ir.Claim[T]{ir.RefineClaim(ctor)})
	require.NoError(t, err)

	assert.Contains(t, out, "; label : Str.string\n")
	assert.Contains(t, out, "Definition BASE : State :=\n  state 0 false Str.EmptyString 0 (fun _ => false).\n")
}

func TestClosedExpressionsAreFolded(t *testing.T) {
	set := &ir.Behaviour[U]{
		Name:      "reset",
		Contract:  "Token",
		Mode:      ir.Pass,
		Interface: ir.Interface{Name: "reset"},
		Preconditions: []ir.Exp[bool, U]{
			ir.LT(ir.Int[U](1), ir.Int[U](2)),
		},
		StateUpdates: []ir.Rewrite[U]{
			ir.Assign(ir.Item[ir.Integer, U]("Token", "totalSupply"), ir.Div(ir.Int[U](-7), ir.Int[U](2))),
		},
	}

	out, err := generate(t, tokenLayout(), tokenConstructor(), set)
	require.NoError(t, err)

	assert.Contains(t, out, "  if true\n  then state (-4) (balances STATE) (paused STATE)\n")
}

func TestFoldingPrecedesUnsupportedChecks(t *testing.T) {
	set := pause()
	set.Preconditions = []ir.Exp[bool, U]{
		ir.Equal(ir.ByteString[U]([]byte("a")), ir.ByteString[U]([]byte("a"))),
		ir.LT(ir.If(ir.Bool[U](true), ir.Int[U](1), ir.EnvValue[ir.Integer, U](ir.Caller)), ir.Int[U](2)),
	}

	out, err := generate(t, tokenLayout(), tokenConstructor(), set)
	require.NoError(t, err)

	assert.Contains(t, out, "  if true\n")
	assert.NotContains(t, out, "CALLER")
}

func TestBoundsKeepSymbolicNames(t *testing.T) {
	capped := pause()
	capped.Preconditions = []ir.Exp[bool, U]{
		ir.LEQ(ir.Lookup(ir.Neither, ir.Item[ir.Integer, U]("Token", "totalSupply")), ir.UIntMax[U](256)),
	}

	out, err := generate(t, tokenLayout(), tokenConstructor(), capped)
	require.NoError(t, err)

	assert.Contains(t, out, "  if ((totalSupply STATE) <=? (UINT_MAX 256))\n")
}

func TestDuplicateBehaviourNamesAreNumbered(t *testing.T) {
	second := transfer()
	second.Preconditions = nil

	out, err := generate(t, tokenLayout(), tokenConstructor(), transfer(), second)
	require.NoError(t, err)

	assert.Contains(t, out, "Definition transfer_0 (STATE : State)")
	assert.Contains(t, out, "Definition transfer_1 (STATE : State)")
	assert.Contains(t, out, "  | transfer_1_step : forall (STATE : State)")
	assert.NotContains(t, out, "Definition transfer (STATE")
}

func TestDefinitionNameClashes(t *testing.T) {
	named := func(name string) *ir.Behaviour[U] {
		b := pause()
		b.Name = name
		b.Interface.Name = name
		return b
	}

	tests := []struct {
		name   string
		claims []ir.Claim[U]
		clash  string
	}{
		{"numbered duplicate", []ir.Claim[U]{tokenConstructor(), transfer(), transfer(), named("transfer_0")}, "transfer_0"},
		{"slot accessor", []ir.Claim[U]{tokenConstructor(), named("balances")}, "balances"},
		{"record constructor", []ir.Claim[U]{tokenConstructor(), named("state")}, "state"},
		{"base state", []ir.Claim[U]{tokenConstructor(), named("BASE")}, "BASE"},
		{"step rule", []ir.Claim[U]{tokenConstructor(), named("pause"), named("pause_step")}, "pause_step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := generate(t, tokenLayout(), tt.claims...)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFeature))
			assert.Contains(t, err.Error(), "definition name "+tt.clash+" clashing")
			assert.Empty(t, out)
		})
	}
}

func TestUnsupportedFeatures(t *testing.T) {
	withEnv := pause()
	withEnv.Preconditions = []ir.Exp[bool, U]{
		ir.Equal(ir.EnvValue[ir.Integer, U](ir.Callvalue), ir.Int[U](0)),
	}

	withNewAddr := pause()
	withNewAddr.Preconditions = []ir.Exp[bool, U]{
		ir.Equal(ir.NewAddress(intVar("a"), ir.Int[U](1)), ir.Int[U](0)),
	}

	withBytes := pause()
	withBytes.Preconditions = []ir.Exp[bool, U]{
		ir.Equal(ir.Concat(ir.Variable[ir.Bytes, U]("tag"), ir.ByteString[U]([]byte{2})), ir.ByteString[U]([]byte{1, 2})),
	}

	foreign := pause()
	foreign.Contract = "Other"

	external := pause()
	external.StateUpdates = []ir.Rewrite[U]{
		ir.Assign(ir.Item[bool, U]("Token", "frozen"), ir.Bool[U](true)),
	}

	tests := []struct {
		name      string
		behaviour *ir.Behaviour[U]
		message   string
	}{
		{"environment", withEnv, "environment value CALLVALUE"},
		{"new address", withNewAddr, "address allocation"},
		{"bytes", withBytes, "byte string"},
		{"foreign contract", foreign, "behaviour of contract Other"},
		{"external storage", external, "external storage frozen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := generate(t, tokenLayout(), tokenConstructor(), tt.behaviour)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFeature))
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, out)
		})
	}
}

func TestUnmarkedStorageReadIsUnsupported(t *testing.T) {
	claims := ir.RefineClaims([]ir.Claim[U]{tokenConstructor(), pause()})
	step := claims[1].(*ir.Behaviour[T])
	unmarked := &ir.Entry[bool, T]{Item: ir.Item[bool, T]("Token", "paused")}
	step.Preconditions = []ir.Exp[bool, T]{ir.Neg(unmarked)}

	out, err := Generate(tokenLayout(), claims)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFeature))
	assert.Contains(t, err.Error(), "without pre or post")
	assert.Empty(t, out)
}

func TestMultiContractLayoutIsUnsupported(t *testing.T) {
	layout := append(tokenLayout(), ir.ContractLayout{Contract: "Vault"})

	_, err := generate(t, layout, tokenConstructor())
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFeature))
	assert.Contains(t, err.Error(), "2 contracts")
}

func TestConflictingUpdates(t *testing.T) {
	twice := transfer()
	twice.StateUpdates = []ir.Rewrite[U]{
		ir.Assign(balances("src"), ir.Int[U](0)),
		ir.Assign(balances("src"), ir.Int[U](1)),
	}

	_, err := generate(t, tokenLayout(), tokenConstructor(), twice)
	assert.True(t, stderrors.Is(err, errors.ErrConflictingUpdates))
	assert.Contains(t, err.Error(), "balances[src]")
}

func TestByteStorageIsUnsupportedType(t *testing.T) {
	layout := ir.Layout{{
		Contract: "Token",
		Slots:    []ir.Slot{{Name: "data", Type: ir.StorageValue{Type: ir.DynBytes}}},
	}}

	_, err := generate(t, layout, &ir.Constructor[U]{Name: "Token", Mode: ir.Pass})
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedType))
}

func TestConstructorStorageReadIsUnsupported(t *testing.T) {
	ctor := tokenConstructor()
	ctor.InitialStorage = []ir.StorageUpdate[U]{
		ir.Assign(ir.Item[ir.Integer, U]("Token", "totalSupply"), balanceOf("holder")),
	}

	_, err := generate(t, tokenLayout(), ctor)
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFeature))
	assert.Contains(t, err.Error(), "storage read")
}

func TestSlotTypes(t *testing.T) {
	tests := []struct {
		slot     ir.SlotType
		coq      string
		fallback string
	}{
		{ir.StorageValue{Type: ir.UInt(8)}, "Z", "0"},
		{ir.StorageValue{Type: ir.SInt(256)}, "Z", "0"},
		{ir.StorageValue{Type: ir.Address}, "address", "0"},
		{ir.StorageValue{Type: ir.Boolean}, "bool", "false"},
		{ir.StorageValue{Type: ir.StringType}, "Str.string", "Str.EmptyString"},
		{ir.StorageMapping{Keys: []ir.AbiType{ir.Address, ir.UInt(256)}, Value: ir.Boolean}, "address -> Z -> bool", "(fun _ _ => false)"},
	}

	for _, tt := range tests {
		t.Run(tt.slot.String(), func(t *testing.T) {
			typ, err := SlotType(tt.slot)
			require.NoError(t, err)
			assert.Equal(t, tt.coq, typ)

			def, err := DefaultValue(tt.slot)
			require.NoError(t, err)
			assert.Equal(t, tt.fallback, def)
		})
	}
}

func TestMissingDefault(t *testing.T) {
	_, err := DefaultValue(ir.StorageValue{Type: ir.BytesN(32)})
	assert.True(t, stderrors.Is(err, errors.ErrMissingDefault))

	_, err = DefaultValue(ir.StorageMapping{Keys: []ir.AbiType{ir.Address}, Value: ir.DynBytes})
	assert.True(t, stderrors.Is(err, errors.ErrMissingDefault))
	assert.True(t, strings.Contains(err.Error(), "bytes"))
}
