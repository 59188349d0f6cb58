package semantic

import (
	stderrors "errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimc/grammar"
	"claimc/internal/errors"
	"claimc/internal/ir"
)

var tokenLayout = ir.ContractLayout{
	Contract: "Token",
	Slots: []ir.Slot{
		{Name: "totalSupply", Type: ir.StorageValue{Type: ir.UInt(256)}},
		{Name: "balances", Type: ir.StorageMapping{Keys: []ir.AbiType{ir.Address}, Value: ir.UInt(256)}},
		{Name: "allowance", Type: ir.StorageMapping{Keys: []ir.AbiType{ir.Address, ir.Address}, Value: ir.UInt(256)}},
		{Name: "paused", Type: ir.StorageValue{Type: ir.Boolean}},
		{Name: "name", Type: ir.StorageValue{Type: ir.StringType}},
	},
}

func transferAnalyzer() *Analyzer {
	return NewAnalyzer(NewContext(tokenLayout, []ir.Decl{
		{Name: "to", Type: ir.Address},
		{Name: "value", Type: ir.UInt(256)},
		{Name: "memo", Type: ir.DynBytes},
	}))
}

var irOpts = cmp.Options{
	cmp.AllowUnexported(ir.Time[ir.Untimed]{}, ir.Time[ir.Timed]{}),
	cmp.Comparer(func(x, y *big.Int) bool { return x.Cmp(y) == 0 }),
}

func TestUntimedPrecondition(t *testing.T) {
	a := transferAnalyzer()

	got, err := Bool[ir.Untimed](a, "balances[CALLER] >= value and not paused")
	require.NoError(t, err)

	want := ir.And(
		ir.GEQ(
			ir.Lookup(ir.Neither, ir.Item[ir.Integer](
				"Token", "balances", ir.Typed(ir.EnvValue[ir.Integer, ir.Untimed](ir.Caller)))),
			ir.Variable[ir.Integer, ir.Untimed]("value")),
		ir.Neg(ir.Lookup(ir.Neither, ir.Item[bool, ir.Untimed]("Token", "paused"))),
	)
	if diff := cmp.Diff(want, got, irOpts); diff != "" {
		t.Errorf("precondition mismatch (-want +got):\n%s", diff)
	}
}

func TestTimedPostcondition(t *testing.T) {
	a := transferAnalyzer()

	got, err := Bool[ir.Timed](a, "post(balances[to]) == pre(balances[to]) + value")
	require.NoError(t, err)
	assert.Equal(t, "(post(balances[to]) == (pre(balances[to]) + value))", got.String())

	eq, ok := got.(*ir.Eq[ir.Integer, ir.Timed])
	require.True(t, ok)
	lhs, ok := eq.L.(*ir.Entry[ir.Integer, ir.Timed])
	require.True(t, ok)
	assert.True(t, lhs.When.IsPost())
}

func TestMarkersStampIndices(t *testing.T) {
	a := transferAnalyzer()

	got, err := Int[ir.Timed](a, "pre(allowance[to][CALLER])")
	require.NoError(t, err)

	entry, ok := got.(*ir.Entry[ir.Integer, ir.Timed])
	require.True(t, ok)
	assert.True(t, entry.When.IsPre())
	require.Len(t, entry.Item.Indices, 2)
	assert.Equal(t, "int", entry.Item.Indices[0].Sort())
}

func TestNestedIndexIsTimedByEnclosingMarker(t *testing.T) {
	a := NewAnalyzer(NewContext(ir.ContractLayout{
		Contract: "Registry",
		Slots: []ir.Slot{
			{Name: "owner", Type: ir.StorageValue{Type: ir.Address}},
			{Name: "weights", Type: ir.StorageMapping{Keys: []ir.AbiType{ir.Address}, Value: ir.UInt(8)}},
		},
	}, nil))

	got, err := Int[ir.Timed](a, "post(weights[owner])")
	require.NoError(t, err)
	assert.Equal(t, "post(weights[post(owner)])", got.String())
}

func TestTimingErrors(t *testing.T) {
	a := transferAnalyzer()

	_, err := Bool[ir.Timed](a, "totalSupply > 0")
	assert.True(t, stderrors.Is(err, errors.ErrTiming))
	var ce errors.CompilerError
	require.True(t, stderrors.As(err, &ce))
	require.Len(t, ce.Suggestions, 1)
	assert.Equal(t, "pre(totalSupply)", ce.Suggestions[0].Replacement)

	_, err = Bool[ir.Untimed](a, "pre(totalSupply) > 0")
	assert.True(t, stderrors.Is(err, errors.ErrTiming))

	// markers are fine around terms without storage
	_, err = Bool[ir.Timed](a, "post(value) > 0")
	assert.NoError(t, err)
}

func TestNameResolutionOrder(t *testing.T) {
	// an argument shadows a slot of the same name
	a := NewAnalyzer(NewContext(tokenLayout, []ir.Decl{{Name: "paused", Type: ir.UInt(8)}}))

	got, err := Typed[ir.Untimed](a, "paused")
	require.NoError(t, err)
	assert.Equal(t, "int", got.Sort())

	got, err = Typed[ir.Untimed](a, "BLOCKHASH")
	require.NoError(t, err)
	assert.Equal(t, "bytes", got.Sort())
}

func TestUnknownName(t *testing.T) {
	a := transferAnalyzer()

	_, err := Bool[ir.Untimed](a, "balance[to] > 0")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownName))

	var ce errors.CompilerError
	require.True(t, stderrors.As(err, &ce))
	require.NotEmpty(t, ce.Suggestions)
	assert.Contains(t, ce.Suggestions[0].Message, "balances")
	assert.Equal(t, errors.Position{Line: 1, Column: 1}, ce.Position)

	_, err = Int[ir.Untimed](a, "intmid(8)")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownName))
}

func TestTypeMismatch(t *testing.T) {
	a := transferAnalyzer()

	for _, src := range []string{
		"value and paused",
		"value",
		"memo == value",
		"balances[paused]",
		"if value then true else false",
		"if paused then 1 else false",
		"not value",
	} {
		_, err := Bool[ir.Untimed](a, src)
		assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch), src)
	}
}

func TestPartialMappingAccess(t *testing.T) {
	a := transferAnalyzer()

	for _, src := range []string{"allowance[to]", "balances", "totalSupply[to]", "value[0]", "(balances)[to]"} {
		_, err := Int[ir.Untimed](a, src)
		assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch), src)
	}
}

func TestLiterals(t *testing.T) {
	a := NewAnalyzer(Closed())

	tests := []struct {
		src  string
		sort string
		want string
	}{
		{"-5", "int", "-5"},
		{"0xff", "int", "255"},
		{"010", "int", "10"},
		{"-2^2", "int", "(0 - (2 ^ 2))"},
		{`"ab"`, "bytes", "0x6162"},
		{"true", "bool", "true"},
		{"intmin(8)", "int", "intmin(8)"},
		{"uintmax(4 * 64)", "int", "uintmax(256)"},
		{"slice(\"abc\", 1, 1)", "bytes", "slice(0x616263, 1, 1)"},
		{"newAddr(CALLER, NONCE)", "int", "newAddr(CALLER, NONCE)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Typed[ir.Untimed](a, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.sort, got.Sort())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestInvalidCalls(t *testing.T) {
	a := NewAnalyzer(Closed())

	for _, src := range []string{"intmax(0)", "uintmax(257)", "intmin(CALLER)", "slice(\"a\", 0)", "pre()"} {
		_, err := Typed[ir.Timed](a, src)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidCall), src)
	}
}

func TestEvaluatesClosedTerms(t *testing.T) {
	a := NewAnalyzer(Closed())

	got, err := Int[ir.Untimed](a, "(7 - 10) / 2 + intmax(8)")
	require.NoError(t, err)
	v, ok := ir.Eval(got)
	require.True(t, ok)
	assert.Equal(t, "125", v.String())
}

func TestUpdate(t *testing.T) {
	a := transferAnalyzer()

	u, err := Update(a, "balances[to]", "balances[to] + value")
	require.NoError(t, err)
	assert.Equal(t, "balances[to] => (balances[to] + value)", u.String())
	assert.Equal(t, "int", u.Sort())
	assert.Equal(t, "Token", u.Target().Contract)

	u, err = Update(a, "paused", "true")
	require.NoError(t, err)
	assert.Equal(t, "bool", u.Sort())

	_, err = Update(a, "value", "1")
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = Update(a, "paused", "1")
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = Update(a, "balances[to] +", "1")
	assert.True(t, stderrors.Is(err, errors.ErrSyntax))
}

func TestLocation(t *testing.T) {
	a := transferAnalyzer()

	loc, err := Location(a, "allowance[to][CALLER]")
	require.NoError(t, err)
	assert.Equal(t, "allowance[to][CALLER]", loc.String())
	assert.Equal(t, "int", loc.Sort())

	_, err = Location(a, "CALLER")
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))
}

func TestCheckParsed(t *testing.T) {
	e, err := grammar.Parse("name ++ memo")
	require.NoError(t, err)

	got, err := Check[ir.Untimed](transferAnalyzer(), e)
	require.NoError(t, err)
	assert.Equal(t, "bytes", got.Sort())
	assert.Equal(t, "(name ++ memo)", got.String())
}

func TestSymbolTable(t *testing.T) {
	root := NewSymbolTable(nil)
	root.Define(&Symbol{Name: "CALLER", Kind: SymbolEnvironment, Env: ir.Caller})
	child := NewSymbolTable(root)
	child.Define(&Symbol{Name: "to", Kind: SymbolArgument, Type: ir.Address})

	assert.NotNil(t, child.Lookup("CALLER"))
	assert.Nil(t, child.LookupLocal("CALLER"))
	assert.Equal(t, []string{"CALLER", "to"}, child.Names())
	assert.Equal(t, "int", child.Lookup("to").Sort())
	assert.Equal(t, "environment value", SymbolEnvironment.String())
}
