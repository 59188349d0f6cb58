package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"claimc/internal/ir"
	"claimc/internal/semantic"
)

func TestEval(t *testing.T) {
	ctx := semantic.Closed()

	tests := []struct {
		line string
		want string
	}{
		{"1 + 2 * 3", "7 : int\n"},
		{"-7 % 3", "2 : int\n"},
		{"intmax(8) - 1", "126 : int\n"},
		{"2 ^ 3 ^ 2", "512 : int\n"},
		{`"ab" ++ "c"`, "0x616263 : bytes\n"},
		{`slice("hello", 1, 3)`, "0x656c6c : bytes\n"},
		{"if 1 < 2 then false else true", "false : bool\n"},
		{"false => true", "true : bool\n"},
		{"CALLER == 0", "<symbolic> (CALLER == 0) : bool\n"},
		{"7 / 0", "<symbolic> (7 / 0) : int\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(ctx, tt.line))
		})
	}
}

func TestEvalErrors(t *testing.T) {
	ctx := semantic.Closed()

	assert.Contains(t, Eval(ctx, "1 +"), "E0100")
	assert.Contains(t, Eval(ctx, "totalSupply"), "E0101")
	assert.Contains(t, Eval(ctx, "1 and true"), "E0102")
}

func TestEvalWithStorage(t *testing.T) {
	ctx := semantic.NewContext(ir.ContractLayout{
		Contract: "Token",
		Slots:    []ir.Slot{{Name: "totalSupply", Type: ir.StorageValue{Type: ir.UInt(256)}}},
	}, nil)

	assert.Equal(t, "<symbolic> (post(totalSupply) > 0) : bool\n", Eval(ctx, "post(totalSupply) > 0"))
	assert.Contains(t, Eval(ctx, "totalSupply > 0"), "E0104")
}

func TestStart(t *testing.T) {
	in := strings.NewReader("1 + 1\n\nnot true\n")
	var out bytes.Buffer

	Start(in, &out, semantic.Closed())

	assert.Equal(t, ">> 2 : int\n>> >> false : bool\n>> \n", out.String())
}
