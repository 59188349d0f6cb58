// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"claimc/grammar"
	"claimc/internal/errors"
	"claimc/internal/ir"
	"claimc/internal/semantic"
)

const PROMPT = ">> "

// Start reads one expression per line from in and writes its value to out
// until in is exhausted. Names are resolved in ctx.
func Start(in io.Reader, out io.Writer, ctx *semantic.Context) {
	scanner := bufio.NewScanner(in)
	analyzer := semantic.NewAnalyzer(ctx)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Fprint(out, eval(analyzer, line))
	}
}

// Eval types line in ctx and evaluates it. Terms that cannot be reduced to
// a value, such as those reading storage or the environment, are printed
// back as <symbolic>.
func Eval(ctx *semantic.Context, line string) string {
	return eval(semantic.NewAnalyzer(ctx), line)
}

func eval(analyzer *semantic.Analyzer, line string) string {
	e, err := grammar.Parse(line)
	if err == nil {
		var t ir.TypedExp[ir.Timed]
		if t, err = semantic.Check[ir.Timed](analyzer, e); err == nil {
			v, ok := ir.EvalTyped(t)
			if !ok {
				return fmt.Sprintf("<symbolic> %s : %s\n", t, t.Sort())
			}
			return fmt.Sprintf("%s : %s\n", format(v), t.Sort())
		}
	}
	return errors.NewErrorReporter("<repl>", line).Report(err)
}

func format(v any) string {
	switch v := v.(type) {
	case *big.Int:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return "0x" + hex.EncodeToString(v)
	}
	return fmt.Sprint(v)
}
