package grammar

import (
	stderrors "errors"

	"github.com/alecthomas/participle/v2"

	"claimc/internal/errors"
)

var (
	exprParser = participle.MustBuild[Expr](
		participle.Lexer(ClaimLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(3),
	)

	slotTypeParser = participle.MustBuild[SlotType](
		participle.Lexer(ClaimLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)
)

// Parse parses a single expression.
func Parse(src string) (*Expr, error) {
	return ParseNamed("", src)
}

// ParseNamed parses a single expression read from filename. Syntax errors
// are reported as CompilerErrors carrying the position of the offending
// token.
func ParseNamed(filename, src string) (*Expr, error) {
	expr, err := exprParser.ParseString(filename, src)
	if err != nil {
		return nil, syntaxError(err)
	}
	return expr, nil
}

// ParseSlotType parses a storage slot type such as uint256 or
// mapping(address => mapping(address => uint256)).
func ParseSlotType(src string) (*SlotType, error) {
	t, err := slotTypeParser.ParseString("", src)
	if err != nil {
		return nil, syntaxError(err)
	}
	return t, nil
}

func syntaxError(err error) error {
	var pe participle.Error
	if !stderrors.As(err, &pe) {
		return errors.SyntaxError(err.Error(), errors.Position{})
	}
	pos := pe.Position()
	return errors.SyntaxError(pe.Message(), errors.Position{Line: pos.Line, Column: pos.Column})
}
