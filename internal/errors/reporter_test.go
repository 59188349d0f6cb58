package errors

import (
	stderrors "errors"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestErrorReporter(t *testing.T) {
	source := `behaviours:
  - name: transfer
    iff: [balanse[CALLER] >= value]`

	reporter := NewErrorReporter("token.yaml", source)

	err := UnknownName("balanse", Position{Line: 3, Column: 11}, []string{"balance", "supply"})
	formatted := reporter.FormatError(err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorUnknownName+"]")
	assert.Contains(t, formatted, "unknown name")
	assert.Contains(t, formatted, "balanse")

	// Should contain location
	assert.Contains(t, formatted, "token.yaml:3:11")

	// Should contain suggestions
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "balance")
}

func TestBackendErrorWithoutPosition(t *testing.T) {
	reporter := NewErrorReporter("token.yaml", "")

	formatted := reporter.FormatError(UnsupportedType("bytes32"))

	assert.Contains(t, formatted, "error["+ErrorUnsupportedType+"]")
	assert.Contains(t, formatted, "bytes32")
	assert.Contains(t, formatted, "--> token.yaml\n")
	assert.Contains(t, formatted, "note:")
	assert.NotContains(t, formatted, "token.yaml:0:0")
}

func TestUnknownNameError(t *testing.T) {
	pos := Position{Line: 1, Column: 5}

	// Test with similar names
	err := UnknownName("balace", pos, []string{"balance"})
	assert.Equal(t, ErrorUnknownName, err.Code)
	assert.Contains(t, err.Message, "balace")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'balance'")

	// Test without similar names
	err = UnknownName("xyz", pos, []string{})
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "make sure the name is")

	// Several close candidates
	err = UnknownName("owner", pos, []string{"owned", "owners", "total"})
	assert.Contains(t, err.Suggestions[0].Message, "did you mean one of: 'owned', 'owners'")
}

func TestTypeMismatchError(t *testing.T) {
	pos := Position{Line: 1, Column: 5}

	err := TypeMismatch("int", "bool", pos)
	assert.Equal(t, ErrorTypeMismatch, err.Code)
	assert.Contains(t, err.Message, "expected int, found bool")
	assert.Empty(t, err.Suggestions)

	err = TypeMismatch("bool", "int", pos)
	assert.Contains(t, err.Suggestions[0].Message, "comparison operator")
}

func TestMultipleConstructorsError(t *testing.T) {
	err := MultipleConstructors(0)
	assert.Equal(t, ErrorMultipleConstructors, err.Code)
	assert.Contains(t, err.Message, "found 0")
	assert.Contains(t, err.Suggestions[0].Message, "add a constructor")

	err = MultipleConstructors(2)
	assert.Contains(t, err.Message, "found 2")
	assert.Contains(t, err.Suggestions[0].Message, "keep a single constructor")
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := ConflictingUpdates("balances[CALLER]", "transfer")

	assert.True(t, stderrors.Is(err, ErrConflictingUpdates))
	assert.False(t, stderrors.Is(err, ErrMissingDefault))

	wrapped := pkgerrors.Wrap(err, "lowering transfer")
	assert.True(t, stderrors.Is(wrapped, ErrConflictingUpdates))

	var ce CompilerError
	assert.True(t, stderrors.As(wrapped, &ce))
	assert.Equal(t, ErrorConflictingUpdates, ce.Code)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "error[E0403]: no default value for type bytes", MissingDefault("bytes").Error())
	assert.Equal(t, "error[E0100]: unexpected token (2:7)", SyntaxError("unexpected token", Position{Line: 2, Column: 7}).Error())
}

func TestReportCombinedErrors(t *testing.T) {
	reporter := NewErrorReporter("token.yaml", "")

	err := multierr.Combine(
		InvalidManifest("contract", "is required"),
		stderrors.New("plain failure"),
	)
	out := reporter.Report(err)

	assert.Contains(t, out, "error["+ErrorInvalidManifest+"]: contract: is required")
	assert.Contains(t, out, "error: plain failure")
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `iff: [value <= balance]`
	reporter := NewErrorReporter("token.yaml", source)

	marker := reporter.createMarker(7, 5, Error) // "value" is 5 chars at column 7

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 6, spaces)
	carets := strings.Count(marker, "^")
	assert.Equal(t, 5, carets)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("hello", "hello"))
	assert.Equal(t, 1, levenshteinDistance("hello", "hallo"))
	assert.Equal(t, 1, levenshteinDistance("hello", "helo"))
	assert.Equal(t, 5, levenshteinDistance("hello", ""))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestSimilarNameFinding(t *testing.T) {
	candidates := []string{"balance", "amount", "total", "balanceOf", "xyz"}

	similar := findSimilarNames("balace", candidates)
	assert.Contains(t, similar, "balance")
	assert.NotContains(t, similar, "xyz")

	similar = findSimilarNames("verydifferent", candidates)
	assert.Empty(t, similar)
}

func TestErrorLevels(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("token.yaml", source)
	pos := Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	assert.Contains(t, reporter.FormatError(errorErr), "error:")
	assert.Contains(t, reporter.FormatError(warningErr), "warning:")
}
