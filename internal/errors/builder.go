package errors

import (
	"fmt"
	"strings"
)

// ErrorBuilder provides a fluent interface for creating errors with suggestions
type ErrorBuilder struct {
	err CompilerError
}

// NewError creates a new error builder
func NewError(code, message string, pos Position) *ErrorBuilder {
	return &ErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span
func (b *ErrorBuilder) WithLength(length int) *ErrorBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *ErrorBuilder) WithSuggestion(message string) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *ErrorBuilder) WithReplacement(message, replacement string) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{
		Message:     message,
		Replacement: replacement,
	})
	return b
}

// WithNote adds a note to the error
func (b *ErrorBuilder) WithNote(note string) *ErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *ErrorBuilder) WithHelp(help string) *ErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *ErrorBuilder) Build() CompilerError {
	return b.err
}

// Backend errors. These carry no source position.

// MultipleConstructors reports that a claim set does not have exactly
// one Pass constructor.
func MultipleConstructors(count int) CompilerError {
	b := NewError(ErrorMultipleConstructors,
		fmt.Sprintf("expected exactly one constructor, found %d", count), Position{})
	if count == 0 {
		b = b.WithSuggestion("add a constructor claim with mode Pass")
	} else {
		b = b.WithSuggestion("keep a single constructor claim with mode Pass")
	}
	return b.WithNote("only the constructor's initial storage seeds the BASE state").Build()
}

// UnsupportedFeature reports a construct the Coq backend cannot lower.
func UnsupportedFeature(feature, where string) CompilerError {
	msg := fmt.Sprintf("unsupported feature: %s", feature)
	if where != "" {
		msg += fmt.Sprintf(" in %s", where)
	}
	return NewError(ErrorUnsupportedFeature, msg, Position{}).
		WithHelp("the Coq backend handles single-contract claim sets over integer, boolean and string storage").
		Build()
}

// UnsupportedType reports a storage type with no Coq translation.
func UnsupportedType(typ string) CompilerError {
	return NewError(ErrorUnsupportedType, fmt.Sprintf("unsupported storage type %s", typ), Position{}).
		WithNote("supported types: uint<n>, int<n>, address, bool, string and mappings over them").
		Build()
}

// MissingDefault reports a storage type with no default value for BASE.
func MissingDefault(typ string) CompilerError {
	return NewError(ErrorMissingDefault, fmt.Sprintf("no default value for type %s", typ), Position{}).
		WithNote("every slot of the BASE state needs a default value").
		Build()
}

// ConflictingUpdates reports two writes to the same storage item within one
// behaviour.
func ConflictingUpdates(item, behaviour string) CompilerError {
	return NewError(ErrorConflictingUpdates,
		fmt.Sprintf("storage item '%s' is updated more than once in behaviour '%s'", item, behaviour), Position{}).
		WithSuggestion("merge the updates into a single rewrite").
		Build()
}

// Front end errors.

// SyntaxError reports an expression that does not parse.
func SyntaxError(message string, pos Position) CompilerError {
	return NewError(ErrorSyntax, message, pos).Build()
}

// UnknownName creates an error for unresolved names with suggestions
func UnknownName(name string, pos Position, candidates []string) CompilerError {
	builder := NewError(ErrorUnknownName, fmt.Sprintf("unknown name '%s'", name), pos).
		WithLength(len(name))

	similar := findSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
		builder = builder.WithSuggestion("make sure the name is an interface argument, a storage slot or an environment value")
	case 1:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}

	return builder.Build()
}

// TypeMismatch creates an error for sort mismatches
func TypeMismatch(expected, actual string, pos Position) CompilerError {
	builder := NewError(ErrorTypeMismatch, fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos)

	if expected == "bool" && actual == "int" {
		builder = builder.WithSuggestion("use a comparison operator to create a boolean value")
	}

	return builder.Build()
}

const timingHelp = "pre() and post() are only allowed in postconditions and return values, where every storage reference needs one"

// TimingError reports a time marker used where its timing does not fit.
func TimingError(message string, pos Position) CompilerError {
	return NewError(ErrorTiming, message, pos).
		WithHelp(timingHelp).
		Build()
}

// UnmarkedStorageRead reports a storage read without pre() or post() in a
// timed expression.
func UnmarkedStorageRead(name string, pos Position) CompilerError {
	return NewError(ErrorTiming, fmt.Sprintf("storage slot '%s' must be read through pre() or post()", name), pos).
		WithLength(len(name)).
		WithReplacement("read the state before the call", "pre("+name+")").
		WithHelp(timingHelp).
		Build()
}

// InvalidCall reports a builtin called with the wrong number or kind of
// arguments.
func InvalidCall(name, message string, pos Position) CompilerError {
	return NewError(ErrorInvalidCall, fmt.Sprintf("%s: %s", name, message), pos).
		WithLength(len(name)).
		Build()
}

// InvalidManifest reports a manifest field that fails validation.
func InvalidManifest(field, message string) CompilerError {
	msg := message
	if field != "" {
		msg = fmt.Sprintf("%s: %s", field, message)
	}
	return NewError(ErrorInvalidManifest, msg, Position{}).Build()
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string

	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}

	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
