package errors

// Error codes for the claimc toolchain.
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Manifest and expression errors
// E0400-E0499: Backend lowering errors
// E0900-E0999: Reserved for tooling errors

const (
	// E0100: Expression syntax errors
	ErrorSyntax = "E0100"

	// E0101: Name resolution errors (variables, slots, environment values)
	ErrorUnknownName = "E0101"

	// E0102: Sort errors in typed expressions
	ErrorTypeMismatch = "E0102"

	// E0103: Structurally invalid manifests
	ErrorInvalidManifest = "E0103"

	// E0104: pre/post misuse
	ErrorTiming = "E0104"

	// E0105: Builtin called with the wrong arguments
	ErrorInvalidCall = "E0105"
)

const (
	// E0400: Zero or several Pass constructors
	ErrorMultipleConstructors = "E0400"

	// E0401: Construct the backend cannot lower
	ErrorUnsupportedFeature = "E0401"

	// E0402: Storage type with no backend counterpart
	ErrorUnsupportedType = "E0402"

	// E0403: Storage type with no default value
	ErrorMissingDefault = "E0403"

	// E0404: One storage item written twice by one behaviour
	ErrorConflictingUpdates = "E0404"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrSyntax               = CompilerError{Level: Error, Code: ErrorSyntax}
	ErrUnknownName          = CompilerError{Level: Error, Code: ErrorUnknownName}
	ErrTypeMismatch         = CompilerError{Level: Error, Code: ErrorTypeMismatch}
	ErrInvalidManifest      = CompilerError{Level: Error, Code: ErrorInvalidManifest}
	ErrTiming               = CompilerError{Level: Error, Code: ErrorTiming}
	ErrInvalidCall          = CompilerError{Level: Error, Code: ErrorInvalidCall}
	ErrMultipleConstructors = CompilerError{Level: Error, Code: ErrorMultipleConstructors}
	ErrUnsupportedFeature   = CompilerError{Level: Error, Code: ErrorUnsupportedFeature}
	ErrUnsupportedType      = CompilerError{Level: Error, Code: ErrorUnsupportedType}
	ErrMissingDefault       = CompilerError{Level: Error, Code: ErrorMissingDefault}
	ErrConflictingUpdates   = CompilerError{Level: Error, Code: ErrorConflictingUpdates}
)
