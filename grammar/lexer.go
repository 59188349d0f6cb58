package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ClaimLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},

		// Byte string literals
		{"String", `"(\\"|[^"])*"`, nil},

		// Integer literals (order matters: hex before decimal)
		{"Hex", `0x[0-9a-fA-F]+`, nil},
		{"Integer", `[0-9]+`, nil},

		// Keywords and Identifiers
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Operators (longest first)
		{"Operator", `=/=|==|=>|<=|>=|\+\+|[-+*/%^<>]`, nil},

		// Punctuation
		{"Punctuation", `[()\[\],]`, nil},
	},
})
