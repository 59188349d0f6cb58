package lsp

import (
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"claimc/grammar"
	"claimc/internal/manifest"
	"claimc/internal/semantic"
)

// SemanticTokenTypes is the legend of token types, indexed by TokenType
var SemanticTokenTypes = []string{
	"keyword",
	"function",
	"property",
	"parameter",
	"variable",
	"number",
	"string",
	"operator",
}

// SemanticTokenModifiers is the legend of modifier bits
var SemanticTokenModifiers = []string{
	"readonly",
}

var keywords = map[string]bool{
	"if": true, "then": true, "else": true,
	"and": true, "or": true, "not": true,
	"true": true, "false": true,
}

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into SemanticTokenTypes
	TokenModifiers int // bitmask
}

// collectSemanticTokens highlights the expressions of m inside content,
// sorted by position.
func collectSemanticTokens(content string, m *manifest.Manifest) []SemanticToken {
	var tokens []SemanticToken
	if m == nil {
		return tokens
	}

	slots := make(map[string]bool)
	for _, s := range m.Storage {
		slots[s.Name] = true
	}
	env := semantic.Closed()
	index := newLineIndex(content)

	cursor := 0
	for _, src := range m.Expressions() {
		at, ok := find(content, src, cursor)
		if !ok {
			if at, ok = find(content, src, 0); !ok {
				continue
			}
		}
		cursor = at + len(src)

		tokens = append(tokens, expressionTokens(src, at, index, func(name string) (int, int) {
			switch {
			case slots[name]:
				return tokenType("property"), 0
			case env.Lookup(name) != nil:
				return tokenType("variable"), 1
			default:
				return tokenType("parameter"), 0
			}
		})...)
	}

	slices.SortFunc(tokens, func(a, b SemanticToken) int {
		if a.Line != b.Line {
			return int(a.Line) - int(b.Line)
		}
		return int(a.StartChar) - int(b.StartChar)
	})
	return slices.CompactFunc(tokens, func(a, b SemanticToken) bool {
		return a.Line == b.Line && a.StartChar == b.StartChar
	})
}

// expressionTokens lexes src, which starts at offset base of the document.
// Names are classified by name unless they are keywords or called.
func expressionTokens(src string, base int, index lineIndex, name func(string) (int, int)) []SemanticToken {
	lex, err := grammar.ClaimLexer.Lex("", strings.NewReader(src))
	if err != nil {
		return nil
	}
	symbols := lexer.SymbolsByRune(grammar.ClaimLexer)

	var toks []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			break
		}
		if symbols[tok.Type] != "Whitespace" {
			toks = append(toks, tok)
		}
	}

	var tokens []SemanticToken
	for i, tok := range toks {
		typ, mods := -1, 0
		switch symbols[tok.Type] {
		case "Ident":
			switch {
			case keywords[tok.Value]:
				typ = tokenType("keyword")
			case i+1 < len(toks) && toks[i+1].Value == "(":
				typ = tokenType("function")
			default:
				typ, mods = name(tok.Value)
			}
		case "Integer", "Hex":
			typ = tokenType("number")
		case "String":
			typ = tokenType("string")
		case "Operator":
			typ = tokenType("operator")
		}
		if typ < 0 {
			continue
		}

		pos := index.position(base + tok.Pos.Offset)
		tokens = append(tokens, SemanticToken{
			Line:           pos.Line,
			StartChar:      pos.Character,
			Length:         uint32(len(tok.Value)),
			TokenType:      typ,
			TokenModifiers: mods,
		})
	}
	return tokens
}

func tokenType(name string) int {
	return slices.Index(SemanticTokenTypes, name)
}

// completions lists the storage slots of m, the environment values and the
// builtin calls.
func completions(m *manifest.Manifest) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	if m != nil {
		for _, s := range m.Storage {
			items = append(items, protocol.CompletionItem{
				Label:  s.Name,
				Kind:   ptrCompletionKind(protocol.CompletionItemKindField),
				Detail: ptrString(s.Type),
			})
		}
	}
	for _, name := range semantic.Closed().Names() {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   ptrCompletionKind(protocol.CompletionItemKindConstant),
			Detail: ptrString("environment value"),
		})
	}
	for _, name := range semantic.BuiltinCalls() {
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  ptrCompletionKind(protocol.CompletionItemKindFunction),
		})
	}
	return items
}

func ptrCompletionKind(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}
