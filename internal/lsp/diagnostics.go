package lsp

import (
	stderrors "errors"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/multierr"

	"claimc/internal/errors"
	"claimc/internal/manifest"
)

// Diagnose decodes and types the manifest text read from path. It returns
// one diagnostic per error and the decoded manifest, if decoding got that
// far. Files that are not manifests get neither.
func Diagnose(path, content string) ([]protocol.Diagnostic, *manifest.Manifest) {
	format, ok := manifest.FormatOf(path)
	if !ok {
		return nil, nil
	}

	m, err := manifest.Decode([]byte(content), format, path)
	if err == nil {
		_, _, err = m.Claims()
	}
	return ConvertErrors(content, err), m
}

// ConvertErrors turns every error folded into err into a diagnostic.
// Expression errors are placed on the expression they came from, anything
// else on the first line of the document.
func ConvertErrors(content string, err error) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic
	index := newLineIndex(content)

	for _, e := range multierr.Errors(err) {
		diagnostic := protocol.Diagnostic{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("claimc"),
			Message:  e.Error(),
		}

		var ce errors.CompilerError
		if stderrors.As(e, &ce) {
			diagnostic.Code = &protocol.IntegerOrString{Value: ce.Code}
		}

		var ee *manifest.ExpressionError
		if stderrors.As(e, &ee) {
			diagnostic.Message = ee.Where + ": " + ee.Err.Message
			if at, ok := find(content, ee.Source, 0); ok {
				start, length := at, len(ee.Source)
				if pos := ee.Err.Position; pos.Line == 1 {
					start += pos.Column - 1
					length = max(ee.Err.Length, 1)
				}
				diagnostic.Range = index.span(start, length)
			}
		}

		diagnostics = append(diagnostics, diagnostic)
	}

	return diagnostics
}

// lineIndex holds the offset of the start of every line.
type lineIndex []int

func newLineIndex(content string) lineIndex {
	index := lineIndex{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			index = append(index, i+1)
		}
	}
	return index
}

func (li lineIndex) position(offset int) protocol.Position {
	line := sort.Search(len(li), func(i int) bool { return li[i] > offset }) - 1
	return protocol.Position{Line: uint32(line), Character: uint32(offset - li[line])}
}

func (li lineIndex) span(offset, length int) protocol.Range {
	return protocol.Range{Start: li.position(offset), End: li.position(offset + length)}
}

// find returns the offset of the first occurrence of src at or after from
// that is not part of a longer name.
func find(content, src string, from int) (int, bool) {
	if src == "" {
		return 0, false
	}
	for from <= len(content) {
		i := strings.Index(content[from:], src)
		if i < 0 {
			return 0, false
		}
		at := from + i
		if !isIdentByte(content, at-1) && !isIdentByte(content, at+len(src)) {
			return at, true
		}
		from = at + 1
	}
	return 0, false
}

func isIdentByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
