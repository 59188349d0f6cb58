package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"claimc/internal/manifest"
)

var log = commonlog.GetLogger("claimc.lsp")

// document is the last known state of an open manifest. manifest is nil
// when the text could not be decoded.
type document struct {
	content  string
	manifest *manifest.Manifest
}

// ManifestHandler implements the LSP server handlers for claim manifests
type ManifestHandler struct {
	mu        sync.RWMutex
	documents map[string]*document
}

// NewManifestHandler creates and returns a new ManifestHandler instance
func NewManifestHandler() *ManifestHandler {
	return &ManifestHandler{
		documents: make(map[string]*document),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *ManifestHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities
func (h *ManifestHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("claimc LSP initialized")
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *ManifestHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("claimc LSP shutdown")
	return nil
}

func (h *ManifestHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen type checks a manifest opened in the editor
func (h *ManifestHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened file: %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange type checks the new text of a manifest. Only full
// document sync is advertised, so the last change holds the whole text.
func (h *ManifestHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed file: %s", params.TextDocument.URI)

	for i := len(params.ContentChanges) - 1; i >= 0; i-- {
		switch change := params.ContentChanges[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				return h.update(ctx, params.TextDocument.URI, change.Text)
			}
		}
	}
	return nil
}

// TextDocumentDidClose forgets a closed manifest
func (h *ManifestHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Infof("closed file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.documents, path)

	return nil
}

// TextDocumentCompletion offers the names an expression of the manifest
// may use.
func (h *ManifestHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, err := h.document(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        completions(doc.manifest),
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *ManifestHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, err := h.document(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	tokens := collectSemanticTokens(doc.content, doc.manifest)

	var data []uint32
	var prevLine, prevStart uint32

	// delta-line, delta-start encoding
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

// document returns the open document at rawURI, reading it from disk if the
// editor never sent its text.
func (h *ManifestHandler) document(ctx *glsp.Context, rawURI protocol.DocumentUri) (*document, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	doc, ok := h.documents[path]
	h.mu.RUnlock()
	if ok {
		return doc, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := h.update(ctx, rawURI, string(content)); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.documents[path], nil
}

// update stores the text of a manifest and publishes its diagnostics.
func (h *ManifestHandler) update(ctx *glsp.Context, rawURI protocol.DocumentUri, content string) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return err
	}

	diagnostics, m := Diagnose(path, content)

	h.mu.Lock()
	h.documents[path] = &document{content: content, manifest: m}
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, rawURI, diagnostics)
	return nil
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// /C:/... -> C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	log.Debugf("sending %d diagnostics for %s", len(diagnostics), uri)

	// an empty list clears earlier diagnostics
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrString(s string) *string {
	return &s
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
