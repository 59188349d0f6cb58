// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"claimc/internal/lsp"
)

const lsName = "claimc"

var (
	version = "0.1.0"
	handler protocol.Handler
)

func main() {
	// 1 = debug level, nil = stderr
	commonlog.Configure(1, nil)
	log := commonlog.GetLogger("claimc.lsp")

	manifestHandler := lsp.NewManifestHandler()

	handler = protocol.Handler{
		Initialize:                     manifestHandler.Initialize,
		Initialized:                    manifestHandler.Initialized,
		Shutdown:                       manifestHandler.Shutdown,
		SetTrace:                       manifestHandler.SetTrace,
		TextDocumentDidOpen:            manifestHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           manifestHandler.TextDocumentDidClose,
		TextDocumentDidChange:          manifestHandler.TextDocumentDidChange,
		TextDocumentCompletion:         manifestHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: manifestHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Infof("starting claimc LSP server %s", version)

	if err := s.RunStdio(); err != nil {
		log.Errorf("claimc LSP server failed: %s", err)
		os.Exit(1)
	}
}
