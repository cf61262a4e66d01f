package entity

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Document tracks the state of a file that has been opened with the language server.
type Document struct {
	URI        uri.URI
	Path       string
	LanguageID protocol.LanguageIdentifier
	Version    int32
	Text       string
}

// Identifier returns the LSP identifier for this document.
func (d *Document) Identifier() protocol.TextDocumentIdentifier {
	return protocol.TextDocumentIdentifier{URI: d.URI}
}
