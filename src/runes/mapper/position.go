package mapper

import (
	runeserrors "github.com/kadabra-ai/kadabra-runes/src/runes/internal/errors"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// ToProtocolPosition converts a 1-indexed line and column into a 0-indexed LSP position.
func ToProtocolPosition(line uint32, column uint32) (protocol.Position, error) {
	if line == 0 || column == 0 {
		return protocol.Position{}, &runeserrors.InvalidPositionError{Line: line, Column: column}
	}
	return protocol.Position{Line: line - 1, Character: column - 1}, nil
}

// FromProtocolPosition converts a 0-indexed LSP position into a 1-indexed line and column.
func FromProtocolPosition(pos protocol.Position) (line uint32, column uint32) {
	return pos.Line + 1, pos.Character + 1
}

// URIFromPath converts an absolute file path into a file URI.
func URIFromPath(path string) uri.URI {
	return uri.File(path)
}

// PathFromURI converts a file URI back into a file path.
func PathFromURI(u uri.URI) string {
	return u.Filename()
}
