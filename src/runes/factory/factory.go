// Package factory provides shared fixtures for tests.
package factory

import (
	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Document returns a tracked document for the given path.
func Document(path string) *entity.Document {
	return &entity.Document{
		URI:        uri.File(path),
		Path:       path,
		LanguageID: "go",
		Version:    1,
		Text:       "package main\n",
	}
}

// Range returns a range starting and ending at the given 0-indexed position.
func Range(line uint32, character uint32) protocol.Range {
	pos := protocol.Position{Line: line, Character: character}
	return protocol.Range{Start: pos, End: pos}
}

// Location returns a location at the given 0-indexed position of a file.
func Location(path string, line uint32, character uint32) protocol.Location {
	return protocol.Location{
		URI:   uri.File(path),
		Range: Range(line, character),
	}
}

// SymbolInformation returns a flat workspace symbol entry.
func SymbolInformation(name string, path string, line uint32) protocol.SymbolInformation {
	return protocol.SymbolInformation{
		Name:     name,
		Kind:     protocol.SymbolKindFunction,
		Location: Location(path, line, 0),
	}
}

// DocumentSymbol returns a hierarchical document symbol entry.
func DocumentSymbol(name string, line uint32, children ...protocol.DocumentSymbol) protocol.DocumentSymbol {
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           protocol.SymbolKindFunction,
		Range:          Range(line, 0),
		SelectionRange: Range(line, 0),
		Children:       children,
	}
}
