package mapper

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func testReader(files map[string]string) FileReader {
	return func(name string) ([]byte, error) {
		if data, ok := files[name]; ok {
			return []byte(data), nil
		}
		return nil, os.ErrNotExist
	}
}

func loc(path string, line uint32, character uint32) protocol.Location {
	pos := protocol.Position{Line: line, Character: character}
	return protocol.Location{URI: uri.File(path), Range: protocol.Range{Start: pos, End: pos}}
}

func TestFormatLocations(t *testing.T) {
	readFile := testReader(map[string]string{
		"/src/a.go": "line one\nline two\nline three\nline four\nline five\n",
	})

	t.Run("no results", func(t *testing.T) {
		assert.Equal(t, "No results found.", FormatLocations(nil, readFile))
	})

	t.Run("marks the target line with context", func(t *testing.T) {
		got := FormatLocation(loc("/src/a.go", 2, 4), readFile)
		want := "/src/a.go:3:5\n" +
			"     1 | line one\n" +
			"     2 | line two\n" +
			">    3 | line three\n" +
			"     4 | line four\n" +
			"     5 | line five"
		assert.Equal(t, want, got)
	})

	t.Run("header only when file is unreadable", func(t *testing.T) {
		got := FormatLocation(loc("/missing.go", 0, 0), readFile)
		assert.Equal(t, "/missing.go:1:1", got)
	})

	t.Run("results are separated by rules", func(t *testing.T) {
		got := FormatLocations([]protocol.Location{
			loc("/missing.go", 0, 0),
			loc("/missing.go", 1, 0),
		}, readFile)
		assert.Equal(t, "/missing.go:1:1\n\n---\n\n/missing.go:2:1", got)
	})
}

func TestFormatDocumentSymbols(t *testing.T) {
	result := DocumentSymbolResult{
		Symbols: []protocol.DocumentSymbol{
			{
				Name:           "Server",
				Kind:           protocol.SymbolKindStruct,
				SelectionRange: protocol.Range{Start: protocol.Position{Line: 4}},
				Children: []protocol.DocumentSymbol{
					{
						Name:           "Start",
						Kind:           protocol.SymbolKindMethod,
						SelectionRange: protocol.Range{Start: protocol.Position{Line: 9}},
					},
				},
			},
		},
	}

	want := "[Struct] Server (line 5)\n  [Method] Start (line 10)"
	assert.Equal(t, want, FormatDocumentSymbols(result))
	assert.Equal(t, "No results found.", FormatDocumentSymbols(DocumentSymbolResult{}))
}

func TestFormatSymbolInformation(t *testing.T) {
	symbols := []protocol.SymbolInformation{
		{
			Name:          "Start",
			Kind:          protocol.SymbolKindFunction,
			ContainerName: "Server",
			Location:      loc("/src/a.go", 9, 0),
		},
		{
			Name:     "helper",
			Kind:     protocol.SymbolKindFunction,
			Location: loc("/src/b.go", 0, 0),
		},
	}

	want := "[Function] Start (in Server) - /src/a.go:10\n" +
		"[Function] helper - /src/b.go:1"
	assert.Equal(t, want, FormatSymbolInformation(symbols))
}

func TestFormatCallHierarchyItems(t *testing.T) {
	items := []protocol.CallHierarchyItem{
		{
			Name:           "main",
			Kind:           protocol.SymbolKindFunction,
			URI:            uri.File("/src/main.go"),
			SelectionRange: protocol.Range{Start: protocol.Position{Line: 2}},
		},
	}
	assert.Equal(t, "main (Function) - /src/main.go:3", FormatCallHierarchyItems(items))
	assert.Equal(t, "No results found.", FormatCallHierarchyItems(nil))
}
