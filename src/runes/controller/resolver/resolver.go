package resolver

import (
	"context"

	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/documents"
	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver"
	runeserrors "github.com/kadabra-ai/kadabra-runes/src/runes/internal/errors"
	"github.com/kadabra-ai/kadabra-runes/src/runes/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "resolver"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller resolves a symbol name to a definition site, preferring an exact
// match inside the given file over a workspace-wide query.
type Controller interface {
	Resolve(ctx context.Context, name string, filePath string) (protocol.Location, error)
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Documents documents.Controller
	Gateway   langserver.Gateway
	Logger    *zap.SugaredLogger
}

type controller struct {
	documents documents.Controller
	gateway   langserver.Gateway
	logger    *zap.SugaredLogger
}

// New creates a new controller for symbol resolution.
func New(p Params) Controller {
	return &controller{
		documents: p.Documents,
		gateway:   p.Gateway,
		logger:    p.Logger.With("component", _nameKey),
	}
}

func (c *controller) Resolve(ctx context.Context, name string, filePath string) (protocol.Location, error) {
	if filePath != "" {
		loc, found, err := c.resolveInFile(ctx, name, filePath)
		if err != nil {
			return protocol.Location{}, err
		}
		if found {
			return loc, nil
		}
	}
	return c.resolveInWorkspace(ctx, name)
}

// resolveInFile scans the document symbols of a single file for the first
// symbol whose name matches exactly.
func (c *controller) resolveInFile(ctx context.Context, name string, filePath string) (protocol.Location, bool, error) {
	if err := c.documents.EnsureOpen(ctx, filePath); err != nil {
		return protocol.Location{}, false, err
	}
	doc, err := c.documents.Get(ctx, filePath)
	if err != nil {
		return protocol.Location{}, false, err
	}

	result, err := c.gateway.DocumentSymbols(ctx, &protocol.DocumentSymbolParams{
		TextDocument: doc.Identifier(),
	})
	if err != nil {
		return protocol.Location{}, false, err
	}

	if sym, ok := findDocumentSymbol(result.Symbols, name); ok {
		start := sym.SelectionRange.Start
		return protocol.Location{
			URI:   doc.URI,
			Range: protocol.Range{Start: start, End: start},
		}, true, nil
	}

	for _, sym := range result.Flat {
		if sym.Name == name {
			start := sym.Location.Range.Start
			return protocol.Location{
				URI:   sym.Location.URI,
				Range: protocol.Range{Start: start, End: start},
			}, true, nil
		}
	}
	return protocol.Location{}, false, nil
}

func findDocumentSymbol(symbols []protocol.DocumentSymbol, name string) (protocol.DocumentSymbol, bool) {
	for _, sym := range symbols {
		if sym.Name == name {
			return sym, true
		}
		if child, ok := findDocumentSymbol(sym.Children, name); ok {
			return child, true
		}
	}
	return protocol.DocumentSymbol{}, false
}

// resolveInWorkspace queries workspace symbols, then filters the fuzzy result
// set down to exact name matches.
func (c *controller) resolveInWorkspace(ctx context.Context, name string) (protocol.Location, error) {
	symbols, err := c.gateway.WorkspaceSymbols(ctx, name)
	if err != nil {
		return protocol.Location{}, err
	}

	var exact []protocol.SymbolInformation
	for _, sym := range symbols {
		if sym.Name == name {
			exact = append(exact, sym)
		}
	}

	switch len(exact) {
	case 0:
		return protocol.Location{}, &runeserrors.SymbolNotFoundError{Name: name}
	case 1:
	default:
		// Multiple definitions share this name across the workspace. Take the
		// first one the server returned.
		c.logger.Debugw("ambiguous symbol name, using first match",
			"symbol", name,
			"matches", len(exact),
			"chosen", mapper.PathFromURI(exact[0].Location.URI))
	}

	start := exact[0].Location.Range.Start
	return protocol.Location{
		URI:   exact[0].Location.URI,
		Range: protocol.Range{Start: start, End: start},
	}, nil
}
