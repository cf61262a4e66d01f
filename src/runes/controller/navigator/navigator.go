package navigator

import (
	"context"

	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/documents"
	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/resolver"
	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
	"github.com/kadabra-ai/kadabra-runes/src/runes/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "navigator"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller orchestrates navigation requests end to end: it resolves the
// target to a document position, issues the language server request, and
// renders the response for the MCP client.
type Controller interface {
	GotoDefinition(ctx context.Context, target entity.Target) (string, error)
	GotoTypeDefinition(ctx context.Context, target entity.Target) (string, error)
	FindImplementations(ctx context.Context, target entity.Target) (string, error)
	FindReferences(ctx context.Context, target entity.Target, includeDeclaration bool) (string, error)
	Hover(ctx context.Context, target entity.Target) (string, error)
	DocumentSymbols(ctx context.Context, filePath string) (string, error)
	WorkspaceSymbols(ctx context.Context, query string, maxResults int) (string, error)
	IncomingCalls(ctx context.Context, target entity.Target) (string, error)
	OutgoingCalls(ctx context.Context, target entity.Target) (string, error)
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Documents documents.Controller
	Resolver  resolver.Controller
	Gateway   langserver.Gateway
	Logger    *zap.SugaredLogger
	FS        fs.RunesFS
}

type controller struct {
	documents documents.Controller
	resolver  resolver.Controller
	gateway   langserver.Gateway
	logger    *zap.SugaredLogger
	fs        fs.RunesFS
}

// New creates a new controller for navigation requests.
func New(p Params) Controller {
	return &controller{
		documents: p.Documents,
		resolver:  p.Resolver,
		gateway:   p.Gateway,
		logger:    p.Logger.With("component", _nameKey),
		fs:        p.FS,
	}
}

// resolveTarget converts a target into document position params, opening the
// document with the language server if needed.
func (c *controller) resolveTarget(ctx context.Context, target entity.Target) (protocol.TextDocumentPositionParams, error) {
	if target.Position != nil {
		pos, err := mapper.ToProtocolPosition(target.Position.Line, target.Position.Column)
		if err != nil {
			return protocol.TextDocumentPositionParams{}, err
		}
		if err := c.documents.EnsureOpen(ctx, target.Position.Path); err != nil {
			return protocol.TextDocumentPositionParams{}, err
		}
		doc, err := c.documents.Get(ctx, target.Position.Path)
		if err != nil {
			return protocol.TextDocumentPositionParams{}, err
		}
		return protocol.TextDocumentPositionParams{
			TextDocument: doc.Identifier(),
			Position:     pos,
		}, nil
	}

	loc, err := c.resolver.Resolve(ctx, target.Symbol.Name, target.Symbol.FilePath)
	if err != nil {
		return protocol.TextDocumentPositionParams{}, err
	}
	if err := c.documents.EnsureOpen(ctx, mapper.PathFromURI(loc.URI)); err != nil {
		return protocol.TextDocumentPositionParams{}, err
	}
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: loc.URI},
		Position:     loc.Range.Start,
	}, nil
}

func (c *controller) GotoDefinition(ctx context.Context, target entity.Target) (string, error) {
	pos, err := c.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	locs, err := c.gateway.Definition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: pos})
	if err != nil {
		return "", err
	}
	return mapper.FormatLocations(locs, c.fs.ReadFile), nil
}

func (c *controller) GotoTypeDefinition(ctx context.Context, target entity.Target) (string, error) {
	pos, err := c.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	locs, err := c.gateway.TypeDefinition(ctx, &protocol.TypeDefinitionParams{TextDocumentPositionParams: pos})
	if err != nil {
		return "", err
	}
	return mapper.FormatLocations(locs, c.fs.ReadFile), nil
}

func (c *controller) FindImplementations(ctx context.Context, target entity.Target) (string, error) {
	pos, err := c.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	locs, err := c.gateway.Implementation(ctx, &protocol.ImplementationParams{TextDocumentPositionParams: pos})
	if err != nil {
		return "", err
	}
	return mapper.FormatLocations(locs, c.fs.ReadFile), nil
}

func (c *controller) FindReferences(ctx context.Context, target entity.Target, includeDeclaration bool) (string, error) {
	pos, err := c.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	locs, err := c.gateway.References(ctx, &protocol.ReferenceParams{
		TextDocumentPositionParams: pos,
		Context:                    protocol.ReferenceContext{IncludeDeclaration: includeDeclaration},
	})
	if err != nil {
		return "", err
	}
	return mapper.FormatLocations(locs, c.fs.ReadFile), nil
}

func (c *controller) Hover(ctx context.Context, target entity.Target) (string, error) {
	pos, err := c.resolveTarget(ctx, target)
	if err != nil {
		return "", err
	}
	text, err := c.gateway.HoverText(ctx, &protocol.HoverParams{TextDocumentPositionParams: pos})
	if err != nil {
		return "", err
	}
	if text == "" {
		return mapper.NoResults, nil
	}
	return text, nil
}

func (c *controller) DocumentSymbols(ctx context.Context, filePath string) (string, error) {
	if err := c.documents.EnsureOpen(ctx, filePath); err != nil {
		return "", err
	}
	doc, err := c.documents.Get(ctx, filePath)
	if err != nil {
		return "", err
	}
	result, err := c.gateway.DocumentSymbols(ctx, &protocol.DocumentSymbolParams{TextDocument: doc.Identifier()})
	if err != nil {
		return "", err
	}
	return mapper.FormatDocumentSymbols(result), nil
}

func (c *controller) WorkspaceSymbols(ctx context.Context, query string, maxResults int) (string, error) {
	symbols, err := c.gateway.WorkspaceSymbols(ctx, query)
	if err != nil {
		return "", err
	}
	if maxResults > 0 && len(symbols) > maxResults {
		symbols = symbols[:maxResults]
	}
	return mapper.FormatSymbolInformation(symbols), nil
}

// prepareCallHierarchy resolves the target and prepares a call hierarchy.
// Only the first prepared item is queried further.
func (c *controller) prepareCallHierarchy(ctx context.Context, target entity.Target) (*protocol.CallHierarchyItem, error) {
	pos, err := c.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	items, err := c.gateway.PrepareCallHierarchy(ctx, &protocol.CallHierarchyPrepareParams{TextDocumentPositionParams: pos})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (c *controller) IncomingCalls(ctx context.Context, target entity.Target) (string, error) {
	item, err := c.prepareCallHierarchy(ctx, target)
	if err != nil {
		return "", err
	}
	if item == nil {
		return mapper.NoResults, nil
	}
	calls, err := c.gateway.IncomingCalls(ctx, *item)
	if err != nil {
		return "", err
	}
	callers := make([]protocol.CallHierarchyItem, 0, len(calls))
	for _, call := range calls {
		callers = append(callers, call.From)
	}
	return mapper.FormatCallHierarchyItems(callers), nil
}

func (c *controller) OutgoingCalls(ctx context.Context, target entity.Target) (string, error) {
	item, err := c.prepareCallHierarchy(ctx, target)
	if err != nil {
		return "", err
	}
	if item == nil {
		return mapper.NoResults, nil
	}
	calls, err := c.gateway.OutgoingCalls(ctx, *item)
	if err != nil {
		return "", err
	}
	callees := make([]protocol.CallHierarchyItem, 0, len(calls))
	for _, call := range calls {
		callees = append(callees, call.To)
	}
	return mapper.FormatCallHierarchyItems(callees), nil
}
