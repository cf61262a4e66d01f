// Package langservermock provides a scriptable langserver.Gateway for tests.
package langservermock

import (
	"context"
	"sync"

	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver"
	"github.com/kadabra-ai/kadabra-runes/src/runes/mapper"
	"go.lsp.dev/protocol"
)

// Notification records one document lifecycle notification sent to the gateway.
type Notification struct {
	Method string
	Params interface{}
}

// Gateway is a scriptable implementation of langserver.Gateway. Response
// fields left nil yield empty results.
type Gateway struct {
	mu            sync.Mutex
	Notifications []Notification

	Caps protocol.ServerCapabilities

	DidOpenErr   error
	DidChangeErr error

	DefinitionResult     []protocol.Location
	DefinitionErr        error
	TypeDefinitionResult []protocol.Location
	ImplementationResult []protocol.Location
	ReferencesResult     []protocol.Location
	ReferencesParams     *protocol.ReferenceParams
	HoverResult          string
	HoverErr             error
	DocumentSymbolResult mapper.DocumentSymbolResult
	DocumentSymbolErr    error
	WorkspaceResult      []protocol.SymbolInformation
	WorkspaceErr         error
	PrepareResult        []protocol.CallHierarchyItem
	IncomingResult       []protocol.CallHierarchyIncomingCall
	OutgoingResult       []protocol.CallHierarchyOutgoingCall
}

var _ langserver.Gateway = (*Gateway)(nil)

// New creates an empty scriptable gateway.
func New() *Gateway {
	return &Gateway{}
}

// Sent returns the recorded notifications for a method.
func (g *Gateway) Sent(method string) []Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Notification
	for _, n := range g.Notifications {
		if n.Method == method {
			out = append(out, n)
		}
	}
	return out
}

func (g *Gateway) record(method string, params interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Notifications = append(g.Notifications, Notification{Method: method, Params: params})
}

func (g *Gateway) Capabilities() protocol.ServerCapabilities { return g.Caps }

func (g *Gateway) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	if g.DidOpenErr != nil {
		return g.DidOpenErr
	}
	g.record(protocol.MethodTextDocumentDidOpen, params)
	return nil
}

func (g *Gateway) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if g.DidChangeErr != nil {
		return g.DidChangeErr
	}
	g.record(protocol.MethodTextDocumentDidChange, params)
	return nil
}

func (g *Gateway) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	g.record(protocol.MethodTextDocumentDidClose, params)
	return nil
}

func (g *Gateway) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	return g.DefinitionResult, g.DefinitionErr
}

func (g *Gateway) TypeDefinition(ctx context.Context, params *protocol.TypeDefinitionParams) ([]protocol.Location, error) {
	return g.TypeDefinitionResult, nil
}

func (g *Gateway) Implementation(ctx context.Context, params *protocol.ImplementationParams) ([]protocol.Location, error) {
	return g.ImplementationResult, nil
}

func (g *Gateway) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	g.mu.Lock()
	g.ReferencesParams = params
	g.mu.Unlock()
	return g.ReferencesResult, nil
}

func (g *Gateway) HoverText(ctx context.Context, params *protocol.HoverParams) (string, error) {
	return g.HoverResult, g.HoverErr
}

func (g *Gateway) DocumentSymbols(ctx context.Context, params *protocol.DocumentSymbolParams) (mapper.DocumentSymbolResult, error) {
	return g.DocumentSymbolResult, g.DocumentSymbolErr
}

func (g *Gateway) WorkspaceSymbols(ctx context.Context, query string) ([]protocol.SymbolInformation, error) {
	return g.WorkspaceResult, g.WorkspaceErr
}

func (g *Gateway) PrepareCallHierarchy(ctx context.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	return g.PrepareResult, nil
}

func (g *Gateway) IncomingCalls(ctx context.Context, item protocol.CallHierarchyItem) ([]protocol.CallHierarchyIncomingCall, error) {
	return g.IncomingResult, nil
}

func (g *Gateway) OutgoingCalls(ctx context.Context, item protocol.CallHierarchyItem) ([]protocol.CallHierarchyOutgoingCall, error) {
	return g.OutgoingResult, nil
}
