package langserver

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// initializeParams is the initialize request payload. Declared locally so the
// advertised capability surface is exactly what the bridge handles, with all
// dynamic registration left off.
type initializeParams struct {
	ProcessID        int32                      `json:"processId"`
	ClientInfo       *clientInfo                `json:"clientInfo,omitempty"`
	RootURI          uri.URI                    `json:"rootUri"`
	Capabilities     clientCapabilities         `json:"capabilities"`
	WorkspaceFolders []protocol.WorkspaceFolder `json:"workspaceFolders,omitempty"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type clientCapabilities struct {
	TextDocument textDocumentCapabilities `json:"textDocument"`
	Workspace    workspaceCapabilities    `json:"workspace"`
}

type textDocumentCapabilities struct {
	Synchronization  dynamicRegistration     `json:"synchronization"`
	Hover            hoverCapabilities       `json:"hover"`
	Definition       linkSupportCapabilities `json:"definition"`
	TypeDefinition   linkSupportCapabilities `json:"typeDefinition"`
	Implementation   linkSupportCapabilities `json:"implementation"`
	References       dynamicRegistration     `json:"references"`
	DocumentSymbol   documentSymbolCaps      `json:"documentSymbol"`
	CallHierarchy    dynamicRegistration     `json:"callHierarchy"`
	PublishDiagnostics struct {
		RelatedInformation bool `json:"relatedInformation"`
	} `json:"publishDiagnostics"`
}

type workspaceCapabilities struct {
	Symbol dynamicRegistration `json:"symbol"`
}

type dynamicRegistration struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type hoverCapabilities struct {
	DynamicRegistration bool                  `json:"dynamicRegistration"`
	ContentFormat       []protocol.MarkupKind `json:"contentFormat"`
}

type linkSupportCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
	LinkSupport         bool `json:"linkSupport"`
}

type documentSymbolCaps struct {
	DynamicRegistration               bool `json:"dynamicRegistration"`
	HierarchicalDocumentSymbolSupport bool `json:"hierarchicalDocumentSymbolSupport"`
}

func newClientCapabilities() clientCapabilities {
	return clientCapabilities{
		TextDocument: textDocumentCapabilities{
			Hover: hoverCapabilities{
				ContentFormat: []protocol.MarkupKind{protocol.Markdown, protocol.PlainText},
			},
			Definition:     linkSupportCapabilities{LinkSupport: false},
			TypeDefinition: linkSupportCapabilities{LinkSupport: false},
			Implementation: linkSupportCapabilities{LinkSupport: false},
			DocumentSymbol: documentSymbolCaps{HierarchicalDocumentSymbolSupport: true},
		},
	}
}

// providerEnabled reports whether a ServerCapabilities provider field is
// advertised. Providers are encoded as absent, a boolean, or an options object.
func providerEnabled(provider interface{}) bool {
	switch v := provider.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}
