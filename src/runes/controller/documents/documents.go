package documents

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/clock"
	runeserrors "github.com/kadabra-ai/kadabra-runes/src/runes/internal/errors"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
	"github.com/kadabra-ai/kadabra-runes/src/runes/mapper"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "documents"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Controller tracks which documents are open with the language server and
// owns the version counter for each of them.
type Controller interface {
	// Open reads a file and announces it to the language server. Opening an
	// already tracked document is a no-op.
	Open(ctx context.Context, path string) error
	// EnsureOpen opens the document only if it is not yet tracked.
	EnsureOpen(ctx context.Context, path string) error
	// Change replaces the full text of a tracked document and bumps its version.
	Change(ctx context.Context, path string, text string) error
	// Close removes a document from tracking. Closing an untracked document is a no-op.
	Close(ctx context.Context, path string) error
	// Get returns the tracked state of a document.
	Get(ctx context.Context, path string) (*entity.Document, error)
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Gateway   langserver.Gateway
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	Clock     clock.Clock
	FS        fs.RunesFS
}

type controller struct {
	gateway langserver.Gateway
	logger  *zap.SugaredLogger
	stats   tally.Scope
	clock   clock.Clock
	fs      fs.RunesFS

	documents   map[uri.URI]*entity.Document
	documentsMu sync.RWMutex

	watcher *fsnotify.Watcher
}

// New creates a new controller for document tracking.
func New(p Params) Controller {
	c := &controller{
		gateway:   p.Gateway,
		logger:    p.Logger.With("component", _nameKey),
		stats:     p.Stats.SubScope(_nameKey),
		clock:     p.Clock,
		fs:        p.FS,
		documents: make(map[uri.URI]*entity.Document),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: c.startWatcher,
		OnStop:  c.stopWatcher,
	})

	defer c.updateMetrics()
	return c
}

func (c *controller) Open(ctx context.Context, path string) error {
	canonical, err := c.fs.Canonicalize(path)
	if err != nil {
		return &runeserrors.DocumentNotFoundError{Path: path}
	}
	docURI := mapper.URIFromPath(canonical)

	c.documentsMu.Lock()
	if _, ok := c.documents[docURI]; ok {
		c.documentsMu.Unlock()
		return nil
	}

	data, err := c.fs.ReadFile(canonical)
	if err != nil {
		c.documentsMu.Unlock()
		return &runeserrors.DocumentNotFoundError{Path: path}
	}

	doc := &entity.Document{
		URI:        docURI,
		Path:       canonical,
		LanguageID: mapper.LanguageID(canonical),
		Version:    1,
		Text:       string(data),
	}
	c.documents[docURI] = doc
	c.documentsMu.Unlock()
	defer c.updateMetrics()

	if err := c.gateway.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        doc.URI,
			LanguageID: doc.LanguageID,
			Version:    doc.Version,
			Text:       doc.Text,
		},
	}); err != nil {
		c.documentsMu.Lock()
		delete(c.documents, docURI)
		c.documentsMu.Unlock()
		return err
	}

	c.watch(canonical)
	return nil
}

func (c *controller) EnsureOpen(ctx context.Context, path string) error {
	canonical, err := c.fs.Canonicalize(path)
	if err != nil {
		return &runeserrors.DocumentNotFoundError{Path: path}
	}

	c.documentsMu.RLock()
	_, ok := c.documents[mapper.URIFromPath(canonical)]
	c.documentsMu.RUnlock()
	if ok {
		return nil
	}
	return c.Open(ctx, canonical)
}

func (c *controller) Change(ctx context.Context, path string, text string) error {
	canonical, err := c.fs.Canonicalize(path)
	if err != nil {
		return &runeserrors.DocumentNotFoundError{Path: path}
	}
	docURI := mapper.URIFromPath(canonical)

	c.documentsMu.Lock()
	doc, ok := c.documents[docURI]
	if !ok {
		c.documentsMu.Unlock()
		return &runeserrors.DocumentNotFoundError{Path: path}
	}
	doc.Version++
	doc.Text = text
	version := doc.Version
	c.documentsMu.Unlock()

	return c.gateway.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: text},
		},
	})
}

func (c *controller) Close(ctx context.Context, path string) error {
	canonical, err := c.fs.Canonicalize(path)
	if err != nil {
		return &runeserrors.DocumentNotFoundError{Path: path}
	}
	docURI := mapper.URIFromPath(canonical)

	c.documentsMu.Lock()
	_, ok := c.documents[docURI]
	if !ok {
		c.documentsMu.Unlock()
		return nil
	}
	delete(c.documents, docURI)
	c.documentsMu.Unlock()
	defer c.updateMetrics()

	c.unwatch(canonical)
	return c.gateway.DidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	})
}

func (c *controller) Get(ctx context.Context, path string) (*entity.Document, error) {
	canonical, err := c.fs.Canonicalize(path)
	if err != nil {
		return nil, &runeserrors.DocumentNotFoundError{Path: path}
	}

	c.documentsMu.RLock()
	defer c.documentsMu.RUnlock()
	doc, ok := c.documents[mapper.URIFromPath(canonical)]
	if !ok {
		return nil, &runeserrors.DocumentNotFoundError{Path: path}
	}
	return doc, nil
}

func (c *controller) updateMetrics() {
	c.documentsMu.RLock()
	defer c.documentsMu.RUnlock()
	c.stats.Gauge("open").Update(float64(len(c.documents)))
}
