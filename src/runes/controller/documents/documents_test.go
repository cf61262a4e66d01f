package documents

import (
	"context"
	"testing"
	"time"

	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver/langservermock"
	runeserrors "github.com/kadabra-ai/kadabra-runes/src/runes/internal/errors"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs/fsmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
)

type stubClock struct{}

func (stubClock) Now() time.Time                       { return time.Time{} }
func (stubClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func newController(gw *langservermock.Gateway, files *fsmock.FS) *controller {
	return &controller{
		gateway:   gw,
		logger:    zap.NewNop().Sugar(),
		stats:     tally.NoopScope,
		clock:     stubClock{},
		fs:        files,
		documents: make(map[uri.URI]*entity.Document),
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	gw := langservermock.New()
	c := newController(gw, fsmock.New().Add("/src/main.go", "package main\n"))

	ctx := context.Background()
	require.NoError(t, c.Open(ctx, "/src/main.go"))
	require.NoError(t, c.Open(ctx, "/src/main.go"))

	opens := gw.Sent(protocol.MethodTextDocumentDidOpen)
	require.Len(t, opens, 1)
	params := opens[0].Params.(*protocol.DidOpenTextDocumentParams)
	assert.Equal(t, int32(1), params.TextDocument.Version)
	assert.Equal(t, protocol.LanguageIdentifier("go"), params.TextDocument.LanguageID)
	assert.Equal(t, "package main\n", params.TextDocument.Text)
}

func TestChangeRequiresOpenDocument(t *testing.T) {
	gw := langservermock.New()
	c := newController(gw, fsmock.New().Add("/src/main.go", "package main\n"))

	err := c.Change(context.Background(), "/src/main.go", "package changed\n")
	var notFound *runeserrors.DocumentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, gw.Sent(protocol.MethodTextDocumentDidChange))
}

func TestChangeIncrementsVersion(t *testing.T) {
	gw := langservermock.New()
	c := newController(gw, fsmock.New().Add("/src/main.go", "package main\n"))
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, "/src/main.go"))
	require.NoError(t, c.Change(ctx, "/src/main.go", "v2\n"))
	require.NoError(t, c.Change(ctx, "/src/main.go", "v3\n"))

	changes := gw.Sent(protocol.MethodTextDocumentDidChange)
	require.Len(t, changes, 2)
	first := changes[0].Params.(*protocol.DidChangeTextDocumentParams)
	second := changes[1].Params.(*protocol.DidChangeTextDocumentParams)
	assert.Equal(t, int32(2), first.TextDocument.Version)
	assert.Equal(t, int32(3), second.TextDocument.Version)
	require.Len(t, second.ContentChanges, 1)
	assert.Equal(t, "v3\n", second.ContentChanges[0].Text)

	doc, err := c.Get(ctx, "/src/main.go")
	require.NoError(t, err)
	assert.Equal(t, int32(3), doc.Version)
}

func TestCloseUntrackedIsNoop(t *testing.T) {
	gw := langservermock.New()
	c := newController(gw, fsmock.New())

	require.NoError(t, c.Close(context.Background(), "/src/other.go"))
	assert.Empty(t, gw.Sent(protocol.MethodTextDocumentDidClose))
}

func TestCloseStopsTracking(t *testing.T) {
	gw := langservermock.New()
	c := newController(gw, fsmock.New().Add("/src/main.go", "package main\n"))
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, "/src/main.go"))
	require.NoError(t, c.Close(ctx, "/src/main.go"))
	require.Len(t, gw.Sent(protocol.MethodTextDocumentDidClose), 1)

	_, err := c.Get(ctx, "/src/main.go")
	var notFound *runeserrors.DocumentNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestOpenRollsBackOnGatewayError(t *testing.T) {
	gw := langservermock.New()
	gw.DidOpenErr = assert.AnError
	c := newController(gw, fsmock.New().Add("/src/main.go", "package main\n"))
	ctx := context.Background()

	require.Error(t, c.Open(ctx, "/src/main.go"))

	// The document must not be tracked after a failed open.
	_, err := c.Get(ctx, "/src/main.go")
	var notFound *runeserrors.DocumentNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEnsureOpenOpensOnlyOnce(t *testing.T) {
	gw := langservermock.New()
	c := newController(gw, fsmock.New().Add("/src/main.go", "package main\n"))
	ctx := context.Background()

	require.NoError(t, c.EnsureOpen(ctx, "/src/main.go"))
	require.NoError(t, c.EnsureOpen(ctx, "/src/main.go"))
	assert.Len(t, gw.Sent(protocol.MethodTextDocumentDidOpen), 1)
}
