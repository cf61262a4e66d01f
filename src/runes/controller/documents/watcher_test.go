package documents

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver/langservermock"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs/fsmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

// manualClock lets a test control when the debounce window expires.
type manualClock struct {
	tick chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{tick: make(chan time.Time)}
}

func (m *manualClock) Now() time.Time                       { return time.Time{} }
func (m *manualClock) After(time.Duration) <-chan time.Time { return m.tick }

func startWatchLoop(c *controller) (chan<- fsnotify.Event, chan<- error, func()) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	done := make(chan struct{})
	go func() {
		c.processWatchEvents(events, errs)
		close(done)
	}()
	return events, errs, func() {
		close(events)
		<-done
	}
}

func TestWatcherResyncsChangedDocument(t *testing.T) {
	gw := langservermock.New()
	files := fsmock.New().Add("/src/main.go", "package main\n")
	clk := newManualClock()
	c := newController(gw, files)
	c.clock = clk

	require.NoError(t, c.Open(context.Background(), "/src/main.go"))

	events, _, stop := startWatchLoop(c)
	defer stop()

	// A burst of write events within the debounce window coalesces into a
	// single versioned full-text change.
	files.Add("/src/main.go", "package main // formatted\n")
	events <- fsnotify.Event{Name: "/src/main.go", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "/src/main.go", Op: fsnotify.Write}
	clk.tick <- time.Time{}

	require.Eventually(t, func() bool {
		return len(gw.Sent(protocol.MethodTextDocumentDidChange)) == 1
	}, time.Second, 5*time.Millisecond)

	params := gw.Sent(protocol.MethodTextDocumentDidChange)[0].Params.(*protocol.DidChangeTextDocumentParams)
	assert.Equal(t, int32(2), params.TextDocument.Version)
	require.Len(t, params.ContentChanges, 1)
	assert.Equal(t, "package main // formatted\n", params.ContentChanges[0].Text)
}

func TestWatcherFailuresOnlyLog(t *testing.T) {
	gw := langservermock.New()
	files := fsmock.New().Add("/src/main.go", "package main\n")
	clk := newManualClock()
	c := newController(gw, files)
	c.clock = clk

	require.NoError(t, c.Open(context.Background(), "/src/main.go"))

	events, errs, stop := startWatchLoop(c)
	defer stop()

	// A watcher error and an unreadable file are logged and skipped.
	errs <- assert.AnError
	events <- fsnotify.Event{Name: "/src/missing.go", Op: fsnotify.Write}
	clk.tick <- time.Time{}

	// The loop keeps serving, a later change on a readable file still syncs.
	files.Add("/src/main.go", "package main // v2\n")
	events <- fsnotify.Event{Name: "/src/main.go", Op: fsnotify.Write}
	clk.tick <- time.Time{}

	require.Eventually(t, func() bool {
		return len(gw.Sent(protocol.MethodTextDocumentDidChange)) == 1
	}, time.Second, 5*time.Millisecond)

	params := gw.Sent(protocol.MethodTextDocumentDidChange)[0].Params.(*protocol.DidChangeTextDocumentParams)
	assert.Equal(t, int32(2), params.TextDocument.Version)
	assert.Equal(t, "package main // v2\n", params.ContentChanges[0].Text)
}

func TestWatcherIgnoresNonWriteEvents(t *testing.T) {
	gw := langservermock.New()
	files := fsmock.New().Add("/src/main.go", "package main\n")
	clk := newManualClock()
	c := newController(gw, files)
	c.clock = clk

	require.NoError(t, c.Open(context.Background(), "/src/main.go"))

	events, _, stop := startWatchLoop(c)

	events <- fsnotify.Event{Name: "/src/main.go", Op: fsnotify.Chmod}
	stop()

	assert.Empty(t, gw.Sent(protocol.MethodTextDocumentDidChange))
}
