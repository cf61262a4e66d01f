package langserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid"
	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	runeserrors "github.com/kadabra-ai/kadabra-runes/src/runes/internal/errors"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
	"github.com/kadabra-ai/kadabra-runes/src/runes/mapper"
	"github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey   = "langserver"
	_configKey = "lsp"

	_clientName    = "kadabra-runes"
	_clientVersion = "0.1.0"

	_defaultInitializeTimeout = 30 * time.Second
	_defaultRequestTimeout    = 10 * time.Second
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Gateway owns the language server child process and the JSON-RPC channel to
// it. All correlated requests are funneled through a single queue goroutine,
// callers never touch the connection directly.
type Gateway interface {
	// Capabilities returns the capabilities advertised during the initialize handshake.
	Capabilities() protocol.ServerCapabilities

	// Notifications used by the document tracker.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error

	// Navigation requests. Each is bounded by the configured request timeout.
	Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error)
	TypeDefinition(ctx context.Context, params *protocol.TypeDefinitionParams) ([]protocol.Location, error)
	Implementation(ctx context.Context, params *protocol.ImplementationParams) ([]protocol.Location, error)
	References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error)
	HoverText(ctx context.Context, params *protocol.HoverParams) (string, error)
	DocumentSymbols(ctx context.Context, params *protocol.DocumentSymbolParams) (mapper.DocumentSymbolResult, error)
	WorkspaceSymbols(ctx context.Context, query string) ([]protocol.SymbolInformation, error)
	PrepareCallHierarchy(ctx context.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error)
	IncomingCalls(ctx context.Context, item protocol.CallHierarchyItem) ([]protocol.CallHierarchyIncomingCall, error)
	OutgoingCalls(ctx context.Context, item protocol.CallHierarchyItem) ([]protocol.CallHierarchyOutgoingCall, error)
}

// Params are inbound parameters to initialize the gateway.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	FS        fs.RunesFS
	Server    entity.ServerConfig
}

type lspConfig struct {
	InitializeTimeoutSeconds int `yaml:"initializeTimeoutSeconds"`
	RequestTimeoutSeconds    int `yaml:"requestTimeoutSeconds"`
}

// caller is the subset of jsonrpc2.Conn used by the gateway.
type caller interface {
	Call(ctx context.Context, method string, params, result interface{}) (jsonrpc2.ID, error)
	Notify(ctx context.Context, method string, params interface{}) error
	Close() error
}

// request is one queued call or notification.
type request struct {
	ctx    context.Context
	method string
	params interface{}
	result interface{}
	notify bool
	done   chan error
}

type gateway struct {
	logger *zap.SugaredLogger
	stats  tally.Scope
	fs     fs.RunesFS
	server entity.ServerConfig

	initializeTimeout time.Duration
	requestTimeout    time.Duration

	conn         caller
	cmd          *exec.Cmd
	capabilities protocol.ServerCapabilities

	requests chan *request
	quit     chan struct{}
}

// New creates a gateway for the configured language server.
func New(p Params) (Gateway, error) {
	cfg := lspConfig{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	// The logger is read by the connection goroutine once the server is up, so
	// the session tag is fixed here and never reassigned.
	session := uuid.Must(uuid.NewV4())

	g := &gateway{
		logger:            p.Logger.With("component", _nameKey, "session", session.String()),
		stats:             p.Stats.SubScope(_nameKey),
		fs:                p.FS,
		server:            p.Server,
		initializeTimeout: _defaultInitializeTimeout,
		requestTimeout:    _defaultRequestTimeout,
		requests:          make(chan *request),
		quit:              make(chan struct{}),
	}
	if cfg.InitializeTimeoutSeconds > 0 {
		g.initializeTimeout = time.Duration(cfg.InitializeTimeoutSeconds) * time.Second
	}
	if cfg.RequestTimeoutSeconds > 0 {
		g.requestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: g.Start,
		OnStop:  g.Stop,
	})

	return g, nil
}

// stdioPipe adapts the child process pipes into the ReadWriteCloser expected
// by the jsonrpc2 stream.
type stdioPipe struct {
	in  io.WriteCloser
	out io.ReadCloser
}

func (s stdioPipe) Read(p []byte) (int, error)  { return s.out.Read(p) }
func (s stdioPipe) Write(p []byte) (int, error) { return s.in.Write(p) }
func (s stdioPipe) Close() error                { return multierr.Append(s.in.Close(), s.out.Close()) }

// Start spawns the language server, performs the initialize handshake and
// begins serving the request queue.
func (g *gateway) Start(ctx context.Context) error {
	root, err := g.fs.Canonicalize(g.server.WorkspaceRoot)
	if err != nil {
		return &runeserrors.ServerStartFailedError{Cmd: g.server.Command, Err: fmt.Errorf("resolving workspace root %q: %w", g.server.WorkspaceRoot, err)}
	}

	cmd := exec.Command(g.server.Command, g.server.Args...)
	cmd.Dir = root
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &runeserrors.ServerStartFailedError{Cmd: g.server.Command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &runeserrors.ServerStartFailedError{Cmd: g.server.Command, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &runeserrors.ServerStartFailedError{Cmd: g.server.Command, Err: err}
	}
	g.cmd = cmd

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(stdioPipe{in: stdin, out: stdout}))
	// The connection outlives the startup context.
	conn.Go(context.Background(), g.handleServerTraffic)
	g.conn = conn

	if err := g.initialize(root); err != nil {
		conn.Close()
		cmd.Process.Kill()
		// Reap the child so a failed handshake never leaves a zombie behind.
		cmd.Wait()
		return err
	}

	go g.run()
	g.logger.Infow("language server started", "command", g.server.Command, "workspaceRoot", root)
	return nil
}

// initialize performs the initialize/initialized handshake, bounded by the
// initialize timeout.
func (g *gateway) initialize(root string) error {
	params := initializeParams{
		ProcessID:    int32(os.Getpid()),
		ClientInfo:   &clientInfo{Name: _clientName, Version: _clientVersion},
		RootURI:      mapper.URIFromPath(root),
		Capabilities: newClientCapabilities(),
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{URI: string(mapper.URIFromPath(root)), Name: filepath.Base(root)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.initializeTimeout)
	defer cancel()

	var result protocol.InitializeResult
	if _, err := g.conn.Call(ctx, protocol.MethodInitialize, &params, &result); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return &runeserrors.TimeoutError{Method: protocol.MethodInitialize, Duration: g.initializeTimeout}
		}
		return &runeserrors.InitializationFailedError{Err: err}
	}
	g.capabilities = result.Capabilities

	if err := g.conn.Notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{}); err != nil {
		return &runeserrors.InitializationFailedError{Err: err}
	}
	return nil
}

// handleServerTraffic answers server-initiated calls and notifications.
// Diagnostics and progress are observed for logging only.
func (g *gateway) handleServerTraffic(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case protocol.MethodTextDocumentPublishDiagnostics,
		protocol.MethodProgress,
		protocol.MethodWindowLogMessage,
		protocol.MethodWindowShowMessage,
		protocol.MethodTelemetryEvent:
		g.logger.Debugw("server notification", "method", req.Method())
		return reply(ctx, nil, nil)
	case protocol.MethodWorkDoneProgressCreate:
		return reply(ctx, nil, nil)
	case protocol.MethodWorkspaceConfiguration:
		// Answer with one null per requested item.
		var params struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, make([]interface{}, len(params.Items)), nil)
	}
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

// run owns the request queue. Requests are issued one at a time so no caller
// ever locks or writes the connection.
func (g *gateway) run() {
	for {
		select {
		case <-g.quit:
			return
		case req := <-g.requests:
			req.done <- g.dispatch(req)
		}
	}
}

func (g *gateway) dispatch(req *request) error {
	if req.notify {
		return g.conn.Notify(req.ctx, req.method, req.params)
	}

	ctx, cancel := context.WithTimeout(req.ctx, g.requestTimeout)
	defer cancel()

	g.stats.Counter("requests").Inc(1)
	_, err := g.conn.Call(ctx, req.method, req.params, req.result)
	if err == nil {
		return nil
	}

	// A timed out request is abandoned. The server's reply is dropped by the
	// connection when it eventually arrives, no cancellation is sent upstream.
	if stderrors.Is(err, context.DeadlineExceeded) {
		g.stats.Counter("timeouts").Inc(1)
		return &runeserrors.TimeoutError{Method: req.method, Duration: g.requestTimeout}
	}

	g.stats.Counter("failures").Inc(1)
	var rpcErr *jsonrpc2.Error
	if stderrors.As(err, &rpcErr) {
		return &runeserrors.RequestFailedError{Method: req.method, Code: int32(rpcErr.Code), Message: rpcErr.Message}
	}
	return &runeserrors.RequestFailedError{Method: req.method, Message: err.Error()}
}

// submit queues a request and waits for the queue goroutine to complete it.
func (g *gateway) submit(req *request) error {
	req.done = make(chan error, 1)
	select {
	case g.requests <- req:
	case <-req.ctx.Done():
		return req.ctx.Err()
	case <-g.quit:
		return stderrors.New("gateway is shut down")
	}
	return <-req.done
}

func (g *gateway) call(ctx context.Context, method string, params, result interface{}) error {
	return g.submit(&request{ctx: ctx, method: method, params: params, result: result})
}

func (g *gateway) notify(ctx context.Context, method string, params interface{}) error {
	return g.submit(&request{ctx: ctx, method: method, params: params, notify: true})
}

// Stop performs the shutdown handshake and reaps the child process.
func (g *gateway) Stop(ctx context.Context) error {
	if g.conn == nil {
		return nil
	}
	close(g.quit)

	var errs error
	shutdownCtx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()
	if _, err := g.conn.Call(shutdownCtx, protocol.MethodShutdown, nil, nil); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("shutdown request: %w", err))
	}
	if err := g.conn.Notify(shutdownCtx, protocol.MethodExit, nil); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("exit notification: %w", err))
	}
	errs = multierr.Append(errs, g.conn.Close())

	if g.cmd != nil {
		waited := make(chan error, 1)
		go func() { waited <- g.cmd.Wait() }()
		select {
		case <-waited:
		case <-ctx.Done():
			errs = multierr.Append(errs, g.cmd.Process.Kill())
		}
	}

	g.logger.Infow("language server stopped")
	return errs
}

func (g *gateway) Capabilities() protocol.ServerCapabilities {
	return g.capabilities
}

func (g *gateway) requireCapability(provider interface{}, name string) error {
	if !providerEnabled(provider) {
		return &runeserrors.CapabilityNotSupportedError{Capability: name}
	}
	return nil
}

func (g *gateway) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	return g.notify(ctx, protocol.MethodTextDocumentDidOpen, params)
}

func (g *gateway) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	return g.notify(ctx, protocol.MethodTextDocumentDidChange, params)
}

func (g *gateway) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	return g.notify(ctx, protocol.MethodTextDocumentDidClose, params)
}

// callLocations issues a goto-style request and decodes its polymorphic response.
func (g *gateway) callLocations(ctx context.Context, method string, params interface{}) ([]protocol.Location, error) {
	var raw json.RawMessage
	if err := g.call(ctx, method, params, &raw); err != nil {
		return nil, err
	}
	return mapper.DecodeLocations(raw)
}

func (g *gateway) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	if err := g.requireCapability(g.capabilities.DefinitionProvider, "definitionProvider"); err != nil {
		return nil, err
	}
	return g.callLocations(ctx, protocol.MethodTextDocumentDefinition, params)
}

func (g *gateway) TypeDefinition(ctx context.Context, params *protocol.TypeDefinitionParams) ([]protocol.Location, error) {
	if err := g.requireCapability(g.capabilities.TypeDefinitionProvider, "typeDefinitionProvider"); err != nil {
		return nil, err
	}
	return g.callLocations(ctx, protocol.MethodTextDocumentTypeDefinition, params)
}

func (g *gateway) Implementation(ctx context.Context, params *protocol.ImplementationParams) ([]protocol.Location, error) {
	if err := g.requireCapability(g.capabilities.ImplementationProvider, "implementationProvider"); err != nil {
		return nil, err
	}
	return g.callLocations(ctx, protocol.MethodTextDocumentImplementation, params)
}

func (g *gateway) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	if err := g.requireCapability(g.capabilities.ReferencesProvider, "referencesProvider"); err != nil {
		return nil, err
	}
	var locs []protocol.Location
	if err := g.call(ctx, protocol.MethodTextDocumentReferences, params, &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

func (g *gateway) HoverText(ctx context.Context, params *protocol.HoverParams) (string, error) {
	if err := g.requireCapability(g.capabilities.HoverProvider, "hoverProvider"); err != nil {
		return "", err
	}
	var raw json.RawMessage
	if err := g.call(ctx, protocol.MethodTextDocumentHover, params, &raw); err != nil {
		return "", err
	}
	return mapper.DecodeHoverText(raw)
}

func (g *gateway) DocumentSymbols(ctx context.Context, params *protocol.DocumentSymbolParams) (mapper.DocumentSymbolResult, error) {
	if err := g.requireCapability(g.capabilities.DocumentSymbolProvider, "documentSymbolProvider"); err != nil {
		return mapper.DocumentSymbolResult{}, err
	}
	var raw json.RawMessage
	if err := g.call(ctx, protocol.MethodTextDocumentDocumentSymbol, params, &raw); err != nil {
		return mapper.DocumentSymbolResult{}, err
	}
	return mapper.DecodeDocumentSymbols(raw)
}

func (g *gateway) WorkspaceSymbols(ctx context.Context, query string) ([]protocol.SymbolInformation, error) {
	if err := g.requireCapability(g.capabilities.WorkspaceSymbolProvider, "workspaceSymbolProvider"); err != nil {
		return nil, err
	}
	var symbols []protocol.SymbolInformation
	if err := g.call(ctx, protocol.MethodWorkspaceSymbol, &protocol.WorkspaceSymbolParams{Query: query}, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

func (g *gateway) PrepareCallHierarchy(ctx context.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	if err := g.requireCapability(g.capabilities.CallHierarchyProvider, "callHierarchyProvider"); err != nil {
		return nil, err
	}
	var items []protocol.CallHierarchyItem
	if err := g.call(ctx, protocol.MethodTextDocumentPrepareCallHierarchy, params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (g *gateway) IncomingCalls(ctx context.Context, item protocol.CallHierarchyItem) ([]protocol.CallHierarchyIncomingCall, error) {
	var calls []protocol.CallHierarchyIncomingCall
	params := protocol.CallHierarchyIncomingCallsParams{Item: item}
	if err := g.call(ctx, protocol.MethodCallHierarchyIncomingCalls, &params, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (g *gateway) OutgoingCalls(ctx context.Context, item protocol.CallHierarchyItem) ([]protocol.CallHierarchyOutgoingCall, error) {
	var calls []protocol.CallHierarchyOutgoingCall
	params := protocol.CallHierarchyOutgoingCallsParams{Item: item}
	if err := g.call(ctx, protocol.MethodCallHierarchyOutgoingCalls, &params, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}
