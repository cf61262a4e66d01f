package handler

import (
	"context"
	"fmt"

	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/navigator"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey   = "mcp"
	_configKey = "tools"

	_serverName    = "kadabra-runes"
	_serverVersion = "0.1.0"

	_instructions = "Code navigation tools backed by a language server. " +
		"Tools accept either an explicit file_path/line/column position (1-indexed) " +
		"or a symbol name with an optional file_path to scope the lookup."
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Handler serves the MCP tool surface over stdio.
type Handler interface {
	Serve() error
}

// Params are inbound parameters to initialize the handler.
type Params struct {
	fx.In

	Navigator  navigator.Controller
	Config     config.Provider
	Lifecycle  fx.Lifecycle
	Logger     *zap.SugaredLogger
	Shutdowner fx.Shutdowner
}

type toolsConfig struct {
	MaxWorkspaceSymbolResults int `yaml:"maxWorkspaceSymbolResults"`
}

type handler struct {
	navigator  navigator.Controller
	logger     *zap.SugaredLogger
	shutdowner fx.Shutdowner
	srv        *server.MCPServer

	maxWorkspaceSymbolResults int
}

// New creates the MCP server, registers the tool registry and begins serving
// on startup. The app shuts down when the stdio transport closes.
func New(p Params) (Handler, error) {
	cfg := toolsConfig{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.MaxWorkspaceSymbolResults == 0 {
		cfg.MaxWorkspaceSymbolResults = _defaultMaxWorkspaceSymbolResults
	}

	h := &handler{
		navigator:                 p.Navigator,
		logger:                    p.Logger.With("component", _nameKey),
		shutdowner:                p.Shutdowner,
		maxWorkspaceSymbolResults: cfg.MaxWorkspaceSymbolResults,
	}

	h.srv = server.NewMCPServer(
		_serverName,
		_serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(_instructions),
	)
	if err := h.newRegistry().install(h.srv); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := h.Serve(); err != nil {
					h.logger.Errorw("MCP server stopped", "error", err)
				}
				h.shutdowner.Shutdown()
			}()
			return nil
		},
	})

	return h, nil
}

// Serve blocks until the stdio transport is closed by the client.
func (h *handler) Serve() error {
	h.logger.Infow("serving MCP over stdio", "server", _serverName)
	return server.ServeStdio(h.srv)
}
