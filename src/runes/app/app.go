package app

import (
	"context"
	"time"

	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/documents"
	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/navigator"
	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/resolver"
	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"github.com/kadabra-ai/kadabra-runes/src/runes/gateway/langserver"
	"github.com/kadabra-ai/kadabra-runes/src/runes/handler"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/clock"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/core"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
)

// Module assembles the bridge application.
func Module(server entity.ServerConfig) fx.Option {
	return fx.Options(
		langserver.Module, // outbound to the language server
		handler.Module,    // inbound MCP tool calls
		documents.Module,
		resolver.Module,
		navigator.Module,
		fs.Module,
		clock.Module,
		core.ConfigModule,
		core.LoggerModule,
		fx.Supply(server),
		fx.Provide(func(lc fx.Lifecycle) tally.Scope {
			rs, closer := tally.NewRootScope(tally.ScopeOptions{
				Tags: map[string]string{
					"service": "kadabra-runes",
				},
			}, 1*time.Second)

			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return closer.Close()
				},
			})

			return rs
		}),
		// Force handler construction so the MCP server starts serving.
		fx.Invoke(func(handler.Handler) {}),
	)
}
