package handler

import (
	"context"
	"testing"

	"github.com/kadabra-ai/kadabra-runes/src/runes/controller/navigator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noopHandler() *handler {
	return &handler{
		navigator:                 &stubNavigator{},
		logger:                    zap.NewNop().Sugar(),
		maxWorkspaceSymbolResults: _defaultMaxWorkspaceSymbolResults,
	}
}

func TestRegistryValidation(t *testing.T) {
	okTool := mcp.NewTool("goto_definition", mcp.WithDescription("test"))
	okHandler := noopHandler().targetHandler(nil)

	tests := []struct {
		name    string
		build   func() *registry
		wantErr string
	}{
		{
			name: "valid registry",
			build: func() *registry {
				r := &registry{}
				r.add(okTool, okHandler)
				return r
			},
		},
		{
			name: "duplicate tool name",
			build: func() *registry {
				r := &registry{}
				r.add(okTool, okHandler)
				r.add(okTool, okHandler)
				return r
			},
			wantErr: "registered twice",
		},
		{
			name: "missing handler",
			build: func() *registry {
				r := &registry{}
				r.add(okTool, nil)
				return r
			},
			wantErr: "without a handler",
		},
		{
			name: "missing name",
			build: func() *registry {
				r := &registry{}
				r.add(mcp.Tool{}, okHandler)
				return r
			},
			wantErr: "without a name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFullRegistryIsValid(t *testing.T) {
	r := noopHandler().newRegistry()
	require.NoError(t, r.validate())
	assert.Len(t, r.registrations, 9)
}

// stubNavigator records the limit passed to WorkspaceSymbols.
type stubNavigator struct {
	navigator.Controller

	gotMaxResults int
}

func (s *stubNavigator) WorkspaceSymbols(ctx context.Context, query string, maxResults int) (string, error) {
	s.gotMaxResults = maxResults
	return "ok", nil
}

func TestWorkspaceSymbolsMaxResults(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want int
	}{
		{
			name: "default when absent",
			args: map[string]interface{}{"query": "q"},
			want: _defaultMaxWorkspaceSymbolResults,
		},
		{
			name: "explicit limit",
			args: map[string]interface{}{"query": "q", "max_results": float64(5)},
			want: 5,
		},
		{
			name: "zero falls back to default",
			args: map[string]interface{}{"query": "q", "max_results": float64(0)},
			want: _defaultMaxWorkspaceSymbolResults,
		},
		{
			name: "negative falls back to default",
			args: map[string]interface{}{"query": "q", "max_results": float64(-3)},
			want: _defaultMaxWorkspaceSymbolResults,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			nav := &stubNavigator{}
			h := noopHandler()
			h.navigator = nav

			result, err := h.handleWorkspaceSymbols(context.Background(), toolRequest(tt.args))
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.want, nav.gotMaxResults)
		})
	}
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]interface{}
		wantSymbol string
		wantLine   uint32
		wantErr    bool
	}{
		{
			name:       "symbol only",
			args:       map[string]interface{}{"symbol": "add"},
			wantSymbol: "add",
		},
		{
			name:       "symbol scoped to file",
			args:       map[string]interface{}{"symbol": "add", "file_path": "/src/math.go"},
			wantSymbol: "add",
		},
		{
			name:     "explicit position",
			args:     map[string]interface{}{"file_path": "/src/main.go", "line": float64(10), "column": float64(3)},
			wantLine: 10,
		},
		{
			name:     "negative coordinates clamp to zero",
			args:     map[string]interface{}{"file_path": "/src/main.go", "line": float64(-1), "column": float64(3)},
			wantLine: 0,
		},
		{
			name:    "neither symbol nor position",
			args:    map[string]interface{}{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			target, err := parseTarget(toolRequest(tt.args))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantSymbol != "" {
				require.NotNil(t, target.Symbol)
				assert.Equal(t, tt.wantSymbol, target.Symbol.Name)
				return
			}
			require.NotNil(t, target.Position)
			assert.Equal(t, tt.wantLine, target.Position.Line)
		})
	}
}
