package handler

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registration pairs a tool definition with its handler.
type registration struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// registry is the explicit list of tools exposed by the bridge. It is
// validated before anything is added to the MCP server so a bad registration
// fails startup instead of surfacing at call time.
type registry struct {
	registrations []registration
}

func (r *registry) add(tool mcp.Tool, handler server.ToolHandlerFunc) {
	r.registrations = append(r.registrations, registration{tool: tool, handler: handler})
}

func (r *registry) validate() error {
	seen := make(map[string]struct{}, len(r.registrations))
	for _, reg := range r.registrations {
		if reg.tool.Name == "" {
			return fmt.Errorf("tool registered without a name")
		}
		if reg.handler == nil {
			return fmt.Errorf("tool %q registered without a handler", reg.tool.Name)
		}
		if _, ok := seen[reg.tool.Name]; ok {
			return fmt.Errorf("tool %q registered twice", reg.tool.Name)
		}
		seen[reg.tool.Name] = struct{}{}
	}
	return nil
}

func (r *registry) install(srv *server.MCPServer) error {
	if err := r.validate(); err != nil {
		return err
	}
	for _, reg := range r.registrations {
		srv.AddTool(reg.tool, reg.handler)
	}
	return nil
}
