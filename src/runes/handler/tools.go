package handler

import (
	"context"
	"fmt"

	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const _defaultMaxWorkspaceSymbolResults = 50

// newRegistry builds the full tool registry served by the bridge.
func (h *handler) newRegistry() *registry {
	r := &registry{}

	r.add(targetTool("goto_definition",
		"Find the definition of the symbol at a position or by name."),
		h.targetHandler(h.navigator.GotoDefinition))
	r.add(targetTool("goto_type_definition",
		"Find the type definition of the symbol at a position or by name."),
		h.targetHandler(h.navigator.GotoTypeDefinition))
	r.add(targetTool("find_implementations",
		"Find implementations of the interface or abstract symbol at a position or by name."),
		h.targetHandler(h.navigator.FindImplementations))
	r.add(targetTool("hover",
		"Show hover documentation for the symbol at a position or by name."),
		h.targetHandler(h.navigator.Hover))
	r.add(targetTool("incoming_calls",
		"List functions that call the function at a position or by name."),
		h.targetHandler(h.navigator.IncomingCalls))
	r.add(targetTool("outgoing_calls",
		"List functions called by the function at a position or by name."),
		h.targetHandler(h.navigator.OutgoingCalls))

	r.add(targetTool("find_references",
		"Find all references to the symbol at a position or by name.",
		mcp.WithBoolean("include_declaration",
			mcp.Description("Include the declaration itself in the results. Defaults to false."))),
		h.handleFindReferences)

	r.add(mcp.NewTool("document_symbols",
		mcp.WithDescription("List all symbols in a file as an outline."),
		mcp.WithString("file_path", mcp.Required(),
			mcp.Description("Path of the file to outline.")),
	), h.handleDocumentSymbols)

	r.add(mcp.NewTool("workspace_symbols",
		mcp.WithDescription("Search for symbols across the whole workspace."),
		mcp.WithString("query", mcp.Required(),
			mcp.Description("Symbol name or fragment to search for.")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return. Defaults to 50.")),
	), h.handleWorkspaceSymbols)

	return r
}

// targetTool declares a tool addressing a symbol either by 1-indexed position
// or by name.
func targetTool(name string, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("symbol",
			mcp.Description("Symbol name to resolve. Matched exactly, scoped to file_path when given.")),
		mcp.WithString("file_path",
			mcp.Description("Path of the file containing the target.")),
		mcp.WithNumber("line",
			mcp.Description("1-indexed line number. Required together with column when symbol is not given.")),
		mcp.WithNumber("column",
			mcp.Description("1-indexed column number.")),
	}
	opts = append(opts, extra...)
	return mcp.NewTool(name, opts...)
}

// parseTarget extracts a symbol-or-position target from tool arguments.
func parseTarget(req mcp.CallToolRequest) (entity.Target, error) {
	if symbol := req.GetString("symbol", ""); symbol != "" {
		return entity.Target{Symbol: &entity.SymbolQuery{
			Name:     symbol,
			FilePath: req.GetString("file_path", ""),
		}}, nil
	}

	filePath := req.GetString("file_path", "")
	if filePath == "" {
		return entity.Target{}, fmt.Errorf("either symbol or file_path with line and column is required")
	}
	return entity.Target{Position: &entity.FilePosition{
		Path:   filePath,
		Line:   toCoordinate(req.GetInt("line", 0)),
		Column: toCoordinate(req.GetInt("column", 0)),
	}}, nil
}

// toCoordinate clamps negative arguments to zero so they are rejected by
// position validation rather than wrapping around.
func toCoordinate(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// targetHandler adapts a navigator operation into a tool handler. Operation
// errors become tool errors, never protocol failures.
func (h *handler) targetHandler(fn func(ctx context.Context, target entity.Target) (string, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := parseTarget(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := fn(ctx, target)
		if err != nil {
			h.logger.Debugw("tool request failed", "tool", req.Params.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func (h *handler) handleFindReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := parseTarget(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := h.navigator.FindReferences(ctx, target, req.GetBool("include_declaration", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (h *handler) handleDocumentSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := h.navigator.DocumentSymbols(ctx, filePath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (h *handler) handleWorkspaceSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Zero and negative arguments fall back to the default rather than
	// disabling truncation.
	maxResults := req.GetInt("max_results", h.maxWorkspaceSymbolResults)
	if maxResults <= 0 {
		maxResults = h.maxWorkspaceSymbolResults
	}
	text, err := h.navigator.WorkspaceSymbols(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}
