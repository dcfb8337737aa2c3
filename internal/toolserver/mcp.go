package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes every registered tool over the Model Context Protocol.
func NewMCPServer(name, version string, registry *Registry) *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer(
		name,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	for _, tool := range registry.Tools() {
		mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), tool.Schema().Raw())
		srv.AddTool(mcpTool, toolHandler(registry, tool.Name()))
	}
	return srv
}

// ServeStdio runs srv on the given streams until ctx is cancelled or in closes.
func ServeStdio(ctx context.Context, srv *mcpserver.MCPServer, in io.Reader, out io.Writer) error {
	return mcpserver.NewStdioServer(srv).Listen(ctx, in, out)
}

func toolHandler(registry *Registry, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := registry.Invoke(ctx, name, request.GetArguments())
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", name, err))},
				IsError: true,
			}, nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s returned non-serializable payload: %v", name, err))},
				IsError: true,
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
		}, nil
	}
}
