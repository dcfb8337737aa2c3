// internal/handlers/mcpproxy/models.go
package mcpproxy

// RunInput is the POST /api/mcp/run body.
type RunInput struct {
	Query string `json:"query"`
}
