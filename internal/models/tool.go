// internal/models/tool.go
package models

// ToolSummary is an entry of GET /mcp/tools.
type ToolSummary struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// CatalogEntry is an entry of GET /tools, rendered as a tool card.
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	Rating      string `json:"rating"`
}

// RunRequest is the POST /run body.
type RunRequest struct {
	ToolID string                 `json:"toolId"`
	Args   map[string]interface{} `json:"args"`
}
