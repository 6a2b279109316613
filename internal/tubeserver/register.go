// Package tubeserver exposes the YouTube extraction engine as MCP tools.
package tubeserver

import (
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all video tools on the given MCP server:
// video_search, video_page, video_pages.
func RegisterTools(server *mcp.Server) {
	registerVideoSearch(server)
	registerVideoPage(server)
	registerVideoPages(server)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 3

// resolveForceJSON applies the per-call override over the server default.
func resolveForceJSON(override *bool) bool {
	if override != nil {
		return *override
	}
	return engine.Cfg.ForceJSON
}
