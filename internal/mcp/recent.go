package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/models"
)

// MemoryRecentTool handles the memory_recent MCP tool.
type MemoryRecentTool struct {
	db *sql.DB
}

// NewMemoryRecentTool creates a MemoryRecentTool over the shared database.
func NewMemoryRecentTool(db *sql.DB) *MemoryRecentTool {
	return &MemoryRecentTool{db: db}
}

// Definition returns the MCP tool definition for memory_recent.
func (t *MemoryRecentTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_recent",
		mcp.WithDescription(
			"Read the most recent events from a memory tier in chronological "+
				"order. Hot holds the current working set, warm recent sessions, "+
				"cold long-term summaries.",
		),
		mcp.WithString("tier",
			mcp.Description("Tier to read: hot (default), warm, or cold"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries to return (default 20)"),
		),
	)
}

// Handle processes the memory_recent tool call.
func (t *MemoryRecentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tier := req.GetString("tier", string(models.TierHot))
	limit := int(req.GetFloat("limit", 20))

	entries, err := actions.RecentMemory(t.db, tier, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading tier: %v", err)), nil
	}

	type resp struct {
		Tier    string               `json:"tier"`
		Entries []models.MemoryEntry `json:"entries"`
	}
	return resultJSON(resp{Tier: tier, Entries: entries}), nil
}
