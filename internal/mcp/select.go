package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/intent"
)

// SelectTeamTool handles the select_team MCP tool.
type SelectTeamTool struct {
	db         *sql.DB
	classifier intent.Classifier
}

// NewSelectTeamTool creates a SelectTeamTool over the shared database.
// The classifier is held for the server's lifetime so cached wrappers
// pay for external classification once per distinct prompt.
func NewSelectTeamTool(db *sql.DB, classifier intent.Classifier) *SelectTeamTool {
	return &SelectTeamTool{db: db, classifier: classifier}
}

// Definition returns the MCP tool definition for select_team.
func (t *SelectTeamTool) Definition() mcp.Tool {
	return mcp.NewTool("select_team",
		mcp.WithDescription(
			"Select the agent team for a prompt using learned success patterns, "+
				"rated memory, and similar past tasks. Honors inline overrides like "+
				"'only the writer' or 'without the researcher'.",
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The user prompt to staff a team for"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session id linking this turn to later outcomes and feedback"),
		),
		mcp.WithString("project",
			mcp.Description("Project the prompt belongs to"),
		),
		mcp.WithString("complexity",
			mcp.Description("Task complexity: low, medium, or high"),
		),
		mcp.WithString("tools",
			mcp.Description("Comma-separated tools expected to be used"),
		),
	)
}

// Handle processes the select_team tool call. Selection never fails:
// degraded inputs fall back to the intent baseline team.
func (t *SelectTeamTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := req.GetString("prompt", "")
	if prompt == "" {
		return mcp.NewToolResultError("'prompt' is required"), nil
	}

	res := actions.SelectTeam(ctx, t.db, actions.SelectInput{
		SessionID:  req.GetString("session_id", ""),
		Prompt:     prompt,
		Project:    req.GetString("project", ""),
		Complexity: req.GetString("complexity", ""),
		Tools:      splitList(req.GetString("tools", "")),
		Classifier: t.classifier,
	})
	return resultJSON(res), nil
}
