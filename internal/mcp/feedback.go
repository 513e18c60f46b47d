package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mentat-dev/mentat/internal/actions"
)

// GiveFeedbackTool handles the give_feedback MCP tool.
type GiveFeedbackTool struct {
	db *sql.DB
}

// NewGiveFeedbackTool creates a GiveFeedbackTool over the shared database.
func NewGiveFeedbackTool(db *sql.DB) *GiveFeedbackTool {
	return &GiveFeedbackTool{db: db}
}

// Definition returns the MCP tool definition for give_feedback.
func (t *GiveFeedbackTool) Definition() mcp.Tool {
	return mcp.NewTool("give_feedback",
		mcp.WithDescription(
			"Record user feedback in the user's own words. Ratings like '8/10' "+
				"or '8分' are extracted and attached to the latest completed task, "+
				"correcting the learned success patterns.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The feedback text, verbatim"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session id whose latest outcome the rating targets"),
		),
	)
}

// Handle processes the give_feedback tool call.
func (t *GiveFeedbackTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	res, err := actions.ApplyFeedback(t.db, req.GetString("session_id", ""), text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recording feedback: %v", err)), nil
	}
	return resultJSON(res), nil
}
