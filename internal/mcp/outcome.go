package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mentat-dev/mentat/internal/actions"
)

// RecordOutcomeTool handles the record_outcome MCP tool.
type RecordOutcomeTool struct {
	db *sql.DB
}

// NewRecordOutcomeTool creates a RecordOutcomeTool over the shared database.
func NewRecordOutcomeTool(db *sql.DB) *RecordOutcomeTool {
	return &RecordOutcomeTool{db: db}
}

// Definition returns the MCP tool definition for record_outcome.
func (t *RecordOutcomeTool) Definition() mcp.Tool {
	return mcp.NewTool("record_outcome",
		mcp.WithDescription(
			"Record a finished task turn: what was asked, who worked it, and how "+
				"it went. Feeds the outcome ledger and the learned success patterns.",
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The prompt the task answered"),
		),
		mcp.WithBoolean("success",
			mcp.Description("Whether the task completed successfully (default true)"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session id this turn belongs to"),
		),
		mcp.WithString("intent",
			mcp.Description("Classified intent of the task"),
		),
		mcp.WithString("project",
			mcp.Description("Project the task belongs to"),
		),
		mcp.WithString("complexity",
			mcp.Description("Task complexity: low, medium, or high"),
		),
		mcp.WithString("agents",
			mcp.Description("Comma-separated agent roles that worked the task"),
		),
		mcp.WithString("result",
			mcp.Description("Short outcome description"),
		),
		mcp.WithString("tools_used",
			mcp.Description("Comma-separated tools used during the task"),
		),
		mcp.WithNumber("model_calls",
			mcp.Description("Model calls made during the task"),
		),
		mcp.WithNumber("execution_time",
			mcp.Description("Execution time in seconds"),
		),
		mcp.WithString("error",
			mcp.Description("Error message for failed tasks"),
		),
	)
}

// Handle processes the record_outcome tool call: it opens a work item
// and finalizes it in one shot.
func (t *RecordOutcomeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := req.GetString("prompt", "")
	if prompt == "" {
		return mcp.NewToolResultError("'prompt' is required"), nil
	}

	w, err := actions.StartTask(t.db, actions.StartTaskInput{
		SessionID:  req.GetString("session_id", ""),
		Prompt:     prompt,
		Intent:     req.GetString("intent", ""),
		Project:    req.GetString("project", ""),
		Complexity: req.GetString("complexity", ""),
		Agents:     splitList(req.GetString("agents", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("opening work item: %v", err)), nil
	}

	res, err := actions.FinishTask(t.db, actions.FinishTaskInput{
		SessionID:     w.SessionID,
		WorkItemID:    w.ID,
		Success:       req.GetBool("success", true),
		Result:        req.GetString("result", ""),
		ToolsUsed:     splitList(req.GetString("tools_used", "")),
		ModelCalls:    int(req.GetFloat("model_calls", 0)),
		ExecutionTime: req.GetFloat("execution_time", 0),
		ErrorMessage:  req.GetString("error", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("finalizing work item: %v", err)), nil
	}
	return resultJSON(res), nil
}

// splitList parses a comma-separated argument into trimmed items.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
