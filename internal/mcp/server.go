// Package mcp exposes the selection engine over the Model Context
// Protocol so agent hosts can call it as tools instead of shelling out.
//
// This is the composition root for the MCP surface: it opens the shared
// database, registers the tools, and serves stdio. All business logic
// lives in internal/actions.
package mcp

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mentat-dev/mentat/internal/app"
	"github.com/mentat-dev/mentat/internal/intent"
	"github.com/mentat-dev/mentat/internal/store"
)

// New creates the MCP server with all tools registered. The returned
// cleanup closes the database and is always non-nil.
func New(version string) (*server.MCPServer, func(), error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, noop, err
	}
	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return nil, noop, err
	}

	s := server.NewMCPServer(
		"mentat",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	registerTools(s, db)

	return s, func() { _ = db.Close() }, nil
}

func registerTools(s *server.MCPServer, db *sql.DB) {
	selectTool := NewSelectTeamTool(db, serverClassifier())
	s.AddTool(selectTool.Definition(), selectTool.Handle)

	outcomeTool := NewRecordOutcomeTool(db)
	s.AddTool(outcomeTool.Definition(), outcomeTool.Handle)

	feedbackTool := NewGiveFeedbackTool(db)
	s.AddTool(feedbackTool.Definition(), feedbackTool.Handle)

	recentTool := NewMemoryRecentTool(db)
	s.AddTool(recentTool.Definition(), recentTool.Handle)
}

// Serve runs the server on stdio until the host closes the pipe.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func noop() {}

// serverClassifier builds the long-lived intent classifier: the external
// CLI behind an LRU when available, keyword matching otherwise.
func serverClassifier() intent.Classifier {
	if c, err := intent.NewCLIClassifier(""); err == nil {
		return intent.NewCachedClassifier(c, 256, time.Hour)
	}
	return intent.KeywordClassifier{}
}

// resultJSON renders a tool payload as indented JSON text. MCP hosts
// feed tool output straight to a model, so structure beats prose here.
func resultJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error())
	}
	return mcp.NewToolResultText(string(b))
}
