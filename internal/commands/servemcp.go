package commands

import (
	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/mcp"
)

// NewServeMCPCmd creates the serve-mcp command.
func NewServeMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the engine as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := mcp.New(version)
			if err != nil {
				return cmdErr(err)
			}
			defer cleanup()

			// Stdio transport owns stdout; logs already go to stderr.
			return mcp.Serve(s)
		},
	}
}
