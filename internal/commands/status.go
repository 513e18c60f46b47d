package commands

import (
	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/output"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show memory tiers, ledger counts, and schema state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				res, err := actions.Status(db)
				if err != nil {
					return err
				}
				return output.PrintSuccess(res)
			})
		},
	}
}
