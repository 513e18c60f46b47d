package commands

import (
	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/output"
)

// NewPatternsCmd creates the patterns command with subcommands.
func NewPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and recompute learned success patterns",
	}

	cmd.AddCommand(newPatternsListCmd())
	cmd.AddCommand(newPatternsRecomputeCmd())

	return cmd
}

func newPatternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List success patterns ordered by success rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				patterns, err := actions.ListPatterns(db)
				if err != nil {
					return err
				}
				type resp struct {
					Patterns []models.SuccessPattern `json:"patterns"`
				}
				return output.PrintSuccess(resp{Patterns: patterns})
			})
		},
	}
}

func newPatternsRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Force a full pattern recompute from the outcome ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				decision := actions.ForceRecompute(db)
				return output.PrintSuccess(decision)
			})
		},
	}
}
