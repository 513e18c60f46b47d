package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/output"
)

// NewFeedbackCmd creates the feedback command.
func NewFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback [text...]",
		Short: "Record user feedback and attach any rating to the latest outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return cmdErr(errNoFeedbackText)
			}

			return withDB(func(db *DB) error {
				res, err := actions.ApplyFeedback(db, sessionID(cmd), text)
				if err != nil {
					return err
				}
				return output.PrintSuccess(res)
			})
		},
	}

	return cmd
}
