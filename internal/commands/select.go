package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/intent"
	"github.com/mentat-dev/mentat/internal/output"
)

// NewSelectCmd creates the select command.
func NewSelectCmd() *cobra.Command {
	var (
		project    string
		complexity string
		tools      []string
		llm        string
		noLLM      bool
	)

	cmd := &cobra.Command{
		Use:   "select [prompt...]",
		Short: "Select an agent team for a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return cmdErr(errNoPrompt)
			}

			classifier := selectClassifier(llm, noLLM)

			return withDB(func(db *DB) error {
				res := actions.SelectTeam(cmd.Context(), db, actions.SelectInput{
					SessionID:  sessionID(cmd),
					Prompt:     prompt,
					Project:    project,
					Complexity: complexity,
					Tools:      tools,
					Classifier: classifier,
				})
				return output.PrintSuccess(res)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project the prompt belongs to")
	cmd.Flags().StringVar(&complexity, "complexity", "", "Task complexity (low, medium, high)")
	cmd.Flags().StringSliceVar(&tools, "tools", nil, "Tools expected to be used")
	cmd.Flags().StringVar(&llm, "llm", "", "LLM CLI for intent classification (claude, opencode)")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Skip external CLI intent classification")

	return cmd
}

// selectClassifier prefers an external CLI classifier and falls back to
// keyword matching when none is available or it was disabled.
func selectClassifier(agent string, noLLM bool) intent.Classifier {
	if noLLM {
		return intent.KeywordClassifier{}
	}
	if c, err := intent.NewCLIClassifier(agent); err == nil {
		return c
	}
	return intent.KeywordClassifier{}
}
