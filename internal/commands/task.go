package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/output"
)

// NewTaskCmd creates the task command with start/finish subcommands.
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Track task turns: open a work item, finalize it with an outcome",
	}

	cmd.AddCommand(newTaskStartCmd())
	cmd.AddCommand(newTaskFinishCmd())

	return cmd
}

func newTaskStartCmd() *cobra.Command {
	var (
		intentLabel string
		project     string
		complexity  string
		agents      []string
	)

	cmd := &cobra.Command{
		Use:   "start [prompt...]",
		Short: "Open a work item for a task turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return cmdErr(errNoPrompt)
			}

			return withDB(func(db *DB) error {
				w, err := actions.StartTask(db, actions.StartTaskInput{
					SessionID:  sessionID(cmd),
					Prompt:     prompt,
					Intent:     intentLabel,
					Project:    project,
					Complexity: complexity,
					Agents:     agents,
				})
				if err != nil {
					return err
				}
				return output.PrintSuccess(w)
			})
		},
	}

	cmd.Flags().StringVar(&intentLabel, "intent", "", "Classified intent for the task")
	cmd.Flags().StringVar(&project, "project", "", "Project the task belongs to")
	cmd.Flags().StringVar(&complexity, "complexity", "", "Task complexity (low, medium, high)")
	cmd.Flags().StringSliceVar(&agents, "agents", nil, "Agent roles working the task")

	return cmd
}

func newTaskFinishCmd() *cobra.Command {
	var (
		workItemID string
		success    bool
		failed     bool
		result     string
		tools      []string
		modelCalls int
		execTime   float64
		errMessage string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Finalize a work item and record its outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			// --failed wins when both are set; success is the default.
			ok := success && !failed

			return withDB(func(db *DB) error {
				res, err := actions.FinishTask(db, actions.FinishTaskInput{
					SessionID:      sessionID(cmd),
					WorkItemID:     workItemID,
					Success:        ok,
					Result:         result,
					ToolsUsed:      tools,
					ModelCalls:     modelCalls,
					ExecutionTime:  execTime,
					ErrorMessage:   errMessage,
					ForceRecompute: force,
				})
				if err != nil {
					return err
				}
				return output.PrintSuccess(res)
			})
		},
	}

	cmd.Flags().StringVar(&workItemID, "id", "", "Work item id (default: latest open item)")
	cmd.Flags().BoolVar(&success, "success", true, "Mark the task as completed")
	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the task as failed")
	cmd.Flags().StringVar(&result, "result", "", "Short outcome description")
	cmd.Flags().StringSliceVar(&tools, "tools", nil, "Tools used during the task")
	cmd.Flags().IntVar(&modelCalls, "model-calls", 0, "Model calls made during the task")
	cmd.Flags().Float64Var(&execTime, "execution-time", 0, "Execution time in seconds")
	cmd.Flags().StringVar(&errMessage, "error", "", "Error message for failed tasks")
	cmd.Flags().BoolVar(&force, "force-recompute", false, "Force a pattern recompute after recording")

	return cmd
}
