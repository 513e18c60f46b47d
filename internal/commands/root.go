package commands

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mentat-dev/mentat/internal/app"
	"github.com/mentat-dev/mentat/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "mentat",
		Short:         "Adaptive agent memory and team selection",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --db-path into app-level resolver.
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}

			return nil
		},
	}

	// Accept snake_case spellings of flag names from agent hosts.
	root.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.PersistentFlags().String("db-path", "", "Override database path")
	root.PersistentFlags().StringP("session", "s", "", "Session id (default: $MENTAT_SESSION_ID)")
	root.Flags().BoolP("version", "v", false, "version for mentat")

	root.AddCommand(NewSelectCmd())
	root.AddCommand(NewTaskCmd())
	root.AddCommand(NewFeedbackCmd())
	root.AddCommand(NewMemoryCmd())
	root.AddCommand(NewPatternsCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewServeMCPCmd(version))

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// sessionID resolves the per-turn session id: the --session flag wins,
// then MENTAT_SESSION_ID from the environment.
func sessionID(cmd *cobra.Command) string {
	if s, err := cmd.Flags().GetString("session"); err == nil && s != "" {
		return s
	}
	return os.Getenv("MENTAT_SESSION_ID")
}
