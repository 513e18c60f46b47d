package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentat-dev/mentat/internal/actions"
	"github.com/mentat-dev/mentat/internal/models"
	"github.com/mentat-dev/mentat/internal/output"
)

// NewMemoryCmd creates the memory command with subcommands.
func NewMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage tiered event memory (hot, warm, cold)",
	}

	cmd.AddCommand(newMemoryAddCmd())
	cmd.AddCommand(newMemoryRecentCmd())
	cmd.AddCommand(newMemoryRotateCmd())

	return cmd
}

func newMemoryAddCmd() *cobra.Command {
	var (
		tier      string
		entryType string
		intent    string
		agents    []string
		rating    int
		tags      []string
		source    string
	)

	cmd := &cobra.Command{
		Use:   "add [content...]",
		Short: "Append one event to a memory tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				return cmdErr(errNoContent)
			}

			return withDB(func(db *DB) error {
				entry, err := actions.RecordMemory(db, actions.RecordMemoryInput{
					Tier:      tier,
					Type:      entryType,
					SessionID: sessionID(cmd),
					Intent:    intent,
					Agents:    agents,
					Content:   content,
					Rating:    rating,
					Tags:      tags,
					Source:    source,
				})
				if err != nil {
					return err
				}
				return output.PrintSuccess(entry)
			})
		},
	}

	cmd.Flags().StringVar(&tier, "tier", string(models.TierHot), "Target tier (hot, warm, cold)")
	cmd.Flags().StringVar(&entryType, "type", "note", "Event type (free-form category)")
	cmd.Flags().StringVar(&intent, "intent", "", "Intent the event relates to")
	cmd.Flags().StringSliceVar(&agents, "agents", nil, "Agent roles involved")
	cmd.Flags().IntVar(&rating, "rating", 0, "User rating 1-10, 0 for unrated")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Free-form tags")
	cmd.Flags().StringVar(&source, "source", "cli", "Event source")

	return cmd
}

func newMemoryRecentCmd() *cobra.Command {
	var (
		tier  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent events of a tier in chronological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				entries, err := actions.RecentMemory(db, tier, limit)
				if err != nil {
					return err
				}
				type resp struct {
					Tier    string               `json:"tier"`
					Entries []models.MemoryEntry `json:"entries"`
				}
				return output.PrintSuccess(resp{Tier: tier, Entries: entries})
			})
		},
	}

	cmd.Flags().StringVar(&tier, "tier", string(models.TierHot), "Tier to read (hot, warm, cold)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max entries to return")

	return cmd
}

func newMemoryRotateCmd() *cobra.Command {
	var usageRatio float64

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Run one hot to warm to cold rotation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				res, err := actions.RotateMemory(db, usageRatio)
				if err != nil {
					return err
				}
				return output.PrintSuccess(res)
			})
		},
	}

	cmd.Flags().Float64Var(&usageRatio, "usage-ratio", 0, "Current context usage in [0,1], 0 when unknown")

	return cmd
}
