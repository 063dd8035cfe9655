package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func NewHistoryCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Execution history",
		Long:  `Query the append-only audit log of router invocations.`,
	}

	cmd.AddCommand(NewHistoryRecentCommand(root))
	cmd.AddCommand(NewHistoryCountsCommand(root))

	return cmd
}

func NewHistoryRecentCommand(root *RootCommand) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryRecent(cmd.Context(), root, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")

	return cmd
}

func runHistoryRecent(ctx context.Context, root *RootCommand, limit int) error {
	opts := root.OutputOptions()

	history := root.History()
	if history == nil {
		err := fmt.Errorf("history is disabled in configuration")
		PrintError(err, opts)
		return err
	}

	records, err := history.Recent(ctx, limit)
	if err != nil {
		PrintError(err, opts)
		return fmt.Errorf("read history: %w", err)
	}

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(records, opts)
	}

	if !opts.Quiet {
		if len(records) == 0 {
			fmt.Fprintln(opts.Writer, "No history recorded yet.")
			return nil
		}
		for _, rec := range records {
			status := "suggested"
			if rec.Executed && rec.Success {
				status = "executed"
			} else if rec.Executed {
				status = "failed"
			} else if rec.Warning != "" {
				status = "blocked"
			}
			name := rec.SkillName
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(opts.Writer, "%s  %-9s  %-20s  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), status, name, rec.Query)
		}
	}
	return nil
}

func NewHistoryCountsCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show execution counts per skill",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryCounts(cmd.Context(), root)
		},
	}

	return cmd
}

func runHistoryCounts(ctx context.Context, root *RootCommand) error {
	opts := root.OutputOptions()

	history := root.History()
	if history == nil {
		err := fmt.Errorf("history is disabled in configuration")
		PrintError(err, opts)
		return err
	}

	counts, err := history.CountBySkill(ctx)
	if err != nil {
		PrintError(err, opts)
		return fmt.Errorf("read history: %w", err)
	}

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(counts, opts)
	}

	if !opts.Quiet {
		if len(counts) == 0 {
			fmt.Fprintln(opts.Writer, "No executions recorded yet.")
			return nil
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(opts.Writer, "%-24s %d\n", name, counts[name])
		}
	}
	return nil
}
