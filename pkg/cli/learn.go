package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewLearnCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Usage learning data",
		Long: `Inspect and manage the usage data AutoSkill accumulates from
executions: per-skill counters, recent skills, and argument patterns.`,
	}

	cmd.AddCommand(NewLearnStatsCommand(root))
	cmd.AddCommand(NewLearnRecentCommand(root))
	cmd.AddCommand(NewLearnResetCommand(root))

	return cmd
}

func NewLearnStatsCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearnStats(root)
		},
	}

	return cmd
}

func runLearnStats(root *RootCommand) error {
	opts := root.OutputOptions()

	learner := root.Learner()
	if learner == nil {
		err := fmt.Errorf("learning is disabled in configuration")
		PrintError(err, opts)
		return err
	}

	stats := learner.GetStats()

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(stats, opts)
	}

	if !opts.Quiet {
		w := opts.Writer
		fmt.Fprintf(w, "Skills tracked:    %d\n", stats.TotalSkillsTracked)
		fmt.Fprintf(w, "Total executions:  %d\n", stats.TotalExecutions)
		if stats.MostUsedSkill != "" {
			fmt.Fprintf(w, "Most used skill:   %s\n", stats.MostUsedSkill)
		}
		fmt.Fprintf(w, "Recent skills:     %d\n", stats.RecentSkillsCount)
		fmt.Fprintf(w, "Argument patterns: %d\n", stats.ArgumentPatternsCount)
	}
	return nil
}

func NewLearnRecentCommand(root *RootCommand) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recently executed skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearnRecent(root, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of skills to show")

	return cmd
}

func runLearnRecent(root *RootCommand, limit int) error {
	opts := root.OutputOptions()

	learner := root.Learner()
	if learner == nil {
		err := fmt.Errorf("learning is disabled in configuration")
		PrintError(err, opts)
		return err
	}

	recent := learner.GetRecent(limit)

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(recent, opts)
	}

	if !opts.Quiet {
		if len(recent) == 0 {
			fmt.Fprintln(opts.Writer, "No executions recorded yet.")
		} else {
			fmt.Fprintln(opts.Writer, strings.Join(recent, "\n"))
		}
	}
	return nil
}

func NewLearnResetCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all learning data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearnReset(root)
		},
	}

	return cmd
}

func runLearnReset(root *RootCommand) error {
	opts := root.OutputOptions()

	learner := root.Learner()
	if learner == nil {
		err := fmt.Errorf("learning is disabled in configuration")
		PrintError(err, opts)
		return err
	}

	if err := learner.Reset(); err != nil {
		PrintError(err, opts)
		return fmt.Errorf("reset learning data: %w", err)
	}

	PrintSuccess("Learning data reset.", opts)
	return nil
}
