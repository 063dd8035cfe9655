package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewRunCommand(root *RootCommand) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run <query>...",
		Short: "Match a query and execute the best skill",
		Long: `Match a natural-language query against the skill registry and either
auto-execute the top match or print ranked suggestions.

Flags embedded in the query (for example --issue or --target) are
forwarded to argument inference, so the commands printed by suggestions
can be pasted back verbatim.`,
		Example: `  # Auto-execute when the top match qualifies
  autoskill run fix the login bug

  # Preview without executing
  autoskill run --dry-run cleanup the old caches`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), root, strings.Join(args, " "), dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would execute without running it")
	// Everything after the first positional word belongs to the query,
	// including flag-shaped tokens consumed by argument inference.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runRun(ctx context.Context, root *RootCommand, query string, dryRun bool) error {
	opts := root.OutputOptions()

	result := root.Router().ExecuteOrSuggest(ctx, query, nil, dryRun)

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(result, opts)
	}

	if !opts.Quiet {
		fmt.Fprintln(opts.Writer, result.FormatResult())
	}

	if result.Executed && !result.Success {
		return fmt.Errorf("skill %s failed", result.SkillUsed)
	}
	return nil
}
