package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewMatchCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <query>...",
		Short: "Show ranked skill matches for a query",
		Long: `Run the matching pipeline for a query and print the ranked candidates
without executing anything. Useful for inspecting why a query resolves
to a particular skill.`,
		Example: `  # See which skills a query would trigger
  autoskill match fix the failing login tests`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(root, strings.Join(args, " "))
		},
	}

	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runMatch(root *RootCommand, query string) error {
	opts := root.OutputOptions()

	result, err := root.Matcher().Match(query, nil)
	if err != nil {
		PrintError(err, opts)
		return fmt.Errorf("match failed: %w", err)
	}

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(result, opts)
	}

	if !opts.Quiet {
		fmt.Fprintln(opts.Writer, result.FormatSuggestions())
	}
	return nil
}
