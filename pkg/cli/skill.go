package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jguan/autoskill/pkg/skill"
	"github.com/spf13/cobra"
)

func NewSkillCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Skill registry management",
		Long: `Inspect and validate the skills known to AutoSkill.

Skills are SKILL.md documents with YAML front-matter. The registry is
assembled from the builtin catalog and the configured user directory.`,
	}

	cmd.AddCommand(NewSkillListCommand(root))
	cmd.AddCommand(NewSkillGetCommand(root))
	cmd.AddCommand(NewSkillValidateCommand(root))

	return cmd
}

// skillRow is the flattened listing shape rendered by all formats.
type skillRow struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	AutoExec    bool    `json:"auto_exec"`
	Threshold   float64 `json:"threshold"`
}

func NewSkillListCommand(root *RootCommand) *cobra.Command {
	var (
		category string
		autoOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered skills",
		Long:    `List all skills in the registry.`,
		Example: `  # List all skills
  autoskill skill list

  # List only skills that may auto-execute
  autoskill skill list --auto`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillList(root, category, autoOnly)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	cmd.Flags().BoolVar(&autoOnly, "auto", false, "Only show skills with auto-execution enabled")

	return cmd
}

func runSkillList(root *RootCommand, category string, autoOnly bool) error {
	opts := root.OutputOptions()

	var rows []skillRow
	for _, sk := range root.Registry().List() {
		if category != "" && sk.Category != category {
			continue
		}
		if autoOnly && !sk.AutoTrigger.Enabled {
			continue
		}
		rows = append(rows, skillRow{
			Name:        sk.Name,
			Category:    sk.Category,
			Description: sk.Description,
			AutoExec:    sk.AutoTrigger.Enabled,
			Threshold:   sk.AutoTrigger.ConfidenceThreshold,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	return PrintOutput(rows, opts)
}

func NewSkillGetCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get skill details",
		Long:  `Show a skill's full definition: intents, arguments, safety checks, and auto-trigger policy.`,
		Example: `  # Show the troubleshoot skill
  autoskill skill get troubleshoot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillGet(root, args[0])
		},
	}

	return cmd
}

func runSkillGet(root *RootCommand, name string) error {
	opts := root.OutputOptions()

	sk, ok := root.Registry().Get(name)
	if !ok {
		err := fmt.Errorf("skill not found: %s", name)
		PrintError(err, opts)
		return err
	}

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		return PrintOutput(sk, opts)
	}

	if !opts.Quiet {
		printSkillDetails(root, sk)
	}
	return nil
}

func printSkillDetails(root *RootCommand, sk *skill.Skill) {
	w := root.OutputOptions().Writer

	fmt.Fprintf(w, "%s (%s)\n", sk.DisplayName, sk.Name)
	fmt.Fprintf(w, "  %s\n", sk.Description)
	if sk.Category != "" {
		fmt.Fprintf(w, "  Category: %s\n", sk.Category)
	}

	if len(sk.Intents.Keywords) > 0 {
		fmt.Fprintf(w, "  Keywords: %s\n", strings.Join(sk.Intents.Keywords, ", "))
	}
	for _, tmpl := range sk.Intents.Primary {
		fmt.Fprintf(w, "  Intent: %s\n", tmpl)
	}

	if len(sk.Arguments) > 0 {
		fmt.Fprintln(w, "  Arguments:")
		for _, arg := range sk.Arguments {
			required := ""
			if arg.Required {
				required = " (required)"
			}
			fmt.Fprintf(w, "    --%s  %s%s\n", arg.Name, arg.Description, required)
		}
	}

	at := sk.AutoTrigger
	if at.Enabled {
		confirm := ""
		if at.ConfirmBeforeExecution {
			confirm = ", confirmation required"
		}
		fmt.Fprintf(w, "  Auto-execution: enabled at %.0f%% confidence%s\n", at.ConfidenceThreshold*100, confirm)
	} else {
		fmt.Fprintln(w, "  Auto-execution: disabled")
	}
	for _, check := range at.SafetyChecks {
		fmt.Fprintf(w, "  Safety check: %s\n", check.CheckType)
	}
}

func NewSkillValidateCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a SKILL.md file",
		Long:  `Parse and validate a skill definition, reporting schema errors and lint warnings.`,
		Example: `  # Validate a skill under development
  autoskill skill validate ./my-skill/SKILL.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillValidate(root, args[0])
		},
	}

	return cmd
}

func runSkillValidate(root *RootCommand, path string) error {
	opts := root.OutputOptions()

	res := skill.ValidateFile(path)

	if opts.Format == OutputJSON || opts.Format == OutputYAML {
		if err := PrintOutput(res, opts); err != nil {
			return err
		}
	} else if !opts.Quiet {
		printValidation(opts, res)
	}

	if !res.Valid {
		return fmt.Errorf("validation failed: %d error(s)", len(res.Errors))
	}
	return nil
}

func printValidation(opts *OutputOptions, res *skill.ValidationResult) {
	w := opts.Writer

	if res.Valid {
		fmt.Fprintf(w, "%s: valid\n", res.SkillName)
	} else {
		fmt.Fprintf(w, "%s: invalid\n", res.SkillName)
	}

	for _, issue := range res.Errors {
		fmt.Fprintf(w, "  error: %s: %s\n", issue.Field, issue.Message)
		if issue.Suggestion != "" {
			fmt.Fprintf(w, "    hint: %s\n", issue.Suggestion)
		}
	}
	for _, issue := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s: %s\n", issue.Field, issue.Message)
		if issue.Suggestion != "" {
			fmt.Fprintf(w, "    hint: %s\n", issue.Suggestion)
		}
	}
}
