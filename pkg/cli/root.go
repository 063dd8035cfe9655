package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jguan/autoskill/catalog"
	"github.com/jguan/autoskill/pkg/config"
	"github.com/jguan/autoskill/pkg/execution"
	"github.com/jguan/autoskill/pkg/infra/eventbus"
	"github.com/jguan/autoskill/pkg/infra/logger"
	"github.com/jguan/autoskill/pkg/intent"
	"github.com/jguan/autoskill/pkg/project"
	"github.com/jguan/autoskill/pkg/skill"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// recentSkillWindow is how many recently executed skills seed the
// project context for the matcher's recent-usage boost.
const recentSkillWindow = 5

var (
	cliVersion   = "dev"
	cliBuildDate = "unknown"
	cliGitCommit = "unknown"
)

type RootCommand struct {
	cmd       *cobra.Command
	cfg       *config.Config
	registry  *skill.Registry
	matcher   *intent.Matcher
	router    *execution.Router
	learner   *execution.LearningStore
	history   *execution.HistoryStore
	bus       eventbus.EventBus
	opts      *OutputOptions
	formatStr string
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{
		opts: NewOutputOptions(),
	}

	cmd := &cobra.Command{
		Use:   "autoskill",
		Short: "AutoSkill - intent-driven skill execution",
		Long: `AutoSkill matches natural-language queries against a registry of
skill definitions, infers the arguments each skill needs from the query
and the surrounding project, and either auto-executes the best match or
suggests ranked commands.

Skills are SKILL.md documents with YAML front-matter describing intents,
arguments, and auto-trigger policy.`,
		PersistentPreRunE:  root.persistentPreRunE,
		PersistentPostRunE: root.persistentPostRunE,
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVarP(&root.formatStr, "output", "o", "table", "Output format (table, json, yaml)")
	pflags.BoolVarP(&root.opts.Quiet, "quiet", "q", false, "Suppress output")
	pflags.String("config", "", "Config file path (default: ~/.autoskill/config.toml)")

	viper.BindPFlag("output", pflags.Lookup("output"))
	viper.BindPFlag("quiet", pflags.Lookup("quiet"))
	viper.BindPFlag("config", pflags.Lookup("config"))

	root.cmd = cmd

	root.addSubCommands()

	return root
}

func (r *RootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	r.opts.Format = OutputFormat(r.formatStr)

	cfgPath := viper.GetString("config")
	var err error
	r.cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOutput := os.Stderr
	if r.cfg.Logging.File != "" {
		f, err := os.OpenFile(r.cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logOutput = f
	}
	logger.Init(logger.Config{
		Level:  r.cfg.Logging.Level,
		Format: r.cfg.Logging.Format,
		Output: logOutput,
	})
	log := logger.Default().With("component", "cli")

	r.registry = skill.NewRegistry()
	if r.cfg.Skills.UseBuiltin {
		if err := r.registry.LoadFS(catalog.SkillFS()); err != nil {
			return fmt.Errorf("load builtin skills: %w", err)
		}
	}
	if dir := r.cfg.Skills.Dir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			if err := r.registry.LoadDir(dir); err != nil {
				return fmt.Errorf("load skills from %s: %w", dir, err)
			}
		}
	}

	projectDir := r.cfg.General.ProjectDir
	if projectDir == "" {
		projectDir, err = os.Getwd()
		if err != nil {
			projectDir = "."
		}
	}

	if r.cfg.Learning.Enabled {
		r.learner = execution.NewLearningStore(r.cfg.Learning.Path)
	}

	analyzer := project.NewDirAnalyzer(projectDir)
	if r.learner != nil {
		analyzer.RecentSkills = r.learner.GetRecent(recentSkillWindow)
	}

	r.matcher = intent.NewMatcher(r.registry, analyzer,
		intent.WithMaxMatches(r.cfg.Matching.MaxSuggestions))

	bus := eventbus.NewInMemoryEventBus()
	r.bus = bus
	bus.Subscribe(func(event eventbus.Event) error {
		log.Debug("execution event",
			"type", event.Type(),
			"correlation_id", event.CorrelationID())
		return nil
	})

	routerOpts := []execution.RouterOption{
		execution.WithValidator(execution.NewSafetyValidator(projectDir,
			execution.WithDiskFloor(r.cfg.Safety.MinFreeDiskMB))),
		execution.WithEventBus(bus),
	}
	if r.cfg.History.Enabled {
		history, err := execution.NewHistoryStore(r.cfg.History.Path)
		if err != nil {
			// History is an audit convenience, not a prerequisite.
			log.Warn("history store unavailable, continuing without it", "path", r.cfg.History.Path, "error", err)
		} else {
			r.history = history
			routerOpts = append(routerOpts, execution.WithHistory(history))
		}
	}

	r.router = execution.NewRouter(r.matcher, r.learner, routerOpts...)

	return nil
}

// persistentPostRunE drains the event bus so events published right
// before exit still reach subscribers, and releases the history store.
func (r *RootCommand) persistentPostRunE(cmd *cobra.Command, args []string) error {
	if r.bus != nil {
		if err := r.bus.Close(); err != nil {
			return fmt.Errorf("close event bus: %w", err)
		}
	}
	if r.history != nil {
		if err := r.history.Close(); err != nil {
			return fmt.Errorf("close history store: %w", err)
		}
	}
	return nil
}

func (r *RootCommand) addSubCommands() {
	r.cmd.AddCommand(NewVersionCommand(r))
	r.cmd.AddCommand(NewRunCommand(r))
	r.cmd.AddCommand(NewMatchCommand(r))
	r.cmd.AddCommand(NewSkillCommand(r))
	r.cmd.AddCommand(NewLearnCommand(r))
	r.cmd.AddCommand(NewHistoryCommand(r))
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Config() *config.Config {
	return r.cfg
}

func (r *RootCommand) Registry() *skill.Registry {
	return r.registry
}

func (r *RootCommand) Matcher() *intent.Matcher {
	return r.matcher
}

func (r *RootCommand) Router() *execution.Router {
	return r.router
}

func (r *RootCommand) Learner() *execution.LearningStore {
	return r.learner
}

func (r *RootCommand) History() *execution.HistoryStore {
	return r.history
}

func (r *RootCommand) OutputOptions() *OutputOptions {
	return r.opts
}

func (r *RootCommand) SetOutputWriter(w interface{ Write([]byte) (int, error) }) {
	r.opts.Writer = w
}

func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func Execute() {
	root := NewRootCommand()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func SetVersion(version, buildDate, gitCommit string) {
	cliVersion = version
	cliBuildDate = buildDate
	cliGitCommit = gitCommit
}

func GetVersion() string {
	return cliVersion
}

func GetBuildDate() string {
	return cliBuildDate
}

func GetGitCommit() string {
	return cliGitCommit
}
