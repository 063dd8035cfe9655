package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jguan/autoskill/pkg/project"
	"github.com/jguan/autoskill/pkg/skill"
)

// Inferrer fills a skill's argument map from ranked sources. For each
// declared argument it walks the schema's infer_from list in order and
// takes the first source that yields a value, falling back to the
// schema default. Inference never fails; a source that cannot produce
// a value simply yields nothing.
type Inferrer struct {
	templates *templateSet
}

// NewInferrer creates an Inferrer with its own template cache.
func NewInferrer() *Inferrer {
	return NewInferrerWithTemplates(newTemplateSet())
}

// NewInferrerWithTemplates creates an Inferrer sharing a template cache
// with the matcher.
func NewInferrerWithTemplates(templates *templateSet) *Inferrer {
	return &Inferrer{templates: templates}
}

var positiveCues = []string{"yes", "true", "enable", "on"}
var negativeCues = []string{"no", "false", "disable", "off"}

// languageByProjectType is the fixed mapping used for language and
// platform arguments; mixed projects default to typescript.
var languageByProjectType = map[string]string{
	project.TypePython:     "python",
	project.TypeTypeScript: "typescript",
	project.TypeJavaScript: "javascript",
	project.TypeMixed:      "typescript",
}

// Infer builds the argument map for a skill given a query and context.
func (inf *Inferrer) Infer(query string, sk *skill.Skill, ctx *project.Context) map[string]any {
	args := make(map[string]any)

	for _, arg := range sk.Arguments {
		value := inf.inferOne(query, sk, ctx, arg)
		if value == nil {
			if arg.Default != nil {
				args[arg.Name] = arg.Default
			}
			continue
		}
		args[arg.Name] = value
	}
	return args
}

func (inf *Inferrer) inferOne(query string, sk *skill.Skill, ctx *project.Context, arg skill.ArgumentSchema) any {
	for _, src := range arg.InferFrom {
		var value any
		switch src {
		case skill.SourceUserQuery:
			value = inf.fromQuery(query, arg, sk)
		case skill.SourceProjectContext:
			value = inf.fromContext(ctx, arg)
		case skill.SourceGitHistory:
			value = inf.fromGit(ctx.Git, arg)
		case skill.SourceLearning:
			value = inf.fromLearning(sk.Name, arg)
		}
		if value != nil {
			return value
		}
	}
	return nil
}

// fromQuery extracts a value from the query text: flag syntax first,
// then boolean cues, then primary-template placeholders, then enum
// value detection.
func (inf *Inferrer) fromQuery(query string, arg skill.ArgumentSchema, sk *skill.Skill) any {
	queryLower := strings.ToLower(query)

	// --name value; boolean flags are satisfied by presence alone.
	flagRe, err := regexp.Compile(`--` + regexp.QuoteMeta(arg.Name) + `(?:\s+([^\s-]+))?`)
	if err == nil {
		if sub := flagRe.FindStringSubmatch(query); sub != nil {
			if arg.Type == skill.TypeBool {
				return true
			}
			if sub[1] != "" {
				return castValue(sub[1], arg.Type)
			}
		}
	}

	if arg.Type == skill.TypeBool {
		for _, cue := range positiveCues {
			if strings.Contains(queryLower, cue) {
				return true
			}
		}
		for _, cue := range negativeCues {
			if strings.Contains(queryLower, cue) {
				return false
			}
		}
	}

	// {name} placeholder in one of the skill's primary templates.
	placeholder := "{" + arg.Name + "}"
	for _, tmpl := range sk.Intents.Primary {
		if !strings.Contains(tmpl, placeholder) {
			continue
		}
		re, err := inf.templates.compileTemplateFor(tmpl, arg.Name)
		if err != nil {
			continue
		}
		sub := re.FindStringSubmatch(query)
		if sub == nil {
			continue
		}
		if raw, ok := namedGroups(re, sub)[arg.Name]; ok {
			return castValue(raw, arg.Type)
		}
	}

	if arg.Type == skill.TypeEnum {
		for _, v := range arg.Values {
			if strings.Contains(queryLower, strings.ToLower(v)) {
				return v
			}
		}
	}

	return nil
}

// fromContext applies name-sensitive heuristics over the project
// snapshot.
func (inf *Inferrer) fromContext(ctx *project.Context, arg skill.ArgumentSchema) any {
	switch arg.Name {
	case "target", "path", "file", "directory":
		if len(ctx.Structure.SourceDirs) > 0 {
			return ctx.Structure.SourceDirs[0]
		}
		if ctx.Structure.RootDir != "" {
			return ctx.Structure.RootDir
		}
		return nil

	case "type":
		if arg.Type == skill.TypeEnum {
			for _, v := range arg.Values {
				if v == ctx.ProjectType {
					return ctx.ProjectType
				}
			}
		}
		return nil

	case "framework":
		if ctx.Testing.Framework != "" {
			return ctx.Testing.Framework
		}
		return nil

	case "language", "platform":
		if lang, ok := languageByProjectType[ctx.ProjectType]; ok {
			return lang
		}
		return nil
	}

	return nil
}

// fromGit resolves arguments from repository state; without a repo it
// yields nothing.
func (inf *Inferrer) fromGit(gitSummary project.GitSummary, arg skill.ArgumentSchema) any {
	if !gitSummary.HasRepo {
		return nil
	}

	switch arg.Name {
	case "branch":
		if gitSummary.CurrentBranch != "" {
			return gitSummary.CurrentBranch
		}
	case "changes", "uncommitted", "dirty":
		if arg.Type == skill.TypeBool {
			return gitSummary.UncommittedChanges > 0
		}
	case "message", "commit":
		if len(gitSummary.RecentCommits) > 0 {
			return gitSummary.RecentCommits[0].Message
		}
	}
	return nil
}

// fromLearning is a reserved extension point for inferring values from
// usage history. It currently yields nothing.
func (inf *Inferrer) fromLearning(skillName string, arg skill.ArgumentSchema) any {
	return nil
}

// castValue converts an extracted string to the argument's type.
// Casting never fails: an unparseable int degrades to the raw string.
func castValue(value string, argType skill.ArgType) any {
	value = strings.TrimSpace(value)

	switch argType {
	case skill.TypeInt:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		return value
	case skill.TypeBool:
		switch strings.ToLower(value) {
		case "true", "yes", "1", "on", "enable":
			return true
		default:
			return false
		}
	default:
		return value
	}
}
