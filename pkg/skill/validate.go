package skill

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from schema validation.
type Issue struct {
	Field      string   `json:"field"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of validating one skill definition.
// Validation never aborts mid-way; all findings are collected.
type ValidationResult struct {
	SkillName string  `json:"skill_name"`
	Valid     bool    `json:"valid"`
	Errors    []Issue `json:"errors,omitempty"`
	Warnings  []Issue `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(field, message, suggestion string) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: message, Severity: SeverityError, Suggestion: suggestion})
}

func (r *ValidationResult) addWarning(field, message, suggestion string) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: message, Severity: SeverityWarning, Suggestion: suggestion})
}

var (
	kebabCaseRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	snakeCaseRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	semverRe    = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	namedGroup  = "(?P<"
)

var validCategories = map[string]bool{
	CategoryWorkflow:      true,
	CategoryUtility:       true,
	CategoryResearch:      true,
	CategorySpecial:       true,
	CategoryOrchestration: true,
}

var validComplexities = map[string]bool{
	ComplexityBasic:    true,
	ComplexityStandard: true,
	ComplexityEnhanced: true,
	ComplexityAdvanced: true,
	ComplexityHigh:     true,
}

var validArgTypes = map[ArgType]bool{
	TypeString: true,
	TypeEnum:   true,
	TypeInt:    true,
	TypeBool:   true,
	TypePath:   true,
}

var validInferSources = map[InferSource]bool{
	SourceUserQuery:      true,
	SourceProjectContext: true,
	SourceGitHistory:     true,
	SourceLearning:       true,
}

// ValidateFile parses and validates a SKILL.md file on disk.
func ValidateFile(path string) *ValidationResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return &ValidationResult{
			SkillName: path,
			Valid:     false,
			Errors: []Issue{{
				Field:    "file",
				Message:  fmt.Sprintf("cannot read file: %v", err),
				Severity: SeverityError,
			}},
		}
	}
	return ValidateContent(string(content))
}

// ValidateContent parses and validates a skill document.
func ValidateContent(content string) *ValidationResult {
	sk, err := ParseSkillFile(content)
	if err != nil {
		return &ValidationResult{
			SkillName: "unknown",
			Valid:     false,
			Errors: []Issue{{
				Field:      "frontmatter",
				Message:    fmt.Sprintf("failed to parse front-matter: %v", err),
				Severity:   SeverityError,
				Suggestion: "check YAML syntax and ensure the file starts with '---'",
			}},
		}
	}
	return Validate(sk)
}

// Validate checks a parsed skill against the declarative schema and
// returns every error and warning found.
func Validate(sk *Skill) *ValidationResult {
	res := &ValidationResult{SkillName: sk.Name}

	validateBasics(sk, res)
	validateIntents(sk, res)
	validateArguments(sk, res)
	validateAutoTrigger(sk, res)

	res.Valid = len(res.Errors) == 0
	return res
}

func validateBasics(sk *Skill, res *ValidationResult) {
	if !kebabCaseRe.MatchString(sk.Name) {
		res.addError("name", fmt.Sprintf("name %q must be kebab-case", sk.Name),
			"use lowercase letters, numbers, and hyphens (e.g. 'my-skill')")
	}
	if len(sk.Name) < 2 || len(sk.Name) > 30 {
		res.addError("name", fmt.Sprintf("name length must be 2-30 characters (got %d)", len(sk.Name)), "")
	}
	if sk.Description == "" {
		res.addError("description", "description is required", "")
	} else if len(sk.Description) > 100 {
		res.addWarning("description", fmt.Sprintf("description is %d chars (recommended <100)", len(sk.Description)),
			"keep the description concise")
	}
	if !semverRe.MatchString(sk.Version) {
		res.addError("version", fmt.Sprintf("version %q must follow semantic versioning (X.Y.Z)", sk.Version),
			"use a format like '1.0.0'")
	}
	if !validCategories[sk.Category] {
		res.addError("category", fmt.Sprintf("invalid category %q", sk.Category),
			"must be one of: workflow, utility, research, special, orchestration")
	}
	if !validComplexities[sk.Complexity] {
		res.addError("complexity", fmt.Sprintf("invalid complexity %q", sk.Complexity),
			"must be one of: basic, standard, enhanced, advanced, high")
	}
}

func validateIntents(sk *Skill, res *ValidationResult) {
	in := sk.Intents

	if len(in.Primary) == 0 && len(in.Keywords) == 0 && len(in.Patterns) == 0 {
		res.addError("intents", "skill declares no primary templates, keywords, or patterns and can never match",
			"add at least one trigger")
		return
	}

	for _, tmpl := range in.Primary {
		if !strings.Contains(tmpl, "{") {
			res.addWarning("intents.primary", fmt.Sprintf("template %q has no {param} placeholder", tmpl),
				"use {param} to mark extractable parts")
		}
	}

	if len(in.Keywords) > 0 && len(in.Keywords) < 2 {
		res.addWarning("intents.keywords", "fewer than 2 keywords limits keyword-stage recall", "")
	}

	for _, pattern := range in.Patterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			res.addError("intents.patterns", fmt.Sprintf("invalid regex %q: %v", pattern, err), "")
			continue
		}
		if !strings.Contains(pattern, namedGroup) {
			res.addWarning("intents.patterns", fmt.Sprintf("pattern %q has no named groups", pattern),
				"use (?P<name>...) for argument extraction")
		}
	}
}

func validateArguments(sk *Skill, res *ValidationResult) {
	seen := make(map[string]bool, len(sk.Arguments))

	for _, arg := range sk.Arguments {
		field := "arguments." + arg.Name

		if !snakeCaseRe.MatchString(arg.Name) {
			res.addError(field+".name", fmt.Sprintf("name %q must be snake_case", arg.Name), "")
		}
		if seen[arg.Name] {
			res.addError(field, fmt.Sprintf("duplicate argument %q", arg.Name), "")
		}
		seen[arg.Name] = true

		if !validArgTypes[arg.Type] {
			res.addError(field+".type", fmt.Sprintf("invalid type %q", arg.Type),
				"must be one of: string, enum, int, bool, path")
		}
		if arg.Type == TypeEnum && len(arg.Values) == 0 {
			res.addError(field+".values", "enum type requires a 'values' list",
				"add 'values: [opt1, opt2, ...]'")
		}
		if !arg.Required && arg.Default == nil {
			res.addWarning(field+".default", "optional argument has no default value", "")
		}
		for _, src := range arg.InferFrom {
			if !validInferSources[src] {
				res.addError(field+".infer_from", fmt.Sprintf("unknown inference source %q", src),
					"must be one of: user_query, project_context, git_history, learning")
			}
		}
	}
}

func validateAutoTrigger(sk *Skill, res *ValidationResult) {
	at := sk.AutoTrigger

	if at.ConfidenceThreshold < 0 || at.ConfidenceThreshold > 1 {
		res.addError("auto_trigger.confidence_threshold",
			fmt.Sprintf("threshold %.2f outside [0,1]", at.ConfidenceThreshold), "")
	} else if at.Enabled && at.ConfidenceThreshold < 0.85 {
		res.addWarning("auto_trigger.confidence_threshold",
			fmt.Sprintf("threshold %.2f below recommended 0.85 for auto-execution", at.ConfidenceThreshold), "")
	}

	for _, check := range at.SafetyChecks {
		if check.CheckType == "" {
			res.addError("auto_trigger.safety_checks", "safety check missing 'check' type", "")
		}
	}
}
