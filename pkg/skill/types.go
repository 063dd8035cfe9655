// Package skill defines the declarative skill model and the registry
// that loads skill definitions from disk or an embedded catalog.
//
// A skill is data, not code: a named operation with trigger patterns,
// an argument schema, and an auto-execution policy. Definitions are
// immutable after load.
package skill

import "fmt"

// ArgType enumerates the supported argument value types.
type ArgType string

const (
	TypeString ArgType = "string"
	TypeEnum   ArgType = "enum"
	TypeInt    ArgType = "int"
	TypeBool   ArgType = "bool"
	TypePath   ArgType = "path"
)

// InferSource enumerates the argument inference sources, in the order
// a schema may list them.
type InferSource string

const (
	SourceUserQuery      InferSource = "user_query"
	SourceProjectContext InferSource = "project_context"
	SourceGitHistory     InferSource = "git_history"
	SourceLearning       InferSource = "learning"
)

// Skill categories.
const (
	CategoryWorkflow      = "workflow"
	CategoryUtility       = "utility"
	CategoryResearch      = "research"
	CategorySpecial       = "special"
	CategoryOrchestration = "orchestration"
)

// Complexity tiers.
const (
	ComplexityBasic    = "basic"
	ComplexityStandard = "standard"
	ComplexityEnhanced = "enhanced"
	ComplexityAdvanced = "advanced"
	ComplexityHigh     = "high"
)

// Skill is an immutable skill definition loaded from a SKILL.md file.
type Skill struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
	Category    string `json:"category" yaml:"category"`
	Complexity  string `json:"complexity" yaml:"complexity"`

	Intents     IntentSpec        `json:"intents" yaml:"intents"`
	Arguments   []ArgumentSchema  `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	AutoTrigger AutoTriggerConfig `json:"auto_trigger" yaml:"auto_trigger"`

	// Services lists external services the skill depends on.
	Services []string `json:"services,omitempty" yaml:"services,omitempty"`
	// Personas lists cooperating personas the skill expects.
	Personas []string `json:"personas,omitempty" yaml:"personas,omitempty"`

	Author string   `json:"author,omitempty" yaml:"author,omitempty"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// FilePath records where the definition was loaded from, empty for
	// embedded catalog skills.
	FilePath string `json:"-" yaml:"-"`
}

// IntentSpec holds the trigger metadata used by the intent matcher.
type IntentSpec struct {
	// Primary holds natural-language templates with {param} placeholders.
	Primary []string `json:"primary,omitempty" yaml:"primary,omitempty"`
	// Keywords are matched against whitespace-delimited query words.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	// Patterns are regular expressions with named capture groups.
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	// Contexts are tags intersected with the project's active contexts.
	Contexts []string `json:"contexts,omitempty" yaml:"contexts,omitempty"`
}

// ArgumentSchema declares one skill argument.
type ArgumentSchema struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ArgType       `json:"type" yaml:"type"`
	Required    bool          `json:"required" yaml:"required"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	InferFrom   []InferSource `json:"infer_from,omitempty" yaml:"infer_from,omitempty"`
	Default     any           `json:"default,omitempty" yaml:"default,omitempty"`
	// Values lists the allowed values for enum arguments.
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// AutoTriggerConfig controls unattended execution of a skill.
type AutoTriggerConfig struct {
	Enabled                bool              `json:"enabled" yaml:"enabled"`
	ConfidenceThreshold    float64           `json:"confidence_threshold" yaml:"confidence_threshold"`
	ConfirmBeforeExecution bool              `json:"confirm_before_execution" yaml:"confirm_before_execution"`
	SafetyChecks           []SafetyCheckSpec `json:"safety_checks,omitempty" yaml:"safety_checks,omitempty"`
}

// SafetyCheckSpec declares a custom pre-execution check. In YAML it is
// a mapping whose "check" key selects the check type, "message"
// overrides the blocking message, and every other key is a parameter.
type SafetyCheckSpec struct {
	CheckType string         `json:"check" yaml:"check"`
	Params    map[string]any `json:"params,omitempty" yaml:"-"`
	Message   string         `json:"message,omitempty" yaml:"message"`
}

// UnmarshalYAML folds unrecognized keys into Params.
func (s *SafetyCheckSpec) UnmarshalYAML(unmarshal func(any) error) error {
	raw := map[string]any{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	if v, ok := raw["check"].(string); ok {
		s.CheckType = v
	}
	if v, ok := raw["message"].(string); ok {
		s.Message = v
	}

	s.Params = make(map[string]any)
	for k, v := range raw {
		if k == "check" || k == "message" {
			continue
		}
		s.Params[k] = v
	}
	return nil
}

// RequiredArguments returns the schemas of all required arguments.
func (s *Skill) RequiredArguments() []ArgumentSchema {
	var req []ArgumentSchema
	for _, arg := range s.Arguments {
		if arg.Required {
			req = append(req, arg)
		}
	}
	return req
}

// Argument returns the schema for the named argument, if declared.
func (s *Skill) Argument(name string) (ArgumentSchema, bool) {
	for _, arg := range s.Arguments {
		if arg.Name == name {
			return arg, true
		}
	}
	return ArgumentSchema{}, false
}

// String implements fmt.Stringer.
func (s *Skill) String() string {
	return fmt.Sprintf("%s (v%s, %s/%s)", s.Name, s.Version, s.Category, s.Complexity)
}
