package skill

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// skillFrontMatter mirrors the YAML front-matter of a SKILL.md file.
// The Markdown body below the front-matter is opaque to the matcher
// and is not retained.
type skillFrontMatter struct {
	Name        string            `yaml:"name"`
	DisplayName string            `yaml:"display_name"`
	Description string            `yaml:"description"`
	Version     string            `yaml:"version"`
	Category    string            `yaml:"category"`
	Complexity  string            `yaml:"complexity"`
	Intents     IntentSpec        `yaml:"intents"`
	Arguments   []ArgumentSchema  `yaml:"arguments"`
	AutoTrigger *autoTriggerYAML  `yaml:"auto_trigger"`
	Services    []string          `yaml:"services"`
	Personas    []string          `yaml:"personas"`
	Author      string            `yaml:"author"`
	Tags        []string          `yaml:"tags"`
}

// autoTriggerYAML uses pointers so absent fields fall back to the
// conservative defaults (disabled, 0.85 threshold, confirm required).
type autoTriggerYAML struct {
	Enabled                *bool             `yaml:"enabled"`
	ConfidenceThreshold    *float64          `yaml:"confidence_threshold"`
	ConfirmBeforeExecution *bool             `yaml:"confirm_before_execution"`
	SafetyChecks           []SafetyCheckSpec `yaml:"safety_checks"`
}

// ParseSkillFile parses a Markdown document with YAML front-matter into
// a Skill. The format is:
//
//	---
//	name: skill-name
//	display_name: "Skill Name"
//	intents:
//	  primary: ["do {thing}"]
//	  keywords: [do, thing]
//	...
//	---
//
//	Markdown body...
func ParseSkillFile(content string) (*Skill, error) {
	if !strings.HasPrefix(content, "---") {
		return nil, ErrNoFrontMatter
	}

	rest := content[3:]
	endIdx := strings.Index(rest, "\n---")
	if endIdx < 0 {
		return nil, ErrNoFrontMatter
	}
	frontMatterStr := rest[:endIdx]

	var fm skillFrontMatter
	dec := yaml.NewDecoder(bytes.NewBufferString(frontMatterStr))
	if err := dec.Decode(&fm); err != nil {
		return nil, ErrSkillInvalid.WithCause(err)
	}

	if fm.Name == "" {
		return nil, ErrSkillInvalid.WithDetails("field", "name")
	}

	sk := &Skill{
		Name:        fm.Name,
		DisplayName: fm.DisplayName,
		Description: fm.Description,
		Version:     fm.Version,
		Category:    fm.Category,
		Complexity:  fm.Complexity,
		Intents:     fm.Intents,
		Arguments:   fm.Arguments,
		AutoTrigger: defaultAutoTrigger(),
		Services:    fm.Services,
		Personas:    fm.Personas,
		Author:      fm.Author,
		Tags:        fm.Tags,
	}

	if sk.DisplayName == "" {
		sk.DisplayName = sk.Name
	}
	if sk.Version == "" {
		sk.Version = "1.0.0"
	}
	if sk.Category == "" {
		sk.Category = CategoryUtility
	}
	if sk.Complexity == "" {
		sk.Complexity = ComplexityStandard
	}

	if at := fm.AutoTrigger; at != nil {
		if at.Enabled != nil {
			sk.AutoTrigger.Enabled = *at.Enabled
		}
		if at.ConfidenceThreshold != nil {
			sk.AutoTrigger.ConfidenceThreshold = *at.ConfidenceThreshold
		}
		if at.ConfirmBeforeExecution != nil {
			sk.AutoTrigger.ConfirmBeforeExecution = *at.ConfirmBeforeExecution
		}
		sk.AutoTrigger.SafetyChecks = at.SafetyChecks
	}

	for i := range sk.Arguments {
		if sk.Arguments[i].Type == "" {
			sk.Arguments[i].Type = TypeString
		}
	}

	return sk, nil
}

func defaultAutoTrigger() AutoTriggerConfig {
	return AutoTriggerConfig{
		Enabled:                false,
		ConfidenceThreshold:    0.85,
		ConfirmBeforeExecution: true,
	}
}
