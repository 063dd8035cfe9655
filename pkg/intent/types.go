// Package intent matches free-text queries against registered skills.
// It runs keyword, regex-pattern, and primary-template strategies,
// merges the candidates, applies bounded confidence boosts, and infers
// skill arguments for the top candidates.
package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/jguan/autoskill/pkg/project"
	"github.com/jguan/autoskill/pkg/skill"
)

// MatchSource identifies which strategy produced a match.
type MatchSource string

const (
	MatchKeyword MatchSource = "keyword"
	MatchPattern MatchSource = "pattern"
	MatchPrimary MatchSource = "primary"
	MatchContext MatchSource = "context"
)

// SkillMatch is one candidate produced by the matcher for a query.
type SkillMatch struct {
	Skill      *skill.Skill   `json:"-"`
	SkillName  string         `json:"skill"`
	Confidence float64        `json:"confidence"`
	Source     MatchSource    `json:"source"`
	Arguments  map[string]any `json:"arguments,omitempty"`

	// Explanation is the append-only trail of how the score was built.
	Explanation []string `json:"explanation,omitempty"`

	// BaseConfidence is the pre-boost stage confidence.
	BaseConfidence float64 `json:"base_confidence"`
}

// Explain appends a note to the explanation trail.
func (m *SkillMatch) Explain(note string) {
	m.Explanation = append(m.Explanation, note)
}

// EligibleForAutoExecution reports whether this match may run
// unattended: auto-trigger enabled, confidence at or above the skill's
// threshold, every required argument inferred, and no confirmation
// requirement. Confidence alone never overrides an explicit
// confirmation requirement.
func (m *SkillMatch) EligibleForAutoExecution() bool {
	at := m.Skill.AutoTrigger
	if !at.Enabled {
		return false
	}
	if m.Confidence < at.ConfidenceThreshold {
		return false
	}
	for _, arg := range m.Skill.RequiredArguments() {
		if _, ok := m.Arguments[arg.Name]; !ok {
			return false
		}
	}
	if at.ConfirmBeforeExecution {
		return false
	}
	return true
}

// FormatCommand renders the match as an invocable command string.
func (m *SkillMatch) FormatCommand() string {
	var sb strings.Builder
	sb.WriteString("autoskill run ")
	sb.WriteString(m.Skill.Name)

	for _, arg := range m.Skill.Arguments {
		value, ok := m.Arguments[arg.Name]
		if !ok {
			continue
		}
		if b, isBool := value.(bool); isBool {
			if b {
				sb.WriteString(" --" + arg.Name)
			}
			continue
		}
		s := fmt.Sprintf("%v", value)
		if strings.ContainsAny(s, " \t") {
			s = fmt.Sprintf("%q", s)
		}
		sb.WriteString(" --" + arg.Name + " " + s)
	}
	return sb.String()
}

// MatchResult is the ranked outcome of one Match call.
type MatchResult struct {
	Query   string           `json:"query"`
	Matches []*SkillMatch    `json:"matches"`
	Context *project.Context `json:"-"`
	Elapsed time.Duration    `json:"elapsed"`
}

// TopMatch returns the highest-confidence match, or nil.
func (r *MatchResult) TopMatch() *SkillMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return r.Matches[0]
}

// HighConfidence reports whether the top match scored at least 0.85.
func (r *MatchResult) HighConfidence() bool {
	top := r.TopMatch()
	return top != nil && top.Confidence >= 0.85
}

// FormatSuggestions renders the ranked matches for display. The result
// is never empty: with no matches it reports that fact.
func (r *MatchResult) FormatSuggestions() string {
	if len(r.Matches) == 0 {
		return "No matching skills found for your query."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Intent detection results (%d matches):\n\n", len(r.Matches))

	for i, m := range r.Matches {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, m.FormatCommand())
		fmt.Fprintf(&sb, "   confidence: %.0f%% | source: %s\n", m.Confidence*100, m.Source)
		fmt.Fprintf(&sb, "   %s\n", m.Skill.Description)
		if len(m.Explanation) > 0 {
			fmt.Fprintf(&sb, "   %s\n", strings.Join(m.Explanation, " | "))
		}
		sb.WriteString("\n")
	}

	if top := r.TopMatch(); top != nil && top.EligibleForAutoExecution() {
		sb.WriteString("Top match is eligible for auto-execution.")
	} else {
		sb.WriteString("Run the printed command to execute a suggestion.")
	}
	return sb.String()
}
