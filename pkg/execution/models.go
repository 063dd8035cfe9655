package execution

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ExecutionResult describes one router invocation. It is scoped to a
// single call and never persisted as-is; the history store keeps its
// own flattened record.
type ExecutionResult struct {
	ID            string         `json:"id"`
	Query         string         `json:"query"`
	Executed      bool           `json:"executed"`
	Success       bool           `json:"success"`
	Output        string         `json:"output,omitempty"`
	Suggestions   string         `json:"suggestions,omitempty"`
	Warning       string         `json:"warning,omitempty"`
	SkillUsed     string         `json:"skill_used,omitempty"`
	ArgumentsUsed map[string]any `json:"arguments_used,omitempty"`
	Elapsed       time.Duration  `json:"elapsed"`
}

// FormatResult renders the result for terminal display.
func (r *ExecutionResult) FormatResult() string {
	if r.Warning != "" {
		return fmt.Sprintf("Warning: %s\n\n%s", r.Warning, r.Suggestions)
	}

	if !r.Executed {
		return r.Suggestions
	}

	if !r.Success {
		return fmt.Sprintf("Execution failed: %s", r.Output)
	}

	header := fmt.Sprintf("Executed: %s", r.SkillUsed)
	if len(r.ArgumentsUsed) > 0 {
		names := make([]string, 0, len(r.ArgumentsUsed))
		for name := range r.ArgumentsUsed {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("--%s %v", name, r.ArgumentsUsed[name]))
		}
		header += " " + strings.Join(parts, " ")
	}

	return fmt.Sprintf("%s\n\n%s", header, r.Output)
}

// SafetyResult is the validator's verdict for one candidate
// execution. A hard block sets Safe=false with Warning; soft findings
// accumulate in Warnings without blocking.
type SafetyResult struct {
	Safe            bool     `json:"safe"`
	Warning         string   `json:"warning,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	ChecksPerformed []string `json:"checks_performed,omitempty"`
}

func (r *SafetyResult) HasWarnings() bool {
	return r.Warning != "" || len(r.Warnings) > 0
}

// FormatWarnings renders the hard warning followed by soft warnings,
// one per line.
func (r *SafetyResult) FormatWarnings() string {
	if !r.HasWarnings() {
		return ""
	}

	lines := make([]string, 0, len(r.Warnings)+1)
	if r.Warning != "" {
		lines = append(lines, "Warning: "+r.Warning)
	}
	for _, w := range r.Warnings {
		lines = append(lines, "Warning: "+w)
	}
	return strings.Join(lines, "\n")
}
