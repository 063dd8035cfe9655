package execution

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jguan/autoskill/pkg/domain"
	"github.com/jguan/autoskill/pkg/infra/logger"
	"github.com/jguan/autoskill/pkg/intent"
)

const (
	maxRecentSkills   = 10
	maxQueryPatterns  = 10
	recentBoostWindow = 5
	maxLearningBoost  = 0.10
	recentUsageBoost  = 0.05
	successRateBoost  = 0.03
	queryPatternBoost = 0.02
	boostSuccessFloor = 0.90
)

// SkillUsage holds lifetime counters for one skill.
type SkillUsage struct {
	Count        int `json:"count"`
	SuccessCount int `json:"success_count"`
}

// LearningData is the persistent aggregate behind the learning store.
// It is a single JSON document; unknown fields in an older or newer
// file are ignored on load.
type LearningData struct {
	// SkillUsage maps skill name to lifetime counters.
	SkillUsage map[string]*SkillUsage `json:"skill_usage"`
	// ArgumentPatterns maps "skill.argument" to value frequencies.
	ArgumentPatterns map[string]map[string]int `json:"argument_patterns"`
	// RecentSkills is most-recent-first, bounded, without duplicates.
	RecentSkills []string `json:"recent_skills"`
	// QueryPatterns maps skill name to successful query exemplars.
	QueryPatterns map[string][]string `json:"query_patterns"`
}

// NewLearningData returns an empty aggregate with all maps allocated.
func NewLearningData() *LearningData {
	return &LearningData{
		SkillUsage:       make(map[string]*SkillUsage),
		ArgumentPatterns: make(map[string]map[string]int),
		QueryPatterns:    make(map[string][]string),
	}
}

// SuccessRate returns successes over total for a skill, 0 when the
// skill was never tracked.
func (d *LearningData) SuccessRate(skillName string) float64 {
	usage, ok := d.SkillUsage[skillName]
	if !ok || usage.Count == 0 {
		return 0
	}
	return float64(usage.SuccessCount) / float64(usage.Count)
}

// MostCommonArgument returns the most frequently tracked value for a
// skill argument. Ties resolve to the lexicographically smallest value
// so the answer is stable across runs.
func (d *LearningData) MostCommonArgument(skillName, argName string) (string, bool) {
	counts := d.ArgumentPatterns[skillName+"."+argName]
	if len(counts) == 0 {
		return "", false
	}

	var best string
	bestCount := -1
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best = value
			bestCount = count
		}
	}
	return best, true
}

// PushRecent promotes a skill to the front of the recency list,
// removing any previous entry and truncating to the bound.
func (d *LearningData) PushRecent(skillName string) {
	filtered := make([]string, 0, len(d.RecentSkills)+1)
	filtered = append(filtered, skillName)
	for _, name := range d.RecentSkills {
		if name != skillName {
			filtered = append(filtered, name)
		}
	}
	if len(filtered) > maxRecentSkills {
		filtered = filtered[:maxRecentSkills]
	}
	d.RecentSkills = filtered
}

// Stats summarizes the aggregate for display.
type Stats struct {
	TotalSkillsTracked    int    `json:"total_skills_tracked"`
	TotalExecutions       int    `json:"total_executions"`
	MostUsedSkill         string `json:"most_used_skill,omitempty"`
	RecentSkillsCount     int    `json:"recent_skills_count"`
	ArgumentPatternsCount int    `json:"argument_patterns_count"`
}

// LearningStore owns one storage path and the in-memory aggregate
// loaded from it. It is not safe for concurrent use; callers wanting
// shared state pass the same instance.
type LearningStore struct {
	path string
	data *LearningData
	log  *slog.Logger
}

// NewLearningStore creates a store persisting to path. Nothing is
// read until first access.
func NewLearningStore(path string) *LearningStore {
	return &LearningStore{
		path: path,
		log:  logger.Default().With("component", "learning"),
	}
}

// Load returns the in-memory aggregate, reading it from storage on
// first access. A missing or corrupt file yields a fresh empty
// aggregate rather than an error.
func (s *LearningStore) Load() *LearningData {
	if s.data != nil {
		return s.data
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("learning data unreadable, starting fresh", "path", s.path, "error", err)
		}
		s.data = NewLearningData()
		return s.data
	}

	data := NewLearningData()
	if err := json.Unmarshal(raw, data); err != nil {
		s.log.Warn("learning data corrupt, starting fresh", "path", s.path, "error", err)
		s.data = NewLearningData()
		return s.data
	}

	// Old files may carry null maps.
	if data.SkillUsage == nil {
		data.SkillUsage = make(map[string]*SkillUsage)
	}
	if data.ArgumentPatterns == nil {
		data.ArgumentPatterns = make(map[string]map[string]int)
	}
	if data.QueryPatterns == nil {
		data.QueryPatterns = make(map[string][]string)
	}

	s.data = data
	return s.data
}

// Save writes the aggregate to storage and adopts it as the current
// in-memory state.
func (s *LearningStore) Save(data *LearningData) error {
	s.data = data

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return domain.WrapDomainError(err, "learning", domain.ErrCodeLearningSaveFailed, "encode learning data")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.WrapDomainError(err, "learning", domain.ErrCodeLearningSaveFailed, "create learning directory")
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return domain.WrapDomainError(err, "learning", domain.ErrCodeLearningSaveFailed, "write learning data")
	}
	return nil
}

// Track records one executed match. The write failure, if any, is
// logged; the in-memory aggregate is updated either way.
func (s *LearningStore) Track(query string, match *intent.SkillMatch, result *ExecutionResult) {
	data := s.Load()
	skillName := match.SkillName

	usage, ok := data.SkillUsage[skillName]
	if !ok {
		usage = &SkillUsage{}
		data.SkillUsage[skillName] = usage
	}
	usage.Count++
	if result.Success {
		usage.SuccessCount++
	}

	if result.Success {
		patterns := data.QueryPatterns[skillName]
		if !containsString(patterns, query) && len(patterns) < maxQueryPatterns {
			data.QueryPatterns[skillName] = append(patterns, query)
		}
	}

	for argName, argValue := range match.Arguments {
		key := skillName + "." + argName
		if data.ArgumentPatterns[key] == nil {
			data.ArgumentPatterns[key] = make(map[string]int)
		}
		data.ArgumentPatterns[key][fmt.Sprintf("%v", argValue)]++
	}

	data.PushRecent(skillName)

	if err := s.Save(data); err != nil {
		s.log.Warn("failed to save learning data", "path", s.path, "error", err)
	}
}

// GetRecent returns up to limit recently used skill names, most
// recent first.
func (s *LearningStore) GetRecent(limit int) []string {
	recent := s.Load().RecentSkills
	if limit < len(recent) {
		recent = recent[:limit]
	}
	return append([]string(nil), recent...)
}

// GetCommonArgument returns the most frequently used value for a
// skill argument.
func (s *LearningStore) GetCommonArgument(skillName, argName string) (string, bool) {
	return s.Load().MostCommonArgument(skillName, argName)
}

// GetSuccessRate returns the skill's lifetime success rate in [0,1].
func (s *LearningStore) GetSuccessRate(skillName string) float64 {
	return s.Load().SuccessRate(skillName)
}

// CalculateBoost computes the usage-derived confidence boost for a
// skill and query, in [0, 0.10]. The matcher does not consume this
// yet; it is exposed for a future ranking hook.
func (s *LearningStore) CalculateBoost(skillName, query string) float64 {
	data := s.Load()
	boost := 0.0

	if containsString(data.RecentSkills[:min(recentBoostWindow, len(data.RecentSkills))], skillName) {
		boost += recentUsageBoost
	}

	if data.SuccessRate(skillName) > boostSuccessFloor {
		boost += successRateBoost
	}

	queryLower := strings.ToLower(query)
	for _, pattern := range data.QueryPatterns[skillName] {
		patternLower := strings.ToLower(pattern)
		if strings.Contains(queryLower, patternLower) || strings.Contains(patternLower, queryLower) {
			boost += queryPatternBoost
			break
		}
	}

	if boost > maxLearningBoost {
		boost = maxLearningBoost
	}
	return boost
}

// Reset discards all learning data and persists the empty aggregate.
func (s *LearningStore) Reset() error {
	s.data = NewLearningData()
	return s.Save(s.data)
}

// GetStats summarizes the aggregate.
func (s *LearningStore) GetStats() Stats {
	data := s.Load()

	total := 0
	mostUsed := ""
	mostUsedCount := -1
	for name, usage := range data.SkillUsage {
		total += usage.Count
		if usage.Count > mostUsedCount || (usage.Count == mostUsedCount && name < mostUsed) {
			mostUsed = name
			mostUsedCount = usage.Count
		}
	}

	return Stats{
		TotalSkillsTracked:    len(data.SkillUsage),
		TotalExecutions:       total,
		MostUsedSkill:         mostUsed,
		RecentSkillsCount:     len(data.RecentSkills),
		ArgumentPatternsCount: len(data.ArgumentPatterns),
	}
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
