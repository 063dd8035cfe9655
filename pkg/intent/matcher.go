package intent

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jguan/autoskill/pkg/infra/logger"
	"github.com/jguan/autoskill/pkg/project"
	"github.com/jguan/autoskill/pkg/skill"
)

// Stage confidence scores. Keyword matching alone can never exceed
// keywordMaxConfidence, so a primary-template hit always outranks a
// keyword-only hit for the same skill.
const (
	keywordBaseConfidence = 0.60
	keywordStepConfidence = 0.15
	keywordMaxConfidence  = 0.75
	patternConfidence     = 0.85
	primaryConfidence     = 0.90

	boostStep         = 0.05
	defaultMaxMatches = 3
)

// Matcher runs the multi-strategy matching pipeline over a registry.
type Matcher struct {
	registry   *skill.Registry
	analyzer   project.Analyzer
	inferrer   *Inferrer
	templates  *templateSet
	maxMatches int
	log        *slog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithMaxMatches overrides how many ranked candidates Match returns.
// Values below one are ignored.
func WithMaxMatches(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.maxMatches = n
		}
	}
}

// NewMatcher creates a Matcher. The analyzer may be nil, in which case
// Match falls back to an empty context when none is supplied.
func NewMatcher(registry *skill.Registry, analyzer project.Analyzer, opts ...MatcherOption) *Matcher {
	templates := newTemplateSet()
	m := &Matcher{
		registry:   registry,
		analyzer:   analyzer,
		inferrer:   NewInferrerWithTemplates(templates),
		templates:  templates,
		maxMatches: defaultMaxMatches,
		log:        logger.Default().With("component", "matcher"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Inferrer returns the matcher's argument inferrer.
func (m *Matcher) Inferrer() *Inferrer {
	return m.inferrer
}

// Match matches a query against the registry and returns the top
// candidates ranked by confidence. If ctx is nil a fresh context is
// requested from the analyzer.
func (m *Matcher) Match(query string, ctx *project.Context) (*MatchResult, error) {
	start := time.Now()

	if ctx == nil {
		ctx = m.freshContext()
	}

	candidates := m.mergeCandidates(
		m.matchKeywords(query),
		m.matchPatterns(query),
		m.matchPrimary(query),
	)

	for _, cand := range candidates {
		m.applyBoosts(cand, ctx)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > m.maxMatches {
		candidates = candidates[:m.maxMatches]
	}

	// Full inference supersedes whatever partial argument map the
	// pattern or primary stage produced.
	for _, cand := range candidates {
		cand.Arguments = m.inferrer.Infer(query, cand.Skill, ctx)
	}

	return &MatchResult{
		Query:   query,
		Matches: candidates,
		Context: ctx,
		Elapsed: time.Since(start),
	}, nil
}

func (m *Matcher) freshContext() *project.Context {
	if m.analyzer == nil {
		return &project.Context{ProjectType: project.TypeUnknown}
	}
	ctx, err := m.analyzer.Analyze()
	if err != nil || ctx == nil {
		m.log.Warn("context analysis failed, using empty context", "error", err)
		return &project.Context{ProjectType: project.TypeUnknown}
	}
	return ctx
}

// matchKeywords credits each skill 0.60 on its first keyword hit and
// +0.15 per additional distinct keyword, capped at 0.75.
func (m *Matcher) matchKeywords(query string) []*SkillMatch {
	words := strings.Fields(strings.ToLower(query))

	seen := make(map[string]bool, len(words))
	bySkill := make(map[string]*SkillMatch)
	var order []string

	for _, word := range words {
		if seen[word] {
			continue
		}
		seen[word] = true

		for _, name := range m.registry.SkillsForKeyword(word) {
			if cand, ok := bySkill[name]; ok {
				cand.Confidence = min(cand.Confidence+keywordStepConfidence, keywordMaxConfidence)
				cand.BaseConfidence = cand.Confidence
				cand.Explain("keyword match: " + word)
				continue
			}

			sk, ok := m.registry.Get(name)
			if !ok {
				continue
			}
			cand := &SkillMatch{
				Skill:          sk,
				SkillName:      sk.Name,
				Confidence:     keywordBaseConfidence,
				BaseConfidence: keywordBaseConfidence,
				Source:         MatchKeyword,
				Arguments:      map[string]any{},
			}
			cand.Explain("keyword match: " + word)
			bySkill[name] = cand
			order = append(order, name)
		}
	}

	matches := make([]*SkillMatch, 0, len(order))
	for _, name := range order {
		matches = append(matches, bySkill[name])
	}
	return matches
}

// matchPatterns tries each skill's regex patterns in declared order
// against the raw query; the first matching pattern wins with fixed
// confidence 0.85. Invalid patterns are skipped.
func (m *Matcher) matchPatterns(query string) []*SkillMatch {
	var matches []*SkillMatch

	for _, sk := range m.registry.List() {
		for _, pattern := range sk.Intents.Patterns {
			re, err := m.templates.compilePattern(pattern)
			if err != nil {
				m.log.Debug("skipping invalid pattern", "skill", sk.Name, "pattern", pattern, "error", err)
				continue
			}

			sub := re.FindStringSubmatch(query)
			if sub == nil {
				continue
			}

			cand := &SkillMatch{
				Skill:          sk,
				SkillName:      sk.Name,
				Confidence:     patternConfidence,
				BaseConfidence: patternConfidence,
				Source:         MatchPattern,
				Arguments:      m.extractArguments(sk, re, sub),
			}
			cand.Explain("pattern match: " + pattern)
			matches = append(matches, cand)
			break
		}
	}
	return matches
}

// matchPrimary tries each skill's primary templates in declared order
// against the lowercased query; the first matching template wins with
// fixed confidence 0.90.
func (m *Matcher) matchPrimary(query string) []*SkillMatch {
	queryLower := strings.ToLower(query)
	var matches []*SkillMatch

	for _, sk := range m.registry.List() {
		for _, tmpl := range sk.Intents.Primary {
			re, err := m.templates.compileTemplate(tmpl)
			if err != nil {
				m.log.Debug("skipping invalid template", "skill", sk.Name, "template", tmpl, "error", err)
				continue
			}

			sub := re.FindStringSubmatch(queryLower)
			if sub == nil {
				continue
			}

			cand := &SkillMatch{
				Skill:          sk,
				SkillName:      sk.Name,
				Confidence:     primaryConfidence,
				BaseConfidence: primaryConfidence,
				Source:         MatchPrimary,
				Arguments:      m.extractArguments(sk, re, sub),
			}
			cand.Explain("primary template match: " + tmpl)
			matches = append(matches, cand)
			break
		}
	}
	return matches
}

// extractArguments converts named capture groups into an argument map,
// keeping only groups that correspond to declared arguments so the map
// never carries undeclared names.
func (m *Matcher) extractArguments(sk *skill.Skill, re *regexp.Regexp, sub []string) map[string]any {
	args := make(map[string]any)
	for name, raw := range namedGroups(re, sub) {
		schema, declared := sk.Argument(name)
		if !declared {
			continue
		}
		args[name] = castValue(raw, schema.Type)
	}
	return args
}

// mergeCandidates keeps one candidate per skill across all stages,
// preferring the highest confidence; ties keep the first encountered.
func (m *Matcher) mergeCandidates(lists ...[]*SkillMatch) []*SkillMatch {
	bySkill := make(map[string]*SkillMatch)
	var order []string

	for _, list := range lists {
		for _, cand := range list {
			existing, ok := bySkill[cand.Skill.Name]
			if !ok {
				bySkill[cand.Skill.Name] = cand
				order = append(order, cand.Skill.Name)
				continue
			}
			if cand.Confidence > existing.Confidence {
				bySkill[cand.Skill.Name] = cand
			}
		}
	}

	merged := make([]*SkillMatch, 0, len(order))
	for _, name := range order {
		merged = append(merged, bySkill[name])
	}
	return merged
}

// applyBoosts adds the three bounded boosts in fixed order: context-tag
// intersection, recent usage, and required-argument completeness. The
// final confidence is clamped to 1.0.
func (m *Matcher) applyBoosts(cand *SkillMatch, ctx *project.Context) {
	if intersects(cand.Skill.Intents.Contexts, ctx.ActiveContexts) {
		cand.Confidence += boostStep
		cand.Explain("context boost")
	}

	for _, recent := range ctx.RecentSkills {
		if recent == cand.Skill.Name {
			cand.Confidence += boostStep
			cand.Explain("recent usage boost")
			break
		}
	}

	if required := cand.Skill.RequiredArguments(); len(required) > 0 {
		complete := true
		for _, arg := range required {
			if _, ok := cand.Arguments[arg.Name]; !ok {
				complete = false
				break
			}
		}
		if complete {
			cand.Confidence += boostStep
			cand.Explain("complete arguments")
		}
	}

	if cand.Confidence > 1.0 {
		cand.Confidence = 1.0
	}
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
