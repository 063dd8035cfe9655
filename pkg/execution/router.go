package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jguan/autoskill/pkg/infra/eventbus"
	"github.com/jguan/autoskill/pkg/infra/logger"
	"github.com/jguan/autoskill/pkg/intent"
	"github.com/jguan/autoskill/pkg/project"
)

// Executor runs a resolved skill. Failures come back as errors and are
// absorbed into a non-success result by the router; they never escape
// ExecuteOrSuggest.
type Executor interface {
	Execute(ctx context.Context, match *intent.SkillMatch) (output string, err error)
}

// SimulatedExecutor renders what a real execution would do without
// touching anything. It is the default executor.
type SimulatedExecutor struct{}

func (SimulatedExecutor) Execute(_ context.Context, match *intent.SkillMatch) (string, error) {
	sk := match.Skill

	lines := []string{
		fmt.Sprintf("Executing: %s", sk.DisplayName),
		fmt.Sprintf("Description: %s", sk.Description),
		"",
	}

	if len(match.Arguments) > 0 {
		names := make([]string, 0, len(match.Arguments))
		for name := range match.Arguments {
			names = append(names, name)
		}
		sort.Strings(names)

		lines = append(lines, "Arguments:")
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("  - %s: %v", name, match.Arguments[name]))
		}
		lines = append(lines, "")
	}

	if len(sk.Services) > 0 {
		lines = append(lines, fmt.Sprintf("Services: %s", strings.Join(sk.Services, ", ")))
	}
	if len(sk.Personas) > 0 {
		lines = append(lines, fmt.Sprintf("Personas: %s", strings.Join(sk.Personas, ", ")))
	}

	lines = append(lines, "", "Execution completed successfully")
	return strings.Join(lines, "\n"), nil
}

// Router drives one query through match, eligibility, safety, and
// execution. It always returns a structured result; internal faults
// become non-success results, never panics or escaped errors.
type Router struct {
	matcher   *intent.Matcher
	validator *SafetyValidator
	learner   *LearningStore
	executor  Executor
	history   *HistoryStore
	bus       eventbus.EventBus
	log       *slog.Logger
}

type RouterOption func(*Router)

// WithValidator replaces the default safety validator.
func WithValidator(v *SafetyValidator) RouterOption {
	return func(r *Router) { r.validator = v }
}

// WithExecutor replaces the simulated executor with a real one.
func WithExecutor(e Executor) RouterOption {
	return func(r *Router) { r.executor = e }
}

// WithHistory records every invocation in the given audit store.
func WithHistory(h *HistoryStore) RouterOption {
	return func(r *Router) { r.history = h }
}

// WithEventBus publishes execution lifecycle events on the bus.
func WithEventBus(bus eventbus.EventBus) RouterOption {
	return func(r *Router) { r.bus = bus }
}

// NewRouter creates a router over a matcher and learning store.
func NewRouter(matcher *intent.Matcher, learner *LearningStore, opts ...RouterOption) *Router {
	r := &Router{
		matcher:   matcher,
		validator: NewSafetyValidator("."),
		learner:   learner,
		executor:  SimulatedExecutor{},
		log:       logger.Default().With("component", "router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Learner exposes the router's learning store.
func (r *Router) Learner() *LearningStore {
	return r.learner
}

// ExecuteOrSuggest routes a query: auto-execute the top match when it
// is eligible and safe, otherwise return ranked suggestions. projCtx
// may be nil, in which case the matcher analyzes a fresh one.
func (r *Router) ExecuteOrSuggest(ctx context.Context, query string, projCtx *project.Context, dryRun bool) *ExecutionResult {
	start := time.Now()
	resultID := uuid.New().String()

	matchResult, err := r.matcher.Match(query, projCtx)
	if err != nil || len(matchResult.Matches) == 0 {
		if err != nil {
			r.log.Warn("match failed", "query", query, "error", err)
		}
		return r.finish(ctx, start, &ExecutionResult{
			ID:          resultID,
			Query:       query,
			Executed:    false,
			Suggestions: "No matching skills found for your query.",
		})
	}

	topMatch := matchResult.TopMatch()
	projCtx = matchResult.Context

	if !topMatch.EligibleForAutoExecution() {
		return r.finish(ctx, start, &ExecutionResult{
			ID:          resultID,
			Query:       query,
			Executed:    false,
			Suggestions: matchResult.FormatSuggestions(),
		})
	}

	safety := r.validator.Validate(topMatch, projCtx)
	if !safety.Safe {
		r.publish(&Event{
			EventType:      EventExecutionBlocked,
			Query:          query,
			SkillName:      topMatch.SkillName,
			Confidence:     topMatch.Confidence,
			Warning:        safety.Warning,
			EventTimestamp: time.Now(),
			ResultID:       resultID,
		})
		return r.finish(ctx, start, &ExecutionResult{
			ID:          resultID,
			Query:       query,
			Executed:    false,
			Suggestions: matchResult.FormatSuggestions(),
			Warning:     safety.Warning,
		})
	}

	var result *ExecutionResult
	if dryRun {
		result = &ExecutionResult{
			ID:            resultID,
			Query:         query,
			Executed:      false,
			Success:       true,
			Output:        fmt.Sprintf("[DRY RUN] Would execute: %s", topMatch.FormatCommand()),
			SkillUsed:     topMatch.SkillName,
			ArgumentsUsed: topMatch.Arguments,
		}
	} else {
		result = r.executeSkill(ctx, resultID, query, topMatch, dryRun)
	}

	if result.Executed && r.learner != nil {
		r.learner.Track(query, topMatch, result)
	}

	if safety.HasWarnings() {
		if result.Output != "" {
			result.Output += "\n\n" + safety.FormatWarnings()
		} else {
			result.Output = safety.FormatWarnings()
		}
	}

	return r.finish(ctx, start, result)
}

func (r *Router) executeSkill(ctx context.Context, resultID, query string, match *intent.SkillMatch, dryRun bool) *ExecutionResult {
	r.publish(&Event{
		EventType:      EventExecutionStarted,
		Query:          query,
		SkillName:      match.SkillName,
		Arguments:      match.Arguments,
		Confidence:     match.Confidence,
		DryRun:         dryRun,
		EventTimestamp: time.Now(),
		ResultID:       resultID,
	})

	output, err := r.executor.Execute(ctx, match)
	result := &ExecutionResult{
		ID:            resultID,
		Query:         query,
		Executed:      true,
		Success:       err == nil,
		Output:        output,
		SkillUsed:     match.SkillName,
		ArgumentsUsed: match.Arguments,
	}

	eventType := EventExecutionCompleted
	if err != nil {
		eventType = EventExecutionFailed
		result.Output = err.Error()
		r.log.Warn("skill execution failed", "skill", match.SkillName, "error", err)
	}

	r.publish(&Event{
		EventType:      eventType,
		Query:          query,
		SkillName:      match.SkillName,
		Arguments:      match.Arguments,
		Confidence:     match.Confidence,
		EventTimestamp: time.Now(),
		ResultID:       resultID,
	})

	return result
}

// finish stamps elapsed time and records the invocation, regardless of
// which branch produced the result.
func (r *Router) finish(ctx context.Context, start time.Time, result *ExecutionResult) *ExecutionResult {
	result.Elapsed = time.Since(start)

	if r.history != nil {
		if err := r.history.Record(ctx, result); err != nil {
			r.log.Warn("failed to record execution history", "error", err)
		}
	}
	return result
}

func (r *Router) publish(event *Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(event); err != nil {
		r.log.Debug("failed to publish execution event", "type", event.EventType, "error", err)
	}
}
