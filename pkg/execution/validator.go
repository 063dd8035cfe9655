package execution

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/jguan/autoskill/pkg/intent"
	"github.com/jguan/autoskill/pkg/project"
	"github.com/jguan/autoskill/pkg/skill"
)

// destructiveKeywords flags skills that delete or rewrite state; such
// skills never auto-execute on main/master.
var destructiveKeywords = []string{
	"delete", "remove", "cleanup", "reset", "drop",
	"destroy", "clear", "purge", "wipe",
}

// fileModKeywords flags skills that may write to the filesystem.
var fileModKeywords = []string{
	"write", "create", "update", "modify", "edit",
	"generate", "build", "compile",
}

const minFreeDiskMB = 100

// SafetyValidator runs pre-execution checks in fixed order, stopping
// at the first hard block. Soft findings accumulate as warnings.
type SafetyValidator struct {
	workDir   string
	minFreeMB int

	// diskFree is swappable for tests.
	diskFree func(path string) (uint64, error)
}

// ValidatorOption configures a SafetyValidator.
type ValidatorOption func(*SafetyValidator)

// WithDiskFloor overrides the minimum free disk required before a
// file-modifying skill may run. Values below one are ignored.
func WithDiskFloor(mb int) ValidatorOption {
	return func(v *SafetyValidator) {
		if mb > 0 {
			v.minFreeMB = mb
		}
	}
}

// NewSafetyValidator creates a validator checking disk space under
// workDir (the current working volume).
func NewSafetyValidator(workDir string, opts ...ValidatorOption) *SafetyValidator {
	v := &SafetyValidator{
		workDir:   workDir,
		minFreeMB: minFreeDiskMB,
		diskFree:  diskFreeBytes,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func diskFreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// Validate runs all safety checks for a candidate execution.
func (v *SafetyValidator) Validate(match *intent.SkillMatch, ctx *project.Context) SafetyResult {
	var warnings []string
	var checks []string

	// Destructive operations are refused outright on main/master.
	if isDestructive(match.Skill) {
		checks = append(checks, "destructive_operation")

		if ctx.Git.OnMainBranch() {
			return SafetyResult{
				Safe: false,
				Warning: "Destructive operation blocked on main/master branch. " +
					"Switch to a feature branch first.",
				ChecksPerformed: checks,
			}
		}
	}

	// Service availability is not probed yet; the check records which
	// services the skill declares so a future prober can fill it in.
	if len(match.Skill.Services) > 0 {
		checks = append(checks, "dependencies")
		if missing := v.missingServices(match.Skill); len(missing) > 0 {
			warnings = append(warnings,
				fmt.Sprintf("Services may not be available: %s", strings.Join(missing, ", ")))
		}
	}

	if mayModifyFiles(match.Skill) {
		checks = append(checks, "disk_space")
		if !v.hasDiskSpace(v.minFreeMB) {
			return SafetyResult{
				Safe:            false,
				Warning:         fmt.Sprintf("Insufficient disk space. At least %dMB required.", v.minFreeMB),
				ChecksPerformed: checks,
			}
		}
	}

	if ctx.Git.HasRepo && mayModifyFiles(match.Skill) {
		checks = append(checks, "file_conflicts")
		if ctx.Git.UncommittedChanges > 10 {
			warnings = append(warnings,
				fmt.Sprintf("Many uncommitted changes (%d). Consider committing or stashing first.",
					ctx.Git.UncommittedChanges))
		}
	}

	for _, spec := range match.Skill.AutoTrigger.SafetyChecks {
		checks = append(checks, "custom:"+spec.CheckType)
		if result := v.runCustomCheck(spec, ctx); !result.Safe {
			result.ChecksPerformed = checks
			return result
		}
	}

	return SafetyResult{
		Safe:            true,
		Warnings:        warnings,
		ChecksPerformed: checks,
	}
}

func isDestructive(sk *skill.Skill) bool {
	return containsAnyKeyword(sk, destructiveKeywords)
}

func mayModifyFiles(sk *skill.Skill) bool {
	return containsAnyKeyword(sk, fileModKeywords)
}

func containsAnyKeyword(sk *skill.Skill, keywords []string) bool {
	text := strings.ToLower(sk.Name + " " + sk.Description)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// missingServices is a stub: nothing is probed, nothing is missing.
func (v *SafetyValidator) missingServices(sk *skill.Skill) []string {
	return nil
}

func (v *SafetyValidator) hasDiskSpace(minimumMB int) bool {
	free, err := v.diskFree(v.workDir)
	if err != nil {
		// Cannot check; assume sufficient rather than block.
		return true
	}
	return free >= uint64(minimumMB)*1024*1024
}

// runCustomCheck dispatches a declared safety check by type. Unknown
// types pass so newer skill definitions load on older binaries.
func (v *SafetyValidator) runCustomCheck(spec skill.SafetyCheckSpec, ctx *project.Context) SafetyResult {
	switch spec.CheckType {
	case "git_branch":
		return v.checkGitBranch(spec, ctx)
	case "disk_space":
		return v.checkDiskSpace(spec)
	case "no_conflicts":
		return v.checkNoConflicts(spec, ctx)
	}
	return SafetyResult{Safe: true}
}

func (v *SafetyValidator) checkGitBranch(spec skill.SafetyCheckSpec, ctx *project.Context) SafetyResult {
	if !ctx.Git.HasRepo {
		return SafetyResult{Safe: true}
	}

	allowed := stringSlice(spec.Params["allowed"])
	if len(allowed) == 0 {
		return SafetyResult{Safe: true}
	}

	current := ctx.Git.CurrentBranch
	for _, pattern := range allowed {
		if matchesBranchPattern(current, pattern) {
			return SafetyResult{Safe: true}
		}
	}

	message := spec.Message
	if message == "" {
		message = fmt.Sprintf("Branch %q not in allowed list: %s", current, strings.Join(allowed, ", "))
	}
	return SafetyResult{Safe: false, Warning: message}
}

func (v *SafetyValidator) checkDiskSpace(spec skill.SafetyCheckSpec) SafetyResult {
	minimum := intValue(spec.Params["minimum_mb"], v.minFreeMB)

	if v.hasDiskSpace(minimum) {
		return SafetyResult{Safe: true}
	}

	message := spec.Message
	if message == "" {
		message = fmt.Sprintf("Requires at least %dMB free space", minimum)
	}
	return SafetyResult{Safe: false, Warning: message}
}

func (v *SafetyValidator) checkNoConflicts(spec skill.SafetyCheckSpec, ctx *project.Context) SafetyResult {
	if !ctx.Git.HasRepo || ctx.Git.UncommittedChanges == 0 {
		return SafetyResult{Safe: true}
	}

	files := stringSlice(spec.Params["files"])
	if len(files) == 0 {
		return SafetyResult{Safe: true}
	}

	// Untracked entries (??) do not count as conflicts.
	modified := make(map[string]bool)
	for _, line := range strings.Split(ctx.Git.Status, "\n") {
		line = strings.TrimRight(line, " ")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "??") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			modified[fields[len(fields)-1]] = true
		}
	}

	var conflicts []string
	for _, f := range files {
		if modified[f] {
			conflicts = append(conflicts, f)
		}
	}
	if len(conflicts) > 0 {
		message := spec.Message
		if message == "" {
			message = fmt.Sprintf("Modified files conflict: %s", strings.Join(conflicts, ", "))
		}
		return SafetyResult{Safe: false, Warning: message}
	}

	return SafetyResult{Safe: true}
}

// matchesBranchPattern supports exact names plus prefix/* and */suffix
// wildcards.
func matchesBranchPattern(branch, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return branch == pattern
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(branch, strings.TrimSuffix(pattern, "/*"))
	}
	if strings.HasPrefix(pattern, "*/") {
		return strings.HasSuffix(branch, strings.TrimPrefix(pattern, "*/"))
	}
	return false
}

func stringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}

func intValue(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}
