package execution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jguan/autoskill/pkg/intent"
	"github.com/jguan/autoskill/pkg/project"
	"github.com/jguan/autoskill/pkg/skill"
)

func matchFor(sk *skill.Skill) *intent.SkillMatch {
	return &intent.SkillMatch{
		Skill:      sk,
		SkillName:  sk.Name,
		Confidence: 0.90,
		Arguments:  map[string]any{},
	}
}

func destructiveSkill() *skill.Skill {
	return &skill.Skill{
		Name:        "cleanup",
		DisplayName: "Cleanup",
		Description: "Clean up temporary files and caches",
	}
}

func fileModSkill() *skill.Skill {
	return &skill.Skill{
		Name:        "scaffold-tests",
		DisplayName: "Scaffold Tests",
		Description: "Generate unit tests for the current package",
	}
}

func gitContext(branch string, uncommitted int, status string) *project.Context {
	return &project.Context{
		Git: project.GitSummary{
			HasRepo:            true,
			CurrentBranch:      branch,
			MainBranch:         "main",
			UncommittedChanges: uncommitted,
			Status:             status,
		},
	}
}

func testValidator(freeBytes uint64, diskErr error) *SafetyValidator {
	v := NewSafetyValidator(".")
	v.diskFree = func(string) (uint64, error) {
		return freeBytes, diskErr
	}
	return v
}

func plentyOfDisk() uint64 { return 10 * 1024 * 1024 * 1024 }

func TestValidate_DestructiveBlockedOnMain(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	for _, branch := range []string{"main", "master"} {
		result := v.Validate(matchFor(destructiveSkill()), gitContext(branch, 0, ""))
		assert.False(t, result.Safe, "branch %s", branch)
		assert.Contains(t, result.Warning, "Destructive operation blocked")
		assert.Contains(t, result.ChecksPerformed, "destructive_operation")
	}
}

func TestValidate_DestructiveAllowedOnFeatureBranch(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	result := v.Validate(matchFor(destructiveSkill()), gitContext("feature/x", 0, ""))
	assert.True(t, result.Safe)
	assert.Empty(t, result.Warning)
}

func TestValidate_DestructiveWithoutRepo(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	result := v.Validate(matchFor(destructiveSkill()), &project.Context{})
	assert.True(t, result.Safe)
}

func TestValidate_DiskSpaceBlocks(t *testing.T) {
	v := testValidator(1024*1024, nil) // 1MB free

	result := v.Validate(matchFor(fileModSkill()), gitContext("feature/x", 0, ""))
	assert.False(t, result.Safe)
	assert.Contains(t, result.Warning, "Insufficient disk space")
	assert.Contains(t, result.ChecksPerformed, "disk_space")
}

func TestValidate_DiskCheckFailureAssumesSufficient(t *testing.T) {
	v := testValidator(0, errors.New("statfs unavailable"))

	result := v.Validate(matchFor(fileModSkill()), gitContext("feature/x", 0, ""))
	assert.True(t, result.Safe)
}

func TestValidate_ManyUncommittedChangesWarns(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	result := v.Validate(matchFor(fileModSkill()), gitContext("feature/x", 14, ""))
	require.True(t, result.Safe)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Many uncommitted changes (14)")
}

func TestValidate_FewUncommittedChangesNoWarn(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	result := v.Validate(matchFor(fileModSkill()), gitContext("feature/x", 3, ""))
	assert.True(t, result.Safe)
	assert.Empty(t, result.Warnings)
}

func TestValidate_CustomGitBranchCheck(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	sk := &skill.Skill{
		Name:        "release-notes",
		Description: "Summarize changes for the release",
		AutoTrigger: skill.AutoTriggerConfig{
			SafetyChecks: []skill.SafetyCheckSpec{
				{CheckType: "git_branch", Params: map[string]any{"allowed": []any{"feature/*"}}},
			},
		},
	}

	blocked := v.Validate(matchFor(sk), gitContext("main", 0, ""))
	assert.False(t, blocked.Safe)
	assert.Contains(t, blocked.Warning, `Branch "main" not in allowed list`)
	assert.Contains(t, blocked.ChecksPerformed, "custom:git_branch")

	allowed := v.Validate(matchFor(sk), gitContext("feature/login", 0, ""))
	assert.True(t, allowed.Safe)
}

func TestValidate_CustomGitBranchCheckMessage(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	sk := &skill.Skill{
		Name:        "release-notes",
		Description: "Summarize changes for the release",
		AutoTrigger: skill.AutoTriggerConfig{
			SafetyChecks: []skill.SafetyCheckSpec{
				{
					CheckType: "git_branch",
					Params:    map[string]any{"allowed": []any{"feature/*"}},
					Message:   "release notes only run on feature branches",
				},
			},
		},
	}

	result := v.Validate(matchFor(sk), gitContext("main", 0, ""))
	assert.False(t, result.Safe)
	assert.Equal(t, "release notes only run on feature branches", result.Warning)
}

func TestValidate_CustomGitBranchWithoutRepoPasses(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	sk := &skill.Skill{
		Name:        "release-notes",
		Description: "Summarize changes for the release",
		AutoTrigger: skill.AutoTriggerConfig{
			SafetyChecks: []skill.SafetyCheckSpec{
				{CheckType: "git_branch", Params: map[string]any{"allowed": []any{"feature/*"}}},
			},
		},
	}

	result := v.Validate(matchFor(sk), &project.Context{})
	assert.True(t, result.Safe)
}

func TestValidate_CustomDiskSpaceCheck(t *testing.T) {
	v := testValidator(200*1024*1024, nil) // 200MB free

	sk := &skill.Skill{
		Name:        "export-report",
		Description: "Export the analysis report",
		AutoTrigger: skill.AutoTriggerConfig{
			SafetyChecks: []skill.SafetyCheckSpec{
				{CheckType: "disk_space", Params: map[string]any{"minimum_mb": 500}},
			},
		},
	}

	result := v.Validate(matchFor(sk), gitContext("feature/x", 0, ""))
	assert.False(t, result.Safe)
	assert.Contains(t, result.Warning, "Requires at least 500MB free space")

	sk.AutoTrigger.SafetyChecks[0].Params["minimum_mb"] = 100
	result = v.Validate(matchFor(sk), gitContext("feature/x", 0, ""))
	assert.True(t, result.Safe)
}

func TestValidate_CustomNoConflictsCheck(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)
	status := " M config.toml\n M pkg/api.go\n?? notes.txt"

	sk := &skill.Skill{
		Name:        "sync-config",
		Description: "Sync configuration across environments",
		AutoTrigger: skill.AutoTriggerConfig{
			SafetyChecks: []skill.SafetyCheckSpec{
				{CheckType: "no_conflicts", Params: map[string]any{"files": []any{"config.toml"}}},
			},
		},
	}

	blocked := v.Validate(matchFor(sk), gitContext("feature/x", 3, status))
	assert.False(t, blocked.Safe)
	assert.Contains(t, blocked.Warning, "config.toml")

	// Untracked files are not conflicts.
	sk.AutoTrigger.SafetyChecks[0].Params["files"] = []any{"notes.txt"}
	result := v.Validate(matchFor(sk), gitContext("feature/x", 3, status))
	assert.True(t, result.Safe)

	// A clean worktree always passes.
	sk.AutoTrigger.SafetyChecks[0].Params["files"] = []any{"config.toml"}
	result = v.Validate(matchFor(sk), gitContext("feature/x", 0, ""))
	assert.True(t, result.Safe)
}

func TestValidate_UnknownCustomCheckPasses(t *testing.T) {
	v := testValidator(plentyOfDisk(), nil)

	sk := &skill.Skill{
		Name:        "summarize",
		Description: "Summarize the repository",
		AutoTrigger: skill.AutoTriggerConfig{
			SafetyChecks: []skill.SafetyCheckSpec{
				{CheckType: "quantum_entanglement", Params: map[string]any{}},
			},
		},
	}

	result := v.Validate(matchFor(sk), gitContext("feature/x", 0, ""))
	assert.True(t, result.Safe)
	assert.Contains(t, result.ChecksPerformed, "custom:quantum_entanglement")
}

func TestMatchesBranchPattern(t *testing.T) {
	tests := []struct {
		branch  string
		pattern string
		want    bool
	}{
		{"main", "main", true},
		{"main", "master", false},
		{"feature/login", "feature/*", true},
		{"bugfix/login", "feature/*", false},
		{"release/dev", "*/dev", true},
		{"release/prod", "*/dev", false},
		{"anything", "mid*dle", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesBranchPattern(tt.branch, tt.pattern),
			"branch %q pattern %q", tt.branch, tt.pattern)
	}
}

func TestFormatWarnings(t *testing.T) {
	empty := SafetyResult{Safe: true}
	assert.False(t, empty.HasWarnings())
	assert.Empty(t, empty.FormatWarnings())

	full := SafetyResult{
		Safe:     false,
		Warning:  "blocked on main",
		Warnings: []string{"many uncommitted changes"},
	}
	assert.True(t, full.HasWarnings())
	formatted := full.FormatWarnings()
	assert.Contains(t, formatted, "Warning: blocked on main")
	assert.Contains(t, formatted, "Warning: many uncommitted changes")
}

func TestValidate_ConfiguredDiskFloor(t *testing.T) {
	// 500MB free clears the default 100MB floor but not a raised one.
	free := uint64(500) * 1024 * 1024

	v := NewSafetyValidator(".", WithDiskFloor(1000))
	v.diskFree = func(string) (uint64, error) { return free, nil }

	result := v.Validate(matchFor(fileModSkill()), gitContext("feature/space", 0, ""))
	assert.False(t, result.Safe)
	assert.Contains(t, result.Warning, "At least 1000MB required.")
	assert.Contains(t, result.ChecksPerformed, "disk_space")

	v = NewSafetyValidator(".")
	v.diskFree = func(string) (uint64, error) { return free, nil }
	result = v.Validate(matchFor(fileModSkill()), gitContext("feature/space", 0, ""))
	assert.True(t, result.Safe)
}

func TestValidate_DiskFloorIgnoresNonPositive(t *testing.T) {
	v := NewSafetyValidator(".", WithDiskFloor(0))
	assert.Equal(t, minFreeDiskMB, v.minFreeMB)
}
