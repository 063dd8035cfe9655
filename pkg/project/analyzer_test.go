package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestAnalyze_Structure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	writeFile(t, dir, "settings.toml", "")
	writeFile(t, dir, "README.md", "")

	ctx, err := NewDirAnalyzer(dir).Analyze()
	require.NoError(t, err)

	assert.Len(t, ctx.Structure.SourceDirs, 1)
	assert.Len(t, ctx.Structure.TestDirs, 1)
	assert.Len(t, ctx.Structure.ConfigFiles, 1)
	assert.Equal(t, 2, ctx.Structure.TotalFiles)
	assert.Contains(t, ctx.ActiveContexts, "has_tests")
	assert.Contains(t, ctx.ActiveContexts, "has_config")
}

func TestDetectProjectType(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"python", map[string]string{"pyproject.toml": ""}, TypePython},
		{"javascript", map[string]string{"package.json": "{}"}, TypeJavaScript},
		{"typescript", map[string]string{"package.json": "{}", "tsconfig.json": "{}"}, TypeTypeScript},
		{"mixed", map[string]string{"package.json": "{}", "requirements.txt": ""}, TypeMixed},
		{"go", map[string]string{"go.mod": "module x"}, TypeGo},
		{"unknown", map[string]string{}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			ctx, err := NewDirAnalyzer(dir).Analyze()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ctx.ProjectType)
		})
	}
}

func TestDetectTestingFramework(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"devDependencies": {"vitest": "^1.0.0"}}`)

	ctx, err := NewDirAnalyzer(dir).Analyze()
	require.NoError(t, err)
	assert.Equal(t, "vitest", ctx.Testing.Framework)

	dir = t.TempDir()
	writeFile(t, dir, "pyproject.toml", "")
	ctx, err = NewDirAnalyzer(dir).Analyze()
	require.NoError(t, err)
	assert.Equal(t, "pytest", ctx.Testing.Framework)
}

func TestAnalyze_NoRepo(t *testing.T) {
	ctx, err := NewDirAnalyzer(t.TempDir()).Analyze()
	require.NoError(t, err)
	assert.False(t, ctx.Git.HasRepo)
	assert.False(t, ctx.Git.OnMainBranch())
}

// initRepo creates a repository with one commit on main plus a dirty
// uncommitted file.
func initRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	writeFile(t, dir, "committed.txt", "v1")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("committed.txt")
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	writeFile(t, dir, "dirty.txt", "uncommitted")
	return repo
}

func TestAnalyze_GitSummary(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	ctx, err := NewDirAnalyzer(dir).Analyze()
	require.NoError(t, err)

	assert.True(t, ctx.Git.HasRepo)
	assert.Equal(t, "main", ctx.Git.CurrentBranch)
	assert.Equal(t, "main", ctx.Git.MainBranch)
	assert.True(t, ctx.Git.OnMainBranch())
	assert.GreaterOrEqual(t, ctx.Git.UncommittedChanges, 1)

	require.NotEmpty(t, ctx.Git.RecentCommits)
	assert.Equal(t, "initial commit", ctx.Git.RecentCommits[0].Message)

	assert.Contains(t, ctx.ActiveContexts, "git_repo")
	assert.Contains(t, ctx.ActiveContexts, "dirty_worktree")
}

func TestAnalyze_FeatureBranch(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature/x"),
		Create: true,
	}))

	ctx, err := NewDirAnalyzer(dir).Analyze()
	require.NoError(t, err)

	assert.Equal(t, "feature/x", ctx.Git.CurrentBranch)
	assert.False(t, ctx.Git.OnMainBranch())
}
