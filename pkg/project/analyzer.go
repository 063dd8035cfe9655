package project

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/jguan/autoskill/pkg/infra/logger"
)

const maxRecentCommits = 5

var sourceDirNames = []string{"src", "lib", "app", "source", "components", "modules", "pkg", "internal", "cmd"}

var testDirNames = []string{"tests", "test", "__tests__", "spec", "specs"}

var configSuffixes = []string{".json", ".toml", ".yaml", ".yml", ".ini", ".cfg"}

// DirAnalyzer analyzes a project rooted at a directory. Git state is
// read through go-git; no subprocesses are spawned.
type DirAnalyzer struct {
	root string
	log  *slog.Logger

	// RecentSkills is copied into the produced Context so the matcher
	// can apply its recent-usage boost. Populated by the caller from
	// the learning store.
	RecentSkills []string
}

// NewDirAnalyzer creates an analyzer for the given root directory.
// An empty root means the current working directory.
func NewDirAnalyzer(root string) *DirAnalyzer {
	if root == "" {
		root, _ = os.Getwd()
	}
	return &DirAnalyzer{
		root: root,
		log:  logger.Default().With("component", "project_analyzer"),
	}
}

// Analyze builds a fresh snapshot of the project.
func (a *DirAnalyzer) Analyze() (*Context, error) {
	structure := a.analyzeStructure()
	gitSummary := a.analyzeGit()
	deps := a.analyzeDependencies()
	testing := a.detectTestingFramework(deps, structure)
	projectType := a.detectProjectType(deps)

	ctx := &Context{
		ProjectType:    projectType,
		Structure:      structure,
		Git:            gitSummary,
		Dependencies:   deps,
		Testing:        testing,
		ActiveContexts: a.activeContexts(structure, gitSummary, testing),
		RecentSkills:   a.RecentSkills,
	}
	return ctx, nil
}

func (a *DirAnalyzer) analyzeStructure() FileStructure {
	structure := FileStructure{RootDir: a.root}

	entries, err := os.ReadDir(a.root)
	if err != nil {
		a.log.Warn("cannot read project root", "root", a.root, "error", err)
		return structure
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			lower := strings.ToLower(name)
			for _, s := range sourceDirNames {
				if lower == s {
					structure.SourceDirs = append(structure.SourceDirs, filepath.Join(a.root, name))
					break
				}
			}
			for _, s := range testDirNames {
				if lower == s {
					structure.TestDirs = append(structure.TestDirs, filepath.Join(a.root, name))
					break
				}
			}
			continue
		}

		structure.TotalFiles++
		for _, suffix := range configSuffixes {
			if strings.HasSuffix(name, suffix) {
				structure.ConfigFiles = append(structure.ConfigFiles, filepath.Join(a.root, name))
				break
			}
		}
	}
	return structure
}

func (a *DirAnalyzer) analyzeGit() GitSummary {
	repo, err := git.PlainOpenWithOptions(a.root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return GitSummary{HasRepo: false}
	}

	summary := GitSummary{HasRepo: true, MainBranch: detectMainBranch(repo)}

	head, err := repo.Head()
	if err == nil {
		summary.CurrentBranch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			summary.Status = status.String()
			for _, fileStatus := range status {
				if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
					summary.UncommittedChanges++
				}
			}
		}
	}

	if head != nil {
		if iter, err := repo.Log(&git.LogOptions{From: head.Hash()}); err == nil {
			for range maxRecentCommits {
				commit, err := iter.Next()
				if err != nil {
					break
				}
				msg := commit.Message
				if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
					msg = msg[:idx]
				}
				summary.RecentCommits = append(summary.RecentCommits, Commit{
					Hash:    commit.Hash.String()[:8],
					Message: msg,
				})
			}
			iter.Close()
		}
	}

	return summary
}

func detectMainBranch(repo *git.Repository) string {
	for _, name := range []string{"main", "master"} {
		if _, err := repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
			return name
		}
	}
	return ""
}

func (a *DirAnalyzer) analyzeDependencies() DependencySummary {
	deps := DependencySummary{
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
	}

	// package.json wins for node projects, then python, then go.
	pkgJSON := filepath.Join(a.root, "package.json")
	if content, err := os.ReadFile(pkgJSON); err == nil {
		var parsed struct {
			Dependencies    map[string]string `json:"dependencies"`
			DevDependencies map[string]string `json:"devDependencies"`
		}
		if err := json.Unmarshal(content, &parsed); err == nil {
			deps.PackageManager = "npm"
			deps.ConfigFile = pkgJSON
			deps.Dependencies = parsed.Dependencies
			deps.DevDependencies = parsed.DevDependencies
			return deps
		}
	}

	for _, candidate := range []struct {
		file    string
		manager string
	}{
		{"pyproject.toml", "uv"},
		{"requirements.txt", "pip"},
		{"go.mod", "go"},
	} {
		path := filepath.Join(a.root, candidate.file)
		if _, err := os.Stat(path); err == nil {
			deps.PackageManager = candidate.manager
			deps.ConfigFile = path
			return deps
		}
	}

	return deps
}

func (a *DirAnalyzer) detectProjectType(deps DependencySummary) string {
	hasNode := deps.PackageManager == "npm"
	hasTS := false
	if hasNode {
		if _, err := os.Stat(filepath.Join(a.root, "tsconfig.json")); err == nil {
			hasTS = true
		}
	}
	hasPython := false
	for _, f := range []string{"pyproject.toml", "requirements.txt", "setup.py"} {
		if _, err := os.Stat(filepath.Join(a.root, f)); err == nil {
			hasPython = true
			break
		}
	}

	switch {
	case hasPython && hasNode:
		return TypeMixed
	case hasPython:
		return TypePython
	case hasTS:
		return TypeTypeScript
	case hasNode:
		return TypeJavaScript
	case deps.PackageManager == "go":
		return TypeGo
	default:
		return TypeUnknown
	}
}

func (a *DirAnalyzer) detectTestingFramework(deps DependencySummary, structure FileStructure) TestingInfo {
	allDeps := make(map[string]string, len(deps.Dependencies)+len(deps.DevDependencies))
	for k, v := range deps.Dependencies {
		allDeps[k] = v
	}
	for k, v := range deps.DevDependencies {
		allDeps[k] = v
	}

	for _, fw := range []string{"vitest", "jest", "mocha"} {
		if _, ok := allDeps[fw]; ok {
			return TestingInfo{Framework: fw, ConfigFile: deps.ConfigFile}
		}
	}

	for _, cfg := range []string{"pytest.ini", "conftest.py"} {
		path := filepath.Join(a.root, cfg)
		if _, err := os.Stat(path); err == nil {
			return TestingInfo{Framework: "pytest", ConfigFile: path}
		}
	}
	if deps.PackageManager == "uv" || deps.PackageManager == "pip" {
		return TestingInfo{Framework: "pytest"}
	}
	if deps.PackageManager == "go" {
		return TestingInfo{Framework: "go test"}
	}
	return TestingInfo{}
}

func (a *DirAnalyzer) activeContexts(structure FileStructure, gitSummary GitSummary, testing TestingInfo) []string {
	var active []string
	if gitSummary.HasRepo {
		active = append(active, "git_repo")
		if gitSummary.UncommittedChanges > 0 {
			active = append(active, "dirty_worktree")
		}
	}
	if len(structure.TestDirs) > 0 || testing.Framework != "" {
		active = append(active, "has_tests")
	}
	if len(structure.ConfigFiles) > 0 {
		active = append(active, "has_config")
	}
	return active
}
