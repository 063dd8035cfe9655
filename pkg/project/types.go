// Package project models the snapshot of the working project that the
// matcher, inferrer, and safety validator consume. The snapshot is
// built fresh per invocation and treated as read-only afterwards.
package project

// Project type classifications.
const (
	TypePython     = "python"
	TypeTypeScript = "typescript"
	TypeJavaScript = "javascript"
	TypeGo         = "go"
	TypeMixed      = "mixed"
	TypeUnknown    = "unknown"
)

// Context is a read-only snapshot of the project at invocation time.
type Context struct {
	ProjectType  string            `json:"project_type"`
	Structure    FileStructure     `json:"structure"`
	Git          GitSummary        `json:"git"`
	Dependencies DependencySummary `json:"dependencies"`
	Testing      TestingInfo       `json:"testing"`

	// ActiveContexts are tags intersected with skill context tags for
	// confidence boosting.
	ActiveContexts []string `json:"active_contexts,omitempty"`
	// RecentSkills lists recently executed skill names, most recent first.
	RecentSkills []string `json:"recent_skills,omitempty"`
}

// FileStructure summarizes the directory layout.
type FileStructure struct {
	RootDir     string   `json:"root_dir"`
	SourceDirs  []string `json:"source_dirs,omitempty"`
	TestDirs    []string `json:"test_dirs,omitempty"`
	ConfigFiles []string `json:"config_files,omitempty"`
	TotalFiles  int      `json:"total_files"`
}

// GitSummary describes the repository state, if any.
type GitSummary struct {
	HasRepo            bool     `json:"has_repo"`
	CurrentBranch      string   `json:"current_branch,omitempty"`
	MainBranch         string   `json:"main_branch,omitempty"`
	UncommittedChanges int      `json:"uncommitted_changes"`
	Status             string   `json:"status,omitempty"`
	RecentCommits      []Commit `json:"recent_commits,omitempty"`
}

// Commit is one recent commit summary.
type Commit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

// DependencySummary describes declared dependencies.
type DependencySummary struct {
	PackageManager  string            `json:"package_manager,omitempty"`
	ConfigFile      string            `json:"config_file,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"dev_dependencies,omitempty"`
}

// TestingInfo describes the detected testing framework.
type TestingInfo struct {
	Framework  string `json:"framework,omitempty"`
	ConfigFile string `json:"config_file,omitempty"`
}

// Analyzer produces a fresh Context for the working directory.
type Analyzer interface {
	Analyze() (*Context, error)
}

// OnMainBranch reports whether the repository is on main or master.
func (g GitSummary) OnMainBranch() bool {
	if !g.HasRepo {
		return false
	}
	return g.CurrentBranch == "main" || g.CurrentBranch == "master"
}
