package skill

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jguan/autoskill/pkg/infra/logger"
)

// SkillFileName is the definition file expected in each skill directory.
const SkillFileName = "SKILL.md"

// Registry holds loaded skill definitions keyed by name, plus an
// inverted keyword index for O(1) keyword lookup during matching.
//
// One malformed definition is skipped with a warning; only a missing
// skills directory aborts the whole load.
type Registry struct {
	mu           sync.RWMutex
	skills       map[string]*Skill
	keywordIndex map[string][]string
	log          *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		skills:       make(map[string]*Skill),
		keywordIndex: make(map[string][]string),
		log:          logger.Default().With("component", "skill_registry"),
	}
}

// LoadDir loads every <dir>/<skill>/SKILL.md under the given directory.
// Returns ErrSkillDirMissing if the directory itself does not exist.
func (r *Registry) LoadDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ErrSkillDirMissing.WithDetails("dir", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ErrSkillDirMissing.WithCause(err).WithDetails("dir", dir)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name(), SkillFileName)
		content, err := os.ReadFile(path)
		if err != nil {
			continue // no SKILL.md in this directory
		}

		sk, err := ParseSkillFile(string(content))
		if err != nil {
			r.log.Warn("skipping malformed skill", "dir", entry.Name(), "error", err)
			continue
		}
		sk.FilePath = path
		r.skills[sk.Name] = sk
	}

	r.rebuildKeywordIndex()
	return nil
}

// LoadFS loads skill definitions from an fs.FS, typically the embedded
// builtin catalog. Each match of <skill>/SKILL.md is one definition.
func (r *Registry) LoadFS(fsys fs.FS) error {
	matches, err := fs.Glob(fsys, "*/"+SkillFileName)
	if err != nil {
		return ErrSkillDirMissing.WithCause(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, path := range matches {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			r.log.Warn("skipping unreadable skill", "path", path, "error", err)
			continue
		}

		sk, err := ParseSkillFile(string(content))
		if err != nil {
			r.log.Warn("skipping malformed skill", "path", path, "error", err)
			continue
		}
		r.skills[sk.Name] = sk
	}

	r.rebuildKeywordIndex()
	return nil
}

// rebuildKeywordIndex must be called with r.mu held.
func (r *Registry) rebuildKeywordIndex() {
	r.keywordIndex = make(map[string][]string)

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic index order

	for _, name := range names {
		for _, kw := range r.skills[name].Intents.Keywords {
			kwLower := strings.ToLower(kw)
			r.keywordIndex[kwLower] = append(r.keywordIndex[kwLower], name)
		}
	}
}

// Register adds a single already-parsed skill definition.
func (r *Registry) Register(sk *Skill) error {
	if sk == nil || sk.Name == "" {
		return ErrSkillInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[sk.Name] = sk
	r.rebuildKeywordIndex()
	return nil
}

// Get returns the skill with the given name.
func (r *Registry) Get(name string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sk, ok := r.skills[name]
	return sk, ok
}

// List returns all loaded skills sorted by name.
func (r *Registry) List() []*Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Skill, 0, len(r.skills))
	for _, sk := range r.skills {
		out = append(out, sk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SkillsForKeyword returns the names of skills indexed under the given
// lowercase keyword.
func (r *Registry) SkillsForKeyword(word string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keywordIndex[word]
}

// Len returns the number of loaded skills.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}
