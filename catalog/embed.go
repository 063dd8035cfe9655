// Package catalog embeds the builtin skill definitions shipped with
// the binary. Each skill lives in skills/<name>/SKILL.md with YAML
// front-matter describing its triggers and arguments.
package catalog

import (
	"embed"
	"io/fs"
)

//go:embed skills/*/SKILL.md
var skillFS embed.FS

// SkillFS returns the embedded skill tree rooted at the skills/
// directory, so each entry is <name>/SKILL.md.
func SkillFS() fs.FS {
	sub, err := fs.Sub(skillFS, "skills")
	if err != nil {
		// The subtree is compiled in; this cannot fail at runtime.
		panic(err)
	}
	return sub
}
