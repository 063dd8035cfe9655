package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkillCommand(t *testing.T) {
	root, _ := newTestRoot(t)

	cmd := NewSkillCommand(root)
	assert.NotNil(t, cmd)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["get"])
	assert.True(t, names["validate"])
}

func TestSkillList(t *testing.T) {
	root, buf := newTestRoot(t)

	err := runSkillList(root, "", false)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "troubleshoot")
	assert.Contains(t, output, "cleanup")
}

func TestSkillList_AutoOnly(t *testing.T) {
	root, buf := newTestRoot(t)

	err := runSkillList(root, "", true)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "troubleshoot")
	// explain-code has no auto_trigger block and stays disabled.
	assert.NotContains(t, output, "explain-code")
}

func TestSkillList_CategoryFilter(t *testing.T) {
	root, buf := newTestRoot(t)

	err := runSkillList(root, "no-such-category", false)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "troubleshoot")
}

func TestSkillGet(t *testing.T) {
	root, buf := newTestRoot(t)

	err := runSkillGet(root, "troubleshoot")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Troubleshoot (troubleshoot)")
	assert.Contains(t, output, "Keywords:")
	assert.Contains(t, output, "--issue")
	assert.Contains(t, output, "Auto-execution: enabled at 85% confidence")
}

func TestSkillGet_NotFound(t *testing.T) {
	root, _ := newTestRoot(t)

	err := runSkillGet(root, "no-such-skill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill not found")
}

func TestSkillGet_JSON(t *testing.T) {
	root, buf := newTestRoot(t)
	root.opts.Format = OutputJSON

	err := runSkillGet(root, "troubleshoot")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, `"name": "troubleshoot"`)
	assert.Contains(t, output, `"keywords"`)
}

func TestSkillValidate_Valid(t *testing.T) {
	root, buf := newTestRoot(t)

	path := filepath.Join(t.TempDir(), "SKILL.md")
	content := `---
name: sample
description: "A sample skill"
intents:
  keywords: [sample]
---

# Sample
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	err := runSkillValidate(root, path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "sample: valid")
}

func TestSkillValidate_Invalid(t *testing.T) {
	root, buf := newTestRoot(t)

	path := filepath.Join(t.TempDir(), "SKILL.md")
	content := `---
description: "No name and no intents"
---

# Broken
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	err := runSkillValidate(root, path)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "invalid")
	assert.Contains(t, buf.String(), "error:")
}
