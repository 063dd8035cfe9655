package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jguan/autoskill/catalog"
	"github.com/jguan/autoskill/pkg/config"
	"github.com/jguan/autoskill/pkg/execution"
	"github.com/jguan/autoskill/pkg/intent"
	"github.com/jguan/autoskill/pkg/skill"
)

// newTestRoot builds a RootCommand over the builtin catalog with an
// empty project context and throwaway learning state, capturing output
// in the returned buffer.
func newTestRoot(t *testing.T) (*RootCommand, *bytes.Buffer) {
	t.Helper()

	reg := skill.NewRegistry()
	require.NoError(t, reg.LoadFS(catalog.SkillFS()))

	matcher := intent.NewMatcher(reg, nil)
	learner := execution.NewLearningStore(filepath.Join(t.TempDir(), "learning.json"))
	router := execution.NewRouter(matcher, learner)

	buf := &bytes.Buffer{}
	root := &RootCommand{
		cfg:      config.Default(),
		registry: reg,
		matcher:  matcher,
		router:   router,
		learner:  learner,
		opts: &OutputOptions{
			Format: OutputTable,
			Writer: buf,
		},
	}
	return root, buf
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.NotNil(t, root)
	assert.NotNil(t, root.Command())
	assert.NotNil(t, root.OutputOptions())
}

func TestRootCommand_Commands(t *testing.T) {
	root := NewRootCommand()
	cmd := root.Command()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"version", "run", "match", "skill", "learn", "history"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCommand_Accessors(t *testing.T) {
	root, _ := newTestRoot(t)

	assert.NotNil(t, root.Registry())
	assert.NotNil(t, root.Matcher())
	assert.NotNil(t, root.Router())
	assert.NotNil(t, root.Learner())
	assert.Nil(t, root.History())
	assert.NotNil(t, root.Config())
	assert.NotNil(t, root.OutputOptions())
}

func TestRootCommand_SetOutputWriter(t *testing.T) {
	root := NewRootCommand()
	buf := &bytes.Buffer{}
	root.SetOutputWriter(buf)

	assert.Equal(t, buf, root.OutputOptions().Writer)
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}

func TestGetBuildDate(t *testing.T) {
	assert.NotEmpty(t, GetBuildDate())
}

func TestGetGitCommit(t *testing.T) {
	assert.NotEmpty(t, GetGitCommit())
}

func TestRootCommand_PersistentPreRunE(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTOSKILL_DATA_DIR", dir)
	t.Setenv("AUTOSKILL_LEARNING_PATH", filepath.Join(dir, "learning.json"))
	t.Setenv("AUTOSKILL_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("AUTOSKILL_SKILLS_DIR", filepath.Join(dir, "skills"))

	root := NewRootCommand()
	err := root.persistentPreRunE(root.Command(), []string{})
	require.NoError(t, err)

	assert.NotNil(t, root.Config())
	assert.NotNil(t, root.Registry())
	assert.NotNil(t, root.Matcher())
	assert.NotNil(t, root.Router())
	// Builtin catalog was loaded.
	assert.Greater(t, root.Registry().Len(), 0)
}

func TestRootCommand_Execute_Help(t *testing.T) {
	root := NewRootCommand()
	cmd := root.Command()

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "autoskill")
}

func TestRootCommand_PersistentPostRunClosesBus(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTOSKILL_DATA_DIR", dir)
	t.Setenv("AUTOSKILL_LEARNING_PATH", filepath.Join(dir, "learning.json"))
	t.Setenv("AUTOSKILL_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("AUTOSKILL_SKILLS_DIR", filepath.Join(dir, "skills"))

	root := NewRootCommand()
	require.NoError(t, root.persistentPreRunE(root.Command(), []string{}))
	require.NotNil(t, root.bus)

	require.NoError(t, root.persistentPostRunE(root.Command(), []string{}))
	// Closing is idempotent; a second teardown is harmless.
	require.NoError(t, root.bus.Close())
}
