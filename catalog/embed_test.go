package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jguan/autoskill/pkg/skill"
)

func builtinRegistry(t *testing.T) *skill.Registry {
	t.Helper()
	reg := skill.NewRegistry()
	require.NoError(t, reg.LoadFS(SkillFS()))
	return reg
}

func TestSkillFS_LoadsBuiltinSkills(t *testing.T) {
	reg := builtinRegistry(t)

	for _, name := range []string{"troubleshoot", "cleanup", "generate-tests", "explain-code", "commit-summary"} {
		sk, ok := reg.Get(name)
		require.True(t, ok, "builtin skill %s", name)
		assert.NotEmpty(t, sk.Description, "builtin skill %s", name)
	}
}

func TestSkillFS_BuiltinSkillsValidate(t *testing.T) {
	for _, sk := range builtinRegistry(t).List() {
		result := skill.Validate(sk)
		assert.Empty(t, result.Errors, "skill %s: %v", sk.Name, result.Errors)
	}
}

func TestSkillFS_TroubleshootAutoTrigger(t *testing.T) {
	reg := builtinRegistry(t)

	sk, ok := reg.Get("troubleshoot")
	require.True(t, ok)
	assert.True(t, sk.AutoTrigger.Enabled)
	assert.InDelta(t, 0.85, sk.AutoTrigger.ConfidenceThreshold, 1e-9)
	assert.False(t, sk.AutoTrigger.ConfirmBeforeExecution)

	// Tests are generated only after confirmation.
	gen, ok := reg.Get("generate-tests")
	require.True(t, ok)
	assert.True(t, gen.AutoTrigger.ConfirmBeforeExecution)
	require.Len(t, gen.AutoTrigger.SafetyChecks, 1)
	assert.Equal(t, "disk_space", gen.AutoTrigger.SafetyChecks[0].CheckType)
}
