package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateToPattern(t *testing.T) {
	tests := []struct {
		tmpl  string
		query string
		want  map[string]string
	}{
		{
			tmpl:  "troubleshoot {issue}",
			query: "troubleshoot the login bug",
			want:  map[string]string{"issue": "the login bug"},
		},
		{
			tmpl:  "deploy {service} to {env}",
			query: "deploy api to staging",
			want:  map[string]string{"service": "api", "env": "staging"},
		},
		{
			tmpl:  "generate tests",
			query: "please generate   tests now", // flexible whitespace
			want:  map[string]string{},
		},
	}

	ts := newTemplateSet()
	for _, tt := range tests {
		re, err := ts.compileTemplate(tt.tmpl)
		require.NoError(t, err, tt.tmpl)

		sub := re.FindStringSubmatch(tt.query)
		require.NotNil(t, sub, "template %q should match %q", tt.tmpl, tt.query)

		if len(tt.want) > 0 {
			groups := namedGroups(re, sub)
			for name, val := range tt.want {
				assert.Equal(t, val, groups[name])
			}
		}
	}
}

func TestCompileTemplate_EscapesLiterals(t *testing.T) {
	ts := newTemplateSet()
	re, err := ts.compileTemplate("bump version (major)")
	require.NoError(t, err)

	assert.Nil(t, re.FindStringSubmatch("bump version major"))
	assert.NotNil(t, re.FindStringSubmatch("bump version (major)"))
}

func TestCompileTemplateFor_ScopesNamedGroup(t *testing.T) {
	ts := newTemplateSet()
	re, err := ts.compileTemplateFor("migrate {table} to {engine}", "engine")
	require.NoError(t, err)

	sub := re.FindStringSubmatch("migrate users to postgres")
	require.NotNil(t, sub)

	groups := namedGroups(re, sub)
	assert.Contains(t, groups, "engine")
	assert.NotContains(t, groups, "table")
}

func TestCompilePattern_CaseInsensitive(t *testing.T) {
	ts := newTemplateSet()
	re, err := ts.compilePattern(`(?P<issue>.+) is broken`)
	require.NoError(t, err)

	sub := re.FindStringSubmatch("The Build is BROKEN")
	require.NotNil(t, sub)
	assert.Equal(t, "The Build", namedGroups(re, sub)["issue"])
}

func TestCompilePattern_Invalid(t *testing.T) {
	ts := newTemplateSet()
	_, err := ts.compilePattern("(unclosed")
	assert.Error(t, err)
}

func TestTemplateSet_Caches(t *testing.T) {
	ts := newTemplateSet()
	re1, err := ts.compileTemplate("run {target}")
	require.NoError(t, err)
	re2, err := ts.compileTemplate("run {target}")
	require.NoError(t, err)
	assert.Same(t, re1, re2)
}
