package intent

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// templateSet compiles primary templates and skill regex patterns,
// memoizing compiled expressions in a bounded LRU cache so repeated
// matching over the same registry stays cheap.
type templateSet struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

const templateCacheSize = 256

func newTemplateSet() *templateSet {
	cache, _ := lru.New[string, *regexp.Regexp](templateCacheSize)
	return &templateSet{cache: cache}
}

var placeholderRe = regexp.MustCompile(`\\\{(\w+)\\\}`)

// compileTemplate converts a primary template into a compiled regex:
// literal text is escaped, each {param} becomes a named capture group
// matching one-or-more characters, and spaces match flexible
// whitespace. Example: "troubleshoot {issue}" -> `troubleshoot\s+(?P<issue>.+)`.
func (t *templateSet) compileTemplate(tmpl string) (*regexp.Regexp, error) {
	key := "tmpl\x00" + tmpl
	if re, ok := t.cache.Get(key); ok {
		return re, nil
	}

	re, err := regexp.Compile(templateToPattern(tmpl, ""))
	if err != nil {
		return nil, err
	}
	t.cache.Add(key, re)
	return re, nil
}

// compileTemplateFor compiles a template scoped to a single parameter:
// the named group is kept only for param, every other placeholder
// becomes a non-capturing group.
func (t *templateSet) compileTemplateFor(tmpl, param string) (*regexp.Regexp, error) {
	key := "tmpl\x00" + param + "\x00" + tmpl
	if re, ok := t.cache.Get(key); ok {
		return re, nil
	}

	re, err := regexp.Compile("(?i)" + templateToPattern(tmpl, param))
	if err != nil {
		return nil, err
	}
	t.cache.Add(key, re)
	return re, nil
}

// compilePattern compiles a skill regex pattern case-insensitively.
func (t *templateSet) compilePattern(pattern string) (*regexp.Regexp, error) {
	key := "pat\x00" + pattern
	if re, ok := t.cache.Get(key); ok {
		return re, nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	t.cache.Add(key, re)
	return re, nil
}

// templateToPattern builds the regex source for a template. When param
// is empty all placeholders become named groups; otherwise only param
// keeps its name.
func templateToPattern(tmpl, param string) string {
	escaped := regexp.QuoteMeta(tmpl)

	pattern := placeholderRe.ReplaceAllStringFunc(escaped, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if param != "" && name != param {
			return "(?:.+)"
		}
		return "(?P<" + name + ">.+)"
	})

	// Literal spaces match any run of whitespace.
	return strings.ReplaceAll(pattern, " ", `\s+`)
}

// namedGroups extracts the named capture groups of a match into a map,
// skipping groups that did not participate or captured nothing.
func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name == "" || i >= len(match) || match[i] == "" {
			continue
		}
		groups[name] = match[i]
	}
	return groups
}
