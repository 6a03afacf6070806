package matching

import (
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/viant/afs/url"
	"github.com/viant/emergencykb/matching/option"
)

// Manager decides which source files are eligible for ingestion.
type Manager struct {
	options *option.Options
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// New creates a manager with the given options.
func New(opts ...option.Option) *Manager {
	return &Manager{
		options:  option.NewOptions(opts...),
		compiled: map[string]*regexp.Regexp{},
	}
}

// Options returns the effective options.
func (m *Manager) Options() *option.Options {
	return m.options
}

// IsExcluded reports whether location should be skipped. A location is excluded when it exceeds the
// size limit, matches no inclusion (when inclusions are set), or its last matching exclusion pattern
// is not negated with "!".
func (m *Manager) IsExcluded(location string, size int) bool {
	if m.options.MaxFileSize > 0 && size > m.options.MaxFileSize {
		return true
	}
	p := normalize(location)
	if len(m.options.Inclusions) > 0 && !m.matchesAny(p, m.options.Inclusions) {
		return true
	}
	excluded := false
	for _, pattern := range m.options.Exclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		negated := strings.HasPrefix(pattern, "!")
		if negated {
			pattern = pattern[1:]
		}
		if m.matches(p, pattern) {
			excluded = !negated
		}
	}
	return excluded
}

func (m *Manager) matchesAny(p string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if m.matches(p, pattern) {
			return true
		}
	}
	return false
}

// matches applies one pattern:
//   - ".ext" matches the file extension, case-insensitively
//   - "name/" matches any directory segment
//   - a pattern without "/" matches any segment
//   - any other pattern is a root-relative glob where "**" spans directories
func (m *Manager) matches(p, pattern string) bool {
	if isExtension(pattern) {
		return strings.EqualFold(path.Ext(p), pattern)
	}
	segments := strings.Split(strings.Trim(p, "/"), "/")
	if strings.HasSuffix(pattern, "/") && !strings.Contains(strings.TrimSuffix(pattern, "/"), "/") {
		name := strings.TrimSuffix(pattern, "/")
		for _, dir := range segments[:len(segments)-1] {
			if ok, _ := path.Match(name, dir); ok {
				return true
			}
		}
		return false
	}
	if !strings.Contains(pattern, "/") {
		for _, segment := range segments {
			if ok, _ := path.Match(pattern, segment); ok {
				return true
			}
		}
		return false
	}
	expr := m.compile(pattern)
	return expr != nil && expr.MatchString(strings.Join(segments, "/"))
}

func (m *Manager) compile(pattern string) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expr, ok := m.compiled[pattern]; ok {
		return expr
	}
	expr, err := regexp.Compile(globExpr(pattern))
	if err != nil {
		expr = nil
	}
	m.compiled[pattern] = expr
	return expr
}

// globExpr converts a slash pattern to a regular expression. "**" spans segments, "*" and "?" do not.
// A pattern with a leading or inner "/" is anchored at the root; a match also covers everything below it.
func globExpr(pattern string) string {
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.Trim(pattern, "/")
	if strings.Contains(pattern, "/") {
		anchored = true
	}
	var b strings.Builder
	if anchored {
		b.WriteString("^")
	} else {
		b.WriteString("(?:^|/)")
	}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(pattern[i:], "/**"):
			b.WriteString("(?:/.*)?")
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("(?:/.*)?$")
	return b.String()
}

func isExtension(pattern string) bool {
	return strings.HasPrefix(pattern, ".") && len(pattern) > 1 && !strings.ContainsAny(pattern[1:], "./*?[")
}

func normalize(location string) string {
	p := location
	if url.Scheme(location, "") != "" {
		p = url.Path(location)
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if len(p) > 1 && p[1] == ':' {
		p = p[2:]
	}
	return p
}
