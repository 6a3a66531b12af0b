package app

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnorePatterns covers the metadata files operating systems drop
// into folders.
const DefaultIgnorePatterns = `# Files that are never moved
.DS_Store
Thumbs.db
desktop.ini`

type ignorePattern struct {
	glob   string
	negate bool
}

// IgnorePatternMatcher decides which file names a sort leaves alone
type IgnorePatternMatcher struct {
	patterns []ignorePattern
	logger   *Logger
}

// NewIgnorePatternMatcher creates a new pattern matcher from a multiline
// string. Blank lines and lines starting with # are skipped; a leading !
// re-includes names matched by an earlier pattern.
func NewIgnorePatternMatcher(patternsText string, logger *Logger) *IgnorePatternMatcher {
	matcher := &IgnorePatternMatcher{
		patterns: make([]ignorePattern, 0),
		logger:   logger,
	}

	for _, line := range strings.Split(patternsText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := ignorePattern{glob: line}
		if strings.HasPrefix(line, "!") {
			p.negate = true
			p.glob = strings.TrimSpace(line[1:])
		}
		if p.glob == "" {
			continue
		}
		if !doublestar.ValidatePattern(p.glob) {
			if logger != nil {
				logger.Warn("Skipping invalid ignore pattern %q", line)
			}
			continue
		}
		p.glob = strings.ToLower(p.glob)
		matcher.patterns = append(matcher.patterns, p)
	}

	if logger != nil {
		logger.Debug("Loaded %d ignore patterns", len(matcher.patterns))
	}

	return matcher
}

// ShouldIgnore checks a file name (no directory part) against the patterns,
// ignoring case. The last matching pattern decides.
func (m *IgnorePatternMatcher) ShouldIgnore(name string) bool {
	if len(m.patterns) == 0 {
		return false
	}

	name = strings.ToLower(name)
	ignored := false
	for _, p := range m.patterns {
		if doublestar.MatchUnvalidated(p.glob, name) {
			ignored = !p.negate
		}
	}
	return ignored
}

// GetPatterns returns the active patterns in lowercase, negations keep their !
func (m *IgnorePatternMatcher) GetPatterns() []string {
	out := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		if p.negate {
			out = append(out, "!"+p.glob)
		} else {
			out = append(out, p.glob)
		}
	}
	return out
}
