package walk

import (
	"path"
	"path/filepath"
	"strings"
)

// Ignore decides which source entries stay out of the image.
type Ignore struct {
	static  map[string]bool
	pattern []string
}

// NewIgnore builds a matcher from names and git-style patterns.
// Names without wildcards match an entry's base name at any depth or its
// full relative path. Patterns without a slash match base names; patterns
// with a slash match the whole path relative to the walk root.
func NewIgnore(patterns ...string) *Ignore {
	m := &Ignore{static: make(map[string]bool)}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		p = filepath.ToSlash(p)
		if strings.ContainsAny(p, "*?[") {
			m.pattern = append(m.pattern, p)
			continue
		}
		m.static[path.Clean(p)] = true
	}
	return m
}

// Match returns true if the slash-separated relative path should be skipped.
func (m *Ignore) Match(rel string) bool {
	if m == nil {
		return false
	}
	clean := path.Clean(filepath.ToSlash(rel))
	base := path.Base(clean)

	if m.static[clean] || m.static[base] {
		return true
	}

	for _, pat := range m.pattern {
		if !strings.Contains(pat, "/") {
			if ok, _ := path.Match(pat, base); ok {
				return true
			}
			continue
		}
		if matchPattern(pat, clean) {
			return true
		}
	}

	return false
}

// matchPattern handles *, ?, and ** like Git
func matchPattern(pattern, p string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(p, "/"))
}

// matchSegments matches pattern segments recursively
func matchSegments(pats, parts []string) bool {
	for len(pats) > 0 {
		p := pats[0]
		pats = pats[1:]

		if p == "**" {
			if len(pats) == 0 {
				return true // trailing ** matches anything
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(pats, parts[i:]) {
					return true
				}
			}
			return false
		}

		if len(parts) == 0 {
			return false
		}

		if ok, _ := path.Match(p, parts[0]); !ok {
			return false
		}

		parts = parts[1:]
	}

	return len(parts) == 0
}
