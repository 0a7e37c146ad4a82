package mirror

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// excluder matches source entries against exclude patterns.
// A pattern without a slash also matches the entry's base name at any depth.
type excluder struct {
	patterns []string
}

// ValidatePatterns returns one message per pattern doublestar cannot parse.
func ValidatePatterns(patterns []string) []string {
	var errs []string
	for _, p := range patterns {
		if p == "" {
			errs = append(errs, "exclude pattern must not be empty")
			continue
		}
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Sprintf("invalid exclude pattern '%s'", p))
		}
	}
	return errs
}

func newExcluder(patterns []string) (*excluder, error) {
	if errs := ValidatePatterns(patterns); len(errs) > 0 {
		return nil, fmt.Errorf("exclude patterns: %s", strings.Join(errs, "; "))
	}
	return &excluder{patterns: patterns}, nil
}

// match reports whether rel (relative to the source root, OS separators) is excluded.
func (x *excluder) match(rel string) bool {
	if x == nil || len(x.patterns) == 0 {
		return false
	}
	slashed := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, p := range x.patterns {
		if doublestar.MatchUnvalidated(p, slashed) {
			return true
		}
		if !strings.Contains(p, "/") && doublestar.MatchUnvalidated(p, base) {
			return true
		}
	}
	return false
}
