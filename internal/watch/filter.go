// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores are always excluded: VCS metadata, editor droppings, and
// the build outputs of a Python package release (so a task that writes them
// does not trigger itself).
var defaultIgnores = []string{
	".git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"build/**",
	"dist/**",
	"*.egg-info/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// filter decides which relative, slash-separated paths are of interest.
type filter struct {
	include []string
	ignore  []string
}

func newFilter(include, ignore []string) (*filter, error) {
	for _, pat := range slices.Concat(include, ignore) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pat)
		}
	}
	return &filter{
		include: slices.Clone(include),
		ignore:  slices.Concat(defaultIgnores, ignore),
	}, nil
}

// ignored reports whether rel, or the directory rel names, is excluded.
func (f *filter) ignored(rel string) bool {
	p := filepath.ToSlash(rel)
	for _, pat := range f.ignore {
		if doublestar.MatchUnvalidated(pat, p) || doublestar.MatchUnvalidated(pat, p+"/") {
			return true
		}
	}
	return false
}

// matches reports whether rel is wanted: not ignored, and matching an
// include pattern when any are configured.
func (f *filter) matches(rel string) bool {
	if f.ignored(rel) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	p := filepath.ToSlash(rel)
	for _, pat := range f.include {
		if doublestar.MatchUnvalidated(pat, p) {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
