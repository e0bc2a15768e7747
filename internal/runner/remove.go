// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// removePaths deletes each path (or doublestar glob) relative to dir,
// recursively. Paths and patterns matching nothing are skipped.
func removePaths(dir string, paths []string) error {
	for _, p := range paths {
		full := p
		if !filepath.IsAbs(full) {
			full = filepath.Join(dir, filepath.FromSlash(p))
		}

		targets := []string{full}
		if hasMeta(p) {
			matches, err := doublestar.FilepathGlob(full)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			targets = matches
		}

		for _, t := range targets {
			slog.Debug("removing", "path", t)
			if err := os.RemoveAll(t); err != nil {
				return fmt.Errorf("failed to remove %s: %w", t, err)
			}
		}
	}
	return nil
}

func hasMeta(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
