// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs work when source files change.
//
// A Watcher registers every non-ignored directory under a base directory with
// fsnotify, filters events through doublestar include and ignore patterns,
// and calls OnChange once per quiet period with the changed paths. Callbacks
// run on the event loop, one at a time; changes made while a callback runs
// are delivered in the next batch.
package watch
