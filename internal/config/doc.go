// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the qtask configuration directory
// ($XDG_CONFIG_HOME/qtask on Linux, ~/Library/Application Support/qtask on
// macOS, %APPDATA%\qtask on Windows), or from ./config.cue when the former does
// not exist. Files are validated against the embedded #Config schema before
// being merged over the defaults. QTASK_* environment variables override both,
// with nested keys joined by underscores (QTASK_VIRTUAL_SHELL_ENABLE_UROOT_UTILS).
package config
