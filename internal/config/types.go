// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// ColorSchemeAuto picks dark or light from the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark palette.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light palette.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// RuntimeNative and RuntimeVirtual name the step runtimes.
	RuntimeNative  RuntimeMode = "native"
	RuntimeVirtual RuntimeMode = "virtual"
)

var (
	// ErrInvalidColorScheme is the sentinel error wrapped by InvalidValueError for color schemes.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is the sentinel error wrapped by InvalidValueError for log levels.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidRuntimeMode is the sentinel error wrapped by InvalidValueError for runtimes.
	ErrInvalidRuntimeMode = errors.New("invalid runtime mode")
)

type (
	// ColorScheme selects the CLI palette.
	ColorScheme string

	// LogLevel is the minimum level of log records written to stderr.
	LogLevel string

	// RuntimeMode names the runtime that executes run steps.
	RuntimeMode string

	// InvalidValueError is returned when an enumerated setting holds an
	// unknown value.
	InvalidValueError struct {
		Kind  error
		Value string
		Valid []string
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultRuntime is used when --runtime is not given.
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime"`
		// Taskfile is the task file to load; empty means search the
		// working directory.
		Taskfile string `json:"taskfile" mapstructure:"taskfile"`
		// VirtualShell configures the virtual shell behavior
		VirtualShell VirtualShellConfig `json:"virtual_shell" mapstructure:"virtual_shell"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Log configures diagnostic logging
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// VirtualShellConfig configures the virtual shell runtime.
	VirtualShellConfig struct {
		// EnableUrootUtils enables the in-process u-root file utilities
		EnableUrootUtils bool `json:"enable_uroot_utils" mapstructure:"enable_uroot_utils"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose prints the task and step trail and renders issue help on failure.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// LogConfig configures diagnostic logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%v %q (valid: %v)", e.Kind, e.Value, e.Valid)
}

// Unwrap returns the kind sentinel so callers can use errors.Is for programmatic detection.
func (e *InvalidValueError) Unwrap() error { return e.Kind }

// IsValid returns whether the ColorScheme is known, and the validation errors if not.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Kind: ErrInvalidColorScheme, Value: string(c), Valid: []string{"auto", "dark", "light"}}}
	}
}

// IsValid returns whether the LogLevel is known, and the validation errors if not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Kind: ErrInvalidLogLevel, Value: string(l), Valid: []string{"debug", "info", "warn", "error"}}}
	}
}

// IsValid returns whether the RuntimeMode is known, and the validation errors if not.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Kind: ErrInvalidRuntimeMode, Value: string(m), Valid: []string{"native", "virtual"}}}
	}
}

// Validate checks the enumerated settings. Values loaded from CUE files are
// already constrained by the schema; environment overrides are not.
func (c *Config) Validate() error {
	var errs []error
	for _, check := range []func() (bool, []error){
		c.DefaultRuntime.IsValid,
		c.UI.ColorScheme.IsValid,
		c.Log.Level.IsValid,
	} {
		if ok, fieldErrs := check(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	return errors.Join(errs...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: RuntimeNative,
		VirtualShell: VirtualShellConfig{
			EnableUrootUtils: true,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Log: LogConfig{
			Level: LogLevelWarn,
		},
	}
}
