// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/qcsv/qtask/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.DefaultRuntime != RuntimeNative {
		t.Errorf("DefaultRuntime = %q, want native", cfg.DefaultRuntime)
	}
	if cfg.Taskfile != "" {
		t.Errorf("Taskfile = %q, want empty", cfg.Taskfile)
	}
	if !cfg.VirtualShell.EnableUrootUtils {
		t.Error("expected EnableUrootUtils to be true by default")
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-specific")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" && path != ConfigFileName+"."+ConfigFileExt {
		t.Errorf("unexpected config path %q", path)
	}
	if cfg.DefaultRuntime != RuntimeNative || !cfg.VirtualShell.EnableUrootUtils {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_CUEFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
default_runtime: "virtual"
taskfile: "release/qtask.cue"
virtual_shell: enable_uroot_utils: false
ui: verbose: true
`)

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.DefaultRuntime != RuntimeVirtual || cfg.Taskfile != "release/qtask.cue" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.VirtualShell.EnableUrootUtils || !cfg.UI.Verbose {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.Log.Level != LogLevelWarn {
		t.Errorf("unset fields should keep defaults, got %+v", cfg)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad runtime", `default_runtime: "container"`},
		{"unknown field", `container_engine: "podman"`},
		{"wrong type", `ui: verbose: "yes"`},
		{"syntax", `ui: {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || !ae.HasSuggestions() {
				t.Errorf("expected ActionableError with suggestions, got %T: %v", err, err)
			}
			if issue.IssueOf(err) == nil {
				t.Error("expected a catalogue issue attached")
			}
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, _, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `log: level: "info"`)
	t.Setenv("QTASK_LOG_LEVEL", "debug")
	t.Setenv("QTASK_VIRTUAL_SHELL_ENABLE_UROOT_UTILS", "false")
	t.Setenv("QTASK_DEFAULT_RUNTIME", "virtual")

	cfg, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.VirtualShell.EnableUrootUtils {
		t.Error("EnableUrootUtils should be overridden to false")
	}
	if cfg.DefaultRuntime != RuntimeVirtual {
		t.Errorf("DefaultRuntime = %q", cfg.DefaultRuntime)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("QTASK_LOG_LEVEL", "loud")

	_, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestLoad_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "qtask")
	path, written, err := CreateDefaultConfig(dir)
	if err != nil || !written {
		t.Fatalf("CreateDefaultConfig() = %q, %v, %v", path, written, err)
	}

	cfg, loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if loaded != path || *cfg != *DefaultConfig() {
		t.Errorf("round trip = %+v from %q", cfg, loaded)
	}

	if _, written, err := CreateDefaultConfig(dir); err != nil || written {
		t.Errorf("second call should leave the file alone, written=%v err=%v", written, err)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Taskfile = "qtask.yaml"
	out := GenerateCUE(cfg)
	for _, want := range []string{`default_runtime: "native"`, `taskfile: "qtask.yaml"`, "enable_uroot_utils: true", `level: "warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.UI.Verbose = true
	got, path, err := NewStaticProvider(cfg).Load(context.Background(), LoadOptions{})
	if err != nil || path != "" || !got.UI.Verbose {
		t.Errorf("Load() = %+v, %q, %v", got, path, err)
	}
	got.UI.Verbose = false
	if !cfg.UI.Verbose {
		t.Error("static provider must return a copy")
	}
}

func TestEnumValidation(t *testing.T) {
	t.Parallel()

	if ok, errs := ColorScheme("neon").IsValid(); ok || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Error("neon should be an invalid color scheme")
	}
	if ok, errs := RuntimeMode("container").IsValid(); ok || !errors.Is(errs[0], ErrInvalidRuntimeMode) {
		t.Error("container should be an invalid runtime")
	}
	if ok, _ := LogLevel("error").IsValid(); !ok {
		t.Error("error should be a valid log level")
	}
}
