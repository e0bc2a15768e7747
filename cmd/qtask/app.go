// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/qcsv/qtask/internal/config"
	"github.com/qcsv/qtask/internal/dag"
	"github.com/qcsv/qtask/internal/issue"
	"github.com/qcsv/qtask/internal/runtime"
	"github.com/qcsv/qtask/internal/vcs"
	"github.com/qcsv/qtask/pkg/taskfile"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reaches configuration, runtimes and git through it.
	App struct {
		Config    config.Provider
		Runtimes  func(*config.Config) *runtime.Registry
		NewPusher func(dir string) vcs.Pusher
		LookupEnv func(string) (string, bool)
		Getwd     func() (string, error)

		stdin     io.Reader
		stdout    io.Writer
		stderr    io.Writer
		logOutput io.Writer

		// Populated by the root command before any subcommand runs.
		cfg     *config.Config
		cfgPath string
		flags   rootFlagValues
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    config.Provider
		Runtimes  func(*config.Config) *runtime.Registry
		NewPusher func(dir string) vcs.Pusher
		LookupEnv func(string) (string, bool)
		Getwd     func() (string, error)
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
		// LogOutput receives slog records; nil means Stderr. The slog
		// default is process-wide, so tests point it at io.Discard.
		LogOutput io.Writer
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		verbose    bool
		configPath string
		file       string
		logLevel   string
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Runtimes:  deps.Runtimes,
		NewPusher: deps.NewPusher,
		LookupEnv: deps.LookupEnv,
		Getwd:     deps.Getwd,
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		logOutput: deps.LogOutput,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Runtimes == nil {
		app.Runtimes = runtime.BuildRegistry
	}
	if app.NewPusher == nil {
		app.NewPusher = func(dir string) vcs.Pusher { return vcs.NewGitPusher(dir) }
	}
	if app.LookupEnv == nil {
		app.LookupEnv = os.LookupEnv
	}
	if app.Getwd == nil {
		app.Getwd = os.Getwd
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.logOutput == nil {
		app.logOutput = app.stderr
	}
	return app
}

// setup loads the configuration and installs the slog default handler. A
// configuration that fails to load is reported and replaced by defaults.
func (a *App) setup(ctx context.Context) error {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg, path = config.DefaultConfig(), ""
	}
	if !a.flags.verbose {
		a.flags.verbose = cfg.UI.Verbose
	}
	a.cfg, a.cfgPath = cfg, path
	return a.setupLogging()
}

// setupLogging routes log/slog through a charmbracelet/log handler on stderr.
// --log-level wins over the configured level; --verbose forces debug.
func (a *App) setupLogging() error {
	levelName := string(a.cfg.Log.Level)
	if a.flags.logLevel != "" {
		levelName = a.flags.logLevel
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	if a.flags.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(a.logOutput, log.Options{
		Level:  level,
		Prefix: "qtask",
	})
	slog.SetDefault(slog.New(logger))
	return nil
}

// settings returns the loaded configuration, or defaults before init ran.
func (a *App) settings() *config.Config {
	if a.cfg == nil {
		return config.DefaultConfig()
	}
	return a.cfg
}

// taskfilePath resolves the task file: --file, then the configured path,
// then discovery in the working directory.
func (a *App) taskfilePath() (string, error) {
	if a.flags.file != "" {
		return a.flags.file, nil
	}
	if p := a.settings().Taskfile; p != "" {
		return p, nil
	}
	wd, err := a.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return taskfile.Find(wd)
}

// loadTaskfile finds, parses and validates the task file, turning failures
// into actionable errors.
func (a *App) loadTaskfile() (*taskfile.Taskfile, error) {
	path, err := a.taskfilePath()
	if err != nil {
		return nil, issue.Wrap(err, "find task file", "",
			"Run 'qtask init' to create the qcsv release task file",
			"Pass an explicit path with --file",
		).WithIssue(issue.TaskfileNotFoundId)
	}

	tf, err := taskfile.Load(path)
	if err != nil {
		var cycleErr *dag.CycleError
		switch {
		case errors.As(err, &cycleErr):
			return nil, issue.Wrap(err, "load task file", path,
				"Remove one of the dependencies or task steps that form the cycle",
			).WithIssue(issue.DependencyCycleId)
		case errors.Is(err, os.ErrNotExist):
			return nil, issue.Wrap(err, "load task file", path,
				"Check the --file path or the taskfile setting",
			).WithIssue(issue.TaskfileNotFoundId)
		default:
			return nil, issue.Wrap(err, "load task file", path,
				"Run 'qtask validate' after fixing the reported fields",
			).WithIssue(issue.TaskfileParseErrorId)
		}
	}
	slog.Debug("loaded task file", "path", tf.FilePath, "tasks", len(tf.Tasks))
	return tf, nil
}

// runtimeFor returns the runtime selected by override, or by the
// configuration when override is empty.
func (a *App) runtimeFor(override string) (runtime.Runtime, error) {
	name := override
	if name == "" {
		name = string(a.settings().DefaultRuntime)
	}
	rt, err := a.Runtimes(a.settings()).Get(runtime.RuntimeType(name))
	if err != nil {
		suggestions := []string{"Use --runtime native or --runtime virtual"}
		if errors.Is(err, runtime.ErrRuntimeNotAvailable) && name == string(runtime.RuntimeTypeNative) {
			suggestions = append(suggestions, "Install a POSIX shell or switch to the virtual runtime")
		}
		return nil, issue.Wrap(err, "select runtime", name, suggestions...).WithIssue(issue.RuntimeNotAvailableId)
	}
	return rt, nil
}

// workDirOf returns the directory holding the task file.
func workDirOf(tf *taskfile.Taskfile) string {
	dir := tf.Dir()
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
