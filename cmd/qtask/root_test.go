// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/qcsv/qtask/internal/config"
	"github.com/qcsv/qtask/internal/issue"
	"github.com/qcsv/qtask/internal/runner"
	"github.com/qcsv/qtask/internal/runtime"
	"github.com/qcsv/qtask/internal/vcs"
	"github.com/qcsv/qtask/pkg/taskfile"
)

const releaseCUE = `
default: "help"
tasks: [
	{name: "help", steps: [{run: "echo 'usage: qtask <task>'"}]},
	{name: "docs", description: "Generate HTML docs", steps: [{run: "echo docs"}]},
	{name: "pep8", steps: [{run: "echo pep8"}]},
	{name: "release", deps: ["docs", "pep8"], steps: [{run: "echo release"}]},
	{name: "fail", steps: [{run: "echo before"}, {run: "exit 3"}, {run: "echo after"}]},
	{
		name: "dev-install"
		deps: ["docs"]
		steps: [
			{require_env: "VIRTUAL_ENV"},
			{remove: ["dist"]},
			{run: "echo installed"},
		]
	},
	{name: "push", steps: [{push: {remotes: ["origin", "github"]}}]},
]
`

type (
	fakePusher struct {
		mu    sync.Mutex
		fail  map[string]error
		calls []string
	}

	testEnv struct {
		app    *App
		dir    string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		pusher *fakePusher
		env    map[string]string
	}
)

func (p *fakePusher) Push(_ context.Context, remote, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, remote)
	return p.fail[remote]
}

// newTestEnv builds an App around a temporary directory holding qtask.cue.
// Run steps use the in-process virtual runtime.
func newTestEnv(t *testing.T, taskfileSrc string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	if taskfileSrc != "" {
		if err := os.WriteFile(filepath.Join(dir, "qtask.cue"), []byte(taskfileSrc), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.DefaultRuntime = config.RuntimeVirtual

	te := &testEnv{
		dir:    dir,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		pusher: &fakePusher{fail: map[string]error{}},
		env:    map[string]string{},
	}
	te.app = NewApp(Dependencies{
		Config:    config.NewStaticProvider(cfg),
		NewPusher: func(string) vcs.Pusher { return te.pusher },
		LookupEnv: func(k string) (string, bool) {
			v, ok := te.env[k]
			return v, ok
		},
		Getwd:     func() (string, error) { return dir, nil },
		Stdin:     strings.NewReader(""),
		Stdout:    te.stdout,
		Stderr:    te.stderr,
		LogOutput: io.Discard,
	})
	return te
}

func (te *testEnv) execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand(te.app)
	root.SetArgs(args)
	return root.ExecuteContext(t.Context())
}

func exitCode(t *testing.T, err error) runtime.ExitCode {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T: %v", err, err)
	}
	return exitErr.Code
}

func TestRun_PrerequisitesFirst(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	if err := te.execute(t, "release"); err != nil {
		t.Fatalf("release failed: %v\nstderr: %s", err, te.stderr)
	}
	if got, want := te.stdout.String(), "docs\npep8\nrelease\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_SubcommandAndSharedPrerequisites(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	if err := te.execute(t, "run", "docs", "release"); err != nil {
		t.Fatal(err)
	}
	if got, want := te.stdout.String(), "docs\npep8\nrelease\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_DefaultTask(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	if err := te.execute(t); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(te.stdout.String(), "usage: qtask <task>") {
		t.Errorf("stdout = %q, want usage hint", te.stdout.String())
	}
}

func TestRun_ExitCodePropagates(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	err := te.execute(t, "fail")
	if code := exitCode(t, err); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if strings.Contains(te.stdout.String(), "after") {
		t.Error("step after the failure ran")
	}
	if iss := issue.IssueOf(err); iss == nil || iss.Id() != issue.StepFailedId {
		t.Errorf("IssueOf() = %v, want StepFailedId", iss)
	}
}

func TestRun_NoSuchTarget(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	err := te.execute(t, "docs", "deploy")
	if code := exitCode(t, err); code != runner.ExitUsage {
		t.Errorf("exit code = %d, want %d", code, runner.ExitUsage)
	}
	if !strings.Contains(err.Error(), "no such target: deploy") {
		t.Errorf("error = %q", err)
	}
	if te.stdout.Len() != 0 {
		t.Errorf("something ran before the target check: %q", te.stdout.String())
	}
}

func TestRun_PreconditionKeepsDist(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	keep := filepath.Join(te.dir, "dist", "qcsv-0.0.6.tar.gz")
	if err := os.MkdirAll(filepath.Dir(keep), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := te.execute(t, "dev-install")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	var precondErr *runner.PreconditionError
	if !errors.As(err, &precondErr) || precondErr.Variable != "VIRTUAL_ENV" {
		t.Errorf("expected PreconditionError for VIRTUAL_ENV, got %v", err)
	}
	if _, statErr := os.Stat(keep); statErr != nil {
		t.Errorf("dist was touched: %v", statErr)
	}

	te.env["VIRTUAL_ENV"] = "/venv"
	if err := te.execute(t, "dev-install"); err != nil {
		t.Fatal(err)
	}
	if _, statErr := os.Stat(filepath.Join(te.dir, "dist")); !os.IsNotExist(statErr) {
		t.Errorf("dist still exists after dev-install: %v", statErr)
	}
}

func TestRun_PushStopsAtFirstFailingRemote(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	te.pusher.fail["origin"] = &vcs.PushError{Remote: "origin", Branch: "master", Err: vcs.ErrRemoteNotFound}

	err := te.execute(t, "push")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !slices.Equal(te.pusher.calls, []string{"origin"}) {
		t.Errorf("pushed to %v, want only origin", te.pusher.calls)
	}
	if iss := issue.IssueOf(err); iss == nil || iss.Id() != issue.PushFailedId {
		t.Errorf("IssueOf() = %v, want PushFailedId", iss)
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	if err := te.execute(t, "run", "--dry-run", "release"); err != nil {
		t.Fatal(err)
	}
	want := "[docs] echo docs\n[pep8] echo pep8\n[release] echo release\n"
	if got := te.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_VerboseTrail(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	if err := te.execute(t, "-v", "release"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"→ docs", "$ echo pep8", "✓ release"} {
		if !strings.Contains(te.stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, te.stderr)
		}
	}
}

func TestRun_InvalidRuntime(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	err := te.execute(t, "run", "--runtime", "docker", "docs")
	if !errors.Is(err, runtime.ErrInvalidRuntimeType) {
		t.Fatalf("expected ErrInvalidRuntimeType, got %v", err)
	}
}

func TestRun_NoTaskfile(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, "")
	err := te.execute(t, "docs")
	if !errors.Is(err, taskfile.ErrTaskfileNotFound) {
		t.Fatalf("expected ErrTaskfileNotFound, got %v", err)
	}
	if iss := issue.IssueOf(err); iss == nil || iss.Id() != issue.TaskfileNotFoundId {
		t.Errorf("IssueOf() = %v, want TaskfileNotFoundId", iss)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, releaseCUE)
	if err := te.execute(t, "--log-level", "loud", "docs"); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}

func TestExplainRunError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"unknown target", &taskfile.UnknownTaskError{Name: "deploy"}, issue.NoSuchTargetId},
		{"no default", runner.ErrNoDefault, issue.NoSuchTargetId},
		{
			"precondition",
			&runner.StepError{Task: "dev-install", ExitCode: 1, Err: &runner.PreconditionError{Task: "dev-install", Variable: "VIRTUAL_ENV"}},
			issue.PreconditionFailedId,
		},
		{
			"push",
			&runner.StepError{Task: "push", ExitCode: 1, Err: &vcs.PushError{Remote: "origin", Err: errors.New("denied")}},
			issue.PushFailedId,
		},
		{"no shell", &runner.StepError{Task: "docs", ExitCode: 127, Err: runtime.ErrNoShell}, issue.ShellNotFoundId},
		{"step", &runner.StepError{Task: "pep8", ExitCode: 2}, issue.StepFailedId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := explainRunError(tt.err, []string{"x"})
			if !errors.Is(got, tt.err) {
				t.Errorf("explained error does not wrap the original")
			}
			if iss := issue.IssueOf(got); iss == nil || iss.Id() != tt.want {
				t.Errorf("IssueOf() = %v, want id %d", iss, tt.want)
			}
		})
	}

	if got := explainRunError(context.Canceled, nil); got != context.Canceled {
		t.Errorf("cancellation should pass through unchanged, got %v", got)
	}
}
