// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/qcsv/qtask/internal/dag"
)

const sampleCUE = `
default: "all"
env: {PYTHON: "python3"}
tasks: [
	{name: "all", steps: [{run: "echo hi"}]},
	{name: "docs", description: "make docs", steps: [{run: "pdoc qcsv.py"}]},
	{
		name: "dev-install"
		deps: ["docs"]
		steps: [
			{require_env: "VIRTUAL_ENV"},
			{remove: ["dist"]},
			{run: "python setup.py sdist"},
		]
	},
	{name: "release", steps: [{task: "docs"}, {push: {remotes: ["origin", "github"]}}]},
]
`

func TestParse(t *testing.T) {
	t.Parallel()

	tf, err := Parse([]byte(sampleCUE), "qtask.cue")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if tf.Default != "all" {
		t.Errorf("Default = %q, want all", tf.Default)
	}
	if tf.Env["PYTHON"] != "python3" {
		t.Errorf("Env[PYTHON] = %q, want python3", tf.Env["PYTHON"])
	}
	want := []TaskName{"all", "docs", "dev-install", "release"}
	if got := tf.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	dev, err := tf.Lookup("dev-install")
	if err != nil {
		t.Fatalf("Lookup(dev-install) error: %v", err)
	}
	if !slices.Equal(dev.Deps, []TaskName{"docs"}) {
		t.Errorf("dev-install deps = %v", dev.Deps)
	}
	kinds := make([]StepKind, 0, len(dev.Steps))
	for _, s := range dev.Steps {
		kinds = append(kinds, s.Kind())
	}
	if !slices.Equal(kinds, []StepKind{StepRequireEnv, StepRemove, StepRun}) {
		t.Errorf("dev-install step kinds = %v", kinds)
	}

	rel, _ := tf.Lookup("release")
	if rel.Steps[1].Push == nil || !slices.Equal(rel.Steps[1].Push.Remotes, []string{"origin", "github"}) {
		t.Errorf("release push step = %+v", rel.Steps[1])
	}
	if tf.FilePath != "qtask.cue" {
		t.Errorf("FilePath = %q", tf.FilePath)
	}
}

func TestParse_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "no tasks", src: `tasks: []`},
		{name: "bad task name", src: `tasks: [{name: "1abc"}]`},
		{name: "unknown field", src: `tasks: [{name: "a", bogus: true}]`},
		{name: "empty run", src: `tasks: [{name: "a", steps: [{run: ""}]}]`},
		{name: "push without remotes", src: `tasks: [{name: "a", steps: [{push: {remotes: []}}]}]`},
		{name: "bad env name", src: `tasks: [{name: "a", steps: [{require_env: "1X"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.src), "qtask.cue")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "qtask.cue") {
				t.Errorf("error should mention file name, got: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "unknown dep",
			src:     `tasks: [{name: "a", deps: ["b"]}]`,
			wantMsg: `tasks[0].deps[0]: unknown task "b"`,
		},
		{
			name:    "unknown sub-task",
			src:     `tasks: [{name: "a", steps: [{task: "b"}]}]`,
			wantMsg: `tasks[0].steps[0].task: unknown task "b"`,
		},
		{
			name:    "unknown default",
			src:     `default: "b", tasks: [{name: "a"}]`,
			wantMsg: `default: unknown task "b"`,
		},
		{
			name:    "duplicate",
			src:     `tasks: [{name: "a"}, {name: "a"}]`,
			wantMsg: `duplicate task "a"`,
		},
		{
			name:    "empty step",
			src:     `tasks: [{name: "a", steps: [{description: "nothing"}]}]`,
			wantMsg: "step has no action",
		},
		{
			name:    "several actions",
			src:     `tasks: [{name: "a", steps: [{run: "x", remove: ["y"]}]}]`,
			wantMsg: "step sets several actions (run, remove)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.src), "qtask.cue")
			if !errors.Is(err, ErrInvalidTaskfile) {
				t.Fatalf("expected ErrInvalidTaskfile, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidate_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "dep cycle", src: `tasks: [{name: "a", deps: ["b"]}, {name: "b", deps: ["a"]}]`},
		{name: "self dep", src: `tasks: [{name: "a", deps: ["a"]}]`},
		{name: "sub-task cycle", src: `tasks: [{name: "a", steps: [{task: "b"}]}, {name: "b", steps: [{task: "a"}]}]`},
		{name: "mixed cycle", src: `tasks: [{name: "a", deps: ["b"]}, {name: "b", steps: [{task: "a"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.src), "qtask.cue")
			var cycleErr *dag.CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected *dag.CycleError, got %T: %v", err, err)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	t.Parallel()

	tf, err := Parse([]byte(sampleCUE), "qtask.cue")
	if err != nil {
		t.Fatal(err)
	}
	_, err = tf.Lookup("deploy")
	if !errors.Is(err, ErrNoSuchTarget) {
		t.Fatalf("expected ErrNoSuchTarget, got %v", err)
	}
	if err.Error() != "no such target: deploy" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTaskName_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  TaskName
		valid bool
	}{
		{"docs", true},
		{"dev-install", true},
		{"pypi_meta", true},
		{"pep8", true},
		{"", false},
		{"8pep", false},
		{"has space", false},
		{"-x", false},
	}
	for _, tt := range tests {
		ok, errs := tt.name.IsValid()
		if ok != tt.valid {
			t.Errorf("TaskName(%q).IsValid() = %v, want %v", tt.name, ok, tt.valid)
		}
		if !ok && !errors.Is(errs[0], ErrInvalidTaskName) {
			t.Errorf("TaskName(%q) error does not wrap ErrInvalidTaskName", tt.name)
		}
	}
}

func TestStepString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step Step
		want string
	}{
		{Step{Run: "pdoc qcsv.py"}, "pdoc qcsv.py"},
		{Step{Task: "docs"}, "task docs"},
		{Step{Remove: []string{"build", "dist"}}, "remove build dist"},
		{Step{RequireEnv: "VIRTUAL_ENV"}, "require $VIRTUAL_ENV"},
		{Step{Push: &Push{Remotes: []string{"origin", "github"}, Branch: "master"}}, "push master to origin, github"},
		{Step{Push: &Push{Remotes: []string{"origin"}}}, "push HEAD to origin"},
		{Step{}, "<invalid step>"},
	}
	for _, tt := range tests {
		if got := tt.step.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestGraph(t *testing.T) {
	t.Parallel()

	tf, err := Parse([]byte(sampleCUE), "qtask.cue")
	if err != nil {
		t.Fatal(err)
	}
	order, err := tf.Graph().PlanFor("dev-install")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(order, []string{"docs", "dev-install"}) {
		t.Errorf("PlanFor(dev-install) = %v", order)
	}
}

func TestWorkDir(t *testing.T) {
	t.Parallel()

	base := filepath.FromSlash("/repo")
	if got := (&Task{}).WorkDir(base); got != base {
		t.Errorf("WorkDir() = %q, want %q", got, base)
	}
	if got, want := (&Task{Dir: "doc"}).WorkDir(base), filepath.Join(base, "doc"); got != want {
		t.Errorf("WorkDir() = %q, want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Find(dir); !errors.Is(err, ErrTaskfileNotFound) {
		t.Fatalf("expected ErrTaskfileNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "qtask.toml"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Find(dir)
	if err != nil || filepath.Base(got) != "qtask.toml" {
		t.Fatalf("Find() = %q, %v", got, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "qtask.cue"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Find(dir)
	if err != nil || filepath.Base(got) != "qtask.cue" {
		t.Fatalf("Find() should prefer qtask.cue, got %q, %v", got, err)
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"qtask.cue":  FormatCUE,
		"qtask.yaml": FormatYAML,
		"qtask.YML":  FormatYAML,
		"qtask.toml": FormatTOML,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("Makefile"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
