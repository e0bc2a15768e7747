// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	TaskfileNotFoundId Id = iota + 1
	TaskfileParseErrorId
	NoSuchTargetId
	DependencyCycleId
	PreconditionFailedId
	StepFailedId
	PushFailedId
	RuntimeNotAvailableId
	ShellNotFoundId
	ConfigLoadFailedId
)

type (
	//nolint:revive // Id mirrors the catalogue's field naming
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // documentation pages for this failure class
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown with the given glamour
// style ("dark", "light", "notty", "auto" or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	links := append(slices.Clone(i.docLinks), i.extLinks...)
	if len(links) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range links {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	taskfileNotFoundIssue = &Issue{
		id: TaskfileNotFoundId,
		mdMsg: `
# No task file found!

qtask looks for one of these files in the current directory:

1. qtask.cue
2. qtask.yaml / qtask.yml
3. qtask.toml

## Things you can try:
- Create one from the release template:
~~~
$ qtask init
~~~
- Point qtask at a task file elsewhere:
~~~
$ qtask --file path/to/qtask.cue list
~~~`,
	}

	taskfileParseErrorIssue = &Issue{
		id: TaskfileParseErrorId,
		mdMsg: `
# Failed to parse the task file!

The task file has a syntax error or does not match the task file schema.

## Common issues:
- Task names must start with a letter and contain only letters, digits, '-' and '_'
- Every step sets exactly one of: run, task, remove, require_env, push
- ` + "`push.remotes`" + ` must list at least one remote
- Prerequisites and task steps must name tasks defined in the same file

## Check it with:
~~~
$ qtask validate
~~~`,
	}

	noSuchTargetIssue = &Issue{
		id: NoSuchTargetId,
		mdMsg: `
# No such target!

The task you asked for is not defined in the task file. Nothing was run.

## Things you can try:
- List the available tasks:
~~~
$ qtask list
~~~
- Check for typos; task names are case-sensitive`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Some tasks depend on each other, directly or through task steps, so no
order exists in which all of them can run.

## Things you can try:
- Remove one of the edges named in the error
- Move shared steps into a separate task that both depend on`,
	}

	preconditionFailedIssue = &Issue{
		id: PreconditionFailedId,
		mdMsg: `
# Precondition failed!

A ` + "`require_env`" + ` step found its environment variable unset or empty.
The task stopped before any later step ran.

## Things you can try:
- For VIRTUAL_ENV, activate the project's virtualenv first:
~~~
$ source venv/bin/activate
~~~
- Export the variable and run the task again`,
	}

	stepFailedIssue = &Issue{
		id: StepFailedId,
		mdMsg: `
# A step failed!

A command exited with a non-zero status. qtask stops at the first failure and
exits with the same status; no later step or task was run.

## Things you can try:
- Run the failing command by hand to see its full output
- Preview what a task would do without running it:
~~~
$ qtask run --dry-run <task>
~~~`,
	}

	pushFailedIssue = &Issue{
		id: PushFailedId,
		mdMsg: `
# Push failed!

Remotes are pushed in the order listed; the first failure stops the step, so
remotes after the failing one were not pushed.

## Things you can try:
- Check that the remote exists: ` + "`git remote -v`" + `
- Make sure credentials are available (ssh-agent, or GITHUB_TOKEN / GIT_TOKEN for https)
- Pull and merge if the remote rejected a non-fast-forward push`,
	}

	runtimeNotAvailableIssue = &Issue{
		id: RuntimeNotAvailableId,
		mdMsg: `
# Runtime not available!

The selected runtime cannot run on this system.

## Available runtimes:
- **native** runs steps with the system shell
- **virtual** runs steps with the built-in POSIX shell interpreter

## Things you can try:
~~~
$ qtask run --runtime virtual <task>
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

The native runtime needs a shell: $SHELL, bash or sh (pwsh, powershell or
cmd on Windows).

## Things you can try:
- Install a POSIX shell, or set SHELL
- Use the built-in interpreter instead: ` + "`--runtime virtual`",
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where qtask reads its configuration:
~~~
$ qtask config path
~~~
- Write a fresh default configuration:
~~~
$ qtask config init
~~~`,
	}

	issues = map[Id]*Issue{
		taskfileNotFoundIssue.Id():    taskfileNotFoundIssue,
		taskfileParseErrorIssue.Id():  taskfileParseErrorIssue,
		noSuchTargetIssue.Id():        noSuchTargetIssue,
		dependencyCycleIssue.Id():     dependencyCycleIssue,
		preconditionFailedIssue.Id():  preconditionFailedIssue,
		stepFailedIssue.Id():          stepFailedIssue,
		pushFailedIssue.Id():          pushFailedIssue,
		runtimeNotAvailableIssue.Id(): runtimeNotAvailableIssue,
		shellNotFoundIssue.Id():       shellNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

// Values returns every catalogue entry ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
