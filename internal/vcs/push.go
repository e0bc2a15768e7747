// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

var (
	// ErrRemoteNotFound is returned when the repository has no remote of the
	// requested name.
	ErrRemoteNotFound = errors.New("remote not found")
	// ErrNotRepository is returned when no git repository encloses the
	// working directory.
	ErrNotRepository = errors.New("not a git repository")
	// ErrDetachedHead is returned when no branch is given and HEAD does not
	// point at one.
	ErrDetachedHead = errors.New("HEAD is not on a branch")
)

type (
	// Pusher pushes a branch to a remote.
	Pusher interface {
		// Push sends branch to remote. An empty branch means the branch
		// HEAD points at. A remote that is already up to date is not an error.
		Push(ctx context.Context, remote, branch string) error
	}

	// PushError reports a failed push to one remote.
	PushError struct {
		Remote string
		Branch string
		Err    error
	}

	// GitPusher pushes through go-git from the repository enclosing Dir.
	GitPusher struct {
		// Dir is any directory inside the repository. Empty means the
		// current directory.
		Dir string
		// Auth overrides credential discovery when non-nil.
		Auth transport.AuthMethod
		// Progress receives the remote's progress messages when non-nil.
		Progress io.Writer
	}
)

// Error implements the error interface.
func (e *PushError) Error() string {
	return fmt.Sprintf("push %s to %s: %v", e.Branch, e.Remote, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PushError) Unwrap() error { return e.Err }

// NewGitPusher creates a GitPusher for the repository enclosing dir.
func NewGitPusher(dir string) *GitPusher {
	return &GitPusher{Dir: dir}
}

// Push implements Pusher.
func (p *GitPusher) Push(ctx context.Context, remoteName, branch string) error {
	repo, err := p.open()
	if err != nil {
		return err
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return &PushError{Remote: remoteName, Branch: branch, Err: ErrRemoteNotFound}
		}
		return &PushError{Remote: remoteName, Branch: branch, Err: err}
	}

	if branch == "" {
		branch, err = currentBranch(repo)
		if err != nil {
			return &PushError{Remote: remoteName, Branch: "HEAD", Err: err}
		}
	}

	ref := plumbing.NewBranchReferenceName(branch)
	opts := &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref.String() + ":" + ref.String())},
		Auth:       p.auth(remote.Config().URLs),
	}
	if p.Progress != nil {
		opts.Progress = p.Progress
	}

	slog.Debug("pushing branch", "remote", remoteName, "branch", branch)
	err = repo.PushContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Debug("remote already up to date", "remote", remoteName, "branch", branch)
		return nil
	}
	if err != nil {
		return &PushError{Remote: remoteName, Branch: branch, Err: err}
	}
	return nil
}

func (p *GitPusher) open() (*git.Repository, error) {
	dir := p.Dir
	if dir == "" {
		dir = "."
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	return repo, nil
}

func currentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Name().Short(), nil
}

// auth picks credentials for the remote's first URL: an explicit Auth, then
// SSH keys for ssh remotes, then a token from the environment for http(s).
func (p *GitPusher) auth(urls []string) transport.AuthMethod {
	if p.Auth != nil {
		return p.Auth
	}
	if len(urls) == 0 {
		return nil
	}
	ep, err := transport.NewEndpoint(urls[0])
	if err != nil {
		return nil
	}
	switch ep.Protocol {
	case "ssh":
		return sshAuth(ep.User)
	case "http", "https":
		return httpAuth(ep.Host)
	default:
		return nil
	}
}

func sshAuth(user string) transport.AuthMethod {
	if user == "" {
		user = "git"
	}
	if auth, err := ssh.NewSSHAgentAuth(user); err == nil {
		return auth
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile(user, keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func httpAuth(host string) transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && strings.HasSuffix(host, "github.com") {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "git", Password: token}
	}
	return nil
}
