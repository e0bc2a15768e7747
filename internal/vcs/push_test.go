// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a repository with one commit on master.
func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Master},
	})
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "qcsv.py"), []byte("# qcsv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("qcsv.py"); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "qtask", Email: "qtask@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir, repo
}

func addRemote(t *testing.T, repo *git.Repository, name, url string) {
	t.Helper()
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		t.Fatalf("CreateRemote(%s): %v", name, err)
	}
}

func TestGitPusher_RemoteNotFound(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	err := NewGitPusher(dir).Push(context.Background(), "github", "master")
	if !errors.Is(err, ErrRemoteNotFound) {
		t.Fatalf("Push() error = %v, want ErrRemoteNotFound", err)
	}
	var pushErr *PushError
	if !errors.As(err, &pushErr) || pushErr.Remote != "github" {
		t.Errorf("expected *PushError for github, got %#v", err)
	}
}

func TestGitPusher_NotRepository(t *testing.T) {
	t.Parallel()

	err := NewGitPusher(t.TempDir()).Push(context.Background(), "origin", "master")
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("Push() error = %v, want ErrNotRepository", err)
	}
}

func TestGitPusher_SubdirectoryFindsRepository(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "doc")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	err := NewGitPusher(sub).Push(context.Background(), "origin", "")
	if !errors.Is(err, ErrRemoteNotFound) {
		t.Fatalf("Push() from subdirectory error = %v, want ErrRemoteNotFound", err)
	}
}

func TestCurrentBranch(t *testing.T) {
	t.Parallel()

	_, repo := initRepo(t)
	got, err := currentBranch(repo)
	if err != nil || got != "master" {
		t.Fatalf("currentBranch() = %q, %v", got, err)
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	wt, _ := repo.Worktree()
	if err := wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}); err != nil {
		t.Fatal(err)
	}
	if _, err := currentBranch(repo); !errors.Is(err, ErrDetachedHead) {
		t.Errorf("detached HEAD error = %v, want ErrDetachedHead", err)
	}
}

func TestGitPusher_PushToLocalBare(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("local file transport needs git on PATH")
	}
	t.Parallel()

	dir, repo := initRepo(t)
	bare := t.TempDir()
	if _, err := git.PlainInit(bare, true); err != nil {
		t.Fatal(err)
	}
	addRemote(t, repo, "origin", bare)

	p := NewGitPusher(dir)
	if err := p.Push(context.Background(), "origin", ""); err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	remoteRepo, err := git.PlainOpen(bare)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := remoteRepo.Reference(plumbing.NewBranchReferenceName("master"), true)
	if err != nil {
		t.Fatalf("master not pushed: %v", err)
	}
	head, _ := repo.Head()
	if ref.Hash() != head.Hash() {
		t.Errorf("remote master = %s, want %s", ref.Hash(), head.Hash())
	}

	if err := p.Push(context.Background(), "origin", "master"); err != nil {
		t.Errorf("second push should be up to date, got %v", err)
	}
}

func TestGitPusher_Auth(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GIT_TOKEN", "secret")

	p := &GitPusher{}
	if auth := p.auth([]string{"https://example.com/qcsv.git"}); auth == nil {
		t.Error("expected token auth for https remote")
	}
	if auth := p.auth([]string{"/srv/git/qcsv.git"}); auth != nil {
		t.Errorf("local remote should need no auth, got %v", auth)
	}
	if auth := p.auth(nil); auth != nil {
		t.Errorf("no URLs should give no auth, got %v", auth)
	}
}
