// Package gitdriver creates and removes branches and worktrees, and reports
// dirty/ahead status. Branch resolution and the repo-common-dir lookup use
// go-git; worktree add/remove, status, and commit-count operations shell
// out to the git CLI, matching spec.md §4.6's explicit tool choice.
package gitdriver

import (
	"context"
	"errors"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/glide-cli/grove/internal/shell"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// Driver operates against the primary repository rooted at Root.
type Driver struct {
	Root     string
	executor *shell.Executor
}

// Open resolves the primary repository root starting from startDir and
// returns a Driver for it.
func Open(startDir string, executor *shell.Executor) (*Driver, error) {
	root, err := PrimaryRoot(startDir)
	if err != nil {
		return nil, err
	}
	return &Driver{Root: root, executor: executor}, nil
}

// CreateBranch creates branch from the primary repository's HEAD. Returns
// BranchAlreadyExists if the local branch is already present.
func (d *Driver) CreateBranch(branch string) error {
	repo, err := git.PlainOpen(d.Root)
	if err != nil {
		return groveerrors.New(groveerrors.TypeGit, "failed to open repository", groveerrors.WithCause(err))
	}

	ref := plumbing.NewBranchReferenceName(branch)
	if _, err := repo.Reference(ref, false); err == nil {
		return groveerrors.NewBranchAlreadyExists(branch)
	}

	head, err := repo.Head()
	if err != nil {
		return groveerrors.New(groveerrors.TypeGit, "failed to resolve HEAD", groveerrors.WithCause(err))
	}

	newRef := plumbing.NewHashReference(ref, head.Hash())
	if err := repo.Storer.SetReference(newRef); err != nil {
		return groveerrors.New(groveerrors.TypeGit, "failed to create branch "+branch, groveerrors.WithCause(err))
	}
	return nil
}

// BranchExists reports whether branch exists locally.
func (d *Driver) BranchExists(branch string) (bool, error) {
	repo, err := git.PlainOpen(d.Root)
	if err != nil {
		return false, groveerrors.New(groveerrors.TypeGit, "failed to open repository", groveerrors.WithCause(err))
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), false)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// DeleteBranch removes the local branch ref.
func (d *Driver) DeleteBranch(branch string) error {
	repo, err := git.PlainOpen(d.Root)
	if err != nil {
		return groveerrors.New(groveerrors.TypeGit, "failed to open repository", groveerrors.WithCause(err))
	}
	if err := repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(branch)); err != nil {
		return groveerrors.New(groveerrors.TypeGit, "failed to delete branch "+branch, groveerrors.WithCause(err))
	}
	return nil
}

// CreateWorktree shells out to `git worktree add <path> <branch>`.
func (d *Driver) CreateWorktree(ctx context.Context, path, branch string) error {
	cmd := shell.NewCommand("git", "worktree", "add", path, branch)
	cmd.WorkingDir = d.Root
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true

	result, err := d.executor.ExecuteWithContext(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return groveerrors.New(groveerrors.TypeGitCommand, "git worktree add failed for "+path,
			groveerrors.WithCause(gitCommandError(result, err)))
	}
	return nil
}

// RemoveWorktree shells out to `git worktree remove --force <path>`.
func (d *Driver) RemoveWorktree(ctx context.Context, path string) error {
	cmd := shell.NewCommand("git", "worktree", "remove", "--force", path)
	cmd.WorkingDir = d.Root
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true

	result, err := d.executor.ExecuteWithContext(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return groveerrors.New(groveerrors.TypeGitCommand, "git worktree remove failed for "+path,
			groveerrors.WithCause(gitCommandError(result, err)))
	}
	return nil
}

// HasUncommittedChanges runs `git status --porcelain` inside worktreePath.
func (d *Driver) HasUncommittedChanges(ctx context.Context, worktreePath string) (bool, error) {
	cmd := shell.NewCommand("git", "status", "--porcelain")
	cmd.WorkingDir = worktreePath
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true

	result, err := d.executor.ExecuteWithContext(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return false, groveerrors.New(groveerrors.TypeGitCommand, "git status failed for "+worktreePath,
			groveerrors.WithCause(gitCommandError(result, err)))
	}
	return strings.TrimSpace(string(result.Stdout)) != "", nil
}

// CommitsAhead runs `git rev-list --count base...branch` from worktreePath,
// returning (0, nil) when base cannot be resolved, per spec.md §9.
func (d *Driver) CommitsAhead(ctx context.Context, worktreePath, branch, base string) (int, error) {
	cmd := shell.NewCommand("git", "rev-list", "--count", base+"..."+branch)
	cmd.WorkingDir = worktreePath
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true

	result, err := d.executor.ExecuteWithContext(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return 0, nil
	}

	count := 0
	for _, r := range strings.TrimSpace(string(result.Stdout)) {
		if r < '0' || r > '9' {
			return 0, nil
		}
		count = count*10 + int(r-'0')
	}
	return count, nil
}

func gitCommandError(result *shell.Result, err error) error {
	if result != nil && len(result.Stderr) > 0 {
		return errors.New(strings.TrimSpace(string(result.Stderr)))
	}
	return err
}
