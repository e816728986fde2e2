package gitdriver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/glide-cli/grove/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	run("init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hello\n"), 0o644))
	run("add", "README.md")
	run("commit", "-m", "initial commit")
	return root
}

func TestDriver_CreateAndDeleteBranch(t *testing.T) {
	root := initRepo(t)
	d, err := Open(root, shell.NewExecutor(shell.Options{}))
	require.NoError(t, err)
	assert.Equal(t, root, d.Root)

	require.NoError(t, d.CreateBranch("acme/feature/fix-x"))

	exists, err := d.BranchExists("acme/feature/fix-x")
	require.NoError(t, err)
	assert.True(t, exists)

	err = d.CreateBranch("acme/feature/fix-x")
	require.Error(t, err, "recreating an existing branch should fail")

	require.NoError(t, d.DeleteBranch("acme/feature/fix-x"))
	exists, err = d.BranchExists("acme/feature/fix-x")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDriver_CreateAndRemoveWorktree(t *testing.T) {
	root := initRepo(t)
	d, err := Open(root, shell.NewExecutor(shell.Options{}))
	require.NoError(t, err)

	require.NoError(t, d.CreateBranch("acme/feature/fix-y"))

	wtPath := filepath.Join(root, "..", "worktree-fix-y")
	ctx := context.Background()
	require.NoError(t, d.CreateWorktree(ctx, wtPath, "acme/feature/fix-y"))

	dirty, err := d.HasUncommittedChanges(ctx, wtPath)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(wtPath, "new.txt"), []byte("x"), 0o644))
	dirty, err = d.HasUncommittedChanges(ctx, wtPath)
	require.NoError(t, err)
	assert.True(t, dirty)

	require.NoError(t, d.RemoveWorktree(ctx, wtPath))
}

func TestDriver_CommitsAhead_MissingBaseReturnsZero(t *testing.T) {
	root := initRepo(t)
	d, err := Open(root, shell.NewExecutor(shell.Options{}))
	require.NoError(t, err)

	count, err := d.CommitsAhead(context.Background(), root, "main", "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
