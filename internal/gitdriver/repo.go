package gitdriver

import (
	"fmt"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// PrimaryRoot resolves the working-tree root of the primary repository that
// owns startDir, following the common-dir pointer from inside a linked
// worktree so nested invocations still target the primary repo.
func PrimaryRoot(startDir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(startDir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return "", groveerrors.New(groveerrors.TypeNotRepo, "not a git repository", groveerrors.WithCause(err))
	}

	fsStorer, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", groveerrors.New(groveerrors.TypeGit, "unsupported git storage backend", groveerrors.WithCause(fmt.Errorf("%T", repo.Storer)))
	}

	commonDir := fsStorer.Filesystem().Root()
	return filepath.Dir(commonDir), nil
}
