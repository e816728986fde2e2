package cli

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/orchestrator"
	"github.com/glide-cli/grove/internal/shell"
	"github.com/glide-cli/grove/internal/statestore"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOrchestratorFixture builds an Orchestrator rooted at a fresh state
// directory seeded directly through statestore, bypassing Plant entirely
// since firstRecord only ever reads back through orch.List().
func newTestOrchestratorFixture(t *testing.T, records []*statestore.Record) (*orchestrator.Orchestrator, string) {
	t.Helper()
	repoRoot := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = repoRoot
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	run("init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "README.md"), []byte("hello\n"), 0o644))
	run("add", "README.md")
	run("commit", "-m", "initial commit")

	stateRoot := t.TempDir()
	store := statestore.New(stateRoot, logging.Default())
	for _, r := range records {
		require.NoError(t, store.Save(r))
	}

	executor := shell.NewExecutor(shell.Options{})
	driver, err := gitdriver.Open(repoRoot, executor)
	require.NoError(t, err)

	cfg := &config.Config{Project: config.ProjectConfig{ProjectName: "acme", DefaultBranch: "main"}}
	return orchestrator.New(stateRoot, cfg, driver, executor, logging.Default()), stateRoot
}

func TestResolvePromptInitialCmd_Empty(t *testing.T) {
	got, err := resolvePromptInitialCmd("", "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestResolvePromptInitialCmd_InlineText(t *testing.T) {
	got, err := resolvePromptInitialCmd("fix the failing test", "")
	require.NoError(t, err)
	assert.Equal(t, `claude --prompt 'fix the failing test'`, got)
}

func TestResolvePromptInitialCmd_InlineTextNeedingEscaping(t *testing.T) {
	got, err := resolvePromptInitialCmd(`it's broken`, "")
	require.NoError(t, err)
	assert.Equal(t, `claude --prompt 'it'\''s broken'`, got)
}

func TestResolvePromptInitialCmd_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("investigate the flaky build"), 0o644))

	got, err := resolvePromptInitialCmd("", path)
	require.NoError(t, err)
	assert.Equal(t, `claude --prompt 'investigate the flaky build'`, got)
}

func TestResolvePromptInitialCmd_MissingFile(t *testing.T) {
	_, err := resolvePromptInitialCmd("", filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	var ge *groveerrors.GroveError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, groveerrors.TypeOther, ge.Type)
}

func TestFirstRecord_SkipsNonMatching(t *testing.T) {
	orch, _ := newTestOrchestratorFixture(t, []*statestore.Record{
		{TaskName: "tree-one", SharedGrove: "base"},
		{TaskName: "grove-one", ComposeFile: "compose.yml"},
	})

	record, err := firstRecord(orch, (*statestore.Record).IsGrove)
	require.NoError(t, err)
	assert.Equal(t, "grove-one", record.TaskName)
}

func TestFirstRecord_NoMatchReturnsNotFound(t *testing.T) {
	orch, _ := newTestOrchestratorFixture(t, []*statestore.Record{
		{TaskName: "tree-one", SharedGrove: "base"},
	})

	_, err := firstRecord(orch, (*statestore.Record).IsGrove)
	require.Error(t, err)
	var ge *groveerrors.GroveError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, groveerrors.TypeNotFound, ge.Type)
}
