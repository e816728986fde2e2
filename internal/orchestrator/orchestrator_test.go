package orchestrator

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/shell"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a real git repository with one commit on main, mirroring
// internal/gitdriver's own test fixture since CreateWorktree/CreateBranch
// shell out to the real git binary rather than a fake.
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

// installFakeTmux puts a stub tmux on dir that reports every session as
// alive and every command as successful, the shape Build/IsAlive/Kill need
// to believe a workspace was planted without a real multiplexer.
func installFakeTmux(t *testing.T, dir string) {
	t.Helper()
	script := "#!/bin/sh\n" +
		"case \"$1 $2\" in\n" +
		"  \"show-options -g\") echo 'base-index 0' ;;\n" +
		"esac\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmux"), []byte(script), 0o755))
}

// installFakeDocker puts a stub docker on dir that satisfies the compose
// version check and reports every service in psJSON as running/healthy for
// any `ps --format json` call, so WaitHealthy returns on its first poll.
func installFakeDocker(t *testing.T, dir, psJSON string) {
	t.Helper()
	psPath := filepath.Join(dir, "ps.json")
	require.NoError(t, os.WriteFile(psPath, []byte(psJSON), 0o644))
	script := "#!/bin/sh\n" +
		"case \" $* \" in\n" +
		"  *\" version --short \"*) echo '2.20.0' ;;\n" +
		"  *\" ps --format json \"*) cat " + psPath + " ;;\n" +
		"esac\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker"), []byte(script), 0o755))
}

// testHarness bundles a real git repo with a fresh Orchestrator rooted at a
// separate state directory, and the fake-tool PATH entry backing it.
type testHarness struct {
	orch     *Orchestrator
	repoRoot string
	toolsDir string
}

func newHarness(t *testing.T, composeReady string) *testHarness {
	t.Helper()
	repoRoot := initRepo(t)
	toolsDir := t.TempDir()
	installFakeTmux(t, toolsDir)
	if composeReady != "" {
		installFakeDocker(t, toolsDir, composeReady)
	}
	t.Setenv("PATH", toolsDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	executor := shell.NewExecutor(shell.Options{})
	driver, err := gitdriver.Open(repoRoot, executor)
	require.NoError(t, err)

	cfg := &config.Config{
		Project: config.ProjectConfig{ProjectName: "acme", DefaultBranch: "main"},
		Local: config.LocalConfig{
			TmuxSessionName:          "task",
			MinDiskSpaceMB:           1,
			ComposeHealthTimeoutSecs: 5,
		},
	}

	stateRoot := t.TempDir()
	orch := New(stateRoot, cfg, driver, executor, logging.Default())
	return &testHarness{orch: orch, repoRoot: repoRoot, toolsDir: toolsDir}
}

func allHealthyPS() string {
	return `[{"Service":"app","State":"running","Health":""},` +
		`{"Service":"db","State":"running","Health":"healthy"},` +
		`{"Service":"cache","State":"running","Health":""}]`
}

func TestOrchestrator_Plant_Bare(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	record, err := h.orch.Plant(ctx, PlantOptions{Task: "fix-x", Branch: "acme/feature/fix-x", TaskType: "feature"})
	require.NoError(t, err)
	assert.False(t, record.IsGrove())
	assert.Equal(t, "task-fix-x", record.TmuxSession)
	assert.DirExists(t, record.WorktreePath)

	assert.Equal(t, StateRunning, h.orch.State(ctx, "fix-x"))

	records, err := h.orch.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fix-x", records[0].TaskName)
}

func TestOrchestrator_Plant_DuplicateRejected(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	opts := PlantOptions{Task: "dup", Branch: "acme/feature/dup"}
	_, err := h.orch.Plant(ctx, opts)
	require.NoError(t, err)

	_, err = h.orch.Plant(ctx, opts)
	require.Error(t, err)
	var ge *groveerrors.GroveError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, groveerrors.TypeAlreadyExists, ge.Type)
}

func TestOrchestrator_Plant_Compose(t *testing.T) {
	h := newHarness(t, allHealthyPS())
	ctx := context.Background()

	record, err := h.orch.Plant(ctx, PlantOptions{
		Task:          "feat-a",
		Branch:        "acme/feature/feat-a",
		EnableCompose: true,
	})
	require.NoError(t, err)
	assert.True(t, record.IsGrove())
	require.NotNil(t, record.ComposePorts)
	assert.NotZero(t, record.ComposePorts.App)
	assert.FileExists(t, record.ComposeFile)

	report, err := h.orch.Health(ctx, "feat-a")
	require.NoError(t, err)
	assert.True(t, report.Healthy)
}

func TestOrchestrator_StopStart_ResumeCycle(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	opts := PlantOptions{Task: "resume-me", Branch: "acme/feature/resume-me"}
	original, err := h.orch.Plant(ctx, opts)
	require.NoError(t, err)

	require.NoError(t, h.orch.Stop(ctx, "resume-me", false))
	assert.False(t, h.orch.store.Exists("resume-me"))
	assert.DirExists(t, original.WorktreePath)

	resumed, err := h.orch.Start(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, original.WorktreePath, resumed.WorktreePath)
	assert.Equal(t, original.Branch, resumed.Branch)

	// Starting an already-running task is rejected.
	_, err = h.orch.Start(ctx, opts)
	require.Error(t, err)
}

func TestOrchestrator_Uproot_DirtyRefusedThenForced(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	record, err := h.orch.Plant(ctx, PlantOptions{Task: "dirty", Branch: "acme/feature/dirty"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(record.WorktreePath, "scratch.txt"), []byte("wip"), 0o644))

	err = h.orch.Uproot(ctx, "dirty", false)
	require.Error(t, err)
	var ge *groveerrors.GroveError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, groveerrors.TypeInvalidState, ge.Type)
	assert.DirExists(t, record.WorktreePath)

	require.NoError(t, h.orch.Uproot(ctx, "dirty", true))
	_, err = h.orch.Get("dirty")
	require.Error(t, err)
	assert.NoDirExists(t, record.WorktreePath)
}

func TestOrchestrator_PlantTree_SharedGroveLifecycle(t *testing.T) {
	h := newHarness(t, allHealthyPS())
	ctx := context.Background()

	grove, err := h.orch.Plant(ctx, PlantOptions{Task: "base", Branch: "acme/feature/base", EnableCompose: true})
	require.NoError(t, err)

	tree, err := h.orch.Plant(ctx, PlantOptions{Task: "base-helper", Branch: "acme/feature/base-helper", ShareFrom: "base"})
	require.NoError(t, err)
	assert.True(t, tree.IsTree())
	assert.Equal(t, "base", tree.SharedGrove)
	assert.Equal(t, grove.ComposePorts, tree.SharedComposePorts)

	// Stopping the shared grove is refused while a tree depends on it.
	err = h.orch.Stop(ctx, "base", false)
	require.Error(t, err)

	// Forcing stops the dependent tree first, then the grove.
	require.NoError(t, h.orch.Stop(ctx, "base", true))
	assert.False(t, h.orch.store.Exists("base"))
	assert.False(t, h.orch.store.Exists("base-helper"))
}

func TestOrchestrator_PlantTree_RequiresRunningGrove(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, err := h.orch.Plant(ctx, PlantOptions{Task: "orphan-tree", Branch: "acme/feature/orphan-tree", ShareFrom: "nonexistent"})
	require.Error(t, err)
}

func TestOrchestrator_Prune_RemovesOrphan(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, err := h.orch.Plant(ctx, PlantOptions{Task: "alive", Branch: "acme/feature/alive"})
	require.NoError(t, err)

	// A second task is planted, then every tmux session is "killed" by
	// pointing PATH at a tmux stub that reports each session as dead, so
	// both records become orphans, as after a crashed multiplexer.
	_, err = h.orch.Plant(ctx, PlantOptions{Task: "orphaned", Branch: "acme/feature/orphaned"})
	require.NoError(t, err)

	deadTmux := t.TempDir()
	deadScript := "#!/bin/sh\nexit 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(deadTmux, "tmux"), []byte(deadScript), 0o755))
	t.Setenv("PATH", deadTmux+string(os.PathListSeparator)+os.Getenv("PATH"))

	pruned, err := h.orch.Prune(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alive", "orphaned"}, pruned)

	records, err := h.orch.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOrchestrator_Transplant_RequiresGrove(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	_, err := h.orch.Plant(ctx, PlantOptions{Task: "plain", Branch: "acme/feature/plain"})
	require.NoError(t, err)

	err = h.orch.Transplant(ctx, "plain", "")
	require.Error(t, err)
	var ge *groveerrors.GroveError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, groveerrors.TypeInvalidState, ge.Type)
}

func TestOrchestrator_Health_GroveNotFound(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.orch.Health(context.Background(), "does-not-exist")
	require.Error(t, err)
}
