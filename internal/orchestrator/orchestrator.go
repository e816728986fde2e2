// Package orchestrator owns the staged plant/stop/uproot/prune lifecycle
// that composes the git, compose, port, lock, and workspace subsystems
// into one per-task environment, rolling back committed stages in reverse
// order on any later failure, mirroring the backup/restore-on-failure
// idiom the teacher uses for its own atomic binary replacement.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glide-cli/grove/internal/compose"
	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/lockmgr"
	"github.com/glide-cli/grove/internal/ports"
	"github.com/glide-cli/grove/internal/shell"
	"github.com/glide-cli/grove/internal/statestore"
	"github.com/glide-cli/grove/internal/toolcheck"
	"github.com/glide-cli/grove/internal/workspace"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/logging"
)

// State is one point in the per-task lifecycle described in spec.md §4.1.
type State string

const (
	StateAbsent   State = "absent"
	StatePlanting State = "planting"
	StateRunning  State = "running"
	StateStopped  State = "stopped"
	StateUproot   State = "uprooting"
)

// Orchestrator composes the lower-level subsystems into the plant/stop/
// start/uproot/prune/list/get operations.
type Orchestrator struct {
	stateRoot string
	cfg       *config.Config
	executor  *shell.Executor
	logger    *logging.Logger

	store    *statestore.Store
	locks    *lockmgr.Manager
	portReg  *ports.Registry
	compose  *compose.Controller
	tools    *toolcheck.Checker
	git      *gitdriver.Driver
	work     *workspace.Builder
}

// New wires every subsystem rooted at stateRoot, operating against the
// primary repository that git opens resolves to.
func New(stateRoot string, cfg *config.Config, git *gitdriver.Driver, executor *shell.Executor, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		stateRoot: stateRoot,
		cfg:       cfg,
		executor:  executor,
		logger:    logger,
		store:     statestore.New(stateRoot, logger),
		locks:     lockmgr.New(stateRoot),
		portReg:   ports.New(stateRoot, lockmgr.New(stateRoot)),
		compose:   compose.New(executor, logger),
		tools:     toolcheck.New(executor),
		git:       git,
		work:      workspace.New(executor),
	}
}

func (o *Orchestrator) worktreePath(task string) string {
	return filepath.Join(o.stateRoot, "worktrees", task)
}

func (o *Orchestrator) composeDir(task string) string {
	return filepath.Join(o.stateRoot, "compose", task)
}

func (o *Orchestrator) composeFile(task string) string {
	return filepath.Join(o.composeDir(task), "docker-compose.yml")
}

func (o *Orchestrator) composeEnvFile(task string) string {
	return filepath.Join(o.composeDir(task), ".env")
}

func (o *Orchestrator) composeProject(task string) string {
	return o.cfg.Project.ProjectName + "-" + task
}

func (o *Orchestrator) sessionName(task string) string {
	return o.cfg.Local.TmuxSessionName + "-" + task
}

// StateRoot returns the directory every grove's state, locks, ports, and
// optional template overrides live under.
func (o *Orchestrator) StateRoot() string {
	return o.stateRoot
}

// Get loads the record for task.
func (o *Orchestrator) Get(task string) (*statestore.Record, error) {
	return o.store.Load(task)
}

// List returns every record on disk, in task-name order.
func (o *Orchestrator) List() ([]*statestore.Record, error) {
	return o.store.List()
}

// State reports the lifecycle state of task, inferred from record
// presence and the liveness of its multiplexer session. A record whose
// session has died is reported Absent, the orphan signal spec.md §4.1
// uses for prune. A task with no record whose worktree is still on disk
// (after Stop) is reported Stopped.
func (o *Orchestrator) State(ctx context.Context, task string) State {
	r, err := o.store.Load(task)
	if err != nil {
		if _, statErr := os.Stat(o.worktreePath(task)); statErr == nil {
			return StateStopped
		}
		return StateAbsent
	}
	if r.TmuxSession != "" && o.work.IsAlive(ctx, r.TmuxSession) {
		return StateRunning
	}
	return StateAbsent
}

// PlantOptions groups plant's arguments, mirroring the signature in
// spec.md §4.1.
type PlantOptions struct {
	Task             string
	Branch           string
	TaskType         string
	MinDiskMB        int64
	InitialCmd       string
	EnableCompose    bool
	HealthTimeout    int
	PostStartHooks   []string
	DBClone          bool
	DBSource         string
	ShareFrom        string
	SharedPorts      *statestore.PortTriple
}

func rollbackErr(stage string, cause error) error {
	return groveerrors.New(groveerrors.TypeOther, fmt.Sprintf("plant failed at stage %q, rolled back", stage),
		groveerrors.WithCause(cause))
}
