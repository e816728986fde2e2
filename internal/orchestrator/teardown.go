package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/glide-cli/grove/internal/statestore"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// findSharingTrees returns the task names of every tree whose record points
// its SharedGrove at task.
func (o *Orchestrator) findSharingTrees(task string) ([]string, error) {
	records, err := o.store.List()
	if err != nil {
		return nil, err
	}
	var sharing []string
	for _, r := range records {
		if r.SharedGrove == task {
			sharing = append(sharing, r.TaskName)
		}
	}
	return sharing, nil
}

// teardownEphemeral tears down the compose stack and tmux session for a
// record, leaving worktree, branch and state file untouched. Shared by Stop
// and Uproot.
func (o *Orchestrator) teardownEphemeral(ctx context.Context, r *statestore.Record) {
	if r.ComposeFile != "" {
		o.compose.Down(ctx, r.ComposeFile, o.composeProject(r.TaskName))
		_ = o.portReg.Release(r.TaskName)
		_ = os.RemoveAll(o.composeDir(r.TaskName))
	}
	if r.TmuxSession != "" {
		if err := o.work.Kill(ctx, r.TmuxSession); err != nil {
			o.logger.Warn("failed to kill tmux session", "session", r.TmuxSession, "error", err)
		}
	}
}

// Stop tears down a grove or tree's ephemeral resources (compose stack,
// tmux session, state file) but keeps its worktree and branch, so the task
// can be resumed later with Start. A grove with sharing trees is refused
// unless force is set, in which case its trees are stopped first.
func (o *Orchestrator) Stop(ctx context.Context, task string, force bool) error {
	lock, err := o.locks.AcquireTask(task)
	if err != nil {
		return groveerrors.NewAlreadyRunning(task)
	}
	defer lock.Unlock()

	record, err := o.store.Load(task)
	if err != nil {
		return err
	}

	if record.IsGrove() {
		sharing, err := o.findSharingTrees(task)
		if err != nil {
			return err
		}
		if len(sharing) > 0 {
			if !force {
				return groveerrors.New(groveerrors.TypeInvalidState,
					fmt.Sprintf("grove %q has sharing tree(s): %v; stop or uproot them first, or use --force", task, sharing))
			}
			for _, t := range sharing {
				o.logger.Info("stopping sharing tree", "tree", t)
				if err := o.Stop(ctx, t, false); err != nil {
					o.logger.Warn("failed to stop sharing tree", "tree", t, "error", err)
				}
			}
		}
	}

	o.teardownEphemeral(ctx, record)

	if err := o.store.Delete(task); err != nil {
		return err
	}
	lock.Remove()
	return nil
}

// Start resumes a stopped task by re-running Plant with the caller-supplied
// opts; the options of the original plant are not stored. Stop removes the state file but keeps the
// worktree and branch, so step 5 of Plant reuses them as a no-op, and every
// ephemeral resource (ports, compose stack, tmux session) is reconstructed
// from scratch. Compose project and directory names are derived
// deterministically from the task name, so the resumed stack binds to the
// same name docker used before the stop.
func (o *Orchestrator) Start(ctx context.Context, opts PlantOptions) (*statestore.Record, error) {
	if o.store.Exists(opts.Task) {
		return nil, groveerrors.NewAlreadyRunning(opts.Task)
	}
	return o.Plant(ctx, opts)
}

// Uproot tears down everything Stop does, plus the worktree, the branch and
// the state file. Unless force is set, it refuses to destroy a worktree
// with uncommitted changes or commits not yet merged to main.
func (o *Orchestrator) Uproot(ctx context.Context, task string, force bool) error {
	lock, err := o.locks.AcquireTask(task)
	if err != nil {
		return groveerrors.NewAlreadyRunning(task)
	}
	defer lock.Unlock()

	record, err := o.store.Load(task)
	if err != nil {
		return err
	}

	if record.IsGrove() {
		sharing, err := o.findSharingTrees(task)
		if err != nil {
			return err
		}
		if len(sharing) > 0 {
			if !force {
				return groveerrors.New(groveerrors.TypeInvalidState,
					fmt.Sprintf("grove %q has sharing tree(s): %v; stop or uproot them first, or use --force", task, sharing))
			}
			for _, t := range sharing {
				o.logger.Info("stopping sharing tree", "tree", t)
				if err := o.Stop(ctx, t, false); err != nil {
					o.logger.Warn("failed to stop sharing tree", "tree", t, "error", err)
				}
			}
		}
	}

	if !force {
		if _, statErr := os.Stat(record.WorktreePath); statErr == nil {
			var reasons []string
			if dirty, err := o.git.HasUncommittedChanges(ctx, record.WorktreePath); err == nil && dirty {
				reasons = append(reasons, "uncommitted changes")
			}
			if ahead, err := o.git.CommitsAhead(ctx, record.WorktreePath, record.Branch, "main"); err == nil && ahead > 0 {
				reasons = append(reasons, fmt.Sprintf("%d unpushed commit(s)", ahead))
			}
			if len(reasons) > 0 {
				return groveerrors.NewDirtyWorktree(task, reasons)
			}
		}
	}

	o.teardownEphemeral(ctx, record)

	if _, err := os.Stat(record.WorktreePath); err == nil {
		if err := o.git.RemoveWorktree(ctx, record.WorktreePath); err != nil {
			o.logger.Warn("failed to remove worktree", "path", record.WorktreePath, "error", err)
		}
	}
	if err := o.git.DeleteBranch(record.Branch); err != nil {
		o.logger.Warn("failed to delete branch", "branch", record.Branch, "error", err)
	}

	if err := o.store.Delete(task); err != nil {
		return err
	}
	lock.Remove()
	return nil
}
