package orchestrator

import (
	"context"
	"os"

	"github.com/glide-cli/grove/internal/statestore"
)

// Prune finds and removes orphaned records: a record whose tmux session no
// longer exists, meaning its resources died outside of Stop/Uproot (a
// killed session, a host reboot). It returns the task names it removed.
func (o *Orchestrator) Prune(ctx context.Context) ([]string, error) {
	orphans, err := o.findOrphans(ctx)
	if err != nil {
		return nil, err
	}

	var pruned []string
	for _, r := range orphans {
		if err := o.cleanupOrphan(ctx, r); err != nil {
			o.logger.Warn("failed to clean up orphan", "task", r.TaskName, "error", err)
			continue
		}
		pruned = append(pruned, r.TaskName)
	}
	return pruned, nil
}

func (o *Orchestrator) findOrphans(ctx context.Context) ([]*statestore.Record, error) {
	records, err := o.store.List()
	if err != nil {
		return nil, err
	}

	var orphans []*statestore.Record
	for _, r := range records {
		if r.TmuxSession == "" || !o.work.IsAlive(ctx, r.TmuxSession) {
			orphans = append(orphans, r)
		}
	}
	return orphans, nil
}

// cleanupOrphan mirrors Uproot's teardown for a record whose session is
// already gone: when the record has a compose file it runs compose down,
// releases ports, and removes the compose directory; it then removes the
// worktree, deletes the record, and removes the task lock. It skips the
// tmux kill and leaves the branch in place.
func (o *Orchestrator) cleanupOrphan(ctx context.Context, r *statestore.Record) error {
	if r.ComposeFile != "" {
		o.compose.Down(ctx, r.ComposeFile, o.composeProject(r.TaskName))
		_ = o.portReg.Release(r.TaskName)
		_ = os.RemoveAll(o.composeDir(r.TaskName))
	}

	if _, err := os.Stat(r.WorktreePath); err == nil {
		if err := o.git.RemoveWorktree(ctx, r.WorktreePath); err != nil {
			o.logger.Warn("failed to remove orphan worktree", "path", r.WorktreePath, "error", err)
		}
	}

	if err := o.store.Delete(r.TaskName); err != nil {
		return err
	}

	lock, err := o.locks.AcquireTask(r.TaskName)
	if err == nil {
		lock.Remove()
	}
	return nil
}
