package orchestrator

import (
	"context"
	"fmt"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// Transplant re-runs only the database initialization stage against an
// already running grove: a clone when dbSource is given or the local config
// sets compose_db_source, otherwise a prepare+seed. It is the userland recovery path plant's warnings point to
// when the original db init failed non-fatally.
func (o *Orchestrator) Transplant(ctx context.Context, task, dbSource string) error {
	record, err := o.store.Load(task)
	if err != nil {
		return err
	}
	if !record.IsGrove() {
		return groveerrors.New(groveerrors.TypeInvalidState, fmt.Sprintf("task %q has no compose stack to transplant a database into", task))
	}
	if record.TmuxSession == "" || !o.work.IsAlive(ctx, record.TmuxSession) {
		return groveerrors.New(groveerrors.TypeInvalidState, fmt.Sprintf("grove %q is not running", task))
	}

	opts := PlantOptions{
		Task:     task,
		DBClone:  dbSource != "" || o.cfg.Local.ComposeDBSource != "",
		DBSource: dbSource,
	}
	o.initDatabase(ctx, opts, record.ComposeFile, record.WorktreePath)
	return nil
}
