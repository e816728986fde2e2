package orchestrator

import (
	"context"

	"github.com/glide-cli/grove/internal/shell"
	"github.com/glide-cli/grove/internal/workspace"
)

// Attach returns the shell command that attaches the caller's terminal to
// session. Commands run it through their own executor so raw-mode/pty
// handling stays in internal/shell rather than leaking into the CLI layer.
func (o *Orchestrator) Attach(session string) *shell.Command {
	return o.work.Attach(session)
}

// Executor exposes the shell executor so callers can run the command
// Attach returns.
func (o *Orchestrator) Executor() *shell.Executor {
	return o.executor
}

// ApplyLayout re-applies a tmux layout preset to task's windowIndex'th
// window without replanting anything else, per SPEC_FULL.md's supplemented
// `grove layout`.
func (o *Orchestrator) ApplyLayout(ctx context.Context, task string, windowIndex int, preset workspace.Layout) error {
	record, err := o.store.Load(task)
	if err != nil {
		return err
	}
	return o.work.ApplyLayout(ctx, record.TmuxSession, windowIndex, preset)
}

// BuildImage rebuilds task's compose image without a full up, per
// SPEC_FULL.md's supplemented `grove build`.
func (o *Orchestrator) BuildImage(ctx context.Context, task string) error {
	record, err := o.store.Load(task)
	if err != nil {
		return err
	}
	return o.compose.Build(ctx, record.ComposeFile, o.composeProject(task))
}
