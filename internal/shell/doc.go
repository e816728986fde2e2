// Package shell runs the subprocesses grove's drivers shell out to: git
// worktree management, docker compose, tmux session control, and tool
// version checks.
//
// # Running a command
//
//	executor := shell.NewExecutor(shell.Options{})
//	cmd := shell.NewCommand("git", "worktree", "add", path, branch)
//	cmd.WorkingDir = repoRoot
//	cmd.CaptureOutput = true
//
//	result, err := executor.ExecuteWithContext(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	if result.ExitCode != 0 {
//	    return fmt.Errorf("git worktree add failed: %s", result.Stderr)
//	}
//
// ExecuteWithContext picks an ExecutionStrategy from the command's fields:
// PipeStrategy when Stdin is set (streaming a pg_dump into psql),
// BasicStrategy otherwise. A timeout is applied by deriving ctx with
// context.WithTimeout before calling ExecuteWithContext, rather than by a
// separate strategy.
//
// # Attaching a terminal
//
// Commands that need a real terminal (tmux attach) go through the legacy
// Execute method instead, which allocates a pseudo-TTY and puts the calling
// terminal into raw mode for the duration:
//
//	cmd := shell.NewCommand("tmux", "attach", "-t", session)
//	cmd.Mode = shell.ModeInteractive
//	cmd.AllocateTTY = true
//	result, err := executor.Execute(cmd)
//
// Execute falls back to plain I/O passthrough when AllocateTTY is unset or
// stdin isn't itself a terminal, so the same command works under `grove
// tree attach` in an interactive shell and in a non-interactive CI run.
package shell
