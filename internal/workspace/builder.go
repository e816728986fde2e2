// Package workspace materializes a declarative window/pane Template into a
// tmux session, optionally wrapping non-host pane commands to execute
// inside the compose stack's app container.
package workspace

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/internal/shell"
)

// Builder drives tmux to build and tear down sessions.
type Builder struct {
	executor *shell.Executor
}

// New creates a Builder backed by executor.
func New(executor *shell.Executor) *Builder {
	return &Builder{executor: executor}
}

func (b *Builder) run(ctx context.Context, args ...string) (*shell.Result, error) {
	cmd := shell.NewCommand("tmux", args...)
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true
	return b.executor.ExecuteWithContext(ctx, cmd)
}

// BaseIndex queries the server's configured base-index, defaulting to 0 if
// tmux is unavailable or the option is unset. Queried once per build, per
// spec.md §9: multiplexer configurations vary and must never be assumed 0.
func (b *Builder) BaseIndex(ctx context.Context) int {
	result, err := b.run(ctx, "show-options", "-g", "base-index")
	if err != nil || result.ExitCode != 0 {
		return 0
	}
	fields := strings.Fields(string(result.Stdout))
	if len(fields) != 2 {
		return 0
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return n
}

// IsAlive reports whether a session named name currently exists. Per
// spec.md §3, a record is never authoritative over a session — its
// existence is — so orphan detection calls this directly.
func (b *Builder) IsAlive(ctx context.Context, name string) bool {
	result, err := b.run(ctx, "has-session", "-t", name)
	return err == nil && result.ExitCode == 0
}

// Kill terminates the session named name. Missing sessions are not an error.
func (b *Builder) Kill(ctx context.Context, name string) error {
	if !b.IsAlive(ctx, name) {
		return nil
	}
	if _, err := b.run(ctx, "kill-session", "-t", name); err != nil {
		return groveerrors.New(groveerrors.TypeTmux, "failed to kill session "+name, groveerrors.WithCause(err))
	}
	return nil
}

// ComposeContext describes how pane commands should be wrapped when the
// planted environment owns (or shares) a live compose stack.
type ComposeContext struct {
	ComposeFile string
	Project     string
}

func (c *ComposeContext) wrap(command string) string {
	if c == nil || c.ComposeFile == "" {
		return command
	}
	prefix := fmt.Sprintf("docker compose -f %s -p %s exec app", c.ComposeFile, c.Project)
	if command == "" {
		return prefix + " bash"
	}
	return prefix + " " + command
}

// Build materializes tmpl as a tmux session named name, rooted at
// defaultDir. compose is nil for a host-only workspace (no compose stack,
// or a tree's shared stack reached on the host without the exec prefix).
func (b *Builder) Build(ctx context.Context, name string, tmpl Template, defaultDir string, compose *ComposeContext, initialCmd string) error {
	base := b.BaseIndex(ctx)
	var focusTarget string

	for i, win := range tmpl.Windows {
		winIndex := base + i
		dir := defaultDir
		if len(win.Panes) > 0 && win.Panes[0].Dir != "" {
			dir = win.Panes[0].Dir
		}

		if i == 0 {
			if _, err := b.run(ctx, "new-session", "-d", "-s", name, "-n", win.Name, "-c", dir); err != nil {
				return groveerrors.New(groveerrors.TypeTmux, "failed to create session "+name, groveerrors.WithCause(err))
			}
		} else {
			if _, err := b.run(ctx, "new-window", "-t", name, "-n", win.Name, "-c", dir); err != nil {
				return groveerrors.New(groveerrors.TypeTmux, "failed to create window "+win.Name, groveerrors.WithCause(err))
			}
		}

		for j, pane := range win.Panes {
			target := fmt.Sprintf("%s:%d", name, winIndex)
			if j > 0 {
				paneDir := defaultDir
				if pane.Dir != "" {
					paneDir = pane.Dir
				}
				if _, err := b.run(ctx, "split-window", "-v", "-t", target, "-c", paneDir); err != nil {
					return groveerrors.New(groveerrors.TypeTmux, "failed to split pane in "+win.Name, groveerrors.WithCause(err))
				}
			}
		}

		if _, err := b.run(ctx, "select-layout", "-t", fmt.Sprintf("%s:%d", name, winIndex), string(win.Layout)); err != nil {
			return groveerrors.New(groveerrors.TypeTmux, "failed to apply layout to "+win.Name, groveerrors.WithCause(err))
		}

		for j, pane := range win.Panes {
			paneTarget := fmt.Sprintf("%s:%d.%d", name, winIndex, j)

			command := pane.Command
			if i == 0 && j == 0 && initialCmd != "" {
				command = initialCmd
			}

			wrapped := command
			if !pane.Host {
				wrapped = compose.wrap(command)
			}

			if wrapped != "" {
				if _, err := b.run(ctx, "send-keys", "-t", paneTarget, wrapped, "Enter"); err != nil {
					return groveerrors.New(groveerrors.TypeTmux, "failed to send command to pane "+paneTarget, groveerrors.WithCause(err))
				}
			}

			if pane.Focus {
				focusTarget = paneTarget
			}
		}
	}

	if focusTarget != "" {
		if _, err := b.run(ctx, "select-pane", "-t", focusTarget); err != nil {
			return groveerrors.New(groveerrors.TypeTmux, "failed to focus pane "+focusTarget, groveerrors.WithCause(err))
		}
	}

	return nil
}

// ApplyLayout re-applies a tmux layout preset to a running session's
// window at windowIndex, without replanting anything else about the
// environment.
func (b *Builder) ApplyLayout(ctx context.Context, session string, windowIndex int, preset Layout) error {
	target := fmt.Sprintf("%s:%d", session, windowIndex)
	if _, err := b.run(ctx, "select-layout", "-t", target, string(preset)); err != nil {
		return groveerrors.New(groveerrors.TypeTmux, "failed to apply layout to "+target, groveerrors.WithCause(err))
	}
	return nil
}

// Attach returns the interactive, TTY-allocating `tmux attach -t <name>`
// command; the caller runs it.
func (b *Builder) Attach(name string) *shell.Command {
	cmd := shell.NewCommand("tmux", "attach", "-t", name)
	cmd.Mode = shell.ModeInteractive
	cmd.AllocateTTY = true
	return cmd
}
