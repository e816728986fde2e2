package cli

import (
	"context"
	"os"

	"github.com/glide-cli/grove/internal/orchestrator"
	"github.com/glide-cli/grove/internal/shell"
	"github.com/glide-cli/grove/internal/statestore"
	"github.com/glide-cli/grove/pkg/container"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/plugin"
	"go.uber.org/fx"
)

// ExitCode reports err through the shared error handler, honoring the
// --no-color and --debug persistent flags, and returns its mapped exit
// code for main to pass to os.Exit.
func ExitCode(err error) int {
	handler := groveerrors.DefaultHandler()
	handler.NoColor = flags.noColor
	handler.Verbose = flags.debug
	return handler.Handle(err)
}

// runWithOrchestrator bootstraps the container, populates the orchestrator
// and output manager, and runs fn under the container's lifecycle. This is
// the shape every grove/tree/task command follows.
func runWithOrchestrator(ctx context.Context, fn func(orch *orchestrator.Orchestrator, out *output.Manager) error) error {
	var orch *orchestrator.Orchestrator
	var out *output.Manager

	c, err := container.New(fx.Populate(&orch, &out))
	if err != nil {
		return err
	}

	return c.Run(ctx, func() error {
		out.SetFormat(output.Format(flags.format))
		out.SetQuiet(flags.quiet)
		out.SetNoColor(flags.noColor)
		return fn(orch, out)
	})
}

// resolvePromptInitialCmd turns --prompt/--prompt-file into the command
// planted into a grove or tree's first pane, mirroring the original
// `claude --prompt "<text>"` launch command. Empty when neither flag is
// set, leaving the caller's own --initial-cmd untouched.
func resolvePromptInitialCmd(prompt, promptFile string) (string, error) {
	text := prompt
	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", groveerrors.New(groveerrors.TypeOther, "failed to read prompt file "+promptFile, groveerrors.WithCause(err))
		}
		text = string(data)
	}
	if text == "" {
		return "", nil
	}
	return "claude --prompt " + shell.JoinArgs([]string{text}), nil
}

// firstRecord returns the first record matching filter, in the order the
// store lists them, for the `attach[task?]` commands that pick a default
// when no task is named.
func firstRecord(orch *orchestrator.Orchestrator, filter func(*statestore.Record) bool) (*statestore.Record, error) {
	records, err := orch.List()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if filter(r) {
			return r, nil
		}
	}
	return nil, groveerrors.New(groveerrors.TypeNotFound, "no matching task found")
}

// attachSession runs `tmux attach` against session through orch's executor,
// handing the caller's terminal to the interactive shell strategy.
func attachSession(orch *orchestrator.Orchestrator, session string) error {
	if session == "" {
		return groveerrors.New(groveerrors.TypeInvalidState, "no tmux session recorded for this task")
	}
	cmd := orch.Attach(session)
	result, err := orch.Executor().Execute(cmd)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return groveerrors.New(groveerrors.TypeOther, "tmux attach exited non-zero")
	}
	return nil
}

// runWithCollaborators bootstraps the container for commands backed by the
// external-collaborator plugin contract instead of the orchestrator.
func runWithCollaborators(ctx context.Context, fn func(reg *plugin.Registry, out *output.Manager, logger *logging.Logger) error) error {
	var reg *plugin.Registry
	var out *output.Manager
	var logger *logging.Logger

	c, err := container.New(fx.Populate(&reg, &out, &logger))
	if err != nil {
		return err
	}

	return c.Run(ctx, func() error {
		out.SetFormat(output.Format(flags.format))
		out.SetQuiet(flags.quiet)
		out.SetNoColor(flags.noColor)
		return fn(reg, out, logger)
	})
}
