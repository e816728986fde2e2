package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/orchestrator"
	"github.com/glide-cli/grove/internal/statestore"
	"github.com/glide-cli/grove/internal/workspace"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/prompt"
	"github.com/spf13/cobra"
)

const defaultClaudeTemplate = `# CLAUDE.local.md

This file is planted fresh into every new worktree. Edit it to leave
task-specific notes for an assistant working in this tree; it is not
committed to version control.
`

func newGroveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grove",
		Short: "Manage groves: full environments with their own compose stack",
	}
	cmd.AddCommand(
		newGrovePlantCommand(),
		newGroveListCommand(),
		newGroveStatusCommand(),
		newGroveStopCommand(),
		newGroveStartCommand(),
		newGroveUprootCommand(),
		newGrovePruneCommand(),
		newGroveTransplantCommand(),
		newGroveAttachCommand(),
		newGroveBuildCommand(),
		newGroveLayoutCommand(),
		newGroveInitTemplateCommand(),
		newGroveInitClaudeTemplateCommand(),
	)
	return cmd
}

func newGrovePlantCommand() *cobra.Command {
	var branch, taskType, initialCmd, prompt, promptFile string
	var healthTimeout int
	var dbClone bool
	var dbSource string

	cmd := &cobra.Command{
		Use:   "plant <task>",
		Short: "Create a new grove: branch, worktree, compose stack, workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if branch == "" {
					branch = gitdriver.FormatBranch(task, taskType, task)
				}
				if promptCmd, err := resolvePromptInitialCmd(prompt, promptFile); err != nil {
					return err
				} else if promptCmd != "" {
					initialCmd = promptCmd
				}
				record, err := orch.Plant(cmd.Context(), orchestrator.PlantOptions{
					Task:          task,
					Branch:        branch,
					TaskType:      taskType,
					InitialCmd:    initialCmd,
					EnableCompose: true,
					HealthTimeout: healthTimeout,
					DBClone:       dbClone,
					DBSource:      dbSource,
				})
				if err != nil {
					return err
				}
				return out.Display(record)
			})
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch name (default: derived from task and type)")
	cmd.Flags().StringVar(&taskType, "type", "feature", "task type used to derive the branch name")
	cmd.Flags().StringVar(&initialCmd, "initial-cmd", "", "command sent to the first pane after planting")
	cmd.Flags().StringVar(&prompt, "prompt", "", "launch claude with this prompt in the grove's tmux window")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "launch claude with the prompt read from this file")
	cmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	cmd.Flags().IntVar(&healthTimeout, "health-timeout", 0, "seconds to wait for the compose stack to become healthy (0 = configured default)")
	cmd.Flags().BoolVar(&dbClone, "transplant", false, "clone a source database instead of running db:prepare/db:seed")
	cmd.Flags().StringVar(&dbSource, "db-source", "", "database source to clone from")
	return cmd
}

func newGroveListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every planted grove",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				records, err := orch.List()
				if err != nil {
					return err
				}
				groves := make([]*statestore.Record, 0, len(records))
				for _, r := range records {
					if r.IsGrove() {
						groves = append(groves, r)
					}
				}
				return out.Display(groves)
			})
		},
	}
}

func newGroveStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task>",
		Short: "Show a grove's record and lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				record, err := orch.Get(task)
				if err != nil {
					return err
				}
				state := orch.State(cmd.Context(), task)
				return out.Display(map[string]interface{}{"record": record, "state": state})
			})
		},
	}
}

func newGroveStopCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "stop <task>",
		Short: "Tear down a grove's compose stack and session, keeping its worktree and branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.Stop(cmd.Context(), task, force); err != nil {
					return err
				}
				return out.Success("stopped %s", task)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "also stop any trees sharing this grove")
	return cmd
}

func newGroveStartCommand() *cobra.Command {
	var branch, taskType, initialCmd string
	var healthTimeout int

	cmd := &cobra.Command{
		Use:   "start <task>",
		Short: "Resume a stopped grove",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if branch == "" {
					branch = gitdriver.FormatBranch(task, taskType, task)
				}
				record, err := orch.Start(cmd.Context(), orchestrator.PlantOptions{
					Task:          task,
					Branch:        branch,
					TaskType:      taskType,
					InitialCmd:    initialCmd,
					EnableCompose: true,
					HealthTimeout: healthTimeout,
				})
				if err != nil {
					return err
				}
				return out.Display(record)
			})
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "", "branch name (default: derived from task and type)")
	cmd.Flags().StringVar(&taskType, "type", "feature", "task type used to derive the branch name")
	cmd.Flags().StringVar(&initialCmd, "initial-cmd", "", "command sent to the first pane after planting")
	cmd.Flags().IntVar(&healthTimeout, "health-timeout", 0, "seconds to wait for the compose stack to become healthy (0 = configured default)")
	return cmd
}

func newGroveUprootCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "uproot <task>",
		Short: "Destroy a grove's compose stack, session, worktree, branch, and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if !force {
					confirmed, err := prompt.ConfirmDestructive("uproot grove " + task)
					if err != nil {
						return err
					}
					if !confirmed {
						return nil
					}
				}
				if err := orch.Uproot(cmd.Context(), task, force); err != nil {
					return err
				}
				return out.Success("uprooted %s", task)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "discard uncommitted changes/unpushed commits and any sharing trees")
	return cmd
}

func newGrovePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove orphaned records whose tmux session has died",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				pruned, err := orch.Prune(cmd.Context())
				if err != nil {
					return err
				}
				return out.Display(map[string]interface{}{"pruned": pruned})
			})
		},
	}
}

func newGroveTransplantCommand() *cobra.Command {
	var dbSource string
	cmd := &cobra.Command{
		Use:   "transplant <task>",
		Short: "Re-run database initialization against an already running grove",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.Transplant(cmd.Context(), task, dbSource); err != nil {
					return err
				}
				return out.Success("transplanted database for %s", task)
			})
		},
	}
	cmd.Flags().StringVar(&dbSource, "db-source", "", "database source to clone from")
	return cmd
}

func newGroveAttachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [task]",
		Short: "Attach the terminal to a grove's tmux session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := ""
			if len(args) == 1 {
				task = args[0]
			}
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				var record *statestore.Record
				var err error
				if task == "" {
					record, err = firstRecord(orch, (*statestore.Record).IsGrove)
				} else {
					record, err = orch.Get(task)
				}
				if err != nil {
					return err
				}
				return attachSession(orch, record.TmuxSession)
			})
		},
	}
}

func newGroveLayoutCommand() *cobra.Command {
	var windowIndex int

	cmd := &cobra.Command{
		Use:   "layout <task> <preset>",
		Short: "Re-apply a tmux layout preset to a running session's window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, preset := args[0], args[1]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.ApplyLayout(cmd.Context(), task, windowIndex, workspace.Layout(preset)); err != nil {
					return err
				}
				return out.Success("applied layout %s to %s", preset, task)
			})
		},
	}
	cmd.Flags().IntVar(&windowIndex, "window", 0, "index of the window to re-layout")
	return cmd
}

func newGroveInitTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-template",
		Short: "Write the default tmux-layout.json to the state root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := workspace.WriteDefaultTemplate(orch.StateRoot()); err != nil {
					return err
				}
				return out.Success("wrote tmux-layout.json to %s", orch.StateRoot())
			})
		},
	}
}

func newGroveInitClaudeTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-claude-template",
		Short: "Write the default claude-md.template to the state root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				path := filepath.Join(orch.StateRoot(), "claude-md.template")
				if err := os.WriteFile(path, []byte(defaultClaudeTemplate), 0o644); err != nil {
					return err
				}
				return out.Success("wrote claude-md.template to %s", path)
			})
		},
	}
}

func newGroveBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build <task>",
		Short: "Rebuild a grove's compose image without a full up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				record, err := orch.Get(task)
				if err != nil {
					return err
				}
				if !record.IsGrove() {
					return fmt.Errorf("build: %q has no compose stack", task)
				}
				if err := orch.BuildImage(cmd.Context(), task); err != nil {
					return err
				}
				return out.Success("rebuilt image for %s", task)
			})
		},
	}
}
