package cli

import (
	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/orchestrator"
	"github.com/glide-cli/grove/internal/statestore"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/prompt"
	"github.com/spf13/cobra"
)

func newTreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Manage trees: environments sharing another grove's compose stack",
	}
	cmd.AddCommand(
		newTreePlantCommand(),
		newTreeListCommand(),
		newTreeStatusCommand(),
		newTreeStopCommand(),
		newTreeUprootCommand(),
		newTreePruneCommand(),
		newTreeHealthCommand(),
		newTreeAttachCommand(),
	)
	return cmd
}

func newTreePlantCommand() *cobra.Command {
	var branch, taskType, initialCmd, shareFrom, prompt, promptFile string

	cmd := &cobra.Command{
		Use:   "plant <task> --grove <grove>",
		Short: "Create a new tree sharing another grove's compose stack",
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
					Task:       task,
					Branch:     branch,
					TaskType:   taskType,
					InitialCmd: initialCmd,
					ShareFrom:  shareFrom,
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
	cmd.Flags().StringVar(&shareFrom, "grove", "", "grove task whose compose stack this tree shares (required)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "launch claude with this prompt in the tree's tmux window")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "launch claude with the prompt read from this file")
	cmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	_ = cmd.MarkFlagRequired("grove")
	return cmd
}

func newTreeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every planted tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				records, err := orch.List()
				if err != nil {
					return err
				}
				trees := make([]*statestore.Record, 0, len(records))
				for _, r := range records {
					if r.IsTree() {
						trees = append(trees, r)
					}
				}
				return out.Display(trees)
			})
		},
	}
}

func newTreeStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task>",
		Short: "Show a tree's record and lifecycle state",
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

func newTreeStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <task>",
		Short: "Tear down a tree's session, keeping its worktree and branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.Stop(cmd.Context(), task, false); err != nil {
					return err
				}
				return out.Success("stopped %s", task)
			})
		},
	}
	return cmd
}

func newTreeUprootCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "uproot <task>",
		Short: "Destroy a tree's session, worktree, branch, and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if !force {
					confirmed, err := prompt.ConfirmDestructive("uproot tree " + task)
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
	cmd.Flags().BoolVar(&force, "force", false, "discard uncommitted changes/unpushed commits")
	return cmd
}

func newTreePruneCommand() *cobra.Command {
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

func newTreeHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health <task>",
		Short: "Poll the shared grove's compose health without owning it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				report, err := orch.Health(cmd.Context(), task)
				if err != nil {
					return err
				}
				return out.Display(report)
			})
		},
	}
}

func newTreeAttachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [task]",
		Short: "Attach the terminal to a tree's tmux session",
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
					record, err = firstRecord(orch, (*statestore.Record).IsTree)
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
