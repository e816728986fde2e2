package cli

import (
	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/orchestrator"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/spf13/cobra"
)

// newTaskCommand exposes the create/pause/resume/complete/close verbs from
// spec.md §6's CLI surface as thin aliases over the orchestrator's
// plant/stop/start/uproot operations: a task IS a grove or tree, named by
// the generic lifecycle verbs the glossary uses (create, pause, resume,
// destroy) rather than the domain-specific ones `grove`/`tree` expose.
func newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Generic task lifecycle: create, list, show, pause, resume, complete, close",
	}
	cmd.AddCommand(
		newTaskCreateCommand(),
		newTaskListCommand(),
		newTaskShowCommand(),
		newTaskPauseCommand(),
		newTaskResumeCommand(),
		newTaskCompleteCommand(),
		newTaskCloseCommand(),
	)
	return cmd
}

func newTaskCreateCommand() *cobra.Command {
	var branch, taskType string
	var enableCompose bool

	cmd := &cobra.Command{
		Use:   "create <task>",
		Short: "Plant a new task environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if branch == "" {
					branch = gitdriver.FormatBranch(task, taskType, task)
				}
				record, err := orch.Plant(cmd.Context(), orchestrator.PlantOptions{
					Task:          task,
					Branch:        branch,
					TaskType:      taskType,
					EnableCompose: enableCompose,
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
	cmd.Flags().BoolVar(&enableCompose, "compose", true, "give this task its own compose stack (a grove, not a tree)")
	return cmd
}

func newTaskListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				records, err := orch.List()
				if err != nil {
					return err
				}
				return out.Display(records)
			})
		},
	}
}

func newTaskShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task's record and lifecycle state",
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

func newTaskPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <task>",
		Short: "Pause a task (alias for grove/tree stop)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.Stop(cmd.Context(), task, false); err != nil {
					return err
				}
				return out.Success("paused %s", task)
			})
		},
	}
}

func newTaskResumeCommand() *cobra.Command {
	var branch, taskType string
	var enableCompose bool

	cmd := &cobra.Command{
		Use:   "resume <task>",
		Short: "Resume a paused task (alias for grove/tree start)",
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
					EnableCompose: enableCompose,
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
	cmd.Flags().BoolVar(&enableCompose, "compose", true, "give this task its own compose stack (a grove, not a tree)")
	return cmd
}

func newTaskCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task>",
		Short: "Complete a task: destroy its environment (alias for uproot)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.Uproot(cmd.Context(), task, false); err != nil {
					return err
				}
				return out.Success("completed %s", task)
			})
		},
	}
}

func newTaskCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close <task>",
		Short: "Close a task: force-destroy its environment, discarding uncommitted work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			return runWithOrchestrator(cmd.Context(), func(orch *orchestrator.Orchestrator, out *output.Manager) error {
				if err := orch.Uproot(cmd.Context(), task, true); err != nil {
					return err
				}
				return out.Success("closed %s", task)
			})
		},
	}
}
