package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	format  string
	quiet   bool
	noColor bool
	debug   bool
}

var flags globalFlags

// NewRootCommand builds the full grove command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "grove",
		Short:         "Per-task parallel development environments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.format, "format", "table", "output format (table, json, yaml)")
	root.PersistentFlags().BoolVar(&flags.quiet, "quiet", false, "suppress non-essential output")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable color output")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	reg := NewRegistry()
	registerCommands(reg)

	for _, cmd := range reg.CreateAll() {
		root.AddCommand(cmd)
	}

	return root
}

// registerCommands wires every command factory into reg. Errors only occur
// on duplicate registration, which is a programming error, so it panics
// the way the teacher's own builder does for the same failure mode.
func registerCommands(reg *Registry) {
	must := func(name string, factory Factory, meta Metadata) {
		if err := reg.Register(name, factory, meta); err != nil {
			panic(fmt.Sprintf("cli: %v", err))
		}
	}

	must("init", newInitCommand, Metadata{Name: "init", Category: CategoryCore, Description: "Write config.yml/local.yml for this repository"})
	must("detect", newDetectCommand, Metadata{Name: "detect", Category: CategoryCollaborator, Description: "Run project-type detection"})
	must("task", newTaskCommand, Metadata{Name: "task", Category: CategoryTask, Description: "Manage tasks (create, list, show, pause, resume, complete, close)"})
	must("grove", newGroveCommand, Metadata{Name: "grove", Category: CategoryGrove, Description: "Manage groves (full environments with their own compose stack)"})
	must("tree", newTreeCommand, Metadata{Name: "tree", Category: CategoryTree, Description: "Manage trees (environments sharing another grove's compose stack)"})
	must("containerize", newContainerizeCommand, Metadata{Name: "containerize", Category: CategoryCollaborator, Description: "Collaborator-backed container setup wizard"})
	must("commit", newCommitCommand, Metadata{Name: "commit", Category: CategoryCollaborator, Description: "Collaborator-backed commit drafting"})
}
