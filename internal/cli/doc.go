// Package cli provides the command-line interface implementation for grove.
//
// This package contains the Cobra command tree, command handlers, and
// CLI-specific logic. It integrates with the container for dependency
// injection and uses output formatters for consistent output.
//
// # Command Structure
//
// Commands are organized by subject:
//
//	grove init                     # Write config.yml/local.yml
//	grove detect                   # Run project-type detection
//	grove task {create,list,show,pause,resume,complete,close}
//	grove grove {plant,list,status,stop,start,uproot,prune,transplant,attach,build,layout,init-template,init-claude-template}
//	grove tree {plant,list,status,stop,uproot,prune,health,attach}
//	grove containerize              # Collaborator-backed setup wizard
//	grove commit                    # Collaborator-backed commit drafting
//
// # Root Command
//
// Build the root command:
//
//	root := cli.NewRootCommand()
//	if err := root.Execute(); err != nil {
//	    os.Exit(1)
//	}
//
// # Command Options
//
// Commands support common options:
//
//	--format    Output format (table, json, yaml)
//	--quiet     Suppress non-essential output
//	--no-color  Disable color output
//	--debug     Enable debug output
//
// # Integration with Container
//
// Commands receive dependencies through the container:
//
//	func runStatus(cmd *cobra.Command, args []string) error {
//	    return runWithOrchestrator(cmd.Context(), func(
//	        orch *orchestrator.Orchestrator,
//	        out *output.Manager,
//	    ) error {
//	        records, err := orch.List()
//	        if err != nil {
//	            return err
//	        }
//	        return out.Display(records)
//	    })
//	}
package cli
