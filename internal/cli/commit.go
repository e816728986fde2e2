package cli

import (
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/plugin"
	"github.com/spf13/cobra"
)

func newCommitCommand() *cobra.Command {
	var pluginPath, message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Collaborator-backed commit drafting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithCollaborators(cmd.Context(), func(reg *plugin.Registry, out *output.Manager, logger *logging.Logger) error {
				if pluginPath != "" {
					collaborators, cleanup, err := plugin.Launch(pluginPath)
					if err != nil {
						return err
					}
					defer cleanup()
					for subject, c := range collaborators {
						if err := reg.RegisterExternal(subject, c); err != nil {
							return err
						}
					}
				}

				result, err := reg.Perform(cmd.Context(), plugin.SubjectDraftCommit, map[string]string{"hint": message})
				if err != nil {
					logger.Warn("commit collaborator unavailable", "error", err)
					return err
				}
				return out.Display(map[string]interface{}{"message": result})
			})
		},
	}

	cmd.Flags().StringVar(&pluginPath, "plugin", "", "path to an external collaborator plugin binary")
	cmd.Flags().StringVar(&message, "hint", "", "a hint describing the change, passed to the collaborator")
	return cmd
}
