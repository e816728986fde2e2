package cli

import (
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/plugin"
	"github.com/spf13/cobra"
)

func newContainerizeCommand() *cobra.Command {
	var pluginPath string

	cmd := &cobra.Command{
		Use:   "containerize",
		Short: "Collaborator-backed container setup wizard",
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

				result, err := reg.Perform(cmd.Context(), plugin.SubjectContainerSetup, map[string]string{})
				if err != nil {
					logger.Warn("container setup collaborator unavailable", "error", err)
					return err
				}
				return out.Display(map[string]interface{}{"setup": result})
			})
		},
	}

	cmd.Flags().StringVar(&pluginPath, "plugin", "", "path to an external collaborator plugin binary")
	return cmd
}
