package cli

import (
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/plugin"
	"github.com/spf13/cobra"
)

func newDetectCommand() *cobra.Command {
	var pluginPath string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run project-type detection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithCollaborators(cmd.Context(), func(reg *plugin.Registry, out *output.Manager, _ *logging.Logger) error {
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

				result, err := reg.Perform(cmd.Context(), plugin.SubjectDetectProjectType, map[string]string{})
				if err != nil {
					return err
				}
				return out.Display(map[string]interface{}{"detected": result})
			})
		},
	}

	cmd.Flags().StringVar(&pluginPath, "plugin", "", "path to an external collaborator plugin binary")
	return cmd
}
