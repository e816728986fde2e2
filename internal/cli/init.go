package cli

import (
	"go.uber.org/fx"

	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/pkg/container"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var projectName, defaultBranch string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yml/local.yml for this repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			var loader *config.Loader
			var out *output.Manager

			c, err := container.New(fx.Populate(&loader, &out))
			if err != nil {
				return err
			}

			return c.Run(cmd.Context(), func() error {
				cfg := &config.Config{
					Project: config.ProjectConfig{
						ProjectName:   projectName,
						DefaultBranch: defaultBranch,
					},
					Local: config.LocalConfig{}.WithDefaults(),
				}
				if err := loader.Save(cfg); err != nil {
					return err
				}
				return out.Success("initialized grove state in %s", loader.StateRoot)
			})
		},
	}

	cmd.Flags().StringVar(&projectName, "project-name", "", "project name recorded in config.yml")
	cmd.Flags().StringVar(&defaultBranch, "default-branch", "main", "default branch new task branches fork from")
	return cmd
}
