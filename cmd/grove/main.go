// Command grove plants, lists, and tears down per-task parallel
// development environments: git worktrees, optional docker compose
// stacks, and tmux workspaces, orchestrated together per task.
package main

import (
	"os"

	"github.com/glide-cli/grove/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
