package container

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/internal/gitdriver"
	"github.com/glide-cli/grove/internal/orchestrator"
	"github.com/glide-cli/grove/internal/shell"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/glide-cli/grove/pkg/output"
	"github.com/glide-cli/grove/pkg/plugin"
	"go.uber.org/fx"
)

// Provider functions create and configure application dependencies.
// These are called by uber-fx in dependency order.

// provideLogger creates the application logger.
//
// The logger is configured from environment variables:
//   - GROVE_LOG_LEVEL: debug, info, warn, error
//   - GROVE_LOG_FORMAT: text, json
//   - GROVE_DEBUG: enables debug logging
func provideLogger() *logging.Logger {
	return logging.New(logging.FromEnv())
}

// provideWriter provides the output writer.
//
// Defaults to os.Stdout. Can be overridden in tests using WithWriter().
func provideWriter() io.Writer {
	return os.Stdout
}

// provideRepoRoot resolves the repository root the current process is
// running from. Can be overridden in tests via WithRepoRoot().
func provideRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return wd, nil
}

// provideConfigLoader creates the configuration loader.
func provideConfigLoader(logger *logging.Logger, repoRoot string) *config.Loader {
	logger.Debug("Creating config loader", "repo_root", repoRoot)
	return config.NewLoader(repoRoot)
}

// ConfigParams groups dependencies for config provider.
type ConfigParams struct {
	fx.In

	Loader *config.Loader
	Logger *logging.Logger
}

// provideConfig loads config.yml/local.yml.
//
// If grove hasn't been initialized yet, returns local defaults rather than
// erroring, so `grove init` itself can run through the same container.
func provideConfig(params ConfigParams) (*config.Config, error) {
	params.Logger.Debug("Loading configuration")

	cfg, err := params.Loader.Load()
	if err != nil {
		params.Logger.Debug("Configuration not yet initialized, using defaults")
		return &config.Config{Local: config.LocalConfig{}.WithDefaults()}, nil
	}

	params.Logger.Debug("Configuration loaded successfully")
	return cfg, nil
}

// OutputManagerParams groups dependencies for output manager provider.
type OutputManagerParams struct {
	fx.In

	Writer io.Writer
	Logger *logging.Logger
}

// provideOutputManager creates the output manager.
//
// The output manager handles formatted output to the user.
// Uses table format by default. Can be configured via CLI flags.
func provideOutputManager(params OutputManagerParams) *output.Manager {
	params.Logger.Debug("Creating output manager")
	return output.NewManager(
		output.FormatTable, // Default format, can be overridden
		false,              // quiet
		false,              // noColor
		params.Writer,
	)
}

// provideShellExecutor creates the shell command executor used to drive
// git, docker compose, tmux, and pg_dump/psql.
func provideShellExecutor(logger *logging.Logger) *shell.Executor {
	logger.Debug("Creating shell executor")
	return shell.NewExecutor(shell.Options{})
}

// provideCollaboratorRegistry creates the external-collaborator registry
// (project-type detection, commit drafting, CLAUDE.md templating).
func provideCollaboratorRegistry(logger *logging.Logger) *plugin.Registry {
	logger.Debug("Creating collaborator registry")
	return plugin.NewRegistry()
}

// provideGitDriver opens the git repository rooted at (or above) repoRoot.
func provideGitDriver(repoRoot string, executor *shell.Executor, logger *logging.Logger) (*gitdriver.Driver, error) {
	logger.Debug("Opening git repository", "start_dir", repoRoot)
	return gitdriver.Open(repoRoot, executor)
}

// provideOrchestrator wires the per-task plant/stop/start/uproot/prune
// lifecycle atop the git, compose, port, lock, and workspace subsystems.
func provideOrchestrator(cfg *config.Config, git *gitdriver.Driver, executor *shell.Executor, logger *logging.Logger, repoRoot string) *orchestrator.Orchestrator {
	stateRoot := filepath.Join(repoRoot, config.DefaultStateDir)
	return orchestrator.New(stateRoot, cfg, git, executor, logger)
}
