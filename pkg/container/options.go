package container

import (
	"io"

	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/pkg/logging"
	"go.uber.org/fx"
)

// Option is a functional option for configuring the container.
//
// Options are typically used in tests to override default providers.
type Option = fx.Option

// WithLogger overrides the logger provider.
//
// Useful in tests to capture log output or disable logging.
//
// Example:
//
//	testLogger := logging.New(&logging.Config{Level: slog.LevelDebug})
//	c, _ := container.New(container.WithLogger(testLogger))
func WithLogger(logger *logging.Logger) Option {
	return fx.Replace(func() *logging.Logger {
		return logger
	})
}

// WithWriter overrides the output writer.
//
// Useful in tests to capture output to a buffer.
//
// Example:
//
//	buf := &bytes.Buffer{}
//	c, _ := container.New(container.WithWriter(buf))
func WithWriter(w io.Writer) Option {
	return fx.Replace(func() io.Writer {
		return w
	})
}

// WithRepoRoot overrides the detected repository root.
//
// Useful in tests that operate against a temporary worktree instead of the
// process's real working directory.
func WithRepoRoot(root string) Option {
	return fx.Replace(func() (string, error) {
		return root, nil
	})
}

// WithConfig overrides the config provider.
//
// Useful in tests to provide a specific configuration.
//
// Example:
//
//	testCfg := &config.Config{}
//	c, _ := container.New(container.WithConfig(testCfg))
func WithConfig(cfg *config.Config) Option {
	return fx.Replace(func(params ConfigParams) (*config.Config, error) {
		return cfg, nil
	})
}

// WithoutLifecycle adds a no-op invoke to the container's options.
//
// It does not remove any hooks: the default start/stop logging hooks
// that New registers still run on Start and Stop.
//
// Example:
//
//	c, _ := container.New(container.WithoutLifecycle())
func WithoutLifecycle() Option {
	return fx.Options(
		// Skip lifecycle invocations
		fx.Invoke(func() {
			// No-op instead of registerLifecycleHooks
		}),
	)
}
