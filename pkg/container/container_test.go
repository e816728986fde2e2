package container

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/glide-cli/grove/internal/config"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/stretchr/testify/require"
)

func TestNew_Success(t *testing.T) {
	c, err := New(WithRepoRoot(t.TempDir()))
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NotNil(t, c.app)
}

func TestNew_WithOptions(t *testing.T) {
	buf := &bytes.Buffer{}
	testLogger := logging.New(&logging.Config{Level: slog.LevelDebug})
	testCfg := &config.Config{}

	c, err := New(
		WithLogger(testLogger),
		WithWriter(buf),
		WithConfig(testCfg),
		WithRepoRoot(t.TempDir()),
		WithoutLifecycle(),
	)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := New(WithRepoRoot(t.TempDir()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Start(ctx)
	require.NoError(t, err)

	err = c.Stop(ctx)
	require.NoError(t, err)
}

func TestContainer_Run(t *testing.T) {
	c, err := New(WithRepoRoot(t.TempDir()))
	require.NoError(t, err)

	ctx := context.Background()
	executed := false

	err = c.Run(ctx, func() error {
		executed = true
		return nil
	})

	require.NoError(t, err)
	require.True(t, executed, "function should have been executed")
}

func TestContainer_Run_WithError(t *testing.T) {
	c, err := New(WithRepoRoot(t.TempDir()))
	require.NoError(t, err)

	ctx := context.Background()
	testErr := errors.New("test error")

	err = c.Run(ctx, func() error {
		return testErr
	})

	require.Error(t, err)
	require.Equal(t, testErr, err)
}

func TestProviders_Logger(t *testing.T) {
	logger := provideLogger()
	require.NotNil(t, logger)
}

func TestProviders_Writer(t *testing.T) {
	writer := provideWriter()
	require.NotNil(t, writer)
}

func TestProviders_ConfigLoader(t *testing.T) {
	logger := provideLogger()
	loader := provideConfigLoader(logger, t.TempDir())
	require.NotNil(t, loader)
}

func TestProviders_Config(t *testing.T) {
	logger := provideLogger()
	loader := provideConfigLoader(logger, t.TempDir())

	cfg, err := provideConfig(ConfigParams{
		Loader: loader,
		Logger: logger,
	})

	// Should not error even if config files don't exist yet
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestProviders_OutputManager(t *testing.T) {
	logger := provideLogger()
	buf := &bytes.Buffer{}

	manager := provideOutputManager(OutputManagerParams{
		Writer: buf,
		Logger: logger,
	})

	require.NotNil(t, manager)
}

func TestProviders_ShellExecutor(t *testing.T) {
	logger := provideLogger()
	executor := provideShellExecutor(logger)
	require.NotNil(t, executor)
}

func TestProviders_CollaboratorRegistry(t *testing.T) {
	logger := provideLogger()
	registry := provideCollaboratorRegistry(logger)
	require.NotNil(t, registry)
}

func TestOptions_WithLogger(t *testing.T) {
	testLogger := logging.New(&logging.Config{Level: slog.LevelDebug})

	c, err := New(WithLogger(testLogger), WithRepoRoot(t.TempDir()))
	require.NoError(t, err)

	ctx := context.Background()
	err = c.Start(ctx)
	require.NoError(t, err)
	defer c.Stop(ctx)

	require.NotNil(t, c)
}

func TestOptions_WithWriter(t *testing.T) {
	buf := &bytes.Buffer{}

	c, err := New(WithWriter(buf), WithRepoRoot(t.TempDir()))
	require.NoError(t, err)

	ctx := context.Background()
	err = c.Start(ctx)
	require.NoError(t, err)
	defer c.Stop(ctx)

	require.NotNil(t, c)
}

func TestOptions_WithConfig(t *testing.T) {
	testCfg := &config.Config{}

	c, err := New(WithConfig(testCfg), WithRepoRoot(t.TempDir()))
	require.NoError(t, err)

	ctx := context.Background()
	err = c.Start(ctx)
	require.NoError(t, err)
	defer c.Stop(ctx)

	require.NotNil(t, c)
}
