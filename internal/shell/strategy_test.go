package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategySelector_Select(t *testing.T) {
	selector := NewStrategySelector()

	tests := []struct {
		name         string
		command      *Command
		expectedType string
	}{
		{
			name:         "basic strategy for a plain docker compose command",
			command:      &Command{Name: "docker", Args: []string{"compose", "ps"}, CaptureOutput: true},
			expectedType: "basic",
		},
		{
			name:         "pipe strategy when the command supplies stdin",
			command:      &Command{Name: "psql", Stdin: bytes.NewBufferString("schema dump")},
			expectedType: "pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := selector.Select(tt.command)
			assert.NotNil(t, strategy)
			assert.Equal(t, tt.expectedType, strategy.Name())
		})
	}
}

func TestBasicStrategy_Execute(t *testing.T) {
	strategy := NewBasicStrategy()

	t.Run("successful command", func(t *testing.T) {
		cmd := &Command{Name: "echo", Args: []string{"ready"}, CaptureOutput: true}

		result, err := strategy.Execute(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Contains(t, string(result.Stdout), "ready")
	})

	t.Run("command with nonzero exit", func(t *testing.T) {
		cmd := &Command{Name: "ls", Args: []string{"/nonexistent-grove-tree"}, CaptureOutput: true}

		result, err := strategy.Execute(context.Background(), cmd)
		assert.NoError(t, err)
		assert.NotEqual(t, 0, result.ExitCode)
	})

	t.Run("streams to an explicit writer instead of capturing", func(t *testing.T) {
		var out bytes.Buffer
		cmd := &Command{Name: "echo", Args: []string{"streamed"}, Stdout: &out}

		result, err := strategy.Execute(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Contains(t, out.String(), "streamed")
	})
}

func TestPipeStrategy_Execute(t *testing.T) {
	t.Run("pipes the command's own stdin", func(t *testing.T) {
		strategy := NewPipeStrategy(nil)
		cmd := &Command{Name: "cat", Stdin: bytes.NewBufferString("schema-only\n"), CaptureOutput: true}

		result, err := strategy.Execute(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Equal(t, "schema-only\n", string(result.Stdout))
	})

	t.Run("falls back to the strategy's own reader", func(t *testing.T) {
		strategy := NewPipeStrategy(bytes.NewBufferString("fallback input\n"))
		cmd := &Command{Name: "cat", CaptureOutput: true}

		result, err := strategy.Execute(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, "fallback input\n", string(result.Stdout))
	})
}

func TestStrategySelector_Get(t *testing.T) {
	selector := NewStrategySelector()

	basic, ok := selector.Get("basic")
	require.True(t, ok)
	assert.Equal(t, "basic", basic.Name())

	_, ok = selector.Get("nonexistent")
	assert.False(t, ok)
}

func TestExecutionStrategy_Name(t *testing.T) {
	tests := []struct {
		strategy ExecutionStrategy
		expected string
	}{
		{NewBasicStrategy(), "basic"},
		{NewPipeStrategy(nil), "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.strategy.Name())
		})
	}
}
