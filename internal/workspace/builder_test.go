package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/glide-cli/grove/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeTmux puts a stub tmux on PATH that logs every invocation to
// logPath (one line per call, space-joined args) and answers show-options
// with baseIndex.
func installFakeTmux(t *testing.T, logPath string, baseIndex int) {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\n" +
		"echo \"$@\" >> " + logPath + "\n" +
		"case \"$1 $2\" in\n" +
		"  \"show-options -g\") echo 'base-index " + strconv.Itoa(baseIndex) + "' ;;\n" +
		"esac\n" +
		"exit 0\n"
	path := filepath.Join(dir, "tmux")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func readLog(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	return lines
}

func TestBuilder_BaseIndex(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.log")
	installFakeTmux(t, logPath, 1)

	b := New(shell.NewExecutor(shell.Options{}))
	assert.Equal(t, 1, b.BaseIndex(context.Background()))
}

func TestBuilder_BaseIndex_DefaultsToZeroWhenUnavailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	b := New(shell.NewExecutor(shell.Options{}))
	assert.Equal(t, 0, b.BaseIndex(context.Background()))
}

func TestBuilder_Build_SendsExpectedSequence(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.log")
	installFakeTmux(t, logPath, 0)

	b := New(shell.NewExecutor(shell.Options{}))
	tmpl := DefaultTemplate()

	err := b.Build(context.Background(), "task-acme", tmpl, "/work", nil, "")
	require.NoError(t, err)

	lines := readLog(t, logPath)
	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "new-session -d -s task-acme -n editor -c /work")
	assert.Contains(t, joined, "new-window -t task-acme -n server -c /work")
	assert.Contains(t, joined, "new-window -t task-acme -n shell -c /work")
	assert.Contains(t, joined, "select-layout -t task-acme:0 even-horizontal")
	assert.Contains(t, joined, "send-keys -t task-acme:1.0 grove tree health Enter")
	assert.Contains(t, joined, "select-pane -t task-acme:0.0")
}

func TestBuilder_Build_WrapsNonHostPanesWithCompose(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.log")
	installFakeTmux(t, logPath, 0)

	b := New(shell.NewExecutor(shell.Options{}))
	tmpl := Template{Windows: []Window{
		{Name: "server", Layout: LayoutTiled, Panes: []Pane{{Command: "npm run dev"}}},
	}}
	compose := &ComposeContext{ComposeFile: "compose/task-acme.yml", Project: "task-acme"}

	require.NoError(t, b.Build(context.Background(), "task-acme", tmpl, "/work", compose, ""))

	joined := strings.Join(readLog(t, logPath), "\n")
	assert.Contains(t, joined, "docker compose -f compose/task-acme.yml -p task-acme exec app npm run dev")
}

func TestBuilder_IsAliveAndKill(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.log")
	installFakeTmux(t, logPath, 0)

	b := New(shell.NewExecutor(shell.Options{}))
	assert.True(t, b.IsAlive(context.Background(), "task-acme"))
	require.NoError(t, b.Kill(context.Background(), "task-acme"))
}

func TestComposeContext_WrapEmptyCommandUsesBash(t *testing.T) {
	c := &ComposeContext{ComposeFile: "compose/task-acme.yml", Project: "task-acme"}
	assert.Equal(t, "docker compose -f compose/task-acme.yml -p task-acme exec app bash", c.wrap(""))
}

func TestComposeContext_WrapNilIsNoop(t *testing.T) {
	var c *ComposeContext
	assert.Equal(t, "npm test", c.wrap("npm test"))
}
