package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glide-cli/grove/internal/shell"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeDocker writes a stub `docker` on PATH whose `compose ps
// --format json` answer is driven by psOutputPath's contents (read fresh
// each invocation, so a test can rewrite it between polls).
func installFakeDocker(t *testing.T, psOutputPath string, exitCode int) {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\n" +
		"case \" $* \" in\n" +
		"  *\" ps \"*) cat " + psOutputPath + "; exit 0 ;;\n" +
		"esac\n" +
		"exit " + itoaTest(exitCode) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	return string(rune('0' + n))
}

func TestController_Up_Success(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\nexit 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	err := c.Up(context.Background(), "compose.yml", "task-acme", ".env")
	require.NoError(t, err)
}

func TestController_Up_Failure(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\necho boom 1>&2\nexit 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	err := c.Up(context.Background(), "compose.yml", "task-acme", ".env")
	require.Error(t, err)
}

func TestController_PS_ParsesArrayForm(t *testing.T) {
	psOut := filepath.Join(t.TempDir(), "ps.json")
	require.NoError(t, os.WriteFile(psOut, []byte(`[{"Service":"app","State":"running","Health":""}]`), 0o644))
	installFakeDocker(t, psOut, 0)

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	statuses, err := c.PS(context.Background(), "compose.yml", "task-acme")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "app", statuses[0].Service)
	assert.True(t, statuses[0].ready())
}

func TestController_PS_ParsesLineDelimitedForm(t *testing.T) {
	psOut := filepath.Join(t.TempDir(), "ps.json")
	content := "{\"Service\":\"app\",\"State\":\"running\",\"Health\":\"healthy\"}\n{\"Service\":\"db\",\"State\":\"running\",\"Health\":\"\"}\n"
	require.NoError(t, os.WriteFile(psOut, []byte(content), 0o644))
	installFakeDocker(t, psOut, 0)

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	statuses, err := c.PS(context.Background(), "compose.yml", "task-acme")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
}

func TestController_WaitHealthy_AllRunningNoHealthcheck(t *testing.T) {
	psOut := filepath.Join(t.TempDir(), "ps.json")
	require.NoError(t, os.WriteFile(psOut, []byte(`[{"Service":"app","State":"running","Health":""}]`), 0o644))
	installFakeDocker(t, psOut, 0)

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	err := c.WaitHealthy(context.Background(), "compose.yml", "task-acme", 5*time.Second, nil)
	require.NoError(t, err)
}

func TestController_WaitHealthy_FailsFastOnCrash(t *testing.T) {
	psOut := filepath.Join(t.TempDir(), "ps.json")
	require.NoError(t, os.WriteFile(psOut, []byte(`[{"Service":"app","State":"exited","Health":""}]`), 0o644))
	installFakeDocker(t, psOut, 0)

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	err := c.WaitHealthy(context.Background(), "compose.yml", "task-acme", 5*time.Second, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app")
}

func TestController_Exec_WrapsInShC(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	script := "#!/bin/sh\necho \"$@\" >> " + logPath + "\necho output\nexit 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	c := New(shell.NewExecutor(shell.Options{}), logging.Default())
	out, err := c.Exec(context.Background(), "compose.yml", "task-acme", "app", "npm test")
	require.NoError(t, err)
	assert.Equal(t, "output\n", out)

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "exec -T app sh -c npm test")
}
