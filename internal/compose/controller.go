package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/glide-cli/grove/internal/shell"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/logging"
	"github.com/glide-cli/grove/pkg/progress"
)

// pollInterval between `docker compose ps` checks during WaitHealthy.
const pollInterval = 2 * time.Second

// Controller drives `docker compose` for one compose project.
type Controller struct {
	executor *shell.Executor
	logger   *logging.Logger
}

// New creates a Controller backed by executor.
func New(executor *shell.Executor, logger *logging.Logger) *Controller {
	return &Controller{executor: executor, logger: logger}
}

func (c *Controller) run(ctx context.Context, args ...string) (*shell.Result, error) {
	cmd := shell.NewCommand("docker", append([]string{"compose"}, args...)...)
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true
	return c.executor.ExecuteWithContext(ctx, cmd)
}

// Up invokes `docker compose -f <file> -p <project> --env-file <envFile>
// up -d --build`.
func (c *Controller) Up(ctx context.Context, file, project, envFile string) error {
	result, err := c.run(ctx, "-f", file, "-p", project, "--env-file", envFile, "up", "-d", "--build")
	if err != nil || result.ExitCode != 0 {
		return groveerrors.NewComposeOperationFailed("up", string(resultStderr(result)))
	}
	return nil
}

// Down invokes `docker compose -f <file> -p <project> down -v`. Non-zero
// exit is logged, not returned as an error, per spec.md §4.4.
func (c *Controller) Down(ctx context.Context, file, project string) {
	result, err := c.run(ctx, "-f", file, "-p", project, "down", "-v")
	if err != nil || result.ExitCode != 0 {
		c.logger.Warn("compose down failed", "project", project, "stderr", string(resultStderr(result)))
	}
}

// Build invokes `docker compose -f <file> -p <project> build`.
func (c *Controller) Build(ctx context.Context, file, project string) error {
	result, err := c.run(ctx, "-f", file, "-p", project, "build")
	if err != nil || result.ExitCode != 0 {
		return groveerrors.NewComposeOperationFailed("build", string(resultStderr(result)))
	}
	return nil
}

// ServiceStatus is one entry from `docker compose ps --format json`.
type ServiceStatus struct {
	Service string `json:"Service"`
	State   string `json:"State"`
	Health  string `json:"Health"`
}

func (s ServiceStatus) ready() bool {
	return s.State == "running" && (s.Health == "" || s.Health == "healthy")
}

func (s ServiceStatus) crashed() bool {
	return s.State == "exited" || s.State == "dead"
}

// PS returns the current service statuses for the project.
func (c *Controller) PS(ctx context.Context, file, project string) ([]ServiceStatus, error) {
	result, err := c.run(ctx, "-f", file, "-p", project, "ps", "--format", "json")
	if err != nil || result.ExitCode != 0 {
		return nil, groveerrors.NewComposeOperationFailed("ps", string(resultStderr(result)))
	}
	return parsePSOutput(result.Stdout)
}

// parsePSOutput handles both the array form and the newline-delimited
// object form that different compose versions emit for --format json.
func parsePSOutput(data []byte) ([]ServiceStatus, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var statuses []ServiceStatus
		if err := json.Unmarshal([]byte(trimmed), &statuses); err != nil {
			return nil, err
		}
		return statuses, nil
	}

	var statuses []ServiceStatus
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var s ServiceStatus
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// WaitHealthy polls PS every 2 seconds until every service is ready,
// reporting progress on bar (may be nil). Fails fast if any service
// crashes, and times out after timeout elapses.
func (c *Controller) WaitHealthy(ctx context.Context, file, project string, timeout time.Duration, bar *progress.Bar) error {
	deadline := time.Now().Add(timeout)
	if bar != nil {
		bar.Start()
		defer bar.Stop()
	}

	for {
		statuses, err := c.PS(ctx, file, project)
		if err != nil {
			return err
		}

		ready := 0
		for _, s := range statuses {
			if s.crashed() {
				return groveerrors.New(groveerrors.TypeComposeOpFailed,
					fmt.Sprintf("service %q exited during startup", s.Service))
			}
			if s.ready() {
				ready++
			}
		}

		if bar != nil {
			bar.SetTotal(len(statuses))
			bar.Update(ready)
		}

		if len(statuses) > 0 && ready == len(statuses) {
			return nil
		}

		if time.Now().After(deadline) {
			return groveerrors.New(groveerrors.TypeComposeOpFailed,
				fmt.Sprintf("compose stack for %q did not become healthy within %s", project, timeout))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Exec wraps cmd in `sh -c` and invokes `docker compose exec -T <service>`
// non-interactively.
func (c *Controller) Exec(ctx context.Context, file, project, service, cmd string) (string, error) {
	return c.execAs(ctx, file, project, service, "", cmd)
}

// ExecAsUser is Exec with an explicit `--user`.
func (c *Controller) ExecAsUser(ctx context.Context, file, project, service, user, cmd string) (string, error) {
	return c.execAs(ctx, file, project, service, user, cmd)
}

func (c *Controller) execAs(ctx context.Context, file, project, service, user, cmd string) (string, error) {
	args := []string{"-f", file, "-p", project, "exec", "-T"}
	if user != "" {
		args = append(args, "--user", user)
	}
	args = append(args, service, "sh", "-c", cmd)

	result, err := c.run(ctx, args...)
	if err != nil || result.ExitCode != 0 {
		return string(result.Stdout), groveerrors.NewComposeOperationFailed("exec", string(resultStderr(result)))
	}
	return string(result.Stdout), nil
}

func resultStderr(result *shell.Result) []byte {
	if result == nil {
		return nil
	}
	return result.Stderr
}
