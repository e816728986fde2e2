// Package toolcheck verifies that the external tools grove shells out to
// (docker, docker compose, tmux) are present and meet a minimum
// version, supplementing spec.md's implicit "verify docker compose is
// callable" preflight with explicit version gating from original_source/.
package toolcheck

import (
	"context"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/internal/shell"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Requirement names a tool, the arguments that print its version, and the
// minimum acceptable semver.
type Requirement struct {
	Name       string
	VersionCmd []string
	MinVersion string
}

var (
	DockerRequirement  = Requirement{Name: "docker", VersionCmd: []string{"docker", "version", "--format", "{{.Client.Version}}"}, MinVersion: "20.10.0"}
	ComposeRequirement = Requirement{Name: "docker compose", VersionCmd: []string{"docker", "compose", "version", "--short"}, MinVersion: "2.0.0"}
	TmuxRequirement    = Requirement{Name: "tmux", VersionCmd: []string{"tmux", "-V"}, MinVersion: "3.0"}
)

// Checker runs Requirement checks via the shell executor.
type Checker struct {
	executor *shell.Executor
}

// New creates a Checker backed by executor.
func New(executor *shell.Executor) *Checker {
	return &Checker{executor: executor}
}

// Verify runs req's version command and errors if the tool is missing or
// below MinVersion.
func (c *Checker) Verify(ctx context.Context, req Requirement) error {
	cmd := shell.NewCommand(req.VersionCmd[0], req.VersionCmd[1:]...)
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true
	result, err := c.executor.ExecuteWithContext(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return groveerrors.New(groveerrors.TypeDockerAbsent, req.Name+" is not available",
			groveerrors.WithCause(err),
			groveerrors.WithSuggestions("Install "+req.Name+" and ensure it is on PATH."))
	}

	match := versionPattern.FindString(string(result.Stdout))
	if match == "" {
		return nil
	}

	have, err := semver.NewVersion(match)
	if err != nil {
		return nil
	}
	want, err := semver.NewVersion(req.MinVersion)
	if err != nil {
		return nil
	}
	if have.LessThan(want) {
		return groveerrors.New(groveerrors.TypeDockerAbsent,
			req.Name+" "+have.String()+" is older than the required "+want.String(),
			groveerrors.WithSuggestions("Upgrade "+req.Name+" to at least "+want.String()+"."))
	}
	return nil
}

// VerifyAll runs every requirement in reqs, returning the first failure.
func (c *Checker) VerifyAll(ctx context.Context, reqs ...Requirement) error {
	for _, req := range reqs {
		if err := c.Verify(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// VerifyWithTimeout is a convenience wrapper bounding all checks together
// by one timeout.
func (c *Checker) VerifyWithTimeout(timeout time.Duration, reqs ...Requirement) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.VerifyAll(ctx, reqs...)
}
