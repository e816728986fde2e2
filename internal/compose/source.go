package compose

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/glide-cli/grove/internal/shell"
	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// pgURLSchemes are the schemes ParsePGURL and Clone accept.
var pgURLSchemes = map[string]bool{"postgres": true, "postgresql": true}

// ParsePGURL extracts the host, port, and database name from a PostgreSQL
// connection URL. Port defaults to 5432 when absent. Returns an error for
// any scheme other than postgres:// or postgresql://, so a misconfigured
// source is caught before a subprocess is ever invoked.
func ParsePGURL(pgURL string) (host string, port int, db string, err error) {
	u, err := url.Parse(pgURL)
	if err != nil {
		return "", 0, "", fmt.Errorf("invalid database url: %w", err)
	}
	if !pgURLSchemes[u.Scheme] {
		return "", 0, "", fmt.Errorf("unsupported database url scheme %q (want postgres or postgresql)", u.Scheme)
	}

	host = u.Hostname()
	port = 5432
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, "", fmt.Errorf("invalid port %q: %w", p, err)
		}
	}
	db = strings.TrimPrefix(u.Path, "/")
	return host, port, db, nil
}

// SerializePGURL is the inverse of ParsePGURL: SerializePGURL(ParsePGURL(u))
// round-trips for every URL built with it.
func SerializePGURL(host string, port int, db string) string {
	return fmt.Sprintf("postgres://%s:%d/%s", host, port, db)
}

// DetectSource resolves the clone source database for db_clone, trying
// each step of the priority chain in order and returning the first
// success. projectName's hyphens are replaced with underscores for the
// convention fallback.
func DetectSource(ctx context.Context, executor *shell.Executor, worktreePath, projectName string) string {
	if env := readEnvFile(filepath.Join(worktreePath, ".env")); env != nil {
		if url, ok := DatabaseURLFromEnv(env); ok {
			return url
		}
	}

	if data, err := os.ReadFile(filepath.Join(worktreePath, "config", "database.yml")); err == nil {
		if name, ok := DatabaseFromYAML(data); ok {
			return name
		}
	}

	conventional := strings.ReplaceAll(projectName, "-", "_") + "_development"
	if databaseExists(ctx, executor, conventional) {
		return conventional
	}

	return conventional
}

func readEnvFile(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return ParseEnv(data)
}

// databaseExists queries a local PostgreSQL server on localhost:5432 via
// `psql -lqt` for a database named name. Any failure (no server, no
// trust auth) is treated as "not found", letting the caller fall through
// to the convention default.
func databaseExists(ctx context.Context, executor *shell.Executor, name string) bool {
	cmd := shell.NewCommand("psql", "-h", "localhost", "-p", "5432", "-U", "postgres", "-lqt")
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true

	result, err := executor.ExecuteWithContext(ctx, cmd)
	if err != nil || result.ExitCode != 0 {
		return false
	}
	for _, line := range strings.Split(string(result.Stdout), "\n") {
		fields := strings.Split(line, "|")
		if len(fields) > 0 && strings.TrimSpace(fields[0]) == name {
			return true
		}
	}
	return false
}

var preflightFailurePatterns = []string{
	"could not connect",
	"does not exist",
	"connection refused",
	"no such file or directory",
}

// validateSourceScheme rejects anything that isn't a postgres:// or
// postgresql:// URL before a pg_dump/psql subprocess is ever spawned.
// source may instead be a bare database name (the convention-default
// fallback from DetectSource), which carries no scheme and is left alone.
func validateSourceScheme(source string) error {
	if !strings.Contains(source, "://") {
		return nil
	}
	if _, _, _, err := ParsePGURL(source); err != nil {
		return groveerrors.New(groveerrors.TypeComposeOpFailed,
			fmt.Sprintf("cannot clone from source %q", source),
			groveerrors.WithCause(err),
			groveerrors.WithSuggestions("Use a postgres:// or postgresql:// connection URL, or a bare database name"))
	}
	return nil
}

// preflight runs `pg_dump --schema-only` against a table that cannot
// exist, solely to detect connectivity problems before the real clone.
func preflight(ctx context.Context, executor *shell.Executor, source string) error {
	if err := validateSourceScheme(source); err != nil {
		return err
	}

	cmd := shell.NewCommand("pg_dump", "--schema-only", "-t", "__grove_preflight_check__", source)
	cmd.Mode = shell.ModeCapture
	cmd.CaptureOutput = true

	result, err := executor.ExecuteWithContext(ctx, cmd)
	if err != nil {
		return err
	}
	stderr := strings.ToLower(string(result.Stderr))
	for _, pattern := range preflightFailurePatterns {
		if strings.Contains(stderr, pattern) {
			return groveerrors.New(groveerrors.TypeComposeOpFailed,
				fmt.Sprintf("cannot reach source database %q for cloning", source),
				groveerrors.WithCause(fmt.Errorf("%s", strings.TrimSpace(string(result.Stderr)))),
				groveerrors.WithSuggestions("Run: pg_isready -d "+source))
		}
	}
	return nil
}

// Clone streams `pg_dump` from source into `docker compose exec -T db
// psql` against the task's database inside the compose stack. pg_dump's
// stderr is drained on a background goroutine, joined before returning,
// so NOTICE/WARNING chatter cannot deadlock the pipe.
func Clone(ctx context.Context, executor *shell.Executor, composeFile, project, source, task string) error {
	if err := preflight(ctx, executor, source); err != nil {
		return err
	}

	dumpArgs := []string{"--no-owner", "--no-acl", "--clean", "--if-exists", source}
	dump := shell.NewCommand("pg_dump", dumpArgs...)
	dump.Mode = shell.ModeCapture

	pr, pw := io.Pipe()
	dump.Stdout = pw
	var dumpStderr bytes.Buffer
	dump.Stderr = &dumpStderr

	psqlArgs := []string{"-f", composeFile, "-p", project, "exec", "-T", "db", "psql", "-U", "postgres", "-d", task + "_dev"}
	load := shell.NewCommand("docker", append([]string{"compose"}, psqlArgs...)...)
	load.Mode = shell.ModeCapture
	load.CaptureOutput = true
	load.Stdin = pr

	var dumpResult *shell.Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		dumpResult, _ = executor.ExecuteWithContext(ctx, dump)
		pw.Close()
	}()

	result, err := executor.ExecuteWithContext(ctx, load)
	<-done
	pr.Close()

	if dumpResult != nil && dumpResult.ExitCode != 0 {
		return groveerrors.New(groveerrors.TypeComposeOpFailed, "pg_dump failed",
			groveerrors.WithCause(fmt.Errorf("%s", strings.TrimSpace(dumpStderr.String()))))
	}
	if err != nil || result.ExitCode != 0 {
		return groveerrors.NewComposeOperationFailed("clone", string(result.Stderr))
	}
	return nil
}
