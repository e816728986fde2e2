package orchestrator

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// seedFiles names the host-root files copied into a fresh worktree:
// the container build file(s), the .env secrets file, and a Rails-style
// master key, per spec.md §4.1 step 6 (grounded on the original
// orchestrator's plant() file list).
var seedFiles = []string{"Dockerfile.dev", "Dockerfile.groot", ".env", "config/master.key"}

// seedWorktree copies any seedFiles present at repoRoot into worktreePath,
// creating parent directories as needed, and warns (non-fatally) if .env
// exists but is not covered by .gitignore.
func seedWorktree(repoRoot, worktreePath string, warn func(string)) error {
	for _, name := range seedFiles {
		src := filepath.Join(repoRoot, name)
		data, err := os.ReadFile(src)
		if err != nil {
			continue
		}
		dst := filepath.Join(worktreePath, name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
	}

	envPath := filepath.Join(repoRoot, ".env")
	if _, err := os.Stat(envPath); err == nil && warn != nil {
		if !envIgnored(repoRoot) {
			warn(".env exists but is not listed in .gitignore; secrets may be committed")
		}
	}
	return nil
}

func envIgnored(repoRoot string) bool {
	f, err := os.Open(filepath.Join(repoRoot, ".gitignore"))
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == ".env" {
			return true
		}
	}
	return false
}
