package config

import (
	"os"
	"path/filepath"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultStateDir is the conventional dot-prefixed directory name under the
// repository root that holds config.yml, local.yml, and all grove state.
const DefaultStateDir = ".grove"

// Loader reads and writes config.yml/local.yml under a repository's state root.
type Loader struct {
	StateRoot string
}

// NewLoader creates a Loader rooted at <repoRoot>/<DefaultStateDir>.
func NewLoader(repoRoot string) *Loader {
	return &Loader{StateRoot: filepath.Join(repoRoot, DefaultStateDir)}
}

func (l *Loader) projectPath() string { return filepath.Join(l.StateRoot, "config.yml") }
func (l *Loader) localPath() string   { return filepath.Join(l.StateRoot, "local.yml") }

// Load reads config.yml and local.yml, returning TypeNotInit if the state
// root does not exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.StateRoot); os.IsNotExist(err) {
		return nil, groveerrors.New(groveerrors.TypeNotInit, "grove has not been initialized in this repository",
			groveerrors.WithSuggestions("Run: grove init"))
	}

	var project ProjectConfig
	if err := readYAML(l.projectPath(), &project); err != nil {
		return nil, err
	}

	var local LocalConfig
	if err := readYAML(l.localPath(), &local); err != nil {
		return nil, err
	}
	local = local.WithDefaults()

	return &Config{Project: project, Local: local}, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return groveerrors.New(groveerrors.TypeIO, "failed to read "+path, groveerrors.WithCause(err))
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return groveerrors.New(groveerrors.TypeYAML, "failed to parse "+path, groveerrors.WithCause(err))
	}
	return nil
}

// Save writes both config.yml and local.yml, creating the state root if needed.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(l.StateRoot, 0o755); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to create state root", groveerrors.WithCause(err))
	}
	if err := writeYAML(l.projectPath(), cfg.Project); err != nil {
		return err
	}
	return writeYAML(l.localPath(), cfg.Local)
}

func writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return groveerrors.New(groveerrors.TypeYAML, "failed to marshal "+path, groveerrors.WithCause(err))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to write "+path, groveerrors.WithCause(err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to finalize "+path, groveerrors.WithCause(err))
	}
	return nil
}
