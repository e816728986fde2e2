package config

// ProjectConfig is the project-level, version-controlled configuration
// read from config.yml at the repository's state root.
type ProjectConfig struct {
	ProjectName     string   `yaml:"project_name"`
	DetectedTypes   []string `yaml:"detected_types"`
	ContainerEnabled bool    `yaml:"container_enabled"`
	DefaultBranch   string   `yaml:"default_branch"`
}

// LocalConfig is the user-level, git-ignored configuration read from
// local.yml at the repository's state root.
type LocalConfig struct {
	TmuxSessionName          string   `yaml:"tmux_session_name"`
	MaxWorkers               int      `yaml:"max_workers"`
	MinDiskSpaceMB           int64    `yaml:"min_disk_space_mb"`
	ComposeHealthTimeoutSecs int      `yaml:"compose_health_timeout_secs"`
	ComposePostStart         []string `yaml:"compose_post_start"`
	ComposeDBSource          string   `yaml:"compose_db_source,omitempty"`
}

const (
	defaultTmuxSessionName          = "grove"
	defaultMaxWorkers               = 4
	defaultMinDiskSpaceMB           = 500
	defaultComposeHealthTimeoutSecs = 60
)

// WithDefaults returns a copy of l with zero-valued fields replaced by
// the documented defaults.
func (l LocalConfig) WithDefaults() LocalConfig {
	if l.TmuxSessionName == "" {
		l.TmuxSessionName = defaultTmuxSessionName
	}
	if l.MaxWorkers == 0 {
		l.MaxWorkers = defaultMaxWorkers
	}
	if l.MinDiskSpaceMB == 0 {
		l.MinDiskSpaceMB = defaultMinDiskSpaceMB
	}
	if l.ComposeHealthTimeoutSecs == 0 {
		l.ComposeHealthTimeoutSecs = defaultComposeHealthTimeoutSecs
	}
	return l
}

// Config bundles the project and local configuration for a repository.
type Config struct {
	Project ProjectConfig
	Local   LocalConfig
}
