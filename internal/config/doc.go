// Package config loads the project-level config.yml and user-level
// local.yml that live under a repository's grove state root.
package config
