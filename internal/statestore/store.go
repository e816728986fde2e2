// Package statestore persists and loads per-environment records under
// <state_root>/groves/<task>.json. Writes are atomic (temp file + fsync +
// rename); reads tolerate unknown or legacy fields and never cache, so
// correctness wins over raw speed at this scale.
package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
	"github.com/glide-cli/grove/pkg/logging"
)

// Store reads and writes environment records under a state root.
type Store struct {
	dir    string
	logger *logging.Logger
}

// New creates a Store rooted at <stateRoot>/groves.
func New(stateRoot string, logger *logging.Logger) *Store {
	return &Store{dir: filepath.Join(stateRoot, "groves"), logger: logger}
}

func (s *Store) path(task string) string {
	return filepath.Join(s.dir, task+".json")
}

// Exists reports whether a record file exists for task.
func (s *Store) Exists(task string) bool {
	_, err := os.Stat(s.path(task))
	return err == nil
}

// Load reads and decodes the record for task, returning TypeNotFound if
// no record file exists.
func (s *Store) Load(task string) (*Record, error) {
	data, err := os.ReadFile(s.path(task))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, groveerrors.NewNotFound("environment", task)
		}
		return nil, groveerrors.New(groveerrors.TypeIO, "failed to read record for "+task, groveerrors.WithCause(err))
	}

	var legacy legacyRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, groveerrors.New(groveerrors.TypeJSON, "failed to parse record for "+task, groveerrors.WithCause(err))
	}
	r := legacy.normalize()
	return &r, nil
}

// Save atomically writes record, creating the groves directory if needed.
func (s *Store) Save(r *Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to create state directory", groveerrors.WithCause(err))
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return groveerrors.New(groveerrors.TypeJSON, "failed to encode record for "+r.TaskName, groveerrors.WithCause(err))
	}

	path := s.path(r.TaskName)
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to create temp record file", groveerrors.WithCause(err))
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return groveerrors.New(groveerrors.TypeIO, "failed to write record for "+r.TaskName, groveerrors.WithCause(err))
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return groveerrors.New(groveerrors.TypeIO, "failed to fsync record for "+r.TaskName, groveerrors.WithCause(err))
	}
	if err := f.Close(); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to close record file", groveerrors.WithCause(err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to finalize record for "+r.TaskName, groveerrors.WithCause(err))
	}
	return nil
}

// Delete removes the record file for task. Missing files are not an error.
func (s *Store) Delete(task string) error {
	if err := os.Remove(s.path(task)); err != nil && !os.IsNotExist(err) {
		return groveerrors.New(groveerrors.TypeIO, "failed to delete record for "+task, groveerrors.WithCause(err))
	}
	return nil
}

// List enumerates all records, skipping files that fail to parse (logged,
// not propagated as an error).
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, groveerrors.New(groveerrors.TypeIO, "failed to list records", groveerrors.WithCause(err))
	}

	var records []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		task := strings.TrimSuffix(e.Name(), ".json")
		r, err := s.Load(task)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping unparseable record", "task", task, "error", err)
			}
			continue
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].TaskName < records[j].TaskName })
	return records, nil
}
