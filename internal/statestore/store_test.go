package statestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)

	r := &Record{
		TaskName:     "feat-x",
		Branch:       "acme/feature/feat-x",
		WorktreePath: filepath.Join(root, "worktrees", "feat-x"),
		CreatedAt:    time.Now().UTC(),
		ComposeFile:  filepath.Join(root, "compose", "feat-x", "docker-compose.yml"),
		ComposePorts: &PortTriple{App: 3001, DB: 5433, Cache: 6380},
	}
	require.NoError(t, s.Save(r))
	assert.True(t, s.Exists("feat-x"))

	loaded, err := s.Load("feat-x")
	require.NoError(t, err)
	assert.Equal(t, r.Branch, loaded.Branch)
	assert.True(t, loaded.IsGrove())
	assert.False(t, loaded.IsTree())

	require.NoError(t, s.Delete("feat-x"))
	assert.False(t, s.Exists("feat-x"))
}

func TestStore_LoadNotFound(t *testing.T) {
	s := New(t.TempDir(), nil)
	_, err := s.Load("missing")
	require.Error(t, err)
}

func TestStore_LoadLegacyTmuxWindow(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)
	require.NoError(t, os.MkdirAll(s.dir, 0o755))
	require.NoError(t, os.WriteFile(s.path("legacy"), []byte(`{"task_name":"legacy","tmux_window":"old-session"}`), 0o644))

	r, err := s.Load("legacy")
	require.NoError(t, err)
	assert.Equal(t, "old-session", r.TmuxSession)
}

func TestStore_ListSkipsUnparseable(t *testing.T) {
	root := t.TempDir()
	s := New(root, nil)
	require.NoError(t, s.Save(&Record{TaskName: "a"}))
	require.NoError(t, s.Save(&Record{TaskName: "b"}))
	require.NoError(t, os.WriteFile(s.path("broken"), []byte("{not json"), 0o644))

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].TaskName)
	assert.Equal(t, "b", records[1].TaskName)
}

func TestStore_ListEmptyDir(t *testing.T) {
	s := New(t.TempDir(), nil)
	records, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}
