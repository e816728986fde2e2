// Package lockmgr provides exclusive advisory file locks for per-task
// environments and the shared port registry, serializing access across
// concurrently running grove processes.
package lockmgr

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// Lock wraps a try-exclusive OS file lock. It is released when Unlock is
// called; callers should defer Unlock immediately after a successful Acquire.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Manager resolves lock paths under a state root.
type Manager struct {
	stateRoot string
}

// New creates a Manager rooted at stateRoot.
func New(stateRoot string) *Manager {
	return &Manager{stateRoot: stateRoot}
}

// AcquireTask takes the exclusive per-task lock at locks/<task>.lock,
// failing immediately with TypeLockFailed if another process holds it.
func (m *Manager) AcquireTask(task string) (*Lock, error) {
	return m.acquire(filepath.Join(m.stateRoot, "locks", task+".lock"))
}

// AcquireRegistry takes the exclusive lock guarding ports.json.
func (m *Manager) AcquireRegistry() (*Lock, error) {
	return m.acquire(filepath.Join(m.stateRoot, "ports.json.lock"))
}

func (m *Manager) acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, groveerrors.New(groveerrors.TypeIO, "failed to create lock directory", groveerrors.WithCause(err))
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, groveerrors.New(groveerrors.TypeLockFailed, "failed to acquire lock "+path, groveerrors.WithCause(err))
	}
	if !locked {
		return nil, groveerrors.NewLockFailed(path)
	}

	return &Lock{flock: fl, path: path}, nil
}

// Unlock releases the lock. Safe to call on a nil receiver for defer chains
// guarding early-return paths before a lock was ever acquired.
func (l *Lock) Unlock() error {
	if l == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return groveerrors.New(groveerrors.TypeLockFailed, "failed to release lock "+l.path, groveerrors.WithCause(err))
	}
	return nil
}

// Remove deletes the lock file after it has been released. Best-effort:
// leaving a stale unlocked lock file behind is harmless.
func (l *Lock) Remove() {
	if l == nil {
		return
	}
	_ = os.Remove(l.path)
}
