package lockmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AcquireTask(t *testing.T) {
	m := New(t.TempDir())

	lock, err := m.AcquireTask("feat-x")
	require.NoError(t, err)
	require.NotNil(t, lock)

	_, err = m.AcquireTask("feat-x")
	require.Error(t, err, "second acquire should fail while the first is held")

	require.NoError(t, lock.Unlock())

	lock2, err := m.AcquireTask("feat-x")
	require.NoError(t, err, "lock should be acquirable again after release")
	require.NoError(t, lock2.Unlock())
}

func TestManager_AcquireRegistry(t *testing.T) {
	m := New(t.TempDir())
	lock, err := m.AcquireRegistry()
	require.NoError(t, err)
	defer lock.Unlock()

	_, err = m.AcquireRegistry()
	assert.Error(t, err)
}

func TestLock_UnlockNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Unlock())
	l.Remove()
}
