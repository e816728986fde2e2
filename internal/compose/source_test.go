package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glide-cli/grove/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSource_PrefersEnvDatabaseURL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://h:5432/x\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "database.yml"),
		[]byte("development:\n  database: y\n"), 0o644))

	executor := shell.NewExecutor(shell.Options{})
	source := DetectSource(context.Background(), executor, dir, "acme")
	assert.Equal(t, "postgres://h:5432/x", source)
}

func TestDetectSource_FallsBackToDatabaseYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "database.yml"),
		[]byte("development:\n  database: y\n"), 0o644))

	executor := shell.NewExecutor(shell.Options{})
	source := DetectSource(context.Background(), executor, dir, "acme")
	assert.Equal(t, "y", source)
}

func TestDetectSource_ConventionFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", t.TempDir()) // no psql on PATH

	executor := shell.NewExecutor(shell.Options{})
	source := DetectSource(context.Background(), executor, dir, "acme-app")
	assert.Equal(t, "acme_app_development", source)
}

func TestParsePGURL_RoundTripsForValidTriples(t *testing.T) {
	triples := []struct {
		host string
		port int
		db   string
	}{
		{"localhost", 5432, "acme_development"},
		{"db.internal", 6543, "x"},
		{"10.0.0.5", 5433, "feature_x_dev"},
	}

	for _, tt := range triples {
		serialized := SerializePGURL(tt.host, tt.port, tt.db)
		host, port, db, err := ParsePGURL(serialized)
		require.NoError(t, err)
		assert.Equal(t, tt.host, host)
		assert.Equal(t, tt.port, port)
		assert.Equal(t, tt.db, db)
	}
}

func TestParsePGURL_DefaultsPortWhenAbsent(t *testing.T) {
	host, port, db, err := ParsePGURL("postgres://db.internal/acme_development")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", host)
	assert.Equal(t, 5432, port)
	assert.Equal(t, "acme_development", db)
}

func TestParsePGURL_RejectsInvalidScheme(t *testing.T) {
	_, _, _, err := ParsePGURL("mysql://h:3306/x")
	assert.Error(t, err)
}

func TestClone_RejectsInvalidSchemeBeforeAnySubprocess(t *testing.T) {
	t.Setenv("PATH", t.TempDir()) // pg_dump/psql would fail loudly if ever invoked

	executor := shell.NewExecutor(shell.Options{})
	err := Clone(context.Background(), executor, "compose.grove.yml", "acme", "mysql://h:3306/x", "feature-x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}
