package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEnv(t *testing.T) {
	input := "export DATABASE_URL=\"postgres://h:5432/x\"\n# comment\n\nAPI_KEY='secret'\nPLAIN=value\n"
	want := "DATABASE_URL=postgres://h:5432/x\n# comment\n\nAPI_KEY=secret\nPLAIN=value\n"
	assert.Equal(t, want, string(NormalizeEnv([]byte(input))))
}

func TestNormalizeEnv_FixedPoint(t *testing.T) {
	input := []byte("export A=\"1\"\nB='2'\nC=3\n")
	once := NormalizeEnv(input)
	twice := NormalizeEnv(once)
	assert.Equal(t, once, twice)
}

func TestNormalizeEnv_NoTrailingNewlineAdded(t *testing.T) {
	input := []byte("A=1")
	assert.Equal(t, "A=1", string(NormalizeEnv(input)))
}

func TestParseEnv(t *testing.T) {
	data := []byte("export DATABASE_URL=\"postgres://h/x\"\n# c\nAPI_KEY=plain\n")
	env := ParseEnv(data)
	assert.Equal(t, "postgres://h/x", env["DATABASE_URL"])
	assert.Equal(t, "plain", env["API_KEY"])
}

func TestDatabaseURLFromEnv(t *testing.T) {
	url, ok := DatabaseURLFromEnv(map[string]string{"DATABASE_URL": "postgres://h/x"})
	assert.True(t, ok)
	assert.Equal(t, "postgres://h/x", url)

	_, ok = DatabaseURLFromEnv(map[string]string{})
	assert.False(t, ok)
}

func TestStripERB_NoExpressionsUnchanged(t *testing.T) {
	in := "development:\n  database: plain_db\n"
	assert.Equal(t, in, StripERB(in))
}

func TestStripERB_ExtractsFallbackLiteral(t *testing.T) {
	in := `database: <%= ENV["DB_NAME"] || "app_development" %>`
	assert.Equal(t, "database: app_development", StripERB(in))
}

func TestStripERB_NoFallbackYieldsEmpty(t *testing.T) {
	in := `database: <%= ENV["DB_NAME"] %>`
	assert.Equal(t, "database: ", StripERB(in))
}

func TestDatabaseFromYAML(t *testing.T) {
	data := []byte("development:\n  adapter: postgresql\n  database: <%= ENV[\"DB\"] || \"app_development\" %>\n")
	name, ok := DatabaseFromYAML(data)
	assert.True(t, ok)
	assert.Equal(t, "app_development", name)
}

func TestDatabaseFromYAML_MissingKey(t *testing.T) {
	_, ok := DatabaseFromYAML([]byte("production:\n  database: x\n"))
	assert.False(t, ok)
}
