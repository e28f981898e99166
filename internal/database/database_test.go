package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"010_briefings_index.sql": "CREATE INDEX b;",
		"002_attendance.sql":      "CREATE TABLE a;",
		"001_initial_schema.sql":  "CREATE TABLE s;",
		"README.md":               "notes",
		"draft.sql":               "SELECT 1;",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	got, err := loadMigrations(dir)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{got[0].version, got[1].version, got[2].version})
	assert.Equal(t, "002_attendance.sql", got[1].name)
	assert.Equal(t, "CREATE INDEX b;", got[2].sql)
}

func TestLoadMigrationsRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"004_a.sql": "SELECT 1;",
		"4_b.sql":   "SELECT 2;",
	})

	_, err := loadMigrations(dir)
	assert.ErrorContains(t, err, "share version 4")
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	_, err := loadMigrations(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadMigrationsFromRepo(t *testing.T) {
	got, err := loadMigrations("../../migrations")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].version)
	assert.Contains(t, got[0].sql, "proactive_suggestions")
}

func TestRedisOptionsNamesClient(t *testing.T) {
	opt, err := redisOptions("redis://:secret@cache:6380/2", ClientPubSub)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, ClientPubSub, opt.ClientName)

	_, err = redisOptions("http://cache:6379", ClientQueue)
	assert.Error(t, err)
}
