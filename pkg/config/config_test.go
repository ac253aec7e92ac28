package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://bot@localhost/bot")
	t.Setenv("ADMIN_IDS", " 42, 7 ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.OpsPort)
	assert.Equal(t, []int64{42, 7}, cfg.AdminIDs)
	assert.Equal(t, 8, cfg.Bot.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://bot@localhost/bot")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("BOT_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Bot.Workers)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://bot@localhost/bot")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoadRejectsBadAdminID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://bot@localhost/bot")
	t.Setenv("ADMIN_IDS", "42,bob")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bob")
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "semesters:\n  \"1\": [\"LG101 Phonetics\", \"LG102 Syntax\"]\n  \"2\": [\"LG201 Morphology\"]\nresource_types: [\"Books\", \"Notes\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	file, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"LG101 Phonetics", "LG102 Syntax"}, file.Semesters[1])
	assert.Equal(t, []string{"LG201 Morphology"}, file.Semesters[2])
	assert.Equal(t, []string{"Books", "Notes"}, file.ResourceTypes)
}

func TestLoadCatalogRejectsBadSemester(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("semesters:\n  first: [\"LG101\"]\n"), 0o600))

	_, err := LoadCatalog(path)
	require.Error(t, err)
}
