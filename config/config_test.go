package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: s3cret\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Pagination.Machines)
	assert.Equal(t, 15, cfg.Pagination.Maintenance)
	assert.Equal(t, 10, cfg.Pagination.Claims)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "silant.records", cfg.Events.Topic)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\ndatabase:\n  driver: postgres\n  dsn: file-dsn\n")
	t.Setenv("SILANT_DATABASE_DRIVER", "sqlite")
	t.Setenv("SILANT_DATABASE_DSN", ":memory:")
	t.Setenv("SILANT_JWT_SECRET", "from-env")
	t.Setenv("SILANT_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  port: 1\n"))
		assert.EqualError(t, err, "auth.jwt_secret must be set")
	})

	t.Run("bad port override", func(t *testing.T) {
		t.Setenv("SILANT_SERVER_PORT", "eighty")
		_, err := Load(writeConfig(t, "auth:\n  jwt_secret: x\n"))
		assert.Error(t, err)
	})
}
