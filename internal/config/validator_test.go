package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	clearEnvVars(t)
	t.Setenv("ENV_SCHEMA_VERSION", ExpectedEnvSchemaVersion)
	t.Setenv("API_KEY", "key")
}

func TestValidateEnv_MissingVersion(t *testing.T) {
	t.Setenv("ENV_SCHEMA_VERSION", "")

	err := ValidateEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENV_SCHEMA_VERSION is not set")
}

func TestValidateEnv_VersionMismatch(t *testing.T) {
	t.Setenv("ENV_SCHEMA_VERSION", "0.9")

	err := ValidateEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENV_SCHEMA_VERSION mismatch")
	assert.Contains(t, err.Error(), "expected 1.0, got 0.9")
}

func TestValidateEnv_MissingRequired(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("ENV_SCHEMA_VERSION", ExpectedEnvSchemaVersion)

	err := ValidateEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required environment variables")
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestValidateEnv_MemoryBackendNeedsNoDatabase(t *testing.T) {
	setRequired(t)
	assert.NoError(t, ValidateEnv())
}

func TestValidateEnv_BackendVariables(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE_BACKEND", StoreBackendPostgres)
		t.Setenv("DB_USER", "user")

		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD")
		assert.NotContains(t, err.Error(), "DB_USER")
	})

	t.Run("redis", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE_BACKEND", StoreBackendRedis)

		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_ADDR")

		t.Setenv("REDIS_ADDR", "redis:6379")
		assert.NoError(t, ValidateEnv())
	})
}

func TestValidateEnvWithWarnings(t *testing.T) {
	catalogPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("version: test"), 0o600))

	t.Run("insecure example values", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CATALOG_PATH", catalogPath)
		t.Setenv("STORE_BACKEND", StoreBackendPostgres)
		t.Setenv("DB_PASSWORD", exampleDBPassword)
		t.Setenv("API_KEY", exampleAPIKey)
		t.Setenv("DB_USER", "user")
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("DB_NAME", "db")
		t.Setenv("AMQP_URL", "amqp://localhost:5672/")

		warnings, err := ValidateEnvWithWarnings()
		require.NoError(t, err, "warnings never fail validation")
		require.Len(t, warnings, 2)
		assert.Contains(t, warnings[0], "DB_PASSWORD")
		assert.Contains(t, warnings[1], "API_KEY")
	})

	t.Run("notifications disabled", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CATALOG_PATH", catalogPath)

		warnings, err := ValidateEnvWithWarnings()
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "AMQP_URL")
	})

	t.Run("memory backend in production", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CATALOG_PATH", catalogPath)
		t.Setenv("AMQP_URL", "amqp://localhost:5672/")
		t.Setenv("ENVIRONMENT", "production")

		warnings, err := ValidateEnvWithWarnings()
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "progression is lost on restart")
	})

	t.Run("missing catalog", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CATALOG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
		t.Setenv("AMQP_URL", "amqp://localhost:5672/")

		warnings, err := ValidateEnvWithWarnings()
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "CATALOG_PATH")
	})
}
