package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gartstein/insightdesk/internal/company/completeness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_ShippedConfig(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")

	cfg, err := Load("config.yaml", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.EnrichInitialBackoff)
	assert.Equal(t, completeness.DefaultPolicy, cfg.Policy())
	assert.Equal(t, "postgres", cfg.Database().Driver)
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "GRPC_PORT: 7000\nJWT_SECRET: from-file\nDB_DRIVER: sqlite\nSQLITE_PATH: /tmp/x.db\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PASSWORD", "hunter2")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.GRPCPort)
	assert.Equal(t, 8080, cfg.HTTPPort, "default applies")
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "hunter2", cfg.DBPassword)
	assert.Equal(t, "/tmp/x.db", cfg.Database().SQLitePath)
	assert.Equal(t, uint64(3), cfg.Enrichment().MaxRetries)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI().Model)
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "OPENAI_API_KEY")
	envFile := writeFile(t, ".env", "OPENAI_API_KEY=sk-test\n")
	path := writeFile(t, "config.yaml", "JWT_SECRET: s\n")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv("OPENAI_API_KEY") })

	assert.Equal(t, "sk-test", cfg.OpenAI().APIKey)
}

func TestLoad_Errors(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")
	missingEnv := filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		name    string
		content string
	}{
		{name: "missing secret", content: "GRPC_PORT: 9090\n"},
		{name: "bad driver", content: "JWT_SECRET: s\nDB_DRIVER: mysql\n"},
		{name: "sqlite without path", content: "JWT_SECRET: s\nDB_DRIVER: sqlite\n"},
		{name: "threshold above tier", content: "JWT_SECRET: s\nCOMPLETENESS_REQUIRED_MIN: 40\n"},
		{name: "negative threshold", content: "JWT_SECRET: s\nCOMPLETENESS_OPTIONAL_MIN: -1\n"},
		{name: "bad yaml", content: "JWT_SECRET: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.content), missingEnv)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), missingEnv)
	assert.Error(t, err)
}
