package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "STORE_BACKEND", "NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE",
	"SESSION_SECRET", "SESSION_TTL", "REDIS_URL", "LOG_LEVEL", "SECURE_COOKIES", "DEBUG",
	"SESSION_FAIL_OPEN", "TRACING_EXPORTER",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, StoreNeo4j, c.StoreBackend)
	assert.Equal(t, "neo4j://localhost:7687", c.Neo4jURI)
	assert.Equal(t, 14*24*time.Hour, c.SessionTTL)
	assert.Equal(t, "todo.sid", c.SessionCookieName)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.SessionSecret)
	assert.True(t, c.SessionFailOpen)
	assert.Equal(t, TracingNone, c.TracingExporter)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "todo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":9000"
neo4j_uri = "neo4j://file:7687"
session_secret = "from-file"
session_ttl = "2h"
log_level = "warn"
`), 0o600))

	t.Run("file only", func(t *testing.T) {
		cfg, err := Load([]string{"-config", path})
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, "neo4j://file:7687", cfg.Neo4jURI)
		assert.Equal(t, "from-file", cfg.SessionSecret)
		assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "neo4j", cfg.Neo4jUser)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("PORT", "3000")
		t.Setenv("SESSION_SECRET", "from-env")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("SECURE_COOKIES", "true")

		cfg, err := Load([]string{"-config", path})
		require.NoError(t, err)
		assert.Equal(t, ":3000", cfg.Addr)
		assert.Equal(t, "from-env", cfg.SessionSecret)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.True(t, cfg.SecureCookies)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "from-env")
		t.Setenv("STORE_BACKEND", "neo4j")

		cfg, err := Load([]string{"-config", path, "-session-secret", "from-flag", "-store", "memory", "-addr", ":1"})
		require.NoError(t, err)
		assert.Equal(t, "from-flag", cfg.SessionSecret)
		assert.Equal(t, StoreMemory, cfg.StoreBackend)
		assert.Equal(t, ":1", cfg.Addr)
	})

	t.Run("debug forces debug level", func(t *testing.T) {
		t.Setenv("DEBUG", "1")
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("session and tracing policy from env", func(t *testing.T) {
		t.Setenv("SESSION_FAIL_OPEN", "false")
		t.Setenv("TRACING_EXPORTER", "stdout")
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.False(t, cfg.SessionFailOpen)
		assert.Equal(t, TracingStdout, cfg.TracingExporter)
	})
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)

	t.Setenv("SESSION_TTL", "soon")
	_, err = Load(nil)
	assert.Error(t, err)

	t.Setenv("SESSION_TTL", "")
	t.Setenv("SESSION_FAIL_OPEN", "sometimes")
	_, err = Load(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		c.SessionSecret = "s"
		return c
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.SessionSecret = ""
	assert.Error(t, c.Validate())

	c = base()
	c.StoreBackend = "mongo"
	assert.Error(t, c.Validate())

	c = base()
	c.TracingExporter = "jaeger"
	assert.Error(t, c.Validate())

	c = base()
	c.StoreBackend = StoreMemory
	c.Neo4jURI = ""
	assert.NoError(t, c.Validate())
}
