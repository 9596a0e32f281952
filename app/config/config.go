// Package config loads runtime settings and opens the backing connections.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreNeo4j  = "neo4j"
	StoreMemory = "memory"
)

// Span exporters.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

// Config holds runtime settings for the application.
type Config struct {
	Addr                 string        `toml:"addr"`
	StoreBackend         string        `toml:"store_backend"`
	Neo4jURI             string        `toml:"neo4j_uri"`
	Neo4jUser            string        `toml:"neo4j_user"`
	Neo4jPassword        string        `toml:"neo4j_password"`
	Neo4jDatabase        string        `toml:"neo4j_database"`
	SessionSecret        string        `toml:"session_secret"`
	SessionTTL           time.Duration `toml:"session_ttl"`
	SessionCookieName    string        `toml:"session_cookie_name"`
	SessionSweepInterval time.Duration `toml:"session_sweep_interval"`
	SessionFailOpen      bool          `toml:"session_fail_open"`
	SecureCookies        bool          `toml:"secure_cookies"`
	RedisURL             string        `toml:"redis_url"`
	SessionCacheTTL      time.Duration `toml:"session_cache_ttl"`
	LogLevel             string        `toml:"log_level"`
	ShutdownTimeout      time.Duration `toml:"shutdown_timeout"`
	TracingExporter      string        `toml:"tracing_exporter"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.StoreBackend = StoreNeo4j
	c.Neo4jURI = "neo4j://localhost:7687"
	c.Neo4jUser = "neo4j"
	c.Neo4jPassword = "password"
	c.SessionTTL = 14 * 24 * time.Hour
	c.SessionCookieName = "todo.sid"
	c.SessionSweepInterval = 15 * time.Minute
	c.SessionFailOpen = true
	c.SessionCacheTTL = 5 * time.Minute
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
	c.TracingExporter = TracingNone
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret is not set")
	}
	switch c.StoreBackend {
	case StoreNeo4j:
		if c.Neo4jURI == "" {
			return errors.New("neo4j uri is not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	switch c.TracingExporter {
	case TracingNone, TracingStdout:
	default:
		return fmt.Errorf("unknown tracing exporter %q", c.TracingExporter)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}

// Load builds a Config from defaults, then an optional TOML file, the .env
// file, environment variables and finally the command-line flags in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fset := flag.NewFlagSet("social-todo", flag.ContinueOnError)
	var flagged Config
	configFile := fset.String("config", "", "path to a TOML config file")
	fset.StringVar(&flagged.Addr, "addr", "", "address to listen on")
	fset.StringVar(&flagged.StoreBackend, "store", "", "store backend (neo4j or memory)")
	fset.StringVar(&flagged.Neo4jURI, "neo4j-uri", "", "neo4j connection uri")
	fset.StringVar(&flagged.Neo4jUser, "neo4j-user", "", "neo4j user")
	fset.StringVar(&flagged.Neo4jPassword, "neo4j-password", "", "neo4j password")
	fset.StringVar(&flagged.Neo4jDatabase, "neo4j-database", "", "neo4j database name")
	fset.StringVar(&flagged.SessionSecret, "session-secret", "", "secret used to sign session cookies")
	fset.DurationVar(&flagged.SessionTTL, "session-ttl", 0, "session lifetime")
	fset.StringVar(&flagged.RedisURL, "redis-url", "", "redis url for the session cache")
	fset.StringVar(&flagged.LogLevel, "log-level", "", "log level")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if _, err := toml.DecodeFile(*configFile, cfg); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flagged.Addr
		case "store":
			cfg.StoreBackend = flagged.StoreBackend
		case "neo4j-uri":
			cfg.Neo4jURI = flagged.Neo4jURI
		case "neo4j-user":
			cfg.Neo4jUser = flagged.Neo4jUser
		case "neo4j-password":
			cfg.Neo4jPassword = flagged.Neo4jPassword
		case "neo4j-database":
			cfg.Neo4jDatabase = flagged.Neo4jDatabase
		case "session-secret":
			cfg.SessionSecret = flagged.SessionSecret
		case "session-ttl":
			cfg.SessionTTL = flagged.SessionTTL
		case "redis-url":
			cfg.RedisURL = flagged.RedisURL
		case "log-level":
			cfg.LogLevel = flagged.LogLevel
		}
	})

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.Neo4jURI, "NEO4J_URI")
	setString(&cfg.Neo4jUser, "NEO4J_USER")
	setString(&cfg.Neo4jPassword, "NEO4J_PASSWORD")
	setString(&cfg.Neo4jDatabase, "NEO4J_DATABASE")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.TracingExporter, "TRACING_EXPORTER")

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid SESSION_TTL %q", v)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SECURE_COOKIES %q", v)
		}
		cfg.SecureCookies = b
	}
	if v := os.Getenv("SESSION_FAIL_OPEN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_FAIL_OPEN %q", v)
		}
		cfg.SessionFailOpen = b
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		cfg.LogLevel = "debug"
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
