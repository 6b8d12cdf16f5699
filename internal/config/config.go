package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
	"github.com/kailas-cloud/newsrank/internal/usecase/ranking"
)

// Config holds the newsrank service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Graph    GraphConfig    `yaml:"graph"`
	Postgres PostgresConfig `yaml:"postgres"`
	Auth     AuthConfig     `yaml:"auth"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API keys to the document groups they may read.
type AuthConfig struct {
	APIKeys map[string][]string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Valkey settings for the vector index and profile cache.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	VectorIndex      string   `yaml:"vector_index"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// GraphConfig holds Neo4j settings.
type GraphConfig struct {
	URI         string `yaml:"uri"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	MaxPoolSize int    `yaml:"max_pool_size"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// PostgresConfig holds client profile database settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConns       int32  `yaml:"max_conns"`
	ConnTimeoutSec int    `yaml:"conn_timeout_sec"`
}

// RankingConfig holds ranking tunables.
type RankingConfig struct {
	VectorTopK         int              `yaml:"vector_top_k"`
	ChannelTimeoutMs   int              `yaml:"channel_timeout_ms"`
	RequestTimeoutMs   int              `yaml:"request_timeout_ms"`
	ProfileCacheTTLSec int              `yaml:"profile_cache_ttl_sec"` // 0 disables the cache
	Weights            *domrank.Weights `yaml:"weights"`
	Curves             *ranking.Curves  `yaml:"curves"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Endpoint    string            `yaml:"endpoint"` // OTLP/HTTP host:port, empty = stdout
	Insecure    bool              `yaml:"insecure"`
	Headers     map[string]string `yaml:"headers"`
	SampleRatio float64           `yaml:"sample_ratio"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	// Tuning sections decode over the defaults, so a file may override single fields.
	weights := domrank.DefaultWeights()
	curves := ranking.DefaultCurves()
	cfg := Config{Ranking: RankingConfig{Weights: &weights, Curves: &curves}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "newsrank:doc:"
	}
	if c.Database.VectorIndex == "" {
		c.Database.VectorIndex = "newsrank:doc:idx"
	}
	if c.Graph.User == "" {
		c.Graph.User = "neo4j"
	}
	if c.Graph.MaxPoolSize <= 0 {
		c.Graph.MaxPoolSize = 50
	}
	if c.Graph.TimeoutSec <= 0 {
		c.Graph.TimeoutSec = 10
	}
	if c.Postgres.MaxConns <= 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Postgres.ConnTimeoutSec <= 0 {
		c.Postgres.ConnTimeoutSec = 5
	}
	if c.Ranking.VectorTopK <= 0 {
		c.Ranking.VectorTopK = ranking.DefaultVectorTopK
	}
	if c.Ranking.ChannelTimeoutMs <= 0 {
		c.Ranking.ChannelTimeoutMs = 500
	}
	if c.Ranking.RequestTimeoutMs <= 0 {
		c.Ranking.RequestTimeoutMs = 2000
	}
	if c.Ranking.Weights == nil {
		w := domrank.DefaultWeights()
		c.Ranking.Weights = &w
	}
	if c.Ranking.Curves == nil {
		cv := ranking.DefaultCurves()
		c.Ranking.Curves = &cv
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Graph.URI == "" {
		return fmt.Errorf("graph.uri is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys must list at least one key")
	}
	for key, groups := range c.Auth.APIKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("auth.api_keys contains an empty key")
		}
		if len(groups) == 0 {
			return fmt.Errorf("auth.api_keys: key %s... has no groups", keyHint(key))
		}
	}
	if c.Ranking.ChannelTimeoutMs > c.Ranking.RequestTimeoutMs {
		return fmt.Errorf("ranking.channel_timeout_ms (%d) exceeds ranking.request_timeout_ms (%d)",
			c.Ranking.ChannelTimeoutMs, c.Ranking.RequestTimeoutMs)
	}
	if c.Ranking.ProfileCacheTTLSec < 0 {
		return fmt.Errorf("ranking.profile_cache_ttl_sec must not be negative")
	}
	if err := c.Ranking.Weights.Validate(); err != nil {
		return fmt.Errorf("ranking.weights: %w", err)
	}
	if err := c.Ranking.Curves.Validate(); err != nil {
		return fmt.Errorf("ranking.curves: %w", err)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0,1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// Service returns the ranking service settings.
func (r RankingConfig) Service() ranking.Config {
	return ranking.Config{
		VectorTopK:     r.VectorTopK,
		ChannelTimeout: time.Duration(r.ChannelTimeoutMs) * time.Millisecond,
		RequestTimeout: time.Duration(r.RequestTimeoutMs) * time.Millisecond,
		Weights:        *r.Weights,
		Curves:         *r.Curves,
	}
}

// ProfileCacheTTL returns the profile cache lifetime.
func (r RankingConfig) ProfileCacheTTL() time.Duration {
	return time.Duration(r.ProfileCacheTTLSec) * time.Second
}

func keyHint(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4]
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
