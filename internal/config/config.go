// Package config loads depscope settings.
//
// Settings are layered, later sources winning:
//
//  1. Built-in defaults ([Default])
//  2. TOML file (depscope.toml, or the --config path)
//  3. .env file in the working directory
//  4. DEPSCOPE_* environment variables (e.g. DEPSCOPE_PARSER_CHUNK_SIZE)
//  5. Command line flags, applied by the CLI only when explicitly set
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "depscope.toml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

var backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo}

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete application configuration.
type Config struct {
	Parser ParserConfig `toml:"parser"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ParserConfig controls report parsing.
type ParserConfig struct {
	ChunkSize     int    `toml:"chunk_size"`
	Policy        string `toml:"policy"`
	IndentWidth   int    `toml:"indent_width"`
	Configuration string `toml:"configuration"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr              string   `toml:"addr"`
	AllowedOrigins    []string `toml:"allowed_origins"`
	MaxUploadBytes    int64    `toml:"max_upload_bytes"`
	AutocompleteLimit int      `toml:"autocomplete_limit"`
	RenderTimeout     Duration `toml:"render_timeout"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	Sessions int      `toml:"sessions"`
	TTL      Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig controls the parse-result cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration that reads and writes as "10m", "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			ChunkSize:     report.DefaultChunkSize,
			Policy:        pipeline.DefaultPolicy,
			IndentWidth:   report.DefaultIndentWidth,
			Configuration: report.DefaultConfiguration,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			AllowedOrigins:    []string{"http://localhost:3000"},
			MaxUploadBytes:    64 << 20,
			AutocompleteLimit: 10,
			RenderTimeout:     Duration{pipeline.DefaultRenderTimeout},
		},
		Store: StoreConfig{
			Backend:       BackendMemory,
			Sessions:      session.DefaultMemorySessions,
			TTL:           Duration{session.DefaultTTL},
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "depscope",
		},
		Cache: CacheConfig{Enabled: true},
		Log:   LogConfig{Level: "info"},
	}
}

// Validate checks the configuration. Failures are INVALID_CONFIG errors,
// except a non-positive chunk size which keeps its own code.
func (c *Config) Validate() error {
	if err := errors.ValidateChunkSize(c.Parser.ChunkSize); err != nil {
		return err
	}
	if _, err := report.ParsePolicy(c.Parser.Policy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parser.policy")
	}
	if c.Parser.IndentWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "parser.indent_width must be positive, got %d", c.Parser.IndentWidth)
	}
	if !slices.Contains(backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be one of %v, got %q", backends, c.Store.Backend)
	}
	if c.Store.Backend == BackendMemory && c.Store.Sessions <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "store.sessions must be positive, got %d", c.Store.Sessions)
	}
	if c.Server.AutocompleteLimit <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.autocomplete_limit must be positive, got %d", c.Server.AutocompleteLimit)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.RenderTimeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.render_timeout must be positive")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return errors.New(errors.ErrCodeInvalidConfig, "log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	return nil
}

// PipelineOptions converts parser settings to ingestion options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		ChunkSize:     c.Parser.ChunkSize,
		Policy:        c.Parser.Policy,
		IndentWidth:   c.Parser.IndentWidth,
		Configuration: c.Parser.Configuration,
	}
}

// LogLevel returns the configured level. Unknown names map to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c *Config) String() string {
	return fmt.Sprintf("chunk_size=%d policy=%s store=%s cache=%t",
		c.Parser.ChunkSize, c.Parser.Policy, c.Store.Backend, c.Cache.Enabled)
}
