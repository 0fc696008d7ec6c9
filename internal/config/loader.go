package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/matzehuels/depscope/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEPSCOPE"

// Load builds the configuration from defaults, the TOML file at path, a
// .env file and DEPSCOPE_* variables, then validates it.
//
// An empty path looks for DefaultFile and tolerates its absence; an
// explicit path that does not exist is a FILE_NOT_FOUND error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	if err := loadDotEnv(""); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			}
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return nil
}

// loadDotEnv loads KEY=value pairs from dir/.env into the process
// environment without overriding variables that are already set.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return nil
}

// envKeys lists every key that may be overridden from the environment.
var envKeys = []string{
	"parser.chunk_size",
	"parser.policy",
	"parser.indent_width",
	"parser.configuration",
	"server.addr",
	"server.allowed_origins",
	"server.max_upload_bytes",
	"server.autocomplete_limit",
	"server.render_timeout",
	"store.backend",
	"store.dir",
	"store.sessions",
	"store.ttl",
	"store.redis_addr",
	"store.redis_password",
	"store.redis_db",
	"store.mongo_uri",
	"store.mongo_database",
	"cache.enabled",
	"cache.dir",
	"log.level",
}

func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	// DEPSCOPE_PARSER_CHUNK_SIZE -> parser.chunk_size
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "bind %s", key)
		}
	}

	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v.IsSet(key) {
			dst.Duration = v.GetDuration(key)
		}
	}

	setInt("parser.chunk_size", &cfg.Parser.ChunkSize)
	setString("parser.policy", &cfg.Parser.Policy)
	setInt("parser.indent_width", &cfg.Parser.IndentWidth)
	setString("parser.configuration", &cfg.Parser.Configuration)

	setString("server.addr", &cfg.Server.Addr)
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = strings.Split(v.GetString("server.allowed_origins"), ",")
	}
	if v.IsSet("server.max_upload_bytes") {
		cfg.Server.MaxUploadBytes = v.GetInt64("server.max_upload_bytes")
	}
	setInt("server.autocomplete_limit", &cfg.Server.AutocompleteLimit)
	setDuration("server.render_timeout", &cfg.Server.RenderTimeout)

	setString("store.backend", &cfg.Store.Backend)
	setString("store.dir", &cfg.Store.Dir)
	setInt("store.sessions", &cfg.Store.Sessions)
	setDuration("store.ttl", &cfg.Store.TTL)
	setString("store.redis_addr", &cfg.Store.RedisAddr)
	setString("store.redis_password", &cfg.Store.RedisPassword)
	setInt("store.redis_db", &cfg.Store.RedisDB)
	setString("store.mongo_uri", &cfg.Store.MongoURI)
	setString("store.mongo_database", &cfg.Store.MongoDatabase)

	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	setString("cache.dir", &cfg.Cache.Dir)
	setString("log.level", &cfg.Log.Level)
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
	}
	data, err := Encode(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
