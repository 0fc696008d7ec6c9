package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscope/pkg/errors"
)

// chdir moves into dir for the duration of the test so Load does not pick
// up a depscope.toml or .env from the repository.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   errors.Code
	}{
		{"zero chunk size", func(c *Config) { c.Parser.ChunkSize = 0 }, errors.ErrCodeInvalidChunkSize},
		{"negative chunk size", func(c *Config) { c.Parser.ChunkSize = -5 }, errors.ErrCodeInvalidChunkSize},
		{"unknown policy", func(c *Config) { c.Parser.Policy = "sometimes" }, errors.ErrCodeInvalidConfig},
		{"zero indent", func(c *Config) { c.Parser.IndentWidth = 0 }, errors.ErrCodeInvalidConfig},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }, errors.ErrCodeInvalidConfig},
		{"no sessions", func(c *Config) { c.Store.Sessions = 0 }, errors.ErrCodeInvalidConfig},
		{"no autocomplete", func(c *Config) { c.Server.AutocompleteLimit = 0 }, errors.ErrCodeInvalidConfig},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoad_NoFile(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.Parser.ChunkSize)
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.toml")
	content := `
[parser]
chunk_size = 250
policy = "titles"

[store]
backend = "file"
ttl = "2h"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.ChunkSize != 250 || cfg.Parser.Policy != "titles" {
		t.Errorf("Parser = %+v", cfg.Parser)
	}
	if cfg.Store.Backend != BackendFile || cfg.Store.TTL.Duration != 2*time.Hour {
		t.Errorf("Store = %+v", cfg.Store)
	}
	// Untouched sections keep defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[parser\nchunk_size = "), 0o644)
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(bad) = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	os.WriteFile(filepath.Join(dir, DefaultFile), []byte("[parser]\nchunk_size = 250\n"), 0o644)

	t.Setenv("DEPSCOPE_PARSER_CHUNK_SIZE", "42")
	t.Setenv("DEPSCOPE_SERVER_ALLOWED_ORIGINS", "http://a,http://b")
	t.Setenv("DEPSCOPE_STORE_TTL", "90m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.ChunkSize != 42 {
		t.Errorf("ChunkSize = %d, want 42", cfg.Parser.ChunkSize)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Store.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cfg.Store.TTL)
	}
}

func TestLoad_EnvInvalidChunkSize(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEPSCOPE_PARSER_CHUNK_SIZE", "0")
	if _, err := Load(""); !errors.Is(err, errors.ErrCodeInvalidChunkSize) {
		t.Errorf("Load() = %v, want INVALID_CHUNK_SIZE", err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("DEPSCOPE_LOG_LEVEL=debug\n"), 0o644)
	t.Cleanup(func() { os.Unsetenv("DEPSCOPE_LOG_LEVEL") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "depscope.toml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Error("WriteDefault() over existing file without force returned nil")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault(force) error: %v", err)
	}

	chdir(t, dir)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written) error: %v", err)
	}
	if cfg.Server.RenderTimeout.Duration != Default().Server.RenderTimeout.Duration {
		t.Errorf("RenderTimeout round trip = %v", cfg.Server.RenderTimeout)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Parser.ChunkSize = 7
	opts := cfg.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.ChunkSize != 7 {
		t.Errorf("ChunkSize = %d, want 7", opts.ChunkSize)
	}
}
