package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/internal/config"
	"github.com/matzehuels/depscope/pkg/buildinfo"
	"github.com/matzehuels/depscope/pkg/cache"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "depscope"

	// defaultWorkers bounds concurrent report parsing in batch mode.
	defaultWorkers = pipeline.DefaultWorkers
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded in the root command's pre-run.
	Config *config.Config

	configPath string
	verbose    bool
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads configuration and applies the log level. --verbose
// always wins over the configured level.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	c.Logger.Debug("loaded config", "config", cfg.String())
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cached parse results are
// scoped to the running build.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	cc, err := c.newCache()
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache() (cache.Cache, error) {
	if c.noCache || !c.Config.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.resolvedCacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured session store.
func (c *CLI) newStore(ctx context.Context) (session.Store, error) {
	sc := c.Config.Store
	switch sc.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(sc.Sessions), nil
	case config.BackendFile:
		dir, err := c.resolvedSessionsDir()
		if err != nil {
			return nil, err
		}
		fs, err := session.NewFileStore(dir, sc.TTL.Duration)
		if err != nil {
			return nil, err
		}
		if n, err := fs.Cleanup(ctx); err != nil {
			c.Logger.Warn("session cleanup failed", "dir", dir, "error", err)
		} else if n > 0 {
			c.Logger.Debug("removed expired sessions", "count", n)
		}
		return fs, nil
	case config.BackendRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
			TTL:      sc.TTL.Duration,
		})
	case config.BackendMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{
			URI:      sc.MongoURI,
			Database: sc.MongoDatabase,
			TTL:      sc.TTL.Duration,
		})
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", sc.Backend)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseOptions returns the configured parse options with explicitly set
// flags applied on top.
func (c *CLI) parseOptions(cmd *cobra.Command, f *parseFlags) (pipeline.Options, error) {
	opts := c.Config.PipelineOptions()
	if f == nil {
		return opts, nil
	}
	if cmd.Flags().Changed("chunk-size") {
		if err := errors.ValidateChunkSize(f.chunkSize); err != nil {
			return opts, err
		}
		opts.ChunkSize = f.chunkSize
	}
	if cmd.Flags().Changed("policy") {
		opts.Policy = f.policy
	}
	opts.Refresh = f.refresh
	return opts, nil
}
