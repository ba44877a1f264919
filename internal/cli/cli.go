package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/buildinfo"
	"github.com/matzehuels/blockscape/pkg/cache"
	"github.com/matzehuels/blockscape/pkg/config"
	"github.com/matzehuels/blockscape/pkg/observability"
	"github.com/matzehuels/blockscape/pkg/panel"
	"github.com/matzehuels/blockscape/pkg/provider"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "blockscape"

	// demoSeed seeds the demo provider so every run shows the same clusters.
	demoSeed = 42
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

	configPath string
	bindings   []binding
}

// binding ties a command-line flag to a config key.
type binding struct {
	key  config.Key
	flag string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also installs the
// logging observability hooks.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetFetchHooks(h)
		observability.SetCacheHooks(h)
		observability.SetHTTPHooks(h)
		observability.SetFrameHooks(h)
	}
}

// =============================================================================
// Configuration
// =============================================================================

// bind records that flag overrides key when the user sets it.
func (c *CLI) bind(key config.Key, flag string) {
	c.bindings = append(c.bindings, binding{key: key, flag: flag})
}

// resolveConfig merges defaults, the config file, the environment and the
// flags the user set on cmd.
func (c *CLI) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[config.Key]string)
	names := make(map[config.Key]string)
	for _, b := range c.bindings {
		f := cmd.Flags().Lookup(b.flag)
		if f != nil && f.Changed {
			flags[b.key] = f.Value.String()
			names[b.key] = b.flag
		}
	}
	return config.Resolve(config.Options{Path: c.configPath, Flags: flags, FlagNames: names})
}

// =============================================================================
// Provider & Cache Factory
// =============================================================================

// newProvider builds the configured data source. The returned close function
// releases its connections and caches.
func (c *CLI) newProvider(ctx context.Context, cfg *config.Config, refresh bool) (provider.Provider, func() error, error) {
	noop := func() error { return nil }

	switch kind := cfg.String(config.ProviderKind); kind {
	case config.ProviderDemo:
		return provider.NewDemo(demoSeed), noop, nil

	case config.ProviderHTTP:
		ttl, err := cfg.Duration(config.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		cc, keyer, err := c.newCache(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		client, err := provider.NewHTTPClient(cfg.String(config.ProviderURL),
			provider.WithCache(cc, ttl),
			provider.WithKeyer(keyer),
			provider.WithRefresh(refresh),
			provider.WithLogger(c.Logger),
			provider.WithHeader("User-Agent", buildinfo.UserAgent()),
		)
		if err != nil {
			cc.Close()
			return nil, nil, err
		}
		return client, cc.Close, nil

	case config.ProviderMongo:
		m, err := provider.NewMongoProvider(ctx,
			cfg.String(config.MongoURI),
			cfg.String(config.MongoDatabase),
			cfg.String(config.MongoCollection))
		if err != nil {
			return nil, nil, err
		}
		return m, func() error { return m.Close(context.Background()) }, nil

	case config.ProviderSQLite:
		s, err := provider.OpenStore(cfg.String(config.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q", kind)
	}
}

// newCache opens the configured response cache and the keyer to use with it.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, cache.Keyer, error) {
	prefix := cfg.String(config.CachePrefix)

	switch cfg.String(config.CacheBackend) {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.String(config.CacheRedisURL), prefix)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewDefaultKeyer(), nil
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.String(config.CacheDir))
		if err != nil {
			c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache(), cache.NewDefaultKeyer(), nil
		}
		return fc, cache.NewScopedKeyer(nil, prefix), nil
	default:
		return cache.NewNullCache(), cache.NewDefaultKeyer(), nil
	}
}

// panelOptions returns the panel options derived from the view settings.
func (c *CLI) panelOptions(cfg *config.Config) ([]panel.Option, error) {
	w, err := cfg.Int(config.CanvasWidth)
	if err != nil {
		return nil, err
	}
	h, err := cfg.Int(config.CanvasHeight)
	if err != nil {
		return nil, err
	}
	interval, err := cfg.Duration(config.AutoplayInterval)
	if err != nil {
		return nil, err
	}
	return []panel.Option{
		panel.WithLogger(c.Logger),
		panel.WithCanvas(float64(w), float64(h)),
		panel.WithAutoplayInterval(interval),
	}, nil
}

// loadPanel starts a panel on p, fetches start..end and waits for the result.
// The panel stops when ctx is cancelled.
func loadPanel(ctx context.Context, p provider.Provider, start, end int, opts ...panel.Option) (*panel.Panel, error) {
	pn := panel.New(p, opts...)
	go pn.Run(ctx)

	if err := pn.FetchWait(ctx, start, end); err != nil {
		return nil, err
	}
	return pn, nil
}

// fetchTimeout bounds one-shot commands that wait for a fetch.
const fetchTimeout = 2 * time.Minute
