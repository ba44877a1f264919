// Package config resolves blockscape settings from flags, the environment, a
// config file and built-in defaults.
//
// Precedence, highest first: command-line flag, BLOCKSCAPE_* environment
// variable, config file, default. Every resolved value records where it came
// from so "blockscape config" can explain the effective setup.
//
// The config file is TOML or YAML, chosen by extension:
//
//	[provider]
//	kind = "http"
//	url  = "https://api.example.org/blocks"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blockscape/pkg/errors"
)

// Source names where a value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceConfig  Source = "config"
	SourceEnv     Source = "env"
	SourceCLI     Source = "cli"
)

// Value is one resolved setting.
type Value struct {
	Value  string `json:"value"`
	Source Source `json:"source"`
	From   string `json:"from,omitempty"`
}

// Key identifies a setting.
type Key string

const (
	ProviderKind     Key = "provider.kind"
	ProviderURL      Key = "provider.url"
	MongoURI         Key = "provider.mongo.uri"
	MongoDatabase    Key = "provider.mongo.database"
	MongoCollection  Key = "provider.mongo.collection"
	SQLitePath       Key = "provider.sqlite.path"
	CacheBackend     Key = "cache.backend"
	CacheDir         Key = "cache.dir"
	CacheTTL         Key = "cache.ttl"
	CacheRedisURL    Key = "cache.redis_url"
	CachePrefix      Key = "cache.prefix"
	ServerAddr       Key = "server.addr"
	SessionTTL       Key = "server.session_ttl"
	CanvasWidth      Key = "view.width"
	CanvasHeight     Key = "view.height"
	AutoplayInterval Key = "view.autoplay_interval"
)

// Env returns the environment variable for k, e.g. BLOCKSCAPE_CACHE_REDIS_URL.
func (k Key) Env() string {
	return "BLOCKSCAPE_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(string(k)))
}

// Keys lists every setting in display order.
func Keys() []Key {
	return []Key{
		ProviderKind, ProviderURL, MongoURI, MongoDatabase, MongoCollection, SQLitePath,
		CacheBackend, CacheDir, CacheTTL, CacheRedisURL, CachePrefix,
		ServerAddr, SessionTTL,
		CanvasWidth, CanvasHeight, AutoplayInterval,
	}
}

// Provider kinds.
const (
	ProviderHTTP   = "http"
	ProviderMongo  = "mongo"
	ProviderSQLite = "sqlite"
	ProviderDemo   = "demo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults returns the built-in value of every setting.
func Defaults() map[Key]string {
	return map[Key]string{
		ProviderKind:     ProviderDemo,
		MongoDatabase:    "blockscape",
		MongoCollection:  "points",
		SQLitePath:       filepath.Join(DataDir(), "snapshots.db"),
		CacheBackend:     CacheFile,
		CacheDir:         filepath.Join(CacheHome(), "blockscape"),
		CacheTTL:         "24h",
		CachePrefix:      "blockscape:",
		ServerAddr:       ":8080",
		SessionTTL:       "30m",
		CanvasWidth:      "800",
		CanvasHeight:     "600",
		AutoplayInterval: "1s",
	}
}

// Options feeds command-line values into [Resolve]. Flags holds only flags the
// user actually set; FlagNames optionally names the flag each came from.
type Options struct {
	Path      string
	Flags     map[Key]string
	FlagNames map[Key]string
}

// Config is the resolved configuration.
type Config struct {
	Path   string        `json:"path"`
	Loaded bool          `json:"loaded"`
	Values map[Key]Value `json:"values"`
}

// Resolve reads the config file (a missing file is not an error) and applies
// the environment and flags on top.
func Resolve(opts Options) (*Config, error) {
	path := strings.TrimSpace(opts.Path)
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{Path: path, Values: make(map[Key]Value)}
	for k, v := range Defaults() {
		cfg.Values[k] = Value{Value: v, Source: SourceDefault}
	}

	file, err := Load(path)
	switch {
	case err == nil:
		cfg.Loaded = true
		for k, v := range file.flatten() {
			cfg.apply(k, v, SourceConfig, path)
		}
	case errors.Is(err, errors.ErrCodeNotFound) && !explicit:
	default:
		return nil, err
	}

	for _, k := range Keys() {
		cfg.apply(k, os.Getenv(k.Env()), SourceEnv, k.Env())
	}
	for k, v := range opts.Flags {
		name, ok := opts.FlagNames[k]
		if !ok {
			name = flagName(k)
		}
		cfg.apply(k, v, SourceCLI, "--"+name)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(k Key, raw string, src Source, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	c.Values[k] = Value{Value: v, Source: src, From: from}
}

// flagName is the conventional CLI flag for a key, used only for display.
func flagName(k Key) string {
	s := string(k)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, "_", "-")
}

func (c *Config) validate() error {
	kind := c.String(ProviderKind)
	if !slices.Contains([]string{ProviderHTTP, ProviderMongo, ProviderSQLite, ProviderDemo}, kind) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown provider %q", kind)
	}
	if kind == ProviderHTTP {
		if err := errors.ValidateURL(c.String(ProviderURL)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "provider.url")
		}
	}
	if kind == ProviderMongo && c.String(MongoURI) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "provider.mongo.uri is required for the mongo provider")
	}
	backend := c.String(CacheBackend)
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", backend)
	}
	if backend == CacheRedis && c.String(CacheRedisURL) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis cache")
	}
	for _, k := range []Key{CacheTTL, SessionTTL, AutoplayInterval} {
		if _, err := c.Duration(k); err != nil {
			return err
		}
	}
	for _, k := range []Key{CanvasWidth, CanvasHeight} {
		if _, err := c.Int(k); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the resolved value of k.
func (c *Config) Get(k Key) Value { return c.Values[k] }

// String returns the value of k.
func (c *Config) String(k Key) string { return c.Values[k].Value }

// Duration parses the value of k as a Go duration.
func (c *Config) Duration(k Key) (time.Duration, error) {
	d, err := time.ParseDuration(c.String(k))
	if err != nil || d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a positive duration", k, c.String(k))
	}
	return d, nil
}

// Int parses the value of k as a positive integer.
func (c *Config) Int(k Key) (int, error) {
	n, err := strconv.Atoi(c.String(k))
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a positive integer", k, c.String(k))
	}
	return n, nil
}

// File is the on-disk layout. Both TOML and YAML use the same field names.
type File struct {
	Provider struct {
		Kind  string `toml:"kind" yaml:"kind"`
		URL   string `toml:"url" yaml:"url"`
		Mongo struct {
			URI        string `toml:"uri" yaml:"uri"`
			Database   string `toml:"database" yaml:"database"`
			Collection string `toml:"collection" yaml:"collection"`
		} `toml:"mongo" yaml:"mongo"`
		SQLite struct {
			Path string `toml:"path" yaml:"path"`
		} `toml:"sqlite" yaml:"sqlite"`
	} `toml:"provider" yaml:"provider"`
	Cache struct {
		Backend  string `toml:"backend" yaml:"backend"`
		Dir      string `toml:"dir" yaml:"dir"`
		TTL      string `toml:"ttl" yaml:"ttl"`
		RedisURL string `toml:"redis_url" yaml:"redis_url"`
		Prefix   string `toml:"prefix" yaml:"prefix"`
	} `toml:"cache" yaml:"cache"`
	Server struct {
		Addr       string `toml:"addr" yaml:"addr"`
		SessionTTL string `toml:"session_ttl" yaml:"session_ttl"`
	} `toml:"server" yaml:"server"`
	View struct {
		Width            int    `toml:"width" yaml:"width"`
		Height           int    `toml:"height" yaml:"height"`
		AutoplayInterval string `toml:"autoplay_interval" yaml:"autoplay_interval"`
	} `toml:"view" yaml:"view"`
}

func (f *File) flatten() map[Key]string {
	itoa := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	return map[Key]string{
		ProviderKind:     f.Provider.Kind,
		ProviderURL:      f.Provider.URL,
		MongoURI:         f.Provider.Mongo.URI,
		MongoDatabase:    f.Provider.Mongo.Database,
		MongoCollection:  f.Provider.Mongo.Collection,
		SQLitePath:       expandUser(f.Provider.SQLite.Path),
		CacheBackend:     f.Cache.Backend,
		CacheDir:         expandUser(f.Cache.Dir),
		CacheTTL:         f.Cache.TTL,
		CacheRedisURL:    f.Cache.RedisURL,
		CachePrefix:      f.Cache.Prefix,
		ServerAddr:       f.Server.Addr,
		SessionTTL:       f.Server.SessionTTL,
		CanvasWidth:      itoa(f.View.Width),
		CanvasHeight:     itoa(f.View.Height),
		AutoplayInterval: f.View.AutoplayInterval,
	}
}

// Load parses the file at path. It fails with NOT_FOUND when the file does
// not exist and UNSUPPORTED for an unknown extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "config format %q (use .toml or .yaml)", ext)
	}
	return &f, nil
}

// DefaultPath is $XDG_CONFIG_HOME/blockscape/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "blockscape", "config.toml")
}

// CacheHome is $XDG_CACHE_HOME or ~/.cache.
func CacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache")
}

// DataDir is $XDG_DATA_HOME/blockscape or ~/.local/share/blockscape.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "blockscape")
}

// Example returns a commented starter config in TOML.
func Example() string {
	return fmt.Sprintf(`# blockscape configuration

[provider]
kind = %q          # http, mongo, sqlite or demo
# url = "https://api.example.org/blocks"

[cache]
backend = %q       # file, redis or none
ttl = %q

[server]
addr = %q

[view]
width = 800
height = 600
autoplay_interval = "1s"
`, ProviderDemo, CacheFile, "24h", ":8080")
}

func expandUser(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
