package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/blockscape/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range Keys() {
		t.Setenv(k.Env(), "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolvePrecedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[provider]
kind = "http"
url = "https://from-config.example/blocks"

[cache]
backend = "none"
ttl = "2h"

[view]
width = 1024
`)
	t.Setenv("BLOCKSCAPE_PROVIDER_URL", "https://from-env.example/blocks")
	t.Setenv("BLOCKSCAPE_CACHE_TTL", "3h")

	cfg, err := Resolve(Options{Path: path, Flags: map[Key]string{CacheTTL: "4h"}})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	tests := []struct {
		key    Key
		value  string
		source Source
	}{
		{ProviderKind, "http", SourceConfig},
		{ProviderURL, "https://from-env.example/blocks", SourceEnv},
		{CacheTTL, "4h", SourceCLI},
		{CacheBackend, "none", SourceConfig},
		{CanvasWidth, "1024", SourceConfig},
		{CanvasHeight, "600", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := cfg.Get(tt.key)
			if got.Value != tt.value || got.Source != tt.source {
				t.Errorf("%s = %q from %s, want %q from %s", tt.key, got.Value, got.Source, tt.value, tt.source)
			}
		})
	}

	if d, _ := cfg.Duration(CacheTTL); d != 4*time.Hour {
		t.Errorf("Duration(CacheTTL) = %v", d)
	}
	if got := cfg.Get(ProviderURL).From; got != "BLOCKSCAPE_PROVIDER_URL" {
		t.Errorf("env value from %q", got)
	}
}

func TestResolveYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
provider:
  kind: mongo
  mongo:
    uri: mongodb://localhost:27017
cache:
  backend: redis
  redis_url: redis://localhost:6379/0
`)
	cfg, err := Resolve(Options{Path: path})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.String(ProviderKind) != ProviderMongo || cfg.String(MongoURI) != "mongodb://localhost:27017" {
		t.Errorf("provider = %q %q", cfg.String(ProviderKind), cfg.String(MongoURI))
	}
	if cfg.String(MongoCollection) != "points" {
		t.Errorf("collection default lost: %q", cfg.String(MongoCollection))
	}
	if !cfg.Loaded {
		t.Error("Loaded = false")
	}
}

func TestResolveMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Resolve(Options{})
	if err != nil {
		t.Fatalf("missing default config should fall back to defaults: %v", err)
	}
	if cfg.Loaded || cfg.String(ProviderKind) != ProviderDemo {
		t.Errorf("cfg = %+v", cfg)
	}

	_, err = Resolve(Options{Path: filepath.Join(t.TempDir(), "nope.toml")})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("explicit missing path err = %v", err)
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []struct {
		name  string
		flags map[Key]string
		want  string
	}{
		{"unknown provider", map[Key]string{ProviderKind: "ftp"}, "unknown provider"},
		{"http without url", map[Key]string{ProviderKind: "http"}, "provider.url"},
		{"mongo without uri", map[Key]string{ProviderKind: "mongo"}, "mongo.uri"},
		{"redis without url", map[Key]string{CacheBackend: "redis"}, "redis_url"},
		{"bad duration", map[Key]string{AutoplayInterval: "soon"}, "duration"},
		{"zero width", map[Key]string{CanvasWidth: "0"}, "positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			_, err := Resolve(Options{Flags: tt.flags})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "config.ini", "x=1")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Load(.ini) err = %v", err)
	}
}

func TestExampleParses(t *testing.T) {
	path := writeFile(t, "config.toml", Example())
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load(Example()) error: %v", err)
	}
	if f.Provider.Kind != ProviderDemo || f.View.Width != 800 {
		t.Errorf("example = %+v", f)
	}
}

func TestKeyEnv(t *testing.T) {
	if got := CacheRedisURL.Env(); got != "BLOCKSCAPE_CACHE_REDIS_URL" {
		t.Errorf("Env() = %q", got)
	}
}
