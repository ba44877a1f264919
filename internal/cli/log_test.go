package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockscape/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Fetched 3 blocks")

	out := buf.String()
	if !strings.Contains(out, "Fetched 3 blocks (") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnFetchStart(ctx, "http", 10, 12)
	h.OnFetchComplete(ctx, "http", 10, 12, 40, time.Second, nil)
	h.OnFetchComplete(ctx, "http", 10, 12, 0, time.Second, errors.New("boom"))
	h.OnBlockChange(ctx, 11, 4, time.Millisecond)
	h.OnCacheHit(ctx, "range")
	h.OnCacheMiss(ctx, "range")
	h.OnCacheSet(ctx, "range", 512)
	h.OnRequest(ctx, "GET", "api.example.com", "/blocks")
	h.OnResponse(ctx, "GET", "api.example.com", "/blocks", 200, time.Millisecond)
	h.OnError(ctx, "GET", "api.example.com", "/blocks", errors.New("reset"))

	out := buf.String()
	for _, want := range []string{
		"fetch start", "fetch done", "fetch failed", "block",
		"cache hit", "cache miss", "cache set",
		"request", "response", "request error",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSetLogLevelInstallsHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.SetLogLevel(LogDebug)

	observability.Cache().OnCacheHit(context.Background(), "range")
	if !strings.Contains(buf.String(), "cache hit") {
		t.Errorf("debug level should log cache events, got %q", buf.String())
	}
}
