package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/config"
	"github.com/matzehuels/blockscape/pkg/server"
	"github.com/matzehuels/blockscape/pkg/session"
)

// janitorInterval is how often expired sessions are swept.
const janitorInterval = time.Minute

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the visualization HTTP API",
		Long: `Serve the visualization HTTP API.

Each client creates a session that owns one visualization panel, drives it
with JSON requests and polls rendered frames:

  curl -X POST localhost:8080/api/sessions
  curl -X POST localhost:8080/api/sessions/ID/fetch -d '{"start":100,"end":120,"wait":true}'
  curl localhost:8080/api/sessions/ID/frame.png > frame.png

Sessions expire after --session-ttl without requests. With the http
provider, --cache redis shares fetched ranges between server replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("session-ttl", "", "idle session lifetime (default 30m)")
	cmd.Flags().String("redis-url", "", "Redis URL for --cache redis")
	c.bind(config.ServerAddr, "addr")
	c.bind(config.SessionTTL, "session-ttl")
	c.bind(config.CacheRedisURL, "redis-url")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}
	ttl, err := cfg.Duration(config.SessionTTL)
	if err != nil {
		return err
	}
	popts, err := c.panelOptions(cfg)
	if err != nil {
		return err
	}

	prov, closeProv, err := c.newProvider(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeProv()

	reg := session.NewRegistry(ttl)
	defer reg.Close()
	go reg.RunJanitor(ctx, janitorInterval)

	srv := server.New(prov, reg,
		server.WithLogger(c.Logger),
		server.WithContext(ctx),
		server.WithPanelOptions(popts...),
	)

	addr := cfg.String(config.ServerAddr)
	c.Logger.Info("serving", "addr", addr, "provider", prov.Name(), "session_ttl", ttl)
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}
