package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/buildinfo"
	"github.com/matzehuels/blockscape/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Global flags override the config file and the BLOCKSCAPE_* environment:
//
//	--config    config file (default $XDG_CONFIG_HOME/blockscape/config.toml)
//	--provider  http, mongo, sqlite or demo
//	--url       base URL of the http provider
//	--cache     file, redis or none
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockscape explores clustered posts block by block",
		Long: `Blockscape fetches ranges of blocks whose posts have been embedded in two
dimensions and grouped into clusters, and lets you explore them: one block
at a time, with panning, zooming and hover details.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.String("provider", "", "data source: http, mongo, sqlite or demo")
	pf.String("url", "", "base URL of the http provider")
	pf.String("cache", "", "response cache: file, redis or none")
	c.bind(config.ProviderKind, "provider")
	c.bind(config.ProviderURL, "url")
	c.bind(config.CacheBackend, "cache")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
