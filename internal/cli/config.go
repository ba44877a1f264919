package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/config"
	"github.com/matzehuels/blockscape/pkg/errors"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
		Long: `Show or create the configuration.

Every setting is resolved from, in increasing precedence: built-in defaults,
the config file (TOML or YAML), BLOCKSCAPE_* environment variables and
command-line flags. "config show" prints each value with where it came from.`,
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			file := cfg.Path
			if !cfg.Loaded {
				file += " (not found)"
			}
			fmt.Fprintln(out, StyleTitle.Render("Config")+" "+StyleDim.Render(file))

			rows := make([][3]string, 0, len(config.Keys()))
			for _, k := range config.Keys() {
				v := cfg.Get(k)
				source := string(v.Source)
				if v.From != "" {
					source += " " + v.From
				}
				rows = append(rows, [3]string{string(k), v.Value, source})
			}
			writeKeyValues(out, rows)
			return nil
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if c.configPath != "" {
				path = c.configPath
			}
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.Example()), 0o644); err != nil {
				return err
			}
			printSuccess("Wrote config")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
