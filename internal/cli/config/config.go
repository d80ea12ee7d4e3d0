// Package config implements the config command group.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// NewCommand creates the config command group
func NewCommand(opts *cmdutil.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View minelaunch configuration settings.

Configuration is stored in $XDG_CONFIG_HOME/minelaunch/config.yaml by
default. Every key can be overridden with a MINELAUNCH_ environment
variable, e.g. MINELAUNCH_PROFILE_USERNAME or MINELAUNCH_INSTALL_DIRECTORY.`,
		Example: `  # View the effective configuration
  minelaunch config show

  # Show configuration file path
  minelaunch config path`,
		Aliases: []string{"cfg"},
	}

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewPathCommand(opts))

	return cmd
}

// NewShowCommand creates the config show subcommand
func NewShowCommand(opts *cmdutil.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the configuration after environment and flag overrides are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.OutOrStdout(), opts)
		},
	}
}

// NewPathCommand creates the config path subcommand
func NewPathCommand(opts *cmdutil.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd.OutOrStdout(), opts)
		},
	}
}

func runShow(stdout io.Writer, opts *cmdutil.Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = state.DefaultConfig()
	}

	if opts.JSON {
		return cmdutil.WriteJSON(stdout, cfg)
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func runPath(stdout io.Writer, opts *cmdutil.Options) error {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = state.GetConfigPath(); err != nil {
			return cmdutil.WriteError(stdout, opts.JSON, err)
		}
	}

	if opts.JSON {
		return cmdutil.WriteJSON(stdout, map[string]string{"path": path})
	}

	_, _ = fmt.Fprintln(stdout, path)
	return nil
}
