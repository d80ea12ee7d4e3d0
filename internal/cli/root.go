// Package cli wires the minelaunch command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
	"github.com/TheDevelo/minelaunch/internal/cli/config"
	"github.com/TheDevelo/minelaunch/internal/cli/game"
	"github.com/TheDevelo/minelaunch/internal/cli/runtime"
	"github.com/TheDevelo/minelaunch/internal/cli/versions"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// EnvPrefix prefixes environment variables overriding config keys, e.g.
// MINELAUNCH_PROFILE_USERNAME for profile.username.
const EnvPrefix = "MINELAUNCH"

// Global logger
var logger *slog.Logger

// overrides maps each config key to the field it sets.
var overrides = map[string]func(cfg *state.Config, v *viper.Viper, key string){
	"install.directory":     func(c *state.Config, v *viper.Viper, k string) { c.Install.Directory = v.GetString(k) },
	"install.concurrency":   func(c *state.Config, v *viper.Viper, k string) { c.Install.Concurrency = v.GetInt(k) },
	"install.manifest_url":  func(c *state.Config, v *viper.Viper, k string) { c.Install.ManifestURL = v.GetString(k) },
	"install.resources_url": func(c *state.Config, v *viper.Viper, k string) { c.Install.ResourcesURL = v.GetString(k) },
	"install.runtime_url":   func(c *state.Config, v *viper.Viper, k string) { c.Install.RuntimeURL = v.GetString(k) },
	"launcher.name":         func(c *state.Config, v *viper.Viper, k string) { c.Launcher.Name = v.GetString(k) },
	"launcher.version":      func(c *state.Config, v *viper.Viper, k string) { c.Launcher.Version = v.GetString(k) },
	"profile.username":      func(c *state.Config, v *viper.Viper, k string) { c.Profile.Username = v.GetString(k) },
	"profile.memory":        func(c *state.Config, v *viper.Viper, k string) { c.Profile.Memory = v.GetString(k) },
	"profile.online_uuid":   func(c *state.Config, v *viper.Viper, k string) { c.Profile.OnlineUUID = v.GetBool(k) },
	"logging.level":         func(c *state.Config, v *viper.Viper, k string) { c.Logging.Level = v.GetString(k) },
}

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	opts := &cmdutil.Options{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "minelaunch",
		Short: "Install and launch Minecraft Java Edition",
		Long: `minelaunch is a command line launcher for Minecraft Java Edition.

It provides a simple interface for:
  - Listing versions from the official version manifest
  - Installing versions with their libraries, natives and assets
  - Provisioning the Java runtime each version needs
  - Launching the game in offline mode

Every download is verified against its published SHA-1, so repeated runs
only fetch what is missing or damaged.`,
		Example: `  # List recent releases
  minelaunch versions

  # Launch a version, installing it first
  minelaunch launch 1.16.5 --username Steve

  # Install into a custom directory without launching
  minelaunch install latest-release --dir ~/games/minecraft

  # Show the effective configuration
  minelaunch config show`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initLogger(cmd.ErrOrStderr(), opts, "")

			if err := initConfig(cmd.Context(), cmd, v, opts); err != nil {
				logger.Error("failed to initialize config", "error", err)
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			initLogger(cmd.ErrOrStderr(), opts, opts.Config.Logging.Level)
			return nil
		},
	}

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: $XDG_CONFIG_HOME/minelaunch/config.yaml)")
	flags.BoolVar(&opts.JSON, "json", false, "output in JSON format")
	flags.BoolVar(&opts.Quiet, "quiet", false, "suppress non-essential output")
	flags.BoolVar(&opts.Verbose, "verbose", false, "enable verbose logging")
	flags.StringVar(&opts.Dir, "dir", "", "install directory (overrides install.directory)")
	flags.StringVarP(&opts.Username, "username", "u", "", "player name (overrides profile.username)")

	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	_ = v.BindPFlag("install.directory", flags.Lookup("dir"))
	_ = v.BindPFlag("profile.username", flags.Lookup("username"))

	rootCmd.AddCommand(NewVersionCommand(opts, version, commit, date, builtBy))
	rootCmd.AddCommand(game.NewLaunchCommand(opts))
	rootCmd.AddCommand(game.NewInstallCommand(opts))
	rootCmd.AddCommand(versions.NewCommand(opts))
	rootCmd.AddCommand(runtime.NewCommand(opts))
	rootCmd.AddCommand(config.NewCommand(opts))

	return rootCmd
}

// initLogger initializes the global logger. Flags win over the configured
// level.
func initLogger(out io.Writer, opts *cmdutil.Options, configured string) {
	var level slog.Level

	switch {
	case opts.Quiet:
		level = slog.LevelError
	case opts.Verbose:
		level = slog.LevelDebug
	default:
		level = parseLevel(configured)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initConfig loads the config file and applies MINELAUNCH_* environment
// variables and flags on top of it.
func initConfig(ctx context.Context, cmd *cobra.Command, v *viper.Viper, opts *cmdutil.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.ConfigFile
	if path == "" {
		var err error
		if path, err = state.GetConfigPath(); err != nil {
			return err
		}
	}

	cfg, err := state.LoadConfigFile(ctx, path)
	if err != nil {
		return err
	}
	logger.Debug("using config file", "path", path, "command", cmd.Name())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, set := range overrides {
		if v.IsSet(key) {
			set(cfg, v, key)
		}
	}

	if err := state.ValidateConfig(cfg); err != nil {
		return err
	}

	opts.Config = cfg
	opts.ConfigPath = path
	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}

// ExitCode reports err on w and returns the process exit status for it.
// A game that exited non-zero passes its own status through silently.
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
