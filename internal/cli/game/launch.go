package game

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// LaunchFlags holds all flags for the launch command
type LaunchFlags struct {
	Memory string
}

// LaunchResult is the JSON output of the launch command.
type LaunchResult struct {
	Version  string `json:"version"`
	Username string `json:"username"`
	ExitCode int    `json:"exit_code"`
}

// NewLaunchCommand creates the launch command
func NewLaunchCommand(opts *cmdutil.Options) *cobra.Command {
	flags := &LaunchFlags{}

	cmd := &cobra.Command{
		Use:   "launch <version>",
		Short: "Install and launch a Minecraft version",
		Long: `Launch a Minecraft Java Edition version, installing whatever is missing first.

The version spec, client jar, libraries, assets and the Java runtime the
version needs are downloaded and verified into the install directory. The
game then runs in the foreground and its exit status becomes the exit
status of this command.

Use latest-release or latest-snapshot to launch the newest version.`,
		Example: `  # Launch a release
  minelaunch launch 1.16.5

  # Launch the newest release as a named player
  minelaunch launch latest-release --username Steve

  # Launch with a 4 GiB heap
  minelaunch launch 1.20.4 --memory 4G`,
		Aliases: []string{"play", "run"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), cmd.OutOrStdout(), opts, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.Memory, "memory", "", "Maximum heap size, e.g. 2G (overrides profile.memory)")

	return cmd
}

func runLaunch(ctx context.Context, stdout io.Writer, opts *cmdutil.Options, versionID string, flags *LaunchFlags) error {
	if flags.Memory != "" {
		if err := state.ValidateMemory(flags.Memory); err != nil {
			return cmdutil.WriteError(stdout, opts.JSON, fmt.Errorf("invalid --memory: %w", err))
		}
	}

	launcher, _, err := opts.Launcher(flags.Memory)
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}

	environment := NewEnvironment(ctx, opts.Config, opts.IdentityClient())
	username, _ := environment.Get("auth_player_name")

	code, err := launcher.Launch(ctx, versionID, environment)
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, fmt.Errorf("launch %s: %w", versionID, err))
	}

	if opts.JSON {
		if err := cmdutil.WriteJSON(stdout, LaunchResult{Version: versionID, Username: username, ExitCode: code}); err != nil {
			return err
		}
	}

	if code != 0 {
		return &cmdutil.ExitError{Code: code}
	}
	return nil
}
