package game

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
)

// InstallResult is the JSON output of the install command.
type InstallResult struct {
	Version   string `json:"version"`
	Directory string `json:"directory"`
}

// NewInstallCommand creates the install command
func NewInstallCommand(opts *cmdutil.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <version>",
		Short: "Download a Minecraft version without launching it",
		Long: `Download and verify everything a version needs to run: its spec, client
jar, libraries, native bundles, assets and Java runtime.

Files that already exist and match their published SHA-1 are kept.`,
		Example: `  # Install a release
  minelaunch install 1.16.5

  # Install the newest snapshot into another directory
  minelaunch install latest-snapshot --dir /srv/minecraft`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	return cmd
}

func runInstall(ctx context.Context, stdout io.Writer, opts *cmdutil.Options, versionID string) error {
	launcher, layout, err := opts.Launcher("")
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}

	if err := launcher.Install(ctx, versionID); err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, fmt.Errorf("install %s: %w", versionID, err))
	}

	if opts.JSON {
		return cmdutil.WriteJSON(stdout, InstallResult{Version: versionID, Directory: layout.Root})
	}

	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Installed %s into %s\n", versionID, layout.Root)
	}
	return nil
}
