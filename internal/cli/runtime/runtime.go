// Package runtime implements the runtime command group.
package runtime

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheDevelo/minelaunch/internal/cli/cmdutil"
	"github.com/TheDevelo/minelaunch/internal/jre"
)

// NewCommand creates the runtime command group
func NewCommand(opts *cmdutil.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Manage Java runtimes",
		Long: `Inspect the Java runtimes provisioned into the install directory.

Runtimes are downloaded from Adoptium the first time a version needs them
and live in runtime/java<major>-<os>-<arch>/.`,
		Example: `  # List installed runtimes
  minelaunch runtime list`,
		Aliases: []string{"java", "jre"},
	}

	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// NewListCommand creates the runtime list subcommand
func NewListCommand(opts *cmdutil.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List installed Java runtimes",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), opts)
		},
	}
}

func runList(stdout io.Writer, opts *cmdutil.Options) error {
	p, err := opts.HostPlatform()
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}

	layout, err := opts.Layout()
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}

	runtimes, err := opts.Provisioner(layout, opts.Fetcher(), p).Installed()
	if err != nil {
		return cmdutil.WriteError(stdout, opts.JSON, err)
	}
	if runtimes == nil {
		runtimes = []jre.Runtime{}
	}

	if opts.JSON {
		return cmdutil.WriteJSON(stdout, map[string]interface{}{
			"runtimes": runtimes,
			"count":    len(runtimes),
		})
	}

	if len(runtimes) == 0 {
		_, _ = fmt.Fprintln(stdout, "No runtimes installed. They are provisioned by 'minelaunch install <version>'")
		return nil
	}

	nameWidth := len("NAME")
	for _, rt := range runtimes {
		if len(rt.Name) > nameWidth {
			nameWidth = len(rt.Name)
		}
	}

	_, _ = fmt.Fprintf(stdout, "%-*s  %5s  %s\n", nameWidth, "NAME", "MAJOR", "VERSION")
	for _, rt := range runtimes {
		version := rt.Version
		if version == "" {
			version = "-"
		}
		_, _ = fmt.Fprintf(stdout, "%-*s  %5d  %s\n", nameWidth, rt.Name, rt.Major, version)
	}

	return nil
}
