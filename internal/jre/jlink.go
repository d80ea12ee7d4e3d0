package jre

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/TheDevelo/minelaunch/internal/platform"
)

// jlinkArgs trims the JDK down to a runtime image holding every module.
var jlinkArgs = []string{
	"--add-modules", "ALL-MODULE-PATH",
	"--strip-debug",
	"--no-man-pages",
	"--no-header-files",
	"--compress=2",
}

// jlinkPath returns the jlink executable inside an unpacked JDK.
func (p *Provisioner) jlinkPath(top string) string {
	jlink := p.platform.Executable("jlink")
	if p.platform.OS == platform.MacOS {
		return filepath.Join(top, "Contents", "Home", "bin", jlink)
	}
	return filepath.Join(top, "bin", jlink)
}

// link builds a runtime image at output from the JDK unpacked at top.
func (p *Provisioner) link(ctx context.Context, top, output string) error {
	jlink := p.jlinkPath(top)
	args := append([]string{"--output", output}, jlinkArgs...)

	slog.Debug("running jlink", "path", jlink, "args", strings.Join(args, " "))

	//nolint:gosec // G204: jlink comes from the runtime archive we just unpacked
	cmd := exec.CommandContext(ctx, jlink, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %v: %s", ErrLink, err, strings.TrimSpace(string(out)))
	}

	slog.Debug("jlink finished", "output", output)
	return nil
}
