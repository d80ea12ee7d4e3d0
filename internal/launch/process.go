package launch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Process is one runtime invocation.
type Process struct {
	Java string
	Args []string
	// Dir is the working directory, the install root.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts the process and waits for it. A process that runs and exits,
// crashing or not, reports its exit code with a nil error; only a failure
// to start is an error.
func (p *Process) Run() (int, error) {
	//nolint:gosec // G204: java is the provisioned runtime, args come from the version spec
	cmd := exec.Command(p.Java, p.Args...)
	cmd.Dir = p.Dir
	cmd.Stdin = p.Stdin
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	slog.Debug("starting runtime",
		"java", p.Java,
		"dir", p.Dir,
		"args", strings.Join(p.Args, " "))

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("wait for runtime: %w", err)
	}

	return 0, nil
}
