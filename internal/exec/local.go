// Package exec runs the external tools telemetry shells out to (ps, lsof,
// nettop, ss, top, ioreg, route, ifconfig, networksetup).
package exec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/trayd/trayd/internal/errors"
)

// Runner runs one external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Local runs commands on this machine.
type Local struct {
	// Timeout bounds each command. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Run executes name with args and captures stdout. A command that ran but
// exited non-zero is not an error: several of the tools used report
// partial results that way. Failing to start the command, a command the
// shell could not find, or running past the timeout, is.
func (l Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	command := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	runErr := command.Run()
	if ctx.Err() != nil {
		return stdout.String(), errors.WrapWithCode(ctx.Err(), errors.ErrUnavailable,
			"Command did not finish: "+name,
			"Raise telemetry.command_timeout if this machine is slow")
	}

	exitCode := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return "", errors.WrapWithCode(runErr, errors.ErrUnavailable,
				"Couldn't run "+name,
				"Make sure the command exists and is executable.")
		}
		exitCode = exitErr.ExitCode()
	}
	if missing, ok := IsCommandNotFound(stdout.String(), stderr.String(), exitCode); ok {
		return "", notFoundError(missing, CommandLine(name, args...))
	}
	return stdout.String(), nil
}

// Shell runs script through /bin/sh, for pipelines.
func Shell(ctx context.Context, r Runner, script string) (string, error) {
	return r.Run(ctx, "/bin/sh", "-c", script)
}

// CommandLine joins a command and its arguments with single spaces.
func CommandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
