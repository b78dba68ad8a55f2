package exec

import (
	"fmt"
	"regexp"

	"github.com/trayd/trayd/internal/errors"
)

// exitNotFound is the shell's exit status for a command it could not find.
const exitNotFound = 127

// notFoundPatterns match "command not found" messages from the shells
// pipelines run under. The first group is the command name.
var notFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)/bin/sh: (\S+): not found`),
	regexp.MustCompile(`(?i)env: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// MissingCommand extracts the name of a command the shell reported as
// missing. The name is empty when stderr says nothing recognisable.
func MissingCommand(stderr string) (string, bool) {
	for _, p := range notFoundPatterns {
		if m := p.FindStringSubmatch(stderr); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

// IsCommandNotFound reports whether a run failed because a command is
// missing: exit status 127, or empty output with a not-found message from
// the head of a pipeline (whose tail still exits 0).
func IsCommandNotFound(stdout, stderr string, exitCode int) (string, bool) {
	name, matched := MissingCommand(stderr)
	if exitCode == exitNotFound {
		return name, true
	}
	return name, matched && stdout == ""
}

func notFoundError(name, cmd string) error {
	if name == "" {
		name = cmd
	}
	return errors.New(errors.ErrUnavailable,
		fmt.Sprintf("'%s' wasn't found in PATH", name),
		"Install it, or rely on the built-in fallback for this metric")
}
