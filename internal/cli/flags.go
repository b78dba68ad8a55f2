package cli

import (
	"fmt"
	"time"

	"github.com/trayd/trayd/internal/errors"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ParseInterval parses a sampling interval. Intervals below minimum are
// rejected because rates over very short windows are mostly noise.
func ParseInterval(flag string, minimum time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrInvalidArgs,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 1s, 500ms, or 2s.")
	}
	if d < minimum {
		return 0, errors.New(errors.ErrInvalidArgs,
			fmt.Sprintf("Interval %s is too short", d),
			fmt.Sprintf("Use at least %s.", minimum))
	}
	return d, nil
}

// ResolveFormat picks the output format; --json wins over --format.
func ResolveFormat(format string) (string, error) {
	if machineMode {
		return FormatJSON, nil
	}
	switch format {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return format, nil
	}
	return "", errors.New(errors.ErrInvalidArgs,
		"Unknown format: "+format,
		"Supported formats: table, json, yaml")
}
