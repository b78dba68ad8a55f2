// Package util holds small string helpers shared by the CLI, the bridge
// and the launcher.
package util

import "strings"

// ShellQuote wraps s in single quotes so /bin/sh treats it literally.
func ShellQuote(s string) string {
	// ' becomes '\'' (close, escaped quote, reopen)
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
