// Package cli implements the trayd command line: the daemon (serve), one-shot
// telemetry queries (stats, top), the live dashboard (watch), a bridge
// client (call) and housekeeping commands.
package cli
