// Package ui renders trayd's terminal output: telemetry tables, progress
// bars and sparklines styled with Lip Gloss.
//
// Colors are ANSI codes so output follows the terminal theme. Call
// DisableColors when stdout is not a terminal.
package ui
