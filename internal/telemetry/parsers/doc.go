// Package parsers turns the text output of system tools into typed values.
// Every parser is pure: callers run the command and pass its output in, so
// tests feed captured output directly.
package parsers
