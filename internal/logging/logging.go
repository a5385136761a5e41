// Package logging configures the process-wide logger.
//
// Everything is written to stderr: the MCP transport owns stdout, and any
// stray byte there corrupts the JSON-RPC stream.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger for the named component, writing to stderr.
func New(component string) zerolog.Logger {
	return NewWithWriter(component, os.Stderr)
}

// NewWithWriter returns a component logger writing to w. Used by tests
// to capture output.
func NewWithWriter(component string, w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().
		Timestamp().
		Str("component", component).
		Logger()
}

// Nop returns a logger that discards everything. Handy as a default for
// packages that accept an optional logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
