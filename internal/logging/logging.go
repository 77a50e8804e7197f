// Package logging builds the prefixed console loggers used across the roster.
// In the WASM build stdout is the browser console, so every line carries the
// same "[Roster]" tag the JS side filters on.
package logging

import (
	"io"
	"log"
	"os"
)

// Prefix tags every line written by a roster logger.
const Prefix = "[Roster] "

// New returns a logger writing to w. A nil writer means stdout.
func New(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stdout
	}
	return log.New(w, Prefix, 0)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, Prefix, 0)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
