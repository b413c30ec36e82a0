// Package logging builds the loggers handed to each component.
package logging

import (
	"io"
	"log"
)

// New returns a logger writing to w. Verbose loggers add microseconds and
// the calling file to each line.
func New(w io.Writer, verbose bool) *log.Logger {
	flags := log.LstdFlags
	if verbose {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	return log.New(w, "", flags)
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
