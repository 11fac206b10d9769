package logs

import (
	"io"
	"log/slog"
	"os"
)

type Writer io.Writer

func (Module) Writer() Writer {
	return os.Stderr
}

var discard = slog.New(slog.DiscardHandler)

// Discard returns a logger that drops every record.
func Discard() Logger {
	return discard
}
