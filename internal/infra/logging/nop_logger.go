package logging

import (
	"log/slog"
)

// NewNopLogger creates a logger that discards all output without formatting it.
func NewNopLogger() Logger {
	return slog.New(slog.DiscardHandler)
}
