package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the record encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// UnmarshalText parses a format name case-insensitively.
func (f *Format) UnmarshalText(text []byte) error {
	switch Format(strings.ToLower(string(text))) {
	case FormatText:
		*f = FormatText
	case FormatJSON:
		*f = FormatJSON
	default:
		return fmt.Errorf("unknown log format %q", text)
	}
	return nil
}

// New creates a logger writing records of at least level to w through a [ContextHandler].
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(NewContextHandler(handler))
}
