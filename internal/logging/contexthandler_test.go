package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coachstats/internal/logging"
)

func TestWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	ctx := logging.WithAttrs(t.Context(), slog.String("command", "dashboard"))
	first := logging.WithAttrs(ctx, slog.Int("trainee_id", 1))
	second := logging.WithAttrs(ctx, slog.Int("trainee_id", 2))

	logger.LogAttrs(first, slog.LevelInfo, "first")
	logger.LogAttrs(second, slog.LevelInfo, "second")
	logger.LogAttrs(ctx, slog.LevelDebug, "filtered")

	var got []map[string]any
	for line := range strings.Lines(buf.String()) {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		delete(record, "time")
		got = append(got, record)
	}
	want := []map[string]any{
		{"level": "INFO", "msg": "first", "command": "dashboard", "trainee_id": 1.0},
		{"level": "INFO", "msg": "second", "command": "dashboard", "trainee_id": 2.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_UnmarshalText(t *testing.T) {
	t.Parallel()
	var f logging.Format
	if err := f.UnmarshalText([]byte("JSON")); err != nil || f != logging.FormatJSON {
		t.Errorf("UnmarshalText(JSON) = %q, %v", f, err)
	}
	if err := f.UnmarshalText([]byte("xml")); err == nil {
		t.Error("UnmarshalText(xml) error = nil, want error")
	}
}
