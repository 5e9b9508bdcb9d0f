// Package flightrecorder keeps a rolling execution trace of the running command and writes it out when the command
// turns out slow or fails.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"time"

	"github.com/myrjola/coachstats/internal/errors"
)

const (
	defaultMinAge   = 30 * time.Second
	defaultMaxBytes = 16 * 1024 * 1024 // 16MB
)

// Config configures the Recorder.
type Config struct {
	Logger *slog.Logger
	// Directory receives the trace files. It is created when missing.
	Directory string
	// MinAge and MaxBytes bound the buffered trace. Zero selects the defaults.
	MinAge   time.Duration
	MaxBytes uint64
}

// Recorder buffers the execution trace in memory.
type Recorder struct {
	logger    *slog.Logger
	recorder  *trace.FlightRecorder
	directory string
}

// New creates a Recorder. Only one Recorder may run in a process at a time.
func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Directory == "" {
		return nil, errors.New("trace directory is required")
	}
	if err := os.MkdirAll(cfg.Directory, 0o750); err != nil { //nolint:mnd // owner and group
		return nil, errors.Wrap(err, "create trace directory", slog.String("dir", cfg.Directory))
	}

	minAge := cfg.MinAge
	if minAge == 0 {
		minAge = defaultMinAge
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}

	return &Recorder{
		logger:    cfg.Logger,
		recorder:  trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: minAge, MaxBytes: maxBytes}),
		directory: cfg.Directory,
	}, nil
}

// Start begins buffering.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "flight recorder started", slog.String("dir", r.directory))
	return nil
}

// Stop ends buffering and discards the buffer.
func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelDebug, "flight recorder stopped")
}

// Capture writes the buffered trace to a file named after reason and the current time and returns its path.
func (r *Recorder) Capture(ctx context.Context, reason string) (_ string, err error) {
	name := fmt.Sprintf("%s-%s.trace", reason, time.Now().UTC().Format("20060102-150405.000"))
	path := filepath.Join(r.directory, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "close trace file", slog.String("file", path))
		}
	}()

	n, err := r.recorder.WriteTo(f)
	if err != nil {
		return "", errors.Wrap(err, "write trace", slog.String("file", path))
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		slog.String("reason", reason), slog.String("file", path), slog.Int64("bytes", n))
	return path, nil
}
