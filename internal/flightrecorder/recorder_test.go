package flightrecorder_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/coachstats/internal/flightrecorder"
	"github.com/myrjola/coachstats/internal/testhelpers"
)

// Not parallel: a process runs at most one flight recorder.
func TestRecorder_Capture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traces")
	ctx := t.Context()

	r, err := flightrecorder.New(flightrecorder.Config{
		Logger:    testhelpers.NewLogger(testhelpers.NewWriter(t)),
		Directory: dir,
		MinAge:    0,
		MaxBytes:  0,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err = r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop(ctx)

	path, err := r.Capture(ctx, "slow")
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "slow-") {
		t.Errorf("Capture() path = %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat trace: %v", err)
	}
	if info.Size() == 0 {
		t.Error("trace file is empty")
	}
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	tests := []struct {
		name string
		cfg  flightrecorder.Config
	}{
		{name: "no logger", cfg: flightrecorder.Config{Logger: nil, Directory: t.TempDir(), MinAge: 0, MaxBytes: 0}},
		{name: "no directory", cfg: flightrecorder.Config{Logger: logger, Directory: "", MinAge: 0, MaxBytes: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := flightrecorder.New(tt.cfg); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}
