// Package testhelpers routes log output of code under test into the test log.
package testhelpers

import (
	"strings"
	"sync"
	"testing"
)

// Writer implements io.Writer and writes to t.Log, so logs only show up for failed or verbose tests.
// It also keeps the lines for assertions with Contains.
type Writer struct {
	t     *testing.T
	mu    sync.Mutex
	lines []string
	done  bool
}

// NewWriter creates a Writer bound to t.
func NewWriter(t *testing.T) *Writer {
	w := &Writer{t: t, mu: sync.Mutex{}, lines: nil, done: false}
	t.Cleanup(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.done = true
	})
	return w
}

// Write logs p without its trailing newline. Writing after the test has completed panics, since that means a
// goroutine outlived the test.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		panic("testwriter: write after test completion: " + string(p))
	}
	output := strings.TrimSuffix(string(p), "\n")
	if output != "" {
		w.lines = append(w.lines, output)
		w.t.Log(output)
	}
	return len(p), nil
}

// Contains reports whether any logged line contains substr.
func (w *Writer) Contains(substr string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range w.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
