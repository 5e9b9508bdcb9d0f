// Package errors extends the standard library errors with slog annotations and call-site stack traces.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// annotatedError carries a message, optional slog attributes and the stack of the call site that created it.
type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	stack []uintptr
}

func (e *annotatedError) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a comparable error without a stack trace. Use it for package level error variables.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // this is the sentinel constructor
}

// New creates an error annotated with attrs and the caller's stack trace.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: nil, attrs: attrs, stack: callers()}
}

// Wrap annotates err with msg, attrs and the caller's stack trace. Wrapping a nil error returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{msg: msg, err: err, attrs: attrs, stack: callers()}
}

// DecoratePanic converts a recovered panic value into an error carrying the stack of the panicking goroutine.
// It returns nil when nothing was recovered.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	var err error
	if e, ok := recovered.(error); ok {
		err = fmt.Errorf("panic: %w", e)
	} else {
		err = fmt.Errorf("panic: %v", recovered) //nolint:err113 // dynamic panic value
	}
	return &annotatedError{msg: "", err: err, attrs: nil, stack: callers()}
}

// SlogError renders err as an "error" group holding the message, the annotations of every wrapping layer and the
// stack trace of the innermost annotated layer.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	var (
		annotations []any
		stack       []uintptr
	)
	walk(err, func(ae *annotatedError) {
		for _, attr := range ae.attrs {
			annotations = append(annotations, attr)
		}
		if len(ae.stack) > 0 {
			stack = ae.stack
		}
	})

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if len(stack) > 0 {
		attrs = append(attrs, slog.String("trace", formatStack(stack)))
	}
	return slog.Group("error", attrs...)
}

// walk visits annotated layers outermost first, descending into joined errors.
func walk(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the chain manually
		visit(ae)
	}
	switch u := err.(type) { //nolint:errorlint // walking the chain manually
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			walk(e, visit)
		}
	}
}

func callers() []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	// Skip runtime.Callers, callers and the exported constructor.
	n := runtime.Callers(3, pcs) //nolint:mnd // see above
	return pcs[:n]
}

func formatStack(pcs []uintptr) string {
	var b strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") && !strings.HasSuffix(frame.File, "/annotatederror.go") {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s %s:%d", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
