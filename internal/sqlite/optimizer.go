package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const optimizeInterval = time.Hour

// optimizer runs PRAGMA optimize in the background until stopped.
type optimizer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startDatabaseOptimizer runs optimize now and then once per interval. See
// https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startDatabaseOptimizer(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	db.optimizer = &optimizer{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(db.optimizer.done)
		// Analyse tables that have never been analysed, as recommended for long-lived connections.
		db.optimize(ctx, "PRAGMA optimize = 0x10002;")
		ticker := time.NewTicker(optimizeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				db.optimize(ctx, "PRAGMA optimize;")
			}
		}
	}()
}

func (db *Database) optimize(ctx context.Context, pragma string) {
	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, pragma); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database", slog.Any("error", err))
		return
	}
	db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
}

// stopOptimizer blocks until the background optimizer has exited.
func (db *Database) stopOptimizer() {
	if db.optimizer == nil {
		return
	}
	db.optimizer.cancel()
	<-db.optimizer.done
}
