package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/myrjola/coachstats/internal/analytics"
	"github.com/myrjola/coachstats/internal/coaching"
	"github.com/myrjola/coachstats/internal/envstruct"
	"github.com/myrjola/coachstats/internal/errors"
	"github.com/myrjola/coachstats/internal/flightrecorder"
	"github.com/myrjola/coachstats/internal/logging"
	"github.com/myrjola/coachstats/internal/memo"
	"github.com/myrjola/coachstats/internal/sqlite"
)

type application struct {
	logger  *slog.Logger
	service *coaching.Service
	// now is the reference time of every period unless --now overrides it.
	now func() time.Time
}

type config struct {
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"COACHSTATS_SQLITE_URL" envDefault:"./coachstats.sqlite3"`
	// WeekStart is the first day of the week filter, e.g. monday or sunday.
	WeekStart string `env:"COACHSTATS_WEEK_START" envDefault:"monday"`
	// CacheMB bounds the memoized analytics results. Zero disables memoization.
	CacheMB  int           `env:"COACHSTATS_CACHE_MB" envDefault:"16"`
	CacheTTL time.Duration `env:"COACHSTATS_CACHE_TTL" envDefault:"10m"`
	// TraceDir enables the flight recorder. Commands that fail or outlast SlowThreshold leave a trace there.
	TraceDir      string        `env:"COACHSTATS_TRACE_DIR" envDefault:""`
	SlowThreshold time.Duration `env:"COACHSTATS_SLOW_THRESHOLD" envDefault:"5s"`
}

type logConfig struct {
	Level  slog.Level     `env:"COACHSTATS_LOG_LEVEL" envDefault:"info"`
	Format logging.Format `env:"COACHSTATS_LOG_FORMAT" envDefault:"text"`
}

func run(
	ctx context.Context,
	logger *slog.Logger,
	lookupEnv func(string) (string, bool),
	args []string,
	stdin io.Reader,
	stdout io.Writer,
) (err error) {
	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	weekStart, err := analytics.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return errors.Wrap(err, "parse week start")
	}

	if cfg.TraceDir != "" {
		var stop func(failed bool)
		if stop, err = startFlightRecorder(ctx, logger, cfg.TraceDir, cfg.SlowThreshold); err != nil {
			return err
		}
		defer func() {
			stop(err != nil)
		}()
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()
	logger.LogAttrs(ctx, slog.LevelDebug, "connected to db")

	cache := memo.New(cfg.CacheMB, cfg.CacheTTL, logger)
	app := application{
		logger:  logger,
		service: coaching.NewService(db, logger, cache, analytics.PeriodResolver{WeekStart: weekStart}),
		now:     time.Now,
	}

	root := app.newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	if err = root.ExecuteContext(ctx); err != nil {
		return errors.Wrap(err, "execute command", slog.Any("args", args))
	}

	stats := app.service.CacheStats()
	logger.LogAttrs(ctx, slog.LevelDebug, "memo stats",
		slog.Int64("hits", stats.Hits), slog.Int64("misses", stats.Misses), slog.Int64("entries", stats.Entries))
	return nil
}

// startFlightRecorder starts tracing. The returned stop function captures the trace when the command failed or was
// slow.
func startFlightRecorder(
	ctx context.Context,
	logger *slog.Logger,
	dir string,
	slowThreshold time.Duration,
) (func(failed bool), error) {
	recorder, err := flightrecorder.New(flightrecorder.Config{Logger: logger, Directory: dir, MinAge: 0, MaxBytes: 0})
	if err != nil {
		return nil, errors.Wrap(err, "new flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "start flight recorder")
	}
	started := time.Now()
	return func(failed bool) {
		defer recorder.Stop(ctx)
		var reason string
		switch {
		case failed:
			reason = "failed"
		case time.Since(started) > slowThreshold:
			reason = "slow"
		default:
			return
		}
		if _, captureErr := recorder.Capture(ctx, reason); captureErr != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "trace not captured", errors.SlogError(captureErr))
		}
	}, nil
}

func main() {
	ctx := context.Background()
	logger := logging.New(os.Stderr, slog.LevelInfo, logging.FormatText)

	var lc logConfig
	if err := envstruct.Populate(&lc, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure configuring logger", errors.SlogError(err))
		os.Exit(1)
	}
	logger = logging.New(os.Stderr, lc.Level, lc.Format)

	if err := run(ctx, logger, os.LookupEnv, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "command failed", errors.SlogError(err))
		os.Exit(1)
	}
}
