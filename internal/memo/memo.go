// Package memo memoizes analytics results keyed by trainee, period and a digest of the inputs.
//
// Results are never invalidated explicitly. Any change to the inputs changes the digest and therefore the key, so
// stale entries simply age out.
package memo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/coocood/freecache"
)

const (
	megabyte = 1024 * 1024
	// minSizeMB keeps the largest memoizable entry at 16 KiB, as freecache rejects entries above 1/1024 of its size.
	minSizeMB = 16
)

// Key identifies a memoized computation.
type Key struct {
	// Namespace separates computations over the same inputs, e.g. "dashboard" and "trend".
	Namespace string
	TraineeID int
	Period    string
	// Inputs is the Digest of everything the computation reads.
	Inputs uint64
}

func (k Key) bytes() []byte {
	b := make([]byte, 0, len(k.Namespace)+len(k.Period)+40) //nolint:mnd // room for the numbers and separators
	b = append(b, k.Namespace...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(k.TraineeID), 10) //nolint:mnd // decimal
	b = append(b, ':')
	b = append(b, k.Period...)
	b = append(b, ':')
	b = strconv.AppendUint(b, k.Inputs, 16) //nolint:mnd // hex
	return b
}

// Digest hashes the JSON encoding of inputs.
func Digest(inputs ...any) (uint64, error) {
	h := xxhash.New()
	enc := json.NewEncoder(h)
	for _, in := range inputs {
		if err := enc.Encode(in); err != nil {
			return 0, fmt.Errorf("encode input: %w", err)
		}
	}
	return h.Sum64(), nil
}

// Cache is a size-bounded in-process result cache.
type Cache struct {
	cache  *freecache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache holding sizeMB megabytes of encoded results for ttl. Sizes below 16 MB are raised to it. A
// non-positive size disables caching and every lookup computes.
//
// Results larger than 1/1024 of the cache size are returned without being memoized.
func New(sizeMB int, ttl time.Duration, logger *slog.Logger) *Cache {
	c := &Cache{cache: nil, ttl: ttl, logger: logger}
	if sizeMB > 0 {
		c.cache = freecache.NewCache(max(sizeMB, minSizeMB) * megabyte)
	}
	return c
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	if c.cache == nil {
		return Stats{}
	}
	return Stats{Hits: c.cache.HitCount(), Misses: c.cache.MissCount(), Entries: c.cache.EntryCount()}
}

// Do returns the memoized result for key or computes, stores and returns it.
//
// Cache failures are logged and never fail the call. Results that cannot be encoded are returned uncached.
func Do[T any](ctx context.Context, c *Cache, key Key, compute func() (T, error)) (T, error) {
	if c == nil || c.cache == nil {
		return compute()
	}
	k := key.bytes()
	logger := c.logger.With(slog.String("namespace", key.Namespace), slog.Int("trainee_id", key.TraineeID),
		slog.String("period", key.Period))

	if cached, err := c.cache.Get(k); err == nil {
		var v T
		if err = json.Unmarshal(cached, &v); err == nil {
			logger.LogAttrs(ctx, slog.LevelDebug, "memo hit")
			return v, nil
		}
		logger.LogAttrs(ctx, slog.LevelWarn, "discarding undecodable memo entry", slog.Any("error", err))
		c.cache.Del(k)
	} else if !errors.Is(err, freecache.ErrNotFound) {
		logger.LogAttrs(ctx, slog.LevelWarn, "memo lookup failed", slog.Any("error", err))
	}

	v, err := compute()
	if err != nil {
		return v, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "result not memoized", slog.Any("error", err))
		return v, nil
	}
	switch err = c.cache.Set(k, encoded, int(c.ttl.Seconds())); {
	case errors.Is(err, freecache.ErrLargeEntry):
		logger.LogAttrs(ctx, slog.LevelDebug, "result too large to memoize", slog.Int("bytes", len(encoded)))
	case err != nil:
		logger.LogAttrs(ctx, slog.LevelWarn, "result not memoized", slog.Any("error", err))
	default:
		logger.LogAttrs(ctx, slog.LevelDebug, "memo miss", slog.Int("bytes", len(encoded)))
	}
	return v, nil
}
