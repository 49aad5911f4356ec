// Package infra provides shared infrastructure components used across
// the application: logging, caching, request pacing, and HTTP utilities.
package infra

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
)

// --- Logging ---

// NewLogger builds the application logger. Format "json" writes one JSON
// object per line to stderr; anything else uses the console writer.
func NewLogger(level, format string) *log.Logger {
	var w log.Writer
	if strings.EqualFold(format, "json") {
		w = &log.IOWriter{Writer: os.Stderr}
	} else {
		w = &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: isTerminal(os.Stderr),
		}
	}
	return &log.Logger{
		Level:      log.ParseLevel(strings.ToLower(level)),
		TimeFormat: "15:04:05",
		Writer:     w,
	}
}

// NopLogger returns a logger that discards everything. Used by tests and
// by components constructed without a logger.
func NopLogger() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// --- HTTP ---

// NewHTTPClient returns a client with the given request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// --- Request pacing ---

// NewPacer returns a limiter that lets the first request through at once
// and spaces every following request by at least delay.
func NewPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// --- Simple in-memory cache ---

// cacheEntry holds a cached value with the time it was stored.
type cacheEntry[V any] struct {
	Value    V
	StoredAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a new cache with the given TTL.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the cache's time source.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get retrieves a fresh value. Returns the zero value and false if the key
// is missing or older than the TTL.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	now := c.now()
	c.mu.RUnlock()
	if !ok || now.Sub(entry.StoredAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// Set stores a value stamped with the current time.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{Value: value, StoredAt: c.now()}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Cleanup removes expired entries and returns how many it dropped.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, v := range c.entries {
		if now.Sub(v.StoredAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
