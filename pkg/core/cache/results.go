package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/msto63/spi/foundation/pascal"
	mdwinterp "github.com/msto63/spi/foundation/pascal/interpreter"
	"github.com/msto63/spi/pkg/core/logging"
)

// ResultCache serves repeated inputs from memory. Every evaluation starts
// from an empty environment, so equal (mode, source) pairs give equal results.
// Only successful results are stored.
type ResultCache struct {
	next   pascal.Executor
	cache  *Cache
	logger *logging.Logger
}

// NewResultCache wraps next with a cache
func NewResultCache(next pascal.Executor, cfg Config, logger *logging.Logger) *ResultCache {
	if logger == nil {
		logger = logging.New("result-cache")
	}
	return &ResultCache{
		next:   next,
		cache:  New(cfg),
		logger: logger,
	}
}

// ResultKey hashes mode and source into a cache key
func ResultKey(mode pascal.Mode, source string) string {
	h := sha256.New()
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Execute implements pascal.Executor
func (c *ResultCache) Execute(ctx context.Context, mode pascal.Mode, input string) (*pascal.Result, error) {
	if err := ctx.Err(); err != nil {
		// Let the engine produce the usual canceled error
		return c.next.Execute(ctx, mode, input)
	}

	key := ResultKey(mode, input)
	if v, ok := c.cache.Get(key); ok {
		c.logger.Debug("Result cache hit", "mode", mode, "key", key[:12])
		return copyResult(v.(*pascal.Result)), nil
	}

	res, err := c.next.Execute(ctx, mode, input)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, copyResult(res))
	return res, nil
}

// Stats reports cache usage for health details
func (c *ResultCache) Stats() map[string]interface{} {
	hits, misses, rate := c.cache.Stats()
	return map[string]interface{}{
		"size":     c.cache.Size(),
		"hits":     hits,
		"misses":   misses,
		"hit_rate": rate,
	}
}

// Clear drops all cached results
func (c *ResultCache) Clear() {
	c.cache.Clear()
}

// Close stops the cleanup goroutine
func (c *ResultCache) Close() {
	c.cache.Close()
}

// copyResult keeps callers from mutating cached bindings
func copyResult(r *pascal.Result) *pascal.Result {
	out := *r
	if r.Value != nil {
		v := *r.Value
		out.Value = &v
	}
	if r.Bindings != nil {
		out.Bindings = append([]mdwinterp.Binding(nil), r.Bindings...)
	}
	return &out
}
