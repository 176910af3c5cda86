// Package cache holds the result caches in front of the pipeline: an
// in-process TTL LRU and a Redis-backed store shared between instances.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/estensen/wallet-wrapped/internal/metrics"
)

// Cache stores values for a bounded time. A miss is (zero, false, nil).
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
}

// StatsKey keys wallet statistics by address.
func StatsKey(address string) string {
	return "stats:" + strings.ToLower(address)
}

// WrappedKey keys a year-in-review result as address:year.
func WrappedKey(address string, year int) string {
	return fmt.Sprintf("%s:%d", strings.ToLower(address), year)
}

func observe(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues(name, result).Inc()
}
