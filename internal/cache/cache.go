// Package cache stores derived ledger results keyed by ledger version.
//
// Keys embed the ledger version, so appending a record makes old entries
// unreachable instead of requiring explicit invalidation. TTLs only bound
// how long the dead entries linger.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value cache.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SettlementKey is the cache key of a ledger's settlement at a version.
func SettlementKey(ledgerID string, version int64) string {
	return fmt.Sprintf("splitledger:settlement:%s:%d", ledgerID, version)
}
