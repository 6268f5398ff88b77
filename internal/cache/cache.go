package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
}

// ExtConfigKey builds the cache key for one extended-configuration
// lookup: the registry is addressed by (system_id, config_report_id)
// per §6, so the cache must be keyed identically to stay coherent with
// the backing registry.
func ExtConfigKey(systemID []byte, configReportID uint16) string {
	return fmt.Sprintf("extconfig:%x:%04x", systemID, configReportID)
}
