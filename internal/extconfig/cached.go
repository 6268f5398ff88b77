package extconfig

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/pcd-manager/internal/cache"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// defaultTTL bounds how long a cached lookup can serve stale data after
// a registry write from a different Manager instance.
const defaultTTL = 5 * time.Minute

// CachedRegistry wraps a backend Registry with a read-through
// cache.Cache, so repeat lookups for an already-associated device's
// config_report_id don't round-trip to badger/postgres on every
// association.
type CachedRegistry struct {
	backend Registry
	cache   cache.Cache
	ttl     time.Duration
}

// NewCachedRegistry wraps backend with c. A zero ttl uses defaultTTL.
func NewCachedRegistry(backend Registry, c cache.Cache, ttl time.Duration) *CachedRegistry {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedRegistry{backend: backend, cache: c, ttl: ttl}
}

func (r *CachedRegistry) Lookup(ctx context.Context, systemID []byte, configReportID uint16) ([]codec.ConfigObject, bool, error) {
	cacheKey := cache.ExtConfigKey(systemID, configReportID)

	if raw, err := r.cache.Get(ctx, cacheKey); err == nil {
		objects, uerr := unmarshalObjects(raw)
		if uerr == nil {
			return objects, true, nil
		}
		log.Warn().Err(uerr).Msg("extconfig: discarding corrupt cache entry")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Msg("extconfig: cache read failed, falling through to backend")
	}

	objects, found, err := r.backend.Lookup(ctx, systemID, configReportID)
	if err != nil || !found {
		return objects, found, err
	}

	if data, merr := marshalObjects(objects); merr == nil {
		if serr := r.cache.Set(ctx, cacheKey, data, r.ttl); serr != nil {
			log.Warn().Err(serr).Msg("extconfig: cache write failed")
		}
	}
	return objects, true, nil
}

func (r *CachedRegistry) Register(ctx context.Context, systemID []byte, configReportID uint16, objects []codec.ConfigObject) error {
	if err := r.backend.Register(ctx, systemID, configReportID, objects); err != nil {
		return err
	}
	cacheKey := cache.ExtConfigKey(systemID, configReportID)
	if err := r.cache.Delete(ctx, cacheKey); err != nil {
		log.Warn().Err(err).Msg("extconfig: cache invalidation failed after register")
	}
	return nil
}
