package roadmap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/aristath/roadmap/internal/clientdata"
)

// DefaultComputeTimeout bounds a shared computation once it no longer
// follows any single caller's context.
const DefaultComputeTimeout = 2 * time.Minute

// RoadmapCache returns a cached roadmap or computes and stores a new one.
type RoadmapCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (Roadmap, error)) (Roadmap, error)
	Recompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (Roadmap, error)) (Roadmap, error)
	Invalidate(key string) error
}

// Cache stores roadmaps in the client data repository. Concurrent misses
// for the same key share one computation.
type Cache struct {
	repo    *clientdata.Repository
	group   singleflight.Group
	timeout time.Duration
	log     zerolog.Logger
}

// NewCache creates a cache. repo is optional; if nil, every call computes
// (still deduplicated per key).
func NewCache(repo *clientdata.Repository, log zerolog.Logger) *Cache {
	return &Cache{
		repo:    repo,
		timeout: DefaultComputeTimeout,
		log:     log.With().Str("component", "roadmap_cache").Logger(),
	}
}

// GetOrCompute returns the fresh cached roadmap for key, or runs compute
// and caches its result for ttl. Compute errors are returned and not cached.
// The returned roadmap may be shared with other callers and must not be modified.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (Roadmap, error)) (Roadmap, error) {
	if cached, ok := c.get(key); ok {
		c.log.Debug().Str("key", key).Msg("Roadmap cache hit")
		return cached, nil
	}
	return c.flight(ctx, key, ttl, true, compute)
}

// Recompute runs compute regardless of freshness and replaces the cached
// entry. It joins a computation already in flight for key instead of
// starting a second one.
func (c *Cache) Recompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (Roadmap, error)) (Roadmap, error) {
	return c.flight(ctx, key, ttl, false, compute)
}

// Invalidate drops the cached entry for key.
func (c *Cache) Invalidate(key string) error {
	if c.repo == nil {
		return nil
	}
	if err := c.repo.Delete(clientdata.TableRoadmaps, key); err != nil {
		return fmt.Errorf("failed to invalidate roadmap %s: %w", key, err)
	}
	c.log.Info().Str("key", key).Msg("Roadmap cache entry invalidated")
	return nil
}

// flight runs compute at most once per key at a time. The computation
// carries the first caller's values but not its cancellation, so a caller
// that gives up does not fail the others; each caller stops waiting when
// its own context ends.
func (c *Cache) flight(ctx context.Context, key string, ttl time.Duration, recheck bool, compute func(context.Context) (Roadmap, error)) (Roadmap, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Another caller may have populated the key while we waited.
		if recheck {
			if cached, ok := c.get(key); ok {
				return cached, nil
			}
		}

		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		roadmap, err := compute(cctx)
		if err != nil {
			return nil, err
		}
		if err := c.put(key, roadmap, ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache roadmap")
		}
		return roadmap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		c.log.Debug().Str("key", key).Bool("shared", res.Shared).Msg("Roadmap cache miss")
		return res.Val.(Roadmap), nil
	}
}

func (c *Cache) put(key string, roadmap Roadmap, ttl time.Duration) error {
	if c.repo == nil {
		return nil
	}
	return c.repo.Store(clientdata.TableRoadmaps, key, roadmap, ttl)
}

func (c *Cache) get(key string) (Roadmap, bool) {
	if c.repo == nil {
		return nil, false
	}

	var roadmap Roadmap
	found, err := c.repo.GetIfFresh(clientdata.TableRoadmaps, key, &roadmap)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read roadmap cache")
		return nil, false
	}
	if !found {
		return nil, false
	}
	if roadmap == nil {
		roadmap = Roadmap{}
	}
	return roadmap, true
}
