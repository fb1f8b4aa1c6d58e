// Package corpus maintains the shared pool of comparable candidate
// listings behind a TTL. Reads return a consistent snapshot; refreshes
// build a fresh slice off to the side and swap it in whole, so readers
// never observe a partially built corpus.
package corpus

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/database/redis"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// DefaultTTL is the corpus refresh window.
const DefaultTTL = 30 * time.Minute

// maxCorpusSize bounds the assembled corpus.
const maxCorpusSize = 1000

// Provider supplies externally sourced listings. Implementations never
// return an error; failures resolve to an empty slice.
type Provider interface {
	Fetch(ctx context.Context, q vehicle.Query) []vehicle.Record
}

// Generator supplies synthetic listings.
type Generator interface {
	Generate(n int) []vehicle.Record
	GenerateBiased(ref vehicle.Record) []vehicle.Record
}

// SnapshotStore optionally persists the assembled corpus so restarts and
// sibling instances can adopt it instead of regenerating.
type SnapshotStore interface {
	Save(ctx context.Context, snap redis.Snapshot, ttl time.Duration) error
	Load(ctx context.Context) (redis.Snapshot, bool, error)
}

// Cache is the TTL'd corpus holder. All methods are safe for concurrent
// use; concurrent refreshes collapse into one flight.
type Cache struct {
	ttl       time.Duration
	providers []Provider
	store     SnapshotStore // nil when snapshot sharing is disabled

	genMu sync.Mutex
	gen   Generator

	mu          sync.RWMutex
	records     []vehicle.Record
	refreshedAt time.Time

	sf        singleflight.Group
	now       func() time.Time
	log       logging.Logger
	onRefresh func() // nil when refresh counting is disabled
}

// Option configures a Cache.
type Option func(*Cache)

// WithProviders attaches external listing providers, consulted in order
// on every refresh.
func WithProviders(providers ...Provider) Option {
	return func(c *Cache) { c.providers = append(c.providers, providers...) }
}

// WithSnapshotStore attaches a persistent snapshot store.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithRefreshObserver registers fn to be called once per completed corpus
// rebuild, snapshot adoptions included.
func WithRefreshObserver(fn func()) Option {
	return func(c *Cache) { c.onRefresh = fn }
}

// NewCache constructs a Cache. ttl values of zero or below fall back to
// DefaultTTL.
func NewCache(gen Generator, ttl time.Duration, log logging.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Cache{
		ttl: ttl,
		gen: gen,
		now: time.Now,
		log: log.Named("corpus"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current corpus and its refresh time, refreshing
// first when the corpus is empty or past its TTL. The returned slice is
// shared and must be treated as read-only.
func (c *Cache) Snapshot(ctx context.Context, q vehicle.Query) ([]vehicle.Record, time.Time) {
	c.mu.RLock()
	records, refreshedAt := c.records, c.refreshedAt
	c.mu.RUnlock()

	if len(records) > 0 && c.now().Sub(refreshedAt) <= c.ttl {
		return records, refreshedAt
	}
	return c.Refresh(ctx, q)
}

// Refresh rebuilds the corpus biased toward the query vehicle. Concurrent
// callers share a single rebuild. The new corpus replaces the old one
// atomically on completion.
func (c *Cache) Refresh(ctx context.Context, q vehicle.Query) ([]vehicle.Record, time.Time) {
	type result struct {
		records     []vehicle.Record
		refreshedAt time.Time
	}

	v, _, _ := c.sf.Do("refresh", func() (interface{}, error) {
		// Another flight may have finished while we queued.
		c.mu.RLock()
		records, refreshedAt := c.records, c.refreshedAt
		c.mu.RUnlock()
		if len(records) > 0 && c.now().Sub(refreshedAt) <= c.ttl {
			return result{records, refreshedAt}, nil
		}

		fresh, at := c.rebuild(ctx, q)
		if c.onRefresh != nil {
			c.onRefresh()
		}

		c.mu.Lock()
		c.records, c.refreshedAt = fresh, at
		c.mu.Unlock()

		return result{fresh, at}, nil
	})

	r := v.(result)
	return r.records, r.refreshedAt
}

// rebuild assembles a fresh corpus: an unexpired persisted snapshot when
// cold, otherwise provider listings followed by biased synthetic fill.
func (c *Cache) rebuild(ctx context.Context, q vehicle.Query) ([]vehicle.Record, time.Time) {
	cold := func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.records) == 0
	}()

	if cold && c.store != nil {
		if snap, ok, err := c.store.Load(ctx); err != nil {
			c.log.Warn("snapshot load failed", logging.Err(err))
		} else if ok && len(snap.Records) > 0 && c.now().Sub(snap.RefreshedAt) <= c.ttl {
			c.log.Info("adopted persisted corpus snapshot",
				logging.Int("records", len(snap.Records)),
				logging.Duration("age", c.now().Sub(snap.RefreshedAt)),
			)
			return snap.Records, snap.RefreshedAt
		}
	}

	fresh := make([]vehicle.Record, 0, maxCorpusSize)
	sourced := 0
	for _, p := range c.providers {
		listings := p.Fetch(ctx, q)
		sourced += len(listings)
		fresh = append(fresh, listings...)
	}

	c.genMu.Lock()
	fresh = append(fresh, c.gen.GenerateBiased(q.Record(c.now()))...)
	c.genMu.Unlock()

	if len(fresh) > maxCorpusSize {
		fresh = fresh[:maxCorpusSize]
	}
	at := c.now()

	if c.store != nil {
		if err := c.store.Save(ctx, redis.Snapshot{Records: fresh, RefreshedAt: at}, c.ttl); err != nil {
			c.log.Warn("snapshot save failed", logging.Err(err))
		}
	}

	c.log.Info("corpus refreshed",
		logging.Int("sourced", sourced),
		logging.Int("total", len(fresh)),
		logging.String("bias", q.Label()),
	)
	return fresh, at
}

// Info describes the cache for health reporting.
type Info struct {
	Size        int       `json:"size"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Stale       bool      `json:"stale"`
}

// Info returns the current corpus size, refresh time, and staleness.
func (c *Cache) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Info{
		Size:        len(c.records),
		RefreshedAt: c.refreshedAt,
		Stale:       len(c.records) == 0 || c.now().Sub(c.refreshedAt) > c.ttl,
	}
}

// TTL reports the configured refresh window.
func (c *Cache) TTL() time.Duration { return c.ttl }
