package corpus

import (
	"context"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/database/redis"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/prometheus"
)

type stubGenerator struct {
	calls int32
}

func (g *stubGenerator) Generate(n int) []vehicle.Record {
	out := make([]vehicle.Record, n)
	for i := range out {
		out[i] = vehicle.Record{Make: "Toyota", Model: "Camry", Year: 2020, Mileage: 50000, Owners: 1, Price: 150000, Synthetic: true}
	}
	return out
}

func (g *stubGenerator) GenerateBiased(ref vehicle.Record) []vehicle.Record {
	atomic.AddInt32(&g.calls, 1)
	return g.Generate(120)
}

type stubProvider struct {
	records []vehicle.Record
	calls   int32
}

func (p *stubProvider) Fetch(ctx context.Context, q vehicle.Query) []vehicle.Record {
	atomic.AddInt32(&p.calls, 1)
	return p.records
}

type memoryStore struct {
	mu   sync.Mutex
	snap redis.Snapshot
	ok   bool
}

func (s *memoryStore) Save(ctx context.Context, snap redis.Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap, s.ok = snap, true
	return nil
}

func (s *memoryStore) Load(ctx context.Context) (redis.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.ok, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func cacheQuery() vehicle.Query {
	q := vehicle.Query{Make: "Toyota", Model: "Camry", Year: 2020, Price: 150000}
	q.Normalize()
	return q
}

func TestSnapshotRefreshesWhenEmpty(t *testing.T) {
	gen := &stubGenerator{}
	c := NewCache(gen, time.Hour, logging.NewNopLogger())

	records, refreshedAt := c.Snapshot(context.Background(), cacheQuery())
	assert.Len(t, records, 120)
	assert.False(t, refreshedAt.IsZero())
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
}

func TestSnapshotReusedInsideTTL(t *testing.T) {
	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(), WithClock(clock.Now))

	first, at1 := c.Snapshot(context.Background(), cacheQuery())
	clock.Advance(30 * time.Minute)
	second, at2 := c.Snapshot(context.Background(), cacheQuery())

	assert.Equal(t, at1, at2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
	require.Equal(t, len(first), len(second))
	assert.Equal(t, first[0], second[0])
}

func TestSnapshotRefreshesAfterTTL(t *testing.T) {
	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(), WithClock(clock.Now))

	_, at1 := c.Snapshot(context.Background(), cacheQuery())
	clock.Advance(61 * time.Minute)
	_, at2 := c.Snapshot(context.Background(), cacheQuery())

	assert.True(t, at2.After(at1))
	assert.Equal(t, int32(2), atomic.LoadInt32(&gen.calls))
}

func TestProvidersConsultedFirst(t *testing.T) {
	gen := &stubGenerator{}
	provider := &stubProvider{records: []vehicle.Record{
		{Make: "Toyota", Model: "Camry", Year: 2019, Mileage: 45000, Owners: 1, Price: 145000},
	}}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(), WithProviders(provider))

	records, _ := c.Snapshot(context.Background(), cacheQuery())
	require.NotEmpty(t, records)
	assert.False(t, records[0].Synthetic)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	assert.Len(t, records, 121)
}

func TestConcurrentRefreshSingleFlight(t *testing.T) {
	gen := &stubGenerator{}
	c := NewCache(gen, time.Hour, logging.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, _ := c.Snapshot(context.Background(), cacheQuery())
			assert.NotEmpty(t, records)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
}

func TestSnapshotStoreAdoptedOnColdStart(t *testing.T) {
	stored := redis.Snapshot{
		Records:     []vehicle.Record{{Make: "Honda", Model: "Civic", Year: 2018, Mileage: 70000, Owners: 2, Price: 95000, Synthetic: true}},
		RefreshedAt: time.Date(2025, 8, 1, 11, 45, 0, 0, time.UTC),
	}
	store := &memoryStore{snap: stored, ok: true}
	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(), WithSnapshotStore(store), WithClock(clock.Now))

	records, refreshedAt := c.Snapshot(context.Background(), cacheQuery())
	require.Len(t, records, 1)
	assert.Equal(t, "Civic", records[0].Model)
	assert.Equal(t, stored.RefreshedAt, refreshedAt)
	assert.Equal(t, int32(0), atomic.LoadInt32(&gen.calls))
}

func TestExpiredStoredSnapshotIgnored(t *testing.T) {
	store := &memoryStore{
		snap: redis.Snapshot{
			Records:     []vehicle.Record{{Make: "Honda", Model: "Civic", Year: 2018, Mileage: 70000, Owners: 2, Price: 95000}},
			RefreshedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
		},
		ok: true,
	}
	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(), WithSnapshotStore(store), WithClock(clock.Now))

	records, _ := c.Snapshot(context.Background(), cacheQuery())
	assert.Len(t, records, 120)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))

	// The fresh corpus was persisted back.
	snap, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, snap.Records, 120)
}

func TestInfo(t *testing.T) {
	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(), WithClock(clock.Now))

	info := c.Info()
	assert.Zero(t, info.Size)
	assert.True(t, info.Stale)

	c.Snapshot(context.Background(), cacheQuery())
	info = c.Info()
	assert.Equal(t, 120, info.Size)
	assert.False(t, info.Stale)

	clock.Advance(2 * time.Hour)
	assert.True(t, c.Info().Stale)
}

func TestRefreshObserverCountsRebuilds(t *testing.T) {
	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	var refreshes int32
	c := NewCache(gen, time.Hour, logging.NewNopLogger(),
		WithClock(clock.Now),
		WithRefreshObserver(func() { atomic.AddInt32(&refreshes, 1) }))

	c.Snapshot(context.Background(), cacheQuery())
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))

	// Inside the TTL the cached corpus is served without a rebuild.
	clock.Advance(30 * time.Minute)
	c.Snapshot(context.Background(), cacheQuery())
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))

	clock.Advance(31 * time.Minute)
	c.Snapshot(context.Background(), cacheQuery())
	assert.Equal(t, int32(2), atomic.LoadInt32(&refreshes))
}

func TestRefreshObserverDrivesPrometheusCounter(t *testing.T) {
	mc, err := prometheus.NewMetricsCollector(
		prometheus.CollectorConfig{Namespace: "corpustest"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(mc)

	gen := &stubGenerator{}
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(gen, time.Hour, logging.NewNopLogger(),
		WithClock(clock.Now),
		WithRefreshObserver(m.IncCorpusRefresh))

	c.Snapshot(context.Background(), cacheQuery())
	clock.Advance(2 * time.Hour)
	c.Snapshot(context.Background(), cacheQuery())

	rec := httptest.NewRecorder()
	mc.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "corpustest_corpus_refreshes_total 2")
}

func TestDefaultTTLApplied(t *testing.T) {
	c := NewCache(&stubGenerator{}, 0, nil)
	assert.Equal(t, DefaultTTL, c.TTL())
}
