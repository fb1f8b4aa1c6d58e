// Package postgres provides an optional listing provider backed by an
// operator-maintained listings table. Like every listing source it is
// best effort: connection or query failures resolve to an empty result.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/pkg/errors"
)

// Config carries postgres connection parameters.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN renders the pgx connection string.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, sslMode)
}

// yearWindow bounds how far a listing's model year may sit from the query
// year and still be fetched for matching.
const yearWindow = 8

const listingsQuery = `
SELECT make, model, year, mileage, color, owners, price,
       fuel_type, transmission, seats, engine_cc, date_listed
FROM listings
WHERE lower(make) = lower($1)
  AND year BETWEEN $2 AND $3
ORDER BY date_listed DESC
LIMIT $4`

// maxListings caps a single fetch.
const maxListings = 500

// ListingStore reads listings from postgres.
type ListingStore struct {
	pool          *pgxpool.Pool
	referenceYear int
	log           logging.Logger
}

// NewListingStore connects a pool and verifies it with a ping.
func NewListingStore(ctx context.Context, cfg Config, referenceYear int, log logging.Logger) (*ListingStore, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "parse postgres config")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "postgres ping failed")
	}

	log.Named("postgres").Info("connected",
		logging.String("host", cfg.Host),
		logging.String("database", cfg.Database),
	)
	return &ListingStore{pool: pool, referenceYear: referenceYear, log: log.Named("postgres")}, nil
}

// NewListingStoreFromPool wraps an existing pool. Used by integration
// tests.
func NewListingStoreFromPool(pool *pgxpool.Pool, referenceYear int, log logging.Logger) *ListingStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ListingStore{pool: pool, referenceYear: referenceYear, log: log.Named("postgres")}
}

// Fetch returns stored listings of the query's make within the model-year
// window. It never returns an error; failures log and yield nil.
func (s *ListingStore) Fetch(ctx context.Context, q vehicle.Query) []vehicle.Record {
	rows, err := s.pool.Query(ctx, listingsQuery, q.Make, q.Year-yearWindow, q.Year+yearWindow, maxListings)
	if err != nil {
		s.log.Warn("listings query failed", logging.String("make", q.Make), logging.Err(err))
		return nil
	}
	defer rows.Close()

	var out []vehicle.Record
	dropped := 0
	for rows.Next() {
		var r vehicle.Record
		var listed time.Time
		if err := rows.Scan(&r.Make, &r.Model, &r.Year, &r.Mileage, &r.Color, &r.Owners,
			&r.Price, &r.FuelType, &r.Transmission, &r.Seats, &r.EngineCC, &listed); err != nil {
			s.log.Warn("listing row scan failed", logging.Err(err))
			return nil
		}
		r.DateListed = listed
		if !r.Valid(s.referenceYear) {
			dropped++
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("listings iteration failed", logging.Err(err))
		return nil
	}
	if dropped > 0 {
		s.log.Debug("invalid stored listings dropped", logging.Int("dropped", dropped))
	}
	return out
}

// Ping checks pool health.
func (s *ListingStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "postgres ping failed")
	}
	return nil
}

// Close releases the pool.
func (s *ListingStore) Close() {
	s.pool.Close()
}
