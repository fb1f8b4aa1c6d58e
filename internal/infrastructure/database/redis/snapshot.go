package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/pkg/errors"
)

// snapshotKey is the redis key holding the serialized corpus snapshot.
const snapshotKey = "fairwheel:corpus:snapshot"

// Snapshot is the persisted form of a generated corpus. RefreshedAt lets
// a cold-started instance decide whether the stored corpus is still
// inside its TTL window.
type Snapshot struct {
	Records     []vehicle.Record `json:"records"`
	RefreshedAt time.Time        `json:"refreshedAt"`
}

// SnapshotStore persists corpus snapshots in redis so multiple instances
// can share one generated corpus instead of each regenerating on start.
type SnapshotStore struct {
	client *Client
	log    logging.Logger
}

// NewSnapshotStore constructs a SnapshotStore over an established Client.
func NewSnapshotStore(client *Client, log logging.Logger) *SnapshotStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SnapshotStore{client: client, log: log.Named("snapshot")}
}

// Save persists the snapshot with the given TTL. The redis expiry acts as
// a hard upper bound; readers still check RefreshedAt against their own
// TTL before adopting a snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap Snapshot, ttl time.Duration) error {
	rdb, err := s.client.universal()
	if err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal corpus snapshot")
	}

	if err := rdb.Set(ctx, snapshotKey, data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "store corpus snapshot")
	}

	s.log.Info("corpus snapshot stored",
		logging.Int("records", len(snap.Records)),
		logging.Duration("ttl", ttl),
	)
	return nil
}

// Load returns the stored snapshot, or ok=false when none exists.
func (s *SnapshotStore) Load(ctx context.Context) (Snapshot, bool, error) {
	rdb, err := s.client.universal()
	if err != nil {
		return Snapshot{}, false, err
	}

	data, err := rdb.Get(ctx, snapshotKey).Bytes()
	if err == goredis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, errors.Wrap(err, errors.ErrCodeCacheError, "load corpus snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal corpus snapshot")
	}
	return snap, true, nil
}

// Delete removes the stored snapshot. Missing keys are not an error.
func (s *SnapshotStore) Delete(ctx context.Context) error {
	rdb, err := s.client.universal()
	if err != nil {
		return err
	}
	if err := rdb.Del(ctx, snapshotKey).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "delete corpus snapshot")
	}
	return nil
}
