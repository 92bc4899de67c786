package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type snapshotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type snapshotKeyer interface {
	CartSnapshotKey(sessionID string) string
}

type snapshot struct {
	Items   []Item    `json:"items"`
	SavedAt time.Time `json:"saved_at"`
}

// SnapshotStore persists cart lines to Redis so a session can resume its cart
// after a reconnect. Persistence is best effort; callers degrade on failure.
type SnapshotStore struct {
	store snapshotStore
	keyer snapshotKeyer
	ttl   time.Duration
}

func NewSnapshotStore(store snapshotStore, keyer snapshotKeyer, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		store: store,
		keyer: keyer,
		ttl:   ttl,
	}
}

// Save writes the session's cart lines as a JSON snapshot.
func (s *SnapshotStore) Save(ctx context.Context, sessionID string, items []Item) error {
	payload, err := json.Marshal(snapshot{Items: items, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	return s.store.Set(ctx, s.keyer.CartSnapshotKey(sessionID), payload, s.ttl)
}

// Load returns the stored lines, or (nil, nil) when no snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) ([]Item, error) {
	raw, err := s.store.Get(ctx, s.keyer.CartSnapshotKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	return snap.Items, nil
}

// Delete drops the session's snapshot.
func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.store.Del(ctx, s.keyer.CartSnapshotKey(sessionID))
}
