// Package redis mirrors pending-eviction marks into Redis. The markers are
// best-effort liveness keys with a TTL matching the grace window: useful for
// inspection and for external tooling, never authoritative for session state.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PresenceStore implements app.PresenceMarker on a Redis client.
type PresenceStore struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewPresenceStore(client *redis.Client, ttl time.Duration, log zerolog.Logger) *PresenceStore {
	return &PresenceStore{client: client, ttl: ttl, log: log}
}

// MarkPending records that a student disconnected without leaving. The key
// expires on its own after the grace window.
func (s *PresenceStore) MarkPending(ctx context.Context, name string) {
	if err := s.client.Set(ctx, s.key(name), time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		s.log.Debug().Err(err).Str("name", name).Msg("presence mark failed")
	}
}

// ClearPending removes the marker when the student reconnects or is purged.
func (s *PresenceStore) ClearPending(ctx context.Context, name string) {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		s.log.Debug().Err(err).Str("name", name).Msg("presence clear failed")
	}
}

func (s *PresenceStore) key(name string) string {
	return "livepoll:pending:" + name
}
