package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "hrbot:session:"

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	Prefix string
	// IdleTimeout becomes the key TTL and is refreshed on every Put; 0 disables expiry.
	IdleTimeout time.Duration
}

// RedisStore keeps sessions in Redis so they survive restarts and can be shared by replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts RedisOptions) *RedisStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: opts.IdleTimeout}
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Get loads and decodes the session.
func (r *RedisStore) Get(ctx context.Context, userID int64) (Session, bool, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("state: redis get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, false, fmt.Errorf("state: decode session %d: %w", userID, err)
	}
	if sess.Fields == nil {
		sess.Fields = make(map[string]string)
	}
	return sess, true, nil
}

// Put encodes the session and stores it with the configured TTL.
func (r *RedisStore) Put(ctx context.Context, s Session) error {
	s.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("state: encode session %d: %w", s.UserID, err)
	}
	if err := r.client.Set(ctx, r.key(s.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return nil
}

// Delete removes the session key.
func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("state: redis del: %w", err)
	}
	return nil
}
