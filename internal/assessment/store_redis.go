package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-course/internal/grading"
)

const (
	sessionKeyPrefix = "course:session:"
	maxUpdateRetries = 5
	redisTimeout     = 3 * time.Second
)

// RedisStore keeps session snapshots as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. Each write refreshes the TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, snap Snapshot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	id := newSessionID()
	snap.ID = id
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, sessionKey(id), data, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("create session: id collision on %s", id)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get session: %w", err)
	}
	return decodeSnapshot(data)
}

// Update runs fn inside a WATCH transaction and retries when another writer
// changed the session in between.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Snapshot) error) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	key := sessionKey(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		snap, err := decodeSnapshot(data)
		if err != nil {
			return err
		}
		if err := fn(&snap); err != nil {
			return err
		}
		snap.ID = id

		out, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update session %s: too many concurrent writers", id)
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode session: %w", err)
	}
	if snap.Results == nil {
		snap.Results = map[string]grading.Result{}
	}
	return snap, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
