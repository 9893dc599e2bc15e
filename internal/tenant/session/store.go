// Package session stores each actor's most recent tenant selection so the
// registry can restore it on the next request.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const selectionTTL = 30 * 24 * time.Hour

// Store persists the selected tenant ID per actor.
type Store interface {
	Get(ctx context.Context, actorID int64) (int64, bool, error)
	Set(ctx context.Context, actorID, tenantID int64) error
	Clear(ctx context.Context, actorID int64) error
}

// NewStore returns a redis-backed store when a client is configured and an
// in-process store otherwise.
func NewStore(client *redis.Client) Store {
	if client == nil {
		return NewMemoryStore()
	}
	return &redisStore{client: client}
}

type redisStore struct {
	client *redis.Client
}

func key(actorID int64) string {
	return fmt.Sprintf("tenant:selected:%d", actorID)
}

func (s *redisStore) Get(ctx context.Context, actorID int64) (int64, bool, error) {
	raw, err := s.client.Get(ctx, key(actorID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	tenantID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return tenantID, true, nil
}

func (s *redisStore) Set(ctx context.Context, actorID, tenantID int64) error {
	return s.client.Set(ctx, key(actorID), strconv.FormatInt(tenantID, 10), selectionTTL).Err()
}

func (s *redisStore) Clear(ctx context.Context, actorID int64) error {
	return s.client.Del(ctx, key(actorID)).Err()
}

type memoryStore struct {
	mu         sync.RWMutex
	selections map[int64]int64
}

// NewMemoryStore returns an in-process store for single-node and test setups.
func NewMemoryStore() Store {
	return &memoryStore{selections: make(map[int64]int64)}
}

func (s *memoryStore) Get(_ context.Context, actorID int64) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenantID, ok := s.selections[actorID]
	return tenantID, ok, nil
}

func (s *memoryStore) Set(_ context.Context, actorID, tenantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[actorID] = tenantID
	return nil
}

func (s *memoryStore) Clear(_ context.Context, actorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, actorID)
	return nil
}
