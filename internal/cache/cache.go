// Package cache is a thin JSON cache over Redis. A nil *Store, or one built with a
// nil client, is a no-op cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a Store that namespaces every key under prefix.
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Connect dials addr and pings it. An empty addr yields a disabled Store.
func Connect(ctx context.Context, addr, password, prefix string, ttl time.Duration) (*Store, error) {
	if addr == "" {
		return New(nil, prefix, ttl), nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return New(client, prefix, ttl), nil
}

func (s *Store) enabled() bool { return s != nil && s.client != nil }

func (s *Store) key(k string) string { return s.prefix + k }

// Get decodes the cached value for key into dst. It reports false on a miss,
// when the cache is disabled, or when the entry cannot be decoded.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	if !s.enabled() {
		return false
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return false
	}
	return true
}

// Set stores v under key with the Store's TTL. Failures are logged, not returned.
func (s *Store) Set(ctx context.Context, key string, v any) {
	if !s.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Invalidate removes every key that starts with prefix.
func (s *Store) Invalidate(ctx context.Context, prefix string) {
	if !s.enabled() {
		return
	}
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidate failed")
	}
}

func (s *Store) Close() error {
	if !s.enabled() {
		return nil
	}
	return s.client.Close()
}
