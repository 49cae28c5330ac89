package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/dependents/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Source implements ports.ValueSource using Redis.
// Values are stored as JSON under a key prefix.
type Source struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Source)

// WithTTL sets the expiration for stored values.
func WithTTL(ttl time.Duration) Option {
	return func(s *Source) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored values.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// New creates a new Redis source with options.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	source := &Source{
		client: client,
		prefix: "dependents:value:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(source)
	}

	return source
}

func (s *Source) key(name string) string {
	return s.prefix + name
}

func (s *Source) indexKey() string {
	return s.prefix + "index"
}

// Set stores the JSON encoding of value.
func (s *Source) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value %s: %w", key, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)

	// Index score is the expiry time so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: key,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves and decodes the value stored under key.
func (s *Source) Get(ctx context.Context, key string) (any, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrValueNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var v any
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value %s: %w", key, err)
	}
	return v, nil
}

// Delete removes the value.
func (s *Source) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the keys of values that have not expired.
func (s *Source) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired values: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list values: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Source) Close() error {
	return s.client.Close()
}
