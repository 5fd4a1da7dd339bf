package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Redis is a Store backed by Redis. Records are stored as JSON, and an
// index of rig names is kept in a sorted set scored by expiry.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*Redis)(nil)

type Option func(*Redis)

// WithTTL sets the expiration of records.
func WithTTL(ttl time.Duration) Option {
	return func(s *Redis) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix of records.
func WithPrefix(prefix string) Option {
	return func(s *Redis) {
		s.prefix = prefix
	}
}

const defaultPrefix = "ptframe:result:"

// NewRedis creates a new Redis store with options.
func NewRedis(address, password string, db int, opts ...Option) *Redis {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(rdb, opts...)
}

// NewRedisFromClient creates a new Redis store from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...Option) *Redis {
	s := &Redis{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Redis) key(rig string) string {
	return s.prefix + rig
}

func (s *Redis) indexKey() string {
	return s.prefix + "index"
}

// Ping checks the connection to the server.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save persists the record.
func (s *Redis) Save(ctx context.Context, rig string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(rig), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: rig})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the record of a rig.
func (s *Redis) Load(ctx context.Context, rig string) (*Record, error) {
	val, err := s.client.Get(ctx, s.key(rig)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record of a rig.
func (s *Redis) Delete(ctx context.Context, rig string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(rig))
	pipe.ZRem(ctx, s.indexKey(), rig)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the rigs with stored records, pruning expired entries from
// the index first.
func (s *Redis) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired records: %w", err)
	}
	rigs, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return rigs, nil
}

// Close closes the redis client.
func (s *Redis) Close() error {
	return s.client.Close()
}
