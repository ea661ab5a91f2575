package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/drivefit/riskd/internal/domain/model"
)

// memberSeparator joins the timestamp and record id inside index members.
// NUL sorts before any printable byte, so lexicographic member order follows
// timestamp order with the record id as tiebreaker.
const memberSeparator = "\x00"

// RedisStore persists records as JSON documents with a per-user
// lexicographic sorted-set index ordered by timestamp.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*redisSettings)

type redisSettings struct {
	password  string
	db        int
	keyPrefix string
	poolSize  int
}

// WithRedisPassword sets the connection password.
func WithRedisPassword(password string) RedisOption {
	return func(s *redisSettings) { s.password = password }
}

// WithRedisDB selects the logical database.
func WithRedisDB(db int) RedisOption {
	return func(s *redisSettings) {
		if db >= 0 {
			s.db = db
		}
	}
}

// WithKeyPrefix overrides the default "risk" key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *redisSettings) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, opts ...RedisOption) (*RedisStore, error) {
	settings := &redisSettings{keyPrefix: "risk", poolSize: 20}
	for _, opt := range opts {
		opt(settings)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: settings.password,
		DB:       settings.db,
		PoolSize: settings.poolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: settings.keyPrefix}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying connection for co-located adapters such as
// the pub/sub alert publisher.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) indexKey(userID string) string {
	return fmt.Sprintf("%s:user:%s:index", s.keyPrefix, userID)
}

func (s *RedisStore) recordKey(recordID string) string {
	return fmt.Sprintf("%s:record:%s", s.keyPrefix, recordID)
}

// Put writes the record document and its index entry in one pipeline.
func (s *RedisStore) Put(ctx context.Context, rec model.Record) error {
	payload, err := json.Marshal(encodeRecord(rec))
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	member := rec.Timestamp + memberSeparator + rec.RecordID

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.recordKey(rec.RecordID), payload, 0)
	pipe.ZAdd(ctx, s.indexKey(rec.UserID), redis.Z{Score: 0, Member: member})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// Recent walks the index newest-first and fetches the referenced documents.
func (s *RedisStore) Recent(ctx context.Context, userID string, limit int) ([]model.Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	members, err := s.client.ZRevRangeByLex(ctx, s.indexKey(userID), &redis.ZRangeBy{
		Min:   "-",
		Max:   "+",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index scan failed: %w", err)
	}
	if len(members) == 0 {
		return []model.Record{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, member := range members {
		_, recordID, ok := strings.Cut(member, memberSeparator)
		if !ok {
			return nil, fmt.Errorf("%w: malformed index member %q", ErrCorruptRecord, member)
		}
		keys = append(keys, s.recordKey(recordID))
	}

	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis record fetch failed: %w", err)
	}

	out := make([]model.Record, 0, len(raw))
	for _, item := range raw {
		payload, ok := item.(string)
		if !ok {
			// Index entry without a document; skip rather than fail the page.
			continue
		}
		var doc recordDoc
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
