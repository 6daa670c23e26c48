package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "prioritizer:ledger:"
	redisFeedbackKey = "prioritizer:feedback"
	redisFeedbackCap = 1000
)

// RedisStore keeps one hash per strategy ({positive, total}) and a capped
// list of recent feedback events.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at url (redis://...).
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func ledgerKey(strategy string) string {
	return redisKeyPrefix + strategy
}

func (s *RedisStore) GetLedgerEntry(ctx context.Context, strategy string) (LedgerEntry, error) {
	vals, err := s.client.HGetAll(ctx, ledgerKey(strategy)).Result()
	if errors.Is(err, redis.Nil) {
		return LedgerEntry{}, nil
	}
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("get ledger entry %q: %w", strategy, err)
	}
	return parseLedgerHash(vals)
}

func (s *RedisStore) ListLedger(ctx context.Context) (map[string]LedgerEntry, error) {
	out := make(map[string]LedgerEntry)
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		vals, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		e, err := parseLedgerHash(vals)
		if err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(key, redisKeyPrefix)] = e
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan ledger keys: %w", err)
	}
	return out, nil
}

// RecordFeedback increments the strategy hash inside MULTI/EXEC so the
// two counters move together.
func (s *RedisStore) RecordFeedback(ctx context.Context, fb *Feedback) (LedgerEntry, error) {
	event, err := json.Marshal(fb)
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("encode feedback: %w", err)
	}

	key := ledgerKey(fb.Strategy)
	pipe := s.client.TxPipeline()
	pos := pipe.HIncrBy(ctx, key, "positive", int64(boolToInt(fb.WasHelpful)))
	total := pipe.HIncrBy(ctx, key, "total", 1)
	pipe.LPush(ctx, redisFeedbackKey, event)
	pipe.LTrim(ctx, redisFeedbackKey, 0, redisFeedbackCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return LedgerEntry{}, fmt.Errorf("update ledger %q: %w", fb.Strategy, err)
	}
	return LedgerEntry{Positive: int(pos.Val()), Total: int(total.Val())}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func parseLedgerHash(vals map[string]string) (LedgerEntry, error) {
	var e LedgerEntry
	if v, ok := vals["positive"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return LedgerEntry{}, fmt.Errorf("parse positive %q: %w", v, err)
		}
		e.Positive = n
	}
	if v, ok := vals["total"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return LedgerEntry{}, fmt.Errorf("parse total %q: %w", v, err)
		}
		e.Total = n
	}
	return e, nil
}
