package evolve

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"missionforge/internal/classify"
)

const patternKeyPrefix = "missionforge.patterns:"

// RedisPatternStore persists pattern memory in a Redis hash per domain,
// keyed by record id. Use it when pattern learnings must survive the
// process.
type RedisPatternStore struct {
	rdb *redis.Client
}

func NewRedisPatternStore(url string) (*RedisPatternStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return &RedisPatternStore{rdb: redis.NewClient(opt)}, nil
}

func NewRedisPatternStoreFromClient(rdb *redis.Client) *RedisPatternStore {
	return &RedisPatternStore{rdb: rdb}
}

func (s *RedisPatternStore) List(ctx context.Context, domain classify.Domain) ([]PatternRecord, error) {
	vals, err := s.rdb.HGetAll(ctx, patternKeyPrefix+string(domain)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]PatternRecord, 0, len(vals))
	for _, raw := range vals {
		var rec PatternRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisPatternStore) Put(ctx context.Context, rec PatternRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, patternKeyPrefix+string(rec.Domain), rec.ID, b).Err()
}

func (s *RedisPatternStore) Close() error { return s.rdb.Close() }
