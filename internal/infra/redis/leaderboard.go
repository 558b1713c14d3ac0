package redis

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore keeps results in Redis.
// Rank is stored as:    ZADD {prefix}:rank    {percentage} {entryID}
// Entries are stored as: HSET {prefix}:entries {entryID}    {json}
type LeaderboardStore struct {
	client *redis.Client
	prefix string
}

func NewLeaderboardStore(client *redis.Client, prefix string) *LeaderboardStore {
	if prefix == "" {
		prefix = "quiz_scores"
	}
	return &LeaderboardStore{client: client, prefix: prefix}
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.entriesKey(), entry.ID, raw)
	pipe.ZAdd(ctx, s.rankKey(), redis.Z{Score: entry.Percentage, Member: entry.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	ids, err := s.client.ZRevRange(ctx, s.rankKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read rank: %w", err)
	}
	if len(ids) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	values, err := s.client.HMGet(ctx, s.entriesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// rank member without a body; skip rather than fail the whole board
			continue
		}
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", ids[i], err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *LeaderboardStore) rankKey() string {
	return s.prefix + ":rank"
}

func (s *LeaderboardStore) entriesKey() string {
	return s.prefix + ":entries"
}
