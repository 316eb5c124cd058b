package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quiz-engine/internal/domain"
)

const leaderboardKeyPrefix = "quiz:leaderboard:"

// LeaderboardCache keeps ranked leaderboards as JSON blobs with a short TTL so
// repeated reads across instances skip the attempt scan.
//
//	SET quiz:leaderboard:{window}:{subject} <json> EX ttl
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *LeaderboardCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardCache{client: client, ttl: ttl, logger: logger}
}

func (c *LeaderboardCache) Get(ctx context.Context, window domain.LeaderboardWindow, subject string) ([]domain.LeaderboardEntry, bool) {
	data, err := c.client.Get(ctx, c.key(window, subject)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("leaderboard cache entry corrupt", zap.String("window", string(window)), zap.Error(err))
		return nil, false
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, true
}

// Set is best-effort; failures only cost a recomputation.
func (c *LeaderboardCache) Set(ctx context.Context, window domain.LeaderboardWindow, subject string, entries []domain.LeaderboardEntry) {
	if c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("leaderboard cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(window, subject), data, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}
}

// Invalidate deletes every cached leaderboard. Failures are logged; stale entries
// then expire with their TTL.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	var keys []string
	iter := c.client.Scan(ctx, 0, leaderboardKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("leaderboard cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("leaderboard cache invalidate failed", zap.Error(err))
	}
}

func (c *LeaderboardCache) key(window domain.LeaderboardWindow, subject string) string {
	return leaderboardKeyPrefix + string(window) + ":" + subject
}
