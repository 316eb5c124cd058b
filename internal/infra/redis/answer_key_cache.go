package redis

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/app"
)

// AnswerKeyCache caches correct option ids in Redis and falls back to a loader on miss.
// Keys are stored as: SET quiz:answer:{questionID} {optionID} EX ttl
type AnswerKeyCache struct {
	client *redis.Client
	loader app.AnswerKeyRepository
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader app.AnswerKeyRepository, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) FindAnswerKeysByQuestionIDs(ctx context.Context, questionIDs []string) (map[string]string, error) {
	keys, missing := c.lookup(ctx, questionIDs)
	if len(missing) == 0 {
		return keys, nil
	}

	sort.Strings(missing)
	result, err, _ := c.sf.Do(strings.Join(missing, ","), func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		cached, stillMissing := c.lookup(ctx, missing)
		if len(stillMissing) == 0 {
			return cached, nil
		}

		loaded, err := c.loader.FindAnswerKeysByQuestionIDs(ctx, stillMissing)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for id, optionID := range loaded {
			pipe.Set(ctx, answerKey(id), optionID, c.ttlWithJitter())
			cached[id] = optionID
		}
		// best-effort; the loaded keys are returned either way
		_, _ = pipe.Exec(ctx)
		return cached, nil
	})
	if err != nil {
		return nil, err
	}
	for id, optionID := range result.(map[string]string) {
		keys[id] = optionID
	}
	return keys, nil
}

// lookup reads ids with a single MGET. Redis failures are treated as misses.
func (c *AnswerKeyCache) lookup(ctx context.Context, ids []string) (map[string]string, []string) {
	keys := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return keys, nil
	}
	redisKeys := make([]string, len(ids))
	for i, id := range ids {
		redisKeys[i] = answerKey(id)
	}

	values, err := c.client.MGet(ctx, redisKeys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return keys, append([]string(nil), ids...)
	}

	var missing []string
	for i, id := range ids {
		if i < len(values) {
			if optionID, ok := values[i].(string); ok {
				keys[id] = optionID
				continue
			}
		}
		missing = append(missing, id)
	}
	return keys, missing
}

func answerKey(questionID string) string {
	return "quiz:answer:" + questionID
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
