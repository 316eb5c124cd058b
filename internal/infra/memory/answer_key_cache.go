package memory

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-engine/internal/app"
)

// AnswerKeyCache caches correct option ids per question with TTL to avoid repeated
// store hits while scoring. Unknown questions are never cached.
type AnswerKeyCache struct {
	loader app.AnswerKeyRepository
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedKey
}

type cachedKey struct {
	optionID  string
	expiresAt time.Time
}

func NewAnswerKeyCache(loader app.AnswerKeyRepository, ttl time.Duration) *AnswerKeyCache {
	return NewAnswerKeyCacheWithClock(loader, ttl, time.Now)
}

// NewAnswerKeyCacheWithClock is used by tests to control expiry.
func NewAnswerKeyCacheWithClock(loader app.AnswerKeyRepository, ttl time.Duration, clock func() time.Time) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
	}
}

func (c *AnswerKeyCache) FindAnswerKeysByQuestionIDs(ctx context.Context, questionIDs []string) (map[string]string, error) {
	now := c.clock()
	keys := make(map[string]string, len(questionIDs))
	var missing []string

	c.mu.RLock()
	for _, id := range questionIDs {
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			keys[id] = entry.optionID
			continue
		}
		missing = append(missing, id)
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return keys, nil
	}

	sort.Strings(missing)
	result, err, _ := c.sf.Do(strings.Join(missing, ","), func() (interface{}, error) {
		loaded, err := c.loader.FindAnswerKeysByQuestionIDs(ctx, missing)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		for id, optionID := range loaded {
			c.cache[id] = cachedKey{
				optionID:  optionID,
				expiresAt: now.Add(c.ttlWithJitterLocked()),
			}
		}
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	for id, optionID := range result.(map[string]string) {
		keys[id] = optionID
	}
	return keys, nil
}

func (c *AnswerKeyCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
