package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// probeTimeout bounds the connectivity check made at construction.
const probeTimeout = 3 * time.Second

// CacheBackend implements Backend on a Redis server. When the server cannot
// be reached at construction it serves every call from a MemoryBackend for
// the rest of the process lifetime.
type CacheBackend struct {
	client   *redis.Client
	fallback *MemoryBackend
	log      logrus.FieldLogger
}

// NewCacheBackend connects to the Redis server at redisURL. An unreachable
// server is not an error; a malformed URL is.
func NewCacheBackend(ctx context.Context, redisURL string, opts ...Option) (*CacheBackend, error) {
	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	ropts.DialTimeout = probeTimeout
	ropts.ReadTimeout = 3 * time.Second
	ropts.WriteTimeout = 3 * time.Second

	o := newOptions(opts)
	c := &CacheBackend{log: o.logger.WithField("backend", "redis")}

	client := redis.NewClient(ropts)
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		c.log.WithField("addr", ropts.Addr).WithError(err).Warn("redis unreachable, using in-process memory")
		c.fallback = NewMemoryBackend(opts...)
		return c, nil
	}

	c.log.WithField("addr", ropts.Addr).Info("redis connected")
	c.client = client
	return c, nil
}

// Fallback reports whether calls are served from process memory.
func (c *CacheBackend) Fallback() bool {
	return c.fallback != nil
}

// Name implements Backend.
func (c *CacheBackend) Name() string {
	if c.fallback != nil {
		return c.fallback.Name()
	}
	return "redis"
}

// Set implements Backend.
func (c *CacheBackend) Set(ctx context.Context, key string, value any, expire time.Duration) {
	if c.fallback != nil {
		c.fallback.Set(ctx, key, value, expire)
		return
	}
	v, err := encode(value)
	if err == nil {
		if expire < 0 {
			expire = 0
		}
		err = c.client.Set(ctx, nsKey(key), string(v), expire).Err()
	}
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": "set", "key": key}).WithError(err).Error("write dropped")
	}
}

// Get implements Backend.
func (c *CacheBackend) Get(ctx context.Context, key string) (Value, bool) {
	if c.fallback != nil {
		return c.fallback.Get(ctx, key)
	}
	payload, err := c.client.Get(ctx, nsKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithFields(logrus.Fields{"op": "get", "key": key}).WithError(err).Error("read failed")
		}
		return nil, false
	}
	return rawValue([]byte(payload)), true
}

// Push implements Backend. LPUSH and LTRIM run inside one MULTI/EXEC.
func (c *CacheBackend) Push(ctx context.Context, key string, value any, maxItems int) {
	if c.fallback != nil {
		c.fallback.Push(ctx, key, value, maxItems)
		return
	}
	maxItems = maxItemsOrDefault(maxItems)
	v, err := encode(value)
	if err == nil {
		k := nsKey(key)
		_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LPush(ctx, k, string(v))
			pipe.LTrim(ctx, k, 0, int64(maxItems-1))
			return nil
		})
	}
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": "push", "key": key}).WithError(err).Error("write dropped")
	}
}

// GetList implements Backend. Entries that are not valid JSON are skipped.
func (c *CacheBackend) GetList(ctx context.Context, key string, limit int) []Value {
	if c.fallback != nil {
		return c.fallback.GetList(ctx, key, limit)
	}
	limit = limitOrDefault(limit)
	payloads, err := c.client.LRange(ctx, nsKey(key), 0, int64(limit-1)).Result()
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": "get_list", "key": key}).WithError(err).Error("read failed")
		return []Value{}
	}
	items := make([]Value, 0, len(payloads))
	for _, p := range payloads {
		if !jsonValid(p) {
			c.log.WithFields(logrus.Fields{"op": "get_list", "key": key}).Warn("skipping malformed entry")
			continue
		}
		items = append(items, Value(p))
	}
	return items
}

// Clear implements Backend. Only keys under Namespace are removed.
func (c *CacheBackend) Clear(ctx context.Context) {
	if c.fallback != nil {
		c.fallback.Clear(ctx)
		return
	}
	removed, err := c.clear(ctx)
	if err != nil {
		c.log.WithField("op", "clear").WithError(err).Error("clear failed")
		return
	}
	c.log.WithField("keys", removed).Info("cleared all data")
}

func (c *CacheBackend) clear(ctx context.Context) (int, error) {
	var batch []string
	removed := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	iter := c.client.Scan(ctx, 0, Namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan keys: %w", err)
	}
	return removed, flush()
}

// Close implements Backend.
func (c *CacheBackend) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
