package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"social-todo/app/models"
)

const sessionCachePrefix = "session:"

// CachedSessionStore wraps a SessionStore with a Redis read-through cache.
// Redis failures fall back to the backing store.
type CachedSessionStore struct {
	base  SessionStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedSessionStore creates a caching wrapper. Entries live for at most ttl.
func NewCachedSessionStore(base SessionStore, client *redis.Client, ttl time.Duration) *CachedSessionStore {
	if base == nil {
		panic("services.NewCachedSessionStore: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedSessionStore{base: base, redis: client, ttl: ttl}
}

// Create starts a session in the backing store and caches it.
func (c *CachedSessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	sess, err := c.base.Create(ctx, userID, ttl)
	if err != nil {
		return nil, err
	}
	c.store(ctx, sess)
	return sess, nil
}

// Get serves the session from the cache, falling back to the backing store.
func (c *CachedSessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	if sess, ok := c.load(ctx, token); ok {
		return sess, nil
	}
	sess, err := c.base.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	c.store(ctx, sess)
	return sess, nil
}

// Destroy removes the session from the backing store, then from the cache, so a
// concurrent Get cannot repopulate the cache with the destroyed session.
func (c *CachedSessionStore) Destroy(ctx context.Context, token string) error {
	err := c.base.Destroy(ctx, token)
	c.evict(ctx, token)
	return err
}

// PurgeExpired purges the backing store. Cached entries never outlive their session.
func (c *CachedSessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return c.base.PurgeExpired(ctx, now)
}

func (c *CachedSessionStore) load(ctx context.Context, token string) (*models.Session, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, sessionCacheKey(token)).Bytes()
	if err != nil {
		return nil, false
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		c.evict(ctx, token)
		return nil, false
	}
	if sess.Expired(time.Now()) {
		c.evict(ctx, token)
		return nil, false
	}
	return &sess, true
}

func (c *CachedSessionStore) store(ctx context.Context, sess *models.Session) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	ttl := c.ttl
	if remaining := time.Until(sess.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, sessionCacheKey(sess.Token), data, ttl).Err()
}

func (c *CachedSessionStore) evict(ctx context.Context, token string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, sessionCacheKey(token)).Err()
}

func sessionCacheKey(token string) string {
	return sessionCachePrefix + token
}
