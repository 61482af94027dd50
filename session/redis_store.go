package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/swclient/claims"
	"github.com/redis/go-redis/v9"
)

const minKeyTTL = time.Second

// ExpiredRetention is how long both keys outlive the token's exp claim. The
// pair must still be readable after expiry so the client's expiry check can
// retire it and signal the login boundary; Redis only reaps abandoned pairs.
const ExpiredRetention = 24 * time.Hour

// RedisStore persists the Session under two Redis keys written and removed in
// one transaction. When the token carries an exp claim both keys share a TTL
// that ends ExpiredRetention after that expiry.
type RedisStore struct {
	redis    redis.UniversalClient
	tokenKey string
	userKey  string
	now      func() time.Time
}

// NewRedisStore returns a RedisStore using keys "<prefix>access_token" and
// "<prefix>user".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		redis:    client,
		tokenKey: prefix + DefaultTokenKey,
		userKey:  prefix + DefaultUserKey,
		now:      time.Now,
	}
}

// Load reads both keys with one MGET.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	vals, err := r.redis.MGet(ctx, r.tokenKey, r.userKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	token, tokenOK := vals[0].(string)
	user, userOK := vals[1].(string)
	if !tokenOK && !userOK {
		return nil, ErrNoSession
	}
	if !tokenOK || !userOK {
		return nil, r.purge(ctx)
	}

	u, err := DecodeUser([]byte(user))
	if err != nil {
		return nil, r.purge(ctx)
	}
	s := &Session{Token: token, User: u}
	if s.Validate() != nil {
		return nil, r.purge(ctx)
	}
	return s, nil
}

// Save writes both keys inside MULTI/EXEC.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := EncodeUser(s.User)
	if err != nil {
		return err
	}
	ttl := r.ttlFor(s.Token)

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.userKey, data, ttl)
		pipe.Set(ctx, r.tokenKey, s.Token, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear deletes both keys in one command. Missing keys are not an error.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.redis.Del(ctx, r.tokenKey, r.userKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping reports the round-trip latency to Redis.
func (r *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}

func (r *RedisStore) purge(ctx context.Context) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}
	return ErrNoSession
}

func (r *RedisStore) ttlFor(token string) time.Duration {
	exp, ok, err := claims.ExpiresAt(token)
	if err != nil || !ok {
		return 0
	}
	ttl := exp.Sub(r.now()) + ExpiredRetention
	if ttl < minKeyTTL {
		return minKeyTTL
	}
	return ttl
}
