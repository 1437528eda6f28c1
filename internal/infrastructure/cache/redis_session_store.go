package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/delivery/storefront/internal/domain/session"
	"github.com/redis/go-redis/v9"
)

const (
	fieldToken     = "token"
	fieldUser      = "user"
	fieldExpiresAt = "expires_at"
	fieldRedirect  = "redirect"
	fieldPending   = "pending"
)

// expireScript clears token and user only if a token is present, so that
// exactly one of several concurrent callers sees 1 and records the redirect.
var expireScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'token') == 1 then
  redis.call('HDEL', KEYS[1], 'token', 'user', 'expires_at')
  if ARGV[1] ~= '' then
    redis.call('HSET', KEYS[1], 'redirect', ARGV[1])
  end
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  return 1
end
return 0
`)

// takeScript reads and deletes one hash field atomically
var takeScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if v then
  redis.call('HDEL', KEYS[1], ARGV[1])
  return v
end
return false
`)

// RedisSessionStore implements session.Store with one Redis hash per browser.
// This is suitable for deployments where several storefront instances
// share sessions.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis client
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix + "session:",
		ttl:       ttl,
	}
}

func (s *RedisSessionStore) key(id string) string {
	return s.keyPrefix + id
}

// Load returns the record for the browser and refreshes its idle TTL
func (s *RedisSessionStore) Load(ctx context.Context, id string) (session.Record, error) {
	key := s.key(id)
	var fields *redis.MapStringStringCmd
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		fields = p.HGetAll(ctx, key)
		p.PExpire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return session.Record{}, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeRecord(fields.Val())
}

func decodeRecord(fields map[string]string) (session.Record, error) {
	var rec session.Record
	if len(fields) == 0 {
		return rec, nil
	}
	rec.Redirect = fields[fieldRedirect]

	if raw := fields[fieldPending]; raw != "" {
		var dish session.PendingDish
		if err := json.Unmarshal([]byte(raw), &dish); err != nil {
			return rec, fmt.Errorf("failed to decode pending dish: %w", err)
		}
		rec.PendingDish = &dish
	}

	token, rawUser := fields[fieldToken], fields[fieldUser]
	if token == "" || rawUser == "" {
		return rec, nil
	}
	var user session.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return rec, fmt.Errorf("failed to decode session user: %w", err)
	}
	rec.Session = session.Session{Token: token, User: &user}
	if ms, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64); err == nil && ms > 0 {
		rec.Session.ExpiresAt = time.UnixMilli(ms)
	}
	return rec, nil
}

// Save stores the session
func (s *RedisSessionStore) Save(ctx context.Context, id string, sess session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}

	key := s.key(id)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fieldToken, sess.Token, fieldUser, string(user))
		if sess.ExpiresAt.IsZero() {
			p.HDel(ctx, key, fieldExpiresAt)
		} else {
			p.HSet(ctx, key, fieldExpiresAt, strconv.FormatInt(sess.ExpiresAt.UnixMilli(), 10))
		}
		p.PExpire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the session, reporting whether one was present
func (s *RedisSessionStore) Clear(ctx context.Context, id string) (bool, error) {
	return s.Expire(ctx, id, "")
}

// Expire clears the session and records returnTo on the transitioning call
func (s *RedisSessionStore) Expire(ctx context.Context, id, returnTo string) (bool, error) {
	n, err := expireScript.Run(ctx, s.client, []string{s.key(id)}, returnTo, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to expire session: %w", err)
	}
	return n == 1, nil
}

// SetRedirect records the post-login redirect
func (s *RedisSessionStore) SetRedirect(ctx context.Context, id, path string) error {
	return s.setField(ctx, id, fieldRedirect, path)
}

// TakeRedirect returns and removes the post-login redirect
func (s *RedisSessionStore) TakeRedirect(ctx context.Context, id string) (string, error) {
	return s.takeField(ctx, id, fieldRedirect)
}

// SetPendingDish records a dish to offer after login
func (s *RedisSessionStore) SetPendingDish(ctx context.Context, id string, dish session.PendingDish) error {
	data, err := json.Marshal(dish)
	if err != nil {
		return fmt.Errorf("failed to encode pending dish: %w", err)
	}
	return s.setField(ctx, id, fieldPending, string(data))
}

// TakePendingDish returns and removes the pending dish
func (s *RedisSessionStore) TakePendingDish(ctx context.Context, id string) (*session.PendingDish, error) {
	raw, err := s.takeField(ctx, id, fieldPending)
	if err != nil || raw == "" {
		return nil, err
	}
	var dish session.PendingDish
	if err := json.Unmarshal([]byte(raw), &dish); err != nil {
		return nil, fmt.Errorf("failed to decode pending dish: %w", err)
	}
	return &dish, nil
}

func (s *RedisSessionStore) setField(ctx context.Context, id, field, value string) error {
	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, field, value)
		p.PExpire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set session %s: %w", field, err)
	}
	return nil
}

func (s *RedisSessionStore) takeField(ctx context.Context, id, field string) (string, error) {
	v, err := takeScript.Run(ctx, s.client, []string{s.key(id)}, field).Text()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to take session %s: %w", field, err)
	}
	return v, nil
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

var _ session.Store = (*RedisSessionStore)(nil)
