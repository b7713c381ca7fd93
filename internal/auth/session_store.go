package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/gas-utility-service/internal/domain"
)

// ErrSessionNotFound is returned when a session was never issued, expired or was revoked.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSession is returned for tokens that fail signature, expiry or subject checks.
var ErrInvalidSession = errors.New("invalid session token")

// SessionStore keeps the server-side record of issued sessions.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Lookup(ctx context.Context, sessionID string) (int64, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, accountID int64) error
}

const (
	sessionKeyPrefix        = "session:"
	accountSessionKeyPrefix = "account_sessions:"
)

// RedisSessionStore stores sessions as keys expiring with their token, plus a
// per-account set used to revoke every session of an account at once.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a Redis-backed store.
func NewRedisSessionStore(client *redis.Client, prefix string) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) sessionKey(id string) string {
	return s.prefix + sessionKeyPrefix + id
}

func (s *RedisSessionStore) accountKey(accountID int64) string {
	return s.prefix + accountSessionKeyPrefix + strconv.FormatInt(accountID, 10)
}

// Save records the session until it expires.
func (s *RedisSessionStore) Save(ctx context.Context, session domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	accountKey := s.accountKey(session.AccountID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.ID), session.AccountID, ttl)
		pipe.SAdd(ctx, accountKey, session.ID)
		pipe.Expire(ctx, accountKey, ttl)
		return nil
	})
	return err
}

// Lookup returns the account id owning a live session.
func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (int64, error) {
	accountID, err := s.client.Get(ctx, s.sessionKey(sessionID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return accountID, nil
}

// Revoke deletes a single session.
func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	accountID, err := s.Lookup(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(sessionID))
		pipe.SRem(ctx, s.accountKey(accountID), sessionID)
		return nil
	})
	return err
}

// RevokeAll deletes every session issued to the account.
func (s *RedisSessionStore) RevokeAll(ctx context.Context, accountID int64) error {
	accountKey := s.accountKey(accountID)
	ids, err := s.client.SMembers(ctx, accountKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, accountKey)
	return s.client.Del(ctx, keys...).Err()
}

// MemorySessionStore is an in-process SessionStore for tests and local runs without Redis.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domain.Session), now: time.Now}
}

func (m *MemorySessionStore) Save(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MemorySessionStore) Lookup(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok || !m.now().Before(session.ExpiresAt) {
		return 0, ErrSessionNotFound
	}
	return session.AccountID, nil
}

func (m *MemorySessionStore) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemorySessionStore) RevokeAll(_ context.Context, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.sessions {
		if session.AccountID == accountID {
			delete(m.sessions, id)
		}
	}
	return nil
}
