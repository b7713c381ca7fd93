package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/gas-utility-service/internal/domain"
)

// SessionManager issues bearer tokens and keeps their server-side record in sync.
type SessionManager struct {
	tokens *TokenManager
	store  SessionStore
}

// NewSessionManager wires a token manager to a session store.
func NewSessionManager(tokens *TokenManager, store SessionStore) *SessionManager {
	return &SessionManager{tokens: tokens, store: store}
}

// Issue signs a token for the account and records the session.
func (m *SessionManager) Issue(ctx context.Context, accountID int64) (domain.Session, error) {
	session, err := m.tokens.GenerateToken(accountID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := m.store.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Resolve validates the token and confirms its session is still live. Bad
// tokens wrap ErrInvalidSession, unknown sessions ErrSessionNotFound; any other
// error comes from the session store itself.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	accountID, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if accountID != claims.AccountID {
		return nil, fmt.Errorf("%w: session does not belong to token subject", ErrInvalidSession)
	}
	return claims, nil
}

// Revoke ends a single session.
func (m *SessionManager) Revoke(ctx context.Context, sessionID string) error {
	return m.store.Revoke(ctx, sessionID)
}

// RevokeAll ends every session of the account.
func (m *SessionManager) RevokeAll(ctx context.Context, accountID int64) error {
	return m.store.RevokeAll(ctx, accountID)
}
