package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/repository"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	sessions *SessionManager
	accounts repository.AccountRepository
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionManager, accounts repository.AccountRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, accounts: accounts, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.sessions.Resolve(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
		case errors.Is(err, ErrInvalidSession):
			m.logger.Debug("rejected token", zap.Error(err))
		default:
			m.logger.Error("session lookup failed", zap.Error(err))
			return apperrors.MapError(err)
		}
		return apperrors.NewUnauthorized("invalid or expired session")
	}

	account, err := m.accounts.GetByID(c.UserContext(), claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account not found")
		}
		return apperrors.MapError(err)
	}
	if !account.IsActive {
		return apperrors.NewUnauthorized("account disabled")
	}

	c.Locals(principalKey, domain.Principal{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role(),
		SessionID: claims.ID,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(domain.Principal)
	if !ok || !principal.Authenticated() {
		return domain.Principal{}, false
	}
	return principal, true
}

// WithPrincipal stores a principal on the request; used by tests and internal callers.
func WithPrincipal(c *fiber.Ctx, principal domain.Principal) {
	c.Locals(principalKey, principal)
}
