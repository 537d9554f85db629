package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User   *domain.User
	Role   domain.Role
	Claims *Claims
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	resolver *access.Resolver
	revoked  RevocationChecker
}

// NewAuthMiddleware constructs middleware. revoked may be nil. The principal's role is resolved
// from the stored account on every request; the token's role claim is only used without a resolver.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, resolver *access.Resolver, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, resolver: resolver, revoked: revoked}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if m.revoked != nil && m.revoked.IsRevoked(c.UserContext(), claims.ID) {
		return apperrors.NewUnauthorized("session signed out")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return apperrors.NewForbidden("account suspended")
	}

	role := claims.Role
	if m.resolver != nil {
		role = m.resolver.ResolveUser(user)
	}
	c.Locals(principalKey, &Principal{User: user, Role: role, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// UserID returns the authenticated user id, for request logging.
func UserID(c *fiber.Ctx) (string, bool) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return "", false
	}
	return principal.User.ID, true
}
