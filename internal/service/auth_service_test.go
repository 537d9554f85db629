package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	"github.com/spec-kit/mente-aberta-api/internal/events"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

func TestSignUpAndSignIn(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	res, err := f.auth.SignUp(ctx, SignUpInput{Name: "Ana", Email: " Ana@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", res.Profile.User.Email)
	require.Equal(t, domain.RoleUser, res.Profile.Role)
	require.Equal(t, "free", res.Profile.Plan)
	require.False(t, res.Profile.InviteRedeemed)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.SignUp(ctx, SignUpInput{Email: "ana@example.com", Password: "another-pass"})
		require.Equal(t, http.StatusConflict, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("sign in", func(t *testing.T) {
		res, err := f.auth.SignIn(ctx, "ANA@example.com", "s3cret-pass")
		require.NoError(t, err)
		claims, err := f.tokens.ParseToken(res.Session.Token)
		require.NoError(t, err)
		require.Equal(t, res.Profile.User.ID, claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.SignIn(ctx, "ana@example.com", "nope")
		require.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		_, err := f.auth.SignIn(ctx, "ghost@example.com", "nope")
		require.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
	})
}

func TestSignInResolvesRoleFromAllowLists(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	for email, role := range map[string]domain.Role{
		"admin@x.com":  domain.RoleAdmin,
		"beta@x.com":   domain.RoleTester,
		"random@x.com": domain.RoleUser,
	} {
		_, err := f.auth.SignUp(ctx, SignUpInput{Email: email, Password: "password123"})
		require.NoError(t, err)
		res, err := f.auth.SignIn(ctx, email, "password123")
		require.NoError(t, err)
		require.Equal(t, role, res.Profile.Role, email)
		require.Equal(t, role, res.Session.Role, email)
	}
}

func TestSignInRefusesSuspendedAccount(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "x@x.com", Password: "password123"})
	require.NoError(t, err)
	_, err = memUsers{f.store}.SetStatus(ctx, res.Profile.User.ID, domain.UserStatusSuspended)
	require.NoError(t, err)

	_, err = f.auth.SignIn(ctx, "x@x.com", "password123")
	require.Equal(t, http.StatusForbidden, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSignOutRevokesToken(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "x@x.com", Password: "password123"})
	require.NoError(t, err)

	claims, err := f.tokens.ParseToken(res.Session.Token)
	require.NoError(t, err)
	require.False(t, f.denylist.IsRevoked(ctx, claims.ID))

	require.NoError(t, f.auth.SignOut(ctx, claims))
	require.True(t, f.denylist.IsRevoked(ctx, claims.ID))
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	f.store.addCode(domain.InviteCode{Code: "ABC12345", MaxUses: 2, IsActive: true})
	user := f.store.addUser("random@x.com")

	profile, err := f.auth.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, profile.Role)

	_, err = f.invites.Redeem(ctx, user, "ABC12345")
	require.NoError(t, err)

	profile, err = f.auth.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleTester, profile.Role)
	require.True(t, profile.InviteRedeemed)
	require.Equal(t, "annual", profile.Plan)

	_, err = f.auth.CurrentUser(ctx, "missing")
	require.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, SignUpInput{Email: "x@x.com", Password: "old-password"})
	require.NoError(t, err)

	require.NoError(t, f.auth.ResetPassword(ctx, "nobody@x.com"))
	require.Empty(t, f.dispatcher.ofType(events.EventPasswordResetRequested))

	require.NoError(t, f.auth.ResetPassword(ctx, "X@x.com"))
	published := f.dispatcher.ofType(events.EventPasswordResetRequested)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.PasswordResetRequestedPayload)
	require.Equal(t, "x@x.com", payload.Email)

	require.NoError(t, f.auth.ConfirmPasswordReset(ctx, payload.Token, "new-password"))
	_, err = f.auth.SignIn(ctx, "x@x.com", "new-password")
	require.NoError(t, err)

	err = f.auth.ConfirmPasswordReset(ctx, payload.Token, "again-password")
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	res, err := f.auth.SignUp(ctx, SignUpInput{Email: "x@x.com", Password: "old-password"})
	require.NoError(t, err)
	id := res.Profile.User.ID

	err = f.auth.ChangePassword(ctx, id, "wrong", "new-password")
	require.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)

	require.NoError(t, f.auth.ChangePassword(ctx, id, "old-password", "new-password"))
	_, err = f.auth.SignIn(ctx, "x@x.com", "new-password")
	require.NoError(t, err)
}

func TestAuthFailsClosedWithoutBackend(t *testing.T) {
	f := newFixture(0)
	f.store.failWith = apperrors.ErrNotConfigured

	_, err := f.auth.SignIn(context.Background(), "x@x.com", "password123")
	require.Equal(t, "NOT_CONFIGURED", apperrors.ToDomainError(err).Code)

	err = f.auth.ResetPassword(context.Background(), "x@x.com")
	require.Equal(t, "NOT_CONFIGURED", apperrors.ToDomainError(err).Code)
}
