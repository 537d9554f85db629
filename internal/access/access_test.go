package access

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"Admin@X.com"}, []string{"beta@x.com"})

	t.Run("documented examples", func(t *testing.T) {
		require.Equal(t, domain.RoleAdmin, r.Resolve("admin@x.com", ""))
		require.Equal(t, domain.RoleUser, r.Resolve("random@x.com", ""))
		require.Equal(t, domain.RoleTester, r.Resolve("random@x.com", "ABC12345"))
	})

	t.Run("admin wins over invite", func(t *testing.T) {
		require.Equal(t, domain.RoleAdmin, r.Resolve(" ADMIN@x.com ", "ABC12345"))
	})

	t.Run("allow-listed tester without invite", func(t *testing.T) {
		require.Equal(t, domain.RoleTester, r.Resolve("Beta@X.com", ""))
	})

	t.Run("blank invite code is ignored", func(t *testing.T) {
		require.Equal(t, domain.RoleUser, r.Resolve("random@x.com", "   "))
	})

	t.Run("stored user", func(t *testing.T) {
		code := "CORE0001"
		require.Equal(t, domain.RoleTester, r.ResolveUser(&domain.User{Email: "a@b.c", InviteCodeUsed: &code}))
		require.Equal(t, domain.RoleUser, r.ResolveUser(&domain.User{Email: "a@b.c"}))
	})
}

func TestPlansAndAccess(t *testing.T) {
	t.Parallel()

	require.True(t, HasPremiumAccess(domain.RoleAdmin))
	require.True(t, HasPremiumAccess(domain.RoleTester))
	require.False(t, HasPremiumAccess(domain.RoleUser))

	require.True(t, CanAccessAdminPanel(domain.RoleAdmin))
	require.False(t, CanAccessAdminPanel(domain.RoleTester))

	plans := []struct {
		role   domain.Role
		chosen string
		want   string
	}{
		{domain.RoleAdmin, "", PlanAnnual},
		{domain.RoleAdmin, PlanFree, PlanAnnual},
		{domain.RoleTester, PlanMonthly, PlanAnnual},
		{domain.RoleUser, PlanMonthly, PlanMonthly},
		{domain.RoleUser, PlanAnnual, PlanAnnual},
		{domain.RoleUser, "", PlanFree},
	}
	for _, p := range plans {
		require.Equal(t, p.want, PlanFor(p.role, p.chosen), "%s/%q", p.role, p.chosen)
	}
}
