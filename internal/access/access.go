// Package access derives roles from email allow-lists and invite history.
package access

import (
	"strings"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
)

// Plan identifiers. PlanFree is reported for users without a chosen plan.
const (
	PlanFree      = "free"
	PlanMonthly   = "monthly"
	PlanQuarterly = "quarterly"
	PlanAnnual    = "annual"
)

// Resolver maps an account to its role. It is safe for concurrent use once built.
type Resolver struct {
	admins  map[string]struct{}
	testers map[string]struct{}
}

// NewResolver builds a resolver from admin and tester allow-lists.
func NewResolver(adminEmails, testerEmails []string) *Resolver {
	return &Resolver{admins: toSet(adminEmails), testers: toSet(testerEmails)}
}

// Resolve returns admin for allow-listed admins, tester for allow-listed testers or anyone who
// redeemed an invite code, and user otherwise.
func (r *Resolver) Resolve(email, usedInviteCode string) domain.Role {
	if r.IsAdminEmail(email) {
		return domain.RoleAdmin
	}
	if r.IsTesterEmail(email) || strings.TrimSpace(usedInviteCode) != "" {
		return domain.RoleTester
	}
	return domain.RoleUser
}

// ResolveUser is Resolve applied to a stored account.
func (r *Resolver) ResolveUser(user *domain.User) domain.Role {
	return r.Resolve(user.Email, user.UsedInviteCode())
}

func (r *Resolver) IsAdminEmail(email string) bool {
	_, ok := r.admins[canonical(email)]
	return ok
}

func (r *Resolver) IsTesterEmail(email string) bool {
	_, ok := r.testers[canonical(email)]
	return ok
}

// TesterEmails returns the canonical tester allow-list.
func (r *Resolver) TesterEmails() []string {
	out := make([]string, 0, len(r.testers))
	for email := range r.testers {
		out = append(out, email)
	}
	return out
}

// HasPremiumAccess reports whether the role unlocks all features without payment.
func HasPremiumAccess(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleTester
}

// CanAccessAdminPanel reports whether the role may use admin endpoints.
func CanAccessAdminPanel(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// PlanFor returns the effective plan. Premium roles always get the annual plan; everyone else keeps
// the plan chosen at onboarding, or free when none was chosen.
func PlanFor(role domain.Role, chosen string) string {
	if HasPremiumAccess(role) {
		return PlanAnnual
	}
	if chosen == "" {
		return PlanFree
	}
	return chosen
}

// CanonicalEmail lowercases and trims an email for comparison and storage.
func CanonicalEmail(email string) string {
	return canonical(email)
}

func canonical(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if c := canonical(e); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}
