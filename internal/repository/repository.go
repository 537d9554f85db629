// Package repository holds the Postgres-backed stores. Every store built on a nil pool refuses
// work with util.ErrNotConfigured.
package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups the stores used by the API.
type Repositories struct {
	Users          UserRepository
	InviteCodes    InviteCodeRepository
	Feedback       FeedbackRepository
	PasswordResets PasswordResetRepository
}

// NewRepositories builds every store on the same pool.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:          NewUserRepository(pool),
		InviteCodes:    NewInviteCodeRepository(pool),
		Feedback:       NewFeedbackRepository(pool),
		PasswordResets: NewPasswordResetRepository(pool),
	}
}
