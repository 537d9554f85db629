package domain

import "time"

// Session describes an issued access token.
type Session struct {
	Token     string
	TokenID   string
	Role      Role
	ExpiresAt time.Time
}

// PasswordResetToken is a single-use credential for resetting a password.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
