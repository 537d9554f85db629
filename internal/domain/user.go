package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Role is the access tier derived from an account's email and invite history. It is never stored.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTester Role = "tester"
	RoleUser   Role = "user"
)

// User is an app account.
type User struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   string
	Status         UserStatus
	InviteCodeUsed *string
	InviteUsedAt   *time.Time
	Age            *int
	Goals          []string
	Plan           string
	OnboardedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InviteRedeemed reports whether the account has consumed an invite code.
func (u *User) InviteRedeemed() bool {
	return u.InviteCodeUsed != nil && *u.InviteCodeUsed != ""
}

// UsedInviteCode returns the redeemed code or an empty string.
func (u *User) UsedInviteCode() string {
	if u.InviteCodeUsed == nil {
		return ""
	}
	return *u.InviteCodeUsed
}
