package invite

import (
	"errors"
	"time"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
)

var (
	ErrNotFound        = errors.New("invite code not found")
	ErrDisabled        = errors.New("invite code disabled")
	ErrExpired         = errors.New("invite code expired")
	ErrExhausted       = errors.New("invite code usage limit reached")
	ErrAlreadyRedeemed = errors.New("an invite code was already redeemed for this account")
)

// Reason returns the stable machine-readable reason for a validation error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrExhausted):
		return "exhausted"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "already_redeemed"
	}
	return ""
}

// Check decides whether a stored code is usable at now. Checks run in order: active, expiry, usage.
// A nil code is reported as not found.
func Check(code *domain.InviteCode, now time.Time, globalCap int) error {
	if code == nil {
		return ErrNotFound
	}
	if !code.IsActive {
		return ErrDisabled
	}
	if code.ExpiresAt != nil && now.After(*code.ExpiresAt) {
		return ErrExpired
	}
	if code.CurrentUses >= code.EffectiveCap(globalCap) {
		return ErrExhausted
	}
	return nil
}
