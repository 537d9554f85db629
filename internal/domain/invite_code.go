package domain

import "time"

// InviteCode gates registration during the test phase. Codes are never deleted; they are disabled.
type InviteCode struct {
	Code        string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   *time.Time
	MaxUses     int
	CurrentUses int
	IsActive    bool
	Description string
}

// EffectiveCap returns the usage ceiling after applying a global cap. A cap <= 0 leaves MaxUses as is.
func (c *InviteCode) EffectiveCap(globalCap int) int {
	if globalCap > 0 && globalCap < c.MaxUses {
		return globalCap
	}
	return c.MaxUses
}

// RemainingUses reports how many consumptions are left under the given global cap.
func (c *InviteCode) RemainingUses(globalCap int) int {
	remaining := c.EffectiveCap(globalCap) - c.CurrentUses
	if remaining < 0 {
		return 0
	}
	return remaining
}
