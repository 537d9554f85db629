package worker

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

const housekeepingTimeout = time.Minute

// Housekeeper disables expired invite codes and purges stale reset tokens.
type Housekeeper struct {
	codes  repository.InviteCodeRepository
	resets repository.PasswordResetRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewHousekeeper constructs the job.
func NewHousekeeper(codes repository.InviteCodeRepository, resets repository.PasswordResetRepository, logger *zap.Logger) *Housekeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Housekeeper{codes: codes, resets: resets, logger: logger, now: time.Now}
}

// RunOnce performs one cleanup pass. Both steps run even if the first fails.
func (h *Housekeeper) RunOnce(ctx context.Context) error {
	now := h.now()
	var errs []error

	disabled, err := h.codes.DeactivateExpired(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	purged, err := h.resets.PurgeStale(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}

	h.logger.Info("housekeeping pass",
		zap.Int64("invites_disabled", disabled),
		zap.Int64("reset_tokens_purged", purged),
	)
	return errors.Join(errs...)
}

// StartHousekeeping schedules the job. The returned cron must be stopped on shutdown; it is nil
// when housekeeping is disabled.
func StartHousekeeping(cfg config.HousekeepingConfig, h *Housekeeper, logger *zap.Logger) (*cron.Cron, error) {
	if !cfg.Enabled || h == nil {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), housekeepingTimeout)
		defer cancel()
		if err := h.RunOnce(ctx); err != nil {
			if errors.Is(err, apperrors.ErrNotConfigured) {
				return
			}
			logger.Warn("housekeeping failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("housekeeping scheduled", zap.String("schedule", cfg.Schedule))
	return c, nil
}
