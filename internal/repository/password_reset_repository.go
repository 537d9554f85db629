package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// PasswordResetRepository stores single-use reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	// Consume marks an unexpired, unused token as used and returns it.
	Consume(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error)
	PurgeStale(ctx context.Context, now time.Time) (int64, error)
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository returns a Postgres-backed implementation.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	if r.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const query = `
        INSERT INTO password_reset_tokens (user_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, token.UserID, token.Token, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
}

func (r *passwordResetRepository) Consume(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	const query = `
        UPDATE password_reset_tokens SET used_at=$2
        WHERE token=$1 AND used_at IS NULL AND expires_at > $2
        RETURNING id, user_id, token, expires_at, used_at, created_at`

	var prt domain.PasswordResetToken
	err := r.pool.QueryRow(ctx, query, token, now).Scan(
		&prt.ID,
		&prt.UserID,
		&prt.Token,
		&prt.ExpiresAt,
		&prt.UsedAt,
		&prt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prt, nil
}

// PurgeStale deletes tokens that are used or expired.
func (r *passwordResetRepository) PurgeStale(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, apperrors.ErrNotConfigured
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE used_at IS NOT NULL OR expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
