package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

var (
	// ErrInviteNotConsumed means the conditional increment matched no usable row.
	ErrInviteNotConsumed = errors.New("invite code not consumed")
	// ErrUserAlreadyRedeemed means the user row already records a redeemed code.
	ErrUserAlreadyRedeemed = errors.New("user already redeemed an invite code")
)

// InviteCodeFilter narrows admin listings.
type InviteCodeFilter struct {
	Active *bool
	Limit  int
	Offset int
}

// InviteCodeRepository persists invite codes.
type InviteCodeRepository interface {
	Create(ctx context.Context, code *domain.InviteCode) error
	GetByCode(ctx context.Context, code string) (*domain.InviteCode, error)
	List(ctx context.Context, filter InviteCodeFilter) ([]domain.InviteCode, error)
	SetActive(ctx context.Context, code string, active bool) (*domain.InviteCode, error)
	// Redeem increments the usage counter when the code is still usable at now and records the
	// code on the user row. Both writes commit together or not at all.
	Redeem(ctx context.Context, code, userID string, usageCap int, now time.Time) (*domain.InviteCode, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type inviteCodeRepository struct {
	pool *pgxpool.Pool
}

// NewInviteCodeRepository returns a Postgres-backed implementation. A nil pool refuses every call.
func NewInviteCodeRepository(pool *pgxpool.Pool) InviteCodeRepository {
	return &inviteCodeRepository{pool: pool}
}

const inviteColumns = `code, created_by, expires_at, max_uses, current_uses, is_active, description, created_at, updated_at`

func scanInvite(row pgx.Row) (*domain.InviteCode, error) {
	var code domain.InviteCode
	if err := row.Scan(
		&code.Code,
		&code.CreatedBy,
		&code.ExpiresAt,
		&code.MaxUses,
		&code.CurrentUses,
		&code.IsActive,
		&code.Description,
		&code.CreatedAt,
		&code.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *inviteCodeRepository) Create(ctx context.Context, code *domain.InviteCode) error {
	if r.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const query = `
        INSERT INTO invite_codes (code, created_by, expires_at, max_uses, current_uses, is_active, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		code.Code,
		code.CreatedBy,
		code.ExpiresAt,
		code.MaxUses,
		code.CurrentUses,
		code.IsActive,
		code.Description,
	).Scan(&code.CreatedAt, &code.UpdatedAt)
}

// GetByCode matches on the uppercased code. Callers pass a normalized value.
func (r *inviteCodeRepository) GetByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `SELECT ` + inviteColumns + ` FROM invite_codes WHERE UPPER(code) = UPPER($1)`
	return scanInvite(r.pool.QueryRow(ctx, query, code))
}

func (r *inviteCodeRepository) List(ctx context.Context, filter InviteCodeFilter) ([]domain.InviteCode, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `SELECT ` + inviteColumns + ` FROM invite_codes`
	args := []any{}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" WHERE is_active=$%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InviteCode
	for rows.Next() {
		code, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *code)
	}
	return result, rows.Err()
}

func (r *inviteCodeRepository) SetActive(ctx context.Context, code string, active bool) (*domain.InviteCode, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `
        UPDATE invite_codes SET is_active=$1, updated_at=NOW()
        WHERE UPPER(code) = UPPER($2)
        RETURNING ` + inviteColumns
	return scanInvite(r.pool.QueryRow(ctx, query, active, code))
}

func (r *inviteCodeRepository) Redeem(ctx context.Context, code, userID string, usageCap int, now time.Time) (*domain.InviteCode, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}

	const claimUser = `
        UPDATE users SET invite_code_used=$1, invite_used_at=$2, updated_at=NOW()
        WHERE id=$3 AND invite_code_used IS NULL`

	// The cap check lives in the WHERE clause so concurrent redemptions serialize on the row lock
	// and the loser sees zero rows instead of writing a stale count.
	increment := `
        UPDATE invite_codes SET current_uses = current_uses + 1, updated_at = NOW()
        WHERE UPPER(code) = UPPER($1)
          AND is_active
          AND (expires_at IS NULL OR expires_at >= $2)
          AND current_uses < CASE WHEN $3::int > 0 AND $3::int < max_uses THEN $3::int ELSE max_uses END
        RETURNING ` + inviteColumns

	var redeemed *domain.InviteCode
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		updated, err := scanInvite(tx.QueryRow(ctx, increment, code, now, usageCap))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInviteNotConsumed
		}
		if err != nil {
			return err
		}

		cmd, err := tx.Exec(ctx, claimUser, updated.Code, now, userID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrUserAlreadyRedeemed
		}
		redeemed = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

func (r *inviteCodeRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, apperrors.ErrNotConfigured
	}
	const query = `
        UPDATE invite_codes SET is_active=FALSE, updated_at=NOW()
        WHERE is_active AND expires_at IS NOT NULL AND expires_at < $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
