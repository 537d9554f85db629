package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// TesterFilter narrows the admin testers listing.
type TesterFilter struct {
	// Emails are allow-listed addresses that count as testers without a redeemed code.
	Emails []string
	Status *domain.UserStatus
	Limit  int
	Offset int
}

// ProfileUpdate holds onboarding answers. An empty Name keeps the stored one and OnboardedAt
// only applies when the account has not been onboarded yet.
type ProfileUpdate struct {
	Name        string
	Age         *int
	Goals       []string
	Plan        string
	OnboardedAt time.Time
}

// UserRepository defines persistence access for accounts. Each write touches only its own
// columns; status is written by SetStatus alone.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error)
	ListTesters(ctx context.Context, filter TesterFilter) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, status, invite_code_used, invite_used_at, age, goals, plan, onboarded_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Status,
		&user.InviteCodeUsed,
		&user.InviteUsedAt,
		&user.Age,
		&user.Goals,
		&user.Plan,
		&user.OnboardedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if r.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const query = `
        INSERT INTO users (email, name, password_hash, status, goals, plan)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Status,
		goalsOrEmpty(user.Goals),
		user.Plan,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `
        UPDATE users
        SET name = COALESCE(NULLIF($1, ''), name),
            age = $2,
            goals = $3,
            plan = $4,
            onboarded_at = COALESCE(onboarded_at, $5),
            updated_at = NOW()
        WHERE id = $6
        RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query,
		update.Name,
		update.Age,
		goalsOrEmpty(update.Goals),
		update.Plan,
		update.OnboardedAt,
		id,
	))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if r.pool == nil {
		return apperrors.ErrNotConfigured
	}
	cmd, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `UPDATE users SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, status, id))
}

func (r *userRepository) ListTesters(ctx context.Context, filter TesterFilter) ([]domain.User, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	emails := filter.Emails
	if emails == nil {
		emails = []string{}
	}
	args := []any{emails}
	query := `SELECT ` + userColumns + `
        FROM users
        WHERE (invite_code_used IS NOT NULL OR LOWER(email) = ANY($1))`
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	query += " ORDER BY COALESCE(invite_used_at, created_at) DESC"
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func goalsOrEmpty(goals []string) []string {
	if goals == nil {
		return []string{}
	}
	return goals
}
