package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/mente-aberta-api/internal/domain"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// FeedbackFilter captures admin query parameters.
type FeedbackFilter struct {
	Status *domain.FeedbackStatus
	Type   *domain.FeedbackType
	Limit  int
	Offset int
}

// FeedbackRepository stores user feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
	UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository returns a Postgres-backed implementation.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

const feedbackColumns = `id, user_id, user_email, type, message, rating, status, created_at, updated_at`

func scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := row.Scan(
		&fb.ID,
		&fb.UserID,
		&fb.UserEmail,
		&fb.Type,
		&fb.Message,
		&fb.Rating,
		&fb.Status,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	if r.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const query = `
        INSERT INTO feedback (user_id, user_email, type, message, rating, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		feedback.UserID,
		feedback.UserEmail,
		feedback.Type,
		feedback.Message,
		feedback.Rating,
		feedback.Status,
	).Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt)
}

func (r *feedbackRepository) List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `SELECT ` + feedbackColumns + ` FROM feedback`
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *fb)
	}
	return result, rows.Err()
}

func (r *feedbackRepository) UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) (*domain.Feedback, error) {
	if r.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	query := `UPDATE feedback SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + feedbackColumns
	return scanFeedback(r.pool.QueryRow(ctx, query, status, id))
}
