package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"userhub/internal/model"
	"userhub/pkg/metrics"
)

type PasswordResetRepository struct {
	db Querier
}

func NewPasswordResetRepository(db Querier) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) WithTx(tx pgx.Tx) PasswordResetStore {
	return &PasswordResetRepository{db: tx}
}

func (r *PasswordResetRepository) Create(ctx context.Context, t *model.PasswordResetToken) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "password_reset_tokens", time.Since(start)) }()

	query := `
        INSERT INTO password_reset_tokens (user_id, token, retry_count, expires_at, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		t.UserID, t.Token, t.RetryCount, t.ExpiresAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// FindByToken returns the reset token matching the OTP, or nil.
func (r *PasswordResetRepository) FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "password_reset_tokens", time.Since(start)) }()

	query := `
        SELECT id, user_id, token, retry_count, expires_at, created_at
        FROM password_reset_tokens
        WHERE token = $1
    `
	var t model.PasswordResetToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&t.ID, &t.UserID, &t.Token, &t.RetryCount, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(err)
	}
	return &t, nil
}

// FindByUserID returns the newest reset token for a user, or nil.
func (r *PasswordResetRepository) FindByUserID(ctx context.Context, userID int) (*model.PasswordResetToken, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "password_reset_tokens", time.Since(start)) }()

	query := `
        SELECT id, user_id, token, retry_count, expires_at, created_at
        FROM password_reset_tokens
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `
	var t model.PasswordResetToken
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&t.ID, &t.UserID, &t.Token, &t.RetryCount, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(err)
	}
	return &t, nil
}

func (r *PasswordResetRepository) IncrementRetryCount(ctx context.Context, id int) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "password_reset_tokens", time.Since(start)) }()

	_, err := r.db.Exec(ctx,
		`UPDATE password_reset_tokens SET retry_count = retry_count + 1 WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

func (r *PasswordResetRepository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "password_reset_tokens", time.Since(start)) }()

	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

func (r *PasswordResetRepository) DeleteByUserID(ctx context.Context, userID int) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "password_reset_tokens", time.Since(start)) }()

	_, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// DeleteExpired removes reset tokens past their expiry and reports how many.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "password_reset_tokens", time.Since(start)) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}
