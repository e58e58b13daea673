package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"userhub/internal/model"
	"userhub/pkg/metrics"
)

type RefreshTokenRepository struct {
	db Querier
}

func NewRefreshTokenRepository(db Querier) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) WithTx(tx pgx.Tx) RefreshTokenStore {
	return &RefreshTokenRepository{db: tx}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *model.RefreshToken) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "refresh_tokens", time.Since(start)) }()

	query := `
        INSERT INTO refresh_tokens (user_id, token, device_info, ip_address, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		t.UserID, t.Token, t.DeviceInfo, t.IPAddress, t.ExpiresAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// FindByUserAndToken returns the stored token, or nil when absent.
func (r *RefreshTokenRepository) FindByUserAndToken(ctx context.Context, userID int, token string) (*model.RefreshToken, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "refresh_tokens", time.Since(start)) }()

	query := `
        SELECT id, user_id, token, device_info, ip_address, expires_at, created_at
        FROM refresh_tokens
        WHERE user_id = $1 AND token = $2
    `
	var t model.RefreshToken
	err := r.db.QueryRow(ctx, query, userID, token).Scan(
		&t.ID, &t.UserID, &t.Token, &t.DeviceInfo, &t.IPAddress, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(err)
	}
	return &t, nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "refresh_tokens", time.Since(start)) }()

	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// DeleteExpired removes tokens past their expiry and reports how many.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "refresh_tokens", time.Since(start)) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}
