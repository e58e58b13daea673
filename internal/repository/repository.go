// Package repository translates domain operations into SQL against Postgres.
// Storage errors never leave this package in raw form: absence is signaled by
// a nil result and engine failures are wrapped into the domain taxonomy.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"userhub/internal/apperr"
	"userhub/internal/model"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can
// run standalone or inside a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore is the persistence contract for users.
type UserStore interface {
	WithTx(tx pgx.Tx) UserStore
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []int) ([]*model.User, error)
	Search(ctx context.Context, params SearchParams) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int) error
}

// RefreshTokenStore is the persistence contract for refresh tokens.
type RefreshTokenStore interface {
	WithTx(tx pgx.Tx) RefreshTokenStore
	Create(ctx context.Context, t *model.RefreshToken) error
	FindByUserAndToken(ctx context.Context, userID int, token string) (*model.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PasswordResetStore is the persistence contract for password reset OTPs.
type PasswordResetStore interface {
	WithTx(tx pgx.Tx) PasswordResetStore
	Create(ctx context.Context, t *model.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	FindByUserID(ctx context.Context, userID int) (*model.PasswordResetToken, error)
	IncrementRetryCount(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	DeleteByUserID(ctx context.Context, userID int) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// TxRunner wraps a function in a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type pgxTxRunner struct {
	db *pgxpool.Pool
}

func NewTxRunner(db *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{db: db}
}

func (r *pgxTxRunner) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.Internal(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// wrapErr converts pgx errors to domain errors. Unique violations on the
// users email index become conflicts so a register race still maps to 409.
func wrapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("user.email_already_in_use")
	}
	return apperr.Internal(err)
}
