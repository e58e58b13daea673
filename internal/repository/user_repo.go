package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"userhub/internal/model"
	"userhub/pkg/metrics"
)

// UserOrderFields is the whitelist of sortable user columns.
var UserOrderFields = map[string]bool{
	"id":         true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
	"created_at": true,
	"updated_at": true,
}

// SearchParams filters and pages a user search. Zero values mean "no filter".
type SearchParams struct {
	IDs       []int
	Email     string
	FirstName string
	LastName  string
	Page      int
	PageSize  int
	OrderBy   []OrderBy
}

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx pgx.Tx) UserStore {
	return &UserRepository{db: tx}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone,
	       created_at, updated_at, created_user_id, updated_user_id`

// Create inserts a new user and fills in its generated fields.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert", "users", time.Since(start)) }()

	query := `
        INSERT INTO users (email, password_hash, first_name, last_name, phone, created_user_id, updated_user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.CreatedUserID, u.UpdatedUserID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// FindByID returns the user, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "users", time.Since(start)) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByEmail returns the user with the given (lower-cased) email, or nil.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "users", time.Since(start)) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// FindByIDs loads a batch of users by id.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []int) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "users", time.Since(start)) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// Search applies filters, ordering, and pagination.
func (r *UserRepository) Search(ctx context.Context, params SearchParams) ([]*model.User, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("select", "users", time.Since(start)) }()

	query, args := buildUserSearchQuery(params)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// Update writes all mutable columns; callers apply partial changes to the
// loaded model before calling.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("update", "users", time.Since(start)) }()

	query := `
        UPDATE users
        SET email = $1, password_hash = $2, first_name = $3, last_name = $4,
            phone = $5, updated_user_id = $6, updated_at = NOW()
        WHERE id = $7
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.UpdatedUserID, u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return wrapErr(err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("delete", "users", time.Since(start)) }()

	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.CreatedAt, &u.UpdatedAt, &u.CreatedUserID, &u.UpdatedUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) scanAll(rows pgx.Rows) ([]*model.User, error) {
	var users []*model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
			&u.CreatedAt, &u.UpdatedAt, &u.CreatedUserID, &u.UpdatedUserID,
		)
		if err != nil {
			return nil, wrapErr(err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

// buildUserSearchQuery renders SearchParams into SQL plus positional args.
func buildUserSearchQuery(params SearchParams) (string, []any) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(params.IDs) > 0 {
		conds = append(conds, "id = ANY("+arg(params.IDs)+")")
	}
	if params.Email != "" {
		conds = append(conds, "email ILIKE "+arg("%"+params.Email+"%"))
	}
	if params.FirstName != "" {
		conds = append(conds, "first_name ILIKE "+arg("%"+params.FirstName+"%"))
	}
	if params.LastName != "" {
		conds = append(conds, "last_name ILIKE "+arg("%"+params.LastName+"%"))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += orderClause(params.OrderBy)

	if params.PageSize > 0 {
		query += " LIMIT " + arg(params.PageSize)
		query += " OFFSET " + arg(calculateOffset(params.Page, params.PageSize))
	}

	return query, args
}

// calculateOffset maps a 1-based page to a row offset.
func calculateOffset(page, pageSize int) int {
	if page > 0 {
		return (page - 1) * pageSize
	}
	return 0
}
