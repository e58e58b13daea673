// Package fakes provides in-memory store implementations for tests.
package fakes

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// UserStore keeps users in a map keyed by ID.
type UserStore struct {
	NextID int
	Users  map[int]*model.User

	CreateErr error
	FindErr   error
}

func NewUserStore() *UserStore {
	return &UserStore{NextID: 1, Users: make(map[int]*model.User)}
}

func (s *UserStore) WithTx(tx pgx.Tx) repository.UserStore { return s }

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, existing := range s.Users {
		if existing.Email == u.Email {
			return apperr.Conflict("user.email_already_in_use")
		}
	}
	u.ID = s.NextID
	s.NextID++
	now := time.Now()
	u.CreatedAt = &now
	u.UpdatedAt = &now
	s.Users[u.ID] = u
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id int) (*model.User, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	return s.Users[id], nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for _, u := range s.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []int) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := s.Users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserStore) Search(ctx context.Context, params repository.SearchParams) ([]*model.User, error) {
	var out []*model.User
	for _, u := range s.Users {
		if params.Email != "" && !strings.Contains(u.Email, strings.ToLower(params.Email)) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	offset := (params.Page - 1) * params.PageSize
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + params.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *UserStore) Update(ctx context.Context, u *model.User) error {
	if _, ok := s.Users[u.ID]; !ok {
		return apperr.NotFound("user.not_found")
	}
	now := time.Now()
	u.UpdatedAt = &now
	s.Users[u.ID] = u
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id int) error {
	if _, ok := s.Users[id]; !ok {
		return apperr.NotFound("user.not_found")
	}
	delete(s.Users, id)
	return nil
}

// RefreshTokenStore keeps refresh tokens in a slice.
type RefreshTokenStore struct {
	NextID int
	Tokens []*model.RefreshToken
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{NextID: 1}
}

func (s *RefreshTokenStore) WithTx(tx pgx.Tx) repository.RefreshTokenStore { return s }

func (s *RefreshTokenStore) Create(ctx context.Context, t *model.RefreshToken) error {
	t.ID = s.NextID
	s.NextID++
	t.CreatedAt = time.Now()
	s.Tokens = append(s.Tokens, t)
	return nil
}

func (s *RefreshTokenStore) FindByUserAndToken(ctx context.Context, userID int, token string) (*model.RefreshToken, error) {
	for _, t := range s.Tokens {
		if t.UserID == userID && t.Token == token {
			return t, nil
		}
	}
	return nil, nil
}

func (s *RefreshTokenStore) DeleteByToken(ctx context.Context, token string) error {
	kept := s.Tokens[:0]
	for _, t := range s.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	s.Tokens = kept
	return nil
}

func (s *RefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	kept := s.Tokens[:0]
	for _, t := range s.Tokens {
		if t.ExpiresAt.After(time.Now()) {
			kept = append(kept, t)
		} else {
			removed++
		}
	}
	s.Tokens = kept
	return removed, nil
}

// PasswordResetStore keeps reset OTPs in a map keyed by ID.
type PasswordResetStore struct {
	NextID int
	Tokens map[int]*model.PasswordResetToken
}

func NewPasswordResetStore() *PasswordResetStore {
	return &PasswordResetStore{NextID: 1, Tokens: make(map[int]*model.PasswordResetToken)}
}

func (s *PasswordResetStore) WithTx(tx pgx.Tx) repository.PasswordResetStore { return s }

func (s *PasswordResetStore) Create(ctx context.Context, t *model.PasswordResetToken) error {
	t.ID = s.NextID
	s.NextID++
	t.CreatedAt = time.Now()
	s.Tokens[t.ID] = t
	return nil
}

func (s *PasswordResetStore) FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	for _, t := range s.Tokens {
		if t.Token == token {
			return t, nil
		}
	}
	return nil, nil
}

func (s *PasswordResetStore) FindByUserID(ctx context.Context, userID int) (*model.PasswordResetToken, error) {
	var latest *model.PasswordResetToken
	for _, t := range s.Tokens {
		if t.UserID != userID {
			continue
		}
		if latest == nil || t.ID > latest.ID {
			latest = t
		}
	}
	return latest, nil
}

func (s *PasswordResetStore) IncrementRetryCount(ctx context.Context, id int) error {
	if t, ok := s.Tokens[id]; ok {
		t.RetryCount++
	}
	return nil
}

func (s *PasswordResetStore) Delete(ctx context.Context, id int) error {
	delete(s.Tokens, id)
	return nil
}

func (s *PasswordResetStore) DeleteByUserID(ctx context.Context, userID int) error {
	for id, t := range s.Tokens {
		if t.UserID == userID {
			delete(s.Tokens, id)
		}
	}
	return nil
}

func (s *PasswordResetStore) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	for id, t := range s.Tokens {
		if !t.ExpiresAt.After(time.Now()) {
			delete(s.Tokens, id)
			removed++
		}
	}
	return removed, nil
}

// TxRunner executes the function without a real transaction.
type TxRunner struct {
	Err error
}

func (r *TxRunner) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if r.Err != nil {
		return r.Err
	}
	return fn(nil)
}
