package service

import (
	"context"
	"regexp"
	"strings"

	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserWithRelations pairs a user with the users recorded in its audit columns.
type UserWithRelations struct {
	User      *model.User
	CreatedBy *model.User
	UpdatedBy *model.User
}

// UserService holds validation rules and audit resolution shared by the
// auth and user use cases.
type UserService struct {
	users repository.UserStore
}

func NewUserService(users repository.UserStore) *UserService {
	return &UserService{users: users}
}

// NormalizeEmail lowercases and trims an address. Emails are stored and
// compared in this canonical form.
func (s *UserService) NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) ValidateEmailFormat(email string) error {
	if email == "" {
		return apperr.Validation("user.email_required")
	}
	if !emailPattern.MatchString(email) {
		return apperr.Validation("user.email_invalid")
	}
	return nil
}

func (s *UserService) ValidatePassword(password string) error {
	if password == "" {
		return apperr.Validation("user.password_required")
	}
	return nil
}

// ValidateUniqueEmail rejects an address already owned by another user.
// excludeID skips the user being updated so saving an unchanged email passes.
func (s *UserService) ValidateUniqueEmail(ctx context.Context, email string, excludeID *int) error {
	existing, err := s.users.FindByEmail(ctx, s.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if excludeID != nil && existing.ID == *excludeID {
		return nil
	}
	return apperr.Conflict("user.email_already_in_use")
}

// WithRelations resolves the created/updated audit users for a batch of users
// with a single lookup.
func (s *UserService) WithRelations(ctx context.Context, users []*model.User) ([]UserWithRelations, error) {
	idSet := make(map[int]struct{})
	for _, u := range users {
		if u.CreatedUserID != nil {
			idSet[*u.CreatedUserID] = struct{}{}
		}
		if u.UpdatedUserID != nil {
			idSet[*u.UpdatedUserID] = struct{}{}
		}
	}

	related := make(map[int]*model.User)
	if len(idSet) > 0 {
		ids := make([]int, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		found, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			related[u.ID] = u
		}
	}

	out := make([]UserWithRelations, 0, len(users))
	for _, u := range users {
		item := UserWithRelations{User: u}
		if u.CreatedUserID != nil {
			item.CreatedBy = related[*u.CreatedUserID]
		}
		if u.UpdatedUserID != nil {
			item.UpdatedBy = related[*u.UpdatedUserID]
		}
		out = append(out, item)
	}
	return out, nil
}
