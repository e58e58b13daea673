package usecase

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/service"
	"userhub/internal/util"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateUserInput is a partial update: nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Phone     *string
}

type SearchUsersInput struct {
	Email     string
	FirstName string
	LastName  string
	Page      int
	PageSize  int
	OrderBy   string
}

// SearchUsersOutput carries one page plus the page's own item count.
type SearchUsersOutput struct {
	Items []service.UserWithRelations
	Count int
}

type UserUseCase struct {
	users   repository.UserStore
	userSvc *service.UserService
	logger  *zap.Logger
}

func NewUserUseCase(users repository.UserStore, userSvc *service.UserService, logger *zap.Logger) *UserUseCase {
	return &UserUseCase{users: users, userSvc: userSvc, logger: logger}
}

// Create adds a user on behalf of an authenticated actor. The actor is
// recorded in the audit columns.
func (uc *UserUseCase) Create(ctx context.Context, actor *model.User, input CreateUserInput) (*service.UserWithRelations, error) {
	email := uc.userSvc.NormalizeEmail(input.Email)
	if err := uc.userSvc.ValidateEmailFormat(email); err != nil {
		return nil, err
	}
	if err := uc.userSvc.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := uc.userSvc.ValidateUniqueEmail(ctx, email, nil); err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Phone:         input.Phone,
		CreatedUserID: &actor.ID,
		UpdatedUserID: &actor.ID,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user created", zap.Int("user_id", user.ID), zap.Int("actor_id", actor.ID))
	return uc.withRelations(ctx, user)
}

// Get fetches one user by ID.
func (uc *UserUseCase) Get(ctx context.Context, id int) (*service.UserWithRelations, error) {
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user.not_found_with_id", map[string]string{"id": strconv.Itoa(id)})
	}
	return uc.withRelations(ctx, user)
}

// Search returns a page of users matching the filters.
func (uc *UserUseCase) Search(ctx context.Context, input SearchUsersInput) (*SearchUsersOutput, error) {
	page := input.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.SearchParams{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Page:      page,
		PageSize:  pageSize,
		OrderBy:   repository.ParseOrderBy(input.OrderBy, repository.UserOrderFields),
	}

	users, err := uc.users.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	items, err := uc.userSvc.WithRelations(ctx, users)
	if err != nil {
		return nil, err
	}
	return &SearchUsersOutput{Items: items, Count: len(items)}, nil
}

// Update applies a partial update. Only non-nil fields change; an email
// change re-checks uniqueness against everyone but the user itself.
func (uc *UserUseCase) Update(ctx context.Context, actor *model.User, id int, input UpdateUserInput) (*service.UserWithRelations, error) {
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user.not_found_with_id", map[string]string{"id": strconv.Itoa(id)})
	}

	if input.Email != nil {
		email := uc.userSvc.NormalizeEmail(*input.Email)
		if err := uc.userSvc.ValidateEmailFormat(email); err != nil {
			return nil, err
		}
		if err := uc.userSvc.ValidateUniqueEmail(ctx, email, &user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Password != nil {
		if err := uc.userSvc.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := util.HashPassword(*input.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		user.PasswordHash = hash
	}
	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	user.UpdatedUserID = &actor.ID

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.withRelations(ctx, user)
}

// Delete removes a user. Deleting your own account is refused.
func (uc *UserUseCase) Delete(ctx context.Context, actor *model.User, id int) error {
	if actor.ID == id {
		return apperr.Forbidden("user.cannot_delete_self")
	}

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("user.not_found_with_id", map[string]string{"id": strconv.Itoa(id)})
	}

	if err := uc.users.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("user deleted", zap.Int("user_id", id), zap.Int("actor_id", actor.ID))
	return nil
}

func (uc *UserUseCase) withRelations(ctx context.Context, user *model.User) (*service.UserWithRelations, error) {
	out, err := uc.userSvc.WithRelations(ctx, []*model.User{user})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}
