package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository/fakes"
	"userhub/internal/service"
)

type userFixture struct {
	users *fakes.UserStore
	uc    *UserUseCase
	actor *model.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	users := fakes.NewUserStore()
	uc := NewUserUseCase(users, service.NewUserService(users), zap.NewNop())

	actor := &model.User{Email: "admin@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), actor))

	return &userFixture{users: users, uc: uc, actor: actor}
}

func TestUserCreate(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	first := "Bob"
	out, err := f.uc.Create(ctx, f.actor, CreateUserInput{
		Email:     "Bob@Example.com",
		Password:  "password123@",
		FirstName: &first,
	})
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", out.User.Email)
	assert.Equal(t, &first, out.User.FirstName)
	require.NotNil(t, out.CreatedBy)
	assert.Equal(t, f.actor.ID, out.CreatedBy.ID)
	require.NotNil(t, out.UpdatedBy)
	assert.Equal(t, f.actor.ID, out.UpdatedBy.ID)
}

func TestUserCreateValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, f.actor, CreateUserInput{Email: "bad", Password: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.uc.Create(ctx, f.actor, CreateUserInput{Email: "admin@example.com", Password: "x"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUserGet(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	out, err := f.uc.Get(ctx, f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, f.actor.ID, out.User.ID)

	_, err = f.uc.Get(ctx, 9999)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "user.not_found_with_id", appErr.Key)
	assert.Equal(t, "9999", appErr.Args["id"])
}

func TestUserSearchPagination(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"} {
		_, err := f.uc.Create(ctx, f.actor, CreateUserInput{Email: email, Password: "password123@"})
		require.NoError(t, err)
	}

	// defaults: page 1, size 10 covers everyone including the actor
	out, err := f.uc.Search(ctx, SearchUsersInput{})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Count)

	page1, err := f.uc.Search(ctx, SearchUsersInput{Page: 1, PageSize: 2})
	require.NoError(t, err)
	page2, err := f.uc.Search(ctx, SearchUsersInput{Page: 2, PageSize: 2})
	require.NoError(t, err)

	assert.LessOrEqual(t, page1.Count, 2)
	assert.LessOrEqual(t, page2.Count, 2)

	seen := make(map[int]bool)
	for _, item := range page1.Items {
		seen[item.User.ID] = true
	}
	for _, item := range page2.Items {
		assert.False(t, seen[item.User.ID], "pages must be disjoint")
	}

	// out-of-range page is empty, not an error
	page9, err := f.uc.Search(ctx, SearchUsersInput{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Zero(t, page9.Count)
}

func TestUserSearchFilter(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, f.actor, CreateUserInput{Email: "bob@example.com", Password: "password123@"})
	require.NoError(t, err)

	out, err := f.uc.Search(ctx, SearchUsersInput{Email: "bob"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "bob@example.com", out.Items[0].User.Email)
}

func TestUserUpdatePartial(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	first := "Bob"
	created, err := f.uc.Create(ctx, f.actor, CreateUserInput{
		Email:     "bob@example.com",
		Password:  "password123@",
		FirstName: &first,
	})
	require.NoError(t, err)
	id := created.User.ID

	last := "Jones"
	out, err := f.uc.Update(ctx, f.actor, id, UpdateUserInput{LastName: &last})
	require.NoError(t, err)

	assert.Equal(t, &first, out.User.FirstName, "untouched field survives")
	assert.Equal(t, &last, out.User.LastName)
	assert.Equal(t, "bob@example.com", out.User.Email)
}

func TestUserUpdateEmailUniqueness(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.actor, CreateUserInput{Email: "bob@example.com", Password: "password123@"})
	require.NoError(t, err)
	id := created.User.ID

	taken := "admin@example.com"
	_, err = f.uc.Update(ctx, f.actor, id, UpdateUserInput{Email: &taken})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// keeping your own email is not a conflict
	same := "bob@example.com"
	_, err = f.uc.Update(ctx, f.actor, id, UpdateUserInput{Email: &same})
	assert.NoError(t, err)
}

func TestUserUpdateNotFound(t *testing.T) {
	f := newUserFixture(t)

	last := "Jones"
	_, err := f.uc.Update(context.Background(), f.actor, 9999, UpdateUserInput{LastName: &last})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUserDelete(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, f.actor, CreateUserInput{Email: "bob@example.com", Password: "password123@"})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, f.actor, created.User.ID))

	_, err = f.uc.Get(ctx, created.User.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUserDeleteSelf(t *testing.T) {
	f := newUserFixture(t)

	err := f.uc.Delete(context.Background(), f.actor, f.actor.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Len(t, f.users.Users, 1)
}

func TestUserDeleteNotFound(t *testing.T) {
	f := newUserFixture(t)

	err := f.uc.Delete(context.Background(), f.actor, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
