package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository/fakes"
)

func TestNormalizeEmail(t *testing.T) {
	svc := NewUserService(fakes.NewUserStore())

	assert.Equal(t, "alice@example.com", svc.NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "bob@example.com", svc.NormalizeEmail("bob@example.com"))
}

func TestValidateEmailFormat(t *testing.T) {
	svc := NewUserService(fakes.NewUserStore())

	tests := []struct {
		name    string
		email   string
		wantKey string
	}{
		{"valid", "alice@example.com", ""},
		{"valid with plus", "alice+tag@example.co.uk", ""},
		{"empty", "", "user.email_required"},
		{"missing at", "aliceexample.com", "user.email_invalid"},
		{"missing tld", "alice@example", "user.email_invalid"},
		{"spaces", "alice @example.com", "user.email_invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateEmailFormat(tt.email)
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantKey, appErr.Key)
		})
	}
}

func TestValidateUniqueEmail(t *testing.T) {
	users := fakes.NewUserStore()
	svc := NewUserService(users)
	ctx := context.Background()

	existing := &model.User{Email: "taken@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, existing))

	assert.NoError(t, svc.ValidateUniqueEmail(ctx, "free@example.com", nil))

	err := svc.ValidateUniqueEmail(ctx, "Taken@Example.com", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// the owner may keep their own address
	assert.NoError(t, svc.ValidateUniqueEmail(ctx, "taken@example.com", &existing.ID))

	other := existing.ID + 100
	err = svc.ValidateUniqueEmail(ctx, "taken@example.com", &other)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestWithRelations(t *testing.T) {
	users := fakes.NewUserStore()
	svc := NewUserService(users)
	ctx := context.Background()

	admin := &model.User{Email: "admin@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, admin))

	u := &model.User{
		Email:         "member@example.com",
		PasswordHash:  "x",
		CreatedUserID: &admin.ID,
		UpdatedUserID: &admin.ID,
	}
	require.NoError(t, users.Create(ctx, u))

	orphanID := 9999
	orphan := &model.User{Email: "orphan@example.com", PasswordHash: "x", CreatedUserID: &orphanID}
	require.NoError(t, users.Create(ctx, orphan))

	out, err := svc.WithRelations(ctx, []*model.User{u, orphan, admin})
	require.NoError(t, err)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].CreatedBy)
	assert.Equal(t, admin.ID, out[0].CreatedBy.ID)
	require.NotNil(t, out[0].UpdatedBy)
	assert.Equal(t, admin.ID, out[0].UpdatedBy.ID)

	assert.Nil(t, out[1].CreatedBy)
	assert.Nil(t, out[1].UpdatedBy)

	assert.Nil(t, out[2].CreatedBy)
	assert.Nil(t, out[2].UpdatedBy)
}
