package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/config"
	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository/fakes"
	"userhub/internal/util"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret",
		AccessExpiresS:  1800,
		RefreshExpiresS: 604800,
	}
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewAuthService(fakes.NewUserStore(), testJWTConfig())

	pair, err := svc.GenerateTokenPair(42)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	userID, err := util.ParseJWT(pair.Access, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	userID, err = util.ParseJWT(pair.Refresh, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestParseToken(t *testing.T) {
	svc := NewAuthService(fakes.NewUserStore(), testJWTConfig())

	pair, err := svc.GenerateTokenPair(7)
	require.NoError(t, err)

	userID, err := svc.ParseToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)

	_, err = svc.ParseToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestCurrentUser(t *testing.T) {
	users := fakes.NewUserStore()
	svc := NewAuthService(users, testJWTConfig())

	u := &model.User{Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), u))

	pair, err := svc.GenerateTokenPair(u.ID)
	require.NoError(t, err)

	got, err := svc.CurrentUser(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestCurrentUserUnknownID(t *testing.T) {
	svc := NewAuthService(fakes.NewUserStore(), testJWTConfig())

	pair, err := svc.GenerateTokenPair(999)
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), pair.Access)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestNewRefreshTokenRecord(t *testing.T) {
	svc := NewAuthService(fakes.NewUserStore(), testJWTConfig())

	device := "integration test"
	ip := "10.0.0.1"
	rec := svc.NewRefreshTokenRecord(3, "token-value", &device, &ip)

	assert.Equal(t, 3, rec.UserID)
	assert.Equal(t, "token-value", rec.Token)
	assert.Equal(t, &device, rec.DeviceInfo)
	assert.Equal(t, &ip, rec.IPAddress)
	assert.WithinDuration(t, time.Now().Add(604800*time.Second), rec.ExpiresAt, 5*time.Second)
}
