package service

import (
	"context"
	"time"

	"userhub/config"
	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/util"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService owns token issuance and validation. It is stateless apart from
// the refresh-token store used to resolve the current user.
type AuthService struct {
	users          repository.UserStore
	secret         string
	accessExpires  time.Duration
	refreshExpires time.Duration
}

func NewAuthService(users repository.UserStore, cfg config.JWTConfig) *AuthService {
	return &AuthService{
		users:          users,
		secret:         cfg.Secret,
		accessExpires:  time.Duration(cfg.AccessExpiresS) * time.Second,
		refreshExpires: time.Duration(cfg.RefreshExpiresS) * time.Second,
	}
}

// GenerateTokenPair mints an access and refresh JWT for a user.
func (s *AuthService) GenerateTokenPair(userID int) (*TokenPair, error) {
	access, err := util.GenerateJWT(userID, s.secret, s.accessExpires)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refresh, err := util.GenerateJWT(userID, s.secret, s.refreshExpires)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// NewRefreshTokenRecord builds the persistent row for an issued refresh token.
func (s *AuthService) NewRefreshTokenRecord(userID int, token string, deviceInfo, ipAddress *string) *model.RefreshToken {
	return &model.RefreshToken{
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
		ExpiresAt:  time.Now().Add(s.refreshExpires),
	}
}

// ParseToken validates a JWT and returns the subject user ID.
func (s *AuthService) ParseToken(token string) (int, error) {
	userID, err := util.ParseJWT(token, s.secret)
	if err != nil {
		return 0, apperr.Unauthorized("auth.invalid_token")
	}
	return userID, nil
}

// CurrentUser resolves an access token to its user.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := s.ParseToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("auth.user_not_found")
	}
	return user, nil
}
