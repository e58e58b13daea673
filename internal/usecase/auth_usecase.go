// Package usecase orchestrates the service and repository layers. Each use
// case method maps to one API operation and owns its transaction boundary.
package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"userhub/internal/apperr"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/service"
	"userhub/internal/task"
	"userhub/internal/util"
	"userhub/pkg/metrics"
	"userhub/pkg/outbox"
)

const (
	resetTokenTTL        = 15 * time.Minute
	resetTokenMaxRetries = 3
)

// OutboxInserter enqueues broker events inside a caller-owned transaction.
type OutboxInserter interface {
	InsertEvent(ctx context.Context, tx pgx.Tx, event *outbox.Event) error
}

// ClientInfo identifies the device behind an auth request. Both fields are
// optional and stored verbatim alongside the refresh token.
type ClientInfo struct {
	DeviceInfo *string
	IPAddress  *string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Phone     *string
	Client    ClientInfo
}

type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

type AuthUseCase struct {
	users   repository.UserStore
	tokens  repository.RefreshTokenStore
	resets  repository.PasswordResetStore
	tx      repository.TxRunner
	outbox  OutboxInserter
	auth    *service.AuthService
	userSvc *service.UserService
	logger  *zap.Logger
}

func NewAuthUseCase(
	users repository.UserStore,
	tokens repository.RefreshTokenStore,
	resets repository.PasswordResetStore,
	tx repository.TxRunner,
	ob OutboxInserter,
	auth *service.AuthService,
	userSvc *service.UserService,
	logger *zap.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		users:   users,
		tokens:  tokens,
		resets:  resets,
		tx:      tx,
		outbox:  ob,
		auth:    auth,
		userSvc: userSvc,
		logger:  logger,
	}
}

// Register creates an account, queues the welcome email through the outbox in
// the same transaction, and signs the first token pair.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*model.User, *service.TokenPair, error) {
	email := uc.userSvc.NormalizeEmail(input.Email)
	if err := uc.userSvc.ValidateEmailFormat(email); err != nil {
		return nil, nil, err
	}
	if err := uc.userSvc.ValidatePassword(input.Password); err != nil {
		return nil, nil, err
	}
	if err := uc.userSvc.ValidateUniqueEmail(ctx, email, nil); err != nil {
		return nil, nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
	}

	err = uc.tx.InTx(ctx, func(tx pgx.Tx) error {
		if err := uc.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return uc.enqueueTask(ctx, tx, task.TypeUserRegistered, task.UserRegisteredPayload{
			UserID: user.ID,
			Email:  user.Email,
		}, user.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	pair, err := uc.issueTokens(ctx, user.ID, input.Client)
	if err != nil {
		return nil, nil, err
	}

	metrics.IncrementUserRegistered()
	uc.logger.Info("user registered", zap.Int("user_id", user.ID))
	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*model.User, *service.TokenPair, error) {
	email := uc.userSvc.NormalizeEmail(input.Email)

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, apperr.Unauthorized("auth.email_not_registered")
	}
	if !util.CheckPassword(input.Password, user.PasswordHash) {
		return nil, nil, apperr.Unauthorized("auth.password_incorrect")
	}

	pair, err := uc.issueTokens(ctx, user.ID, input.Client)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken rotates a refresh token: the presented token must be a valid
// JWT and still present in storage; it is replaced by the new pair's token.
func (uc *AuthUseCase) RefreshToken(ctx context.Context, refreshToken string, client ClientInfo) (*service.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized("auth.refresh_token_required")
	}

	userID, err := uc.auth.ParseToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("auth.refresh_token_invalid")
	}

	stored, err := uc.tokens.FindByUserAndToken(ctx, userID, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.ExpiresAt.After(time.Now()) {
		return nil, apperr.Unauthorized("auth.refresh_token_invalid")
	}

	if err := uc.tokens.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return uc.issueTokens(ctx, userID, client)
}

// Logout deletes the stored refresh token. Unknown tokens are a no-op.
func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return uc.tokens.DeleteByToken(ctx, refreshToken)
}

// ChangePassword re-hashes after checking the old password.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	if !util.CheckPassword(oldPassword, user.PasswordHash) {
		return apperr.Validation("auth.password_incorrect")
	}
	if err := uc.userSvc.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	user.PasswordHash = hash
	user.UpdatedUserID = &user.ID
	return uc.users.Update(ctx, user)
}

// ForgotPassword issues a one-time code and queues the reset email. Unknown
// emails succeed silently so the endpoint cannot be used for enumeration.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	user, err := uc.users.FindByEmail(ctx, uc.userSvc.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		uc.logger.Info("password reset requested for unknown email")
		return nil
	}

	otp, err := generateOTP()
	if err != nil {
		return apperr.Internal(err)
	}

	return uc.tx.InTx(ctx, func(tx pgx.Tx) error {
		resets := uc.resets.WithTx(tx)
		if err := resets.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		if err := resets.Create(ctx, &model.PasswordResetToken{
			UserID:    user.ID,
			Token:     otp,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}); err != nil {
			return err
		}
		return uc.enqueueTask(ctx, tx, task.TypeSendEmail, task.EmailPayload{
			To:       user.Email,
			Subject:  "Password reset code",
			Template: "password_reset",
			Variables: map[string]string{
				"otp":     otp,
				"minutes": "15",
			},
			Priority: "high",
		}, user.ID)
	})
}

// ResetPassword consumes a one-time code. Wrong codes burn an attempt; after
// the limit or past expiry the code is discarded.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := uc.users.FindByEmail(ctx, uc.userSvc.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.Validation("auth.otp_invalid")
	}

	stored, err := uc.resets.FindByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return apperr.Validation("auth.token_not_found")
	}

	if !stored.ExpiresAt.After(time.Now()) {
		if err := uc.resets.Delete(ctx, stored.ID); err != nil {
			return err
		}
		return apperr.Validation("auth.otp_expired")
	}
	if stored.RetryCount >= resetTokenMaxRetries {
		if err := uc.resets.Delete(ctx, stored.ID); err != nil {
			return err
		}
		return apperr.Validation("auth.otp_max_attempts", map[string]string{"max": "3"})
	}
	if stored.Token != otp {
		if err := uc.resets.IncrementRetryCount(ctx, stored.ID); err != nil {
			return err
		}
		return apperr.Validation("auth.otp_invalid")
	}

	if err := uc.userSvc.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	return uc.tx.InTx(ctx, func(tx pgx.Tx) error {
		user.PasswordHash = hash
		user.UpdatedUserID = &user.ID
		if err := uc.users.WithTx(tx).Update(ctx, user); err != nil {
			return err
		}
		return uc.resets.WithTx(tx).DeleteByUserID(ctx, user.ID)
	})
}

// GetProfile resolves the current user with its audit relations.
func (uc *AuthUseCase) GetProfile(ctx context.Context, user *model.User) (*service.UserWithRelations, error) {
	out, err := uc.userSvc.WithRelations(ctx, []*model.User{user})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// UpdateProfile applies a partial update to the current user's own profile.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, user *model.User, input UpdateProfileInput) (*model.User, error) {
	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	user.UpdatedUserID = &user.ID

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUseCase) issueTokens(ctx context.Context, userID int, client ClientInfo) (*service.TokenPair, error) {
	pair, err := uc.auth.GenerateTokenPair(userID)
	if err != nil {
		return nil, err
	}

	record := uc.auth.NewRefreshTokenRecord(userID, pair.Refresh, client.DeviceInfo, client.IPAddress)
	if err := uc.tokens.Create(ctx, record); err != nil {
		return nil, err
	}
	return pair, nil
}

func (uc *AuthUseCase) enqueueTask(ctx context.Context, tx pgx.Tx, taskType string, payload any, aggregateID int) error {
	t, err := task.New(taskType, payload)
	if err != nil {
		return apperr.Internal(err)
	}
	body, err := t.Marshal()
	if err != nil {
		return apperr.Internal(err)
	}

	aggID := int64(aggregateID)
	event := &outbox.Event{
		AggregateType: "user",
		AggregateID:   &aggID,
		RoutingKey:    task.RoutingKey(taskType),
		Payload:       body,
	}
	if err := uc.outbox.InsertEvent(ctx, tx, event); err != nil {
		return apperr.Internal(fmt.Errorf("enqueue %s: %w", taskType, err))
	}
	return nil
}

// generateOTP returns a 6-digit zero-padded one-time code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
