package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/usecase"
)

type AuthHandler struct {
	auth            *usecase.AuthUseCase
	accessExpiresIn int64
	logger          *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthUseCase, accessExpiresIn int64, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, accessExpiresIn: accessExpiresIn, logger: logger}
}

func (h *AuthHandler) tokenResponse(access, refresh string) TokenResponse {
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    h.accessExpiresIn,
	}
}

// Register handles POST /api/v1/auth/register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	_, pair, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Client:    clientInfo(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.tokenResponse(pair.Access, pair.Refresh))
}

// Login handles POST /api/v1/auth/login/
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	_, pair, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.tokenResponse(pair.Access, pair.Refresh))
}

// RefreshToken handles POST /api/v1/auth/refresh-token/
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.tokenResponse(pair.Access, pair.Refresh))
}

// Logout handles POST /api/v1/auth/logout/
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	// body is optional; logout without a token is still a 204
	_ = c.ShouldBindJSON(&req)

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password/
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	// identical response for known and unknown emails
	respondMessage(c, http.StatusOK, "common.forgot_password")
}

// ResetPassword handles POST /api/v1/auth/reset-password/
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me/
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.auth.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*profile))
}

// UpdateMe handles PATCH /api/v1/auth/me/
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c), usecase.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	profile, err := h.auth.GetProfile(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*profile))
}

// ChangePassword handles POST /api/v1/auth/change-password/
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), currentUser(c), req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
