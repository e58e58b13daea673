package api

import (
	"time"

	"userhub/internal/service"
)

type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type CreateUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// UpdateUserRequest is a partial update: absent fields stay untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserSummary is the short form used for audit references.
type UserSummary struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UserResponse is the full user view. The password hash never appears here.
type UserResponse struct {
	ID        int          `json:"id"`
	Email     string       `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Phone     *string      `json:"phone"`
	CreatedAt *time.Time   `json:"created_at"`
	UpdatedAt *time.Time   `json:"updated_at"`
	CreatedBy *UserSummary `json:"created_by,omitempty"`
	UpdatedBy *UserSummary `json:"updated_by,omitempty"`
}

type SearchUsersResponse struct {
	Items []UserResponse `json:"items"`
	Count int            `json:"count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func newUserResponse(item service.UserWithRelations) UserResponse {
	u := item.User
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if item.CreatedBy != nil {
		resp.CreatedBy = &UserSummary{
			ID:        item.CreatedBy.ID,
			Email:     item.CreatedBy.Email,
			FirstName: item.CreatedBy.FirstName,
			LastName:  item.CreatedBy.LastName,
		}
	}
	if item.UpdatedBy != nil {
		resp.UpdatedBy = &UserSummary{
			ID:        item.UpdatedBy.ID,
			Email:     item.UpdatedBy.Email,
			FirstName: item.UpdatedBy.FirstName,
			LastName:  item.UpdatedBy.LastName,
		}
	}
	return resp
}

func newSearchUsersResponse(items []service.UserWithRelations) SearchUsersResponse {
	out := SearchUsersResponse{Items: make([]UserResponse, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, newUserResponse(item))
	}
	out.Count = len(out.Items)
	return out
}
