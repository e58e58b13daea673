package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/usecase"
)

type UserHandler struct {
	users  *usecase.UserUseCase
	logger *zap.Logger
}

func NewUserHandler(users *usecase.UserUseCase, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Search handles GET /api/v1/user/
func (h *UserHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	out, err := h.users.Search(c.Request.Context(), usecase.SearchUsersInput{
		Email:     c.Query("email"),
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Page:      page,
		PageSize:  pageSize,
		OrderBy:   c.Query("order_by"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newSearchUsersResponse(out.Items))
}

// Create handles POST /api/v1/user/
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	out, err := h.users.Create(c.Request.Context(), currentUser(c), usecase.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(*out))
}

// Get handles GET /api/v1/user/:id/
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	out, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*out))
}

// Update handles PATCH /api/v1/user/:id/
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "common.invalid_request")
		return
	}

	out, err := h.users.Update(c.Request.Context(), currentUser(c), id, usecase.UpdateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*out))
}

// Delete handles DELETE /api/v1/user/:id/
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		badRequest(c, h.logger, "common.invalid_id")
		return 0, false
	}
	return id, true
}
