package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/internal/service"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/response"
)

// UserHandler handles user-related requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe handles get current user request
func (h *UserHandler) GetMe(ctx context.Context, c *app.RequestContext) {
	userInfo, err := h.userService.GetUserInfo(ctx, middleware.GetUserId(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, userInfo)
}

// GetUser handles get user by id request
func (h *UserHandler) GetUser(ctx context.Context, c *app.RequestContext) {
	targetId := c.Param("userId")
	if targetId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	userInfo, err := h.userService.GetUserInfo(ctx, targetId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, userInfo)
}

// UpdateMe handles update current user request
func (h *UserHandler) UpdateMe(ctx context.Context, c *app.RequestContext) {
	var req service.UpdateUserRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	userInfo, err := h.userService.UpdateUserInfo(ctx, middleware.GetUserId(c), &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, userInfo)
}
