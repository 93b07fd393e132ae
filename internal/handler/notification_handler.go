package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/internal/service"
	"github.com/mbeoliero/coursehub/pkg/response"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	notifService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

// List handles list notifications request
func (h *NotificationHandler) List(ctx context.Context, c *app.RequestContext) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))

	result, err := h.notifService.List(ctx, middleware.GetUserId(c), page, limit, unreadOnly)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// MarkRead handles mark one notification read request
func (h *NotificationHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	n, err := h.notifService.MarkRead(ctx, middleware.GetUserId(c), c.Param("notificationId"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, n)
}

// MarkAllRead handles mark all notifications read request
func (h *NotificationHandler) MarkAllRead(ctx context.Context, c *app.RequestContext) {
	count, err := h.notifService.MarkAllRead(ctx, middleware.GetUserId(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]int64{"count": count})
}

// Delete handles delete notification request
func (h *NotificationHandler) Delete(ctx context.Context, c *app.RequestContext) {
	if err := h.notifService.Delete(ctx, middleware.GetUserId(c), c.Param("notificationId")); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// Create handles create notification request
func (h *NotificationHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req service.CreateNotificationRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	n, err := h.notifService.Create(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, n)
}

// Broadcast handles broadcast notification request
func (h *NotificationHandler) Broadcast(ctx context.Context, c *app.RequestContext) {
	var req service.BroadcastRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	count, err := h.notifService.Broadcast(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, map[string]int{"count": count})
}
