package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/internal/service"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/response"
)

// ConversationHandler handles conversation-related requests
type ConversationHandler struct {
	convService *service.ConversationService
	msgService  *service.MessageService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(convService *service.ConversationService, msgService *service.MessageService) *ConversationHandler {
	return &ConversationHandler{convService: convService, msgService: msgService}
}

// CreateConversation handles create conversation request
func (h *ConversationHandler) CreateConversation(ctx context.Context, c *app.RequestContext) {
	var req service.CreateConversationRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	info, _, err := h.convService.CreateConversation(ctx, middleware.GetUserId(c), req.RecipientId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, info)
}

// ListConversations handles list conversations request
func (h *ConversationHandler) ListConversations(ctx context.Context, c *app.RequestContext) {
	infos, err := h.convService.ListConversations(ctx, middleware.GetUserId(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, infos)
}

// GetMessages handles paginated message history request
func (h *ConversationHandler) GetMessages(ctx context.Context, c *app.RequestContext) {
	conversationId := c.Param("conversationId")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam.WithMsg("limit must be a positive integer"))
			return
		}
		limit = n
	}

	page, err := h.msgService.GetMessages(ctx, conversationId, middleware.GetUserId(c), limit, c.Query("cursor"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, page)
}

// MarkSeen handles mark conversation as seen request
func (h *ConversationHandler) MarkSeen(ctx context.Context, c *app.RequestContext) {
	status, err := h.convService.MarkSeen(ctx, c.Param("conversationId"), middleware.GetUserId(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, status)
}
