package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/internal/service"
	"github.com/mbeoliero/coursehub/pkg/response"
)

// MessageHandler handles message-related requests
type MessageHandler struct {
	msgService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(msgService *service.MessageService) *MessageHandler {
	return &MessageHandler{msgService: msgService}
}

// SendDirectMessage handles send direct message request
func (h *MessageHandler) SendDirectMessage(ctx context.Context, c *app.RequestContext) {
	var req service.SendDirectMessageRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	result, err := h.msgService.SendDirectMessage(ctx, middleware.GetUserId(c), &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, result)
}
