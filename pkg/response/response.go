package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/pkg/errcode"
)

// Response represents a standard API response
type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Stack      string      `json:"stack,omitempty"`
}

// withStack controls whether error causes are exposed in the body
var withStack = true

// SetDebug toggles the stack field of error responses
func SetDebug(debug bool) {
	withStack = debug
}

// Success sends a 200 response
func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Message:    "success",
		Data:       data,
	})
}

// Created sends a 201 response
func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		StatusCode: http.StatusCreated,
		Message:    "created",
		Data:       data,
	})
}

// Error sends an error response, mapping the error to its HTTP status
func Error(ctx context.Context, c *app.RequestContext, err error) {
	e, ok := errcode.From(err)
	if !ok {
		log.CtxError(ctx, "unhandled error: path=%s, error=%v", c.Path(), err)
		e = errcode.ErrInternalServer.Wrap(err)
	}

	resp := Response{
		StatusCode: e.Status,
		Message:    e.Msg,
	}
	if withStack && e.Cause() != nil {
		resp.Stack = e.Cause().Error()
	}

	c.JSON(e.Status, resp)
}

// ErrorWithCode sends an error response with specific error code
func ErrorWithCode(ctx context.Context, c *app.RequestContext, e *errcode.Error) {
	Error(ctx, c, e)
}

// Abort sends the error response and stops the handler chain
func Abort(ctx context.Context, c *app.RequestContext, err error) {
	Error(ctx, c, err)
	c.Abort()
}
