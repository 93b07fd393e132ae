package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a business error carrying the HTTP status it maps to
type Error struct {
	Code   int    `json:"code"`
	Status int    `json:"-"`
	Msg    string `json:"msg"`
	cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors with the same business code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Cause returns the underlying error, if any
func (e *Error) Cause() error {
	return e.cause
}

// New creates a new error with code, HTTP status and message
func New(code, status int, msg string) *Error {
	return &Error{Code: code, Status: status, Msg: msg}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code:   e.Code,
		Status: e.Status,
		Msg:    e.Msg,
		cause:  err,
	}
}

// WithMsg returns a copy with a more specific message
func (e *Error) WithMsg(msg string) *Error {
	return &Error{
		Code:   e.Code,
		Status: e.Status,
		Msg:    msg,
		cause:  e.cause,
	}
}

// From extracts an *Error from err, reporting false for foreign errors
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Common error codes
var (
	// Common errors (1xxx)
	ErrInvalidParam   = New(1001, http.StatusBadRequest, "invalid parameter")
	ErrInternalServer = New(1002, http.StatusInternalServerError, "internal server error")
	ErrUnauthorized   = New(1003, http.StatusUnauthorized, "unauthorized")
	ErrNoPermission   = New(1008, http.StatusForbidden, "no permission to access this resource")
	ErrRouteNotFound  = New(1009, http.StatusNotFound, "route not found")
	ErrMethodNotAllow = New(1010, http.StatusMethodNotAllowed, "method not allowed")

	// Auth errors (2xxx)
	ErrTokenInvalid   = New(2001, http.StatusUnauthorized, "token invalid")
	ErrTokenExpired   = New(2002, http.StatusGone, "token expired")
	ErrTokenMissing   = New(2003, http.StatusUnauthorized, "token missing")
	ErrKeyNotFound    = New(2004, http.StatusUnauthorized, "key record not found")
	ErrLoginFailed    = New(2005, http.StatusUnauthorized, "email or password is incorrect")
	ErrUserNotFound   = New(2006, http.StatusNotFound, "user not found")
	ErrUserExists     = New(2007, http.StatusConflict, "email already registered")
	ErrRefreshReused  = New(2008, http.StatusForbidden, "refresh token reused, please login again")
	ErrRoleNotAllowed = New(2009, http.StatusForbidden, "role not allowed")

	// Conversation errors (3xxx)
	ErrConvNotFound     = New(3001, http.StatusNotFound, "conversation not found")
	ErrNotConvMember    = New(3002, http.StatusForbidden, "not a member of this conversation")
	ErrInvalidPairing   = New(3003, http.StatusUnprocessableEntity, "conversation requires exactly one student and one lecturer")
	ErrSelfConversation = New(3004, http.StatusBadRequest, "cannot start a conversation with yourself")

	// Message errors (4xxx)
	ErrMessageEmpty    = New(4001, http.StatusBadRequest, "message must have content or an image")
	ErrTargetAmbiguous = New(4002, http.StatusBadRequest, "exactly one of conversationId or recipientId is required")
	ErrSendFailed      = New(4003, http.StatusInternalServerError, "message send failed")
	ErrPullFailed      = New(4004, http.StatusInternalServerError, "message pull failed")

	// Notification errors (5xxx)
	ErrNotificationNotFound = New(5001, http.StatusNotFound, "notification not found")

	// WebSocket errors (6xxx)
	ErrConnOverLimit = New(6001, http.StatusServiceUnavailable, "connection over max limit")
)
