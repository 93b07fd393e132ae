package gateway

import "errors"

// Gateway errors
var (
	ErrConnClosed       = errors.New("connection closed")
	ErrWriteChannelFull = errors.New("write channel full")
	ErrInvalidProtocol  = errors.New("invalid protocol")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrNotMember        = errors.New("not a member of this conversation")
	ErrForeignUserRoom  = errors.New("cannot join another user's room")
	ErrPanic            = errors.New("panic error")
)
