package service

import (
	"context"

	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/pkg/errcode"
)

// EventPusher delivers real-time events. Services call it only after the
// transaction that produced the event has committed; delivery is best effort.
type EventPusher interface {
	// Emit publishes event to every connection joined to room
	Emit(room, event string, payload interface{})
	// JoinUser joins every live connection of userId to room
	JoinUser(userId, room string)
}

// nopPusher drops every event; used until a gateway is attached
type nopPusher struct{}

func (nopPusher) Emit(string, string, interface{}) {}
func (nopPusher) JoinUser(string, string)          {}

// pusherHolder is embedded by services that publish events
type pusherHolder struct {
	pusher EventPusher
}

// SetPusher sets the event pusher
func (h *pusherHolder) SetPusher(pusher EventPusher) {
	if pusher == nil {
		pusher = nopPusher{}
	}
	h.pusher = pusher
}

func (h *pusherHolder) emit(room, event string, payload interface{}) {
	if h.pusher == nil {
		return
	}
	h.pusher.Emit(room, event, payload)
}

func (h *pusherHolder) join(userId, room string) {
	if h.pusher == nil {
		return
	}
	h.pusher.JoinUser(userId, room)
}

// mapTxError passes business errors through unchanged and reports anything
// else as fallback, logging the cause once
func mapTxError(ctx context.Context, op string, err error, fallback *errcode.Error) error {
	if e, ok := errcode.From(err); ok {
		return e
	}
	log.CtxError(ctx, "%s failed: %v", op, err)
	return fallback.Wrap(err)
}
