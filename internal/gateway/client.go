package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/pkg/constant"
)

// Client represents a connected WebSocket client
type Client struct {
	conn      ClientConn
	UserId    string
	ConnId    string
	server    *WsServer
	closed    atomic.Bool
	closeOnce sync.Once
	closedErr error
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new client
func NewClient(conn ClientConn, userId, connId string, server *WsServer) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:   conn,
		UserId: userId,
		ConnId: connId,
		server: server,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the client message handling
func (c *Client) Start() {
	go c.readLoop()
}

// readLoop continuously reads frames until the peer goes away
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			c.closedErr = ErrPanic
			log.CtxError(c.ctx, "client read loop panic: user_id=%s, error=%v", c.UserId, r)
		}
		c.close()
	}()

	for {
		message, err := c.conn.ReadMessage()
		if err != nil {
			log.CtxDebug(c.ctx, "read message error: user_id=%s, error=%v", c.UserId, err)
			c.closedErr = err
			return
		}

		if c.closed.Load() {
			c.closedErr = ErrConnClosed
			return
		}

		if err := c.handleMessage(message); err != nil {
			log.CtxWarn(c.ctx, "handle message error: user_id=%s, error=%v", c.UserId, err)
			c.closedErr = err
			return
		}
	}
}

// handleMessage dispatches one client event. Rejected events are answered
// with an error event; only a failed write ends the connection.
func (c *Client) handleMessage(message []byte) error {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil || frame.Event == "" {
		return c.replyError("", ErrInvalidProtocol)
	}

	var req RoomRequest
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			return c.replyError(frame.Event, ErrInvalidProtocol)
		}
	}

	log.CtxDebug(c.ctx, "received event: event=%s, user_id=%s, id=%s", frame.Event, c.UserId, req.Id)

	var err error
	switch frame.Event {
	case constant.EventJoinConversation:
		err = c.server.HandleJoinConversation(c.ctx, c, &req)
	case constant.EventLeaveConversation:
		err = c.server.HandleLeaveConversation(c.ctx, c, &req)
	case constant.EventJoinUserRoom:
		err = c.server.HandleJoinUserRoom(c.ctx, c, &req)
	case constant.EventLeaveUserRoom:
		err = c.server.HandleLeaveUserRoom(c.ctx, c, &req)
	default:
		err = ErrUnknownEvent
	}

	if err != nil {
		return c.replyError(frame.Event, err)
	}
	return nil
}

// replyError sends an error event back to this connection only
func (c *Client) replyError(event string, err error) error {
	data, mErr := encodeFrame(constant.EventError, ErrorPayload{Event: event, Message: err.Error()})
	if mErr != nil {
		return mErr
	}
	return c.Push(data)
}

// Push queues an encoded frame for this connection
func (c *Client) Push(data []byte) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	return c.conn.WriteMessage(data)
}

// Close closes the client connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// close handles cleanup when connection is closed
func (c *Client) close() {
	c.Close()
	c.server.UnregisterClient(c)
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
