package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/internal/config"
)

// ClientConn represents a WebSocket connection wrapper
type ClientConn interface {
	ReadMessage() ([]byte, error)
	// WriteMessage queues a text frame; it never blocks on a slow peer
	WriteMessage(data []byte) error
	Close() error
}

// connOptions carries the per-connection limits
type connOptions struct {
	maxMsgSize  int64
	writeWait   time.Duration
	pongWait    time.Duration
	pingPeriod  time.Duration
	writeBuffer int
}

func newConnOptions(cfg config.WebSocketConfig) connOptions {
	opts := connOptions{
		maxMsgSize:  cfg.MaxMessageSize,
		writeWait:   cfg.WriteWait,
		pongWait:    cfg.PongWait,
		pingPeriod:  cfg.PingPeriod,
		writeBuffer: cfg.WriteChannelSize,
	}
	if opts.maxMsgSize <= 0 {
		opts.maxMsgSize = MaxMessageSize
	}
	if opts.writeWait <= 0 {
		opts.writeWait = WriteWait
	}
	if opts.pongWait <= 0 {
		opts.pongWait = PongWait
	}
	if opts.pingPeriod <= 0 || opts.pingPeriod >= opts.pongWait {
		opts.pingPeriod = (opts.pongWait * 9) / 10
	}
	if opts.writeBuffer <= 0 {
		opts.writeBuffer = WriteChannelSize
	}
	return opts
}

// websocketClientConn implements ClientConn using gorilla/websocket
type websocketClientConn struct {
	conn      *websocket.Conn
	opts      connOptions
	writeChan chan []byte
	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    bool
}

// NewWebSocketClientConn creates a new websocket client connection
func NewWebSocketClientConn(conn *websocket.Conn, opts connOptions) *websocketClientConn {
	c := &websocketClientConn{
		conn:      conn,
		opts:      opts,
		writeChan: make(chan []byte, opts.writeBuffer),
	}

	conn.SetReadLimit(opts.maxMsgSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(opts.pongWait))
	})

	go c.writeLoop()

	return c
}

// writeLoop handles all writes to the connection (single writer pattern)
func (c *websocketClientConn) writeLoop() {
	ticker := time.NewTicker(c.opts.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.writeChan:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug("write message error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("ping error: %v", err)
				return
			}
		}
	}
}

// ReadMessage reads a message from the connection
func (c *websocketClientConn) ReadMessage() ([]byte, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait))
	_, message, err := c.conn.ReadMessage()
	return message, err
}

// WriteMessage queues a message to be written
func (c *websocketClientConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.writeChan <- data:
		return nil
	default:
		return ErrWriteChannelFull
	}
}

// Close closes the connection. Queued frames are flushed before the close frame.
func (c *websocketClientConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.closed = true
		close(c.writeChan)
		c.writeMu.Unlock()
	})
	return nil
}
