package gateway

import "time"

// Timeout defaults, used when the config leaves them unset
const (
	// WriteWait is time allowed to write a message to the peer
	WriteWait = 10 * time.Second

	// PongWait is time allowed to read the next pong message from the peer
	PongWait = 30 * time.Second

	// PingPeriod is period between pings. Must be less than PongWait
	PingPeriod = (PongWait * 9) / 10

	// MaxMessageSize is maximum message size allowed from peer
	MaxMessageSize = 51200

	// WriteChannelSize is the per-connection outbound buffer
	WriteChannelSize = 256
)

// QueryToken is the handshake query parameter carrying the access token
const QueryToken = "token"
