package gateway

import "encoding/json"

// Frame is the JSON text frame exchanged in both directions
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomRequest is the payload of the join/leave client events
type RoomRequest struct {
	Id string `json:"id"`
}

// ErrorPayload is sent with the error event
type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// OnlineUsersPayload is sent with the online-users event
type OnlineUsersPayload struct {
	UserIds []string `json:"userIds"`
}

// encodeFrame marshals an outbound frame once so every recipient shares the bytes
func encodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
