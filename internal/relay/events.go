// Package relay fans real-time chat events out to connected users. Delivery
// is best effort: events for users with no live connection are dropped.
package relay

import (
	"encoding/json"
	"strings"
)

// Client to server events.
const (
	EventJoin           = "join"
	EventPrivateMessage = "privateMessage"
	EventTyping         = "typing"
)

// Server to client events.
const (
	EventJoined     = "joined"
	EventNewMessage = "newMessage"
	EventUserTyping = "userTyping"
	EventError      = "error"
)

// Frame is the wire envelope in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Delivery is a frame addressed to every connection of one user.
type Delivery struct {
	To     string          `json:"to"`
	Origin string          `json:"origin"`
	Frame  json.RawMessage `json:"frame"`
}

// routed maps an inbound event onto the event the receiver gets.
var routed = map[string]string{
	EventPrivateMessage: EventNewMessage,
	EventTyping:         EventUserTyping,
}

func encodeFrame(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// joinTarget accepts either a bare id string or {"userId": "..."}.
func joinTarget(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return strings.TrimSpace(obj.UserID)
	}
	return ""
}
