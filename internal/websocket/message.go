package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "PING"

	// Server to Client
	MessageTypeConnected        MessageType = "CONNECTED"
	MessageTypePong             MessageType = "PONG"
	MessageTypeDashboardChanged MessageType = "DASHBOARD_CHANGED"
	MessageTypeError            MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Server to Client payloads

type ConnectedPayload struct {
	UserID string `json:"userId"`
}

// DashboardChangedPayload tells clients to refetch their dashboard.
// ActorID is empty for system sweeps.
type DashboardChangedPayload struct {
	Reason  string `json:"reason"`
	ActorID string `json:"actorId,omitempty"`
	Self    bool   `json:"self"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
