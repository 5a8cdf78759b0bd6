package collab

import "encoding/json"

type Message struct {
	Type     string          `json:"type"`
	Prefix   string          `json:"prefix,omitempty"`
	NodeID   string          `json:"nodeId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Peers    int    `json:"peers"`
}

type ClearedPayload struct {
	Removed int `json:"removed"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Server to client
	TypeConfigUpdate  = "config.update"
	TypeConfigCleared = "config.cleared"

	// Client to server: resend the stored config.
	TypeConfigRequest = "config.request"
)

func newMessage(typ, prefix, nodeID string, payload any) (*Message, error) {
	msg := &Message{Type: typ, Prefix: prefix, NodeID: nodeID}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return msg, nil
}
