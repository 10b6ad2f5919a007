// Package protocol defines the status message contract between the relay
// and its status clients.
//
// The wire shape is a single JSON object {"type": "<enum>"}. The relay pushes
// network-ok, network-error, and server-error frames; clients send
// status-request frames and receive a direct reply carrying the last status.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the shared connectivity status owned by the relay.
type Status string

const (
	// StatusOnline is the baseline state: the last navigation reached the upstream.
	StatusOnline Status = "online"
	// StatusNetworkError means the last navigation got no upstream response.
	StatusNetworkError Status = "network-error"
	// StatusServerError means the last navigation got an upstream HTTP error.
	StatusServerError Status = "server-error"
)

// Message type strings as they appear on the wire.
const (
	TypeNetworkOK     = "network-ok"
	TypeNetworkError  = "network-error"
	TypeServerError   = "server-error"
	TypeStatusRequest = "status-request"
)

// Message is one frame of the status protocol.
type Message struct {
	Type string `json:"type"`
}

// ParseMessage decodes a frame. Unknown types decode fine; callers decide
// whether to ignore them. Malformed JSON or an empty type is an error.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if strings.TrimSpace(msg.Type) == "" {
		return Message{}, fmt.Errorf("message type is required")
	}
	return msg, nil
}

// MessageType returns the wire type string for a status. The conceptual
// "online" state travels as network-ok.
func (s Status) MessageType() string {
	switch s {
	case StatusNetworkError:
		return TypeNetworkError
	case StatusServerError:
		return TypeServerError
	default:
		return TypeNetworkOK
	}
}

// StatusFromType maps a wire type string back to a status. The second result
// is false for status-request and unknown types.
func StatusFromType(messageType string) (Status, bool) {
	switch messageType {
	case TypeNetworkOK:
		return StatusOnline, true
	case TypeNetworkError:
		return StatusNetworkError, true
	case TypeServerError:
		return StatusServerError, true
	default:
		return "", false
	}
}

// Valid reports whether s is a member of the closed status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusNetworkError, StatusServerError:
		return true
	}
	return false
}
