package organizer

import (
	"strings"
	"time"
)

// Role classifies the origin of a Message.
type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
	RoleTool   Role = "tool"
	RoleError  Role = "error"
)

// Message is the unified, immutable message model of the system.
// Create with NewMessage (derives Role from Sender) and treat as a value:
// never mutate a Message in place, copy with the With* helpers instead.
type Message struct {
	Sender        string         `json:"sender"`
	Content       string         `json:"content"`
	Role          Role           `json:"role"`
	Meta          map[string]any `json:"meta,omitempty"`
	Timestamp     string         `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// NewMessage creates a Message with the role derived from sender and the
// timestamp set to now.
func NewMessage(sender, content string) Message {
	return Message{
		Sender:    sender,
		Content:   content,
		Role:      RoleFromSender(sender),
		Timestamp: NowISO(),
	}
}

// RoleFromSender derives the message role from a sender name:
// "user" -> user, "system" -> system, "tool"/"tool_runner" -> tool,
// "error" -> error, anything else -> agent.
func RoleFromSender(sender string) Role {
	switch strings.ToLower(sender) {
	case "user":
		return RoleUser
	case "system":
		return RoleSystem
	case "tool", "tool_runner":
		return RoleTool
	case "error":
		return RoleError
	default:
		return RoleAgent
	}
}

// WithCorrelationID returns a copy of the message carrying cid.
func (m Message) WithCorrelationID(cid string) Message {
	m.CorrelationID = cid
	return m
}

// WithMeta returns a copy of the message with key set in a copied Meta map.
func (m Message) WithMeta(key string, value any) Message {
	meta := make(map[string]any, len(m.Meta)+1)
	for k, v := range m.Meta {
		meta[k] = v
	}
	meta[key] = value
	m.Meta = meta
	return m
}

// NowISO returns the current UTC time in ISO-8601 format.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
