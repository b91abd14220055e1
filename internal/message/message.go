// Package message defines the mailbox message value type and its Redis stream codec.
package message

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultType is the message classification used when none is given.
const DefaultType = "direct_message"

// Field names of a mailbox stream entry. Every entry written by the producer
// carries all six.
const (
	FieldMessageID   = "message_id"
	FieldSender      = "sender"
	FieldRecipient   = "recipient"
	FieldPayload     = "payload"
	FieldMessageType = "message_type"
	FieldTimestamp   = "timestamp"
)

// Message is a structured message exchanged between agents.
type Message struct {
	MessageID   string
	Sender      string
	Recipient   string
	Payload     map[string]interface{}
	MessageType string
	Timestamp   float64
}

// New builds a message with defaults filled in: empty msgID gets a fresh UUID,
// empty msgType gets DefaultType, the timestamp is captured at construction.
func New(sender, recipient string, payload map[string]interface{}, msgType, msgID string) *Message {
	if msgID == "" {
		msgID = uuid.NewString()
	}
	if msgType == "" {
		msgType = DefaultType
	}
	return &Message{
		MessageID:   msgID,
		Sender:      sender,
		Recipient:   recipient,
		Payload:     payload,
		MessageType: msgType,
		Timestamp:   Now(),
	}
}

// Now returns the current time as decimal seconds, the wire representation
// used for the timestamp field.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// ToRedisFields encodes the message as a flat field map for XADD.
// The payload is JSON-encoded; a payload that cannot be represented as JSON
// is a caller error and is surfaced.
func (m *Message) ToRedisFields() (map[string]interface{}, error) {
	payload := m.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return map[string]interface{}{
		FieldMessageID:   m.MessageID,
		FieldSender:      m.Sender,
		FieldRecipient:   m.Recipient,
		FieldPayload:     string(raw),
		FieldMessageType: m.MessageType,
		FieldTimestamp:   strconv.FormatFloat(m.Timestamp, 'f', -1, 64),
	}, nil
}

// FromRedisFields decodes a stream entry field map. Missing or malformed
// fields fall back to defaults instead of failing: a fresh id, "unknown"
// endpoints, an empty payload, DefaultType and a zero timestamp. Entries
// written by foreign producers therefore always decode.
func FromRedisFields(values map[string]interface{}) *Message {
	payload := map[string]interface{}{}
	if raw := stringField(values, FieldPayload, ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			payload = map[string]interface{}{}
		}
	}

	ts := 0.0
	if raw := stringField(values, FieldTimestamp, ""); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			ts = parsed
		}
	}

	return &Message{
		MessageID:   stringField(values, FieldMessageID, uuid.NewString()),
		Sender:      stringField(values, FieldSender, "unknown"),
		Recipient:   stringField(values, FieldRecipient, "unknown"),
		Payload:     payload,
		MessageType: stringField(values, FieldMessageType, DefaultType),
		Timestamp:   ts,
	}
}

func stringField(values map[string]interface{}, key, fallback string) string {
	v, ok := values[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}
