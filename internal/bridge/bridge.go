// Package bridge forwards received mailbox messages to an MQTT topic.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beast-mode/mailbox-core/golang/internal/config"
	"github.com/beast-mode/mailbox-core/golang/internal/log"
	"github.com/beast-mode/mailbox-core/golang/internal/mailbox"
	"github.com/beast-mode/mailbox-core/golang/internal/message"
	"github.com/beast-mode/mailbox-core/golang/internal/mqtt"
	"github.com/beast-mode/mailbox-core/golang/pkg/jsonfast"
)

// Publisher is the outbound side of the bridge, implemented by *mqtt.Client
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// Bridge is a mailbox handler that republishes every received message as a
// self-contained JSON envelope on an MQTT topic. Dispatch is serialized by
// the mailbox service, so one connection and one builder suffice.
type Bridge struct {
	pub     Publisher
	builder *jsonfast.Builder
	log     *log.Logger
}

// New connects the bridge to the broker configured in cfg
func New(cfg *config.BridgeConfig, logger *log.Logger) (*Bridge, error) {
	client, err := mqtt.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create MQTT client: %w", err)
	}
	return &Bridge{
		pub:     client,
		builder: jsonfast.New(512),
		log:     logger,
	}, nil
}

// Handler returns the mailbox handler that forwards messages
func (b *Bridge) Handler() mailbox.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		envelope, err := b.buildEnvelope(msg)
		if err != nil {
			return err
		}
		if err := b.pub.Publish(ctx, envelope); err != nil {
			return fmt.Errorf("failed to forward message %s: %w", msg.MessageID, err)
		}
		b.log.Debug("Forwarded message %s to MQTT", msg.MessageID)
		return nil
	}
}

// buildEnvelope renders one message as a flat JSON object. The payload is
// embedded as raw JSON so consumers see it unescaped.
func (b *Bridge) buildEnvelope(msg *message.Message) ([]byte, error) {
	payload := msg.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload of %s: %w", msg.MessageID, err)
	}

	b.builder.Reset()
	b.builder.BeginObject()
	b.builder.AddStringField(message.FieldMessageID, msg.MessageID)
	b.builder.AddStringField(message.FieldSender, msg.Sender)
	b.builder.AddStringField(message.FieldRecipient, msg.Recipient)
	b.builder.AddStringField(message.FieldMessageType, msg.MessageType)
	b.builder.AddFloatField(message.FieldTimestamp, msg.Timestamp)
	b.builder.AddRawJSONField(message.FieldPayload, raw)
	b.builder.EndObject()

	// Copy out of the reusable buffer before the next message overwrites it
	envelope := make([]byte, len(b.builder.Bytes()))
	copy(envelope, b.builder.Bytes())
	return envelope, nil
}

// Close disconnects the bridge from the broker
func (b *Bridge) Close() error {
	return b.pub.Close()
}
