package mailbox

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beast-mode/mailbox-core/golang/internal/message"
)

// readBatchSize bounds how many entries one XREADGROUP call may return.
const readBatchSize = 10

// consumeLoop blocks on the inbox stream and drives new entries through
// decode → dispatch → XACK until the context is canceled. Transient read
// failures are logged and retried after one poll interval.
func (s *Service) consumeLoop(ctx context.Context) {
	rdb := s.client()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result, err := rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.InboxStream(), ">"},
			Count:    readBatchSize,
			Block:    s.cfg.PollInterval,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Block timeout, nothing new
				continue
			}
			if ctx.Err() != nil {
				return
			}
			s.log.Error("Error in mailbox consume loop: %v", err)
			s.sleep(ctx, s.cfg.PollInterval)
			continue
		}

		for _, streamResult := range result {
			s.log.Debug("Mailbox received %d messages from %s", len(streamResult.Messages), streamResult.Stream)
			for _, entry := range streamResult.Messages {
				s.handleEntry(ctx, rdb, streamResult.Stream, entry)
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// handleEntry decodes one stream entry, dispatches it and acknowledges it.
// Acknowledgment follows dispatch unconditionally: a failing handler must not
// turn a message into a poison pill.
func (s *Service) handleEntry(ctx context.Context, rdb *redis.Client, stream string, entry redis.XMessage) {
	msg := message.FromRedisFields(entry.Values)
	s.dispatch(ctx, msg)
	if err := rdb.XAck(ctx, stream, s.group, entry.ID).Err(); err != nil && ctx.Err() == nil {
		s.log.Error("Failed to ack entry %s on %s: %v", entry.ID, stream, err)
	}
}

// dispatch runs every registered handler on the message, in registration
// order. Handler errors and panics are logged and suppressed so the
// remaining handlers still run.
func (s *Service) dispatch(ctx context.Context, msg *message.Message) {
	handlers := s.handlerSnapshot()
	if len(handlers) == 0 {
		s.log.Info("Mailbox message %s received with no handlers registered", msg.MessageID)
		return
	}
	for _, h := range handlers {
		s.invoke(ctx, h, msg)
	}
}

func (s *Service) invoke(ctx context.Context, h Handler, msg *message.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Mailbox handler panicked on message %s: %v", msg.MessageID, r)
		}
	}()
	if err := h(ctx, msg); err != nil {
		s.log.Error("Mailbox handler failed on message %s: %v", msg.MessageID, err)
	}
}

// sleep waits for d or until the context is canceled
func (s *Service) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
