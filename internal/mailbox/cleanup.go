package mailbox

import (
	"context"
	"fmt"
)

// CleanupStaleConsumers removes consumers from this agent's group that have
// been idle longer than the configured consumer idle timeout. Every
// incarnation registers a random consumer name, so crashed instances
// accumulate in the group forever without this. XGROUP DELCONSUMER discards
// a consumer's pending entries, which is why recovery reclaims them at Start
// and why only long-idle consumers are removed here. The instance's own
// consumer is never removed.
func (s *Service) CleanupStaleConsumers(ctx context.Context) (int, error) {
	if err := s.connect(ctx); err != nil {
		return 0, err
	}

	consumers, err := s.client().XInfoConsumers(ctx, s.InboxStream(), s.group).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get consumers info: %w", err)
	}

	removed := 0
	for _, consumer := range consumers {
		if consumer.Name == s.consumer {
			continue
		}
		if consumer.Idle <= s.cfg.ConsumerIdleTimeout {
			s.log.Debug("Consumer %s is active (idle for %s)", consumer.Name, consumer.Idle)
			continue
		}

		s.log.Info("Removing stale consumer %s from group %s (idle for %s)", consumer.Name, s.group, consumer.Idle)
		pending, err := s.client().XGroupDelConsumer(ctx, s.InboxStream(), s.group, consumer.Name).Result()
		if err != nil {
			s.log.Error("Failed to delete consumer %s: %v", consumer.Name, err)
			continue
		}
		if pending > 0 {
			s.log.Warn("Deleted consumer %s still had %d pending messages", consumer.Name, pending)
		}
		removed++
	}

	if removed > 0 {
		s.log.Info("Cleaned up %d stale consumers from group %s", removed, s.group)
	}
	return removed, nil
}
