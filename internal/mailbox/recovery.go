package mailbox

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beast-mode/mailbox-core/golang/internal/message"
)

// autoclaimStart is the cursor that makes XAUTOCLAIM scan from the beginning
// of the pending entries list; the server returns it again once a full pass
// is complete.
const autoclaimStart = "0-0"

// RecoveryMetrics collects the statistics of one pending-message recovery run.
type RecoveryMetrics struct {
	TotalRecovered   int
	BatchesProcessed int
	StartTime        time.Time
	EndTime          time.Time
}

// Elapsed returns the duration of the recovery run
func (m RecoveryMetrics) Elapsed() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// runRecovery performs one recovery pass and invokes the recovery callback
// exactly once, on every path - including the disabled and no-handler
// short-circuits - so observers get a consistent heartbeat per Start.
func (s *Service) runRecovery(ctx context.Context) RecoveryMetrics {
	metrics := s.recoverPendingMessages(ctx)

	if cb := s.recoveryCallback; cb != nil {
		if err := s.safeCallback(ctx, cb, metrics); err != nil {
			s.log.Error("Recovery callback failed: %v", err)
		}
	}
	return metrics
}

func (s *Service) safeCallback(ctx context.Context, cb RecoveryCallback, metrics RecoveryMetrics) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Recovery callback panicked: %v", r)
		}
	}()
	return cb(ctx, metrics)
}

// recoverPendingMessages claims entries a prior incarnation delivered but
// never acknowledged and drives them through dispatch and XACK. It runs
// before the consume loop so reclaimed entries are settled ahead of new ones.
func (s *Service) recoverPendingMessages(ctx context.Context) RecoveryMetrics {
	metrics := RecoveryMetrics{StartTime: time.Now()}

	if !s.cfg.EnableRecovery {
		s.log.Info("Pending message recovery is disabled")
		metrics.EndTime = time.Now()
		return metrics
	}

	if len(s.handlerSnapshot()) == 0 {
		// ACKing without dispatch would silently drop messages
		s.log.Warn("No handlers registered for recovery - pending messages will not be processed")
		metrics.EndTime = time.Now()
		return metrics
	}

	if !s.probePending(ctx) {
		metrics.EndTime = time.Now()
		return metrics
	}

	s.log.Info("Starting pending message recovery on %s", s.InboxStream())
	s.claimAndDispatch(ctx, &metrics)

	metrics.EndTime = time.Now()
	s.log.Info(
		"Recovery complete: %d messages recovered in %d batches (%.2fs)",
		metrics.TotalRecovered,
		metrics.BatchesProcessed,
		metrics.Elapsed().Seconds(),
	)
	return metrics
}

// probePending reports whether the group has at least one pending entry.
// A missing group (NOGROUP) and probe failures short-circuit recovery
// without failing Start.
func (s *Service) probePending(ctx context.Context) bool {
	pending, err := s.client().XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: s.InboxStream(),
		Group:  s.group,
		Start:  "-",
		End:    "+",
		Count:  1,
	}).Result()

	if err != nil {
		if strings.Contains(err.Error(), "NOGROUP") {
			s.log.Debug("Consumer group does not exist yet - skipping recovery")
		} else {
			s.log.Warn("Failed to check pending messages: %v", err)
		}
		return false
	}

	if len(pending) == 0 {
		s.log.Info("No pending messages to recover")
		return false
	}
	return true
}

// claimAndDispatch walks the pending entries list with XAUTOCLAIM, starting
// at cursor "0-0", dispatching and acknowledging every claimed entry. An
// empty batch with the cursor back at "0-0" means the pass is complete; an
// empty batch with any other cursor advances it so the walk always makes
// forward progress. Failures break the loop, preserving metrics so far.
func (s *Service) claimAndDispatch(ctx context.Context, metrics *RecoveryMetrics) {
	rdb := s.client()
	cursor := autoclaimStart

	for {
		if ctx.Err() != nil {
			return
		}

		claimed, next, err := rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   s.InboxStream(),
			Group:    s.group,
			Consumer: s.consumer,
			MinIdle:  s.cfg.RecoveryMinIdle,
			Start:    cursor,
			Count:    s.cfg.RecoveryBatchSize,
		}).Result()

		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("Error during recovery: %v", err)
			}
			return
		}

		if len(claimed) == 0 {
			if next == autoclaimStart {
				return
			}
			cursor = next
			continue
		}

		s.log.Debug("Recovered batch of %d pending messages (next: %s)", len(claimed), next)

		for _, entry := range claimed {
			msg := message.FromRedisFields(entry.Values)
			s.log.Debug("Recovering message %s from %s", entry.ID, msg.Sender)

			s.dispatch(ctx, msg)

			if err := rdb.XAck(ctx, s.InboxStream(), s.group, entry.ID).Err(); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Error("Failed to ack recovered entry %s: %v", entry.ID, err)
			}
			metrics.TotalRecovered++
		}

		metrics.BatchesProcessed++
		cursor = next
	}
}
