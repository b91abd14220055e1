// Package mailbox implements the durable per-agent mailbox service on Redis streams.
//
// Each agent owns one inbox stream ("{prefix}:{agent}:in") consumed through a
// per-agent consumer group ("{agent}:group"). Delivery is at-least-once:
// entries delivered but not acknowledged before a crash are reclaimed and
// re-dispatched by the recovery engine on the next Start.
package mailbox

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/beast-mode/mailbox-core/golang/internal/config"
	"github.com/beast-mode/mailbox-core/golang/internal/log"
	"github.com/beast-mode/mailbox-core/golang/internal/message"
)

// Handler consumes one decoded mailbox message. Handlers run sequentially on
// the service's consume goroutine; a returned error is logged and does not
// prevent later handlers or acknowledgment.
type Handler func(ctx context.Context, msg *message.Message) error

// RecoveryCallback observes the metrics of one recovery run. It is invoked
// exactly once per Start; a returned error is logged and ignored.
type RecoveryCallback func(ctx context.Context, metrics RecoveryMetrics) error

// Service is the mailbox runtime for one agent. A single instance owns its
// Redis client and its consume goroutine; handler dispatch is serialized.
type Service struct {
	agentID  string
	cfg      *config.MailboxConfig
	log      *log.Logger
	group    string
	consumer string

	recoveryCallback RecoveryCallback

	mu       sync.Mutex
	rdb      *redis.Client
	handlers []Handler
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewService creates a mailbox service for agentID. A nil cfg resolves the
// configuration from the environment (REDIS_HOST et al., then REDIS_URL,
// then defaults). The consumer name gets a random suffix so incarnations
// sharing the agent's group remain distinguishable.
func NewService(agentID string, cfg *config.MailboxConfig, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New()
	}
	if cfg == nil {
		cfg = config.FromEnv(logger)
	}
	return &Service{
		agentID:  agentID,
		cfg:      cfg,
		log:      logger,
		group:    agentID + ":group",
		consumer: agentID + ":" + consumerSuffix(),
	}
}

// consumerSuffix returns six hex characters for the per-instance consumer name
func consumerSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// AgentID returns the agent this service was constructed for
func (s *Service) AgentID() string {
	return s.agentID
}

// InboxStream returns the Redis stream name of this agent's inbox,
// "{prefix}:{agent}:in".
func (s *Service) InboxStream() string {
	return streamFor(s.cfg.StreamPrefix, s.agentID)
}

// ConsumerName returns this instance's name within the consumer group
func (s *Service) ConsumerName() string {
	return s.consumer
}

// Group returns the agent's consumer group name
func (s *Service) Group() string {
	return s.group
}

func streamFor(prefix, agentID string) string {
	return fmt.Sprintf("%s:%s:in", prefix, agentID)
}

// OnRecovery registers the recovery callback. Must be called before Start.
func (s *Service) OnRecovery(cb RecoveryCallback) {
	s.recoveryCallback = cb
}

// RegisterHandler appends a handler to the dispatch list. Handlers are
// invoked in registration order. The list must not be mutated from within a
// handler; dispatch iterates a snapshot.
func (s *Service) RegisterHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

func (s *Service) handlerSnapshot() []Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Handler, len(s.handlers))
	copy(out, s.handlers)
	return out
}

// connect lazily opens the Redis client and verifies the connection with a
// ping. Subsequent calls are no-ops until Stop clears the handle.
func (s *Service) connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rdb != nil {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        s.cfg.Addr(),
		Password:    s.cfg.Password,
		DB:          s.cfg.DB,
		DialTimeout: s.cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.rdb = rdb
	return nil
}

func (s *Service) client() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb
}

// SendMessage appends a message to the recipient's inbox stream with
// approximate MAXLEN trimming and returns the message id. Senders never need
// Start: only a connection is ensured, the recipient's group is untouched.
// An empty msgType defaults to message.DefaultType; an empty msgID gets a
// fresh UUID.
func (s *Service) SendMessage(
	ctx context.Context, recipient string, payload map[string]interface{}, msgType, msgID string,
) (string, error) {
	if err := s.connect(ctx); err != nil {
		return "", err
	}

	msg := message.New(s.agentID, recipient, payload, msgType, msgID)
	fields, err := msg.ToRedisFields()
	if err != nil {
		return "", err
	}

	stream := streamFor(s.cfg.StreamPrefix, recipient)
	err = s.client().XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: s.cfg.MaxStreamLength,
		Approx: true,
		Values: fields,
	}).Err()
	if err != nil {
		return "", fmt.Errorf("xadd to %s failed: %w", stream, err)
	}

	s.log.Debug("Sent message %s to stream %s", msg.MessageID, stream)
	return msg.MessageID, nil
}

// Start connects, ensures the consumer group exists (reading from the stream
// beginning, tolerating BUSYGROUP), runs pending-message recovery to
// completion and launches the consume loop. It returns nil only once the
// consume loop is live.
func (s *Service) Start(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	err := s.client().XGroupCreateMkStream(ctx, s.InboxStream(), s.group, "0").Err()
	if err != nil {
		if !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create consumer group %s: %w", s.group, err)
		}
		s.log.Debug("Consumer group %s already exists, joining", s.group)
	} else {
		s.log.Info("Created consumer group %s for stream %s", s.group, s.InboxStream())
	}

	// Recovery runs to completion before any new entry is read, so reclaimed
	// entries are dispatched and acknowledged first.
	s.runRecovery(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.consumeLoop(loopCtx)
	}()

	return nil
}

// Stop shuts the service down: it signals the consume loop, waits for it to
// exit and closes the Redis client. Stop is the cleanup handler, so it
// swallows shutdown-path errors and is safe to call repeatedly.
func (s *Service) Stop() {
	s.mu.Lock()
	s.running = false
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	s.mu.Lock()
	rdb := s.rdb
	s.rdb = nil
	s.mu.Unlock()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			s.log.Debug("Error closing Redis client: %v", err)
		}
	}
}
