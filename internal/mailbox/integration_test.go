package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beast-mode/mailbox-core/golang/internal/config"
)

// These tests need a real Redis on localhost:6379 because XINFO CONSUMERS is
// not implemented by the embedded server the unit tests run against. They
// skip themselves when Redis is not reachable.

func setupIntegrationConfig(t *testing.T) *config.MailboxConfig {
	t.Helper()
	return &config.MailboxConfig{
		Host:                "localhost",
		Port:                6379,
		StreamPrefix:        "beast:mailbox:itest",
		MaxStreamLength:     1000,
		PollInterval:        100 * time.Millisecond,
		EnableRecovery:      true,
		RecoveryBatchSize:   50,
		ConsumerIdleTimeout: 200 * time.Millisecond,
		DialTimeout:         time.Second,
		PingTimeout:         time.Second,
	}
}

func integrationClient(t *testing.T, cfg *config.MailboxConfig) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr(), DialTimeout: cfg.DialTimeout})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Skipping Redis test: %v (Redis not available?)", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestIntegration_CleanupStaleConsumers(t *testing.T) {
	cfg := setupIntegrationConfig(t)
	rdb := integrationClient(t, cfg)
	ctx := context.Background()

	stream := "beast:mailbox:itest:grace:in"
	defer rdb.Del(ctx, stream)

	svc := NewService("grace", cfg, newTestLogger())
	defer svc.Stop()
	svc.RegisterHandler((&recorder{}).handler())
	require.NoError(t, svc.Start(ctx))

	// Simulate a crashed incarnation: a consumer that registered and vanished
	require.NoError(t, rdb.XGroupCreateConsumer(ctx, stream, "grace:group", "grace:dead00").Err())

	// Still fresh, nothing to remove
	removed, err := svc.CleanupStaleConsumers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	time.Sleep(2 * cfg.ConsumerIdleTimeout)

	removed, err = svc.CleanupStaleConsumers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The live instance's own consumer survives
	consumers, err := rdb.XInfoConsumers(ctx, stream, "grace:group").Result()
	require.NoError(t, err)
	names := make([]string, 0, len(consumers))
	for _, c := range consumers {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, svc.ConsumerName())
	assert.NotContains(t, names, "grace:dead00")
}

func TestIntegration_CleanupKeepsActiveConsumers(t *testing.T) {
	cfg := setupIntegrationConfig(t)
	rdb := integrationClient(t, cfg)
	ctx := context.Background()

	stream := "beast:mailbox:itest:heidi:in"
	defer rdb.Del(ctx, stream)

	first := NewService("heidi", cfg, newTestLogger())
	defer first.Stop()
	first.RegisterHandler((&recorder{}).handler())
	require.NoError(t, first.Start(ctx))

	second := NewService("heidi", cfg, newTestLogger())
	defer second.Stop()
	second.RegisterHandler((&recorder{}).handler())
	require.NoError(t, second.Start(ctx))

	// Both loops poll continuously, so neither consumer goes idle
	time.Sleep(2 * cfg.ConsumerIdleTimeout)

	removed, err := first.CleanupStaleConsumers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
