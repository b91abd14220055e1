// Package main runs a mailbox service for one agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beast-mode/mailbox-core/golang/internal/bridge"
	"github.com/beast-mode/mailbox-core/golang/internal/config"
	"github.com/beast-mode/mailbox-core/golang/internal/log"
	"github.com/beast-mode/mailbox-core/golang/internal/mailbox"
	"github.com/beast-mode/mailbox-core/golang/internal/message"
)

var flagEcho = flag.Bool("echo", false, "Print received messages to stdout")

func run() int {
	logger := log.New()

	cfg, agentID, err := loadAndLogConfig(logger)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return 1
	}

	service := mailbox.NewService(agentID, &cfg.Mailbox, logger)
	service.OnRecovery(func(_ context.Context, metrics mailbox.RecoveryMetrics) error {
		logger.Info("Recovery heartbeat: %d messages in %d batches", metrics.TotalRecovered, metrics.BatchesProcessed)
		return nil
	})

	if *flagEcho {
		service.RegisterHandler(echoHandler(logger))
	}

	mqttBridge, err := attachBridge(service, cfg, logger)
	if err != nil {
		logger.Error("Failed to start MQTT bridge: %v", err)
		return 1
	}
	if mqttBridge != nil {
		defer func() { _ = mqttBridge.Close() }()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := service.Start(ctx); err != nil {
		logger.Error("Failed to start mailbox service: %v", err)
		return 1
	}
	logger.Info("Mailbox service started for agent %s (inbox %s)", agentID, service.InboxStream())

	stopJanitor := startJanitor(ctx, service, &cfg.Mailbox, logger)
	defer stopJanitor()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal %v, stopping mailbox service", sig)

	service.Stop()
	logger.Info("Mailbox service stopped")
	return 0
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, string, error) {
	flag.Parse()
	if flag.NArg() < 1 {
		return nil, "", fmt.Errorf("usage: mailbox [flags] AGENT_ID")
	}
	agentID := flag.Arg(0)

	cfg, err := config.Load(logger)
	if err != nil {
		return nil, "", err
	}

	logger.Info("Redis: %s db %d, prefix %s", cfg.Mailbox.Addr(), cfg.Mailbox.DB, cfg.Mailbox.StreamPrefix)
	if cfg.Bridge.Enabled() {
		logger.Info("MQTT bridge: %s topic %s", cfg.Bridge.Broker, cfg.Bridge.Topic)
	}
	return cfg, agentID, nil
}

func echoHandler(logger *log.Logger) mailbox.Handler {
	return func(_ context.Context, msg *message.Message) error {
		logger.Info("%s <- %s (%s): %v", msg.Recipient, msg.Sender, msg.MessageType, msg.Payload)
		return nil
	}
}

func attachBridge(service *mailbox.Service, cfg *config.Config, logger *log.Logger) (*bridge.Bridge, error) {
	if !cfg.Bridge.Enabled() {
		return nil, nil
	}
	b, err := bridge.New(&cfg.Bridge, logger)
	if err != nil {
		return nil, err
	}
	service.RegisterHandler(b.Handler())
	return b, nil
}

// startJanitor runs periodic stale consumer cleanup when configured.
// Returns a stop function.
func startJanitor(ctx context.Context, service *mailbox.Service, cfg *config.MailboxConfig, logger *log.Logger) func() {
	if cfg.CleanupInterval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case <-ticker.C:
				if _, err := service.CleanupStaleConsumers(ctx); err != nil {
					logger.Error("Failed to cleanup stale consumers: %v", err)
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(quit)
		<-done
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
