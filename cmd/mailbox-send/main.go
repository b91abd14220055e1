// Package main sends a single message through the mailbox.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/beast-mode/mailbox-core/golang/internal/config"
	"github.com/beast-mode/mailbox-core/golang/internal/log"
	"github.com/beast-mode/mailbox-core/golang/internal/mailbox"
)

var (
	flagMessage     = flag.String("message", "hello", "Text message payload")
	flagJSON        = flag.String("json", "", "JSON object payload (overrides -message)")
	flagMessageType = flag.String("message-type", "", "Message type tag")
)

func run() int {
	logger := log.New()

	flag.Parse()
	if flag.NArg() < 2 {
		logger.Error("usage: mailbox-send [flags] SENDER RECIPIENT")
		return 2
	}
	sender, recipient := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return 1
	}

	payload, err := buildPayload()
	if err != nil {
		logger.Error("Invalid payload: %v", err)
		return 2
	}

	service := mailbox.NewService(sender, &cfg.Mailbox, logger)
	defer service.Stop()

	msgID, err := service.SendMessage(context.Background(), recipient, payload, *flagMessageType, "")
	if err != nil {
		logger.Error("Failed to send message: %v", err)
		return 1
	}

	logger.Info("Sent message %s from %s to %s", msgID, sender, recipient)
	return 0
}

func buildPayload() (map[string]interface{}, error) {
	if *flagJSON == "" {
		return map[string]interface{}{"message": *flagMessage}, nil
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal([]byte(*flagJSON), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse -json: %w", err)
	}
	return payload, nil
}

func main() {
	os.Exit(run())
}
