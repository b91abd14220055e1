package config

import (
	"flag"
	"fmt"

	"github.com/beast-mode/mailbox-core/golang/internal/log"
)

// Load loads configuration with precedence: defaults → environment variables → command line flags.
// It performs validation before returning the configuration.
func Load(logger *log.Logger) (*Config, error) {
	// Parse command line flags if not already parsed
	if !flag.Parsed() {
		flag.Parse()
	}

	// Step 1: Start with defaults
	cfg := defaultConfig()

	// Step 2: Apply environment variables
	loadMailboxFromEnv(&cfg.Mailbox, logger)
	loadBridgeFromEnv(&cfg.Bridge)

	// Step 3: Apply command line flags (highest precedence)
	applyMailboxFlags(&cfg.Mailbox)
	applyBridgeFlags(&cfg.Bridge)

	// Step 4: Validate the final configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
