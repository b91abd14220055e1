package config

import "fmt"

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := ValidateMailbox(&cfg.Mailbox); err != nil {
		return err
	}
	return validateBridge(&cfg.Bridge)
}

// ValidateMailbox validates mailbox configuration
func ValidateMailbox(cfg *MailboxConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("redis host cannot be empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("redis port out of range: %d", cfg.Port)
	}
	if cfg.DB < 0 {
		return fmt.Errorf("redis database number cannot be negative")
	}
	if cfg.StreamPrefix == "" {
		return fmt.Errorf("stream prefix cannot be empty")
	}
	if cfg.MaxStreamLength < 1 {
		return fmt.Errorf("max stream length must be positive")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if cfg.RecoveryMinIdle < 0 {
		return fmt.Errorf("recovery min idle time cannot be negative")
	}
	if cfg.RecoveryBatchSize < 1 {
		return fmt.Errorf("recovery batch size must be positive")
	}
	return nil
}

// validateBridge validates MQTT bridge configuration when enabled
func validateBridge(cfg *BridgeConfig) error {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("mqtt topic cannot be empty")
	}
	if cfg.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	return nil
}
