package config

import "time"

// defaultMailboxConfig returns the default mailbox configuration
func defaultMailboxConfig() MailboxConfig {
	return MailboxConfig{
		Host:                "localhost",
		Port:                6379,
		DB:                  0,
		Password:            "",
		StreamPrefix:        "beast:mailbox",
		MaxStreamLength:     1000,
		PollInterval:        2 * time.Second,
		EnableRecovery:      true,
		RecoveryMinIdle:     0,
		RecoveryBatchSize:   50,
		ConsumerIdleTimeout: 5 * time.Minute,
		CleanupInterval:     0,
		DialTimeout:         10 * time.Second,
		PingTimeout:         5 * time.Second,
	}
}

// defaultBridgeConfig returns the default MQTT bridge configuration.
// The empty broker leaves the bridge disabled.
func defaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Broker:               "",
		ClientID:             "mailbox-bridge",
		Topic:                "mailbox/messages",
		QoS:                  0,
		ConnectTimeout:       10 * time.Second,
		WriteTimeout:         30 * time.Second,
		MaxReconnectInterval: 10 * time.Second,
		DisconnectTimeout:    1000,
		TLSEnabled:           false,
	}
}

// defaultConfig returns a complete configuration with all default values
func defaultConfig() *Config {
	return &Config{
		Mailbox: defaultMailboxConfig(),
		Bridge:  defaultBridgeConfig(),
	}
}
