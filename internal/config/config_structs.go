// Package config provides configuration loading and validation from environment variables and command line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete configuration
type Config struct {
	Mailbox MailboxConfig
	Bridge  BridgeConfig
}

// MailboxConfig holds Redis mailbox service configuration
type MailboxConfig struct {
	Host     string
	Port     int
	DB       int
	Password string

	StreamPrefix    string
	MaxStreamLength int64         // approximate cap applied on every XADD
	PollInterval    time.Duration // max block per read, and backoff after a loop error

	EnableRecovery    bool
	RecoveryMinIdle   time.Duration // minimum age before a pending entry may be reclaimed
	RecoveryBatchSize int64         // max entries claimed per recovery round

	ConsumerIdleTimeout time.Duration // stale consumers older than this are removed by cleanup
	CleanupInterval     time.Duration // 0 disables the cleanup ticker

	DialTimeout time.Duration
	PingTimeout time.Duration
}

// Addr returns the host:port address of the Redis server
func (c *MailboxConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BridgeConfig holds MQTT bridge configuration. The bridge is disabled
// unless a broker URL is set.
type BridgeConfig struct {
	Broker               string
	ClientID             string
	Topic                string
	QoS                  byte
	ConnectTimeout       time.Duration
	WriteTimeout         time.Duration
	MaxReconnectInterval time.Duration
	DisconnectTimeout    uint // milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled   bool
	CACert       string
	ClientCert   string
	ClientKey    string
	InsecureSkip bool
}

// Enabled reports whether the bridge should be started
func (c *BridgeConfig) Enabled() bool {
	return c.Broker != ""
}
