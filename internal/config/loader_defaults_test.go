package config

import (
	"testing"
	"time"
)

func TestDefaultMailboxConfig(t *testing.T) {
	cfg := defaultMailboxConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Host", cfg.Host, "localhost"},
		{"Port", cfg.Port, 6379},
		{"DB", cfg.DB, 0},
		{"Password", cfg.Password, ""},
		{"StreamPrefix", cfg.StreamPrefix, "beast:mailbox"},
		{"MaxStreamLength", cfg.MaxStreamLength, int64(1000)},
		{"PollInterval", cfg.PollInterval, 2 * time.Second},
		{"EnableRecovery", cfg.EnableRecovery, true},
		{"RecoveryMinIdle", cfg.RecoveryMinIdle, time.Duration(0)},
		{"RecoveryBatchSize", cfg.RecoveryBatchSize, int64(50)},
		{"ConsumerIdleTimeout", cfg.ConsumerIdleTimeout, 5 * time.Minute},
		{"CleanupInterval", cfg.CleanupInterval, time.Duration(0)},
		{"DialTimeout", cfg.DialTimeout, 10 * time.Second},
		{"PingTimeout", cfg.PingTimeout, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("defaultMailboxConfig().%s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDefaultBridgeConfig(t *testing.T) {
	cfg := defaultBridgeConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Broker", cfg.Broker, ""},
		{"ClientID", cfg.ClientID, "mailbox-bridge"},
		{"Topic", cfg.Topic, "mailbox/messages"},
		{"QoS", cfg.QoS, byte(0)},
		{"ConnectTimeout", cfg.ConnectTimeout, 10 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 30 * time.Second},
		{"MaxReconnectInterval", cfg.MaxReconnectInterval, 10 * time.Second},
		{"DisconnectTimeout", cfg.DisconnectTimeout, uint(1000)},
		{"TLSEnabled", cfg.TLSEnabled, false},
		{"InsecureSkip", cfg.InsecureSkip, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("defaultBridgeConfig().%s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if cfg.Enabled() {
		t.Error("default bridge config should be disabled")
	}
}

func TestMailboxConfigAddr(t *testing.T) {
	cfg := MailboxConfig{Host: "redis-test", Port: 6380}
	if got := cfg.Addr(); got != "redis-test:6380" {
		t.Errorf("Addr() = %q; want redis-test:6380", got)
	}
}
