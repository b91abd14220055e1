package config

import (
	"flag"
	"os"
	"testing"
	"time"
)

func TestApplyMailboxFlags(t *testing.T) {
	// Save original command line args
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{
		"test",
		"-redis-host=flag-redis",
		"-redis-port=6390",
		"-redis-password=flag-secret",
		"-redis-db=2",
		"-stream-prefix=flag:mailbox",
		"-maxlen=500",
		"-poll-interval=250ms",
		"-recovery-min-idle=30s",
		"-recovery-batch-size=10",
		"-cleanup-interval=90s",
		"-consumer-idle-timeout=4m",
	}

	// Reset flags and parse
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	resetFlags()
	flag.Parse()

	cfg := defaultMailboxConfig()
	applyMailboxFlags(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Host", cfg.Host, "flag-redis"},
		{"Port", cfg.Port, 6390},
		{"Password", cfg.Password, "flag-secret"},
		{"DB", cfg.DB, 2},
		{"StreamPrefix", cfg.StreamPrefix, "flag:mailbox"},
		{"MaxStreamLength", cfg.MaxStreamLength, int64(500)},
		{"PollInterval", cfg.PollInterval, 250 * time.Millisecond},
		{"RecoveryMinIdle", cfg.RecoveryMinIdle, 30 * time.Second},
		{"RecoveryBatchSize", cfg.RecoveryBatchSize, int64(10)},
		{"CleanupInterval", cfg.CleanupInterval, 90 * time.Second},
		{"ConsumerIdleTimeout", cfg.ConsumerIdleTimeout, 4 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("applyMailboxFlags() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestEnableRecoveryFlagOnlyWhenSet(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	t.Run("not set keeps value", func(t *testing.T) {
		os.Args = []string{"test"}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
		resetFlags()
		flag.Parse()

		cfg := defaultMailboxConfig()
		cfg.EnableRecovery = false // e.g. from the environment
		applyMailboxFlags(&cfg)

		if cfg.EnableRecovery {
			t.Error("unset -enable-recovery must not override the environment")
		}
	})

	t.Run("explicit false disables", func(t *testing.T) {
		os.Args = []string{"test", "-enable-recovery=false"}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
		resetFlags()
		flag.Parse()

		cfg := defaultMailboxConfig()
		applyMailboxFlags(&cfg)

		if cfg.EnableRecovery {
			t.Error("explicit -enable-recovery=false must disable recovery")
		}
	})
}

func TestApplyBridgeFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{
		"test",
		"-mqtt-broker=tcp://flag-mqtt:1883",
		"-mqtt-client-id=flag-client",
		"-mqtt-topic=flag/mailbox",
		"-mqtt-qos=2",
		"-mqtt-connect-timeout=3s",
		"-mqtt-write-timeout=6s",
		"-mqtt-tls-enabled=true",
		"-mqtt-ca-cert=/flag/ca.crt",
	}

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	resetFlags()
	flag.Parse()

	cfg := defaultBridgeConfig()
	applyBridgeFlags(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Broker", cfg.Broker, "tcp://flag-mqtt:1883"},
		{"ClientID", cfg.ClientID, "flag-client"},
		{"Topic", cfg.Topic, "flag/mailbox"},
		{"QoS", cfg.QoS, byte(2)},
		{"ConnectTimeout", cfg.ConnectTimeout, 3 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 6 * time.Second},
		{"TLSEnabled", cfg.TLSEnabled, true},
		{"CACert", cfg.CACert, "/flag/ca.crt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("applyBridgeFlags() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if !cfg.Enabled() {
		t.Error("bridge with -mqtt-broker set should be enabled")
	}
}

// resetFlags re-registers all package flags on the fresh flag.CommandLine
func resetFlags() {
	// Redis / mailbox flags
	flagRedisHost = flag.String("redis-host", "", "Redis host")
	flagRedisPort = flag.Int("redis-port", 0, "Redis port")
	flagRedisPassword = flag.String("redis-password", "", "Redis password")
	flagRedisDB = flag.Int("redis-db", -1, "Redis database number")
	flagStreamPrefix = flag.String("stream-prefix", "", "Mailbox stream prefix")
	flagMaxLen = flag.Int64("maxlen", 0, "Max inbox stream length (approximate trim)")
	flagPollInterval = flag.Duration("poll-interval", 0, "Consume loop poll interval")
	flagEnableRecovery = flag.Bool("enable-recovery", true, "Recover pending messages on startup")
	flagRecoveryMinIdle = flag.Duration("recovery-min-idle", 0, "Minimum idle time before claiming a pending message")
	flagRecoveryBatchSize = flag.Int64("recovery-batch-size", 0, "Messages claimed per recovery batch")
	flagCleanupInterval = flag.Duration("cleanup-interval", 0, "Stale consumer cleanup interval (0 disables)")
	flagConsumerIdle = flag.Duration("consumer-idle-timeout", 0, "Idle time after which a group consumer is considered stale")

	// MQTT bridge flags
	flagMQTTBroker = flag.String("mqtt-broker", "", "MQTT broker URL (enables the bridge)")
	flagMQTTClientID = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTTopic = flag.String("mqtt-topic", "", "MQTT topic for forwarded messages")
	flagMQTTQoS = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTConnectTimeout = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout = flag.Duration("mqtt-write-timeout", 0, "MQTT write timeout")
	flagMQTTTLSEnabled = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")
	flagMQTTClientCert = flag.String("mqtt-client-cert", "", "MQTT client certificate path")
	flagMQTTClientKey = flag.String("mqtt-client-key", "", "MQTT client key path")
	flagMQTTTLSInsecureSkip = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")
}
