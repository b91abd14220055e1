package config

import (
	"os"
	"strconv"
	"time"

	"github.com/beast-mode/mailbox-core/golang/internal/log"
)

// FromEnv resolves a mailbox configuration for callers that pass no explicit
// config. Resolution order:
//  1. REDIS_HOST (with REDIS_PORT, REDIS_PASSWORD, REDIS_DB) if set
//  2. REDIS_URL (redis:// or rediss://) if REDIS_HOST is not set
//  3. defaults (localhost:6379, db 0, no password)
//
// MAILBOX_* tuning variables are applied on top in every case.
func FromEnv(logger *log.Logger) *MailboxConfig {
	cfg := defaultMailboxConfig()
	loadMailboxFromEnv(&cfg, logger)
	return &cfg
}

// loadMailboxFromEnv loads mailbox configuration from environment variables
func loadMailboxFromEnv(cfg *MailboxConfig, logger *log.Logger) {
	loadRedisCoordinates(cfg, logger)
	loadMailboxTuning(cfg)
}

func loadRedisCoordinates(cfg *MailboxConfig, logger *log.Logger) {
	if host := getEnvString("REDIS_HOST"); host != "" {
		cfg.Host = host
		if v := getEnvInt("REDIS_PORT"); v != 0 {
			cfg.Port = v
		}
		if v := getEnvString("REDIS_PASSWORD"); v != "" {
			cfg.Password = v
		}
		if v, ok := getEnvIntOk("REDIS_DB"); ok {
			cfg.DB = v
		}
		return
	}

	if raw := getEnvString("REDIS_URL"); raw != "" {
		applyRedisURL(cfg, raw, logger)
	}
}

func loadMailboxTuning(cfg *MailboxConfig) {
	if v := getEnvString("MAILBOX_STREAM_PREFIX"); v != "" {
		cfg.StreamPrefix = v
	}
	if v := getEnvInt("MAILBOX_MAX_STREAM_LENGTH"); v != 0 {
		cfg.MaxStreamLength = int64(v)
	}
	if v := getEnvDuration("MAILBOX_POLL_INTERVAL"); v != 0 {
		cfg.PollInterval = v
	}
	if os.Getenv("MAILBOX_ENABLE_RECOVERY") == "false" {
		cfg.EnableRecovery = false
	}
	if v := getEnvDuration("MAILBOX_RECOVERY_MIN_IDLE"); v != 0 {
		cfg.RecoveryMinIdle = v
	}
	if v := getEnvInt("MAILBOX_RECOVERY_BATCH_SIZE"); v != 0 {
		cfg.RecoveryBatchSize = int64(v)
	}
	if v := getEnvDuration("MAILBOX_CONSUMER_IDLE_TIMEOUT"); v != 0 {
		cfg.ConsumerIdleTimeout = v
	}
	if v := getEnvDuration("MAILBOX_CLEANUP_INTERVAL"); v != 0 {
		cfg.CleanupInterval = v
	}
	if v := getEnvDuration("MAILBOX_DIAL_TIMEOUT"); v != 0 {
		cfg.DialTimeout = v
	}
	if v := getEnvDuration("MAILBOX_PING_TIMEOUT"); v != 0 {
		cfg.PingTimeout = v
	}
}

// loadBridgeFromEnv loads MQTT bridge configuration from environment variables
func loadBridgeFromEnv(cfg *BridgeConfig) {
	if v := getEnvString("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := getEnvString("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := getEnvString("MQTT_TOPIC"); v != "" {
		cfg.Topic = v
	}
	if v := getEnvInt("MQTT_QOS"); v != 0 && v >= 0 && v <= 2 {
		cfg.QoS = byte(v) // #nosec G115 - validated range 0-2
	}
	if v := getEnvDuration("MQTT_CONNECT_TIMEOUT"); v != 0 {
		cfg.ConnectTimeout = v
	}
	if v := getEnvDuration("MQTT_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("MQTT_MAX_RECONNECT_INTERVAL"); v != 0 {
		cfg.MaxReconnectInterval = v
	}
	if v := getEnvInt("MQTT_DISCONNECT_TIMEOUT"); v != 0 {
		cfg.DisconnectTimeout = uint(v) // #nosec G115 - config values are non-negative
	}
	loadBridgeTLS(cfg)
}

func loadBridgeTLS(cfg *BridgeConfig) {
	if v := getEnvBool("MQTT_TLS_ENABLED"); v {
		cfg.TLSEnabled = v
	}
	if v := getEnvString("MQTT_CA_CERT"); v != "" {
		cfg.CACert = v
	}
	if v := getEnvString("MQTT_CLIENT_CERT"); v != "" {
		cfg.ClientCert = v
	}
	if v := getEnvString("MQTT_CLIENT_KEY"); v != "" {
		cfg.ClientKey = v
	}
	if v := getEnvBool("MQTT_TLS_INSECURE_SKIP"); v {
		cfg.InsecureSkip = v
	}
}

// Helper functions for reading environment variables

func getEnvString(key string) string {
	return os.Getenv(key)
}

func getEnvInt(key string) int {
	v, _ := getEnvIntOk(key)
	return v
}

func getEnvIntOk(key string) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return intValue, true
}

func getEnvDuration(key string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return duration
}

func getEnvBool(key string) bool {
	return os.Getenv(key) == "true"
}
