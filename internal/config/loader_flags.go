package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables)
var (
	// Redis / mailbox flags
	flagRedisHost         = flag.String("redis-host", "", "Redis host")
	flagRedisPort         = flag.Int("redis-port", 0, "Redis port")
	flagRedisPassword     = flag.String("redis-password", "", "Redis password")
	flagRedisDB           = flag.Int("redis-db", -1, "Redis database number")
	flagStreamPrefix      = flag.String("stream-prefix", "", "Mailbox stream prefix")
	flagMaxLen            = flag.Int64("maxlen", 0, "Max inbox stream length (approximate trim)")
	flagPollInterval      = flag.Duration("poll-interval", 0, "Consume loop poll interval")
	flagEnableRecovery    = flag.Bool("enable-recovery", true, "Recover pending messages on startup")
	flagRecoveryMinIdle   = flag.Duration("recovery-min-idle", 0, "Minimum idle time before claiming a pending message")
	flagRecoveryBatchSize = flag.Int64("recovery-batch-size", 0, "Messages claimed per recovery batch")
	flagCleanupInterval   = flag.Duration("cleanup-interval", 0, "Stale consumer cleanup interval (0 disables)")
	flagConsumerIdle      = flag.Duration("consumer-idle-timeout", 0, "Idle time after which a group consumer is considered stale")

	// MQTT bridge flags
	flagMQTTBroker          = flag.String("mqtt-broker", "", "MQTT broker URL (enables the bridge)")
	flagMQTTClientID        = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTTopic           = flag.String("mqtt-topic", "", "MQTT topic for forwarded messages")
	flagMQTTQoS             = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTConnectTimeout  = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout    = flag.Duration("mqtt-write-timeout", 0, "MQTT write timeout")
	flagMQTTTLSEnabled      = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert          = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")
	flagMQTTClientCert      = flag.String("mqtt-client-cert", "", "MQTT client certificate path")
	flagMQTTClientKey       = flag.String("mqtt-client-key", "", "MQTT client key path")
	flagMQTTTLSInsecureSkip = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")
)

// applyMailboxFlags applies command line flags to mailbox configuration
func applyMailboxFlags(cfg *MailboxConfig) {
	applyMailboxCoordinateFlags(cfg)
	applyMailboxTuningFlags(cfg)
}

func applyMailboxCoordinateFlags(cfg *MailboxConfig) {
	if *flagRedisHost != "" {
		cfg.Host = *flagRedisHost
	}
	if *flagRedisPort != 0 {
		cfg.Port = *flagRedisPort
	}
	if *flagRedisPassword != "" {
		cfg.Password = *flagRedisPassword
	}
	if *flagRedisDB != -1 {
		cfg.DB = *flagRedisDB
	}
}

func applyMailboxTuningFlags(cfg *MailboxConfig) {
	if *flagStreamPrefix != "" {
		cfg.StreamPrefix = *flagStreamPrefix
	}
	if *flagMaxLen != 0 {
		cfg.MaxStreamLength = *flagMaxLen
	}
	if *flagPollInterval != 0 {
		cfg.PollInterval = *flagPollInterval
	}
	if isFlagSet("enable-recovery") {
		cfg.EnableRecovery = *flagEnableRecovery
	}
	if *flagRecoveryMinIdle != 0 {
		cfg.RecoveryMinIdle = *flagRecoveryMinIdle
	}
	if *flagRecoveryBatchSize != 0 {
		cfg.RecoveryBatchSize = *flagRecoveryBatchSize
	}
	if *flagCleanupInterval != 0 {
		cfg.CleanupInterval = *flagCleanupInterval
	}
	if *flagConsumerIdle != 0 {
		cfg.ConsumerIdleTimeout = *flagConsumerIdle
	}
}

// applyBridgeFlags applies command line flags to MQTT bridge configuration
func applyBridgeFlags(cfg *BridgeConfig) {
	if *flagMQTTBroker != "" {
		cfg.Broker = *flagMQTTBroker
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
	if *flagMQTTTopic != "" {
		cfg.Topic = *flagMQTTTopic
	}
	if *flagMQTTQoS != -1 && *flagMQTTQoS >= 0 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 0-2
	}
	if *flagMQTTConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagMQTTConnectTimeout
	}
	if *flagMQTTWriteTimeout != 0 {
		cfg.WriteTimeout = *flagMQTTWriteTimeout
	}
	applyBridgeTLSFlags(cfg)
}

func applyBridgeTLSFlags(cfg *BridgeConfig) {
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if *flagMQTTCACert != "" {
		cfg.CACert = *flagMQTTCACert
	}
	if *flagMQTTClientCert != "" {
		cfg.ClientCert = *flagMQTTClientCert
	}
	if *flagMQTTClientKey != "" {
		cfg.ClientKey = *flagMQTTClientKey
	}
	if isFlagSet("mqtt-tls-insecure-skip") {
		cfg.InsecureSkip = *flagMQTTTLSInsecureSkip
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
