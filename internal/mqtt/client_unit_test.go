package mqtt

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/beast-mode/mailbox-core/golang/internal/config"
)

func TestNewTLSConfig_Unit(t *testing.T) {
	t.Run("Defaults", testTLSDefaults)
	t.Run("InsecureSkipVerify", testInsecureSkipVerify)
	t.Run("MissingCACert", testMissingCACert)
	t.Run("CorruptedCACert", testCorruptedCACert)
	t.Run("MissingClientCert", testMissingClientCert)
}

func testTLSDefaults(t *testing.T) {
	t.Helper()
	cfg := &config.BridgeConfig{TLSEnabled: true}

	tlsConfig, err := newTLSConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to create TLS config: %v", err)
	}

	if tlsConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be false by default")
	}
	if tlsConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d; want TLS 1.2", tlsConfig.MinVersion)
	}
}

func testInsecureSkipVerify(t *testing.T) {
	t.Helper()
	cfg := &config.BridgeConfig{
		TLSEnabled:   true,
		InsecureSkip: true,
	}

	tlsConfig, err := newTLSConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to create TLS config: %v", err)
	}

	if !tlsConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be true")
	}
}

func testMissingCACert(t *testing.T) {
	t.Helper()
	cfg := &config.BridgeConfig{
		TLSEnabled: true,
		CACert:     "/nonexistent/ca.crt",
	}

	if _, err := newTLSConfig(cfg); err == nil {
		t.Error("Expected error for missing CA cert, got nil")
	}
}

func testCorruptedCACert(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.crt")
	if err := os.WriteFile(path, []byte("not a pem file"), 0o600); err != nil {
		t.Fatalf("Failed to write corrupt cert: %v", err)
	}

	cfg := &config.BridgeConfig{
		TLSEnabled: true,
		CACert:     path,
	}

	if _, err := newTLSConfig(cfg); err == nil {
		t.Error("Expected error for corrupted CA cert, got nil")
	}
}

func testMissingClientCert(t *testing.T) {
	t.Helper()
	cfg := &config.BridgeConfig{
		TLSEnabled: true,
		ClientCert: "/nonexistent/client.crt",
		ClientKey:  "/nonexistent/client.key",
	}

	if _, err := newTLSConfig(cfg); err == nil {
		t.Error("Expected error for missing client cert, got nil")
	}
}
