package config

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/beast-mode/mailbox-core/golang/internal/log"
)

// applyRedisURL populates host, port, password and db from a redis:// or
// rediss:// URL. An unsupported scheme or an unparseable URL leaves the
// defaults in place and logs a warning; a non-numeric path db is ignored.
func applyRedisURL(cfg *MailboxConfig, raw string, logger *log.Logger) {
	parsed, err := url.Parse(raw)
	if err != nil {
		logger.Warn("Invalid REDIS_URL format: %s (%v), falling back to defaults", raw, err)
		return
	}

	if parsed.Scheme != "redis" && parsed.Scheme != "rediss" {
		logger.Warn("Unsupported REDIS_URL scheme: %s, use redis:// or rediss://, falling back to defaults", parsed.Scheme)
		return
	}

	if host := parsed.Hostname(); host != "" {
		cfg.Host = host
	}
	if port := parsed.Port(); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			cfg.Port = v
		}
	}
	if password, ok := parsed.User.Password(); ok {
		cfg.Password = password
	}
	if path := strings.TrimPrefix(parsed.Path, "/"); path != "" {
		if db, err := strconv.Atoi(path); err == nil {
			cfg.DB = db
		}
	}
}
